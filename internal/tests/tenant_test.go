package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/service"
)

func TestResolveTenant_OperatorConfinedToOwnTenant(t *testing.T) {
	t.Parallel()

	vehicleA := &domain.Vehicle{ID: "v1", TenantID: "city-a"}
	driverA := &domain.Driver{ID: "d1", TenantID: "city-a"}
	vehicleB := &domain.Vehicle{ID: "v2", TenantID: "city-b"}

	tenantID, err := service.ResolveTenant(operator("city-a"), vehicleA, driverA, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenantID != "city-a" {
		t.Errorf("expected city-a, got %s", tenantID)
	}

	if _, err := service.ResolveTenant(operator("city-a"), vehicleB, driverA, ""); !errors.Is(err, service.ErrTenantMismatch) {
		t.Errorf("vehicle and driver from different tenants: expected ErrTenantMismatch, got %v", err)
	}

	driverB := &domain.Driver{ID: "d2", TenantID: "city-b"}
	if _, err := service.ResolveTenant(operator("city-a"), vehicleB, driverB, ""); !errors.Is(err, service.ErrCrossTenantViolation) {
		t.Errorf("foreign entities: expected ErrCrossTenantViolation, got %v", err)
	}
}

func TestResolveTenant_SuperadminDefaultsToEntityTenant(t *testing.T) {
	t.Parallel()

	superadmin := domain.Principal{UserID: "root", TenantID: "hq", Role: domain.RoleSuperadmin}
	vehicleB := &domain.Vehicle{ID: "v2", TenantID: "city-b"}
	driverB := &domain.Driver{ID: "d2", TenantID: "city-b"}

	tenantID, err := service.ResolveTenant(superadmin, vehicleB, driverB, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tenantID != "city-b" {
		t.Errorf("expected defaulted tenant city-b, got %s", tenantID)
	}

	// An explicit target disagreeing with the entities is still rejected.
	if _, err := service.ResolveTenant(superadmin, vehicleB, driverB, "city-c"); !errors.Is(err, service.ErrCrossTenantViolation) {
		t.Errorf("expected ErrCrossTenantViolation, got %v", err)
	}
}

func TestCreateTrip_CrossTenantVehicleRejected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-b")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if !errors.Is(err, service.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
	if f.trips.CountTrips() != 0 {
		t.Error("cross-tenant booking must not be persisted")
	}
}

func TestGetTrip_ForeignTenantTripStaysInvisible(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-b")
	f.addDriver("d1", "city-b")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-b"), baseInput("v1", "d1", departure))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An operator from another city gets NotFound, not Forbidden: the
	// trip's existence is not disclosed.
	if _, err := f.svc.GetTrip(context.Background(), operator("city-a"), trip.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	notes := "probe"
	if _, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{Notes: &notes}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign update, got %v", err)
	}

	// A superadmin sees everything.
	superadmin := domain.Principal{UserID: "root", Role: domain.RoleSuperadmin}
	if _, err := f.svc.GetTrip(context.Background(), superadmin, trip.ID); err != nil {
		t.Fatalf("superadmin read should succeed, got %v", err)
	}
}

func TestListTrips_ScopedToPrincipalTenant(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")
	f.addVehicle("v2", "city-b")
	f.addDriver("d2", "city-b")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	if _, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.CreateTrip(context.Background(), operator("city-b"), baseInput("v2", "d2", departure)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trips, err := f.svc.ListTrips(context.Background(), operator("city-a"), repository.TripFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 || trips[0].TenantID != "city-a" {
		t.Errorf("expected only city-a trips, got %d", len(trips))
	}

	superadmin := domain.Principal{UserID: "root", Role: domain.RoleSuperadmin}
	all, err := f.svc.ListTrips(context.Background(), superadmin, repository.TripFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("superadmin expected 2 trips, got %d", len(all))
	}
}

func TestCreateVehicle_ViewerRejected(t *testing.T) {
	t.Parallel()

	vehicles := NewMockVehicleRepository()
	svc := service.NewVehicleService(vehicles, nil, nil)

	viewer := domain.Principal{UserID: "u1", TenantID: "city-a", Role: domain.RoleViewer}
	_, err := svc.CreateVehicle(context.Background(), viewer, service.CreateVehicleInput{LicensePlate: "XYZ-1234"})
	if !errors.Is(err, service.ErrReadOnlyRole) {
		t.Fatalf("expected ErrReadOnlyRole, got %v", err)
	}
}

func TestCreateVehicle_OdometerStartsAtInitial(t *testing.T) {
	t.Parallel()

	vehicles := NewMockVehicleRepository()
	svc := service.NewVehicleService(vehicles, nil, nil)

	vehicle, err := svc.CreateVehicle(context.Background(), operator("city-a"), service.CreateVehicleInput{
		LicensePlate:    "XYZ-1234",
		MaxPassengers:   4,
		OdometerInitial: 52000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicle.OdometerCurrent != 52000 {
		t.Errorf("live odometer must start at the initial reading, got %d", vehicle.OdometerCurrent)
	}
	if vehicle.Status != domain.VehicleStatusAvailable {
		t.Errorf("expected AVAILABLE, got %s", vehicle.Status)
	}
	if vehicle.TenantID != "city-a" {
		t.Errorf("expected tenant city-a, got %s", vehicle.TenantID)
	}
}
