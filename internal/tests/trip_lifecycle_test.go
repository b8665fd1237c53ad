package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// fixture bundles the mocks behind a wired TripService.
type fixture struct {
	trips    *MockTripRepository
	vehicles *MockVehicleRepository
	drivers  *MockDriverRepository
	odometer *MockMonthlyOdometerRepository
	locks    *MockLockStore
	uow      *MockUnitOfWork
	svc      *service.TripService
}

func newFixture() *fixture {
	trips := NewMockTripRepository()
	vehicles := NewMockVehicleRepository()
	drivers := NewMockDriverRepository()
	odometer := NewMockMonthlyOdometerRepository()
	locks := NewMockLockStore()
	uow := NewMockUnitOfWork(trips, vehicles, odometer)

	svc := service.NewTripService(
		uow, trips, vehicles, drivers,
		service.NewOdometerAggregator(time.UTC),
		service.NewNotificationService(nil),
		locks, nil,
	)

	return &fixture{
		trips:    trips,
		vehicles: vehicles,
		drivers:  drivers,
		odometer: odometer,
		locks:    locks,
		uow:      uow,
		svc:      svc,
	}
}

func (f *fixture) addVehicle(id, tenantID string) *domain.Vehicle {
	vehicle := &domain.Vehicle{
		ID:              id,
		TenantID:        tenantID,
		LicensePlate:    "ABC-" + id,
		MaxPassengers:   10,
		OdometerCurrent: 1000,
		OdometerInitial: 1000,
		Status:          domain.VehicleStatusAvailable,
	}
	f.vehicles.AddVehicle(vehicle)
	return vehicle
}

func (f *fixture) addDriver(id, tenantID string) *domain.Driver {
	driver := &domain.Driver{
		ID:       id,
		TenantID: tenantID,
		Name:     "Driver " + id,
		CPF:      "000." + id,
		Status:   domain.DriverStatusActive,
	}
	f.drivers.AddDriver(driver)
	return driver
}

func operator(tenantID string) domain.Principal {
	return domain.Principal{UserID: "user-1", TenantID: tenantID, Role: domain.RoleOperator}
}

func baseInput(vehicleID, driverID string, departure time.Time) service.CreateTripInput {
	return service.CreateTripInput{
		VehicleID:              vehicleID,
		DriverID:               driverID,
		Origin:                 "City Hall",
		Destination:            "Regional Hospital",
		DepartureDatetime:      departure,
		ReturnDatetimeExpected: departure.Add(2 * time.Hour),
		OdometerStart:          1000,
	}
}

func TestCreateTrip_BooksPlannedTrip(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.Status != domain.TripStatusPlanned {
		t.Errorf("expected status PLANNED, got %s", trip.Status)
	}
	if trip.Category != domain.TripCategoryPassenger {
		t.Errorf("expected category PASSENGER, got %s", trip.Category)
	}
	if trip.TenantID != "city-a" {
		t.Errorf("expected tenant city-a, got %s", trip.TenantID)
	}
	if f.trips.CountTrips() != 1 {
		t.Errorf("expected 1 stored trip, got %d", f.trips.CountTrips())
	}
	if f.locks.Held("v1") {
		t.Error("booking lock should be released after commit")
	}
}

func TestCreateTrip_RejectsOverlappingWindow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	first, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second booking starts one hour into the first one's window.
	_, err = f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure.Add(time.Hour)))

	var conflict *service.ScheduleConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ScheduleConflictError, got %v", err)
	}
	if conflict.ConflictingTripID != first.ID {
		t.Errorf("expected conflicting trip %s, got %s", first.ID, conflict.ConflictingTripID)
	}
	if f.trips.CountTrips() != 1 {
		t.Errorf("conflicting trip must not be persisted, got %d trips", f.trips.CountTrips())
	}
}

func TestCreateTrip_AllowsBackToBackWindows(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	if _, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Departs exactly when the first trip is expected back. Half-open
	// windows make this legal.
	if _, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure.Add(2*time.Hour))); err != nil {
		t.Fatalf("back-to-back booking should succeed, got %v", err)
	}

	if f.trips.CountTrips() != 2 {
		t.Errorf("expected 2 trips, got %d", f.trips.CountTrips())
	}
}

func TestCreateTrip_IgnoresCancelledTripsInConflictScan(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	f.trips.AddTrip(&domain.Trip{
		ID:                     "cancelled-1",
		TenantID:               "city-a",
		VehicleID:              "v1",
		DriverID:               "d1",
		DepartureDatetime:      departure,
		ReturnDatetimeExpected: departure.Add(2 * time.Hour),
		Status:                 domain.TripStatusCancelled,
	})

	if _, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure)); err != nil {
		t.Fatalf("cancelled trips must not block the window, got %v", err)
	}
}

func TestCreateTrip_VehicleBusyWhenLockHeld(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")
	f.locks.DenyAcquire = true

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if !errors.Is(err, service.ErrVehicleBusy) {
		t.Fatalf("expected ErrVehicleBusy, got %v", err)
	}
	if f.trips.CountTrips() != 0 {
		t.Error("no trip may be written while the vehicle lock is held elsewhere")
	}
}

func TestCreateTrip_RejectsVehicleUnderMaintenance(t *testing.T) {
	t.Parallel()

	f := newFixture()
	vehicle := f.addVehicle("v1", "city-a")
	vehicle.Status = domain.VehicleStatusMaintenance
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if !errors.Is(err, service.ErrVehicleUnavailable) {
		t.Fatalf("expected ErrVehicleUnavailable, got %v", err)
	}
}

func TestCreateTrip_RejectsCapacityExceeded(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.PassengersCount = 11 // vehicle seats 10

	_, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)
	if !errors.Is(err, service.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestCreateTrip_RejectsReturnNotAfterDeparture(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.ReturnDatetimeExpected = departure

	_, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)
	if !errors.Is(err, service.ErrReturnBeforeDeparture) {
		t.Fatalf("expected ErrReturnBeforeDeparture, got %v", err)
	}
}

func TestCreateTrip_ViewerCannotBook(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	viewer := domain.Principal{UserID: "user-2", TenantID: "city-a", Role: domain.RoleViewer}
	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	_, err := f.svc.CreateTrip(context.Background(), viewer, baseInput("v1", "d1", departure))
	if !errors.Is(err, service.ErrReadOnlyRole) {
		t.Fatalf("expected ErrReadOnlyRole, got %v", err)
	}
}

func TestUpdateTrip_OwnWindowDoesNotConflictWithItself(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shift the window by 30 minutes; it still overlaps its old self,
	// which must be excluded from the scan.
	newDeparture := departure.Add(30 * time.Minute)
	newReturn := newDeparture.Add(2 * time.Hour)
	updated, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		DepartureDatetime:      &newDeparture,
		ReturnDatetimeExpected: &newReturn,
	})
	if err != nil {
		t.Fatalf("rescheduling within own window should succeed, got %v", err)
	}
	if !updated.DepartureDatetime.Equal(newDeparture) {
		t.Errorf("expected departure %v, got %v", newDeparture, updated.DepartureDatetime)
	}
}

func TestUpdateTrip_MergePreservesUntouchedFields(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.Notes = "bring the wheelchair ramp"
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newDestination := "Bus Terminal"
	updated, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		Destination: &newDestination,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Destination != "Bus Terminal" {
		t.Errorf("expected updated destination, got %s", updated.Destination)
	}
	if updated.Notes != "bring the wheelchair ramp" {
		t.Errorf("untouched field must survive the merge, got %q", updated.Notes)
	}
	if updated.Origin != "City Hall" {
		t.Errorf("untouched field must survive the merge, got %q", updated.Origin)
	}
}

func TestUpdateTrip_TerminalTripsAreImmutable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	for _, status := range []domain.TripStatus{domain.TripStatusCompleted, domain.TripStatusCancelled} {
		end := 1100
		f.trips.AddTrip(&domain.Trip{
			ID:                     "terminal-" + string(status),
			TenantID:               "city-a",
			VehicleID:              "v1",
			DriverID:               "d1",
			DepartureDatetime:      departure,
			ReturnDatetimeExpected: departure.Add(time.Hour),
			OdometerStart:          1000,
			OdometerEnd:            &end,
			Category:               domain.TripCategoryPassenger,
			Status:                 status,
		})

		notes := "late edit"
		_, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), "terminal-"+string(status), service.UpdateTripInput{
			Notes: &notes,
		})
		if !errors.Is(err, service.ErrInvalidTransition) {
			t.Errorf("%s trip must be immutable, got %v", status, err)
		}
	}
}

func TestUpdateTrip_PlannedMayCompleteDirectly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	end := 1080
	completed := domain.TripStatusCompleted
	updated, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		Status:      &completed,
		OdometerEnd: &end,
	})
	if err != nil {
		t.Fatalf("PLANNED may complete without passing through IN_PROGRESS, got %v", err)
	}
	if updated.Status != domain.TripStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", updated.Status)
	}
}

func TestUpdateTrip_CompletionRequiresOdometerEnd(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	completed := domain.TripStatusCompleted
	_, err = f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		Status: &completed,
	})
	if !errors.Is(err, service.ErrIncompleteOdometerData) {
		t.Fatalf("expected ErrIncompleteOdometerData, got %v", err)
	}

	// A reading below the start is equally incomplete.
	end := 900
	_, err = f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		Status:      &completed,
		OdometerEnd: &end,
	})
	if !errors.Is(err, service.ErrIncompleteOdometerData) {
		t.Fatalf("expected ErrIncompleteOdometerData for end < start, got %v", err)
	}
}

func TestTripStatus_TransitionTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to domain.TripStatus
		allowed  bool
	}{
		{domain.TripStatusPlanned, domain.TripStatusInProgress, true},
		{domain.TripStatusPlanned, domain.TripStatusCompleted, true},
		{domain.TripStatusPlanned, domain.TripStatusCancelled, true},
		{domain.TripStatusPlanned, domain.TripStatusPlanned, true},
		{domain.TripStatusInProgress, domain.TripStatusCompleted, true},
		{domain.TripStatusInProgress, domain.TripStatusCancelled, true},
		{domain.TripStatusInProgress, domain.TripStatusPlanned, false},
		{domain.TripStatusCompleted, domain.TripStatusCancelled, false},
		{domain.TripStatusCompleted, domain.TripStatusCompleted, false},
		{domain.TripStatusCancelled, domain.TripStatusPlanned, false},
		{domain.TripStatusCancelled, domain.TripStatusCancelled, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}
