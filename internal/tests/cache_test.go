package tests

import (
	"context"
	"errors"
	"testing"

	"fleet/internal/domain"
	"fleet/internal/repository"
	"fleet/internal/service"
)

func TestGetVehicle_SecondReadServedFromCache(t *testing.T) {
	t.Parallel()

	vehicles := NewMockVehicleRepository()
	cache := NewMockCacheStore()
	svc := service.NewVehicleService(vehicles, cache, nil)

	vehicles.AddVehicle(&domain.Vehicle{
		ID:           "v1",
		TenantID:     "city-a",
		LicensePlate: "ABC-1234",
		Status:       domain.VehicleStatusAvailable,
	})

	first, err := svc.GetVehicle(context.Background(), operator("city-a"), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicles.GetByIDCallCount != 1 {
		t.Fatalf("first read must hit the repository, got %d calls", vehicles.GetByIDCallCount)
	}
	if cache.SetVehicleCallCount != 1 {
		t.Fatalf("first read must populate the cache, got %d sets", cache.SetVehicleCallCount)
	}

	second, err := svc.GetVehicle(context.Background(), operator("city-a"), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicles.GetByIDCallCount != 1 {
		t.Errorf("second read must be served from cache, repository saw %d calls", vehicles.GetByIDCallCount)
	}
	if second.LicensePlate != first.LicensePlate || second.TenantID != first.TenantID {
		t.Errorf("cached copy diverges: %+v vs %+v", second, first)
	}
}

func TestGetVehicle_CachedCopyStaysInvisibleAcrossTenants(t *testing.T) {
	t.Parallel()

	vehicles := NewMockVehicleRepository()
	cache := NewMockCacheStore()
	svc := service.NewVehicleService(vehicles, cache, nil)

	if err := cache.SetVehicle(context.Background(), &domain.Vehicle{
		ID:       "v1",
		TenantID: "city-b",
		Status:   domain.VehicleStatusAvailable,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.GetVehicle(context.Background(), operator("city-a"), "v1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("a cached foreign-tenant vehicle must stay invisible, got %v", err)
	}
}

func TestGetVehicle_CacheErrorFallsThroughToRepository(t *testing.T) {
	t.Parallel()

	vehicles := NewMockVehicleRepository()
	cache := NewMockCacheStore()
	cache.GetError = errors.New("connection refused")
	svc := service.NewVehicleService(vehicles, cache, nil)

	vehicles.AddVehicle(&domain.Vehicle{
		ID:       "v1",
		TenantID: "city-a",
		Status:   domain.VehicleStatusAvailable,
	})

	vehicle, err := svc.GetVehicle(context.Background(), operator("city-a"), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicle.ID != "v1" {
		t.Errorf("expected the repository copy, got %+v", vehicle)
	}
}

func TestSetVehicleStatus_EvictsCachedCopy(t *testing.T) {
	t.Parallel()

	vehicles := NewMockVehicleRepository()
	cache := NewMockCacheStore()
	svc := service.NewVehicleService(vehicles, cache, nil)

	vehicles.AddVehicle(&domain.Vehicle{
		ID:       "v1",
		TenantID: "city-a",
		Status:   domain.VehicleStatusMaintenance,
	})

	if _, err := svc.GetVehicle(context.Background(), operator("city-a"), "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cache.HasVehicle("v1") {
		t.Fatal("read must populate the cache")
	}

	if _, err := svc.SetVehicleStatus(context.Background(), operator("city-a"), "v1", domain.VehicleStatusAvailable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.HasVehicle("v1") {
		t.Error("status change must evict the cached copy")
	}

	vehicle, err := svc.GetVehicle(context.Background(), operator("city-a"), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vehicle.Status != domain.VehicleStatusAvailable {
		t.Errorf("read after eviction must see the new status, got %s", vehicle.Status)
	}
}

func TestGetDriver_SecondReadServedFromCache(t *testing.T) {
	t.Parallel()

	drivers := NewMockDriverRepository()
	cache := NewMockCacheStore()
	svc := service.NewDriverService(drivers, cache, nil)

	drivers.AddDriver(&domain.Driver{
		ID:       "d1",
		TenantID: "city-a",
		Name:     "Driver d1",
		Status:   domain.DriverStatusActive,
	})

	if _, err := svc.GetDriver(context.Background(), operator("city-a"), "d1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drivers.GetByIDCallCount != 1 {
		t.Fatalf("first read must hit the repository, got %d calls", drivers.GetByIDCallCount)
	}

	driver, err := svc.GetDriver(context.Background(), operator("city-a"), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drivers.GetByIDCallCount != 1 {
		t.Errorf("second read must be served from cache, repository saw %d calls", drivers.GetByIDCallCount)
	}
	if driver.Name != "Driver d1" {
		t.Errorf("cached copy diverges, got %+v", driver)
	}
}
