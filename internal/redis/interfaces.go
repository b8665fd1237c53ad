package redis

import (
	"context"
	"time"

	"fleet/internal/domain"
)

// LockStoreInterface defines the interface for the per-vehicle booking lock.
type LockStoreInterface interface {
	AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error)
	ReleaseVehicleLock(ctx context.Context, vehicleID string) error
}

// CacheStoreInterface defines the interface for the entity read cache.
// Gets return nil, nil on a miss.
type CacheStoreInterface interface {
	GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error)
	SetVehicle(ctx context.Context, vehicle *domain.Vehicle) error
	InvalidateVehicle(ctx context.Context, vehicleID string) error
	GetDriver(ctx context.Context, driverID string) (*domain.Driver, error)
	SetDriver(ctx context.Context, driver *domain.Driver) error
	InvalidateDriver(ctx context.Context, driverID string) error
}

// Ensure concrete types implement interfaces.
var _ LockStoreInterface = (*LockStore)(nil)
var _ CacheStoreInterface = (*CacheStore)(nil)
