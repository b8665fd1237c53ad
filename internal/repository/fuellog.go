package repository

import (
	"context"
	"time"

	"fleet/internal/domain"
)

// FuelLogFilter narrows fuel log listings. Zero values mean "no filter".
type FuelLogFilter struct {
	TenantID  string
	VehicleID string
	DriverID  string
	From      time.Time
	To        time.Time
}

// FuelLogRepository defines the persistence operations for fuel logs.
type FuelLogRepository interface {
	// Create persists a new fuel log.
	Create(ctx context.Context, log *domain.FuelLog) error

	// List retrieves fuel logs matching the filter, newest fill first.
	List(ctx context.Context, filter FuelLogFilter) ([]*domain.FuelLog, error)
}
