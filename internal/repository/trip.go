package repository

import (
	"context"
	"time"

	"fleet/internal/domain"
)

// TripFilter narrows trip listings. Zero values mean "no filter".
type TripFilter struct {
	TenantID  string
	VehicleID string
	DriverID  string
	Status    domain.TripStatus
	Category  domain.TripCategory
	From      time.Time // departure on or after
	To        time.Time // departure before
}

// TripRepository defines the persistence operations for trips.
// Trips are never deleted.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// List retrieves trips matching the filter, most recent departure first.
	List(ctx context.Context, filter TripFilter) ([]*domain.Trip, error)

	// ListActiveForVehicle retrieves the vehicle's PLANNED and
	// IN_PROGRESS trips, excluding excludeTripID when non-empty.
	ListActiveForVehicle(ctx context.Context, vehicleID, excludeTripID string) ([]*domain.Trip, error)

	// CountByStatusInMonth returns trip counts grouped by status for
	// departures falling in the given month, optionally tenant-scoped.
	CountByStatusInMonth(ctx context.Context, tenantID string, year int, month time.Month) (map[domain.TripStatus]int, error)
}
