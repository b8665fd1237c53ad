package repository

import (
	"context"

	"fleet/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetByIDForUpdate retrieves a vehicle and locks its row for the
	// remainder of the enclosing transaction. Outside a transaction it
	// behaves like GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error)

	// List retrieves vehicles, optionally scoped to a tenant and
	// filtered by a plate/brand/model search term.
	List(ctx context.Context, tenantID, search string) ([]*domain.Vehicle, error)

	// UpdateStatus updates the operational status of a vehicle.
	UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error

	// UpdateOdometer overwrites the vehicle's live odometer reading.
	UpdateOdometer(ctx context.Context, id string, odometer int) error

	// CountByStatus returns vehicle counts grouped by status,
	// optionally scoped to a tenant.
	CountByStatus(ctx context.Context, tenantID string) (map[domain.VehicleStatus]int, error)
}
