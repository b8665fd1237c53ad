package repository

import (
	"context"

	"fleet/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByAccessCode retrieves a driver by portal access code.
	GetByAccessCode(ctx context.Context, code string) (*domain.Driver, error)

	// List retrieves drivers, optionally scoped to a tenant.
	List(ctx context.Context, tenantID string) ([]*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error
}
