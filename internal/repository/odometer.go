package repository

import (
	"context"

	"fleet/internal/domain"
)

// MonthlyOdometerRepository defines the persistence operations for the
// per-vehicle monthly distance totals.
type MonthlyOdometerRepository interface {
	// AddDistance adds distance kilometers to the (vehicle, year, month)
	// summary, creating the row lazily, and returns the updated total.
	AddDistance(ctx context.Context, vehicleID string, year, month, distance int) (int, error)

	// GetForMonth retrieves one vehicle's summary for a month.
	// Returns ErrNotFound if no trip has completed in that month.
	GetForMonth(ctx context.Context, vehicleID string, year, month int) (*domain.MonthlyOdometer, error)

	// ListForMonth retrieves all summaries for a month, optionally
	// scoped to vehicles of one tenant.
	ListForMonth(ctx context.Context, tenantID string, year, month int) ([]*domain.MonthlyOdometer, error)

	// ListForVehicle retrieves a vehicle's summaries, newest first.
	ListForVehicle(ctx context.Context, vehicleID string) ([]*domain.MonthlyOdometer, error)
}
