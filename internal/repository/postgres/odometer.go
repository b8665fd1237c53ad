package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// MonthlyOdometerRepository is a PostgreSQL implementation of
// repository.MonthlyOdometerRepository.
type MonthlyOdometerRepository struct {
	q Querier
}

// NewMonthlyOdometerRepository creates a new PostgreSQL monthly odometer repository.
func NewMonthlyOdometerRepository(db *sql.DB) *MonthlyOdometerRepository {
	return &MonthlyOdometerRepository{q: db}
}

// NewMonthlyOdometerRepositoryWithTx creates a monthly odometer repository using a transaction.
func NewMonthlyOdometerRepositoryWithTx(tx *sql.Tx) *MonthlyOdometerRepository {
	return &MonthlyOdometerRepository{q: tx}
}

// AddDistance upserts the (vehicle, year, month) row and adds distance
// in a single statement, so two completions in the same month can never
// lose an increment. Returns the updated cumulative total.
func (r *MonthlyOdometerRepository) AddDistance(ctx context.Context, vehicleID string, year, month, distance int) (int, error) {
	query := `
		INSERT INTO monthly_odometer (id, vehicle_id, year, month, kilometers, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (vehicle_id, year, month)
		DO UPDATE SET kilometers = monthly_odometer.kilometers + EXCLUDED.kilometers
		RETURNING kilometers
	`

	var total int
	err := r.q.QueryRowContext(ctx, query, uuid.New().String(), vehicleID, year, month, distance).Scan(&total)
	if err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

// GetForMonth retrieves one vehicle's summary for a month.
func (r *MonthlyOdometerRepository) GetForMonth(ctx context.Context, vehicleID string, year, month int) (*domain.MonthlyOdometer, error) {
	query := `
		SELECT id, vehicle_id, year, month, kilometers, created_at
		FROM monthly_odometer
		WHERE vehicle_id = $1 AND year = $2 AND month = $3
	`

	var summary domain.MonthlyOdometer
	err := r.q.QueryRowContext(ctx, query, vehicleID, year, month).Scan(
		&summary.ID,
		&summary.VehicleID,
		&summary.Year,
		&summary.Month,
		&summary.Kilometers,
		&summary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// ListForMonth retrieves all summaries for a month, optionally scoped
// to vehicles of one tenant.
func (r *MonthlyOdometerRepository) ListForMonth(ctx context.Context, tenantID string, year, month int) ([]*domain.MonthlyOdometer, error) {
	query := `
		SELECT m.id, m.vehicle_id, m.year, m.month, m.kilometers, m.created_at
		FROM monthly_odometer m
		JOIN vehicles v ON v.id = m.vehicle_id
		WHERE m.year = $1 AND m.month = $2
		  AND ($3 = '' OR v.tenant_id = $3)
		ORDER BY m.kilometers DESC
	`

	rows, err := r.q.QueryContext(ctx, query, year, month, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSummaries(rows)
}

// ListForVehicle retrieves a vehicle's summaries, newest first.
func (r *MonthlyOdometerRepository) ListForVehicle(ctx context.Context, vehicleID string) ([]*domain.MonthlyOdometer, error) {
	query := `
		SELECT id, vehicle_id, year, month, kilometers, created_at
		FROM monthly_odometer
		WHERE vehicle_id = $1
		ORDER BY year DESC, month DESC
	`

	rows, err := r.q.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSummaries(rows)
}

func collectSummaries(rows *sql.Rows) ([]*domain.MonthlyOdometer, error) {
	var summaries []*domain.MonthlyOdometer
	for rows.Next() {
		var summary domain.MonthlyOdometer
		if err := rows.Scan(
			&summary.ID,
			&summary.VehicleID,
			&summary.Year,
			&summary.Month,
			&summary.Kilometers,
			&summary.CreatedAt,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, &summary)
	}
	return summaries, rows.Err()
}

// Ensure MonthlyOdometerRepository implements repository.MonthlyOdometerRepository.
var _ repository.MonthlyOdometerRepository = (*MonthlyOdometerRepository)(nil)
