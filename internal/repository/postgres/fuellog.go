package postgres

import (
	"context"
	"database/sql"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// FuelLogRepository is a PostgreSQL implementation of repository.FuelLogRepository.
type FuelLogRepository struct {
	q Querier
}

// NewFuelLogRepository creates a new PostgreSQL fuel log repository.
func NewFuelLogRepository(db *sql.DB) *FuelLogRepository {
	return &FuelLogRepository{q: db}
}

// Create persists a new fuel log.
func (r *FuelLogRepository) Create(ctx context.Context, log *domain.FuelLog) error {
	query := `
		INSERT INTO fuel_logs (
			id, tenant_id, vehicle_id, driver_id, filled_at, liters,
			fuel_station, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		log.ID,
		log.TenantID,
		log.VehicleID,
		log.DriverID,
		log.FilledAt,
		log.Liters,
		log.FuelStation,
		log.Notes,
		log.CreatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// List retrieves fuel logs matching the filter, newest fill first.
func (r *FuelLogRepository) List(ctx context.Context, filter repository.FuelLogFilter) ([]*domain.FuelLog, error) {
	query := `
		SELECT id, tenant_id, vehicle_id, driver_id, filled_at, liters,
		       fuel_station, notes, created_at
		FROM fuel_logs
		WHERE ($1 = '' OR tenant_id = $1)
		  AND ($2 = '' OR vehicle_id = $2)
		  AND ($3 = '' OR driver_id = $3)
		  AND ($4::timestamptz IS NULL OR filled_at >= $4)
		  AND ($5::timestamptz IS NULL OR filled_at <= $5)
		ORDER BY filled_at DESC, created_at DESC
		LIMIT 200
	`

	rows, err := r.q.QueryContext(ctx, query,
		filter.TenantID,
		filter.VehicleID,
		filter.DriverID,
		nullTime(filter.From),
		nullTime(filter.To),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.FuelLog
	for rows.Next() {
		var log domain.FuelLog
		if err := rows.Scan(
			&log.ID,
			&log.TenantID,
			&log.VehicleID,
			&log.DriverID,
			&log.FilledAt,
			&log.Liters,
			&log.FuelStation,
			&log.Notes,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}

// Ensure FuelLogRepository implements repository.FuelLogRepository.
var _ repository.FuelLogRepository = (*FuelLogRepository)(nil)
