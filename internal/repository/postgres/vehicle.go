package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `
	id, tenant_id, license_plate, model, brand, year, max_passengers,
	odometer_current, odometer_initial, odometer_monthly_limit,
	last_service_date, next_service_date, status, created_at, updated_at
`

// Create persists a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (
			id, tenant_id, license_plate, model, brand, year, max_passengers,
			odometer_current, odometer_initial, odometer_monthly_limit,
			last_service_date, next_service_date, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.TenantID,
		vehicle.LicensePlate,
		vehicle.Model,
		vehicle.Brand,
		vehicle.Year,
		vehicle.MaxPassengers,
		vehicle.OdometerCurrent,
		vehicle.OdometerInitial,
		vehicle.OdometerMonthlyLimit,
		nullTime(vehicle.LastServiceDate),
		nullTime(vehicle.NextServiceDate),
		vehicle.Status,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}

	return nil
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a vehicle and locks its row. All trip
// writes for a vehicle funnel through this lock, serializing the
// conflict scan against concurrent bookings.
func (r *VehicleRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// List retrieves vehicles ordered by plate.
func (r *VehicleRepository) List(ctx context.Context, tenantID, search string) ([]*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE ($1 = '' OR tenant_id = $1)
		  AND ($2 = '' OR license_plate ILIKE '%' || $2 || '%' OR brand ILIKE '%' || $2 || '%' OR model ILIKE '%' || $2 || '%')
		ORDER BY license_plate
	`

	rows, err := r.q.QueryContext(ctx, query, tenantID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

// UpdateStatus updates the operational status of a vehicle.
func (r *VehicleRepository) UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	query := `UPDATE vehicles SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateOdometer overwrites the vehicle's live odometer reading.
func (r *VehicleRepository) UpdateOdometer(ctx context.Context, id string, odometer int) error {
	query := `UPDATE vehicles SET odometer_current = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, odometer, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// CountByStatus returns vehicle counts grouped by status.
func (r *VehicleRepository) CountByStatus(ctx context.Context, tenantID string) (map[domain.VehicleStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM vehicles
		WHERE ($1 = '' OR tenant_id = $1)
		GROUP BY status
	`

	rows, err := r.q.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.VehicleStatus]int)
	for rows.Next() {
		var status domain.VehicleStatus
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		counts[status] = total
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *VehicleRepository) scanOne(row *sql.Row) (*domain.Vehicle, error) {
	vehicle, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

func (r *VehicleRepository) scanRow(row rowScanner) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	var lastService, nextService sql.NullTime

	err := row.Scan(
		&vehicle.ID,
		&vehicle.TenantID,
		&vehicle.LicensePlate,
		&vehicle.Model,
		&vehicle.Brand,
		&vehicle.Year,
		&vehicle.MaxPassengers,
		&vehicle.OdometerCurrent,
		&vehicle.OdometerInitial,
		&vehicle.OdometerMonthlyLimit,
		&lastService,
		&nextService,
		&vehicle.Status,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastService.Valid {
		vehicle.LastServiceDate = lastService.Time
	}
	if nextService.Valid {
		vehicle.NextServiceDate = nextService.Time
	}

	return &vehicle, nil
}

// Ensure VehicleRepository implements repository.VehicleRepository.
var _ repository.VehicleRepository = (*VehicleRepository)(nil)
