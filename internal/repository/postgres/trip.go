package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, tenant_id, vehicle_id, driver_id, origin, destination,
	departure_datetime, return_datetime_expected, return_datetime_actual,
	odometer_start, odometer_end, category, passengers_count, passengers_details,
	cargo_description, cargo_size, cargo_quantity, cargo_purpose,
	stops_description, status, notes, created_at, updated_at
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (
			id, tenant_id, vehicle_id, driver_id, origin, destination,
			departure_datetime, return_datetime_expected, return_datetime_actual,
			odometer_start, odometer_end, category, passengers_count, passengers_details,
			cargo_description, cargo_size, cargo_quantity, cargo_purpose,
			stops_description, status, notes, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	manifest, err := marshalManifest(trip.Passengers)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		trip.ID,
		trip.TenantID,
		trip.VehicleID,
		trip.DriverID,
		trip.Origin,
		trip.Destination,
		trip.DepartureDatetime,
		trip.ReturnDatetimeExpected,
		nullTime(trip.ReturnDatetimeActual),
		trip.OdometerStart,
		nullInt(trip.OdometerEnd),
		trip.Category,
		trip.PassengersCount,
		manifest,
		trip.CargoDescription,
		trip.CargoSize,
		trip.CargoQuantity,
		trip.CargoPurpose,
		trip.StopsDescription,
		trip.Status,
		trip.Notes,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}

	return nil
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips SET
			vehicle_id = $1, driver_id = $2, origin = $3, destination = $4,
			departure_datetime = $5, return_datetime_expected = $6, return_datetime_actual = $7,
			odometer_start = $8, odometer_end = $9, category = $10,
			passengers_count = $11, passengers_details = $12,
			cargo_description = $13, cargo_size = $14, cargo_quantity = $15, cargo_purpose = $16,
			stops_description = $17, status = $18, notes = $19, updated_at = NOW()
		WHERE id = $20
	`

	manifest, err := marshalManifest(trip.Passengers)
	if err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, query,
		trip.VehicleID,
		trip.DriverID,
		trip.Origin,
		trip.Destination,
		trip.DepartureDatetime,
		trip.ReturnDatetimeExpected,
		nullTime(trip.ReturnDatetimeActual),
		trip.OdometerStart,
		nullInt(trip.OdometerEnd),
		trip.Category,
		trip.PassengersCount,
		manifest,
		trip.CargoDescription,
		trip.CargoSize,
		trip.CargoQuantity,
		trip.CargoPurpose,
		trip.StopsDescription,
		trip.Status,
		trip.Notes,
		trip.ID,
	)
	if err != nil {
		return translateError(err)
	}
	return requireRow(result)
}

// List retrieves trips matching the filter, most recent departure first.
func (r *TripRepository) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE ($1 = '' OR tenant_id = $1)
		  AND ($2 = '' OR vehicle_id = $2)
		  AND ($3 = '' OR driver_id = $3)
		  AND ($4 = '' OR status = $4)
		  AND ($5 = '' OR category = $5)
		  AND ($6::timestamptz IS NULL OR departure_datetime >= $6)
		  AND ($7::timestamptz IS NULL OR departure_datetime < $7)
		ORDER BY departure_datetime DESC
		LIMIT 200
	`

	rows, err := r.q.QueryContext(ctx, query,
		filter.TenantID,
		filter.VehicleID,
		filter.DriverID,
		string(filter.Status),
		string(filter.Category),
		nullTime(filter.From),
		nullTime(filter.To),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// ListActiveForVehicle retrieves the vehicle's PLANNED and IN_PROGRESS
// trips. Callers run this under the vehicle row lock when checking for
// booking conflicts.
func (r *TripRepository) ListActiveForVehicle(ctx context.Context, vehicleID, excludeTripID string) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE vehicle_id = $1
		  AND status IN ($2, $3)
		  AND ($4 = '' OR id != $4)
		ORDER BY departure_datetime
	`

	rows, err := r.q.QueryContext(ctx, query,
		vehicleID,
		domain.TripStatusPlanned,
		domain.TripStatusInProgress,
		excludeTripID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// CountByStatusInMonth returns trip counts grouped by status for
// departures in the given month.
func (r *TripRepository) CountByStatusInMonth(ctx context.Context, tenantID string, year int, month time.Month) (map[domain.TripStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM trips
		WHERE ($1 = '' OR tenant_id = $1)
		  AND EXTRACT(YEAR FROM departure_datetime) = $2
		  AND EXTRACT(MONTH FROM departure_datetime) = $3
		GROUP BY status
	`

	rows, err := r.q.QueryContext(ctx, query, tenantID, year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TripStatus]int)
	for rows.Next() {
		var status domain.TripStatus
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		counts[status] = total
	}
	return counts, rows.Err()
}

func marshalManifest(passengers []domain.Passenger) ([]byte, error) {
	if passengers == nil {
		passengers = []domain.Passenger{}
	}
	return json.Marshal(passengers)
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var returnActual sql.NullTime
	var odometerEnd sql.NullInt64
	var manifest []byte

	err := row.Scan(
		&trip.ID,
		&trip.TenantID,
		&trip.VehicleID,
		&trip.DriverID,
		&trip.Origin,
		&trip.Destination,
		&trip.DepartureDatetime,
		&trip.ReturnDatetimeExpected,
		&returnActual,
		&trip.OdometerStart,
		&odometerEnd,
		&trip.Category,
		&trip.PassengersCount,
		&manifest,
		&trip.CargoDescription,
		&trip.CargoSize,
		&trip.CargoQuantity,
		&trip.CargoPurpose,
		&trip.StopsDescription,
		&trip.Status,
		&trip.Notes,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if returnActual.Valid {
		trip.ReturnDatetimeActual = returnActual.Time
	}
	if odometerEnd.Valid {
		end := int(odometerEnd.Int64)
		trip.OdometerEnd = &end
	}
	if len(manifest) > 0 {
		if err := json.Unmarshal(manifest, &trip.Passengers); err != nil {
			return nil, err
		}
	}

	return &trip, nil
}

func collectTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
