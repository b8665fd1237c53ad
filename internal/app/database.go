package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/newrelic/go-agent/v3/integrations/nrpq" // Registers "nrpostgres" driver
	"github.com/newrelic/go-agent/v3/newrelic"

	"fleet/internal/config"
)

// NewDatabase creates a new PostgreSQL connection with optimized settings.
// If nrApp is provided, it uses New Relic instrumented driver for automatic SQL tracing.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig, nrApp *newrelic.Application) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	var db *sql.DB
	var err error

	// The "nrpostgres" driver is automatically registered by the nrpq import.
	if nrApp != nil {
		db, err = sql.Open("nrpostgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database with nrpq: %w", err)
		}
	} else {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection.
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// schema is the bootstrap DDL. The trips exclusion constraint is the
// last line of defense against overlapping active bookings for one
// vehicle; the application also checks under a row lock, so 23P01 from
// this constraint only fires on races the lock did not cover.
const schema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS vehicles (
	id UUID PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	license_plate TEXT NOT NULL,
	model TEXT NOT NULL DEFAULT '',
	brand TEXT NOT NULL DEFAULT '',
	year INT NOT NULL DEFAULT 0,
	max_passengers INT NOT NULL DEFAULT 0,
	odometer_current INT NOT NULL DEFAULT 0,
	odometer_initial INT NOT NULL DEFAULT 0,
	odometer_monthly_limit INT NOT NULL DEFAULT 0,
	last_service_date TIMESTAMPTZ,
	next_service_date TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'AVAILABLE',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (tenant_id, license_plate)
);

CREATE TABLE IF NOT EXISTS drivers (
	id UUID PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	name TEXT NOT NULL,
	cpf TEXT NOT NULL,
	cnh_number TEXT NOT NULL DEFAULT '',
	cnh_category TEXT NOT NULL DEFAULT '',
	cnh_expiration_date TIMESTAMPTZ,
	phone TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'ACTIVE',
	access_code TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (tenant_id, cpf)
);

CREATE TABLE IF NOT EXISTS trips (
	id UUID PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	vehicle_id UUID NOT NULL REFERENCES vehicles(id),
	driver_id UUID NOT NULL REFERENCES drivers(id),
	origin TEXT NOT NULL DEFAULT '',
	destination TEXT NOT NULL DEFAULT '',
	departure_datetime TIMESTAMPTZ NOT NULL,
	return_datetime_expected TIMESTAMPTZ NOT NULL,
	return_datetime_actual TIMESTAMPTZ,
	odometer_start INT NOT NULL DEFAULT 0,
	odometer_end INT,
	category TEXT NOT NULL DEFAULT 'PASSENGER',
	passengers_count INT NOT NULL DEFAULT 0,
	passengers_details JSONB,
	cargo_description TEXT NOT NULL DEFAULT '',
	cargo_size TEXT NOT NULL DEFAULT '',
	cargo_quantity INT NOT NULL DEFAULT 0,
	cargo_purpose TEXT NOT NULL DEFAULT '',
	stops_description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'PLANNED',
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE trips DROP CONSTRAINT IF EXISTS trips_no_vehicle_overlap;
ALTER TABLE trips ADD CONSTRAINT trips_no_vehicle_overlap
	EXCLUDE USING gist (
		vehicle_id WITH =,
		tstzrange(departure_datetime, return_datetime_expected, '[)') WITH &&
	) WHERE (status IN ('PLANNED', 'IN_PROGRESS'));

CREATE INDEX IF NOT EXISTS idx_trips_tenant ON trips (tenant_id);
CREATE INDEX IF NOT EXISTS idx_trips_vehicle ON trips (vehicle_id);
CREATE INDEX IF NOT EXISTS idx_trips_departure ON trips (departure_datetime);

CREATE TABLE IF NOT EXISTS monthly_odometer (
	id UUID PRIMARY KEY,
	vehicle_id UUID NOT NULL REFERENCES vehicles(id),
	year INT NOT NULL,
	month INT NOT NULL,
	kilometers INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (vehicle_id, year, month)
);

CREATE TABLE IF NOT EXISTS fuel_logs (
	id UUID PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	vehicle_id UUID NOT NULL REFERENCES vehicles(id),
	driver_id UUID NOT NULL REFERENCES drivers(id),
	filled_at TIMESTAMPTZ NOT NULL,
	liters DOUBLE PRECISION NOT NULL DEFAULT 0,
	fuel_station TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the bootstrap schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
