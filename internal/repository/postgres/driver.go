package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `
	id, tenant_id, name, cpf, cnh_number, cnh_category, cnh_expiration_date,
	phone, status, access_code, created_at, updated_at
`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (
			id, tenant_id, name, cpf, cnh_number, cnh_category, cnh_expiration_date,
			phone, status, access_code, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.TenantID,
		driver.Name,
		driver.CPF,
		driver.CNHNumber,
		driver.CNHCategory,
		driver.CNHExpirationDate,
		driver.Phone,
		driver.Status,
		driver.AccessCode,
		driver.CreatedAt,
		driver.UpdatedAt,
	)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByAccessCode retrieves a driver by portal access code.
func (r *DriverRepository) GetByAccessCode(ctx context.Context, code string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE access_code = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, code))
}

// List retrieves drivers ordered by name.
func (r *DriverRepository) List(ctx context.Context, tenantID string) ([]*domain.Driver, error) {
	query := `
		SELECT ` + driverColumns + `
		FROM drivers
		WHERE ($1 = '' OR tenant_id = $1)
		ORDER BY name
	`

	rows, err := r.q.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *DriverRepository) scanOne(row *sql.Row) (*domain.Driver, error) {
	driver, err := scanDriver(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	err := row.Scan(
		&driver.ID,
		&driver.TenantID,
		&driver.Name,
		&driver.CPF,
		&driver.CNHNumber,
		&driver.CNHCategory,
		&driver.CNHExpirationDate,
		&driver.Phone,
		&driver.Status,
		&driver.AccessCode,
		&driver.CreatedAt,
		&driver.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
