package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"fleet/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

// translateError maps Postgres constraint violations onto repository
// sentinel errors so the service layer never sees driver-level codes.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return repository.ErrDuplicate
		case pqExclusionViolation:
			return repository.ErrScheduleOverlap
		}
	}
	return err
}

// UnitOfWork runs repository operations inside a single transaction.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a UnitOfWork over the given database handle.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx begins a transaction, hands transaction-scoped repositories
// to fn, and commits on success. Any error from fn rolls everything
// back, so the trip write and the odometer cascade land atomically or
// not at all.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(tx repository.TxRepositories) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.TxRepositories{
		Trips:    NewTripRepositoryWithTx(tx),
		Vehicles: NewVehicleRepositoryWithTx(tx),
		Odometer: NewMonthlyOdometerRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return translateError(err)
	}

	return nil
}

// Ensure UnitOfWork implements repository.UnitOfWork.
var _ repository.UnitOfWork = (*UnitOfWork)(nil)
