package repository

import "context"

// TxRepositories bundles the repositories that participate in the trip
// write transaction.
type TxRepositories struct {
	Trips    TripRepository
	Vehicles VehicleRepository
	Odometer MonthlyOdometerRepository
}

// UnitOfWork runs fn against transaction-scoped repositories. If fn
// returns an error the transaction is rolled back and nothing is
// persisted; otherwise it commits before WithinTx returns.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx TxRepositories) error) error
}
