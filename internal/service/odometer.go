package service

import (
	"context"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// TripCompletedEvent is emitted after a trip's completion has been
// committed, for reporting and notification collaborators.
type TripCompletedEvent struct {
	TripID           string
	VehicleID        string
	Distance         int
	NewVehicleStatus domain.VehicleStatus
}

// OdometerAggregator folds a completed trip's distance into the
// vehicle's live odometer and the monthly running total. It runs
// inside the same transaction as the triggering trip write, so no
// observer ever sees a completed trip whose vehicle or aggregate lags.
type OdometerAggregator struct {
	loc *time.Location
}

// NewOdometerAggregator creates an aggregator resolving calendar months
// in the fleet's local time zone.
func NewOdometerAggregator(loc *time.Location) *OdometerAggregator {
	if loc == nil {
		loc = time.Local
	}
	return &OdometerAggregator{loc: loc}
}

// Apply executes the completion cascade for a trip that has just
// transitioned into COMPLETED. The caller must hold the vehicle's row
// lock within tx. Returns the event describing the fold.
//
// A negative distance means the completion gate upstream was bypassed;
// that is an invariant breach and aborts the whole transaction rather
// than being ignored.
func (a *OdometerAggregator) Apply(ctx context.Context, tx repository.TxRepositories, trip *domain.Trip, vehicle *domain.Vehicle) (*TripCompletedEvent, error) {
	if trip.OdometerEnd == nil {
		return nil, ErrIncompleteOdometerData
	}

	distance := *trip.OdometerEnd - trip.OdometerStart
	if distance < 0 {
		return nil, ErrNegativeDistance
	}

	// The live reading always reflects the most recently completed
	// trip's ending value; this is an overwrite, not an addition.
	if err := tx.Vehicles.UpdateOdometer(ctx, vehicle.ID, *trip.OdometerEnd); err != nil {
		return nil, err
	}
	vehicle.OdometerCurrent = *trip.OdometerEnd

	departure := trip.DepartureDatetime.In(a.loc)
	total, err := tx.Odometer.AddDistance(ctx, vehicle.ID, departure.Year(), int(departure.Month()), distance)
	if err != nil {
		return nil, err
	}

	event := &TripCompletedEvent{
		TripID:           trip.ID,
		VehicleID:        vehicle.ID,
		Distance:         distance,
		NewVehicleStatus: vehicle.Status,
	}

	// Soft maintenance alert on monthly limit breach. Deliberately
	// coarse: the same status also covers mechanical maintenance, and
	// clearing it takes an explicit registry operation.
	if vehicle.OdometerMonthlyLimit > 0 && total > vehicle.OdometerMonthlyLimit {
		if err := tx.Vehicles.UpdateStatus(ctx, vehicle.ID, domain.VehicleStatusMaintenance); err != nil {
			return nil, err
		}
		vehicle.Status = domain.VehicleStatusMaintenance
		event.NewVehicleStatus = domain.VehicleStatusMaintenance
	}

	return event, nil
}
