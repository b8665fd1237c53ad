package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCrossTenantViolation is returned when a principal references a
	// vehicle or driver outside its own tenant.
	ErrCrossTenantViolation = errors.New("referenced entity belongs to another municipality")

	// ErrTenantMismatch is returned when the vehicle and driver on one
	// trip belong to different tenants.
	ErrTenantMismatch = errors.New("vehicle and driver belong to different municipalities")

	// ErrVehicleUnavailable is returned when booking against a vehicle
	// in MAINTENANCE status.
	ErrVehicleUnavailable = errors.New("vehicle under maintenance cannot take new trips")

	// ErrVehicleBusy is returned when another booking currently holds
	// the vehicle's distributed lock.
	ErrVehicleBusy = errors.New("vehicle is being booked by another request")

	// ErrCapacityExceeded is returned when the passenger count exceeds
	// the vehicle's capacity.
	ErrCapacityExceeded = errors.New("passenger count exceeds vehicle capacity")

	// ErrIncompleteOdometerData is returned when completing a trip
	// without a final odometer reading at or above the initial one.
	ErrIncompleteOdometerData = errors.New("completion requires odometer_end >= odometer_start")

	// ErrNegativeDistance indicates an invariant breach: a completed
	// trip reached the aggregator with odometer_end < odometer_start.
	ErrNegativeDistance = errors.New("completed trip has negative distance")

	// ErrReturnBeforeDeparture is returned when the expected return is
	// not after the departure.
	ErrReturnBeforeDeparture = errors.New("expected return must be after departure")

	// ErrInvalidTransition is returned for a state change the trip
	// lifecycle does not define, including any way out of COMPLETED or
	// CANCELLED.
	ErrInvalidTransition = errors.New("invalid trip status transition")

	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidVehicleID is returned when a vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidDriverID is returned when a driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidCategory is returned for an unknown trip category.
	ErrInvalidCategory = errors.New("invalid trip category")

	// ErrInvalidStatus is returned for an unknown trip status.
	ErrInvalidStatus = errors.New("invalid trip status")

	// ErrReadOnlyRole is returned when a VIEWER attempts a mutation.
	ErrReadOnlyRole = errors.New("role does not permit mutations")
)

// ScheduleConflictError is returned when a trip's interval overlaps an
// active trip on the same vehicle. It carries the conflicting trip so
// callers can render an actionable message.
type ScheduleConflictError struct {
	ConflictingTripID string
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("vehicle already booked by trip %s in that window", e.ConflictingTripID)
}

// ManifestError reports every offending manifest or cargo field at
// once. Fields are dotted paths such as "cargo_description" or
// "passengers[2].cpf".
type ManifestError struct {
	Fields []string
}

func (e *ManifestError) Error() string {
	return "invalid manifest: " + strings.Join(e.Fields, ", ")
}

// add records an offending field and returns the receiver for chaining.
func (e *ManifestError) add(field string) {
	e.Fields = append(e.Fields, field)
}

// orNil returns nil when no field was recorded.
func (e *ManifestError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
