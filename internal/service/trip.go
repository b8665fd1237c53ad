package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleet/internal/domain"
	internalredis "fleet/internal/redis"
	"fleet/internal/repository"
)

// bookingLockTTL bounds how long a booking may hold a vehicle's
// distributed lock before it expires on its own.
const bookingLockTTL = 5 * time.Second

// TripService is the trip ledger: it owns the booking state machine,
// the per-vehicle conflict check, and the completion cascade into the
// monthly odometer totals.
type TripService struct {
	uow           repository.UnitOfWork
	tripRepo      repository.TripRepository
	vehicleRepo   repository.VehicleRepository
	driverRepo    repository.DriverRepository
	aggregator    *OdometerAggregator
	notifications *NotificationService
	locks         internalredis.LockStoreInterface
	logger        *zap.Logger
}

// NewTripService creates a new TripService. locks may be nil, in which
// case only the database row lock serializes concurrent bookings.
func NewTripService(
	uow repository.UnitOfWork,
	tripRepo repository.TripRepository,
	vehicleRepo repository.VehicleRepository,
	driverRepo repository.DriverRepository,
	aggregator *OdometerAggregator,
	notifications *NotificationService,
	locks internalredis.LockStoreInterface,
	logger *zap.Logger,
) *TripService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripService{
		uow:           uow,
		tripRepo:      tripRepo,
		vehicleRepo:   vehicleRepo,
		driverRepo:    driverRepo,
		aggregator:    aggregator,
		notifications: notifications,
		locks:         locks,
		logger:        logger,
	}
}

// CreateTripInput contains the parameters for booking a trip.
type CreateTripInput struct {
	TenantID               string // superadmin only; others are stamped from the principal
	VehicleID              string
	DriverID               string
	Origin                 string
	Destination            string
	DepartureDatetime      time.Time
	ReturnDatetimeExpected time.Time
	ReturnDatetimeActual   time.Time
	OdometerStart          int
	OdometerEnd            *int
	Category               domain.TripCategory
	PassengersCount        int
	Passengers             []PassengerInput
	CargoDescription       string
	CargoSize              string
	CargoQuantity          int
	CargoPurpose           string
	StopsDescription       string
	Notes                  string
	Status                 domain.TripStatus
}

// UpdateTripInput is a typed partial update. Nil fields keep the
// current value; the merge over the existing trip happens once, before
// any rule evaluation, so every invariant check sees one consistent
// candidate state.
type UpdateTripInput struct {
	VehicleID              *string
	DriverID               *string
	Origin                 *string
	Destination            *string
	DepartureDatetime      *time.Time
	ReturnDatetimeExpected *time.Time
	ReturnDatetimeActual   *time.Time
	OdometerStart          *int
	OdometerEnd            *int
	Category               *domain.TripCategory
	PassengersCount        *int
	Passengers             []PassengerInput // nil keeps the stored manifest
	CargoDescription       *string
	CargoSize              *string
	CargoQuantity          *int
	CargoPurpose           *string
	StopsDescription       *string
	Notes                  *string
	Status                 *domain.TripStatus
}

// CreateTrip books a new trip for the acting principal. All validation
// runs before any write; the insert and, for trips created directly in
// COMPLETED, the odometer cascade commit as one atomic unit.
func (s *TripService) CreateTrip(ctx context.Context, principal domain.Principal, input CreateTripInput) (*domain.Trip, error) {
	if !principal.CanWrite() {
		return nil, ErrReadOnlyRole
	}
	if input.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	if input.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	driver, err := s.driverRepo.GetByID(ctx, input.DriverID)
	if err != nil {
		return nil, err
	}

	tenantID, err := ResolveTenant(principal, vehicle, driver, input.TenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	candidate := &domain.Trip{
		ID:                     uuid.New().String(),
		TenantID:               tenantID,
		VehicleID:              input.VehicleID,
		DriverID:               input.DriverID,
		Origin:                 input.Origin,
		Destination:            input.Destination,
		DepartureDatetime:      input.DepartureDatetime,
		ReturnDatetimeExpected: input.ReturnDatetimeExpected,
		ReturnDatetimeActual:   input.ReturnDatetimeActual,
		OdometerStart:          input.OdometerStart,
		OdometerEnd:            input.OdometerEnd,
		Category:               input.Category,
		PassengersCount:        input.PassengersCount,
		CargoDescription:       input.CargoDescription,
		CargoSize:              input.CargoSize,
		CargoQuantity:          input.CargoQuantity,
		CargoPurpose:           input.CargoPurpose,
		StopsDescription:       input.StopsDescription,
		Notes:                  input.Notes,
		Status:                 input.Status,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if candidate.Category == "" {
		candidate.Category = domain.TripCategoryPassenger
	}
	if candidate.Status == "" {
		candidate.Status = domain.TripStatusPlanned
	}

	if err := s.validateCandidate(candidate, vehicle, input.Passengers); err != nil {
		return nil, err
	}

	event, err := s.persistWithConflictCheck(ctx, candidate, "", true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip booked",
		zap.String("trip_id", candidate.ID),
		zap.String("vehicle_id", candidate.VehicleID),
		zap.String("tenant_id", candidate.TenantID),
		zap.String("status", string(candidate.Status)),
	)
	s.publishCompleted(ctx, event)

	return candidate, nil
}

// UpdateTrip applies a partial update to a trip. Terminal trips are
// immutable; transitioning into COMPLETED runs the odometer cascade in
// the same transaction as the status write.
func (s *TripService) UpdateTrip(ctx context.Context, principal domain.Principal, tripID string, input UpdateTripInput) (*domain.Trip, error) {
	if !principal.CanWrite() {
		return nil, ErrReadOnlyRole
	}
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	existing, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	// Trips from other tenants stay invisible rather than revealing
	// their existence.
	if !canReadTenant(principal, existing.TenantID) {
		return nil, repository.ErrNotFound
	}

	if existing.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	candidate := mergeTrip(existing, input)
	if !existing.Status.CanTransition(candidate.Status) {
		return nil, ErrInvalidTransition
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, candidate.VehicleID)
	if err != nil {
		return nil, err
	}
	driver, err := s.driverRepo.GetByID(ctx, candidate.DriverID)
	if err != nil {
		return nil, err
	}

	tenantID, err := ResolveTenant(principal, vehicle, driver, existing.TenantID)
	if err != nil {
		return nil, err
	}
	candidate.TenantID = tenantID

	if err := s.validateCandidate(candidate, vehicle, input.Passengers); err != nil {
		return nil, err
	}

	completedNow := candidate.Status == domain.TripStatusCompleted &&
		existing.Status != domain.TripStatusCompleted

	event, err := s.persistWithConflictCheck(ctx, candidate, candidate.ID, completedNow)
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip updated",
		zap.String("trip_id", candidate.ID),
		zap.String("status", string(candidate.Status)),
	)
	s.publishCompleted(ctx, event)

	return candidate, nil
}

// GetTrip retrieves a trip visible to the principal.
func (s *TripService) GetTrip(ctx context.Context, principal domain.Principal, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !canReadTenant(principal, trip.TenantID) {
		return nil, repository.ErrNotFound
	}
	return trip, nil
}

// ListTrips retrieves trips matching the filter, confined to the
// principal's tenant unless it is a superadmin.
func (s *TripService) ListTrips(ctx context.Context, principal domain.Principal, filter repository.TripFilter) ([]*domain.Trip, error) {
	if scope := tenantScope(principal); scope != "" {
		filter.TenantID = scope
	}
	return s.tripRepo.List(ctx, filter)
}

// ListActiveTripsForVehicle returns the vehicle's PLANNED and
// IN_PROGRESS trips, optionally excluding one trip. This is the same
// set the conflict check scans, exposed for vehicle schedule views.
func (s *TripService) ListActiveTripsForVehicle(ctx context.Context, vehicleID, excludeTripID string) ([]*domain.Trip, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	return s.tripRepo.ListActiveForVehicle(ctx, vehicleID, excludeTripID)
}

// DriverBriefing is the shareable trip summary for the assigned driver.
type DriverBriefing struct {
	Message      string
	WhatsAppLink string
}

// BuildDriverBriefing composes the trip message sent to the driver and
// a wa.me deep link against the driver's phone.
func (s *TripService) BuildDriverBriefing(ctx context.Context, principal domain.Principal, tripID string) (*DriverBriefing, error) {
	trip, err := s.GetTrip(ctx, principal, tripID)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, trip.VehicleID)
	if err != nil {
		return nil, err
	}
	driver, err := s.driverRepo.GetByID(ctx, trip.DriverID)
	if err != nil {
		return nil, err
	}

	stops := trip.StopsDescription
	if stops == "" {
		stops = "none"
	}

	lines := []string{
		fmt.Sprintf("Hello %s, here is your trip:", driver.Name),
		fmt.Sprintf("Date: %s", trip.DepartureDatetime.Format("02/01/2006")),
		fmt.Sprintf("Departure time: %s", trip.DepartureDatetime.Format("15:04")),
		fmt.Sprintf("Origin: %s", trip.Origin),
		fmt.Sprintf("Destination: %s", trip.Destination),
		fmt.Sprintf("Stops: %s", stops),
		fmt.Sprintf("Vehicle: %s %s (%s)", vehicle.Brand, vehicle.Model, vehicle.LicensePlate),
	}
	message := strings.Join(lines, "\n")

	var digits strings.Builder
	for _, r := range driver.Phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	return &DriverBriefing{
		Message:      message,
		WhatsAppLink: fmt.Sprintf("https://wa.me/%s?text=%s", digits.String(), url.QueryEscape(message)),
	}, nil
}

// validateCandidate runs every precondition gate against the merged
// candidate before anything touches the database.
func (s *TripService) validateCandidate(candidate *domain.Trip, vehicle *domain.Vehicle, manifest []PassengerInput) error {
	switch candidate.Category {
	case domain.TripCategoryPassenger, domain.TripCategoryObject, domain.TripCategoryMixed:
	default:
		return ErrInvalidCategory
	}
	switch candidate.Status {
	case domain.TripStatusPlanned, domain.TripStatusInProgress, domain.TripStatusCompleted, domain.TripStatusCancelled:
	default:
		return ErrInvalidStatus
	}

	if err := NormalizeManifest(candidate, manifest); err != nil {
		return err
	}

	if vehicle.Status == domain.VehicleStatusMaintenance {
		return ErrVehicleUnavailable
	}
	if candidate.PassengersCount > 0 && candidate.PassengersCount > vehicle.MaxPassengers {
		return ErrCapacityExceeded
	}
	if !candidate.ReturnDatetimeExpected.After(candidate.DepartureDatetime) {
		return ErrReturnBeforeDeparture
	}

	if candidate.Status == domain.TripStatusCompleted {
		if candidate.OdometerEnd == nil || *candidate.OdometerEnd < candidate.OdometerStart {
			return ErrIncompleteOdometerData
		}
	}

	return nil
}

// persistWithConflictCheck serializes the conflict scan and the trip
// write per vehicle: a distributed booking lock fends off sibling
// instances, then the vehicle row lock inside the transaction makes the
// scan-and-write atomic against anything that slipped past. runCascade
// triggers the odometer fold for trips landing in COMPLETED.
func (s *TripService) persistWithConflictCheck(ctx context.Context, candidate *domain.Trip, excludeTripID string, runCascade bool) (*TripCompletedEvent, error) {
	if s.locks != nil {
		acquired, err := s.locks.AcquireVehicleLock(ctx, candidate.VehicleID, bookingLockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, ErrVehicleBusy
		}
		defer func() {
			_ = s.locks.ReleaseVehicleLock(ctx, candidate.VehicleID)
		}()
	}

	var event *TripCompletedEvent
	err := s.uow.WithinTx(ctx, func(tx repository.TxRepositories) error {
		lockedVehicle, err := tx.Vehicles.GetByIDForUpdate(ctx, candidate.VehicleID)
		if err != nil {
			return err
		}

		if candidate.Status.IsActive() {
			active, err := tx.Trips.ListActiveForVehicle(ctx, candidate.VehicleID, excludeTripID)
			if err != nil {
				return err
			}
			for _, other := range active {
				if other.OverlapsWindow(candidate.DepartureDatetime, candidate.ReturnDatetimeExpected) {
					return &ScheduleConflictError{ConflictingTripID: other.ID}
				}
			}
		}

		if excludeTripID == "" {
			err = tx.Trips.Create(ctx, candidate)
		} else {
			err = tx.Trips.Update(ctx, candidate)
		}
		if err != nil {
			if errors.Is(err, repository.ErrScheduleOverlap) {
				return &ScheduleConflictError{}
			}
			return err
		}

		if runCascade && candidate.Status == domain.TripStatusCompleted {
			event, err = s.aggregator.Apply(ctx, tx, candidate, lockedVehicle)
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// publishCompleted emits the TripCompleted event after the transaction
// has committed.
func (s *TripService) publishCompleted(ctx context.Context, event *TripCompletedEvent) {
	if event == nil {
		return
	}
	if event.NewVehicleStatus == domain.VehicleStatusMaintenance {
		s.logger.Warn("vehicle flagged for maintenance after monthly limit breach",
			zap.String("vehicle_id", event.VehicleID),
			zap.Int("distance_km", event.Distance),
		)
	}
	if s.notifications != nil {
		s.notifications.PublishTripCompleted(ctx, event)
	}
}

// mergeTrip overlays a partial update onto a snapshot of the current
// trip and returns the single candidate every rule evaluates.
func mergeTrip(existing *domain.Trip, input UpdateTripInput) *domain.Trip {
	candidate := *existing
	candidate.Passengers = append([]domain.Passenger(nil), existing.Passengers...)

	if input.VehicleID != nil {
		candidate.VehicleID = *input.VehicleID
	}
	if input.DriverID != nil {
		candidate.DriverID = *input.DriverID
	}
	if input.Origin != nil {
		candidate.Origin = *input.Origin
	}
	if input.Destination != nil {
		candidate.Destination = *input.Destination
	}
	if input.DepartureDatetime != nil {
		candidate.DepartureDatetime = *input.DepartureDatetime
	}
	if input.ReturnDatetimeExpected != nil {
		candidate.ReturnDatetimeExpected = *input.ReturnDatetimeExpected
	}
	if input.ReturnDatetimeActual != nil {
		candidate.ReturnDatetimeActual = *input.ReturnDatetimeActual
	}
	if input.OdometerStart != nil {
		candidate.OdometerStart = *input.OdometerStart
	}
	if input.OdometerEnd != nil {
		candidate.OdometerEnd = input.OdometerEnd
	}
	if input.Category != nil {
		candidate.Category = *input.Category
	}
	if input.PassengersCount != nil {
		candidate.PassengersCount = *input.PassengersCount
	}
	if input.CargoDescription != nil {
		candidate.CargoDescription = *input.CargoDescription
	}
	if input.CargoSize != nil {
		candidate.CargoSize = *input.CargoSize
	}
	if input.CargoQuantity != nil {
		candidate.CargoQuantity = *input.CargoQuantity
	}
	if input.CargoPurpose != nil {
		candidate.CargoPurpose = *input.CargoPurpose
	}
	if input.StopsDescription != nil {
		candidate.StopsDescription = *input.StopsDescription
	}
	if input.Notes != nil {
		candidate.Notes = *input.Notes
	}
	if input.Status != nil {
		candidate.Status = *input.Status
	}
	candidate.UpdatedAt = time.Now()

	return &candidate
}
