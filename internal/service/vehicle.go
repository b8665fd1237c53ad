package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleet/internal/domain"
	internalredis "fleet/internal/redis"
	"fleet/internal/repository"
)

// VehicleService is the fleet registry: vehicle creation, lookup, and
// the explicit status operations that clear maintenance flags.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	cacheStore  internalredis.CacheStoreInterface
	logger      *zap.Logger
}

// NewVehicleService creates a new VehicleService. cacheStore may be nil.
func NewVehicleService(vehicleRepo repository.VehicleRepository, cacheStore internalredis.CacheStoreInterface, logger *zap.Logger) *VehicleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		cacheStore:  cacheStore,
		logger:      logger,
	}
}

// CreateVehicleInput contains the parameters for registering a vehicle.
type CreateVehicleInput struct {
	TenantID             string // superadmin only
	LicensePlate         string
	Model                string
	Brand                string
	Year                 int
	MaxPassengers        int
	OdometerInitial      int
	OdometerMonthlyLimit int
	LastServiceDate      time.Time
	NextServiceDate      time.Time
}

// CreateVehicle registers a new vehicle in the principal's tenant. The
// live odometer starts at the initial reading.
func (s *VehicleService) CreateVehicle(ctx context.Context, principal domain.Principal, input CreateVehicleInput) (*domain.Vehicle, error) {
	if !principal.CanWrite() {
		return nil, ErrReadOnlyRole
	}

	tenantID, err := ResolveTenant(principal, nil, nil, input.TenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	vehicle := &domain.Vehicle{
		ID:                   uuid.New().String(),
		TenantID:             tenantID,
		LicensePlate:         input.LicensePlate,
		Model:                input.Model,
		Brand:                input.Brand,
		Year:                 input.Year,
		MaxPassengers:        input.MaxPassengers,
		OdometerCurrent:      input.OdometerInitial,
		OdometerInitial:      input.OdometerInitial,
		OdometerMonthlyLimit: input.OdometerMonthlyLimit,
		LastServiceDate:      input.LastServiceDate,
		NextServiceDate:      input.NextServiceDate,
		Status:               domain.VehicleStatusAvailable,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.logger.Info("vehicle registered",
		zap.String("vehicle_id", vehicle.ID),
		zap.String("plate", vehicle.LicensePlate),
		zap.String("tenant_id", vehicle.TenantID),
	)

	return vehicle, nil
}

// GetVehicle retrieves a vehicle visible to the principal, serving from
// cache when the cached copy belongs to a visible tenant. Cache
// failures fall through to the repository.
func (s *VehicleService) GetVehicle(ctx context.Context, principal domain.Principal, vehicleID string) (*domain.Vehicle, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetVehicle(ctx, vehicleID)
		if err == nil && cached != nil {
			if !canReadTenant(principal, cached.TenantID) {
				return nil, repository.ErrNotFound
			}
			return cached, nil
		}
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !canReadTenant(principal, vehicle.TenantID) {
		return nil, repository.ErrNotFound
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetVehicle(ctx, vehicle)
	}

	return vehicle, nil
}

// ListVehicles retrieves vehicles scoped to the principal's tenant,
// optionally filtered by a plate/brand/model search term.
func (s *VehicleService) ListVehicles(ctx context.Context, principal domain.Principal, search string) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.List(ctx, tenantScope(principal), search)
}

// SetVehicleStatus is the explicit registry operation for status
// changes, including the operator action that clears the MAINTENANCE
// flag raised by a monthly-limit breach.
func (s *VehicleService) SetVehicleStatus(ctx context.Context, principal domain.Principal, vehicleID string, status domain.VehicleStatus) (*domain.Vehicle, error) {
	if !principal.CanWrite() {
		return nil, ErrReadOnlyRole
	}
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	switch status {
	case domain.VehicleStatusAvailable, domain.VehicleStatusInUse,
		domain.VehicleStatusMaintenance, domain.VehicleStatusInactive:
	default:
		return nil, ErrInvalidStatus
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if _, err := ResolveTenant(principal, vehicle, nil, ""); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.UpdateStatus(ctx, vehicleID, status); err != nil {
		return nil, err
	}
	vehicle.Status = status

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateVehicle(ctx, vehicleID)
	}

	s.logger.Info("vehicle status changed",
		zap.String("vehicle_id", vehicleID),
		zap.String("status", string(status)),
	)

	return vehicle, nil
}
