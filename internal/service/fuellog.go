package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// FuelLogService records and lists fuel fills.
type FuelLogService struct {
	fuelLogRepo repository.FuelLogRepository
	vehicleRepo repository.VehicleRepository
	driverRepo  repository.DriverRepository
}

// NewFuelLogService creates a new FuelLogService.
func NewFuelLogService(
	fuelLogRepo repository.FuelLogRepository,
	vehicleRepo repository.VehicleRepository,
	driverRepo repository.DriverRepository,
) *FuelLogService {
	return &FuelLogService{
		fuelLogRepo: fuelLogRepo,
		vehicleRepo: vehicleRepo,
		driverRepo:  driverRepo,
	}
}

// CreateFuelLogInput contains the parameters for recording a fuel fill.
type CreateFuelLogInput struct {
	TenantID    string // superadmin only
	VehicleID   string
	DriverID    string
	FilledAt    time.Time
	Liters      float64
	FuelStation string
	Notes       string
}

// CreateFuelLog records a fuel fill under the same tenant rules as a
// trip: vehicle and driver must share a tenant the principal may write to.
func (s *FuelLogService) CreateFuelLog(ctx context.Context, principal domain.Principal, input CreateFuelLogInput) (*domain.FuelLog, error) {
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

	log := &domain.FuelLog{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		VehicleID:   input.VehicleID,
		DriverID:    input.DriverID,
		FilledAt:    input.FilledAt,
		Liters:      input.Liters,
		FuelStation: input.FuelStation,
		Notes:       input.Notes,
		CreatedAt:   time.Now(),
	}

	if err := s.fuelLogRepo.Create(ctx, log); err != nil {
		return nil, err
	}

	return log, nil
}

// ListFuelLogs retrieves fuel fills matching the filter, confined to
// the principal's tenant unless it is a superadmin.
func (s *FuelLogService) ListFuelLogs(ctx context.Context, principal domain.Principal, filter repository.FuelLogFilter) ([]*domain.FuelLog, error) {
	if scope := tenantScope(principal); scope != "" {
		filter.TenantID = scope
	}
	return s.fuelLogRepo.List(ctx, filter)
}
