package service

import (
	"context"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// ReportService aggregates registry and ledger state for dashboards.
type ReportService struct {
	vehicleRepo  repository.VehicleRepository
	tripRepo     repository.TripRepository
	odometerRepo repository.MonthlyOdometerRepository
	loc          *time.Location
}

// NewReportService creates a new ReportService resolving "this month"
// in the fleet's local time zone.
func NewReportService(
	vehicleRepo repository.VehicleRepository,
	tripRepo repository.TripRepository,
	odometerRepo repository.MonthlyOdometerRepository,
	loc *time.Location,
) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		vehicleRepo:  vehicleRepo,
		tripRepo:     tripRepo,
		odometerRepo: odometerRepo,
		loc:          loc,
	}
}

// Dashboard summarizes the current month for one tenant.
type Dashboard struct {
	VehiclesByStatus map[domain.VehicleStatus]int
	TripsByStatus    map[domain.TripStatus]int
	OdometerMonth    []*domain.MonthlyOdometer
	Year             int
	Month            int
}

// BuildDashboard assembles the dashboard for the principal's tenant
// (all tenants for a superadmin).
func (s *ReportService) BuildDashboard(ctx context.Context, principal domain.Principal) (*Dashboard, error) {
	scope := tenantScope(principal)
	now := time.Now().In(s.loc)

	vehicles, err := s.vehicleRepo.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	trips, err := s.tripRepo.CountByStatusInMonth(ctx, scope, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	odometer, err := s.odometerRepo.ListForMonth(ctx, scope, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		VehiclesByStatus: vehicles,
		TripsByStatus:    trips,
		OdometerMonth:    odometer,
		Year:             now.Year(),
		Month:            int(now.Month()),
	}, nil
}

// MonthlyOdometerReport returns one vehicle's month-by-month distance
// totals, or a whole tenant's totals for one month when vehicleID is
// empty.
func (s *ReportService) MonthlyOdometerReport(ctx context.Context, principal domain.Principal, vehicleID string, year, month int) ([]*domain.MonthlyOdometer, error) {
	if vehicleID != "" {
		vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		if !canReadTenant(principal, vehicle.TenantID) {
			return nil, repository.ErrNotFound
		}
		return s.odometerRepo.ListForVehicle(ctx, vehicleID)
	}

	if year == 0 || month == 0 {
		now := time.Now().In(s.loc)
		year, month = now.Year(), int(now.Month())
	}
	return s.odometerRepo.ListForMonth(ctx, tenantScope(principal), year, month)
}
