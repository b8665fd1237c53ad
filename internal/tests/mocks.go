package tests

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK VEHICLE REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleRepository is a mock implementation of VehicleRepository.
type MockVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle

	// Counters for verification
	CreateCallCount         int32
	GetByIDCallCount        int32
	GetForUpdateCallCount   int32
	UpdateStatusCallCount   int32
	UpdateOdometerCallCount int32

	// Error injection
	CreateError         error
	UpdateStatusError   error
	UpdateOdometerError error
}

// NewMockVehicleRepository creates a new mock vehicle repository.
func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// AddVehicle adds a vehicle to the mock repository.
func (m *MockVehicleRepository) AddVehicle(vehicle *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[vehicle.ID] = vehicle
	return nil
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *vehicle
	return &copy, nil
}

func (m *MockVehicleRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Vehicle, error) {
	atomic.AddInt32(&m.GetForUpdateCallCount, 1)
	return m.GetByID(ctx, id)
}

func (m *MockVehicleRepository) List(ctx context.Context, tenantID, search string) ([]*domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		if tenantID != "" && v.TenantID != tenantID {
			continue
		}
		copy := *v
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockVehicleRepository) UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.Status = status
	return nil
}

func (m *MockVehicleRepository) UpdateOdometer(ctx context.Context, id string, odometer int) error {
	atomic.AddInt32(&m.UpdateOdometerCallCount, 1)
	if m.UpdateOdometerError != nil {
		return m.UpdateOdometerError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicle, ok := m.vehicles[id]
	if !ok {
		return repository.ErrNotFound
	}
	vehicle.OdometerCurrent = odometer
	return nil
}

func (m *MockVehicleRepository) CountByStatus(ctx context.Context, tenantID string) (map[domain.VehicleStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.VehicleStatus]int)
	for _, v := range m.vehicles {
		if tenantID != "" && v.TenantID != tenantID {
			continue
		}
		counts[v.Status]++
	}
	return counts, nil
}

// GetVehicle returns the stored vehicle for test assertions.
func (m *MockVehicleRepository) GetVehicle(id string) *domain.Vehicle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vehicles[id]
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount       int32
	GetByIDCallCount      int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByAccessCode(ctx context.Context, code string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.AccessCode == code {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) List(ctx context.Context, tenantID string) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if tenantID != "" && d.TenantID != tenantID {
			continue
		}
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *trip
	m.trips[trip.ID] = &copy
	return nil
}

func (m *MockTripRepository) List(ctx context.Context, filter repository.TripFilter) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		if filter.TenantID != "" && t.TenantID != filter.TenantID {
			continue
		}
		if filter.VehicleID != "" && t.VehicleID != filter.VehicleID {
			continue
		}
		if filter.DriverID != "" && t.DriverID != filter.DriverID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if !filter.From.IsZero() && t.DepartureDatetime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !t.DepartureDatetime.Before(filter.To) {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockTripRepository) ListActiveForVehicle(ctx context.Context, vehicleID, excludeTripID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0)
	for _, t := range m.trips {
		if t.VehicleID != vehicleID || !t.Status.IsActive() {
			continue
		}
		if excludeTripID != "" && t.ID == excludeTripID {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockTripRepository) CountByStatusInMonth(ctx context.Context, tenantID string, year int, month time.Month) (map[domain.TripStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.TripStatus]int)
	for _, t := range m.trips {
		if tenantID != "" && t.TenantID != tenantID {
			continue
		}
		if t.DepartureDatetime.Year() != year || t.DepartureDatetime.Month() != month {
			continue
		}
		counts[t.Status]++
	}
	return counts, nil
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of stored trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK MONTHLY ODOMETER REPOSITORY
// ──────────────────────────────────────────────

// MockMonthlyOdometerRepository is a mock implementation of MonthlyOdometerRepository.
type MockMonthlyOdometerRepository struct {
	mu     sync.RWMutex
	totals map[string]*domain.MonthlyOdometer // key: vehicleID/year/month

	// Counters for verification
	AddDistanceCallCount int32

	// Error injection
	AddDistanceError error
}

// NewMockMonthlyOdometerRepository creates a new mock monthly odometer repository.
func NewMockMonthlyOdometerRepository() *MockMonthlyOdometerRepository {
	return &MockMonthlyOdometerRepository{
		totals: make(map[string]*domain.MonthlyOdometer),
	}
}

func summaryKey(vehicleID string, year, month int) string {
	return fmt.Sprintf("%s/%d/%d", vehicleID, year, month)
}

func (m *MockMonthlyOdometerRepository) AddDistance(ctx context.Context, vehicleID string, year, month, distance int) (int, error) {
	atomic.AddInt32(&m.AddDistanceCallCount, 1)
	if m.AddDistanceError != nil {
		return 0, m.AddDistanceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := summaryKey(vehicleID, year, month)
	summary, ok := m.totals[key]
	if !ok {
		summary = &domain.MonthlyOdometer{
			ID:        key,
			VehicleID: vehicleID,
			Year:      year,
			Month:     month,
			CreatedAt: time.Now(),
		}
		m.totals[key] = summary
	}
	summary.Kilometers += distance
	return summary.Kilometers, nil
}

func (m *MockMonthlyOdometerRepository) GetForMonth(ctx context.Context, vehicleID string, year, month int) (*domain.MonthlyOdometer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary, ok := m.totals[summaryKey(vehicleID, year, month)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *summary
	return &copy, nil
}

func (m *MockMonthlyOdometerRepository) ListForMonth(ctx context.Context, tenantID string, year, month int) ([]*domain.MonthlyOdometer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.MonthlyOdometer, 0)
	for _, s := range m.totals {
		if s.Year != year || s.Month != month {
			continue
		}
		copy := *s
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockMonthlyOdometerRepository) ListForVehicle(ctx context.Context, vehicleID string) ([]*domain.MonthlyOdometer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.MonthlyOdometer, 0)
	for _, s := range m.totals {
		if s.VehicleID != vehicleID {
			continue
		}
		copy := *s
		result = append(result, &copy)
	}
	return result, nil
}

// Total returns the stored total for test assertions, 0 if absent.
func (m *MockMonthlyOdometerRepository) Total(vehicleID string, year, month int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	summary, ok := m.totals[summaryKey(vehicleID, year, month)]
	if !ok {
		return 0
	}
	return summary.Kilometers
}

// ──────────────────────────────────────────────
// MOCK FUEL LOG REPOSITORY
// ──────────────────────────────────────────────

// MockFuelLogRepository is a mock implementation of FuelLogRepository.
type MockFuelLogRepository struct {
	mu   sync.RWMutex
	logs map[string]*domain.FuelLog

	// Error injection
	CreateError error
}

// NewMockFuelLogRepository creates a new mock fuel log repository.
func NewMockFuelLogRepository() *MockFuelLogRepository {
	return &MockFuelLogRepository{logs: make(map[string]*domain.FuelLog)}
}

func (m *MockFuelLogRepository) Create(ctx context.Context, log *domain.FuelLog) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *log
	m.logs[log.ID] = &copy
	return nil
}

func (m *MockFuelLogRepository) List(ctx context.Context, filter repository.FuelLogFilter) ([]*domain.FuelLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.FuelLog, 0, len(m.logs))
	for _, l := range m.logs {
		if filter.TenantID != "" && l.TenantID != filter.TenantID {
			continue
		}
		if filter.VehicleID != "" && l.VehicleID != filter.VehicleID {
			continue
		}
		if filter.DriverID != "" && l.DriverID != filter.DriverID {
			continue
		}
		copy := *l
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK UNIT OF WORK
// ──────────────────────────────────────────────

// MockUnitOfWork runs the transactional function against the shared
// mock repositories. There is no real rollback; tests inject errors on
// the repositories to verify the service surfaces them.
type MockUnitOfWork struct {
	Repos repository.TxRepositories

	// Counters for verification
	WithinTxCallCount int32

	// Error injection
	BeginError error
}

// NewMockUnitOfWork creates a unit of work bound to the given mocks.
func NewMockUnitOfWork(trips repository.TripRepository, vehicles repository.VehicleRepository, odometer repository.MonthlyOdometerRepository) *MockUnitOfWork {
	return &MockUnitOfWork{
		Repos: repository.TxRepositories{
			Trips:    trips,
			Vehicles: vehicles,
			Odometer: odometer,
		},
	}
}

func (m *MockUnitOfWork) WithinTx(ctx context.Context, fn func(tx repository.TxRepositories) error) error {
	atomic.AddInt32(&m.WithinTxCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.Repos)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of the vehicle booking lock.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
	// DenyAcquire makes every acquisition report the lock as held.
	DenyAcquire bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]bool),
	}
}

func (m *MockLockStore) AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.DenyAcquire {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[vehicleID] {
		return false, nil
	}
	m.locks[vehicleID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseVehicleLock(ctx context.Context, vehicleID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, vehicleID)
	return nil
}

// Held reports whether the lock is currently held, for test assertions.
func (m *MockLockStore) Held(vehicleID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[vehicleID]
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of the entity read cache.
type MockCacheStore struct {
	mu       sync.RWMutex
	vehicles map[string]*domain.Vehicle
	drivers  map[string]*domain.Driver

	// Counters for verification
	GetVehicleCallCount int32
	SetVehicleCallCount int32
	GetDriverCallCount  int32
	SetDriverCallCount  int32

	// Error injection
	GetError error
	SetError error
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		vehicles: make(map[string]*domain.Vehicle),
		drivers:  make(map[string]*domain.Driver),
	}
}

func (m *MockCacheStore) GetVehicle(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	atomic.AddInt32(&m.GetVehicleCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	vehicle, ok := m.vehicles[vehicleID]
	if !ok {
		return nil, nil
	}
	copy := *vehicle
	return &copy, nil
}

func (m *MockCacheStore) SetVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	atomic.AddInt32(&m.SetVehicleCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *vehicle
	m.vehicles[vehicle.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vehicles, vehicleID)
	return nil
}

func (m *MockCacheStore) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	atomic.AddInt32(&m.GetDriverCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[driverID]
	if !ok {
		return nil, nil
	}
	copy := *driver
	return &copy, nil
}

func (m *MockCacheStore) SetDriver(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.SetDriverCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockCacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drivers, driverID)
	return nil
}

// HasVehicle reports whether a vehicle is cached, for test assertions.
func (m *MockCacheStore) HasVehicle(vehicleID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vehicles[vehicleID]
	return ok
}
