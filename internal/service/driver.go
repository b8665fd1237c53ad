package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleet/internal/domain"
	internalredis "fleet/internal/redis"
	"fleet/internal/repository"
)

// DriverService is the driver directory.
type DriverService struct {
	driverRepo repository.DriverRepository
	cacheStore internalredis.CacheStoreInterface
	logger     *zap.Logger
}

// NewDriverService creates a new DriverService. cacheStore may be nil.
func NewDriverService(driverRepo repository.DriverRepository, cacheStore internalredis.CacheStoreInterface, logger *zap.Logger) *DriverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{
		driverRepo: driverRepo,
		cacheStore: cacheStore,
		logger:     logger,
	}
}

// RegisterDriverInput contains the parameters for registering a driver.
type RegisterDriverInput struct {
	TenantID          string // superadmin only
	Name              string
	CPF               string
	CNHNumber         string
	CNHCategory       string
	CNHExpirationDate time.Time
	Phone             string
}

// RegisterDriver adds a driver to the principal's tenant and issues a
// fresh portal access code.
func (s *DriverService) RegisterDriver(ctx context.Context, principal domain.Principal, input RegisterDriverInput) (*domain.Driver, error) {
	if !principal.CanWrite() {
		return nil, ErrReadOnlyRole
	}

	tenantID, err := ResolveTenant(principal, nil, nil, input.TenantID)
	if err != nil {
		return nil, err
	}

	code, err := generateAccessCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	driver := &domain.Driver{
		ID:                uuid.New().String(),
		TenantID:          tenantID,
		Name:              input.Name,
		CPF:               input.CPF,
		CNHNumber:         input.CNHNumber,
		CNHCategory:       input.CNHCategory,
		CNHExpirationDate: input.CNHExpirationDate,
		Phone:             input.Phone,
		Status:            domain.DriverStatusActive,
		AccessCode:        code,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	s.logger.Info("driver registered",
		zap.String("driver_id", driver.ID),
		zap.String("tenant_id", driver.TenantID),
	)

	return driver, nil
}

// GetDriver retrieves a driver visible to the principal, serving from
// cache when the cached copy belongs to a visible tenant. Cache
// failures fall through to the repository.
func (s *DriverService) GetDriver(ctx context.Context, principal domain.Principal, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetDriver(ctx, driverID)
		if err == nil && cached != nil {
			if !canReadTenant(principal, cached.TenantID) {
				return nil, repository.ErrNotFound
			}
			return cached, nil
		}
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !canReadTenant(principal, driver.TenantID) {
		return nil, repository.ErrNotFound
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetDriver(ctx, driver)
	}

	return driver, nil
}

// ListDrivers retrieves drivers scoped to the principal's tenant.
func (s *DriverService) ListDrivers(ctx context.Context, principal domain.Principal) ([]*domain.Driver, error) {
	return s.driverRepo.List(ctx, tenantScope(principal))
}

// SetDriverStatus toggles a driver between ACTIVE and INACTIVE.
func (s *DriverService) SetDriverStatus(ctx context.Context, principal domain.Principal, driverID string, status domain.DriverStatus) error {
	if !principal.CanWrite() {
		return ErrReadOnlyRole
	}
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if status != domain.DriverStatusActive && status != domain.DriverStatusInactive {
		return ErrInvalidStatus
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if _, err := ResolveTenant(principal, nil, driver, ""); err != nil {
		return err
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, status); err != nil {
		return err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, driverID)
	}

	return nil
}

// generateAccessCode returns 8 uppercase hex chars, short enough to
// read over the phone but hard to guess.
func generateAccessCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
