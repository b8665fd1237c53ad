package domain

import "time"

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "ACTIVE"
	DriverStatusInactive DriverStatus = "INACTIVE"
)

// Driver represents a municipal driver. Drivers are read-only input to
// the trip ledger; their lifecycle is managed by the directory endpoints.
type Driver struct {
	ID                string
	TenantID          string
	Name              string
	CPF               string // unique per tenant
	CNHNumber         string
	CNHCategory       string
	CNHExpirationDate time.Time
	Phone             string
	Status            DriverStatus
	// AccessCode is the short code a driver uses against the portal.
	AccessCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
