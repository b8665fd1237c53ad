package domain

import "time"

// VehicleStatus represents the operational status of a vehicle.
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusInUse       VehicleStatus = "IN_USE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusInactive    VehicleStatus = "INACTIVE"
)

// Vehicle represents a municipal vehicle in the fleet registry.
// OdometerCurrent is mutated only by the trip completion cascade or by
// explicit registry operations, and never drops below OdometerInitial.
type Vehicle struct {
	ID                   string
	TenantID             string
	LicensePlate         string // unique per tenant
	Model                string
	Brand                string
	Year                 int
	MaxPassengers        int
	OdometerCurrent      int
	OdometerInitial      int
	OdometerMonthlyLimit int // 0 means no monthly limit
	LastServiceDate      time.Time
	NextServiceDate      time.Time
	Status               VehicleStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
