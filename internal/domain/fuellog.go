package domain

import "time"

// FuelLog records one fuel fill for a vehicle.
type FuelLog struct {
	ID          string
	TenantID    string
	VehicleID   string
	DriverID    string
	FilledAt    time.Time
	Liters      float64
	FuelStation string
	Notes       string
	CreatedAt   time.Time
}
