package domain

import (
	"fmt"
	"time"
)

// MonthlyOdometer is the per-vehicle, per-calendar-month running total
// of completed-trip distance. One row per (vehicle, year, month),
// created lazily on the first completed trip of that month and mutated
// by addition only.
type MonthlyOdometer struct {
	ID         string
	VehicleID  string
	Year       int
	Month      int
	Kilometers int
	CreatedAt  time.Time
}

// Period renders the summary's month as MM/YYYY.
func (m *MonthlyOdometer) Period() string {
	return fmt.Sprintf("%02d/%d", m.Month, m.Year)
}
