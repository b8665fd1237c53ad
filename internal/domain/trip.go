package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPlanned    TripStatus = "PLANNED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// TripCategory distinguishes passenger trips from cargo runs.
type TripCategory string

const (
	TripCategoryPassenger TripCategory = "PASSENGER"
	TripCategoryObject    TripCategory = "OBJECT"
	TripCategoryMixed     TripCategory = "MIXED"
)

// SpecialNeed tags a passenger manifest entry.
type SpecialNeed string

const (
	SpecialNeedNone    SpecialNeed = "NONE"
	SpecialNeedTEA     SpecialNeed = "TEA"
	SpecialNeedElderly SpecialNeed = "ELDERLY"
	SpecialNeedPCD     SpecialNeed = "PCD"
	SpecialNeedOther   SpecialNeed = "OTHER"
)

// Passenger is one entry in a trip's manifest.
type Passenger struct {
	Name             string      `json:"name"`
	CPF              string      `json:"cpf"`
	Age              *int        `json:"age,omitempty"`
	SpecialNeed      SpecialNeed `json:"special_need"`
	SpecialNeedOther string      `json:"special_need_other,omitempty"`
	Observation      string      `json:"observation,omitempty"`
}

// Trip represents one vehicle booking. Its tenant always matches both
// the vehicle's and the driver's tenant. Trips are never deleted; they
// are the fleet's historical record.
type Trip struct {
	ID                     string
	TenantID               string
	VehicleID              string
	DriverID               string
	Origin                 string
	Destination            string
	DepartureDatetime      time.Time
	ReturnDatetimeExpected time.Time
	ReturnDatetimeActual   time.Time
	OdometerStart          int
	OdometerEnd            *int
	Category               TripCategory
	PassengersCount        int
	Passengers             []Passenger
	CargoDescription       string
	CargoSize              string
	CargoQuantity          int
	CargoPurpose           string
	StopsDescription       string
	Status                 TripStatus
	Notes                  string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsActive reports whether the trip counts toward scheduling conflicts.
func (s TripStatus) IsActive() bool {
	return s == TripStatusPlanned || s == TripStatusInProgress
}

// IsTerminal reports whether the trip is immutable.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// CanTransition reports whether a trip may move from s to next.
// Active trips may keep their status on plain field edits; COMPLETED
// and CANCELLED admit no transition at all, not even to themselves.
func (s TripStatus) CanTransition(next TripStatus) bool {
	switch s {
	case TripStatusPlanned:
		return next == TripStatusPlanned || next == TripStatusInProgress ||
			next == TripStatusCompleted || next == TripStatusCancelled
	case TripStatusInProgress:
		return next == TripStatusInProgress || next == TripStatusCompleted ||
			next == TripStatusCancelled
	default:
		return false
	}
}

// OverlapsWindow reports whether the trip's [departure, return_expected)
// interval intersects the given half-open window. Back-to-back trips,
// where one return equals another departure, do not overlap.
func (t *Trip) OverlapsWindow(departure, returnExpected time.Time) bool {
	return t.DepartureDatetime.Before(returnExpected) && departure.Before(t.ReturnDatetimeExpected)
}
