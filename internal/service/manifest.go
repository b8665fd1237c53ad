package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"fleet/internal/domain"
)

var specialNeedChoices = map[domain.SpecialNeed]bool{
	domain.SpecialNeedNone:    true,
	domain.SpecialNeedTEA:     true,
	domain.SpecialNeedElderly: true,
	domain.SpecialNeedPCD:     true,
	domain.SpecialNeedOther:   true,
}

// PassengerInput is one raw manifest entry as submitted by a caller.
// Age is untyped because callers send it as either a number or a
// numeric string.
type PassengerInput struct {
	Name             string `json:"name"`
	CPF              string `json:"cpf"`
	Age              any    `json:"age,omitempty"`
	SpecialNeed      string `json:"special_need,omitempty"`
	SpecialNeedOther string `json:"special_need_other,omitempty"`
	Observation      string `json:"observation,omitempty"`
}

// NormalizeManifest validates a trip candidate's raw passenger manifest
// and cargo fields, and writes the cleaned manifest onto the candidate.
// Offending fields are collected into a single ManifestError rather
// than failing on the first, so callers can highlight each one. On
// error the candidate is discarded by the caller; nothing partial is
// ever persisted.
//
// passengers_count is always recomputed from the manifest length and
// never taken at face value; when no manifest is supplied the stored
// one stands, and the count is recomputed from it so a count patch
// cannot drift from the manifest. OBJECT trips carry no passengers:
// after the cargo checks, the manifest and count are force-cleared
// regardless of input.
func NormalizeManifest(trip *domain.Trip, manifest []PassengerInput) error {
	manifestErr := &ManifestError{}

	if len(manifest) > 0 {
		cleaned := make([]domain.Passenger, 0, len(manifest))
		for i, entry := range manifest {
			passenger := domain.Passenger{
				Name:             entry.Name,
				CPF:              entry.CPF,
				SpecialNeed:      domain.SpecialNeed(entry.SpecialNeed),
				SpecialNeedOther: entry.SpecialNeedOther,
				Observation:      entry.Observation,
			}
			if passenger.SpecialNeed == "" {
				passenger.SpecialNeed = domain.SpecialNeedNone
			}

			if entry.Name == "" {
				manifestErr.add(fmt.Sprintf("passengers[%d].name", i))
			}
			if entry.CPF == "" {
				manifestErr.add(fmt.Sprintf("passengers[%d].cpf", i))
			}
			if !specialNeedChoices[passenger.SpecialNeed] {
				manifestErr.add(fmt.Sprintf("passengers[%d].special_need", i))
			}
			if passenger.SpecialNeed == domain.SpecialNeedOther && entry.SpecialNeedOther == "" {
				manifestErr.add(fmt.Sprintf("passengers[%d].special_need_other", i))
			}
			if entry.Age != nil {
				age, ok := parseAge(entry.Age)
				if !ok {
					manifestErr.add(fmt.Sprintf("passengers[%d].age", i))
				} else {
					passenger.Age = &age
				}
			}

			cleaned = append(cleaned, passenger)
		}
		trip.Passengers = cleaned
		trip.PassengersCount = len(cleaned)
	} else if len(trip.Passengers) > 0 {
		trip.PassengersCount = len(trip.Passengers)
	}

	if trip.Category == domain.TripCategoryObject || trip.Category == domain.TripCategoryMixed {
		if trip.CargoDescription == "" {
			manifestErr.add("cargo_description")
		}
		if trip.CargoSize == "" {
			manifestErr.add("cargo_size")
		}
		if trip.CargoPurpose == "" {
			manifestErr.add("cargo_purpose")
		}
		if trip.CargoQuantity < 1 {
			manifestErr.add("cargo_quantity")
		}
	}

	if err := manifestErr.orNil(); err != nil {
		return err
	}

	// Object trips carry no passengers by definition.
	if trip.Category == domain.TripCategoryObject {
		trip.PassengersCount = 0
		trip.Passengers = nil
	}

	return nil
}

func parseAge(v any) (int, bool) {
	switch age := v.(type) {
	case int:
		return age, true
	case float64:
		if age != float64(int(age)) {
			return 0, false
		}
		return int(age), true
	case json.Number:
		n, err := age.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(age)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
