package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet/internal/domain"
	"fleet/internal/service"
)

func containsField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}

func TestManifest_CollectsEveryOffendingField(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.Category = domain.TripCategoryMixed
	input.Passengers = []service.PassengerInput{
		{Name: "", CPF: "", Age: "not-a-number"},
		{Name: "Maria", CPF: "111.222.333-44", SpecialNeed: "OTHER"},
	}
	// MIXED requires cargo fields too; leave them all empty.

	_, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)

	var manifestErr *service.ManifestError
	if !errors.As(err, &manifestErr) {
		t.Fatalf("expected ManifestError, got %v", err)
	}

	for _, want := range []string{
		"passengers[0].name",
		"passengers[0].cpf",
		"passengers[0].age",
		"passengers[1].special_need_other",
		"cargo_description",
		"cargo_size",
		"cargo_purpose",
		"cargo_quantity",
	} {
		if !containsField(manifestErr.Fields, want) {
			t.Errorf("expected field %q among %v", want, manifestErr.Fields)
		}
	}
	if f.trips.CountTrips() != 0 {
		t.Error("nothing may be persisted when the manifest is invalid")
	}
}

func TestManifest_RecomputesPassengerCount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.PassengersCount = 7 // lies
	input.Passengers = []service.PassengerInput{
		{Name: "Ana", CPF: "111.111.111-11"},
		{Name: "Bruno", CPF: "222.222.222-22"},
	}

	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.PassengersCount != 2 {
		t.Errorf("count must be recomputed from the manifest, got %d", trip.PassengersCount)
	}
}

func TestManifest_ObjectTripsCarryNoPassengers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.Category = domain.TripCategoryObject
	input.CargoDescription = "school supplies"
	input.CargoSize = "MEDIUM"
	input.CargoQuantity = 12
	input.CargoPurpose = "school delivery"
	input.PassengersCount = 3
	input.Passengers = []service.PassengerInput{
		{Name: "Stowaway", CPF: "999.999.999-99"},
	}

	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.PassengersCount != 0 {
		t.Errorf("OBJECT trips must have no passengers, got count %d", trip.PassengersCount)
	}
	if len(trip.Passengers) != 0 {
		t.Errorf("OBJECT trips must have an empty manifest, got %d entries", len(trip.Passengers))
	}
}

func TestManifest_ObjectCargoChecksRunBeforeClearing(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.Category = domain.TripCategoryObject
	// Missing every cargo field.

	_, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)

	var manifestErr *service.ManifestError
	if !errors.As(err, &manifestErr) {
		t.Fatalf("expected ManifestError, got %v", err)
	}
	if !containsField(manifestErr.Fields, "cargo_description") {
		t.Errorf("expected cargo_description among %v", manifestErr.Fields)
	}
}

func TestManifest_AgeParsing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		age     any
		wantAge int
		wantErr bool
	}{
		{"integer", 34, 34, false},
		{"float from JSON decoding", float64(62), 62, false},
		{"numeric string", "15", 15, false},
		{"fractional", 4.5, 0, true},
		{"garbage string", "four", 0, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			trip := &domain.Trip{Category: domain.TripCategoryPassenger}
			err := service.NormalizeManifest(trip, []service.PassengerInput{
				{Name: "Ana", CPF: "111.111.111-11", Age: tc.age},
			})

			if tc.wantErr {
				var manifestErr *service.ManifestError
				if !errors.As(err, &manifestErr) {
					t.Fatalf("expected ManifestError, got %v", err)
				}
				if !containsField(manifestErr.Fields, "passengers[0].age") {
					t.Errorf("expected passengers[0].age among %v", manifestErr.Fields)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if trip.Passengers[0].Age == nil || *trip.Passengers[0].Age != tc.wantAge {
				t.Errorf("expected age %d, got %v", tc.wantAge, trip.Passengers[0].Age)
			}
		})
	}
}

func TestManifest_AbsentAgeStaysNil(t *testing.T) {
	t.Parallel()

	trip := &domain.Trip{Category: domain.TripCategoryPassenger}
	err := service.NormalizeManifest(trip, []service.PassengerInput{
		{Name: "Ana", CPF: "111.111.111-11"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Passengers[0].Age != nil {
		t.Errorf("expected nil age, got %d", *trip.Passengers[0].Age)
	}
	if trip.Passengers[0].SpecialNeed != domain.SpecialNeedNone {
		t.Errorf("expected default special need NONE, got %s", trip.Passengers[0].SpecialNeed)
	}
}

func TestManifest_NilManifestKeepsStoredOne(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.Passengers = []service.PassengerInput{
		{Name: "Ana", CPF: "111.111.111-11"},
	}
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	notes := "radio checked"
	updated, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		Notes: &notes,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Passengers) != 1 || updated.Passengers[0].Name != "Ana" {
		t.Errorf("an update without a manifest must keep the stored one, got %v", updated.Passengers)
	}
}

func TestManifest_CountPatchCannotDriftFromStoredManifest(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	input := baseInput("v1", "d1", departure)
	input.Passengers = []service.PassengerInput{
		{Name: "Ana", CPF: "111.111.111-11"},
		{Name: "Bruno", CPF: "222.222.222-22"},
	}
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count := 5
	updated, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		PassengersCount: &count,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.PassengersCount != 2 {
		t.Errorf("count must be recomputed from the stored manifest, got %d", updated.PassengersCount)
	}

	stored := f.trips.GetTrip(trip.ID)
	if stored.PassengersCount != len(stored.Passengers) {
		t.Errorf("persisted count %d does not match manifest length %d",
			stored.PassengersCount, len(stored.Passengers))
	}
}
