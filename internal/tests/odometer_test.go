package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// completeTrip books a trip and drives it into COMPLETED with the given
// final odometer reading.
func completeTrip(t *testing.T, f *fixture, departure time.Time, start, end int) *domain.Trip {
	t.Helper()

	input := baseInput("v1", "d1", departure)
	input.OdometerStart = start
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input)
	if err != nil {
		t.Fatalf("unexpected error booking trip: %v", err)
	}

	completed := domain.TripStatusCompleted
	updated, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		Status:      &completed,
		OdometerEnd: &end,
	})
	if err != nil {
		t.Fatalf("unexpected error completing trip: %v", err)
	}
	return updated
}

func TestCompletion_FoldsDistanceIntoVehicleAndMonth(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	completeTrip(t, f, departure, 1000, 1120)

	vehicle := f.vehicles.GetVehicle("v1")
	if vehicle.OdometerCurrent != 1120 {
		t.Errorf("expected live odometer 1120, got %d", vehicle.OdometerCurrent)
	}
	if total := f.odometer.Total("v1", 2025, 3); total != 120 {
		t.Errorf("expected monthly total 120, got %d", total)
	}
	if vehicle.Status != domain.VehicleStatusAvailable {
		t.Errorf("vehicle without a limit must stay AVAILABLE, got %s", vehicle.Status)
	}
}

func TestCompletion_AccumulatesWithinOneMonth(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	completeTrip(t, f, time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), 1000, 1050)
	completeTrip(t, f, time.Date(2025, 3, 20, 8, 0, 0, 0, time.UTC), 1050, 1130)

	if total := f.odometer.Total("v1", 2025, 3); total != 130 {
		t.Errorf("expected accumulated total 130, got %d", total)
	}
}

func TestCompletion_AttributesMonthByDeparture(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	// Departs on March 31st and returns in April; the distance belongs
	// to March.
	departure := time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
	completeTrip(t, f, departure, 1000, 1040)

	if total := f.odometer.Total("v1", 2025, 3); total != 40 {
		t.Errorf("expected March total 40, got %d", total)
	}
	if total := f.odometer.Total("v1", 2025, 4); total != 0 {
		t.Errorf("expected empty April total, got %d", total)
	}
}

func TestCompletion_ZeroDistanceIsLegal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	completeTrip(t, f, departure, 1000, 1000)

	if total := f.odometer.Total("v1", 2025, 3); total != 0 {
		t.Errorf("expected zero-distance total, got %d", total)
	}
	if f.vehicles.GetVehicle("v1").OdometerCurrent != 1000 {
		t.Errorf("live odometer must stay at 1000")
	}
}

func TestCompletion_LimitBreachFlipsVehicleToMaintenance(t *testing.T) {
	t.Parallel()

	f := newFixture()
	vehicle := f.addVehicle("v1", "city-a")
	vehicle.OdometerMonthlyLimit = 100
	f.addDriver("d1", "city-a")

	var gotEvent *service.TripCompletedEvent
	notifications := service.NewNotificationService(nil)
	notifications.SubscribeTripCompleted(func(ctx context.Context, event *service.TripCompletedEvent) {
		gotEvent = event
	})
	f.svc = service.NewTripService(
		f.uow, f.trips, f.vehicles, f.drivers,
		service.NewOdometerAggregator(time.UTC),
		notifications, f.locks, nil,
	)

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	completeTrip(t, f, departure, 1000, 1150) // 150 km > 100 km limit

	stored := f.vehicles.GetVehicle("v1")
	if stored.Status != domain.VehicleStatusMaintenance {
		t.Errorf("expected MAINTENANCE after limit breach, got %s", stored.Status)
	}
	if gotEvent == nil {
		t.Fatal("expected a TripCompleted event")
	}
	if gotEvent.NewVehicleStatus != domain.VehicleStatusMaintenance {
		t.Errorf("event must carry the new status, got %s", gotEvent.NewVehicleStatus)
	}
	if gotEvent.Distance != 150 {
		t.Errorf("expected event distance 150, got %d", gotEvent.Distance)
	}

	// The flipped vehicle cannot take new bookings.
	_, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure.Add(24*time.Hour)))
	if !errors.Is(err, service.ErrVehicleUnavailable) {
		t.Fatalf("expected ErrVehicleUnavailable after breach, got %v", err)
	}
}

func TestCompletion_ExactLimitDoesNotFlip(t *testing.T) {
	t.Parallel()

	f := newFixture()
	vehicle := f.addVehicle("v1", "city-a")
	vehicle.OdometerMonthlyLimit = 100
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	completeTrip(t, f, departure, 1000, 1100) // exactly at the limit

	if status := f.vehicles.GetVehicle("v1").Status; status != domain.VehicleStatusAvailable {
		t.Errorf("reaching the limit exactly must not flip status, got %s", status)
	}
}

func TestCancellation_LeavesOdometerUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	trip, err := f.svc.CreateTrip(context.Background(), operator("city-a"), baseInput("v1", "d1", departure))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled := domain.TripStatusCancelled
	end := 1500
	if _, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		Status:      &cancelled,
		OdometerEnd: &end,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.vehicles.GetVehicle("v1").OdometerCurrent != 1000 {
		t.Error("cancellation must not move the live odometer")
	}
	if total := f.odometer.Total("v1", 2025, 3); total != 0 {
		t.Errorf("cancellation must not touch the monthly total, got %d", total)
	}
}

func TestCompletion_CascadeRunsExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	trip := completeTrip(t, f, departure, 1000, 1100)

	// The trip is terminal now; any further edit is rejected, so the
	// cascade can never apply twice.
	end := 1200
	completed := domain.TripStatusCompleted
	_, err := f.svc.UpdateTrip(context.Background(), operator("city-a"), trip.ID, service.UpdateTripInput{
		Status:      &completed,
		OdometerEnd: &end,
	})
	if !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on re-completion, got %v", err)
	}

	if total := f.odometer.Total("v1", 2025, 3); total != 100 {
		t.Errorf("expected total 100 after a single cascade, got %d", total)
	}
	if f.odometer.AddDistanceCallCount != 1 {
		t.Errorf("expected exactly one AddDistance call, got %d", f.odometer.AddDistanceCallCount)
	}
}

func TestCompletion_CreateDirectlyCompletedRunsCascade(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.addVehicle("v1", "city-a")
	f.addDriver("d1", "city-a")

	departure := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	end := 1060
	input := baseInput("v1", "d1", departure)
	input.Status = domain.TripStatusCompleted
	input.OdometerEnd = &end

	if _, err := f.svc.CreateTrip(context.Background(), operator("city-a"), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.vehicles.GetVehicle("v1").OdometerCurrent != 1060 {
		t.Error("cascade must run for trips created directly in COMPLETED")
	}
	if total := f.odometer.Total("v1", 2025, 3); total != 60 {
		t.Errorf("expected total 60, got %d", total)
	}
}
