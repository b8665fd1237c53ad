package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"fleet/internal/domain"
)

// TripCompletedListener receives TripCompleted events after the
// completing transaction has committed.
type TripCompletedListener func(ctx context.Context, event *TripCompletedEvent)

// NotificationService fans trip lifecycle events out to reporting and
// notification collaborators. Listeners run synchronously in
// registration order; a slow listener delays the response, not the
// transaction, which has already committed.
type NotificationService struct {
	mu        sync.RWMutex
	listeners []TripCompletedListener
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger}
}

// SubscribeTripCompleted registers a listener for TripCompleted events.
func (s *NotificationService) SubscribeTripCompleted(listener TripCompletedListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// PublishTripCompleted delivers the event to every subscriber.
func (s *NotificationService) PublishTripCompleted(ctx context.Context, event *TripCompletedEvent) {
	s.logger.Info("trip completed",
		zap.String("trip_id", event.TripID),
		zap.String("vehicle_id", event.VehicleID),
		zap.Int("distance_km", event.Distance),
		zap.String("vehicle_status", string(event.NewVehicleStatus)),
	)

	s.mu.RLock()
	listeners := make([]TripCompletedListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(ctx, event)
	}
}

// MaintenanceAlertListener logs a maintenance alert whenever a
// completion pushes a vehicle over its monthly limit. Wired as the
// default subscriber; real deployments add messaging integrations
// alongside it.
func MaintenanceAlertListener(logger *zap.Logger) TripCompletedListener {
	return func(ctx context.Context, event *TripCompletedEvent) {
		if event.NewVehicleStatus != domain.VehicleStatusMaintenance {
			return
		}
		logger.Warn("maintenance alert",
			zap.String("vehicle_id", event.VehicleID),
			zap.String("trip_id", event.TripID),
			zap.Int("distance_km", event.Distance),
		)
	}
}
