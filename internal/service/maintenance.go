package service

import (
	"context"
	"time"

	"dodscars/internal/domain"
	"dodscars/internal/events"
	"dodscars/internal/models"

	"github.com/rs/zerolog"
)

type MaintenanceService struct {
	store    domain.Store
	cache    domain.AvailabilityCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewMaintenanceService(store domain.Store, cache domain.AvailabilityCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *MaintenanceService {
	return &MaintenanceService{store: store, cache: cache, eventBus: eventBus, logger: logger}
}

// Open records a maintenance window. Overlapping approved bookings do not
// block the window; they come back as warnings for the operator to resolve.
func (s *MaintenanceService) Open(ctx context.Context, actor models.Actor, w *models.MaintenanceWindow) ([]*models.Booking, error) {
	if err := Authorize(actor, ActionOpenMaintenance); err != nil {
		return nil, err
	}

	warnings, err := s.store.OpenMaintenance(ctx, w)
	if err != nil {
		return nil, err
	}

	for _, b := range warnings {
		s.logger.Warn().
			Int64("window_id", w.ID).
			Int64("car_id", w.CarID).
			Int64("booking_id", b.ID).
			Str("code", b.Code).
			Msg("maintenance window overlaps approved booking")
	}

	s.invalidateCar(ctx, w.CarID)
	s.publishEvent(events.EventMaintenanceOpened, w)

	return warnings, nil
}

// Close sets the end date of an open-ended window.
func (s *MaintenanceService) Close(ctx context.Context, actor models.Actor, windowID int64, end time.Time) error {
	if err := Authorize(actor, ActionCloseMaintenance); err != nil {
		return err
	}

	if err := s.store.CloseMaintenance(ctx, windowID, end); err != nil {
		return err
	}

	w, err := s.store.GetMaintenance(ctx, windowID)
	if err == nil {
		s.invalidateCar(ctx, w.CarID)
		s.publishEvent(events.EventMaintenanceClosed, w)
	}

	return nil
}

func (s *MaintenanceService) List(ctx context.Context, actor models.Actor, carID int64, openOnly bool) ([]*models.MaintenanceWindow, error) {
	if err := Authorize(actor, ActionViewMaintenance); err != nil {
		return nil, err
	}
	return s.store.ListMaintenance(ctx, carID, openOnly)
}

func (s *MaintenanceService) invalidateCar(ctx context.Context, carID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCar(ctx, carID); err != nil {
		s.logger.Error().Err(err).Int64("car_id", carID).Msg("availability cache invalidation failed")
	}
}

func (s *MaintenanceService) publishEvent(eventType string, w *models.MaintenanceWindow) {
	if s.eventBus == nil {
		return
	}

	payload := events.MaintenanceEventPayload{
		WindowID:  w.ID,
		CarID:     w.CarID,
		Type:      w.Type,
		StartDate: w.StartDate,
		EndDate:   w.EndDate,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("window_id", w.ID).Msg("publish event error")
	}
}
