package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dodscars/internal/database"
	"dodscars/internal/daterange"
	"dodscars/internal/domain"
	"dodscars/internal/events"
	"dodscars/internal/metrics"
	"dodscars/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	store          domain.Store
	cache          domain.AvailabilityCache
	eventBus       domain.EventPublisher
	maxHorizonDays int
	logger         *zerolog.Logger
}

func NewBookingService(store domain.Store, cache domain.AvailabilityCache, eventBus domain.EventPublisher, maxHorizonDays int, logger *zerolog.Logger) *BookingService {
	if maxHorizonDays <= 0 {
		maxHorizonDays = models.MaxBookingHorizonDays
	}
	return &BookingService{
		store:          store,
		cache:          cache,
		eventBus:       eventBus,
		maxHorizonDays: maxHorizonDays,
		logger:         logger,
	}
}

// ValidateDates rejects pickups in the past or beyond the booking horizon.
func (s *BookingService) ValidateDates(rng daterange.Range) error {
	today := daterange.Truncate(time.Now())
	if rng.Start.Before(today) {
		return fmt.Errorf("%w: start date is in the past", database.ErrInvalidRange)
	}
	if rng.Start.After(today.AddDate(0, 0, s.maxHorizonDays)) {
		return fmt.Errorf("%w: start date is more than %d days ahead", database.ErrInvalidRange, s.maxHorizonDays)
	}
	return nil
}

// Request creates a pending booking for the actor's own account.
func (s *BookingService) Request(ctx context.Context, actor models.Actor, carID int64, start, end time.Time) (*models.Booking, error) {
	if err := Authorize(actor, ActionRequestBooking); err != nil {
		return nil, err
	}

	rng, err := daterange.New(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrInvalidRange, err)
	}
	if err := s.ValidateDates(rng); err != nil {
		return nil, err
	}

	booking, err := s.store.CreateBooking(ctx, actor.UserID, carID, rng)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking, actor)

	return booking, nil
}

// Approve finalizes a pending booking. Exactly one of a set of conflicting
// pending bookings can ever be approved; the rest fail with ErrConflict and
// stay pending.
func (s *BookingService) Approve(ctx context.Context, actor models.Actor, bookingID int64) error {
	if err := Authorize(actor, ActionApproveBooking); err != nil {
		return err
	}

	if err := s.store.ApproveBooking(ctx, bookingID); err != nil {
		metrics.IncBookingDecision("approve", decisionResult(err))
		return err
	}
	metrics.IncBookingDecision("approve", "ok")

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err == nil {
		s.invalidateCar(ctx, booking.CarID)
		s.publishEvent(events.EventBookingApproved, booking, actor)
	}

	return nil
}

// Reject moves a pending booking to its terminal rejected state.
func (s *BookingService) Reject(ctx context.Context, actor models.Actor, bookingID int64) error {
	if err := Authorize(actor, ActionRejectBooking); err != nil {
		return err
	}

	if err := s.store.RejectBooking(ctx, bookingID); err != nil {
		metrics.IncBookingDecision("reject", decisionResult(err))
		return err
	}
	metrics.IncBookingDecision("reject", "ok")

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err == nil {
		s.publishEvent(events.EventBookingRejected, booking, actor)
	}

	return nil
}

// AddCharge records an extra line item and recomputes the booking's total fee.
func (s *BookingService) AddCharge(ctx context.Context, actor models.Actor, bookingID int64, code string, amount float64) (*models.BookingCharge, error) {
	if err := Authorize(actor, ActionAddCharge); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("%w: charge code is required", database.ErrInvalidState)
	}

	charge, err := s.store.AddCharge(ctx, bookingID, code, amount)
	if err != nil {
		return nil, err
	}

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err == nil {
		s.publishEvent(events.EventChargeAdded, booking, actor)
	}

	return charge, nil
}

// Get returns a booking. Customers may only read their own.
func (s *BookingService) Get(ctx context.Context, actor models.Actor, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID {
		if err := Authorize(actor, ActionViewAllBookings); err != nil {
			return nil, err
		}
	}
	return booking, nil
}

// ListForUser returns a user's booking history, newest first.
func (s *BookingService) ListForUser(ctx context.Context, actor models.Actor, userID int64) ([]*models.Booking, error) {
	action := ActionViewOwnBookings
	if userID != actor.UserID {
		action = ActionViewAllBookings
	}
	if err := Authorize(actor, action); err != nil {
		return nil, err
	}
	return s.store.ListBookingsByUser(ctx, userID)
}

// ListPending returns the approval queue, oldest first.
func (s *BookingService) ListPending(ctx context.Context, actor models.Actor) ([]*models.Booking, error) {
	if err := Authorize(actor, ActionViewAllBookings); err != nil {
		return nil, err
	}
	return s.store.ListPendingBookings(ctx)
}

// Charges returns the extra line items recorded for a booking.
func (s *BookingService) Charges(ctx context.Context, actor models.Actor, bookingID int64) ([]*models.BookingCharge, error) {
	if _, err := s.Get(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	return s.store.ChargesFor(ctx, bookingID)
}

func decisionResult(err error) string {
	switch {
	case errors.Is(err, database.ErrConflict):
		return "conflict"
	case errors.Is(err, database.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, database.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *BookingService) invalidateCar(ctx context.Context, carID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCar(ctx, carID); err != nil {
		s.logger.Error().Err(err).Int64("car_id", carID).Msg("availability cache invalidation failed")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, actor models.Actor) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		Code:        booking.Code,
		UserID:      booking.UserID,
		CarID:       booking.CarID,
		Status:      booking.Status,
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalFee:    booking.TotalFee,
		ChangedBy:   actor.Role,
		ChangedByID: actor.UserID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
