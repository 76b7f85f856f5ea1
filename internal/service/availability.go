package service

import (
	"context"

	"dodscars/internal/daterange"
	"dodscars/internal/domain"
	"dodscars/internal/metrics"
	"dodscars/internal/models"

	"github.com/rs/zerolog"
)

// AvailabilityService answers "which cars are free" style queries. Cached
// answers may be briefly stale; approval always re-checks the store inside
// its transaction, so a stale yes can never produce a double booking.
type AvailabilityService struct {
	store  domain.Store
	cache  domain.AvailabilityCache
	logger *zerolog.Logger
}

func NewAvailabilityService(store domain.Store, cache domain.AvailabilityCache, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{store: store, cache: cache, logger: logger}
}

// IsAvailable reports whether the car is free for the whole range, counting
// approved bookings and maintenance windows only. Pending bookings never
// block.
func (s *AvailabilityService) IsAvailable(ctx context.Context, carID int64, rng daterange.Range) (bool, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, carID, rng)
		if err != nil {
			s.logger.Error().Err(err).Int64("car_id", carID).Msg("availability cache read failed")
		} else if cached != nil {
			metrics.IncAvailabilityCheck("cache")
			return cached.Available, nil
		}
	}

	available, err := s.store.IsCarAvailable(ctx, carID, rng)
	if err != nil {
		return false, err
	}
	metrics.IncAvailabilityCheck("store")

	if s.cache != nil {
		if err := s.cache.Set(ctx, carID, rng, available); err != nil {
			s.logger.Error().Err(err).Int64("car_id", carID).Msg("availability cache write failed")
		}
	}

	return available, nil
}

// Search returns the cars a customer could book for the range: on market,
// rental-day policy satisfied, and free of approved bookings and maintenance.
// The result is a concrete slice ordered by car id.
func (s *AvailabilityService) Search(ctx context.Context, actor models.Actor, rng daterange.Range) ([]*models.Car, error) {
	if err := Authorize(actor, ActionSearchCars); err != nil {
		return nil, err
	}

	candidates, err := s.store.CandidatesFor(ctx, rng)
	if err != nil {
		return nil, err
	}

	available := make([]*models.Car, 0, len(candidates))
	for _, car := range candidates {
		free, err := s.IsAvailable(ctx, car.ID, rng)
		if err != nil {
			return nil, err
		}
		if free {
			available = append(available, car)
		}
	}

	return available, nil
}
