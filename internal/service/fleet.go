package service

import (
	"context"

	"dodscars/internal/domain"
	"dodscars/internal/models"

	"github.com/rs/zerolog"
)

type FleetService struct {
	store  domain.Store
	cache  domain.AvailabilityCache
	logger *zerolog.Logger
}

func NewFleetService(store domain.Store, cache domain.AvailabilityCache, logger *zerolog.Logger) *FleetService {
	return &FleetService{store: store, cache: cache, logger: logger}
}

// Seed inserts configured cars that are not in the store yet. Existing rows
// are never overwritten: runtime edits win over config.
func (s *FleetService) Seed(ctx context.Context, cars []models.Car) error {
	return s.store.SyncFleet(ctx, cars)
}

func (s *FleetService) AddCar(ctx context.Context, actor models.Actor, car *models.Car) error {
	if err := Authorize(actor, ActionAddCar); err != nil {
		return err
	}
	if err := s.store.CreateCar(ctx, car); err != nil {
		return err
	}
	s.logger.Info().Int64("car_id", car.ID).Str("car", car.Label()).Msg("car added to fleet")
	return nil
}

func (s *FleetService) UpdateCar(ctx context.Context, actor models.Actor, car *models.Car) error {
	if err := Authorize(actor, ActionUpdateCar); err != nil {
		return err
	}
	if err := s.store.UpdateCar(ctx, car); err != nil {
		return err
	}
	s.invalidateCar(ctx, car.ID)
	return nil
}

// RemoveCar deletes a car with no booking history. Cars that have been
// booked are kept for record integrity; take them off market instead.
func (s *FleetService) RemoveCar(ctx context.Context, actor models.Actor, carID int64) error {
	if err := Authorize(actor, ActionRemoveCar); err != nil {
		return err
	}
	if err := s.store.DeleteCar(ctx, carID); err != nil {
		return err
	}
	s.invalidateCar(ctx, carID)
	return nil
}

func (s *FleetService) GetCar(ctx context.Context, actor models.Actor, carID int64) (*models.Car, error) {
	if err := Authorize(actor, ActionListCars); err != nil {
		return nil, err
	}
	return s.store.GetCar(ctx, carID)
}

func (s *FleetService) ListCars(ctx context.Context, actor models.Actor) ([]*models.Car, error) {
	if err := Authorize(actor, ActionListCars); err != nil {
		return nil, err
	}
	return s.store.ListCars(ctx)
}

func (s *FleetService) invalidateCar(ctx context.Context, carID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCar(ctx, carID); err != nil {
		s.logger.Error().Err(err).Int64("car_id", carID).Msg("availability cache invalidation failed")
	}
}
