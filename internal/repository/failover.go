package repository

import (
	"context"
	"sync/atomic"
	"time"

	"dodscars/internal/daterange"
	"dodscars/internal/domain"
	"dodscars/internal/models"

	"github.com/rs/zerolog"
)

// FailoverAvailabilityCache serves from the primary cache and falls back to
// the in-memory one when the primary errors, retrying the primary after a
// cooldown.
type FailoverAvailabilityCache struct {
	primary   domain.AvailabilityCache
	fallback  domain.AvailabilityCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

const recoveryInterval = time.Minute

func (r *FailoverAvailabilityCache) primaryUsable() bool {
	if !r.isDown.Load() {
		return true
	}
	last := time.Unix(r.lastCheck.Load(), 0)
	if time.Since(last) > recoveryInterval {
		r.isDown.Store(false)
		return true
	}
	return false
}

func (r *FailoverAvailabilityCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary availability cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().Unix())
}

func (r *FailoverAvailabilityCache) Get(ctx context.Context, carID int64, rng daterange.Range) (*models.CachedAvailability, error) {
	if r.primaryUsable() {
		cached, err := r.primary.Get(ctx, carID, rng)
		if err == nil {
			return cached, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, carID, rng)
}

func (r *FailoverAvailabilityCache) Set(ctx context.Context, carID int64, rng daterange.Range, available bool) error {
	if r.primaryUsable() {
		err := r.primary.Set(ctx, carID, rng, available)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Set(ctx, carID, rng, available)
}

func (r *FailoverAvailabilityCache) InvalidateCar(ctx context.Context, carID int64) error {
	// Invalidation must reach both sides; a stale fallback entry would
	// otherwise survive a failover round-trip.
	var primaryErr error
	if r.primaryUsable() {
		if err := r.primary.InvalidateCar(ctx, carID); err != nil {
			r.markDown(err)
			primaryErr = err
		}
	}
	if err := r.fallback.InvalidateCar(ctx, carID); err != nil {
		return err
	}
	return primaryErr
}
