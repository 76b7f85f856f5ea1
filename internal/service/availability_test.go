package service

import (
	"context"
	"testing"
	"time"

	"dodscars/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAvailable(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAvailabilityService(env.store, env.cache, env.logger)
	bookings := NewBookingService(env.store, env.cache, env.bus, 0, env.logger)
	ctx := context.Background()
	customer := env.user(t, models.RoleCustomer)
	admin := env.user(t, models.RoleAdmin)
	car := env.car(t)

	rng := futureRange(t, 7, 5)

	t.Run("FreeCar", func(t *testing.T) {
		ok, err := svc.IsAvailable(ctx, car.ID, rng)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("CachedAnswerServed", func(t *testing.T) {
		cached, err := env.cache.Get(ctx, car.ID, rng)
		require.NoError(t, err)
		require.NotNil(t, cached, "first lookup should have populated the cache")
		assert.True(t, cached.Available)
	})

	t.Run("ApprovalFlipsAnswer", func(t *testing.T) {
		booking, err := bookings.Request(ctx, customer, car.ID, rng.Start, rng.End)
		require.NoError(t, err)

		// Pending alone does not block.
		ok, err := svc.IsAvailable(ctx, car.ID, rng)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, bookings.Approve(ctx, admin, booking.ID))

		// Approval invalidated the cache, so this read hits the store.
		ok, err = svc.IsAvailable(ctx, car.ID, rng)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAvailabilityService(env.store, env.cache, env.logger)
	maint := NewMaintenanceService(env.store, env.cache, env.bus, env.logger)
	ctx := context.Background()
	customer := env.user(t, models.RoleCustomer)
	admin := env.user(t, models.RoleAdmin)

	free := env.car(t)
	offMarket := env.car(t, func(c *models.Car) { c.AvailableNow = false })
	shortOnly := env.car(t, func(c *models.Car) { c.MaxRentDays = 2 })
	inShop := env.car(t)

	rng := futureRange(t, 7, 5)
	_, err := maint.Open(ctx, admin, &models.MaintenanceWindow{
		CarID:     inShop.ID,
		Type:      "engine",
		StartDate: rng.Start,
	})
	require.NoError(t, err)

	t.Run("FiltersPolicyAndBlocks", func(t *testing.T) {
		cars, err := svc.Search(ctx, customer, rng)
		require.NoError(t, err)
		require.Len(t, cars, 1)
		assert.Equal(t, free.ID, cars[0].ID)
	})

	t.Run("ShorterRentFitsPolicy", func(t *testing.T) {
		short := futureRange(t, 30, 2)
		cars, err := svc.Search(ctx, customer, short)
		require.NoError(t, err)

		ids := make(map[int64]bool)
		for _, c := range cars {
			ids[c.ID] = true
		}
		assert.True(t, ids[free.ID])
		assert.True(t, ids[shortOnly.ID])
		assert.False(t, ids[offMarket.ID])
		assert.False(t, ids[inShop.ID], "open-ended maintenance blocks indefinitely")
	})

	t.Run("EmptyResultIsEmptySlice", func(t *testing.T) {
		// Take the only unrestricted car off market; nothing qualifies.
		free.AvailableNow = false
		require.NoError(t, env.store.UpdateCar(ctx, free))

		cars, err := svc.Search(ctx, customer, rng)
		require.NoError(t, err)
		assert.NotNil(t, cars)
		assert.Empty(t, cars)
	})

	t.Run("UnknownRoleDenied", func(t *testing.T) {
		_, err := svc.Search(ctx, models.Actor{UserID: 1, Role: "ghost"}, rng)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestSearchUsesCacheForRepeatedRange(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAvailabilityService(env.store, env.cache, env.logger)
	ctx := context.Background()
	customer := env.user(t, models.RoleCustomer)
	car := env.car(t)

	rng := futureRange(t, 7, 3)
	_, err := svc.Search(ctx, customer, rng)
	require.NoError(t, err)

	cached, err := env.cache.Get(ctx, car.ID, rng)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.WithinDuration(t, time.Now(), cached.CheckedAt, time.Minute)
}
