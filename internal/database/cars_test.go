package database

import (
	"context"
	"testing"

	"dodscars/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	car := seedCar(t, db)
	require.NotZero(t, car.ID)

	t.Run("Get", func(t *testing.T) {
		got, err := db.GetCar(ctx, car.ID)
		require.NoError(t, err)
		assert.Equal(t, "Toyota", got.Make)
		assert.Equal(t, "2021 Toyota Corolla", got.Label())
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := db.GetCar(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		car.DailyRate = 75
		car.AvailableNow = false
		car.MinRentDays = 2
		require.NoError(t, db.UpdateCar(ctx, car))

		got, err := db.GetCar(ctx, car.ID)
		require.NoError(t, err)
		assert.Equal(t, 75.0, got.DailyRate)
		assert.False(t, got.AvailableNow)
		assert.Equal(t, 2, got.MinRentDays)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		ghost := *car
		ghost.ID = 9999
		assert.ErrorIs(t, db.UpdateCar(ctx, &ghost), ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		seedCar(t, db)
		cars, err := db.ListCars(ctx)
		require.NoError(t, err)
		assert.Len(t, cars, 2)
		assert.Less(t, cars[0].ID, cars[1].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		doomed := seedCar(t, db)
		require.NoError(t, db.DeleteCar(ctx, doomed.ID))
		_, err := db.GetCar(ctx, doomed.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		assert.ErrorIs(t, db.DeleteCar(ctx, 9999), ErrNotFound)
	})
}

func TestDeleteCarWithBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, models.RoleCustomer)
	car := seedCar(t, db)

	_, err := db.CreateBooking(ctx, user.ID, car.ID, jan(t, 5, 10))
	require.NoError(t, err)

	// ON DELETE RESTRICT protects the audit trail.
	assert.ErrorIs(t, db.DeleteCar(ctx, car.ID), ErrVehicleInUse)
}

func TestCandidatesFor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedCar(t, db)                                                      // 1..30 days
	strict := seedCar(t, db, func(c *models.Car) { c.MinRentDays = 7 }) // needs a week
	parked := seedCar(t, db, func(c *models.Car) { c.AvailableNow = false })

	cars, err := db.CandidatesFor(ctx, jan(t, 5, 10)) // 5 days
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.NotEqual(t, strict.ID, cars[0].ID)
	assert.NotEqual(t, parked.ID, cars[0].ID)

	cars, err = db.CandidatesFor(ctx, jan(t, 5, 15)) // 10 days, strict qualifies
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Less(t, cars[0].ID, cars[1].ID, "candidates are ordered by id")
}

func TestSyncFleet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seed := []models.Car{
		{ID: 1, Make: "Toyota", Model: "Corolla", Year: 2020, DailyRate: 45, AvailableNow: true, MinRentDays: 1, MaxRentDays: 30},
		{ID: 2, Make: "Honda", Model: "Civic", Year: 2022, DailyRate: 55, AvailableNow: true, MinRentDays: 1, MaxRentDays: 30},
	}
	require.NoError(t, db.SyncFleet(ctx, seed))

	cars, err := db.ListCars(ctx)
	require.NoError(t, err)
	require.Len(t, cars, 2)

	// Re-seeding never overwrites admin edits.
	car, err := db.GetCar(ctx, 1)
	require.NoError(t, err)
	car.DailyRate = 99
	require.NoError(t, db.UpdateCar(ctx, car))

	require.NoError(t, db.SyncFleet(ctx, seed))
	car, err = db.GetCar(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 99.0, car.DailyRate)
}
