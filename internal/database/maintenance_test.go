package database

import (
	"context"
	"testing"
	"time"

	"dodscars/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, day int) time.Time {
	t.Helper()
	return time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestOpenMaintenance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	car := seedCar(t, db)

	t.Run("OpenEnded", func(t *testing.T) {
		w := &models.MaintenanceWindow{CarID: car.ID, Type: "engine", StartDate: date(t, 8)}
		warnings, err := db.OpenMaintenance(ctx, w)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.NotZero(t, w.ID)
		assert.True(t, w.Open())
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		end := date(t, 5)
		w := &models.MaintenanceWindow{CarID: car.ID, Type: "tires", StartDate: date(t, 8), EndDate: &end}
		_, err := db.OpenMaintenance(ctx, w)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("UnknownCar", func(t *testing.T) {
		w := &models.MaintenanceWindow{CarID: 9999, Type: "tires", StartDate: date(t, 8)}
		_, err := db.OpenMaintenance(ctx, w)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("WarnsOnApprovedOverlap", func(t *testing.T) {
		user := seedUser(t, db, models.RoleCustomer)
		busy := seedCar(t, db)
		booking, err := db.CreateBooking(ctx, user.ID, busy.ID, jan(t, 5, 10))
		require.NoError(t, err)
		require.NoError(t, db.ApproveBooking(ctx, booking.ID))

		w := &models.MaintenanceWindow{CarID: busy.ID, Type: "recall", StartDate: date(t, 8)}
		warnings, err := db.OpenMaintenance(ctx, w)
		require.NoError(t, err)
		require.Len(t, warnings, 1, "window opens anyway; overlap is advisory")
		assert.Equal(t, booking.ID, warnings[0].ID)

		// The approved booking is untouched.
		got, err := db.GetBooking(ctx, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)
	})
}

func TestCloseMaintenance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	car := seedCar(t, db)

	w := &models.MaintenanceWindow{CarID: car.ID, Type: "engine", StartDate: date(t, 8)}
	_, err := db.OpenMaintenance(ctx, w)
	require.NoError(t, err)

	t.Run("EndBeforeStart", func(t *testing.T) {
		assert.ErrorIs(t, db.CloseMaintenance(ctx, w.ID, date(t, 5)), ErrInvalidRange)
	})

	t.Run("SameDayClose", func(t *testing.T) {
		require.NoError(t, db.CloseMaintenance(ctx, w.ID, date(t, 8)))
		got, err := db.GetMaintenance(ctx, w.ID)
		require.NoError(t, err)
		require.NotNil(t, got.EndDate)
		assert.Equal(t, date(t, 8), *got.EndDate)
	})

	t.Run("UnknownWindow", func(t *testing.T) {
		assert.ErrorIs(t, db.CloseMaintenance(ctx, 9999, date(t, 9)), ErrNotFound)
	})
}

func TestOpenWindowsFor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	car := seedCar(t, db)

	// Closed window Jan 2-4, open-ended window from Jan 20.
	closedEnd := date(t, 4)
	closed := &models.MaintenanceWindow{CarID: car.ID, Type: "tires", StartDate: date(t, 2), EndDate: &closedEnd}
	_, err := db.OpenMaintenance(ctx, closed)
	require.NoError(t, err)

	open := &models.MaintenanceWindow{CarID: car.ID, Type: "engine", StartDate: date(t, 20)}
	_, err = db.OpenMaintenance(ctx, open)
	require.NoError(t, err)

	windows, err := db.OpenWindowsFor(ctx, car.ID, jan(t, 3, 6))
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, closed.ID, windows[0].ID)

	windows, err = db.OpenWindowsFor(ctx, car.ID, jan(t, 19, 25))
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, open.ID, windows[0].ID)

	windows, err = db.OpenWindowsFor(ctx, car.ID, jan(t, 6, 12))
	require.NoError(t, err)
	assert.Empty(t, windows)

	// Open-ended windows block every range from their start onward.
	windows, err = db.OpenWindowsFor(ctx, car.ID, jan(t, 25, 30))
	require.NoError(t, err)
	assert.Len(t, windows, 1)
}

func TestListMaintenance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	car := seedCar(t, db)

	end := date(t, 4)
	_, err := db.OpenMaintenance(ctx, &models.MaintenanceWindow{CarID: car.ID, Type: "tires", StartDate: date(t, 2), EndDate: &end})
	require.NoError(t, err)
	_, err = db.OpenMaintenance(ctx, &models.MaintenanceWindow{CarID: car.ID, Type: "engine", StartDate: date(t, 10)})
	require.NoError(t, err)

	all, err := db.ListMaintenance(ctx, car.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := db.ListMaintenance(ctx, car.ID, true)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "engine", open[0].Type)
}
