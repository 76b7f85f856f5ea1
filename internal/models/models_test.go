package models

import (
	"testing"
	"time"

	"dodscars/internal/daterange"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalFee(t *testing.T) {
	assert.Equal(t, 250.0, TotalFee(50, 5, nil))

	charges := []BookingCharge{
		{Code: "late_fee", Amount: 50},
		{Code: "cleaning", Amount: 19.99},
	}
	assert.Equal(t, 319.99, TotalFee(50, 5, charges))

	// Rounded to two decimals.
	assert.Equal(t, 99.99, TotalFee(33.33, 3, nil))
}

func TestCarAllowsDuration(t *testing.T) {
	car := Car{MinRentDays: 3, MaxRentDays: 10}
	assert.False(t, car.AllowsDuration(2))
	assert.True(t, car.AllowsDuration(3))
	assert.True(t, car.AllowsDuration(10))
	assert.False(t, car.AllowsDuration(11))
}

func TestMaintenanceWindowOverlaps(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
	}
	rng, err := daterange.New(day(9), day(12))
	require.NoError(t, err)

	t.Run("OpenEnded", func(t *testing.T) {
		w := MaintenanceWindow{StartDate: day(8)}
		assert.True(t, w.Open())
		assert.True(t, w.OverlapsRange(rng))

		future := MaintenanceWindow{StartDate: day(20)}
		assert.False(t, future.OverlapsRange(rng))
	})

	t.Run("Closed", func(t *testing.T) {
		end := day(10)
		w := MaintenanceWindow{StartDate: day(5), EndDate: &end}
		assert.False(t, w.Open())
		assert.True(t, w.OverlapsRange(rng))

		earlier := day(8)
		w2 := MaintenanceWindow{StartDate: day(5), EndDate: &earlier}
		assert.False(t, w2.OverlapsRange(rng))
	})
}
