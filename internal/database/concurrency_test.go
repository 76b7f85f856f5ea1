package database

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"dodscars/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two admins approving overlapping pending bookings concurrently must not
// both succeed: the approval transaction re-checks conflicts under the
// store's write lock, so exactly one wins.
func TestConcurrentApproval(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, models.RoleCustomer)
	car := seedCar(t, db)

	const numBookings = 10

	// All pending requests overlap each other around Jan 5-14.
	ids := make([]int64, 0, numBookings)
	for i := 0; i < numBookings; i++ {
		b, err := db.CreateBooking(ctx, user.ID, car.ID, jan(t, 5+i%3, 10+i%5))
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	var wg sync.WaitGroup
	wg.Add(numBookings)
	results := make(chan error, numBookings)

	for _, id := range ids {
		go func(bookingID int64) {
			defer wg.Done()
			results <- db.ApproveBooking(ctx, bookingID)
		}(id)
	}

	wg.Wait()
	close(results)

	successCount := 0
	conflictCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, ErrConflict):
			conflictCount++
		default:
			t.Fatalf("unexpected approval error: %v", err)
		}
	}

	assert.Equal(t, 1, successCount, "exactly one overlapping approval may win")
	assert.Equal(t, numBookings-1, conflictCount)

	// The losers are still pending, awaiting a human decision.
	pending, err := db.ListPendingBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, numBookings-1)
}

// Randomized variant: a mix of overlapping and disjoint pending requests.
// After the dust settles, approved bookings must be pairwise non-overlapping.
func TestConcurrentApprovalFuzz(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, models.RoleCustomer)
	car := seedCar(t, db)

	rng := rand.New(rand.NewSource(1))
	const numBookings = 24

	ids := make([]int64, 0, numBookings)
	for i := 0; i < numBookings; i++ {
		start := 1 + rng.Intn(20)
		b, err := db.CreateBooking(ctx, user.ID, car.ID, jan(t, start, start+1+rng.Intn(6)))
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	var wg sync.WaitGroup
	wg.Add(numBookings)
	for _, id := range ids {
		go func(bookingID int64) {
			defer wg.Done()
			err := db.ApproveBooking(ctx, bookingID)
			if err != nil && !errors.Is(err, ErrConflict) {
				t.Errorf("unexpected approval error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	all, err := db.ListBookingsForCar(ctx, car.ID)
	require.NoError(t, err)

	var approved []*models.Booking
	for _, b := range all {
		if b.Status == models.StatusApproved {
			approved = append(approved, b)
		}
	}
	require.NotEmpty(t, approved, "at least one approval must succeed")

	for i := 0; i < len(approved); i++ {
		for j := i + 1; j < len(approved); j++ {
			assert.False(t, approved[i].Range().Overlaps(approved[j].Range()),
				"approved bookings %d and %d overlap", approved[i].ID, approved[j].ID)
		}
	}
}
