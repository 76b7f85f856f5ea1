package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"dodscars/internal/database"
	"dodscars/internal/daterange"
	"dodscars/internal/events"
	"dodscars/internal/models"
	"dodscars/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store  *database.DB
	cache  *repository.MemoryAvailabilityCache
	bus    *events.EventBus
	logger *zerolog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "rental.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		store:  db,
		cache:  repository.NewMemoryAvailabilityCache(time.Minute),
		bus:    events.NewEventBus(),
		logger: &logger,
	}
}

var seq atomic.Int64

func (e *testEnv) user(t *testing.T, role string) models.Actor {
	t.Helper()
	u := &models.User{
		Email:    fmt.Sprintf("%s-%d@rental.local", role, seq.Add(1)),
		FullName: "Test " + role,
		Role:     role,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return models.Actor{UserID: u.ID, Role: u.Role}
}

func (e *testEnv) car(t *testing.T, mutate ...func(*models.Car)) *models.Car {
	t.Helper()
	car := &models.Car{
		Make:         "Honda",
		Model:        "Civic",
		Year:         2022,
		DailyRate:    60,
		AvailableNow: true,
		MinRentDays:  1,
		MaxRentDays:  30,
	}
	for _, m := range mutate {
		m(car)
	}
	require.NoError(t, e.store.CreateCar(context.Background(), car))
	return car
}

// futureRange builds a range starting offset days from today.
func futureRange(t *testing.T, offsetDays, lengthDays int) daterange.Range {
	t.Helper()
	start := daterange.Truncate(time.Now()).AddDate(0, 0, offsetDays)
	r, err := daterange.New(start, start.AddDate(0, 0, lengthDays))
	require.NoError(t, err)
	return r
}
