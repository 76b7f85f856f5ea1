package repository

import (
	"context"
	"sync"
	"time"

	"dodscars/internal/daterange"
	"dodscars/internal/models"
)

type memoryEntry struct {
	cached    models.CachedAvailability
	expiresAt time.Time
}

type MemoryAvailabilityCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	byCar   map[int64][]string
	ttl     time.Duration
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{
		entries: make(map[string]memoryEntry),
		byCar:   make(map[int64][]string),
		ttl:     ttl,
	}
}

func (m *MemoryAvailabilityCache) Get(ctx context.Context, carID int64, rng daterange.Range) (*models.CachedAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[availabilityKey(carID, rng)]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	cached := entry.cached
	return &cached, nil
}

func (m *MemoryAvailabilityCache) Set(ctx context.Context, carID int64, rng daterange.Range, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := availabilityKey(carID, rng)
	if _, ok := m.entries[key]; !ok {
		m.byCar[carID] = append(m.byCar[carID], key)
	}
	m.entries[key] = memoryEntry{
		cached: models.CachedAvailability{
			CarID:     carID,
			Start:     rng.Start.Format(daterange.DateFormat),
			End:       rng.End.Format(daterange.DateFormat),
			Available: available,
			CheckedAt: time.Now(),
		},
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryAvailabilityCache) InvalidateCar(ctx context.Context, carID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range m.byCar[carID] {
		delete(m.entries, key)
	}
	delete(m.byCar, carID)
	return nil
}
