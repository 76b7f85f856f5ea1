package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dodscars/internal/config"
	"dodscars/internal/daterange"
	"dodscars/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{
		client: client,
		ttl:    ttl,
	}
}

func availabilityKey(carID int64, rng daterange.Range) string {
	return fmt.Sprintf("availability:%d:%s:%s",
		carID,
		rng.Start.Format(daterange.DateFormat),
		rng.End.Format(daterange.DateFormat),
	)
}

func carKeysKey(carID int64) string {
	return fmt.Sprintf("availability_keys:%d", carID)
}

func (r *RedisAvailabilityCache) Get(ctx context.Context, carID int64, rng daterange.Range) (*models.CachedAvailability, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, availabilityKey(carID, rng)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability from redis: %w", err)
	}

	var cached models.CachedAvailability
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached availability: %w", err)
	}

	return &cached, nil
}

func (r *RedisAvailabilityCache) Set(ctx context.Context, carID int64, rng daterange.Range, available bool) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	cached := models.CachedAvailability{
		CarID:     carID,
		Start:     rng.Start.Format(daterange.DateFormat),
		End:       rng.End.Format(daterange.DateFormat),
		Available: available,
		CheckedAt: time.Now(),
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached availability: %w", err)
	}

	key := availabilityKey(carID, rng)
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set availability in redis: %w", err)
	}

	// Track the key so InvalidateCar can drop every range at once. The set
	// outlives its members slightly; that only costs a few stale DELs.
	setKey := carKeysKey(carID)
	if err := r.client.SAdd(ctx, setKey, key).Err(); err != nil {
		return fmt.Errorf("failed to index availability key: %w", err)
	}
	r.client.Expire(ctx, setKey, r.ttl*2)

	return nil
}

func (r *RedisAvailabilityCache) InvalidateCar(ctx context.Context, carID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	setKey := carKeysKey(carID)
	keys, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to list availability keys: %w", err)
	}

	keys = append(keys, setKey)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability keys: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
