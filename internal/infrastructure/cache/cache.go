package cache

import (
	"context"
	"errors"
	"time"

	"github.com/palmcosmic/api/internal/config"
	"github.com/palmcosmic/api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Cache is a thin Redis wrapper for upstream API response caching
// (daily horoscopes, geocoding lookups).
type Cache struct {
	client *redis.Client
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the cached value for key, or domain.ErrNotFound on a miss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
