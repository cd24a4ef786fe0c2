package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis instance, for deployments running
// multiple API replicas that should share one intelligence cache.
// Values are stored as JSON; Redis handles TTL expiry natively.
type Redis[T any] struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. The prefix namespaces keys so several
// caches can share one Redis database.
func NewRedis[T any](client *redis.Client, prefix string) *Redis[T] {
	return &Redis[T]{client: client, prefix: prefix}
}

// Connect initializes a Redis client from URL or host:port input.
// Supporting both formats keeps local and container config paths simple.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Get returns the cached value for key, or false if absent, expired, or
// unreadable. Redis errors degrade to a cache miss rather than failing the
// evaluation that triggered the lookup.
func (c *Redis[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("cache: redis get failed", "key", key, "error", err)
		}
		return zero, false
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		slog.Warn("cache: corrupt redis entry dropped", "key", key, "error", err)
		return zero, false
	}
	return value, true
}

// Set stores value under key with the given TTL. Failures are logged and
// swallowed: a missed cache write only costs a future provider call.
func (c *Redis[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache: marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		slog.Warn("cache: redis set failed", "key", key, "error", err)
	}
}
