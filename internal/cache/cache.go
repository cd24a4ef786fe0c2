// Package cache provides a TTL-bounded key/value cache used by the
// trend analyzer and the context retriever.
//
// Two backends implement the same interface: a mutex-guarded in-process map
// (the default) and a Redis-backed adapter for multi-instance deployments.
// Entries are immutable once written and replacement is idempotent, so no
// transactional semantics are needed.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a TTL cache for values of type T. Expired entries are invisible
// to readers and eligible for eviction on the next write.
type Cache[T any] interface {
	// Get returns the cached value for key, or false if absent or expired.
	Get(ctx context.Context, key string) (T, bool)
	// Set stores value under key for the given TTL, replacing any prior entry.
	Set(ctx context.Context, key string, value T, ttl time.Duration)
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Memory is an in-process Cache backed by a mutex-guarded map.
// Safe for concurrent use from overlapping evaluations.
type Memory[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	now     func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

// NewMemoryWithClock creates a cache with an injected clock for tests.
func NewMemoryWithClock[T any](now func() time.Time) *Memory[T] {
	return &Memory[T]{
		entries: make(map[string]entry[T]),
		now:     now,
	}
}

// Get returns the live value for key. An expired entry is deleted on read.
func (c *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		var zero T
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key. Expired entries across the whole cache are
// evicted opportunistically so the map cannot grow without bound.
func (c *Memory[T]) Set(_ context.Context, key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry[T]{value: value, expiresAt: now.Add(ttl)}
}

// Len reports the number of entries currently held, including any that
// expired since the last write.
func (c *Memory[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
