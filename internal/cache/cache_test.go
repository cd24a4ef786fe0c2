package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory[string]()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Get on empty cache returned a hit")
	}

	c.Set(ctx, "k", "v", time.Hour)
	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got != "v" {
		t.Errorf("got %q, want %q", got, "v")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewMemoryWithClock[int](func() time.Time { return now })
	ctx := context.Background()

	c.Set(ctx, "k", 42, time.Hour)

	now = now.Add(59 * time.Minute)
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Error("entry expired before its TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("entry survived past its TTL")
	}
	// Expired entries are removed on read.
	if c.Len() != 0 {
		t.Errorf("cache holds %d entries after expiry read, want 0", c.Len())
	}
}

func TestMemorySweepOnWrite(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewMemoryWithClock[int](func() time.Time { return now })
	ctx := context.Background()

	c.Set(ctx, "a", 1, time.Minute)
	c.Set(ctx, "b", 2, time.Hour)

	now = now.Add(30 * time.Minute)
	c.Set(ctx, "c", 3, time.Hour)

	if c.Len() != 2 {
		t.Errorf("cache holds %d entries after sweep, want 2", c.Len())
	}
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Error("unexpired entry swept on write")
	}
}

func TestMemoryOverwrite(t *testing.T) {
	c := NewMemory[string]()
	ctx := context.Background()

	c.Set(ctx, "k", "old", time.Hour)
	c.Set(ctx, "k", "new", time.Hour)

	got, _ := c.Get(ctx, "k")
	if got != "new" {
		t.Errorf("got %q after overwrite, want %q", got, "new")
	}
	if c.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", c.Len())
	}
}
