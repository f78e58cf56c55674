package cache

import (
	"testing"
	"time"
)

func TestCache_FreshHit(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	c, err := New[string, int](4, time.Minute, func() time.Time { return now })
	if err != nil {
		t.Fatal(err)
	}

	c.Set("k", 42)
	got, ok := c.Get("k")
	if !ok || got != 42 {
		t.Errorf("Get = %d, %v, want 42, true", got, ok)
	}
}

func TestCache_ExpiryOnRead(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	c, err := New[string, int](4, time.Minute, func() time.Time { return now })
	if err != nil {
		t.Fatal(err)
	}

	c.Set("k", 42)
	now = now.Add(61 * time.Second)

	if _, ok := c.Get("k"); ok {
		t.Error("expected a stale entry to miss")
	}
	// The stale entry is also gone for a later read at an earlier clock.
	now = now.Add(-60 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("expected the stale entry to have been evicted")
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c, err := New[string, int](4, time.Minute, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("absent"); ok {
		t.Error("expected a miss for an unknown key")
	}
}

func TestCache_Purge(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	c, err := New[string, int](4, time.Minute, func() time.Time { return now })
	if err != nil {
		t.Fatal(err)
	}

	c.Set("k", 1)
	c.Purge()
	if _, ok := c.Get("k"); ok {
		t.Error("expected an empty cache after Purge")
	}
}
