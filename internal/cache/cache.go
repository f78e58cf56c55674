// Package cache provides a small TTL cache used to reuse expensive
// snapshots (the analytics overview) within a short window. The cache is
// constructed once and passed to whoever needs it; entries are checked for
// freshness on read against an injected clock so expiry is testable.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a bounded LRU with per-cache TTL.
type Cache[K comparable, V any] struct {
	lru   *lru.Cache[K, entry[V]]
	ttl   time.Duration
	clock Clock
}

// New returns a cache holding up to size entries that expire ttl after
// being set. A nil clock uses time.Now.
func New[K comparable, V any](size int, ttl time.Duration, clock Clock) (*Cache[K, V], error) {
	if clock == nil {
		clock = time.Now
	}
	inner, err := lru.New[K, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: inner, ttl: ttl, clock: clock}, nil
}

// Get returns the cached value if present and still fresh. Stale entries are
// evicted on read.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	e, ok := c.lru.Get(key)
	if !ok {
		return zero, false
	}
	if c.clock().Sub(e.storedAt) > c.ttl {
		c.lru.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Set stores a value, stamping it with the current clock time.
func (c *Cache[K, V]) Set(key K, value V) {
	c.lru.Add(key, entry[V]{value: value, storedAt: c.clock()})
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}
