// Package cache provides a process-local TTL cache used by the tile and
// condition services. Entries expire after a per-entry TTL; eviction is a
// lazy sweep triggered by size, not LRU.
package cache

import (
	"sync"
	"time"
)

// TTLCache is a concurrency-safe string-keyed cache with per-entry expiry.
type TTLCache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	sweepAbove int
	now        func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Option configures a TTLCache.
type Option[V any] func(*TTLCache[V])

// WithSweepThreshold sets the entry count above which Put triggers a sweep
// of expired entries. Default: 2000.
func WithSweepThreshold[V any](n int) Option[V] {
	return func(c *TTLCache[V]) { c.sweepAbove = n }
}

// WithClock overrides the time source, for tests.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *TTLCache[V]) { c.now = now }
}

// New creates an empty TTLCache.
func New[V any](opts ...Option[V]) *TTLCache[V] {
	c := &TTLCache[V]{
		entries:    make(map[string]entry[V]),
		sweepAbove: 2000,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key with the given TTL. When the cache has grown
// past the sweep threshold, expired entries are removed first.
func (c *TTLCache[V]) Put(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > c.sweepAbove {
		c.sweepLocked()
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Sweep removes all expired entries and reports how many were removed.
func (c *TTLCache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked()
}

// Len returns the number of entries, expired or not.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TTLCache[V]) sweepLocked() int {
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
