package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trailcast/trailcast/internal/cache"
)

func TestTTLCache_GetPut(t *testing.T) {
	c := cache.New[string]()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("k", "v", time.Minute)
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestTTLCache_Expiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := cache.New(cache.WithClock[int](func() time.Time { return clock() }))

	c.Put("k", 42, 10*time.Second)

	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(11 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestTTLCache_Sweep(t *testing.T) {
	now := time.Now()
	c := cache.New(cache.WithClock[int](func() time.Time { return now }))

	c.Put("fresh", 1, time.Hour)
	c.Put("stale", 2, time.Second)

	now = now.Add(2 * time.Second)
	removed := c.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestTTLCache_PutSweepsPastThreshold(t *testing.T) {
	now := time.Now()
	c := cache.New(
		cache.WithClock[int](func() time.Time { return now }),
		cache.WithSweepThreshold[int](2),
	)

	c.Put("a", 1, time.Second)
	c.Put("b", 2, time.Second)
	c.Put("c", 3, time.Second)

	now = now.Add(2 * time.Second)
	c.Put("d", 4, time.Minute)

	// The three expired entries were swept during the insert.
	assert.Equal(t, 1, c.Len())
}
