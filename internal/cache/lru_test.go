package cache_test

import (
	"testing"
	"time"

	"hql/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New[string, int](2, 0)
	c.Put("a", 1)
	c.Put("b", 2)

	_, ok := c.Get("a") // a is now most recent
	require.True(t, ok)

	c.Put("c", 3)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestLRUPutOverwrites(t *testing.T) {
	c := cache.New[string, int](2, 0)
	c.Put("a", 1)
	c.Put("a", 2)
	assert.Equal(t, 1, c.Len())
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := cache.New[uint64, string](4, time.Minute, cache.WithClock(clock.now))

	c.Put(1, "one")
	clock.advance(30 * time.Second)
	c.Put(2, "two")

	_, ok := c.Get(1)
	assert.True(t, ok)

	clock.advance(45 * time.Second)
	_, ok = c.Get(1)
	assert.False(t, ok, "entry 1 outlived its ttl")
	assert.Equal(t, 1, c.Len())

	clock.advance(time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, c.Len())
}

func TestLRUPurge(t *testing.T) {
	c := cache.New[int, int](0, 0)
	c.Put(1, 1)
	c.Put(2, 2)
	assert.Equal(t, 1, c.Len(), "capacity below one is raised to one")
	c.Purge()
	assert.Equal(t, 0, c.Len())
}
