package cache

import (
	"fmt"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashString(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}

func TestCacheHitMiss(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](32, hashString)
	require.NoError(t, err)

	_, ok := c.Get("absent")
	assert.False(t, ok)

	c.Add("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
}

func TestCacheReplace(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](32, hashString)
	require.NoError(t, err)

	c.Add("k", 1)
	c.Add("k", 2)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestCacheRemove(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](32, hashString)
	require.NoError(t, err)

	c.Add("k", 1)
	c.Remove("k")
	_, ok := c.Get("k")
	assert.False(t, ok)

	// Removing an absent key is a no-op
	c.Remove("never")
}

func TestCacheEviction(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](MinCacheSize, hashString)
	require.NoError(t, err)

	// Overfill well past capacity; older entries must be evicted
	for i := 0; i < MinCacheSize*4; i++ {
		c.Add(fmt.Sprintf("key-%d", i), i)
	}

	assert.LessOrEqual(t, c.Len(), MinCacheSize)
	assert.Greater(t, c.Stats().Evictions, uint64(0))
}

func TestCachePurge(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](32, hashString)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		c.Add(fmt.Sprintf("key-%d", i), i)
	}
	require.Equal(t, 10, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("key-3")
	assert.False(t, ok)
}

func TestCacheMinimumCapacity(t *testing.T) {
	t.Parallel()

	// Tiny requests are rounded up rather than rejected
	c, err := New[string, int](1, hashString)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		c.Add(fmt.Sprintf("key-%d", i), i)
	}
	assert.Greater(t, c.Len(), 1)
}

func TestCacheClearStats(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](32, hashString)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Get("a")
	c.Get("b")
	require.Equal(t, uint64(1), c.Stats().Hits)

	c.ClearStats()
	s := c.Stats()
	assert.Equal(t, uint64(0), s.Hits)
	assert.Equal(t, uint64(0), s.Misses)
	assert.Equal(t, uint64(0), s.Evictions)

	// Entries survive a stats reset
	assert.Equal(t, 1, c.Len())
}
