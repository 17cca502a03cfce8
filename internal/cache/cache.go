// Package cache provides the bounded lookup cache point reads consult
// before descending the tree.
package cache

import (
	"sync/atomic"

	"github.com/elastic/go-freelru"
)

const (
	MinCacheSize = 16 // Minimum capacity; smaller requests are rounded up
)

// Cache is a bounded LRU from key to value. It is not internally
// synchronized; it lives inside a single-writer tree and inherits that
// model. Only the stat counters are atomic so they stay readable from
// anywhere.
type Cache[K comparable, V any] struct {
	lru *freelru.LRU[K, V]

	// Stats
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache bounded to capacity entries. hash maps a key to the
// uint32 bucket hash freelru works with.
func New[K comparable, V any](capacity uint32, hash func(K) uint32) (*Cache[K, V], error) {
	if capacity < MinCacheSize {
		capacity = MinCacheSize
	}

	lru, err := freelru.New[K, V](capacity, hash)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: lru}, nil
}

// Get retrieves a cached value.
// Returns (value, true) on cache hit, (zero, false) on miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return v, false
	}
	c.hits.Add(1)
	return v, true
}

// Add caches a value, replacing any existing entry for the key.
func (c *Cache[K, V]) Add(key K, value V) {
	if evicted := c.lru.Add(key, value); evicted {
		c.evictions.Add(1)
	}
}

// Remove drops the entry for key if present.
func (c *Cache[K, V]) Remove(key K) {
	c.lru.Remove(key)
}

// Purge drops every entry. Stats are kept.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}

// Len returns the current number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns cache statistics
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// ClearStats resets the cache's positive incrementing statistics
func (c *Cache[K, V]) ClearStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
