// Package cache provides a generic TTL cache
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// item wraps a cached value with its expiration time
type item[T any] struct {
	value     T
	expiresAt time.Time
}

// Stats reports cache effectiveness since creation
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Size   int    `json:"size"`
}

// Cache is a generic thread-safe cache with TTL expiration
type Cache[T any] struct {
	items  map[string]item[T]
	mu     sync.RWMutex
	ttl    time.Duration
	limit  int
	hits   atomic.Uint64
	misses atomic.Uint64
	stop   chan struct{}
	once   sync.Once
}

// New creates a cache with the specified TTL. ttl must be positive.
func New[T any](ttl time.Duration) *Cache[T] {
	c := &Cache[T]{
		items: make(map[string]item[T]),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// NewBounded creates a cache that holds at most limit items. When full, the
// item closest to expiry makes room for a new key.
func NewBounded[T any](ttl time.Duration, limit int) *Cache[T] {
	c := New[T](ttl)
	c.limit = limit
	return c
}

// Get retrieves a value, returning (value, true) if found and not expired
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(item.expiresAt) {
		c.misses.Add(1)
		var zero T
		return zero, false
	}
	c.hits.Add(1)
	return item.value, true
}

// Set stores a value with the cache's TTL
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.limit > 0 && len(c.items) >= c.limit {
		c.evictOldest()
	}
	c.items[key] = item[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// GetOrSet returns the cached value for key, computing and storing it on a miss.
// Concurrent misses on the same key may each call compute.
func (c *Cache[T]) GetOrSet(key string, compute func() T) T {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Set(key, v)
	return v
}

// Stats returns hit/miss counters and the current item count (including expired)
func (c *Cache[T]) Stats() Stats {
	c.mu.RLock()
	size := len(c.items)
	c.mu.RUnlock()

	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}

// Close stops the background cleanup goroutine. Safe to call more than once.
func (c *Cache[T]) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanup runs periodically to remove expired items
func (c *Cache[T]) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[T]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// evictOldest drops the item expiring first. Caller holds mu.
func (c *Cache[T]) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for key, item := range c.items {
		if !found || item.expiresAt.Before(oldest) {
			oldestKey, oldest, found = key, item.expiresAt, true
		}
	}
	if found {
		delete(c.items, oldestKey)
	}
}
