// Package cache provides a process-wide in-memory cache with per-entry TTL
// and periodic eviction of expired entries.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache maps string keys to values with per-entry expiry. It is safe for
// concurrent use. Instances own a background sweep goroutine; call Destroy
// during shutdown to release it.
type Cache[V any] struct {
	mu         sync.RWMutex
	entries    map[string]entry[V]
	defaultTTL time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a cache with the given default TTL and sweep interval
func New[V any](defaultTTL, sweepInterval time.Duration) *Cache[V] {
	c := &Cache[V]{
		entries:    make(map[string]entry[V]),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}

	go c.sweep(sweepInterval)

	return c
}

// sweep periodically evicts expired entries so keys that are never read
// again do not accumulate
func (c *Cache[V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Get returns the cached value and whether it was present. An expired entry
// counts as a miss and is removed on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Set stores the value under key with the given TTL; a ttl <= 0 uses the
// cache's default. An existing entry is overwritten.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Exists reports whether a live entry is present for key, independent of the
// stored value. Callers must use this, not Get, when a zero value is a
// legitimate cached result.
func (c *Cache[V]) Exists(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// GetOrSet returns the cached value for key, or invokes compute, stores the
// result, and returns it. Concurrent callers missing on the same key may
// each invoke compute; the last write wins and subsequent reads converge.
func (c *Cache[V]) GetOrSet(key string, compute func() (V, error), ttl time.Duration) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, v, ttl)
	return v, nil
}

// Delete removes the entry for key, if any
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len returns the number of entries currently held, expired or not
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Destroy stops the background sweep and drops all entries. It is safe to
// call more than once. The cache must not be used afterwards.
func (c *Cache[V]) Destroy() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	c.Clear()
}
