// Package cache provides a small whole-set cache with time-based expiration.
package cache

import (
	"maps"
	"sync"
	"time"
)

// TTLCache holds a set of entries that expire together. It suits listings
// that are loaded in one query and refreshed as a whole, such as the stored
// snapshot index.
type TTLCache[K comparable, V any] struct {
	mu        sync.RWMutex
	data      map[K]V
	timestamp time.Time
	ttl       time.Duration
	now       func() time.Time
}

// New creates an empty, expired TTLCache.
func New[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data: make(map[K]V),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get returns the value for key while the set is fresh.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiredLocked() {
		var zero V
		return zero, false
	}
	v, ok := c.data[key]
	return v, ok
}

// Set stores one value and restarts the TTL of the whole set.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
	c.timestamp = c.now()
}

// GetAll returns a copy of the set, or nil when it has expired.
func (c *TTLCache[K, V]) GetAll() map[K]V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiredLocked() {
		return nil
	}
	return maps.Clone(c.data)
}

// SetAll replaces the set and restarts its TTL.
func (c *TTLCache[K, V]) SetAll(data map[K]V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = maps.Clone(data)
	if c.data == nil {
		c.data = make(map[K]V)
	}
	c.timestamp = c.now()
}

// Load returns the cached set, calling load to refill it when it has
// expired. A failed load leaves the cache untouched.
func (c *TTLCache[K, V]) Load(load func() (map[K]V, error)) (map[K]V, error) {
	if all := c.GetAll(); all != nil {
		return all, nil
	}
	data, err := load()
	if err != nil {
		return nil, err
	}
	c.SetAll(data)
	return maps.Clone(data), nil
}

// IsExpired reports whether the set needs a reload.
func (c *TTLCache[K, V]) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiredLocked()
}

// expiredLocked must be called with at least a read lock held.
func (c *TTLCache[K, V]) expiredLocked() bool {
	return c.timestamp.IsZero() || c.now().Sub(c.timestamp) >= c.ttl
}

// Invalidate empties the set and marks it expired.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[K]V)
	c.timestamp = time.Time{}
}

// Len returns the number of entries, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
