// Package cache provides bounded key/value caches with insertion-order
// eviction.
//
// FIFO is not an LRU: reading an entry does not promote it, the oldest
// inserted entry is always the first to go once capacity is exceeded.
// Caches are safe for concurrent use, the check-then-insert sequence of
// Fetch runs under a single lock.
package cache

import (
	"sync"
)

// Stats is a snapshot of cache counters.
type Stats struct {
	Name      string
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRatio returns hits / (hits + misses), 0 when nothing was looked up.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// FIFO is a bounded map with first-in first-out eviction.
type FIFO[K comparable, V any] struct {
	mu       sync.Mutex
	name     string
	items    map[K]V
	order    []K // insertion order, oldest first
	capacity int

	hits, misses, evictions uint64
}

// New creates a cache holding at most capacity entries. Capacity below 1
// is treated as 1.
func New[K comparable, V any](name string, capacity int) *FIFO[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &FIFO[K, V]{
		name:     name,
		items:    make(map[K]V, capacity),
		order:    make([]K, 0, capacity),
		capacity: capacity,
	}
}

// Name returns cache name used in logs and metrics.
func (c *FIFO[K, V]) Name() string {
	return c.name
}

// Get returns cached value. Order is not affected.
func (c *FIFO[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.items[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Put stores value. Replacing an existing key keeps its original position.
func (c *FIFO[K, V]) Put(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, val)
}

func (c *FIFO[K, V]) put(key K, val V) {
	if _, exists := c.items[key]; exists {
		c.items[key] = val
		return
	}
	c.items[key] = val
	c.order = append(c.order, key)
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		var zero K
		c.order[0] = zero
		c.order = c.order[1:]
		delete(c.items, oldest)
		c.evictions++
	}
}

// Fetch returns cached value or computes it with fn and stores the result.
// fn runs under the cache lock and must not touch the same cache.
func (c *FIFO[K, V]) Fetch(key K, fn func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.items[key]; ok {
		c.hits++
		return v
	}
	c.misses++
	v := fn()
	c.put(key, v)
	return v
}

// Len returns number of entries.
func (c *FIFO[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns maximum number of entries.
func (c *FIFO[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns keys oldest first.
func (c *FIFO[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, len(c.order))
	copy(keys, c.order)
	return keys
}

// Retain keeps the n oldest entries and drops everything inserted after
// them. It is a no-op when the cache holds n entries or fewer. Returns
// number of dropped entries.
func (c *FIFO[K, V]) Retain(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if len(c.order) <= n {
		return 0
	}
	dropped := c.order[n:]
	for _, k := range dropped {
		delete(c.items, k)
	}
	removed := len(dropped)
	c.order = append(make([]K, 0, c.capacity), c.order[:n]...)
	c.evictions += uint64(removed)
	return removed
}

// Clear removes all entries. Counters are kept.
func (c *FIFO[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.order = c.order[:0]
}

// Reset removes all entries and zeroes counters.
func (c *FIFO[K, V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
	c.order = c.order[:0]
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// Stats returns counters snapshot.
func (c *FIFO[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Name:      c.name,
		Len:       len(c.items),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
