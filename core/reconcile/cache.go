package reconcile

import (
	"sync"
	"time"
)

// setEntry is one cached set with its build time.
type setEntry[V comparable] struct {
	items map[V]struct{}
	built time.Time
}

// SetCache keeps one set of values per key for a limited time.
// It is used to remember which records the last compare run flagged.
type SetCache[K comparable, V comparable] struct {
	mu      sync.RWMutex
	entries map[K]*setEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

// NewSetCache creates a cache whose entries expire after ttl. A zero ttl disables it.
func NewSetCache[K comparable, V comparable](ttl time.Duration) *SetCache[K, V] {
	return &SetCache[K, V]{
		entries: make(map[K]*setEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *SetCache[K, V]) expired(e *setEntry[V]) bool {
	if c.ttl == 0 {
		return true
	}
	return c.now().Sub(e.built) > c.ttl
}

// Put replaces the set stored for key.
func (c *SetCache[K, V]) Put(key K, values []V) {
	items := make(map[V]struct{}, len(values))
	for _, v := range values {
		items[v] = struct{}{}
	}

	c.mu.Lock()
	c.entries[key] = &setEntry[V]{items: items, built: c.now()}
	c.mu.Unlock()
}

// Contains reports whether value is in the live set for key.
func (c *SetCache[K, V]) Contains(key K, value V) bool {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.expired(e) {
		return false
	}
	_, found := e.items[value]
	return found
}

// Remove drops one value from the set for key.
func (c *SetCache[K, V]) Remove(key K, value V) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		delete(e.items, value)
	}
	c.mu.Unlock()
}

// Invalidate drops the whole set for key.
func (c *SetCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
