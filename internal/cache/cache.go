// Package cache provides a small TTL cache used to soften repeated chat and
// group lookups during dispatch passes. It is an abstraction so tests can
// substitute a no-op implementation.
package cache

import (
	"sync"
	"time"
)

// Cache is a read-through helper for reference data lookups.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Invalidate(key string)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// TTL is an in-memory cache whose entries expire after a fixed duration.
type TTL struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewTTL creates a TTL cache with the given entry lifetime.
func NewTTL(ttl time.Duration) *TTL {
	return &TTL{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *TTL) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *TTL) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

func (c *TTL) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Noop ignores all writes and always misses. Useful in tests where caching
// behaviour would hide store interactions.
type Noop struct{}

func (Noop) Get(string) (any, bool) { return nil, false }
func (Noop) Set(string, any)        {}
func (Noop) Invalidate(string)      {}
