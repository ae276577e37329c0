// Package cache provides a typed in-memory TTL cache backed by go-cache.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// InMemory is a thread-safe typed cache with a single TTL.
type InMemory[T any] struct {
	store *gocache.Cache
}

// New creates a cache whose entries expire after ttl. Expired entries are
// purged every 2*ttl.
func New[T any](ttl time.Duration) *InMemory[T] {
	return &InMemory[T]{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached value. Returns false on miss, expiry or a value of
// another type.
func (c *InMemory[T]) Get(key string) (T, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Set stores value with the default TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.store.SetDefault(key, value)
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.store.Delete(key)
}

// Flush drops every entry.
func (c *InMemory[T]) Flush() {
	c.store.Flush()
}

// Len counts entries, expired ones included until the next purge.
func (c *InMemory[T]) Len() int {
	return c.store.ItemCount()
}
