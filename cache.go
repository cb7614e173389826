package maprender

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is a key-value store with expiring entries. Implementations must be safe for concurrent use.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	// Set stores value under key. A ttl of zero or less never expires.
	Set(key K, value V, ttl time.Duration)
}

// Default capacities of the renderer caches.
const (
	DefaultRenderDataCapacity = 256
	DefaultResponseCapacity   = 4096
)

// TTLCache is an in-process Cache holding at most capacity entries. The least recently used entry is evicted when full, and expired entries are dropped on every Set.
type TTLCache[K comparable, V any] struct {
	c *ttlcache.Cache[K, V]
}

// NewTTLCache returns an empty cache bounded to capacity entries, zero means unbounded.
func NewTTLCache[K comparable, V any](capacity uint64) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		c: ttlcache.New[K, V](
			ttlcache.WithCapacity[K, V](capacity),
			ttlcache.WithDisableTouchOnHit[K, V](),
		),
	}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	item := c.c.Get(key)
	if item == nil || item.IsExpired() {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.c.DeleteExpired()
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	c.c.Set(key, value, ttl)
}

// Len returns the number of entries, expired ones included until the next Set.
func (c *TTLCache[K, V]) Len() int {
	return c.c.Len()
}
