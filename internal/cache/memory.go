package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds entries in process memory with TTL eviction.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache. Expired entries are swept every
// cleanupInterval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns the cached value for key, if present and unexpired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	return val.([]byte), true
}

// Set stores value under key. A zero ttl uses the cache's default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

// Delete drops the entry for key.
func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

// Clear drops all entries.
func (c *MemoryCache) Clear() error {
	c.store.Flush()
	return nil
}
