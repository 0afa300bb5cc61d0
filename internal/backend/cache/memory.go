package cache

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemorySize bounds a memory cache created without an explicit size
const DefaultMemorySize = 1024

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-process Cache holding at most size entries. The least recently
// used entry is evicted when full, and entries older than maxAge are purged in the
// background. A shorter per-entry ttl passed to Set is checked on read.
type MemoryCache struct {
	entries *expirable.LRU[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryCache creates a cache; size <= 0 uses DefaultMemorySize and maxAge <= 0 keeps
// entries until they are evicted by size
func NewMemoryCache(size int, maxAge time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &MemoryCache{
		entries: expirable.NewLRU[string, memoryEntry](size, nil, maxAge),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.entries.Remove(key)
		return nil, ErrMiss
	}
	return slices.Clone(entry.value), nil
}

// Set stores value; a ttl <= 0 is bounded only by the cache's max age
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: slices.Clone(value)}
	if ttl > 0 {
		entry.expires = c.now().Add(ttl)
	}
	c.entries.Add(key, entry)
	return nil
}

func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

func (c *MemoryCache) Close() error {
	c.entries.Purge()
	return nil
}
