package gym

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a fetched list is reused.
const DefaultCacheTTL = 30 * time.Second

// QueryCache is a keyed TTL cache for backend reads. Entries are dropped when
// they expire or when a mutation invalidates their key prefix.
type QueryCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cachedQuery
}

type cachedQuery struct {
	value   any
	expires time.Time
}

// NewQueryCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedQuery),
	}
}

// Get returns a live entry.
func (c *QueryCache) Get(key string) (any, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key.
func (c *QueryCache) Set(key string, value any) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedQuery{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops every entry whose key starts with one of prefixes and
// returns how many were removed. No prefixes clears the cache.
func (c *QueryCache) Invalidate(prefixes ...string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(prefixes) == 0 {
		n := len(c.entries)
		c.entries = make(map[string]cachedQuery)
		return n
	}
	removed := 0
	for key := range c.entries {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
				removed++
				break
			}
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (c *QueryCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// loadCached returns the cached value for key or runs load and stores it.
// Failed loads are never cached.
func loadCached[T any](ctx context.Context, c *QueryCache, key string, load func(context.Context) (T, error)) (T, error) {
	if cached, ok := c.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}
	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, value)
	return value, nil
}

// queryKey builds a deterministic cache key for a prefix and its parameters.
func queryKey(prefix string, params any) string {
	b, err := json.Marshal(params)
	if err != nil || string(b) == "{}" || string(b) == "null" {
		return prefix
	}
	sum := sha1.Sum(b)
	return prefix + ":" + hex.EncodeToString(sum[:8])
}
