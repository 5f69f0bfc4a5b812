package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheConfig configures the response cache.
type CacheConfig struct {
	// TTL is how long an entry stays fresh. Expired entries are misses
	// (but remain readable through Stale until evicted). Default: 24h.
	TTL time.Duration

	// Capacity bounds the number of entries; the oldest entry is
	// evicted to make room. Default: 512.
	Capacity int
}

// DefaultCacheConfig returns a CacheConfig with sensible defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:      24 * time.Hour,
		Capacity: 512,
	}
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Size      int
	Hits      int
	Misses    int
	Evictions int
}

type cacheEntry struct {
	content  json.RawMessage
	storedAt time.Time
}

// ResponseCache is an in-memory TTL cache for generated responses, keyed
// by request fingerprint. Concurrent misses for the same fingerprint are
// collapsed into a single computation.
//
// A nil *ResponseCache is valid: lookups miss and GetOrCompute calls
// compute directly. The cache is advisory and never blocks a request.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[Fingerprint]cacheEntry
	cfg     CacheConfig
	group   singleflight.Group
	now     func() time.Time

	hits      int
	misses    int
	evictions int
}

// NewResponseCache creates a ResponseCache.
func NewResponseCache(cfg CacheConfig) *ResponseCache {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	return &ResponseCache{
		entries: make(map[Fingerprint]cacheEntry),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Lookup returns the fresh cached content for fp, if any.
func (c *ResponseCache) Lookup(fp Fingerprint) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	content, ok := c.fresh(fp)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return content, ok
}

// Stale returns the cached content for fp regardless of age. It exists
// for fallback paths that prefer an outdated response over none.
func (c *ResponseCache) Stale(fp Fingerprint) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fp]
	if !ok {
		return nil, false
	}
	return e.content, true
}

// GetOrCompute returns the fresh cached content for fp, or runs compute
// and caches its result. Concurrent callers with the same fingerprint
// share one compute call. Compute errors are returned as-is and nothing
// is cached.
func (c *ResponseCache) GetOrCompute(ctx context.Context, fp Fingerprint, compute func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if c == nil {
		return compute(ctx)
	}

	if content, ok := c.Lookup(fp); ok {
		return content, nil
	}

	v, err, _ := c.group.Do(string(fp), func() (any, error) {
		// A concurrent caller may have filled the entry while this
		// one waited on the flight group.
		if content, ok := c.peek(fp); ok {
			return content, nil
		}

		content, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.put(fp, content)
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// Stats returns a snapshot of the cache counters.
func (c *ResponseCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:      len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// fresh returns unexpired content for fp. Caller holds c.mu.
func (c *ResponseCache) fresh(fp Fingerprint) (json.RawMessage, bool) {
	e, ok := c.entries[fp]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.cfg.TTL {
		return nil, false
	}
	return e.content, true
}

// peek is Lookup without counter updates, for the singleflight recheck.
func (c *ResponseCache) peek(fp Fingerprint) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fresh(fp)
}

func (c *ResponseCache) put(fp Fingerprint, content json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[fp]; !exists && len(c.entries) >= c.cfg.Capacity {
		c.evictOldest()
	}
	c.entries[fp] = cacheEntry{content: content, storedAt: c.now()}
}

// evictOldest removes the entry with the earliest storedAt. Caller holds
// c.mu. Linear scan; capacities are small.
func (c *ResponseCache) evictOldest() {
	var oldest Fingerprint
	var oldestAt time.Time
	first := true
	for fp, e := range c.entries {
		if first || e.storedAt.Before(oldestAt) {
			oldest = fp
			oldestAt = e.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldest)
		c.evictions++
	}
}
