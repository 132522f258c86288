package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryCache is a fixed-capacity, LRU-evicting in-memory backend, the
// Go analogue of advanced_caching.py's MemoryCache. It is built on
// hashicorp/golang-lru/v2 rather than a hand-rolled ordered map.
type MemoryCache struct {
	name    string
	maxSize int
	lru     *lru.Cache[string, interface{}]
	stats   statCounters
}

// NewMemoryCache creates a MemoryCache evicting least-recently-used
// entries once it holds maxSize keys.
func NewMemoryCache(name string, maxSize int) (*MemoryCache, error) {
	if maxSize <= 0 {
		maxSize = 1000
	}
	c := &MemoryCache{name: name, maxSize: maxSize}
	backing, err := lru.NewWithEvict[string, interface{}](maxSize, func(key string, value interface{}) {
		c.stats.recordEvicted()
	})
	if err != nil {
		return nil, err
	}
	c.lru = backing
	return c, nil
}

func (c *MemoryCache) Name() string { return c.name }

func (c *MemoryCache) Get(key string) (interface{}, bool) {
	value, ok := c.lru.Get(key)
	if ok {
		c.stats.recordHit()
		return value, true
	}
	c.stats.recordMiss()
	return nil, false
}

// Set stores value under key. ttl is ignored; MemoryCache has no
// expiry, only LRU capacity eviction.
func (c *MemoryCache) Set(key string, value interface{}, ttl int64) {
	c.lru.Add(key, value)
}

func (c *MemoryCache) Delete(key string) bool {
	return c.lru.Remove(key)
}

func (c *MemoryCache) Clear() {
	c.lru.Purge()
}

func (c *MemoryCache) Keys() []string {
	return c.lru.Keys()
}

func (c *MemoryCache) DeletePattern(pattern string) int {
	return DeletePattern(c, pattern)
}

func (c *MemoryCache) Stats() Stats {
	return c.stats.snapshot(c.lru.Len(), c.maxSize)
}
