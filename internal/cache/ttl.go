package cache

import (
	"container/list"
	"sync"
	"time"
)

type ttlEntry struct {
	key       string
	value     interface{}
	expiresAt time.Time
	elem      *list.Element
}

// TTLCache is a capacity-bounded backend where every entry also
// expires after a TTL, the Go analogue of advanced_caching.py's
// TTLMemoryCache. Each entry tracks its own expiry time so a per-Set
// ttl override is honored exactly like the original's
// `expiry_time = time.time() + (ttl or self.default_ttl)`, and so
// capacity eviction and TTL expiry are counted separately:
// expirable.LRU's single eviction callback can't tell the two apart,
// so this cache keeps its own recency list instead.
type TTLCache struct {
	name       string
	maxSize    int
	defaultTTL time.Duration

	mu      sync.Mutex
	entries map[string]*ttlEntry
	order   *list.List // least-recently-used at the front

	stats statCounters
}

// NewTTLCache creates a TTLCache evicting the least-recently-used
// entry once full, and expiring any entry past its own ttl.
func NewTTLCache(name string, maxSize int, defaultTTL time.Duration) *TTLCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 30 * time.Minute
	}
	return &TTLCache{
		name:       name,
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*ttlEntry),
		order:      list.New(),
	}
}

func (c *TTLCache) Name() string { return c.name }

func (c *TTLCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.recordMiss()
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.removeLocked(entry)
		c.stats.recordExpired()
		c.stats.recordMiss()
		return nil, false
	}
	c.order.MoveToBack(entry.elem)
	c.stats.recordHit()
	return entry.value, true
}

// Set stores value under key, expiring it after ttl nanoseconds from
// now, or the backend's default TTL when ttl is 0 — the Go analogue of
// TTLMemoryCache.set's `ttl or self.default_ttl` fallback. If the
// cache is at capacity for a new key, the least-recently-used entry is
// evicted first, counted separately from TTL expiry.
func (c *TTLCache) Set(key string, value interface{}, ttl int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	life := c.defaultTTL
	if ttl > 0 {
		life = time.Duration(ttl)
	}
	expiresAt := time.Now().Add(life)

	if entry, ok := c.entries[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToBack(entry.elem)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	elem := c.order.PushBack(key)
	c.entries[key] = &ttlEntry{key: key, value: value, expiresAt: expiresAt, elem: elem}
}

func (c *TTLCache) evictOldestLocked() {
	front := c.order.Front()
	if front == nil {
		return
	}
	key := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
	c.stats.recordEvicted()
}

func (c *TTLCache) removeLocked(entry *ttlEntry) {
	c.order.Remove(entry.elem)
	delete(c.entries, entry.key)
}

func (c *TTLCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeLocked(entry)
	return true
}

func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*ttlEntry)
	c.order = list.New()
}

// Keys returns every unexpired key. An entry past its own expiry is
// skipped without being removed; it's reaped on its next Get or Set.
func (c *TTLCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	keys := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func (c *TTLCache) DeletePattern(pattern string) int {
	return DeletePattern(c, pattern)
}

func (c *TTLCache) Stats() Stats {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()
	return c.stats.snapshot(size, c.maxSize)
}
