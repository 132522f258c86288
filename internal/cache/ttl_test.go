package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache("general", 10, 20*time.Millisecond)
	c.Set("k", "v", 0)

	v, ok := c.Get("k")
	require := assert.New(t)
	require.True(ok)
	require.Equal("v", v)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "entry should have expired")
}

// TestTTLCacheS2Expiry runs the literal S2 scenario: default TTL
// 100ms, set k/v, sleep 200ms, get(k) is absent, misses=1, expired>=1.
func TestTTLCacheS2Expiry(t *testing.T) {
	c := NewTTLCache("s2", 10, 100*time.Millisecond)
	c.Set("k", "v", 0)

	time.Sleep(200 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.GreaterOrEqual(t, stats.Expired, int64(1))
}

func TestTTLCacheCapacity(t *testing.T) {
	c := NewTTLCache("general", 2, time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	assert.LessOrEqual(t, len(c.Keys()), 2)
}

// TestTTLCacheCapacityEvictionDoesNotCountAsExpired covers the P6
// distinction the expired counter depends on: a capacity eviction
// (no entry has actually reached its ttl) must bump Evicted, never
// Expired.
func TestTTLCacheCapacityEvictionDoesNotCountAsExpired(t *testing.T) {
	c := NewTTLCache("general", 2, time.Minute)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0) // evicts "a" on capacity, well before its ttl

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evicted)
	assert.Equal(t, int64(0), stats.Expired)
}

// TestTTLCacheSetHonorsPerCallTTLOverride covers spec.md §4.2's
// override contract: a Set with a shorter-than-default ttl expires on
// its own schedule, not the backend's default.
func TestTTLCacheSetHonorsPerCallTTLOverride(t *testing.T) {
	c := NewTTLCache("general", 10, time.Hour)
	c.Set("k", "v", int64(20*time.Millisecond))

	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "a shorter per-call ttl must override the backend default")
}
