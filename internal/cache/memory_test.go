package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheLRUEviction(t *testing.T) {
	c, err := NewMemoryCache("recent", 2)
	require.NoError(t, err)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Get("a") // touch a, making b the least-recently-used
	c.Set("c", 3, 0)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted as least-recently-used")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evicted)
}

// TestMemoryCacheS1LRUOverflow runs the literal S1 scenario: max_size=3,
// set a/b/c, touch a, set d. Expected final keys {a,c,d}, evicted=1,
// get(b) is a miss.
func TestMemoryCacheS1LRUOverflow(t *testing.T) {
	c, err := NewMemoryCache("s1", 3)
	require.NoError(t, err)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)
	c.Get("a")
	c.Set("d", 4, 0)

	keys := c.Keys()
	assert.ElementsMatch(t, []string{"a", "c", "d"}, keys)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evicted)

	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestMemoryCacheHitMissStats(t *testing.T) {
	c, err := NewMemoryCache("recent", 10)
	require.NoError(t, err)

	c.Set("k", "v", 0)
	_, ok := c.Get("k")
	assert.True(t, ok)
	_, ok = c.Get("missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate(), 0.0001)
}
