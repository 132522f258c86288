package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garrickdabbs/sfm-graph-engine/internal/observability"
)

func newTestQueryCache(t *testing.T) *QueryCache {
	t.Helper()
	qc, err := NewQueryCache(DefaultQueryCacheConfig(), observability.NewNoopLogger(), observability.NewNoopMetricsClient())
	require.NoError(t, err)
	return qc
}

// TestQueryCachePatternInvalidation covers P7: registering
// evt -> ["op:{id}:*"], caching three entries, then invalidating with
// {id: "A"} removes exactly the two "op:A:*" entries.
func TestQueryCachePatternInvalidation(t *testing.T) {
	qc := newTestQueryCache(t)
	qc.RegisterInvalidationRule("evt", []string{"op:{id}:*"})

	qc.CacheResult("op", "x-result", 0, []interface{}{"A", "x"}, nil)
	qc.CacheResult("op", "y-result", 0, []interface{}{"A", "y"}, nil)
	qc.CacheResult("op", "z-result", 0, []interface{}{"B", "x"}, nil)

	// Also write the same keys directly through the backing multi-level
	// cache; the default generator yields "op:A:x" for args ("A", "x"),
	// so these writes land on the entries cached above.
	qc.backing.Set("op:A:x", "x-result", 0)
	qc.backing.Set("op:A:y", "y-result", 0)
	qc.backing.Set("op:B:x", "z-result", 0)

	removed := qc.InvalidateOnEvent("evt", map[string]string{"id": "A"})
	assert.Equal(t, 2, removed)

	_, ok := qc.backing.Get("op:B:x")
	assert.True(t, ok)
	_, ok = qc.backing.Get("op:A:x")
	assert.False(t, ok)
}

// TestQueryCacheInvalidationSkipsMissingKey covers the
// InvalidationTemplateFailure contract: a pattern referencing an
// absent context key is skipped, not aborting the whole event.
func TestQueryCacheInvalidationSkipsMissingKey(t *testing.T) {
	qc := newTestQueryCache(t)
	qc.RegisterInvalidationRule("evt", []string{"op:{missing}:*", "op:known:*"})
	qc.backing.Set("op:known:x", "v", 0)

	// op:known:x was written to both levels, and the count is summed
	// across levels.
	removed := qc.InvalidateOnEvent("evt", map[string]string{"other": "value"})
	assert.Equal(t, 2, removed)
}

// TestQueryCacheS4Invalidation runs the literal S4 scenario: register
// node_added -> ["get_node_relationships:{node_id}:*"], cache
// get_node_relationships:U1:p1 and get_node_relationships:U2:p1, fire
// invalidate_on_event("node_added", {node_id:"U1"}). Expect 1 removed,
// U1 gone, U2 intact.
func TestQueryCacheS4Invalidation(t *testing.T) {
	qc := newTestQueryCache(t)
	qc.RegisterInvalidationRule("node_added", []string{"get_node_relationships:{node_id}:*"})

	qc.backing.Set("get_node_relationships:U1:p1", "r1", 0)
	qc.backing.Set("get_node_relationships:U2:p1", "r2", 0)

	removed := qc.InvalidateOnEvent("node_added", map[string]string{"node_id": "U1"})
	assert.Equal(t, 1, removed)

	_, ok := qc.backing.Get("get_node_relationships:U1:p1")
	assert.False(t, ok)
	_, ok = qc.backing.Get("get_node_relationships:U2:p1")
	assert.True(t, ok)
}

func TestQueryCacheGetSetRoundTrip(t *testing.T) {
	qc := newTestQueryCache(t)

	_, ok := qc.GetCachedResult("op", []interface{}{"x"}, nil)
	assert.False(t, ok)

	qc.CacheResult("op", 42, 0, []interface{}{"x"}, nil)
	value, ok := qc.GetCachedResult("op", []interface{}{"x"}, nil)
	assert.True(t, ok)
	assert.Equal(t, 42, value)
}
