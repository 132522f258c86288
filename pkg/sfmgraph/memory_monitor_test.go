package sfmgraph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMemoryMonitorEvictNoOpWithoutPressure(t *testing.T) {
	tracker := NewAccessTracker(100)
	cfg := DefaultMemoryMonitorConfig()
	cfg.MemoryLimitMB = 1e9 // effectively unreachable, should_evict stays false
	monitor := NewMemoryMonitor(cfg, tracker, nil)

	graph := newFakeGraph()
	evicted := monitor.Evict(graph, false)
	assert.Equal(t, 0, evicted)
}

// TestMemoryMonitorEvictForced covers P8's monotonicity setup: a
// forced eviction with batch_size=2 over a 5-node graph removes
// exactly 2 ids, all present beforehand.
func TestMemoryMonitorEvictForced(t *testing.T) {
	tracker := NewAccessTracker(100)

	cfg := DefaultMemoryMonitorConfig()
	cfg.EvictionBatchSize = 2
	monitor := NewMemoryMonitor(cfg, tracker, nil)

	g := newFakeGraph()
	for i := 0; i < 5; i++ {
		id := uuid.New()
		g.present[id] = true
		tracker.Record(id)
	}

	evicted := monitor.Evict(g, true)
	assert.Equal(t, 2, evicted)
	assert.Len(t, g.removed, 2)

	stats := monitor.Stats()
	assert.Equal(t, int64(1), stats.EvictionCount)
	assert.Equal(t, int64(2), stats.TotalNodesEvicted)
	assert.Equal(t, int64(2), stats.TotalBytesEvicted, "fakeEvictableGraph reports a 1-byte estimate per node")
}
