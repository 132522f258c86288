package sfmgraph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeEvictableGraph struct {
	present map[uuid.UUID]bool
	removed []uuid.UUID
}

func newFakeGraph(ids ...uuid.UUID) *fakeEvictableGraph {
	present := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	return &fakeEvictableGraph{present: present}
}

func (g *fakeEvictableGraph) AllNodeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.present))
	for id, ok := range g.present {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (g *fakeEvictableGraph) RemoveNodeFromMemory(id uuid.UUID) bool {
	if !g.present[id] {
		return false
	}
	delete(g.present, id)
	g.removed = append(g.removed, id)
	return true
}

func (g *fakeEvictableGraph) NodeSizeEstimate(id uuid.UUID) int { return 1 }

func TestLRUStrategySelectsOldestPresent(t *testing.T) {
	tracker := NewAccessTracker(100)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	tracker.Record(a)
	tracker.Record(b)
	tracker.Record(c)

	graph := newFakeGraph(a, b, c)
	strategy := &lruStrategy{tracker: tracker}

	selected := strategy.SelectForEviction(graph, 2)
	assert.Equal(t, []uuid.UUID{a, b}, selected)
}

func TestLRUStrategySkipsAbsentIds(t *testing.T) {
	tracker := NewAccessTracker(100)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	tracker.Record(a)
	tracker.Record(b)
	tracker.Record(c)

	graph := newFakeGraph(b, c) // a has already left the graph
	strategy := &lruStrategy{tracker: tracker}

	selected := strategy.SelectForEviction(graph, 2)
	assert.Equal(t, []uuid.UUID{b, c}, selected)
}

func TestOldestFirstStrategyNeverSeenSortsFirst(t *testing.T) {
	tracker := NewAccessTracker(100)
	seen, unseen := uuid.New(), uuid.New()
	tracker.Record(seen)

	graph := newFakeGraph(seen, unseen)
	strategy := &oldestFirstStrategy{tracker: tracker}

	selected := strategy.SelectForEviction(graph, 2)
	assert.Equal(t, unseen, selected[0], "a never-seen id treated as time zero sorts first")
}
