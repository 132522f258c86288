package sfmgraph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAccessTrackerRecordAndCandidates(t *testing.T) {
	tracker := NewAccessTracker(10)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	tracker.Record(a)
	tracker.Record(b)
	tracker.Record(c)
	tracker.Record(b) // b accessed twice, most recent

	lru := tracker.LRUCandidates(3)
	assert.Equal(t, []uuid.UUID{a, c, b}, lru, "LRU order is oldest access first")

	assert.Equal(t, int64(1), tracker.AccessCount(a))
	assert.Equal(t, int64(2), tracker.AccessCount(b))
}

func TestAccessTrackerLFUTiesBrokenByInsertionOrder(t *testing.T) {
	tracker := NewAccessTracker(10)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	tracker.Record(a)
	tracker.Record(b)
	tracker.Record(c)
	tracker.Record(a) // a now has freq 2, b and c still at freq 1

	lfu := tracker.LFUCandidates(2)
	assert.Equal(t, []uuid.UUID{b, c}, lfu)
}

func TestAccessTrackerForget(t *testing.T) {
	tracker := NewAccessTracker(10)
	id := uuid.New()
	tracker.Record(id)
	tracker.Forget(id)

	assert.True(t, tracker.AccessTime(id).IsZero())
	assert.Equal(t, int64(0), tracker.AccessCount(id))
}

func TestAccessTrackerBoundedOrder(t *testing.T) {
	tracker := NewAccessTracker(2)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	tracker.Record(a)
	tracker.Record(b)
	tracker.Record(c) // should evict a, the oldest

	assert.True(t, tracker.AccessTime(a).IsZero())
	assert.False(t, tracker.AccessTime(b).IsZero())
	assert.False(t, tracker.AccessTime(c).IsZero())
}
