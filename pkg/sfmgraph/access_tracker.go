package sfmgraph

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AccessTracker records recency and frequency for every node id that
// has been touched, grounded on memory_management.py's
// NodeAccessTracker (C5). It is the only subsystem that observes
// "access", so it is the single source of truth eviction strategies
// consult.
type AccessTracker struct {
	mu sync.Mutex

	lastSeen map[uuid.UUID]time.Time
	freq     map[uuid.UUID]int64

	order    *list.List
	elements map[uuid.UUID]*list.Element

	cap int
}

// NewAccessTracker creates a tracker bounding its recency order to cap
// entries (default 10,000 per spec.md §6).
func NewAccessTracker(cap int) *AccessTracker {
	if cap <= 0 {
		cap = 10000
	}
	return &AccessTracker{
		lastSeen: make(map[uuid.UUID]time.Time),
		freq:     make(map[uuid.UUID]int64),
		order:    list.New(),
		elements: make(map[uuid.UUID]*list.Element),
		cap:      cap,
	}
}

// Record marks id as accessed now: updates LastSeen, increments Freq,
// and moves id to the tail of the recency order. If the order exceeds
// its cap, the head entry is dropped from all three tables.
func (t *AccessTracker) Record(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.lastSeen[id] = now
	t.freq[id]++

	if elem, ok := t.elements[id]; ok {
		t.order.Remove(elem)
	}
	t.elements[id] = t.order.PushBack(id)

	if t.order.Len() > t.cap {
		t.evictOldestLocked()
	}
}

func (t *AccessTracker) evictOldestLocked() {
	front := t.order.Front()
	if front == nil {
		return
	}
	oldest := front.Value.(uuid.UUID)
	t.order.Remove(front)
	delete(t.elements, oldest)
	delete(t.lastSeen, oldest)
	delete(t.freq, oldest)
}

// LRUCandidates returns the count least-recently-used ids, oldest
// first.
func (t *AccessTracker) LRUCandidates(count int) []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]uuid.UUID, 0, count)
	for e := t.order.Front(); e != nil && len(out) < count; e = e.Next() {
		out = append(out, e.Value.(uuid.UUID))
	}
	return out
}

// LFUCandidates returns the count least-frequently-used ids, breaking
// ties by insertion (recency) order — the Go analogue of Python's
// stable sort over access counts.
func (t *AccessTracker) LFUCandidates(count int) []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]freqEntry, 0, len(t.freq))
	for e := t.order.Front(); e != nil; e = e.Next() {
		id := e.Value.(uuid.UUID)
		entries = append(entries, freqEntry{id: id, freq: t.freq[id]})
	}

	sortByFreqStable(entries)

	n := count
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		out[i] = entries[i].id
	}
	return out
}

type freqEntry struct {
	id   uuid.UUID
	freq int64
}

// sortByFreqStable sorts entries by ascending freq, preserving the
// relative order of equal-freq entries (a stable insertion sort is
// adequate at eviction-batch scale).
func sortByFreqStable(entries []freqEntry) {
	for i := 1; i < len(entries); i++ {
		j := i
		for j > 0 && entries[j-1].freq > entries[j].freq {
			entries[j-1], entries[j] = entries[j], entries[j-1]
			j--
		}
	}
}

// AccessTime returns the last recorded access time for id, or the
// zero time if it has never been seen.
func (t *AccessTracker) AccessTime(id uuid.UUID) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastSeen[id]
}

// AccessCount returns the number of times id has been recorded.
func (t *AccessTracker) AccessCount(id uuid.UUID) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freq[id]
}

// Forget removes id from every table, used after a successful
// eviction.
func (t *AccessTracker) Forget(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if elem, ok := t.elements[id]; ok {
		t.order.Remove(elem)
		delete(t.elements, id)
	}
	delete(t.lastSeen, id)
	delete(t.freq, id)
}
