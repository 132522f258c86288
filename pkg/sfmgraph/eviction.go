package sfmgraph

import "github.com/google/uuid"

// EvictableGraph is the explicit interface the eviction subsystem
// depends on, the Go analogue of memory_management.py's
// EvictableGraph Protocol (duck typing resolved to a real interface
// per the REDESIGN FLAGS). *Engine satisfies it.
type EvictableGraph interface {
	AllNodeIDs() []uuid.UUID
	RemoveNodeFromMemory(id uuid.UUID) bool
	NodeSizeEstimate(id uuid.UUID) int
}

// EvictionStrategy is a pluggable selector of candidate ids to evict.
// Strategies never mutate the graph; they only choose.
type EvictionStrategy interface {
	Name() string
	SelectForEviction(graph EvictableGraph, targetCount int) []uuid.UUID
}

// EvictionPolicy names one of the three built-in strategies.
type EvictionPolicy string

const (
	EvictionLRU         EvictionPolicy = "lru"
	EvictionLFU         EvictionPolicy = "lfu"
	EvictionOldestFirst EvictionPolicy = "oldest_first"
)

type lruStrategy struct{ tracker *AccessTracker }

func (s *lruStrategy) Name() string { return string(EvictionLRU) }

// SelectForEviction asks the tracker for 2x candidates (some may have
// already left the graph) and filters to ids still present, grounded
// on memory_management.py's LRUEvictionStrategy.
func (s *lruStrategy) SelectForEviction(graph EvictableGraph, targetCount int) []uuid.UUID {
	candidates := s.tracker.LRUCandidates(targetCount * 2)
	return filterPresent(graph, candidates, targetCount)
}

type lfuStrategy struct{ tracker *AccessTracker }

func (s *lfuStrategy) Name() string { return string(EvictionLFU) }

func (s *lfuStrategy) SelectForEviction(graph EvictableGraph, targetCount int) []uuid.UUID {
	candidates := s.tracker.LFUCandidates(targetCount * 2)
	return filterPresent(graph, candidates, targetCount)
}

type oldestFirstStrategy struct{ tracker *AccessTracker }

func (s *oldestFirstStrategy) Name() string { return string(EvictionOldestFirst) }

// SelectForEviction sorts every present id by LastSeen ascending
// (never-seen ids sort first, treated as time zero), grounded on
// memory_management.py's OldestFirstEvictionStrategy.
func (s *oldestFirstStrategy) SelectForEviction(graph EvictableGraph, targetCount int) []uuid.UUID {
	all := graph.AllNodeIDs()
	times := make(map[uuid.UUID]int64, len(all))
	for _, id := range all {
		times[id] = s.tracker.AccessTime(id).UnixNano()
	}
	sortByAccessTime(all, times)
	if targetCount < len(all) {
		all = all[:targetCount]
	}
	return all
}

func sortByAccessTime(ids []uuid.UUID, times map[uuid.UUID]int64) {
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && times[ids[j-1]] > times[ids[j]] {
			ids[j-1], ids[j] = ids[j], ids[j-1]
			j--
		}
	}
}

func filterPresent(graph EvictableGraph, candidates []uuid.UUID, targetCount int) []uuid.UUID {
	present := make(map[uuid.UUID]struct{})
	for _, id := range graph.AllNodeIDs() {
		present[id] = struct{}{}
	}
	out := make([]uuid.UUID, 0, targetCount)
	for _, id := range candidates {
		if _, ok := present[id]; ok {
			out = append(out, id)
			if len(out) == targetCount {
				break
			}
		}
	}
	return out
}
