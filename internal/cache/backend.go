// Package cache implements the bounded, multi-level cache stack that
// backs the graph engine's query cache and adjacency cache: named
// backends exposing a uniform get/set/delete/pattern-delete contract,
// stacked into levels with read-through promotion and write-through
// fanout.
package cache

import (
	"strings"
	"sync"
)

// Stats captures hit/miss/eviction counters for one backend, the Go
// analogue of advanced_caching.py's CacheStats.
type Stats struct {
	Hits             int64
	Misses           int64
	Expired          int64
	Evicted          int64
	TotalOperations  int64
	Size             int
	MaxSize          int
}

// HitRate returns the fraction of operations that were hits, 0 if none
// have been recorded.
func (s Stats) HitRate() float64 {
	if s.TotalOperations == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalOperations)
}

type statCounters struct {
	mu              sync.Mutex
	hits            int64
	misses          int64
	expired         int64
	evicted         int64
	totalOperations int64
}

func (s *statCounters) recordHit() {
	s.mu.Lock()
	s.hits++
	s.totalOperations++
	s.mu.Unlock()
}

func (s *statCounters) recordMiss() {
	s.mu.Lock()
	s.misses++
	s.totalOperations++
	s.mu.Unlock()
}

func (s *statCounters) recordExpired() {
	s.mu.Lock()
	s.expired++
	s.mu.Unlock()
}

func (s *statCounters) recordEvicted() {
	s.mu.Lock()
	s.evicted++
	s.mu.Unlock()
}

func (s *statCounters) snapshot(size, maxSize int) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Hits:            s.hits,
		Misses:          s.misses,
		Expired:         s.expired,
		Evicted:         s.evicted,
		TotalOperations: s.totalOperations,
		Size:            size,
		MaxSize:         maxSize,
	}
}

// Backend is one level of the cache stack: a named key/value store
// with an optional per-entry TTL and a pattern-based bulk delete.
type Backend interface {
	Name() string
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl int64)
	Delete(key string) bool
	Clear()
	Keys() []string
	Stats() Stats
}

// DeletePattern removes every key in backend matching pattern (a
// literal string, or a single-wildcard "prefix*suffix") and returns
// the count removed. Shared by every Backend implementation and by
// MultiLevelCache, grounded on CacheBackend.delete_pattern.
func DeletePattern(backend Backend, pattern string) int {
	deleted := 0
	for _, key := range backend.Keys() {
		if matchesPattern(key, pattern) {
			if backend.Delete(key) {
				deleted++
			}
		}
	}
	return deleted
}

// matchesPattern supports an exact match or a single "*" wildcard
// ("prefix*suffix"); richer globbing is out of scope, mirroring
// CacheBackend._matches_pattern.
func matchesPattern(key, pattern string) bool {
	if strings.Contains(pattern, "*") {
		parts := strings.SplitN(pattern, "*", 2)
		if len(parts) == 2 && strings.Count(pattern, "*") == 1 {
			return strings.HasPrefix(key, parts[0]) && strings.HasSuffix(key, parts[1])
		}
		return false
	}
	return key == pattern
}
