package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/garrickdabbs/sfm-graph-engine/internal/observability"
)

// QueryCache is the graph engine's query-result cache: a two-level
// MultiLevelCache (a small fast recent-queries level, backed by a
// larger TTL level for everything else) plus event-driven invalidation
// rules and pluggable per-operation key generators. Grounded on
// advanced_caching.py's QueryCache.
type QueryCache struct {
	backing *MultiLevelCache

	mu                sync.RWMutex
	invalidationRules map[string][]string
	keyGenerators     map[string]KeyGenerator

	logger  observability.Logger
	metrics observability.MetricsClient
}

// QueryCacheConfig configures the two built-in levels.
type QueryCacheConfig struct {
	RecentQueriesMaxSize int
	GeneralQueriesMaxSize int
	GeneralQueriesTTL     time.Duration
}

// DefaultQueryCacheConfig mirrors the original's constructor defaults
// (1000-entry recent level, 10000-entry / 30-minute general level).
func DefaultQueryCacheConfig() QueryCacheConfig {
	return QueryCacheConfig{
		RecentQueriesMaxSize:  1000,
		GeneralQueriesMaxSize: 10000,
		GeneralQueriesTTL:     30 * time.Minute,
	}
}

// NewQueryCache builds the two-level query cache described by cfg.
func NewQueryCache(cfg QueryCacheConfig, logger observability.Logger, metrics observability.MetricsClient) (*QueryCache, error) {
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetricsClient()
	}

	backing := NewMultiLevelCache("query_cache")

	recent, err := NewMemoryCache("recent_queries", cfg.RecentQueriesMaxSize)
	if err != nil {
		return nil, err
	}
	backing.AddLevel(recent)
	backing.AddLevel(NewTTLCache("general_queries", cfg.GeneralQueriesMaxSize, cfg.GeneralQueriesTTL))

	return &QueryCache{
		backing:           backing,
		invalidationRules: make(map[string][]string),
		keyGenerators:     make(map[string]KeyGenerator),
		logger:            logger.WithPrefix("query-cache"),
		metrics:           metrics,
	}, nil
}

// RegisterInvalidationRule binds event to the set of cache-key
// patterns (which may contain "{placeholder}" tokens filled from the
// event's context) that should be deleted whenever the event fires.
func (q *QueryCache) RegisterInvalidationRule(event string, patterns []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.invalidationRules[event] = patterns
}

// RegisterKeyGenerator overrides the default key-generation scheme for
// a given operation name.
func (q *QueryCache) RegisterKeyGenerator(operation string, generator KeyGenerator) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.keyGenerators[operation] = generator
}

// GetCachedResult returns the cached result for operation(args,
// kwargs), if present.
func (q *QueryCache) GetCachedResult(operation string, args []interface{}, kwargs map[string]interface{}) (interface{}, bool) {
	key := q.generateCacheKey(operation, args, kwargs)
	start := time.Now()
	value, ok := q.backing.Get(key)
	q.metrics.RecordOperation("query_cache", "get", ok, time.Since(start).Seconds(), map[string]string{"operation": operation})
	return value, ok
}

// CacheResult stores result under the key generated for
// operation(args, kwargs). A ttl of 0 uses each level's own default.
func (q *QueryCache) CacheResult(operation string, result interface{}, ttl time.Duration, args []interface{}, kwargs map[string]interface{}) {
	key := q.generateCacheKey(operation, args, kwargs)
	q.backing.Set(key, result, int64(ttl))
}

// InvalidateOnEvent fires every invalidation rule registered for
// event, substituting context into each pattern's "{key}" placeholders.
// A pattern referencing a context key that's missing is skipped (with
// a warning logged) rather than aborting the whole invalidation, per
// invalidate_on_event's per-pattern KeyError handling.
func (q *QueryCache) InvalidateOnEvent(event string, context map[string]string) int {
	q.mu.RLock()
	patterns := q.invalidationRules[event]
	q.mu.RUnlock()

	total := 0
	for _, pattern := range patterns {
		formatted, ok := substituteTemplate(pattern, context)
		if !ok {
			q.logger.Warn("missing context key for invalidation pattern", map[string]interface{}{
				"event":   event,
				"pattern": pattern,
			})
			continue
		}
		total += q.backing.DeletePattern(formatted)
	}
	return total
}

// Clear empties every level of the backing cache.
func (q *QueryCache) Clear() {
	q.backing.Clear()
}

// Stats returns the backing multi-level cache's per-level stats plus
// rule/generator counts.
func (q *QueryCache) Stats() map[string]interface{} {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := map[string]interface{}{
		"levels":                q.backing.Stats(),
		"invalidation_rules":    len(q.invalidationRules),
		"registered_generators": len(q.keyGenerators),
	}
	return out
}

func (q *QueryCache) generateCacheKey(operation string, args []interface{}, kwargs map[string]interface{}) string {
	q.mu.RLock()
	generator, ok := q.keyGenerators[operation]
	q.mu.RUnlock()
	if ok {
		return generator(args, kwargs)
	}
	return GenerateDefaultKey(operation, args, kwargs)
}

// substituteTemplate replaces every "{name}" token in pattern with
// context["name"]. It returns ok=false if any referenced name is
// absent from context, the Go analogue of Python's str.format raising
// KeyError.
func substituteTemplate(pattern string, context map[string]string) (string, bool) {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		open := strings.IndexByte(pattern[i:], '{')
		if open == -1 {
			b.WriteString(pattern[i:])
			break
		}
		b.WriteString(pattern[i : i+open])
		rest := pattern[i+open+1:]
		close := strings.IndexByte(rest, '}')
		if close == -1 {
			b.WriteString(pattern[i+open:])
			break
		}
		name := rest[:close]
		value, ok := context[name]
		if !ok {
			return "", false
		}
		b.WriteString(value)
		i = i + open + 1 + close + 1
	}
	return b.String(), true
}
