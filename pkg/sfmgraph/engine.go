package sfmgraph

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/google/uuid"

	"github.com/garrickdabbs/sfm-graph-engine/internal/cache"
	"github.com/garrickdabbs/sfm-graph-engine/internal/observability"
)

// RelationshipValidator is a pluggable hook that may reject a
// relationship based on its kind and the concrete types of its
// endpoints. A nil validator accepts everything.
type RelationshipValidator func(kind RelationshipKind, source, target Node) error

// NodeLoader resolves a node id the engine doesn't hold, the Go
// analogue of the original's lazy-loading callback.
type NodeLoader func(id uuid.UUID) (Node, error)

// Engine is the in-memory, typed, multi-relational graph store (C9):
// typed buckets + a central id index, a relationship store with a
// bounded adjacency cache, and the supporting memory-management and
// query-cache subsystems. Grounded on graph.py's SFMGraph.
//
// Concurrency follows spec.md §5 option (i): a single RWMutex guards
// buckets, the id index, and the relationship store/adjacency cache.
// Public methods never call another public method of the same
// receiver while holding this lock.
type Engine struct {
	mu sync.RWMutex

	registry *NodeTypeRegistry
	buckets  map[bucketName]map[uuid.UUID]Node
	idIndex  map[uuid.UUID]Node

	rels         map[uuid.UUID]*Relationship
	relsBySource map[uuid.UUID][]uuid.UUID
	relsByTarget map[uuid.UUID][]uuid.UUID
	adjCache     *lru.Cache[uuid.UUID, []*Relationship]

	validator RelationshipValidator

	loaderMu     sync.RWMutex
	loader       NodeLoader
	lazyEnabled  bool

	tracker *AccessTracker
	monitor *MemoryMonitor

	queryCache *cache.QueryCache
	collector  *observability.Collector
	logger     observability.Logger
}

// EngineConfig bundles the construction-time dependencies and
// parameters for a new Engine.
type EngineConfig struct {
	AdjacencyCacheCap int
	AccessTrackerCap  int
	Memory            MemoryMonitorConfig
	QueryCache        cache.QueryCacheConfig
	Validator         RelationshipValidator
	Logger            observability.Logger
	Metrics           observability.MetricsClient
	Collector         *observability.Collector
}

// DefaultEngineConfig mirrors spec.md §6's configuration defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AdjacencyCacheCap: 1000,
		AccessTrackerCap:  10000,
		Memory:            DefaultMemoryMonitorConfig(),
		QueryCache:        cache.DefaultQueryCacheConfig(),
	}
}

// NewEngine builds an empty Engine with every typed bucket
// initialized and the query-cache invalidation rules wired per
// spec.md §6's four built-in events.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.AdjacencyCacheCap <= 0 {
		cfg.AdjacencyCacheCap = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NewNoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewNoopMetricsClient()
	}
	if cfg.Collector == nil {
		cfg.Collector = observability.NewCollector(1000, cfg.Metrics, cfg.Logger)
	}

	registry := NewNodeTypeRegistry()
	buckets := make(map[bucketName]map[uuid.UUID]Node, len(registry.BucketNames()))
	for _, name := range registry.BucketNames() {
		buckets[name] = make(map[uuid.UUID]Node)
	}

	adjCache, err := lru.New[uuid.UUID, []*Relationship](cfg.AdjacencyCacheCap)
	if err != nil {
		return nil, fmt.Errorf("building adjacency cache: %w", err)
	}

	qc, err := cache.NewQueryCache(cfg.QueryCache, cfg.Logger, cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("building query cache: %w", err)
	}
	installInvalidationRules(qc)

	tracker := NewAccessTracker(cfg.AccessTrackerCap)

	e := &Engine{
		registry:     registry,
		buckets:      buckets,
		idIndex:      make(map[uuid.UUID]Node),
		rels:         make(map[uuid.UUID]*Relationship),
		relsBySource: make(map[uuid.UUID][]uuid.UUID),
		relsByTarget: make(map[uuid.UUID][]uuid.UUID),
		adjCache:     adjCache,
		validator:    cfg.Validator,
		tracker:      tracker,
		monitor:      NewMemoryMonitor(cfg.Memory, tracker, cfg.Logger),
		queryCache:   qc,
		collector:    cfg.Collector,
		logger:       cfg.Logger.WithPrefix("engine"),
	}
	return e, nil
}

// installInvalidationRules wires the four built-in events named in
// spec.md §6.
func installInvalidationRules(qc *cache.QueryCache) {
	nodeTouched := []string{
		"get_node_relationships:{node_id}:*",
		"get_nodes_by_type:*",
		"count_nodes:*",
	}
	relationshipTouched := []string{
		"get_node_relationships:*",
		"find_paths:*",
		"analyze_network:*",
	}
	qc.RegisterInvalidationRule("node_added", nodeTouched)
	qc.RegisterInvalidationRule("node_removed", nodeTouched)
	qc.RegisterInvalidationRule("relationship_added", relationshipTouched)
	qc.RegisterInvalidationRule("relationship_removed", relationshipTouched)
}

// AddNode inserts n into its registry-assigned bucket and the central
// index. Fails with *ErrUnsupportedNodeType if the registry rejects
// the node's concrete type.
func (e *Engine) AddNode(n Node) (Node, error) {
	start := time.Now()
	bucket, err := e.registry.BucketFor(n)
	if err != nil {
		e.collector.RecordOperation("add_node", time.Since(start), false, nil)
		return nil, err
	}

	e.mu.Lock()
	id := n.NodeID()
	e.buckets[bucket][id] = n
	e.idIndex[id] = n
	e.mu.Unlock()

	e.tracker.Record(id)
	e.queryCache.InvalidateOnEvent("node_added", map[string]string{"node_id": id.String()})
	e.monitor.Evict(e, false)

	e.collector.RecordOperation("add_node", time.Since(start), true, nil)
	return n, nil
}

// AddRelationship inserts r into the relationship store, flushes the
// adjacency cache for both endpoints, and invalidates matching query
// cache entries. If a RelationshipValidator is configured, it may
// reject the pairing with *ErrInvalidRelationshipContext-wrapped error.
func (e *Engine) AddRelationship(r *Relationship) (*Relationship, error) {
	start := time.Now()

	if e.validator != nil {
		source, sourceOK := e.GetNode(r.SourceID)
		target, targetOK := e.GetNode(r.TargetID)
		if !sourceOK || !targetOK {
			err := fmt.Errorf("%w: endpoint not resolvable", ErrInvalidRelationshipContext)
			e.collector.RecordOperation("add_relationship", time.Since(start), false, nil)
			return nil, err
		}
		if err := e.validator(r.Kind, source, target); err != nil {
			e.collector.RecordOperation("add_relationship", time.Since(start), false, nil)
			return nil, fmt.Errorf("%w: %v", ErrInvalidRelationshipContext, err)
		}
	}

	e.mu.Lock()
	e.rels[r.ID] = r
	e.relsBySource[r.SourceID] = append(e.relsBySource[r.SourceID], r.ID)
	e.relsByTarget[r.TargetID] = append(e.relsByTarget[r.TargetID], r.ID)
	e.adjCache.Remove(r.SourceID)
	e.adjCache.Remove(r.TargetID)
	e.mu.Unlock()

	e.queryCache.InvalidateOnEvent("relationship_added", map[string]string{
		"source_id": r.SourceID.String(),
		"target_id": r.TargetID.String(),
	})

	e.collector.RecordOperation("add_relationship", time.Since(start), true, nil)
	return r, nil
}

// GetNode returns the node for id, or (nil, false) if absent. A hit
// records access. On a miss with lazy loading enabled, the configured
// NodeLoader is invoked; success adds and returns the node, failure is
// logged and returns absent.
func (e *Engine) GetNode(id uuid.UUID) (Node, bool) {
	e.mu.RLock()
	n, ok := e.idIndex[id]
	e.mu.RUnlock()

	if ok {
		e.tracker.Record(id)
		return n, true
	}

	e.loaderMu.RLock()
	loader, enabled := e.loader, e.lazyEnabled
	e.loaderMu.RUnlock()
	if !enabled || loader == nil {
		return nil, false
	}

	loaded, err := loader(id)
	if err != nil {
		e.logger.Warn("lazy load failed", map[string]interface{}{"node_id": id.String(), "error": err.Error()})
		return nil, false
	}
	if _, err := e.AddNode(loaded); err != nil {
		e.logger.Warn("lazy-loaded node rejected by registry", map[string]interface{}{"node_id": id.String(), "error": err.Error()})
		return nil, false
	}
	return loaded, true
}

// EnableLazyLoading installs loader and turns lazy loading on.
func (e *Engine) EnableLazyLoading(loader NodeLoader) {
	e.loaderMu.Lock()
	defer e.loaderMu.Unlock()
	e.loader = loader
	e.lazyEnabled = true
}

// DisableLazyLoading turns lazy loading off without discarding the
// configured loader.
func (e *Engine) DisableLazyLoading() {
	e.loaderMu.Lock()
	defer e.loaderMu.Unlock()
	e.lazyEnabled = false
}

// RelationshipsOf returns a stable snapshot of every relationship
// touching id, consulting the query cache first, then the adjacency
// cache, falling back to a scan of the relationship store which then
// populates both caches.
func (e *Engine) RelationshipsOf(id uuid.UUID) []*Relationship {
	cacheKey := []interface{}{id.String()}

	if cached, ok := e.queryCache.GetCachedResult("get_node_relationships", cacheKey, nil); ok {
		if rels, ok := cached.([]*Relationship); ok {
			return rels
		}
	}

	e.mu.RLock()
	if rels, ok := e.adjCache.Get(id); ok {
		e.mu.RUnlock()
		e.queryCache.CacheResult("get_node_relationships", rels, 0, cacheKey, nil)
		return rels
	}
	e.mu.RUnlock()

	e.mu.Lock()
	sourceIDs := e.relsBySource[id]
	targetIDs := e.relsByTarget[id]
	rels := make([]*Relationship, 0, len(sourceIDs)+len(targetIDs))
	for _, rid := range sourceIDs {
		rels = append(rels, e.rels[rid])
	}
	for _, rid := range targetIDs {
		rels = append(rels, e.rels[rid])
	}
	e.adjCache.Add(id, rels)
	e.mu.Unlock()

	e.queryCache.CacheResult("get_node_relationships", rels, 0, cacheKey, nil)
	return rels
}

// RemoveFromMemory drops id from its bucket and the central index,
// invalidating the "node_removed" event. Returns false if id was not
// present.
func (e *Engine) RemoveFromMemory(id uuid.UUID) bool {
	e.mu.Lock()
	n, ok := e.idIndex[id]
	if !ok {
		e.mu.Unlock()
		return false
	}
	bucket, err := e.registry.BucketFor(n)
	if err == nil {
		delete(e.buckets[bucket], id)
	}
	delete(e.idIndex, id)
	e.adjCache.Remove(id)
	e.mu.Unlock()

	e.queryCache.InvalidateOnEvent("node_removed", map[string]string{"node_id": id.String()})
	return true
}

// Clear empties every bucket, the id index, the relationship store,
// and the adjacency cache.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name := range e.buckets {
		e.buckets[name] = make(map[uuid.UUID]Node)
	}
	e.idIndex = make(map[uuid.UUID]Node)
	e.rels = make(map[uuid.UUID]*Relationship)
	e.relsBySource = make(map[uuid.UUID][]uuid.UUID)
	e.relsByTarget = make(map[uuid.UUID][]uuid.UUID)
	e.adjCache.Purge()
}

// Iterate yields every node exactly once, in registry bucket order.
func (e *Engine) Iterate() []Node {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Node, 0, len(e.idIndex))
	for _, name := range e.registry.BucketNames() {
		for _, n := range e.buckets[name] {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the size of the central id index.
func (e *Engine) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.idIndex)
}

// --- EvictableGraph -------------------------------------------------

// AllNodeIDs implements EvictableGraph.
func (e *Engine) AllNodeIDs() []uuid.UUID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(e.idIndex))
	for id := range e.idIndex {
		ids = append(ids, id)
	}
	return ids
}

// RemoveNodeFromMemory implements EvictableGraph by delegating to
// RemoveFromMemory.
func (e *Engine) RemoveNodeFromMemory(id uuid.UUID) bool {
	return e.RemoveFromMemory(id)
}

// NodeSizeEstimate implements EvictableGraph, delegating to the
// node's own ApproxSizeInBytes.
func (e *Engine) NodeSizeEstimate(id uuid.UUID) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n, ok := e.idIndex[id]
	if !ok {
		return 0
	}
	return n.ApproxSizeInBytes()
}

// --- Memory controls --------------------------------------------------

// SetMemoryLimit forwards to the memory monitor.
func (e *Engine) SetMemoryLimit(limitMB float64) {
	e.monitor.SetMemoryLimit(limitMB)
}

// GetMemoryUsage samples current process/system memory via the
// memory monitor.
func (e *Engine) GetMemoryUsage() MemoryUsage {
	return e.monitor.CheckMemoryUsage()
}

// ForceMemoryCleanup runs an eviction pass regardless of
// should_evict, returning the number of nodes evicted.
func (e *Engine) ForceMemoryCleanup() int {
	return e.monitor.Evict(e, true)
}

// SetEvictionStrategy switches the memory monitor's active strategy.
func (e *Engine) SetEvictionStrategy(policy EvictionPolicy) {
	e.monitor.SetStrategy(policy)
}

// GetMemoryStats returns the memory monitor's eviction history.
func (e *Engine) GetMemoryStats() EvictionStats {
	return e.monitor.Stats()
}

// --- Cache controls ---------------------------------------------------

// ClearAllCaches empties the query cache and the adjacency cache.
func (e *Engine) ClearAllCaches() {
	e.queryCache.Clear()
	e.mu.Lock()
	e.adjCache.Purge()
	e.mu.Unlock()
}

// GetCacheStats returns the query cache's per-level statistics.
func (e *Engine) GetCacheStats() map[string]interface{} {
	return e.queryCache.Stats()
}
