package sfmgraph

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	gopsprocess "github.com/shirou/gopsutil/v4/process"

	"github.com/garrickdabbs/sfm-graph-engine/internal/observability"
)

// MemoryUsage is a point-in-time reading of process and system memory,
// grounded on memory_management.py's MemoryUsageStats.
type MemoryUsage struct {
	TotalMemoryMB     float64
	UsedMemoryMB      float64
	AvailableMemoryMB float64
	MemoryPercent     float64
	ProcessMemoryMB   float64
	Timestamp         time.Time
}

// IsOverLimit reports whether process memory usage exceeds limitMB.
func (u MemoryUsage) IsOverLimit(limitMB float64) bool {
	return u.ProcessMemoryMB > limitMB
}

// sampleMemoryUsage captures current process/system memory via
// gopsutil. If sampling fails, it returns zeros rather than an error —
// sampling is best-effort per spec.md §4.7.
func sampleMemoryUsage() MemoryUsage {
	usage := MemoryUsage{Timestamp: time.Now()}

	if vm, err := mem.VirtualMemory(); err == nil {
		usage.TotalMemoryMB = float64(vm.Total) / (1024 * 1024)
		usage.UsedMemoryMB = float64(vm.Used) / (1024 * 1024)
		usage.AvailableMemoryMB = float64(vm.Available) / (1024 * 1024)
		usage.MemoryPercent = vm.UsedPercent
	}

	if proc, err := gopsprocess.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil && info != nil {
			usage.ProcessMemoryMB = float64(info.RSS) / (1024 * 1024)
		}
	}

	return usage
}

// EvictionStats summarizes the monitor's eviction history, grounded on
// MemoryMonitor.get_eviction_stats.
type EvictionStats struct {
	EvictionCount     int64
	TotalNodesEvicted int64
	TotalBytesEvicted int64
	LastEvictionTime  time.Time
	CurrentStrategy   EvictionPolicy
	MemoryLimitMB     float64
	WarningThreshold  float64
	CriticalThreshold float64
	EvictionBatchSize int
}

// MemoryMonitor samples process memory and decides when eviction runs,
// delegating candidate selection to the current EvictionStrategy (C6).
// Grounded on memory_management.py's MemoryMonitor (C7).
type MemoryMonitor struct {
	mu sync.Mutex

	memoryLimitMB     float64
	warningThreshold  float64
	criticalThreshold float64
	evictionBatchSize int

	tracker    *AccessTracker
	strategies map[EvictionPolicy]EvictionStrategy
	current    EvictionPolicy

	evictionCount     int64
	lastEvictionTime  time.Time
	totalNodesEvicted int64
	totalBytesEvicted int64

	logger observability.Logger
}

// MemoryMonitorConfig configures a MemoryMonitor's thresholds.
type MemoryMonitorConfig struct {
	MemoryLimitMB     float64
	WarningThreshold  float64
	CriticalThreshold float64
	EvictionBatchSize int
}

// DefaultMemoryMonitorConfig mirrors spec.md §6's memory defaults.
func DefaultMemoryMonitorConfig() MemoryMonitorConfig {
	return MemoryMonitorConfig{
		MemoryLimitMB:     1000.0,
		WarningThreshold:  0.8,
		CriticalThreshold: 0.95,
		EvictionBatchSize: 100,
	}
}

// NewMemoryMonitor creates a monitor over the given AccessTracker
// (shared with the caller, which records accesses into it) and the
// three built-in eviction strategies, defaulting to LRU.
func NewMemoryMonitor(cfg MemoryMonitorConfig, tracker *AccessTracker, logger observability.Logger) *MemoryMonitor {
	if logger == nil {
		logger = observability.NewNoopLogger()
	}
	m := &MemoryMonitor{
		memoryLimitMB:     cfg.MemoryLimitMB,
		warningThreshold:  cfg.WarningThreshold,
		criticalThreshold: cfg.CriticalThreshold,
		evictionBatchSize: cfg.EvictionBatchSize,
		tracker:           tracker,
		current:           EvictionLRU,
		logger:            logger.WithPrefix("memory-monitor"),
	}
	m.strategies = map[EvictionPolicy]EvictionStrategy{
		EvictionLRU:         &lruStrategy{tracker: tracker},
		EvictionLFU:         &lfuStrategy{tracker: tracker},
		EvictionOldestFirst: &oldestFirstStrategy{tracker: tracker},
	}
	return m
}

// SetStrategy switches the active eviction policy.
func (m *MemoryMonitor) SetStrategy(policy EvictionPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.strategies[policy]; ok {
		m.current = policy
	}
}

// SetMemoryLimit updates the monitor's memory ceiling.
func (m *MemoryMonitor) SetMemoryLimit(limitMB float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memoryLimitMB = limitMB
}

// CheckMemoryUsage samples current process/system memory.
func (m *MemoryMonitor) CheckMemoryUsage() MemoryUsage {
	return sampleMemoryUsage()
}

// ShouldEvict reports whether process memory usage exceeds
// limit*warningThreshold for the given (or freshly sampled) usage.
func (m *MemoryMonitor) ShouldEvict(usage *MemoryUsage) bool {
	m.mu.Lock()
	limit, warn := m.memoryLimitMB, m.warningThreshold
	m.mu.Unlock()

	var u MemoryUsage
	if usage != nil {
		u = *usage
	} else {
		u = sampleMemoryUsage()
	}
	return u.IsOverLimit(limit * warn)
}

// Evict selects and removes a batch of nodes from graph. With
// force=false, it's a no-op unless ShouldEvict(nil) is true. Batch
// size doubles once usage crosses the critical threshold. Per-id
// removal failures are logged and skipped; the loop continues.
func (m *MemoryMonitor) Evict(graph EvictableGraph, force bool) int {
	usage := sampleMemoryUsage()

	if !force && !m.ShouldEvict(&usage) {
		return 0
	}

	m.mu.Lock()
	limit, critical, batchSize := m.memoryLimitMB, m.criticalThreshold, m.evictionBatchSize
	strategy := m.strategies[m.current]
	policy := m.current
	m.mu.Unlock()

	targetCount := batchSize
	if usage.IsOverLimit(limit * critical) {
		targetCount = batchSize * 2
	}

	candidates := strategy.SelectForEviction(graph, targetCount)

	evicted := 0
	var bytesEvicted int64
	for _, id := range candidates {
		// Measured before removal: once gone, NodeSizeEstimate reads 0.
		size := graph.NodeSizeEstimate(id)
		if graph.RemoveNodeFromMemory(id) {
			m.tracker.Forget(id)
			evicted++
			bytesEvicted += int64(size)
		} else {
			m.logger.Warn("failed to evict node", map[string]interface{}{"node_id": id.String()})
		}
	}

	if evicted > 0 {
		m.mu.Lock()
		m.evictionCount++
		m.lastEvictionTime = time.Now()
		m.totalNodesEvicted += int64(evicted)
		m.totalBytesEvicted += bytesEvicted
		m.mu.Unlock()
		m.logger.Info("evicted nodes", map[string]interface{}{"count": evicted, "bytes": bytesEvicted, "strategy": string(policy)})
	}

	return evicted
}

// Stats returns the monitor's eviction history and configuration.
func (m *MemoryMonitor) Stats() EvictionStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return EvictionStats{
		EvictionCount:     m.evictionCount,
		TotalNodesEvicted: m.totalNodesEvicted,
		TotalBytesEvicted: m.totalBytesEvicted,
		LastEvictionTime:  m.lastEvictionTime,
		CurrentStrategy:   m.current,
		MemoryLimitMB:     m.memoryLimitMB,
		WarningThreshold:  m.warningThreshold,
		CriticalThreshold: m.criticalThreshold,
		EvictionBatchSize: m.evictionBatchSize,
	}
}
