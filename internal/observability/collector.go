package observability

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	gopsprocess "github.com/shirou/gopsutil/v4/process"
)

// MetricValue is a single timestamped measurement, the Go analogue of
// performance_metrics.py's MetricValue dataclass.
type MetricValue struct {
	Value     float64
	Timestamp time.Time
	Metadata  map[string]interface{}
}

// OperationStats is the accumulated performance picture for one named
// operation: count, duration stats, and success/error split.
type OperationStats struct {
	OperationCount int64
	TotalDuration  time.Duration
	MinDuration    time.Duration
	MaxDuration    time.Duration
	SuccessCount   int64
	ErrorCount     int64
	LastExecution  time.Time
}

func (s *OperationStats) update(duration time.Duration, success bool) {
	s.OperationCount++
	s.TotalDuration += duration
	if s.OperationCount == 1 || duration < s.MinDuration {
		s.MinDuration = duration
	}
	if duration > s.MaxDuration {
		s.MaxDuration = duration
	}
	s.LastExecution = time.Now()
	if success {
		s.SuccessCount++
	} else {
		s.ErrorCount++
	}
}

// AvgDuration returns the mean duration across every recorded call.
func (s *OperationStats) AvgDuration() time.Duration {
	if s.OperationCount == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.OperationCount)
}

// SuccessRate returns the fraction of calls that succeeded, 0 if none
// have been recorded.
func (s *OperationStats) SuccessRate() float64 {
	if s.OperationCount == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.OperationCount)
}

// OperationSnapshot is an immutable copy of OperationStats returned
// from the collector's read accessors, safe to hand to callers without
// holding the collector's lock.
type OperationSnapshot struct {
	OperationCount int64
	TotalDuration  time.Duration
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	SuccessCount   int64
	ErrorCount     int64
	SuccessRate    float64
	LastExecution  time.Time
}

func snapshotOf(s *OperationStats) OperationSnapshot {
	return OperationSnapshot{
		OperationCount: s.OperationCount,
		TotalDuration:  s.TotalDuration,
		MinDuration:    s.MinDuration,
		MaxDuration:    s.MaxDuration,
		AvgDuration:    s.AvgDuration(),
		SuccessCount:   s.SuccessCount,
		ErrorCount:     s.ErrorCount,
		SuccessRate:    s.SuccessRate(),
		LastExecution:  s.LastExecution,
	}
}

// SystemResourceSample is one point-in-time reading of process/system
// resource usage, the Go analogue of SystemResourceMetrics.
type SystemResourceSample struct {
	CPUPercent         float64
	ProcessRSSBytes    uint64
	MemoryUsedPercent  float64
	DiskIOReadBytes    uint64
	DiskIOWriteBytes   uint64
	NetworkBytesSent   uint64
	NetworkBytesRecv   uint64
	Timestamp          time.Time
}

// SummaryStats mirrors get_summary_stats()'s exact field set.
type SummaryStats struct {
	UptimeSeconds             float64
	TotalOperations           int64
	TotalErrors               int64
	ErrorRate                 float64
	OperationsPerSecond       float64
	UniqueOperations          int
	SystemMetrics             *SystemResourceSample
	MetricsCollectionEnabled  bool
}

// Collector is the centralized, bounded-history metrics store: the
// engine's timed operations (AddNode, AddRelationship) funnel through
// RecordOperation, other callers may use the counter/gauge/histogram
// primitives, and the same numbers are forwarded to a MetricsClient
// for external export.
type Collector struct {
	mu sync.Mutex

	operations    map[string]*OperationStats
	customMetrics map[string][]MetricValue
	systemMetrics []SystemResourceSample

	maxHistorySize int
	startTime      time.Time
	enabled        bool

	client MetricsClient
	logger Logger

	cancelSampler context.CancelFunc
	samplerDone   chan struct{}
}

// NewCollector creates a Collector bounding every history deque to
// maxHistorySize entries, forwarding every recorded value to client,
// and starts the background system-resource sampler.
func NewCollector(maxHistorySize int, client MetricsClient, logger Logger) *Collector {
	if maxHistorySize <= 0 {
		maxHistorySize = 1000
	}
	if client == nil {
		client = NewNoopMetricsClient()
	}
	if logger == nil {
		logger = NewNoopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Collector{
		operations:     make(map[string]*OperationStats),
		customMetrics:  make(map[string][]MetricValue),
		maxHistorySize: maxHistorySize,
		startTime:      time.Now(),
		enabled:        true,
		client:         client,
		logger:         logger.WithPrefix("metrics"),
		cancelSampler:  cancel,
		samplerDone:    make(chan struct{}),
	}

	go c.runSampler(ctx)
	return c
}

// SetEnabled turns metrics collection on or off. Disabled collectors
// silently drop every Record*/Increment*/SetGauge call.
func (c *Collector) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// RecordOperation records one call's duration and outcome under name,
// both in the bounded in-process history and via the wired
// MetricsClient.
func (c *Collector) RecordOperation(name string, duration time.Duration, success bool, metadata map[string]interface{}) {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	stats, ok := c.operations[name]
	if !ok {
		stats = &OperationStats{}
		c.operations[name] = stats
	}
	stats.update(duration, success)
	c.appendCustomLocked(name+"_duration", MetricValue{
		Value:     duration.Seconds(),
		Timestamp: time.Now(),
		Metadata:  metadata,
	})
	c.mu.Unlock()

	c.client.RecordOperation("graph_engine", name, success, duration.Seconds(), nil)
}

// IncrementCounter adds value to the running total tracked under name.
func (c *Collector) IncrementCounter(name string, value float64, metadata map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	history := c.customMetrics[name]
	current := 0.0
	if len(history) > 0 {
		current = history[len(history)-1].Value
	}
	c.appendCustomLocked(name, MetricValue{Value: current + value, Timestamp: time.Now(), Metadata: metadata})
	c.client.RecordCounter(name, value, nil)
}

// SetGauge records the current value of a named gauge.
func (c *Collector) SetGauge(name string, value float64, metadata map[string]interface{}) {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	c.appendCustomLocked(name, MetricValue{Value: value, Timestamp: time.Now(), Metadata: metadata})
	c.mu.Unlock()

	c.client.RecordGauge(name, value, nil)
}

// RecordHistogram records value in a named histogram's history.
func (c *Collector) RecordHistogram(name string, value float64, metadata map[string]interface{}) {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	c.appendCustomLocked(name, MetricValue{Value: value, Timestamp: time.Now(), Metadata: metadata})
	c.mu.Unlock()

	c.client.RecordHistogram(name, value, nil)
}

func (c *Collector) appendCustomLocked(name string, v MetricValue) {
	history := append(c.customMetrics[name], v)
	if len(history) > c.maxHistorySize {
		history = history[len(history)-c.maxHistorySize:]
	}
	c.customMetrics[name] = history
}

// GetOperationMetrics returns the accumulated stats for one operation
// name, or false if nothing has been recorded for it.
func (c *Collector) GetOperationMetrics(name string) (OperationSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.operations[name]
	if !ok {
		return OperationSnapshot{}, false
	}
	return snapshotOf(stats), true
}

// GetAllOperationMetrics returns a snapshot of every operation's stats.
func (c *Collector) GetAllOperationMetrics() map[string]OperationSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]OperationSnapshot, len(c.operations))
	for name, stats := range c.operations {
		out[name] = snapshotOf(stats)
	}
	return out
}

// GetCustomMetric returns up to limit of the most recent values
// recorded under name (0 means "all").
func (c *Collector) GetCustomMetric(name string, limit int) []MetricValue {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := c.customMetrics[name]
	if limit > 0 && limit < len(values) {
		values = values[len(values)-limit:]
	}
	out := make([]MetricValue, len(values))
	copy(out, values)
	return out
}

// GetSystemMetrics returns up to limit of the most recent system
// resource samples (0 means "all").
func (c *Collector) GetSystemMetrics(limit int) []SystemResourceSample {
	c.mu.Lock()
	defer c.mu.Unlock()
	values := c.systemMetrics
	if limit > 0 && limit < len(values) {
		values = values[len(values)-limit:]
	}
	out := make([]SystemResourceSample, len(values))
	copy(out, values)
	return out
}

// GetSummaryStats returns the same summary shape as the original
// get_summary_stats(): uptime, totals, error rate, throughput, and the
// most recent system sample.
func (c *Collector) GetSummaryStats() SummaryStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	uptime := time.Since(c.startTime).Seconds()
	var totalOps, totalErrors int64
	for _, stats := range c.operations {
		totalOps += stats.OperationCount
		totalErrors += stats.ErrorCount
	}

	var errorRate, opsPerSec float64
	if totalOps > 0 {
		errorRate = float64(totalErrors) / float64(totalOps)
	}
	if uptime > 0 {
		opsPerSec = float64(totalOps) / uptime
	}

	var recent *SystemResourceSample
	if n := len(c.systemMetrics); n > 0 {
		sample := c.systemMetrics[n-1]
		recent = &sample
	}

	return SummaryStats{
		UptimeSeconds:            uptime,
		TotalOperations:          totalOps,
		TotalErrors:              totalErrors,
		ErrorRate:                errorRate,
		OperationsPerSecond:      opsPerSec,
		UniqueOperations:         len(c.operations),
		SystemMetrics:            recent,
		MetricsCollectionEnabled: c.enabled,
	}
}

// ResetMetrics clears every collected series and restarts the uptime
// clock.
func (c *Collector) ResetMetrics() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operations = make(map[string]*OperationStats)
	c.customMetrics = make(map[string][]MetricValue)
	c.systemMetrics = nil
	c.startTime = time.Now()
}

// Close stops the background sampler and the underlying MetricsClient.
func (c *Collector) Close() error {
	c.cancelSampler()
	<-c.samplerDone
	return c.client.Close()
}

// runSampler captures a system resource sample every 30 seconds,
// backing off to 60 seconds after a failed capture, per the cadence of
// the original collector's background thread.
func (c *Collector) runSampler(ctx context.Context) {
	defer close(c.samplerDone)

	interval := 30 * time.Second
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if !c.samplingEnabled() {
				timer.Reset(interval)
				continue
			}
			sample, err := captureSystemResourceSample()
			if err != nil {
				c.logger.Error("system metrics collection failed", map[string]interface{}{"error": err.Error()})
				interval = 60 * time.Second
			} else {
				c.mu.Lock()
				c.systemMetrics = append(c.systemMetrics, sample)
				if len(c.systemMetrics) > c.maxHistorySize {
					c.systemMetrics = c.systemMetrics[len(c.systemMetrics)-c.maxHistorySize:]
				}
				c.mu.Unlock()
				interval = 30 * time.Second
			}
			timer.Reset(interval)
		}
	}
}

func (c *Collector) samplingEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// captureSystemResourceSample reads system-wide CPU utilization via
// gopsutil's cpu package, process RSS via its process package, and
// system-wide memory/disk/network counters via its mem/disk/net
// packages — the Go analogue of SystemResourceMetrics, whose first
// field is psutil.cpu_percent(interval=None).
func captureSystemResourceSample() (SystemResourceSample, error) {
	sample := SystemResourceSample{Timestamp: time.Now()}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		sample.CPUPercent = percents[0]
	}

	proc, err := gopsprocess.NewProcess(int32(os.Getpid()))
	if err == nil {
		if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
			sample.ProcessRSSBytes = memInfo.RSS
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		sample.MemoryUsedPercent = vm.UsedPercent
	}

	if ioCounters, err := disk.IOCounters(); err == nil {
		for _, counters := range ioCounters {
			sample.DiskIOReadBytes += counters.ReadBytes
			sample.DiskIOWriteBytes += counters.WriteBytes
		}
	}

	if netCounters, err := net.IOCounters(false); err == nil && len(netCounters) > 0 {
		sample.NetworkBytesSent = netCounters[0].BytesSent
		sample.NetworkBytesRecv = netCounters[0].BytesRecv
	}

	return sample, nil
}

// Time wraps fn with a RecordOperation call, the Go equivalent of the
// timed_operation decorator: it measures fn's duration and records
// success/failure based on whether fn returns a non-nil error.
func Time(collector *Collector, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	collector.RecordOperation(operation, time.Since(start), err == nil, nil)
	return err
}
