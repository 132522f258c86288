package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetricsClient implements MetricsClient by exporting every
// recorded metric through prometheus/client_golang. The Collector (see
// collector.go) is the primary consumer: it keeps its own bounded
// in-process history AND forwards every observation here so the same
// numbers are visible to a Prometheus scraper.
type PrometheusMetricsClient struct {
	namespace string
	subsystem string

	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec

	mu sync.RWMutex

	commonLabels prometheus.Labels
}

// NewPrometheusMetricsClient creates a new Prometheus-backed metrics
// client scoped under namespace/subsystem, and pre-registers the
// metrics every graph engine operation touches.
func NewPrometheusMetricsClient(namespace, subsystem string, commonLabels map[string]string) *PrometheusMetricsClient {
	labels := prometheus.Labels{}
	for k, v := range commonLabels {
		labels[k] = v
	}

	c := &PrometheusMetricsClient{
		namespace:    namespace,
		subsystem:    subsystem,
		counters:     make(map[string]*prometheus.CounterVec),
		gauges:       make(map[string]*prometheus.GaugeVec),
		histograms:   make(map[string]*prometheus.HistogramVec),
		commonLabels: labels,
	}

	c.registerDefaultMetrics()
	return c
}

// registerDefaultMetrics pre-registers the metrics every graph engine
// subsystem touches, mirroring the shape of operations a caller will
// actually record (graph mutations, cache lookups, eviction runs,
// resource samples) rather than the HTTP/DB surface of an API server.
func (c *PrometheusMetricsClient) registerDefaultMetrics() {
	c.getOrCreateCounter("operations_total", "Total recorded operations", []string{"component", "operation", "success"})
	c.getOrCreateHistogram("operation_duration_seconds", "Operation duration", []string{"component", "operation", "success"}, prometheus.DefBuckets)

	c.getOrCreateCounter("cache_operations_total", "Total cache operations", []string{"operation", "result"})
	c.getOrCreateHistogram("cache_operation_duration_seconds", "Cache operation duration", []string{"operation"}, prometheus.DefBuckets)

	c.getOrCreateCounter("eviction_total", "Total nodes evicted", []string{"strategy"})
	c.getOrCreateGauge("process_rss_bytes", "Process resident set size in bytes", nil)
}

// RecordCounter increments a named counter by value.
func (c *PrometheusMetricsClient) RecordCounter(name string, value float64, labels map[string]string) {
	counter := c.getOrCreateCounter(name, fmt.Sprintf("Counter for %s", name), c.getLabelNames(labels))
	counter.With(c.mergeLabelValues(labels)).Add(value)
}

// RecordGauge sets a named gauge to value.
func (c *PrometheusMetricsClient) RecordGauge(name string, value float64, labels map[string]string) {
	gauge := c.getOrCreateGauge(name, fmt.Sprintf("Gauge for %s", name), c.getLabelNames(labels))
	gauge.With(c.mergeLabelValues(labels)).Set(value)
}

// RecordHistogram observes value in a named histogram.
func (c *PrometheusMetricsClient) RecordHistogram(name string, value float64, labels map[string]string) {
	histogram := c.getOrCreateHistogram(name, fmt.Sprintf("Histogram for %s", name), c.getLabelNames(labels), prometheus.DefBuckets)
	histogram.With(c.mergeLabelValues(labels)).Observe(value)
}

// RecordTimer observes a duration (in seconds) in a named histogram.
func (c *PrometheusMetricsClient) RecordTimer(name string, duration time.Duration, labels map[string]string) {
	c.RecordHistogram(name+"_seconds", duration.Seconds(), labels)
}

// RecordOperation records a component/operation outcome as both a
// counter increment and a duration histogram observation. This is the
// single call path every timed public method of the engine funnels
// through, so the in-process Collector and the Prometheus export never
// disagree.
func (c *PrometheusMetricsClient) RecordOperation(component, operation string, success bool, durationSeconds float64, labels map[string]string) {
	merged := map[string]string{
		"component": component,
		"operation": operation,
		"success":   stringFromBool(success),
	}
	for k, v := range labels {
		merged[k] = v
	}
	c.RecordCounter("operations_total", 1.0, merged)
	c.RecordHistogram("operation_duration_seconds", durationSeconds, merged)
}

// StartTimer starts a timer and returns a function that records the
// elapsed time when called.
func (c *PrometheusMetricsClient) StartTimer(name string, labels map[string]string) func() {
	start := time.Now()
	return func() {
		c.RecordTimer(name, time.Since(start), labels)
	}
}

// Close is a no-op; Prometheus collectors are process-lifetime.
func (c *PrometheusMetricsClient) Close() error {
	return nil
}

// Helper methods

func (c *PrometheusMetricsClient) getOrCreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	c.mu.RLock()
	if counter, exists := c.counters[name]; exists {
		c.mu.RUnlock()
		return counter
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, exists := c.counters[name]; exists {
		return counter
	}

	counter := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: c.subsystem,
		Name:      name,
		Help:      help,
	}, labels)

	c.counters[name] = counter
	return counter
}

func (c *PrometheusMetricsClient) getOrCreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	c.mu.RLock()
	if gauge, exists := c.gauges[name]; exists {
		c.mu.RUnlock()
		return gauge
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gauge, exists := c.gauges[name]; exists {
		return gauge
	}

	gauge := promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Subsystem: c.subsystem,
		Name:      name,
		Help:      help,
	}, labels)

	c.gauges[name] = gauge
	return gauge
}

func (c *PrometheusMetricsClient) getOrCreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	c.mu.RLock()
	if histogram, exists := c.histograms[name]; exists {
		c.mu.RUnlock()
		return histogram
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if histogram, exists := c.histograms[name]; exists {
		return histogram
	}

	histogram := promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Subsystem: c.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)

	c.histograms[name] = histogram
	return histogram
}

func (c *PrometheusMetricsClient) getLabelNames(labels map[string]string) []string {
	if labels == nil {
		return []string{}
	}

	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	return names
}

func (c *PrometheusMetricsClient) mergeLabelValues(labels map[string]string) prometheus.Labels {
	merged := prometheus.Labels{}

	for k, v := range c.commonLabels {
		merged[k] = v
	}
	for k, v := range labels {
		merged[k] = v
	}

	return merged
}

func stringFromBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

// NoopMetricsClient discards every recorded metric. Useful for tests
// that don't want a process-wide Prometheus registry touched.
type NoopMetricsClient struct{}

func (NoopMetricsClient) RecordCounter(name string, value float64, labels map[string]string)   {}
func (NoopMetricsClient) RecordGauge(name string, value float64, labels map[string]string)      {}
func (NoopMetricsClient) RecordHistogram(name string, value float64, labels map[string]string)  {}
func (NoopMetricsClient) RecordTimer(name string, duration time.Duration, labels map[string]string) {
}
func (NoopMetricsClient) RecordOperation(component, operation string, success bool, durationSeconds float64, labels map[string]string) {
}
func (NoopMetricsClient) StartTimer(name string, labels map[string]string) func() { return func() {} }
func (NoopMetricsClient) Close() error                                           { return nil }

// NewNoopMetricsClient creates a metrics client that discards everything.
func NewNoopMetricsClient() MetricsClient {
	return NoopMetricsClient{}
}
