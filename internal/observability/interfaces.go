// Package observability provides logging and metrics plumbing shared by
// every subsystem of the SFM graph engine: timers, counters, gauges,
// histograms, and a background system-resource sampler.
package observability

import "time"

// LogLevel defines log message severity.
type LogLevel string

// Log levels, ordered least to most severe.
const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
	LogLevelFatal LogLevel = "FATAL"
)

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Fatal(msg string, fields map[string]interface{})

	// WithPrefix returns a new logger that tags every line with prefix.
	WithPrefix(prefix string) Logger
}

// MetricsClient defines the interface for recording the four metric
// kinds the collector exposes (§4.8): counters, gauges, histograms, and
// operation timers.
type MetricsClient interface {
	RecordCounter(name string, value float64, labels map[string]string)
	RecordGauge(name string, value float64, labels map[string]string)
	RecordHistogram(name string, value float64, labels map[string]string)
	RecordTimer(name string, duration time.Duration, labels map[string]string)

	// RecordOperation records a component/operation outcome in one shot,
	// the call the Collector makes after every timed public method.
	RecordOperation(component string, operation string, success bool, durationSeconds float64, labels map[string]string)

	// StartTimer returns a stop function that records elapsed time under
	// name when called.
	StartTimer(name string, labels map[string]string) func()

	Close() error
}
