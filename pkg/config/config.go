// Package config loads the graph engine's runtime configuration via
// viper, applying the defaults named in the engine's external
// interface contract for memory management, the query cache, the
// adjacency cache, and the metrics collector.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/garrickdabbs/sfm-graph-engine/internal/cache"
	"github.com/garrickdabbs/sfm-graph-engine/pkg/sfmgraph"
)

// MemoryConfig controls the memory monitor's thresholds and the
// default eviction strategy.
type MemoryConfig struct {
	LimitMB       float64 `mapstructure:"limit_mb"`
	WarningRatio  float64 `mapstructure:"warning_ratio"`
	CriticalRatio float64 `mapstructure:"critical_ratio"`
	BatchSize     int     `mapstructure:"batch_size"`
	Strategy      string  `mapstructure:"strategy"`
}

// QueryCacheConfig controls the query cache's two built-in levels.
type QueryCacheConfig struct {
	RecentCap    int           `mapstructure:"recent_cap"`
	GeneralCap   int           `mapstructure:"general_cap"`
	GeneralTTL   time.Duration `mapstructure:"general_ttl"`
}

// MetricsConfig holds the metrics collector's history bound and
// background sampler cadence. SamplerPeriodSec is loaded but not
// passed to the collector, whose sampler period is fixed at 30
// seconds.
type MetricsConfig struct {
	History          int `mapstructure:"history"`
	SamplerPeriodSec int `mapstructure:"sampler_period_s"`
}

// Config is the top-level configuration for an Engine, loaded from a
// file, environment variables (prefixed SFMGRAPH_), or defaults.
type Config struct {
	Memory            MemoryConfig     `mapstructure:"memory"`
	QueryCache        QueryCacheConfig `mapstructure:"query_cache"`
	AdjacencyCacheCap int              `mapstructure:"adjacency_cache_cap"`
	AccessTrackerCap  int              `mapstructure:"access_tracker_cap"`
	Metrics           MetricsConfig    `mapstructure:"metrics"`
}

// Default returns the configuration defaults named in the engine's
// external interface contract.
func Default() Config {
	return Config{
		Memory: MemoryConfig{
			LimitMB:       1000,
			WarningRatio:  0.8,
			CriticalRatio: 0.95,
			BatchSize:     100,
			Strategy:      "lru",
		},
		QueryCache: QueryCacheConfig{
			RecentCap:  1000,
			GeneralCap: 10000,
			GeneralTTL: 1800 * time.Second,
		},
		AdjacencyCacheCap: 1000,
		AccessTrackerCap:  10000,
		Metrics: MetricsConfig{
			History:          1000,
			SamplerPeriodSec: 30,
		},
	}
}

// Load reads configuration from path (if non-empty) and the
// SFMGRAPH_-prefixed environment, falling back to Default() for
// anything unset. path may be empty to use defaults and environment
// only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("sfmgraph")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("memory.limit_mb", def.Memory.LimitMB)
	v.SetDefault("memory.warning_ratio", def.Memory.WarningRatio)
	v.SetDefault("memory.critical_ratio", def.Memory.CriticalRatio)
	v.SetDefault("memory.batch_size", def.Memory.BatchSize)
	v.SetDefault("memory.strategy", def.Memory.Strategy)
	v.SetDefault("query_cache.recent_cap", def.QueryCache.RecentCap)
	v.SetDefault("query_cache.general_cap", def.QueryCache.GeneralCap)
	v.SetDefault("query_cache.general_ttl", def.QueryCache.GeneralTTL)
	v.SetDefault("adjacency_cache_cap", def.AdjacencyCacheCap)
	v.SetDefault("access_tracker_cap", def.AccessTrackerCap)
	v.SetDefault("metrics.history", def.Metrics.History)
	v.SetDefault("metrics.sampler_period_s", def.Metrics.SamplerPeriodSec)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// EngineConfig translates this configuration into the parameters
// NewEngine expects, so callers don't need to know the engine
// package's internal config shape.
func (c Config) EngineConfig() sfmgraph.EngineConfig {
	return sfmgraph.EngineConfig{
		AdjacencyCacheCap: c.AdjacencyCacheCap,
		AccessTrackerCap:  c.AccessTrackerCap,
		Memory: sfmgraph.MemoryMonitorConfig{
			MemoryLimitMB:     c.Memory.LimitMB,
			WarningThreshold:  c.Memory.WarningRatio,
			CriticalThreshold: c.Memory.CriticalRatio,
			EvictionBatchSize: c.Memory.BatchSize,
		},
		QueryCache: cache.QueryCacheConfig{
			RecentQueriesMaxSize:  c.QueryCache.RecentCap,
			GeneralQueriesMaxSize: c.QueryCache.GeneralCap,
			GeneralQueriesTTL:     c.QueryCache.GeneralTTL,
		},
	}
}

// EvictionPolicy maps the configured strategy name to the engine's
// EvictionPolicy enum, defaulting to LRU for anything unrecognized.
func (c Config) EvictionPolicy() sfmgraph.EvictionPolicy {
	switch c.Memory.Strategy {
	case "lfu":
		return sfmgraph.EvictionLFU
	case "oldest_first":
		return sfmgraph.EvictionOldestFirst
	default:
		return sfmgraph.EvictionLRU
	}
}
