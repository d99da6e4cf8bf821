// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory analysis queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the number of submission ids remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxObservations caps the frames accepted in one request.
	MaxObservations int `koanf:"max_observations"`

	// StoreDriver is memory or sqlite. StorePath is the sqlite database file.
	StoreDriver   string `koanf:"store_driver"`
	StorePath     string `koanf:"store_path"`
	StoreCapacity int    `koanf:"store_capacity"`

	// ClassifierLatencyMinMS and ClassifierLatencyMaxMS simulate external model latency bounds.
	ClassifierLatencyMinMS int `koanf:"classifier_latency_min_ms"`
	ClassifierLatencyMaxMS int `koanf:"classifier_latency_max_ms"`

	// JobTimeoutMS bounds one queued analysis. Zero disables the limit.
	JobTimeoutMS int `koanf:"job_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		QueueSize:              1024,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             50_000,
		MaxObservations:        1000,
		StoreDriver:            StoreMemory,
		StorePath:              "swinglab.db",
		StoreCapacity:          10_000,
		ClassifierLatencyMinMS: 0,
		ClassifierLatencyMaxMS: 0,
		JobTimeoutMS:           30_000,
	}
}

// ClassifierLatency returns the simulated latency range.
func (c *Config) ClassifierLatency() (minLatency, maxLatency time.Duration) {
	return time.Duration(c.ClassifierLatencyMinMS) * time.Millisecond,
		time.Duration(c.ClassifierLatencyMaxMS) * time.Millisecond
}

// JobTimeout returns the per-job analysis deadline.
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutMS) * time.Millisecond
}

// Validate checks the configuration for values the service cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.MaxObservations <= 0:
		return fmt.Errorf("%w: max_observations must be positive", ErrInvalidConfig)
	case c.StoreDriver != StoreMemory && c.StoreDriver != StoreSQLite:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	case c.StoreDriver == StoreSQLite && c.StorePath == "":
		return fmt.Errorf("%w: sqlite store requires store_path", ErrInvalidConfig)
	case c.StoreCapacity <= 0:
		return fmt.Errorf("%w: store_capacity must be positive", ErrInvalidConfig)
	case c.ClassifierLatencyMinMS < 0 || c.ClassifierLatencyMaxMS < c.ClassifierLatencyMinMS:
		return fmt.Errorf("%w: classifier latency range [%d, %d] ms", ErrInvalidConfig,
			c.ClassifierLatencyMinMS, c.ClassifierLatencyMaxMS)
	case c.JobTimeoutMS < 0:
		return fmt.Errorf("%w: job_timeout_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
