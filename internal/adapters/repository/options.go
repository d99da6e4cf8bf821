package repository

import (
	"time"

	"github.com/okian/swinglab/pkg/logger"
)

const (
	defaultCapacity              = 10000
	defaultMetricsUpdateInterval = 5 * time.Second
	maxRecentLimit               = 1000
)

// Option configures a store.
type Option func(*settings)

type settings struct {
	capacity              int
	metricsUpdateInterval time.Duration
	now                   func() time.Time
	logger                logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		capacity:              defaultCapacity,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s
}

// WithCapacity bounds the number of records kept; the oldest are dropped
// first. Values <= 0 keep everything.
func WithCapacity(n int) Option {
	return func(s *settings) { s.capacity = n }
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *settings) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func checkLimit(n int) error {
	if n < 1 || n > maxRecentLimit {
		return ErrInvalidLimit
	}
	return nil
}
