package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/swinglab/internal/adapters/mq/queue"
	"github.com/okian/swinglab/internal/adapters/mq/worker"
	"github.com/okian/swinglab/internal/adapters/repository"
	"github.com/okian/swinglab/internal/domain/classify"
	"github.com/okian/swinglab/internal/domain/dedupe"
	"github.com/okian/swinglab/internal/domain/model"
	"github.com/okian/swinglab/internal/domain/pose"
	"github.com/okian/swinglab/internal/domain/report"
	"github.com/okian/swinglab/pkg/logger"
	"github.com/okian/swinglab/pkg/metrics"
)

// Store drivers accepted by WithStoreDriver.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Service runs analyses synchronously or through the queue and worker pool.
type Service struct {
	mu sync.RWMutex

	// Core components
	pipeline   *Pipeline
	classifier classify.Classifier
	store      repository.Store
	deduper    dedupe.Deduper
	queue      *queue.InMemoryQueue
	pool       *worker.Pool

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	storeDriver   string
	storePath     string
	storeCapacity int
	jobTimeout    time.Duration
	latencyMin    time.Duration
	latencyMax    time.Duration
	newID         func() string

	started bool
	logger  logger.Logger
}

// Submission is the outcome of Submit.
type Submission struct {
	Record repository.Record
	// Duplicate is set when the id was submitted before; Record then holds
	// the earlier submission.
	Duplicate bool
}

// Stats is a point-in-time view of the service.
type Stats struct {
	Started       bool   `json:"started"`
	Workers       int    `json:"workers"`
	ActiveWorkers int    `json:"active_workers"`
	QueueLength   int    `json:"queue_length"`
	QueueCapacity int    `json:"queue_capacity"`
	DedupeSize    int64  `json:"dedupe_size"`
	Analyses      int    `json:"analyses"`
	StoreDriver   string `json:"store_driver"`
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of submission ids remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClassifier replaces the built-in stand-in model.
func WithClassifier(c classify.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithClassifierLatencyRange sets the simulated latency of the built-in model.
func WithClassifierLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.latencyMin = minLatency
			s.latencyMax = maxLatency
		}
	}
}

// WithStoreDriver selects the record store. path is required for sqlite.
func WithStoreDriver(driver, path string) Option {
	return func(s *Service) {
		s.storeDriver = driver
		s.storePath = path
	}
}

// WithStoreCapacity bounds the number of analysis records retained.
func WithStoreCapacity(n int) Option {
	return func(s *Service) { s.storeCapacity = n }
}

// WithStore injects an already opened store. The service closes it on Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithJobTimeout bounds each asynchronous analysis.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithIDGenerator sets the generator used for submissions without an id.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     1024,
		dedupeSize:    50000,
		storeDriver:   StoreMemory,
		storeCapacity: 10000,
		jobTimeout:    30 * time.Second,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting swing analysis service...")

	if s.store == nil {
		st, err := s.openStore(ctx)
		if err != nil {
			return err
		}
		s.store = st
	}
	if s.classifier == nil {
		s.classifier = classify.NewInMemoryClassifier(classify.WithLatencyRange(s.latencyMin, s.latencyMax))
	}

	s.pipeline = NewPipeline(s.classifier, WithPipelineLogger(s.logger.Named("pipeline")))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.pipeline, s.store,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithJobTimeout(s.jobTimeout),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "swing analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("store", s.storeDriver),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	opts := []repository.Option{
		repository.WithCapacity(s.storeCapacity),
		repository.WithLogger(s.logger.Named("store")),
	}
	switch s.storeDriver {
	case "", StoreMemory:
		return repository.NewMemoryStore(ctx, opts...), nil
	case StoreSQLite:
		st, err := repository.NewSQLiteStore(ctx, s.storePath, opts...)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("open store: unknown driver %q", s.storeDriver)
	}
}

// Stop drains the queue, waits for the workers and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping swing analysis service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	s.store = nil

	s.started = false
	s.logger.Info(ctx, "swing analysis service stopped")
	return errors.Join(errs...)
}

// Analyze runs the pipeline synchronously.
func (s *Service) Analyze(ctx context.Context, seq pose.Sequence) (report.Report, error) {
	s.mu.RLock()
	p, started := s.pipeline, s.started
	s.mu.RUnlock()
	if !started {
		return report.Report{}, ErrNotStarted
	}
	return p.Analyze(ctx, seq)
}

// Submit queues seq for asynchronous analysis under id, generating one when
// id is empty. Resubmitting an id returns the earlier submission while its
// record is retained; an id whose record was evicted is analyzed again.
func (s *Service) Submit(ctx context.Context, id string, seq pose.Sequence) (Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return Submission{}, ErrNotStarted
	}
	if id == "" {
		id = s.newID()
	}

	if s.deduper.SeenAndRecord(ctx, id) {
		sub, err := s.duplicate(ctx, id)
		if !errors.Is(err, repository.ErrNotFound) {
			return sub, err
		}
		// The record was evicted or is not created yet; Create settles which.
	}

	rec, err := s.store.Create(ctx, id, seq.Len())
	if errors.Is(err, repository.ErrExists) {
		return s.duplicate(ctx, id)
	}
	if err != nil {
		s.deduper.Unrecord(ctx, id)
		return Submission{}, fmt.Errorf("submit %s: %w", id, err)
	}

	job := model.Job{ID: id, Sequence: seq, SubmittedAt: rec.CreatedAt}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, id)
		if derr := s.store.Delete(ctx, id); derr != nil {
			s.logger.Error(ctx, "failed to drop rejected submission", logger.String("id", id), logger.Error(derr))
		}
		switch {
		case errors.Is(err, queue.ErrFull):
			return Submission{}, fmt.Errorf("submit %s: %w: %w", id, ErrBackpressure, err)
		case errors.Is(err, queue.ErrClosed):
			return Submission{}, fmt.Errorf("submit %s: %w: %w", id, ErrUnavailable, err)
		default:
			return Submission{}, fmt.Errorf("submit %s: %w", id, err)
		}
	}

	metrics.RecordSubmission()
	s.logger.Debug(ctx, "swing queued", logger.String("id", id), logger.Int("frames", seq.Len()))
	return Submission{Record: rec}, nil
}

func (s *Service) duplicate(ctx context.Context, id string) (Submission, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return Submission{}, fmt.Errorf("submit %s: %w", id, err)
	}
	metrics.RecordSubmissionDuplicate()
	return Submission{Record: rec, Duplicate: true}, nil
}

// Get returns the analysis record for id.
func (s *Service) Get(ctx context.Context, id string) (repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return repository.Record{}, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// Recent returns up to n analysis records, newest first.
func (s *Service) Recent(ctx context.Context, n int) ([]repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.Recent(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:       s.started,
		Workers:       s.workerCount,
		QueueCapacity: s.queueSize,
		StoreDriver:   s.storeDriver,
	}
	if !s.started {
		return st
	}
	st.Workers = s.pool.Size()
	st.ActiveWorkers = s.pool.Active()
	st.QueueLength = s.queue.Len()
	st.DedupeSize = s.deduper.Size()
	if n, err := s.store.Count(ctx); err == nil {
		st.Analyses = n
		metrics.UpdateStoreRecords(n)
	}
	metrics.UpdateQueueSize(st.QueueLength)
	metrics.UpdateWorkerActiveCount(st.ActiveWorkers)
	return st
}
