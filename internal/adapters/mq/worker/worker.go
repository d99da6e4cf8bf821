// Package worker runs queued swing analyses and records their outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/swinglab/internal/domain/model"
	"github.com/okian/swinglab/internal/domain/pose"
	"github.com/okian/swinglab/internal/domain/report"
	"github.com/okian/swinglab/pkg/logger"
	"github.com/okian/swinglab/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.Job

// Analyzer runs the full pipeline on one swing.
type Analyzer interface {
	Analyze(ctx context.Context, seq pose.Sequence) (report.Report, error)
}

// Recorder stores the outcome of a job.
type Recorder interface {
	Complete(ctx context.Context, id string, r report.Report) error
	Fail(ctx context.Context, id string, cause error) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs and records results using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in flight, if any.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	recorder Recorder
	name     string
	timeout  time.Duration

	shutdown chan struct{}
	done     chan struct{}

	// busy is shared with the owning pool, if any.
	busy *atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, analyzer Analyzer, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		analyzer: analyzer,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		busy:     new(atomic.Int64),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process analyzes one job and records the report or the failure.
func (w *InMemoryWorker) process(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	w.busy.Add(1)
	start := time.Now()
	defer func() {
		w.busy.Add(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	actx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	rep, err := w.analyzer.Analyze(actx, job.Sequence)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "analysis_error")
		w.logger.Warn(ctx, "analysis failed",
			logger.String("job_id", job.ID),
			logger.Int("frames", job.Frames()),
			logger.Error(err),
		)
		if ferr := w.recorder.Fail(ctx, job.ID, err); ferr != nil {
			metrics.RecordErrorByComponent("worker", "store_error")
			return fmt.Errorf("record failure of job %s: %w", job.ID, ferr)
		}
		return nil
	}

	if err := w.recorder.Complete(ctx, job.ID, rep); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		if ferr := w.recorder.Fail(ctx, job.ID, err); ferr != nil {
			return fmt.Errorf("record report of job %s: %w", job.ID, errors.Join(err, ferr))
		}
		return fmt.Errorf("record report of job %s: %w", job.ID, err)
	}

	w.logger.Debug(ctx, "job analyzed",
		logger.String("job_id", job.ID),
		logger.String("label", string(rep.Label)),
		logger.Duration("wait", job.Wait(start)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown chan struct{}
	cancel   context.CancelFunc
	busy     atomic.Int64
	stopped  atomic.Bool

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive count defaults to a
// multiple of the CPU count. Options are applied to every worker.
func NewPool(workerCount int, queue Queue, analyzer Analyzer, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(queue, analyzer, recorder, wopts...)
		w.busy = &pool.busy
		pool.workers[i] = w
	}
	pool.logger = pool.workers[0].logger.Named("pool")

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Active returns the number of workers currently analyzing a job.
func (p *Pool) Active() int { return int(p.busy.Load()) }

// Start starts all workers in the pool. Workers keep the values of ctx but
// not its cancellation: they run until Shutdown has drained the queue.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
	go p.startMetricsUpdater(runCtx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			metrics.UpdateWorkerActiveCount(p.Active())
		}
	}
}

// Shutdown closes the queue, lets workers drain what is left and waits for
// them until ctx or the pool timeout expires. Jobs still running at that
// point are canceled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}
	if p.cancel != nil {
		defer p.cancel()
	}
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
