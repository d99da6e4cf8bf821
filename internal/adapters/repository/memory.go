package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/swinglab/internal/domain/report"
	"github.com/okian/swinglab/pkg/metrics"
)

// MemoryStore keeps records in memory in insertion order.
type MemoryStore struct {
	settings

	mu    sync.RWMutex
	byID  map[string]*list.Element // values are *Record
	order *list.List

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a memory store and starts its metrics updater,
// which runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		settings: newSettings(opts),
		byID:     make(map[string]*list.Element),
		order:    list.New(),
		stopChan: make(chan struct{}),
	}
	s.startMetricsUpdater(ctx)
	return s
}

func (s *MemoryStore) Create(_ context.Context, id string, frames int) (Record, error) {
	defer observe("create", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed() {
		return Record{}, ErrClosed
	}
	if _, ok := s.byID[id]; ok {
		return Record{}, fmt.Errorf("create %s: %w", id, ErrExists)
	}
	if s.capacity > 0 && s.order.Len() >= s.capacity {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.byID, oldest.Value.(*Record).ID)
	}
	now := s.now()
	rec := &Record{ID: id, Status: StatusPending, Frames: frames, CreatedAt: now, UpdatedAt: now}
	s.byID[id] = s.order.PushBack(rec)
	return *rec, nil
}

func (s *MemoryStore) Complete(_ context.Context, id string, r report.Report) error {
	defer observe("complete", time.Now())
	return s.update(id, func(rec *Record) {
		rec.Status = StatusDone
		rec.Report = &r
		rec.Error = ""
	})
}

func (s *MemoryStore) Fail(_ context.Context, id string, cause error) error {
	defer observe("fail", time.Now())
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return s.update(id, func(rec *Record) {
		rec.Status = StatusFailed
		rec.Report = nil
		rec.Error = msg
	})
}

func (s *MemoryStore) update(id string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	rec := e.Value.(*Record)
	fn(rec)
	rec.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	defer observe("delete", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byID[id]; ok {
		s.order.Remove(e)
		delete(s.byID, id)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	defer observe("get", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return Record{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return *e.Value.(*Record), nil
}

func (s *MemoryStore) Recent(_ context.Context, n int) ([]Record, error) {
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	defer observe("recent", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, min(n, s.order.Len()))
	for e := s.order.Back(); e != nil && len(out) < n; e = e.Prev() {
		out = append(out, *e.Value.(*Record))
	}
	return out, nil
}

func (s *MemoryStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len(), nil
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) closed() bool {
	select {
	case <-s.stopChan:
		return true
	default:
		return false
	}
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				n, _ := s.Count(ctx)
				metrics.UpdateStoreRecords(n)
			}
		}
	}()
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
