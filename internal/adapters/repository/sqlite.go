package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/swinglab/internal/domain/report"
	"github.com/okian/swinglab/pkg/logger"
	"github.com/okian/swinglab/pkg/metrics"
)

// SQLiteStore persists records in a SQLite database whose schema is managed
// by embedded migrations.
type SQLiteStore struct {
	settings
	db *sql.DB

	closeOnce sync.Once
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewSQLiteStore opens (or creates) the database at path and migrates it to
// the latest schema.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store: empty path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w", path, err)
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite store: %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{settings: newSettings(opts), db: db, stopChan: make(chan struct{})}
	if err := migrateUp(db, s.logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite store: %w", err)
	}
	version, _, _ := schemaVersion(db)
	s.logger.Info(ctx, "sqlite store ready",
		logger.String("path", path),
		logger.Int("schema_version", int(version)),
	)

	s.startMetricsUpdater(ctx)
	return s, nil
}

func (s *SQLiteStore) Create(ctx context.Context, id string, frames int) (Record, error) {
	defer observe("create", time.Now())
	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, status, frames, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		id, string(StatusPending), frames, now.UnixNano(), now.UnixNano())
	if err != nil {
		return Record{}, fmt.Errorf("create %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Record{}, fmt.Errorf("create %s: %w", id, ErrExists)
	}
	if err := s.prune(ctx); err != nil {
		return Record{}, err
	}
	return Record{ID: id, Status: StatusPending, Frames: frames, CreatedAt: now, UpdatedAt: now}, nil
}

// prune drops the oldest rows beyond capacity.
func (s *SQLiteStore) prune(ctx context.Context) error {
	if s.capacity <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM analyses WHERE id IN (
		   SELECT id FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT -1 OFFSET ?
		 )`, s.capacity)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Complete(ctx context.Context, id string, r report.Report) error {
	defer observe("complete", time.Now())
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("complete %s: encode report: %w", id, err)
	}
	return s.update(ctx, id, StatusDone, string(body), "")
}

func (s *SQLiteStore) Fail(ctx context.Context, id string, cause error) error {
	defer observe("fail", time.Now())
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return s.update(ctx, id, StatusFailed, nil, msg)
}

func (s *SQLiteStore) update(ctx context.Context, id string, status Status, body any, msg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, report = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), body, msg, s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	defer observe("delete", time.Now())
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

const selectRecord = `SELECT id, status, frames, report, error, created_at, updated_at FROM analyses`

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	defer observe("get", time.Now())
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectRecord+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Record, error) {
	if err := checkLimit(n); err != nil {
		return nil, err
	}
	defer observe("recent", time.Now())
	rows, err := s.db.QueryContext(ctx, selectRecord+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("recent: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Close stops the metrics updater and closes the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec              Record
		status           string
		body             sql.NullString
		created, updated int64
	)
	if err := sc.Scan(&rec.ID, &status, &rec.Frames, &body, &rec.Error, &created, &updated); err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	rec.CreatedAt = time.Unix(0, created)
	rec.UpdatedAt = time.Unix(0, updated)
	if body.Valid && body.String != "" {
		var r report.Report
		if err := json.Unmarshal([]byte(body.String), &r); err != nil {
			return Record{}, fmt.Errorf("decode report of %s: %w", rec.ID, err)
		}
		rec.Report = &r
	}
	return rec, nil
}

func (s *SQLiteStore) startMetricsUpdater(ctx context.Context) {
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
				if n, err := s.Count(ctx); err == nil {
					metrics.UpdateStoreRecords(n)
				}
			}
		}
	}()
}
