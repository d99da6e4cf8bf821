package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/swinglab/internal/domain/classify"
	"github.com/okian/swinglab/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

// tick is a deterministic clock advancing one second per call.
func tick() func() time.Time {
	var (
		mu  sync.Mutex
		cur = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}
}

type storeFactory func(t *testing.T, opts ...Option) Store

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, opts ...Option) Store {
			s := NewMemoryStore(context.Background(), opts...)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"sqlite": func(t *testing.T, opts ...Option) Store {
			path := filepath.Join(t.TempDir(), "analyses.db")
			s, err := NewSQLiteStore(context.Background(), path, opts...)
			if err != nil {
				t.Fatalf("open sqlite store: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func sample() report.Report {
	return report.Report{
		Label:           classify.LabelTooSteep,
		Confidence:      0.82,
		ConfidenceGap:   0.32,
		Probabilities:   map[string]float64{"too_steep": 0.82, "good_swing": 0.1, "too_flat": 0.08},
		PlaneAngle:      61.3,
		TempoRatio:      2.5,
		Insight:         report.Insight(classify.LabelTooSteep, 61.3),
		Recommendations: report.Recommendations,
		Diagnostics:     report.Diagnostics{ExtractionStatus: report.StatusSuccess, Frames: 30},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range stores() {
		Convey("Given a "+name+" store", t, func() {
			ctx := context.Background()
			s := open(t, WithClock(tick()))

			Convey("When a record is created", func() {
				rec, err := s.Create(ctx, "swing-1", 30)
				So(err, ShouldBeNil)
				So(rec.Status, ShouldEqual, StatusPending)

				Convey("Then it can be read back as pending", func() {
					got, err := s.Get(ctx, "swing-1")
					So(err, ShouldBeNil)
					So(got.Status, ShouldEqual, StatusPending)
					So(got.Frames, ShouldEqual, 30)
					So(got.Report, ShouldBeNil)
					So(got.CreatedAt.Equal(rec.CreatedAt), ShouldBeTrue)
				})

				Convey("Then creating the same id again fails", func() {
					_, err := s.Create(ctx, "swing-1", 30)
					So(errors.Is(err, ErrExists), ShouldBeTrue)
				})

				Convey("Then completing it stores the report", func() {
					So(s.Complete(ctx, "swing-1", sample()), ShouldBeNil)
					got, err := s.Get(ctx, "swing-1")
					So(err, ShouldBeNil)
					So(got.Status, ShouldEqual, StatusDone)
					So(got.Report, ShouldNotBeNil)
					So(got.Report.Label, ShouldEqual, classify.LabelTooSteep)
					So(got.Report.Probabilities["too_steep"], ShouldEqual, 0.82)
					So(got.Report.Recommendations, ShouldResemble, report.Recommendations)
					So(got.UpdatedAt.After(got.CreatedAt), ShouldBeTrue)
				})

				Convey("Then failing it stores the cause", func() {
					So(s.Fail(ctx, "swing-1", errors.New("inference failure")), ShouldBeNil)
					got, err := s.Get(ctx, "swing-1")
					So(err, ShouldBeNil)
					So(got.Status, ShouldEqual, StatusFailed)
					So(got.Error, ShouldEqual, "inference failure")
					So(got.Report, ShouldBeNil)
				})
			})

			Convey("When a record is deleted", func() {
				_, err := s.Create(ctx, "gone", 3)
				So(err, ShouldBeNil)
				So(s.Delete(ctx, "gone"), ShouldBeNil)
				So(s.Delete(ctx, "gone"), ShouldBeNil)

				Convey("Then its id can be reused", func() {
					_, err := s.Get(ctx, "gone")
					So(errors.Is(err, ErrNotFound), ShouldBeTrue)
					_, err = s.Create(ctx, "gone", 3)
					So(err, ShouldBeNil)
				})
			})

			Convey("When an unknown id is used", func() {
				_, err := s.Get(ctx, "missing")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(s.Complete(ctx, "missing", sample()), ErrNotFound), ShouldBeTrue)
				So(errors.Is(s.Fail(ctx, "missing", nil), ErrNotFound), ShouldBeTrue)
			})

			Convey("When several records exist", func() {
				for i := 0; i < 5; i++ {
					_, err := s.Create(ctx, fmt.Sprintf("swing-%d", i), 30)
					So(err, ShouldBeNil)
				}

				Convey("Then Recent returns the newest first", func() {
					recs, err := s.Recent(ctx, 3)
					So(err, ShouldBeNil)
					So(len(recs), ShouldEqual, 3)
					So(recs[0].ID, ShouldEqual, "swing-4")
					So(recs[2].ID, ShouldEqual, "swing-2")

					n, err := s.Count(ctx)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 5)
				})

				Convey("Then an out of range limit is rejected", func() {
					_, err := s.Recent(ctx, 0)
					So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
					_, err = s.Recent(ctx, maxRecentLimit+1)
					So(errors.Is(err, ErrInvalidLimit), ShouldBeTrue)
				})
			})
		})

		Convey("Given a "+name+" store bounded to three records", t, func() {
			ctx := context.Background()
			s := open(t, WithClock(tick()), WithCapacity(3))
			for i := 0; i < 5; i++ {
				_, err := s.Create(ctx, fmt.Sprintf("swing-%d", i), 30)
				So(err, ShouldBeNil)
			}

			Convey("Then the oldest records are dropped", func() {
				n, err := s.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
				_, err = s.Get(ctx, "swing-0")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				_, err = s.Get(ctx, "swing-4")
				So(err, ShouldBeNil)
			})
		})
	}
}

func TestSQLiteMigrations(t *testing.T) {
	Convey("Given a freshly opened sqlite store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "analyses.db")
		s, err := NewSQLiteStore(ctx, path)
		So(err, ShouldBeNil)

		Convey("Then the schema is at the latest version", func() {
			version, dirty, err := schemaVersion(s.db)
			So(err, ShouldBeNil)
			So(dirty, ShouldBeFalse)
			So(version, ShouldEqual, 1)
		})

		Convey("Then reopening the same file keeps the data", func() {
			_, err := s.Create(ctx, "kept", 12)
			So(err, ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			again, err := NewSQLiteStore(ctx, path)
			So(err, ShouldBeNil)
			defer again.Close()
			got, err := again.Get(ctx, "kept")
			So(err, ShouldBeNil)
			So(got.Frames, ShouldEqual, 12)
		})

		Reset(func() { _ = s.Close() })
	})

	Convey("Given an empty path", t, func() {
		_, err := NewSQLiteStore(context.Background(), "")
		So(err, ShouldNotBeNil)
	})
}

func TestMemoryStoreClosed(t *testing.T) {
	Convey("Given a closed memory store", t, func() {
		s := NewMemoryStore(context.Background())
		So(s.Close(), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("Then new records are refused", func() {
			_, err := s.Create(context.Background(), "late", 1)
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
		})
	})
}
