package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/swinglab/internal/app"
	"github.com/okian/swinglab/internal/adapters/repository"
	"github.com/okian/swinglab/internal/domain/classify"
	"github.com/okian/swinglab/internal/domain/pose"
	"github.com/okian/swinglab/internal/swingsim"
	"github.com/okian/swinglab/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func waitDone(svc *service.Service, id string) repository.Record {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := svc.Get(context.Background(), id)
		if err == nil && rec.Status != repository.StatusPending {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	rec, _ := svc.Get(context.Background(), id)
	return rec
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service that is not started", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))

		Convey("Then every operation reports it", func() {
			_, err := svc.Analyze(ctx, nil)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Submit(ctx, "x", nil)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Get(ctx, "x")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats(ctx).Started, ShouldBeFalse)
			So(svc.Stop(ctx), ShouldBeNil)
		})

		Convey("When it is started and stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats(ctx)
			So(stats.Started, ShouldBeTrue)
			So(stats.Workers, ShouldEqual, 2)
			So(stats.StoreDriver, ShouldEqual, service.StoreMemory)
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.GetStats(ctx).Started, ShouldBeFalse)
		})
	})

	Convey("Given an unknown store driver", t, func() {
		svc := service.New(service.WithStoreDriver("mongo", ""))
		So(svc.Start(context.Background()), ShouldNotBeNil)
	})
}

func TestServiceSubmit(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(16),
			service.WithIDGenerator(func() string { return "generated-id" }),
		)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("When a steep swing is submitted", func() {
			seq := swingsim.NewGenerator(swingsim.WithProfile(swingsim.ProfileSteep)).Swing()
			sub, err := svc.Submit(ctx, "swing-1", seq)
			So(err, ShouldBeNil)
			So(sub.Duplicate, ShouldBeFalse)
			So(sub.Record.ID, ShouldEqual, "swing-1")
			So(sub.Record.Frames, ShouldEqual, 30)

			Convey("Then the stored report is eventually available", func() {
				rec := waitDone(svc, "swing-1")
				So(rec.Status, ShouldEqual, repository.StatusDone)
				So(rec.Report, ShouldNotBeNil)
				So(rec.Report.Label, ShouldEqual, classify.LabelTooSteep)
			})

			Convey("Then resubmitting the id is a duplicate", func() {
				again, err := svc.Submit(ctx, "swing-1", seq)
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeTrue)
				So(again.Record.ID, ShouldEqual, "swing-1")
			})
		})

		Convey("When a swing is submitted without an id", func() {
			sub, err := svc.Submit(ctx, "", swingsim.NewGenerator().Swing())
			So(err, ShouldBeNil)
			So(sub.Record.ID, ShouldEqual, "generated-id")
		})

		Convey("When a degraded swing is submitted", func() {
			_, err := svc.Submit(ctx, "tiny", pose.Sequence{{}, {}})
			So(err, ShouldBeNil)

			Convey("Then it completes with a degraded report", func() {
				rec := waitDone(svc, "tiny")
				So(rec.Status, ShouldEqual, repository.StatusDone)
				So(rec.Report.Degraded(), ShouldBeTrue)
			})
		})

		Convey("When the sync path is used", func() {
			rep, err := svc.Analyze(ctx, swingsim.NewGenerator(swingsim.WithProfile(swingsim.ProfileFlat)).Swing())
			So(err, ShouldBeNil)
			So(rep.Label, ShouldEqual, classify.LabelTooFlat)
		})
	})
}

func TestServiceResubmitAfterEviction(t *testing.T) {
	Convey("Given a service that retains a single record", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1), service.WithStoreCapacity(1))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		seq := swingsim.NewGenerator().Swing()
		_, err := svc.Submit(ctx, "a", seq)
		So(err, ShouldBeNil)
		So(waitDone(svc, "a").Status, ShouldEqual, repository.StatusDone)
		_, err = svc.Submit(ctx, "b", seq)
		So(err, ShouldBeNil)
		So(waitDone(svc, "b").Status, ShouldEqual, repository.StatusDone)

		_, err = svc.Get(ctx, "a")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

		Convey("When the evicted id is submitted again", func() {
			sub, err := svc.Submit(ctx, "a", seq)
			So(err, ShouldBeNil)

			Convey("Then it is analyzed as a new submission", func() {
				So(sub.Duplicate, ShouldBeFalse)
				rec := waitDone(svc, "a")
				So(rec.Status, ShouldEqual, repository.StatusDone)
				So(rec.Report, ShouldNotBeNil)
			})
		})
	})
}

func TestServiceStopDrains(t *testing.T) {
	Convey("Given a sqlite service with one slow worker and a backlog", t, func() {
		path := filepath.Join(t.TempDir(), "drain.db")
		mock := classify.NewMock()
		good := mock.ClassifyFunc
		mock.ClassifyFunc = func(ctx context.Context, f []float64) (classify.Prediction, error) {
			time.Sleep(20 * time.Millisecond)
			return good(ctx, f)
		}
		runCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(16),
			service.WithClassifier(mock),
			service.WithStoreDriver(service.StoreSQLite, path),
		)
		So(svc.Start(runCtx), ShouldBeNil)
		for i := 0; i < 10; i++ {
			_, err := svc.Submit(runCtx, fmt.Sprintf("swing-%d", i), swingsim.NewGenerator().Swing())
			So(err, ShouldBeNil)
		}

		Convey("When the start context is canceled and the service stops", func() {
			time.Sleep(30 * time.Millisecond)
			cancel()
			So(svc.Stop(context.Background()), ShouldBeNil)

			Convey("Then every queued swing was analyzed before the store closed", func() {
				ctx := context.Background()
				again := service.New(service.WithWorkerCount(1), service.WithStoreDriver(service.StoreSQLite, path))
				So(again.Start(ctx), ShouldBeNil)
				defer func() { _ = again.Stop(ctx) }()

				recent, err := again.Recent(ctx, 20)
				So(err, ShouldBeNil)
				So(len(recent), ShouldEqual, 10)
				for _, rec := range recent {
					So(rec.Status, ShouldEqual, repository.StatusDone)
				}
			})
		})
	})
}

func TestServiceFailures(t *testing.T) {
	Convey("Given a service whose classifier fails", t, func() {
		ctx := context.Background()
		mock := classify.NewMock()
		mock.ClassifyFunc = func(context.Context, []float64) (classify.Prediction, error) {
			return classify.Prediction{Label: "banana", Confidence: 0.5}, nil
		}
		svc := service.New(service.WithWorkerCount(1), service.WithClassifier(mock))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("When a swing is submitted", func() {
			_, err := svc.Submit(ctx, "bad", swingsim.NewGenerator().Swing())
			So(err, ShouldBeNil)

			Convey("Then the record is failed with the cause", func() {
				rec := waitDone(svc, "bad")
				So(rec.Status, ShouldEqual, repository.StatusFailed)
				So(rec.Error, ShouldContainSubstring, "inference failure")
			})
		})

		Convey("When the sync path is used", func() {
			_, err := svc.Analyze(ctx, swingsim.NewGenerator().Swing())
			So(errors.Is(err, classify.ErrInferenceFailure), ShouldBeTrue)
		})
	})

	Convey("Given a service with a full queue", t, func() {
		ctx := context.Background()
		release := make(chan struct{})
		mock := classify.NewMock()
		good := mock.ClassifyFunc
		mock.ClassifyFunc = func(ctx context.Context, f []float64) (classify.Prediction, error) {
			<-release
			return good(ctx, f)
		}
		svc := service.New(service.WithWorkerCount(1), service.WithQueueSize(1), service.WithClassifier(mock))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() {
			close(release)
			_ = svc.Stop(ctx)
		})

		var (
			err      error
			rejected string
		)
		for i := 0; i < 4 && err == nil; i++ {
			rejected = fmt.Sprintf("swing-%d", i)
			_, err = svc.Submit(ctx, rejected, swingsim.NewGenerator().Swing())
		}

		Convey("Then submissions are rejected with backpressure and leave no trace", func() {
			So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
			_, gerr := svc.Get(ctx, rejected)
			So(errors.Is(gerr, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestServiceSQLite(t *testing.T) {
	Convey("Given a service backed by sqlite", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "swings.db")
		svc := service.New(service.WithWorkerCount(1), service.WithStoreDriver(service.StoreSQLite, path))
		So(svc.Start(ctx), ShouldBeNil)

		_, err := svc.Submit(ctx, "persisted", swingsim.NewGenerator().Swing())
		So(err, ShouldBeNil)
		So(waitDone(svc, "persisted").Status, ShouldEqual, repository.StatusDone)
		So(svc.Stop(ctx), ShouldBeNil)

		Convey("Then the analysis survives a restart", func() {
			again := service.New(service.WithWorkerCount(1), service.WithStoreDriver(service.StoreSQLite, path))
			So(again.Start(ctx), ShouldBeNil)
			defer func() { _ = again.Stop(ctx) }()

			rec, err := again.Get(ctx, "persisted")
			So(err, ShouldBeNil)
			So(rec.Report, ShouldNotBeNil)
			So(rec.Report.Label, ShouldEqual, classify.LabelGoodSwing)

			recent, err := again.Recent(ctx, 10)
			So(err, ShouldBeNil)
			So(len(recent), ShouldEqual, 1)
		})
	})
}
