package model_test

import (
	"testing"
	"time"

	"github.com/okian/swinglab/internal/domain/model"
	"github.com/okian/swinglab/internal/domain/pose"
	"github.com/smartystreets/goconvey/convey"
)

func TestJob(t *testing.T) {
	convey.Convey("Given a job with three observations", t, func() {
		submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		job := model.Job{
			ID:          "swing-1",
			Sequence:    make(pose.Sequence, 3),
			SubmittedAt: submitted,
		}

		convey.Convey("Then it reports its frame count", func() {
			convey.So(job.Frames(), convey.ShouldEqual, 3)
		})

		convey.Convey("Then the wait is measured from submission", func() {
			convey.So(job.Wait(submitted.Add(2*time.Second)), convey.ShouldEqual, 2*time.Second)
		})
	})

	convey.Convey("Given a zero job", t, func() {
		job := model.Job{}
		convey.So(job.Frames(), convey.ShouldEqual, 0)
		convey.So(job.Wait(time.Now()), convey.ShouldEqual, time.Duration(0))
	})
}
