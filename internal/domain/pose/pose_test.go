package pose_test

import (
	"errors"
	"testing"

	"github.com/okian/swinglab/internal/domain/pose"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJointType(t *testing.T) {
	Convey("Given the closed joint enumeration", t, func() {
		Convey("Then it should contain 17 joints with unique names", func() {
			seen := map[string]bool{}
			for _, jt := range pose.AllJoints() {
				seen[jt.String()] = true
			}
			So(len(pose.AllJoints()), ShouldEqual, pose.NumJoints)
			So(len(seen), ShouldEqual, 17)
		})

		Convey("When parsing wire names", func() {
			jt, err := pose.ParseJointType(" Left_Wrist ")
			So(err, ShouldBeNil)
			So(jt, ShouldEqual, pose.LeftWrist)

			_, err = pose.ParseJointType("left_toe")
			So(errors.Is(err, pose.ErrUnknownJoint), ShouldBeTrue)
		})

		Convey("Then out-of-range values should not be valid", func() {
			So(pose.JointType(-1).Valid(), ShouldBeFalse)
			So(pose.JointType(pose.NumJoints).Valid(), ShouldBeFalse)
			So(pose.JointType(99).String(), ShouldEqual, "joint(99)")
		})
	})
}

func TestObservation(t *testing.T) {
	Convey("Given an observation built from a map", t, func() {
		obs := pose.NewObservation(0.5, map[pose.JointType]pose.Joint{
			pose.LeftWrist: {X: 0.4, Y: 0.6, Confidence: 0.1},
		})

		Convey("Then a low-confidence joint is still present", func() {
			j, ok := obs.Joint(pose.LeftWrist)
			So(ok, ShouldBeTrue)
			So(j.Confidence, ShouldEqual, 0.1)
		})

		Convey("Then an absent joint is reported as missing", func() {
			_, ok := obs.Joint(pose.RightWrist)
			So(ok, ShouldBeFalse)
			So(obs.Has(pose.LeftWrist, pose.RightWrist), ShouldBeFalse)
		})

		Convey("When modifying through With and Without", func() {
			next := obs.With(pose.RightWrist, 0.5, 0.5, 0.9)
			gone := next.Without(pose.LeftWrist)

			Convey("Then the original is unchanged", func() {
				So(obs.Detected(), ShouldEqual, 1)
				So(next.Detected(), ShouldEqual, 2)
				So(gone.Detected(), ShouldEqual, 1)
				So(gone.Has(pose.RightWrist), ShouldBeTrue)
			})
		})
	})
}

func TestSequenceWindow(t *testing.T) {
	Convey("Given a sequence of five observations", t, func() {
		seq := make(pose.Sequence, 5)
		for i := range seq {
			seq[i] = pose.Observation{Timestamp: float64(i) * 0.1}
		}

		Convey("Then windows are clamped to bounds", func() {
			So(seq.Window(-3, 2).Len(), ShouldEqual, 2)
			So(seq.Window(3, 99).Len(), ShouldEqual, 2)
			So(seq.Window(4, 2).Len(), ShouldEqual, 0)
		})

		Convey("Then duration spans first to last timestamp", func() {
			So(seq.Duration(), ShouldAlmostEqual, 0.4, 1e-12)
			So(pose.Sequence{}.Duration(), ShouldEqual, 0)
		})

		Convey("Then first and last are reported", func() {
			first, ok := seq.First()
			So(ok, ShouldBeTrue)
			So(first.Timestamp, ShouldEqual, 0)
			_, ok = pose.Sequence{}.Last()
			So(ok, ShouldBeFalse)
		})
	})
}
