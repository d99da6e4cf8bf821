package phase_test

import (
	"testing"

	"github.com/okian/swinglab/internal/domain/phase"
	"github.com/okian/swinglab/internal/domain/pose"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSegment(t *testing.T) {
	Convey("Given a 30 frame swing", t, func() {
		s := phase.Segment(30)

		Convey("Then the boundaries follow the fixed fractions", func() {
			So(s.Range(phase.Setup), ShouldResemble, phase.Range{Start: 0, End: 1})
			So(s.Range(phase.Backswing), ShouldResemble, phase.Range{Start: 0, End: 20})
			So(s.Range(phase.Transition), ShouldResemble, phase.Range{Start: 20, End: 22})
			So(s.Range(phase.Downswing), ShouldResemble, phase.Range{Start: 22, End: 30})
			So(s.Range(phase.ImpactFollowThrough), ShouldResemble, phase.Range{Start: 25, End: 30})
		})

		Convey("Then every phase is sufficient", func() {
			for _, p := range phase.Phases() {
				So(s.Sufficient(p), ShouldBeTrue)
			}
		})
	})

	Convey("Given a 10 frame swing", t, func() {
		s := phase.Segment(10)

		Convey("Then the transition collapses to one frame", func() {
			So(s.Range(phase.Transition), ShouldResemble, phase.Range{Start: 6, End: 7})
			So(s.Sufficient(phase.Transition), ShouldBeFalse)
		})

		Convey("Then the finish window is two frames", func() {
			So(s.Range(phase.ImpactFollowThrough).Len(), ShouldEqual, 2)
		})
	})

	Convey("Given a 3 frame swing", t, func() {
		s := phase.Segment(3)

		Convey("Then only setup and backswing windows carry data", func() {
			So(s.Range(phase.Backswing), ShouldResemble, phase.Range{Start: 0, End: 2})
			So(s.Range(phase.Transition).Len(), ShouldEqual, 0)
			So(s.Range(phase.Downswing), ShouldResemble, phase.Range{Start: 2, End: 3})
			So(s.Sufficient(phase.Setup), ShouldBeTrue)
			So(s.Sufficient(phase.Downswing), ShouldBeFalse)
			So(s.Sufficient(phase.ImpactFollowThrough), ShouldBeFalse)
		})
	})

	Convey("Given a long swing", t, func() {
		s := phase.Segment(200)

		Convey("Then the finish window is capped at five frames", func() {
			So(s.Range(phase.ImpactFollowThrough), ShouldResemble, phase.Range{Start: 195, End: 200})
		})
	})

	Convey("Given an empty sequence", t, func() {
		s := phase.Segment(0)
		So(s.Range(phase.Backswing).Len(), ShouldEqual, 0)
		So(s.Range(phase.Phase(9)), ShouldResemble, phase.Range{})
	})
}

func TestPhaseBlocks(t *testing.T) {
	Convey("Given the phase block sizes", t, func() {
		total := 0
		for _, p := range phase.Phases() {
			total += p.BlockSize()
		}

		Convey("Then they add up to the feature vector length", func() {
			So(total, ShouldEqual, 35)
		})

		Convey("Then names are stable", func() {
			So(phase.Backswing.String(), ShouldEqual, "backswing")
			So(phase.ImpactFollowThrough.String(), ShouldEqual, "impact_follow_through")
			So(phase.Phase(-1).String(), ShouldEqual, "unknown")
		})
	})

	Convey("Given a sequence and its segments", t, func() {
		seq := make(pose.Sequence, 12)
		for i := range seq {
			seq[i].Timestamp = float64(i)
		}
		s := phase.Segment(seq.Len())

		Convey("Then windows slice the sequence", func() {
			w := s.Window(seq, phase.Downswing)
			So(w.Len(), ShouldEqual, 3)
			So(w[0].Timestamp, ShouldEqual, 9)
		})
	})
}
