package geometry_test

import (
	"math"
	"testing"

	"github.com/okian/swinglab/internal/domain/geometry"
	"github.com/okian/swinglab/internal/domain/pose"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

// address returns a square-on upright stance used as the reference frame.
func address() pose.Observation {
	return pose.Observation{}.
		With(pose.Nose, 0.5, 0.15, 1).
		With(pose.LeftShoulder, 0.4, 0.3, 1).
		With(pose.RightShoulder, 0.6, 0.3, 1).
		With(pose.LeftElbow, 0.4, 0.4, 1).
		With(pose.RightElbow, 0.6, 0.4, 1).
		With(pose.LeftWrist, 0.4, 0.6, 1).
		With(pose.RightWrist, 0.6, 0.6, 1).
		With(pose.LeftHip, 0.4, 0.5, 1).
		With(pose.RightHip, 0.6, 0.5, 1).
		With(pose.LeftKnee, 0.38, 0.7, 1).
		With(pose.RightKnee, 0.62, 0.7, 1).
		With(pose.LeftAnkle, 0.3, 0.9, 1).
		With(pose.RightAnkle, 0.7, 0.9, 1)
}

func TestAngleCalculators(t *testing.T) {
	Convey("Given an upright address pose", t, func() {
		obs := address()

		Convey("Then the spine is vertical", func() {
			So(geometry.SpineAngle(obs), ShouldAlmostEqual, 0, tolerance)
		})

		Convey("When the shoulders shift forward", func() {
			tilted := obs.With(pose.LeftShoulder, 0.6, 0.3, 1).With(pose.RightShoulder, 0.8, 0.3, 1)

			Convey("Then the spine tilts by 45 degrees", func() {
				So(geometry.SpineAngle(tilted), ShouldAlmostEqual, 45, tolerance)
			})
		})

		Convey("When the elbow bends at a right angle", func() {
			bent := obs.With(pose.LeftElbow, 0.5, 0.4, 1).
				With(pose.LeftShoulder, 0.5, 0.2, 1).
				With(pose.LeftWrist, 0.7, 0.4, 1)

			Convey("Then the elbow angle is 90", func() {
				So(geometry.ElbowAngle(bent, pose.Left), ShouldAlmostEqual, 90, tolerance)
			})
		})

		Convey("Then straight arms hang vertically", func() {
			So(geometry.ArmHangAngle(obs, pose.Left), ShouldAlmostEqual, 0, tolerance)
			reached := obs.With(pose.LeftWrist, 0.7, 0.6, 1)
			So(geometry.ArmHangAngle(reached, pose.Left), ShouldAlmostEqual, 45, tolerance)
		})

		Convey("Then a flexed knee reads below 180", func() {
			knee := geometry.KneeFlexion(obs, pose.Left)
			So(knee, ShouldBeGreaterThan, 90)
			So(knee, ShouldBeLessThan, 180)
			So(geometry.KneeFlexion(obs, pose.Right), ShouldAlmostEqual, knee, tolerance)
		})

		Convey("When a required joint is missing", func() {
			missing := obs.Without(pose.LeftWrist).Without(pose.RightHip)

			Convey("Then the calculators return zero", func() {
				So(geometry.ElbowAngle(missing, pose.Left), ShouldEqual, 0)
				So(geometry.ArmHangAngle(missing, pose.Left), ShouldEqual, 0)
				So(geometry.SpineAngle(missing), ShouldEqual, 0)
				So(geometry.KneeFlexion(missing, pose.Right), ShouldEqual, 0)
			})
		})
	})
}

func TestTurnAngle(t *testing.T) {
	Convey("Given an address reference with a 0.2 wide shoulder line", t, func() {
		ref := address()

		Convey("When the shoulder line is half as wide", func() {
			turned := ref.With(pose.LeftShoulder, 0.45, 0.3, 1).With(pose.RightShoulder, 0.55, 0.3, 1)

			Convey("Then the turn is 60 degrees", func() {
				So(geometry.ShoulderTurn(ref, turned), ShouldAlmostEqual, 60, tolerance)
			})
		})

		Convey("When the line is wider than at address", func() {
			wide := ref.With(pose.LeftShoulder, 0.3, 0.3, 1)

			Convey("Then the turn is clamped to zero", func() {
				So(geometry.ShoulderTurn(ref, wide), ShouldAlmostEqual, 0, tolerance)
			})
		})

		Convey("When the reference has no width", func() {
			flat := ref.With(pose.RightHip, 0.4, 0.5, 1)
			So(geometry.HipTurn(flat, ref), ShouldEqual, 0)
		})
	})
}

func TestRatioCalculators(t *testing.T) {
	Convey("Given an address pose", t, func() {
		obs := address()

		Convey("Then stance width is twice the shoulder width", func() {
			So(geometry.StanceWidthRatio(obs), ShouldAlmostEqual, 2, tolerance)
		})

		Convey("Then weight is centered", func() {
			So(geometry.WeightDistribution(obs), ShouldAlmostEqual, 0, tolerance)
		})

		Convey("When the hips shift toward the right ankle", func() {
			shifted := obs.With(pose.LeftHip, 0.5, 0.5, 1).With(pose.RightHip, 0.7, 0.5, 1)
			So(geometry.WeightDistribution(shifted), ShouldAlmostEqual, 0.5, tolerance)
		})

		Convey("When the hips move past the ankle", func() {
			far := obs.With(pose.LeftHip, 0.9, 0.5, 1).With(pose.RightHip, 1.0, 0.5, 1)
			So(geometry.WeightDistribution(far), ShouldEqual, 1)
		})

		Convey("Then wrist height is measured from the shoulder center", func() {
			So(geometry.WristHeight(obs, pose.Left), ShouldAlmostEqual, -0.3, tolerance)
			raised := obs.With(pose.LeftWrist, 0.4, 0.1, 1)
			So(geometry.WristHeight(raised, pose.Left), ShouldAlmostEqual, 0.2, tolerance)
		})
	})
}

func TestSequenceCalculators(t *testing.T) {
	Convey("Given a short wrist path", t, func() {
		ref := address()
		window := pose.Sequence{
			withTS(ref.With(pose.LeftWrist, 0, 0, 1), 0),
			withTS(ref.With(pose.LeftWrist, 0.3, 0.4, 1), 0.5),
			withTS(ref.With(pose.LeftWrist, 0.3, 0.4, 1), 1.0),
		}

		Convey("Then displacement and speeds follow the path", func() {
			So(geometry.CumulativeDisplacement(window, pose.LeftWrist), ShouldAlmostEqual, 0.5, tolerance)
			So(geometry.PathSpeed(window, pose.LeftWrist), ShouldAlmostEqual, 0.5, tolerance)
			So(geometry.MaxJointSpeed(window, pose.LeftWrist), ShouldAlmostEqual, 1.0, tolerance)
		})

		Convey("Then a joint never detected yields zero", func() {
			blind := pose.Sequence{window[0].Without(pose.Nose), window[1].Without(pose.Nose)}
			So(geometry.CumulativeDisplacement(blind, pose.Nose), ShouldEqual, 0)
			So(geometry.PositionVariance(blind, pose.Nose), ShouldEqual, 0)
		})

		Convey("Then positional variance sums both axes", func() {
			pair := pose.Sequence{
				ref.With(pose.LeftKnee, 0.3, 0.7, 1),
				ref.With(pose.LeftKnee, 0.5, 0.7, 1),
			}
			So(geometry.PositionVariance(pair, pose.LeftKnee), ShouldAlmostEqual, 0.02, tolerance)
		})
	})

	Convey("Given a rotating shoulder line", t, func() {
		ref := address()
		window := pose.Sequence{
			withTS(ref, 0),
			withTS(ref.With(pose.LeftShoulder, 0.45, 0.3, 1).With(pose.RightShoulder, 0.55, 0.3, 1), 0.5),
		}

		Convey("Then rotation speed is degrees per second", func() {
			So(geometry.ShoulderRotationSpeed(ref, window), ShouldAlmostEqual, 120, 1e-6)
			So(geometry.MaxShoulderTurn(ref, window), ShouldAlmostEqual, 60, 1e-6)
		})

		Convey("When the timestamps do not advance", func() {
			frozen := pose.Sequence{withTS(window[0], 1), withTS(window[1], 1)}
			So(geometry.ShoulderRotationSpeed(ref, frozen), ShouldEqual, 0)
			So(geometry.PathSpeed(frozen, pose.LeftWrist), ShouldEqual, 0)
		})

		Convey("When the timestamps are only a subnormal step apart", func() {
			tiny := pose.Sequence{
				withTS(window[0], 0),
				withTS(window[1].With(pose.LeftWrist, 0.5, 0.7, 1), 5e-324),
			}

			Convey("Then the rates fall back to zero instead of overflowing", func() {
				So(geometry.ShoulderRotationSpeed(ref, tiny), ShouldEqual, 0)
				So(geometry.PathSpeed(tiny, pose.LeftWrist), ShouldEqual, 0)
				So(geometry.MaxJointSpeed(tiny, pose.LeftWrist), ShouldEqual, 0)
				So(geometry.CumulativeDisplacement(tiny, pose.LeftWrist), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the window has a single observation", func() {
			So(geometry.MaxShoulderTurn(ref, window[:1]), ShouldEqual, 0)
			So(geometry.MaxElbowAngle(window[:1], pose.Left), ShouldEqual, 0)
			So(geometry.HipRotationSpeed(ref, window[:1]), ShouldEqual, 0)
		})
	})

	Convey("Given frame counts", t, func() {
		So(geometry.PhaseTempo(20, 30), ShouldAlmostEqual, 2.0/3.0, tolerance)
		So(geometry.PhaseTempo(5, 0), ShouldEqual, 0)
		So(geometry.FrameRatio(20, 8), ShouldEqual, 2.5)
		So(geometry.FrameRatio(3, 0), ShouldEqual, 0)
	})
}

func TestSwingPlane(t *testing.T) {
	Convey("Given lead wrist paths", t, func() {
		path := func(pts ...pose.Point) pose.Sequence {
			seq := make(pose.Sequence, len(pts))
			for i, p := range pts {
				seq[i] = withTS(address().With(pose.LeftWrist, p.X, p.Y, 1), float64(i)*0.1)
			}
			return seq
		}

		Convey("When the wrist travels diagonally", func() {
			angle, ok := geometry.SwingPlane(path(pose.Point{X: 0.1, Y: 0.1}, pose.Point{X: 0.2, Y: 0.2}, pose.Point{X: 0.3, Y: 0.3}))
			So(ok, ShouldBeTrue)
			So(angle, ShouldAlmostEqual, 45, 1e-6)
		})

		Convey("When the wrist rises steeply", func() {
			angle, ok := geometry.SwingPlane(path(pose.Point{X: 0.1, Y: 0.6}, pose.Point{X: 0.2, Y: 0.4}, pose.Point{X: 0.3, Y: 0.2}))
			So(ok, ShouldBeTrue)
			So(angle, ShouldAlmostEqual, math.Atan(2)*180/math.Pi, 1e-6)
		})

		Convey("When the wrist travels straight up", func() {
			angle, ok := geometry.SwingPlane(path(pose.Point{X: 0.5, Y: 0.6}, pose.Point{X: 0.5, Y: 0.4}, pose.Point{X: 0.5, Y: 0.2}))
			So(ok, ShouldBeTrue)
			So(angle, ShouldAlmostEqual, 90, 1e-6)
		})

		Convey("When fewer than three distinct positions exist", func() {
			seq := path(pose.Point{X: 0.4, Y: 0.6}, pose.Point{X: 0.4, Y: 0.6}, pose.Point{X: 0.45, Y: 0.5})
			angle, ok := geometry.SwingPlane(seq)
			So(ok, ShouldBeFalse)
			So(angle, ShouldEqual, 0)
			So(geometry.SwingPlaneAngle(seq), ShouldEqual, 0)
		})

		Convey("When the wrist is never detected", func() {
			seq := pose.Sequence{address().Without(pose.LeftWrist), address().Without(pose.LeftWrist)}
			So(geometry.SwingPlaneAngle(seq), ShouldEqual, 0)
		})
	})
}

func withTS(obs pose.Observation, ts float64) pose.Observation {
	obs.Timestamp = ts
	return obs
}
