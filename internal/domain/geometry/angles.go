// Package geometry implements the stateless calculators that turn pose
// observations into swing measurements.
//
// Every calculator is total: when a required joint is not detected the result
// is 0.0. Coordinates are normalized image coordinates, so y grows downward.
package geometry

import (
	"math"

	"github.com/okian/swinglab/internal/domain/pose"
)

// epsilon guards divisions by near-zero lengths.
const epsilon = 1e-9

var (
	up   = pose.Point{X: 0, Y: -1}
	down = pose.Point{X: 0, Y: 1}
)

func sub(a, b pose.Point) pose.Point {
	return pose.Point{X: a.X - b.X, Y: a.Y - b.Y}
}

func norm(v pose.Point) float64 {
	return math.Hypot(v.X, v.Y)
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// angleBetween returns the unsigned angle between u and v in degrees, or 0
// when either vector has no length.
func angleBetween(u, v pose.Point) float64 {
	nu, nv := norm(u), norm(v)
	if nu < epsilon || nv < epsilon {
		return 0
	}
	cos := (u.X*v.X + u.Y*v.Y) / (nu * nv)
	return degrees(math.Acos(clamp(cos, -1, 1)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func points(obs pose.Observation, jts ...pose.JointType) ([]pose.Point, bool) {
	out := make([]pose.Point, len(jts))
	for i, jt := range jts {
		p, ok := obs.Point(jt)
		if !ok {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}

func sideJoints(side pose.Side) (shoulder, elbow, wrist, hip, knee, ankle pose.JointType) {
	if side == pose.Right {
		return pose.RightShoulder, pose.RightElbow, pose.RightWrist, pose.RightHip, pose.RightKnee, pose.RightAnkle
	}
	return pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, pose.LeftHip, pose.LeftKnee, pose.LeftAnkle
}

// JointAngle returns the included angle at b formed by the segments b→a and b→c.
func JointAngle(obs pose.Observation, a, b, c pose.JointType) float64 {
	p, ok := points(obs, a, b, c)
	if !ok {
		return 0
	}
	return angleBetween(sub(p[0], p[1]), sub(p[2], p[1]))
}

// SpineAngle returns the forward tilt of the hip-to-shoulder line from vertical.
func SpineAngle(obs pose.Observation) float64 {
	p, ok := points(obs, pose.LeftShoulder, pose.RightShoulder, pose.LeftHip, pose.RightHip)
	if !ok {
		return 0
	}
	shoulders := pose.Midpoint(p[0], p[1])
	hips := pose.Midpoint(p[2], p[3])
	return angleBetween(sub(shoulders, hips), up)
}

// KneeFlexion returns the included hip-knee-ankle angle; 180 is a locked leg.
func KneeFlexion(obs pose.Observation, side pose.Side) float64 {
	_, _, _, hip, knee, ankle := sideJoints(side)
	return JointAngle(obs, hip, knee, ankle)
}

// ElbowAngle returns the included shoulder-elbow-wrist angle.
func ElbowAngle(obs pose.Observation, side pose.Side) float64 {
	shoulder, elbow, wrist, _, _, _ := sideJoints(side)
	return JointAngle(obs, shoulder, elbow, wrist)
}

// ArmHangAngle returns how far the shoulder-to-wrist line hangs away from
// straight down.
func ArmHangAngle(obs pose.Observation, side pose.Side) float64 {
	shoulder, _, wrist, _, _, _ := sideJoints(side)
	p, ok := points(obs, shoulder, wrist)
	if !ok {
		return 0
	}
	return angleBetween(sub(p[1], p[0]), down)
}

// TurnAngle estimates the rotation of the a-b joint pair relative to the
// reference (address) frame from the foreshortening of its horizontal width.
func TurnAngle(ref, obs pose.Observation, a, b pose.JointType) float64 {
	r, ok := points(ref, a, b)
	if !ok {
		return 0
	}
	p, ok := points(obs, a, b)
	if !ok {
		return 0
	}
	refWidth := math.Abs(r[0].X - r[1].X)
	if refWidth < epsilon {
		return 0
	}
	ratio := clamp(math.Abs(p[0].X-p[1].X)/refWidth, 0, 1)
	return degrees(math.Acos(ratio))
}

// ShoulderTurn is TurnAngle over the shoulder line.
func ShoulderTurn(ref, obs pose.Observation) float64 {
	return TurnAngle(ref, obs, pose.LeftShoulder, pose.RightShoulder)
}

// HipTurn is TurnAngle over the hip line.
func HipTurn(ref, obs pose.Observation) float64 {
	return TurnAngle(ref, obs, pose.LeftHip, pose.RightHip)
}
