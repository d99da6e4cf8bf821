package geometry

import (
	"math"

	"github.com/okian/swinglab/internal/domain/pose"
)

// StanceWidthRatio returns ankle separation divided by shoulder separation.
func StanceWidthRatio(obs pose.Observation) float64 {
	p, ok := points(obs, pose.LeftAnkle, pose.RightAnkle, pose.LeftShoulder, pose.RightShoulder)
	if !ok {
		return 0
	}
	shoulders := pose.Distance(p[2], p[3])
	if shoulders < epsilon {
		return 0
	}
	return pose.Distance(p[0], p[1]) / shoulders
}

// WeightDistribution locates the hip center between the ankles: -1 over the
// left ankle, +1 over the right ankle, 0 centered.
func WeightDistribution(obs pose.Observation) float64 {
	p, ok := points(obs, pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle)
	if !ok {
		return 0
	}
	hips := pose.Midpoint(p[0], p[1])
	ankles := pose.Midpoint(p[2], p[3])
	halfStance := (p[3].X - p[2].X) / 2
	if math.Abs(halfStance) < epsilon {
		return 0
	}
	return clamp((hips.X-ankles.X)/halfStance, -1, 1)
}

// WristHeight returns how far the wrist sits above the shoulder center.
// Positive values mean the hands are above the shoulders.
func WristHeight(obs pose.Observation, side pose.Side) float64 {
	_, _, wrist, _, _, _ := sideJoints(side)
	p, ok := points(obs, pose.LeftShoulder, pose.RightShoulder, wrist)
	if !ok {
		return 0
	}
	return pose.Midpoint(p[0], p[1]).Y - p[2].Y
}
