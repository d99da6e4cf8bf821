package geometry

import (
	"math"

	"github.com/okian/swinglab/internal/domain/pose"
	"gonum.org/v1/gonum/stat"
)

const (
	// minPlanePoints is the number of distinct wrist positions needed to fit a plane.
	minPlanePoints = 3
	// distinctTolerance is the distance under which two positions are the same.
	distinctTolerance = 1e-6
)

// SwingPlane estimates the inclination of the lead wrist's travel during
// window, in degrees from horizontal within [0,90]. The fit is the principal
// axis of the wrist positions, so near-vertical travel is handled as well as
// shallow travel. ok is false when fewer than three distinct positions exist.
func SwingPlane(window pose.Sequence) (angle float64, ok bool) {
	var xs, ys []float64
	for _, obs := range window {
		p, found := obs.Point(pose.LeftWrist)
		if !found {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	if distinctPoints(xs, ys) < minPlanePoints {
		return 0, false
	}

	varX := stat.Variance(xs, nil)
	varY := stat.Variance(ys, nil)
	cov := stat.Covariance(xs, ys, nil)
	if varX+varY < epsilon*epsilon {
		return 0, false
	}
	theta := 0.5 * math.Atan2(2*cov, varX-varY)
	return math.Abs(degrees(theta)), true
}

// SwingPlaneAngle is SwingPlane collapsed to the numeric contract of the
// feature vector: 0.0 when no plane could be fitted.
func SwingPlaneAngle(window pose.Sequence) float64 {
	angle, ok := SwingPlane(window)
	if !ok {
		return 0
	}
	return angle
}

func distinctPoints(xs, ys []float64) int {
	var seen []pose.Point
	for i := range xs {
		p := pose.Point{X: xs[i], Y: ys[i]}
		dup := false
		for _, q := range seen {
			if pose.Distance(p, q) <= distinctTolerance {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, p)
			if len(seen) >= minPlanePoints {
				return len(seen)
			}
		}
	}
	return len(seen)
}
