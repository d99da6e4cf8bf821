package geometry

import (
	"math"

	"github.com/okian/swinglab/internal/domain/pose"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// minWindow is the smallest window the sequence calculators operate on.
const minWindow = 2

// maxOver applies f to every observation and returns the largest magnitude.
func maxOver(window pose.Sequence, f func(pose.Observation) float64) float64 {
	if window.Len() < minWindow {
		return 0
	}
	vals := make([]float64, window.Len())
	for i, obs := range window {
		vals[i] = math.Abs(f(obs))
	}
	return floats.Max(vals)
}

// MaxShoulderTurn returns the largest shoulder turn in window relative to ref.
func MaxShoulderTurn(ref pose.Observation, window pose.Sequence) float64 {
	return maxOver(window, func(obs pose.Observation) float64 { return ShoulderTurn(ref, obs) })
}

// MaxHipTurn returns the largest hip turn in window relative to ref.
func MaxHipTurn(ref pose.Observation, window pose.Sequence) float64 {
	return maxOver(window, func(obs pose.Observation) float64 { return HipTurn(ref, obs) })
}

// MaxElbowAngle returns the widest elbow angle reached in window.
func MaxElbowAngle(window pose.Sequence, side pose.Side) float64 {
	return maxOver(window, func(obs pose.Observation) float64 { return ElbowAngle(obs, side) })
}

// PhaseTempo returns the share of the total frame count spent in a phase.
func PhaseTempo(phaseFrames, totalFrames int) float64 {
	if totalFrames <= 0 || phaseFrames <= 0 {
		return 0
	}
	return float64(phaseFrames) / float64(totalFrames)
}

// FrameRatio divides two frame counts, returning 0 when the divisor is empty.
func FrameRatio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// rate divides num by dt, returning 0 for an empty interval or a result
// that does not fit in a float64.
func rate(num, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	r := num / dt
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0
	}
	return r
}

// RotationSpeed returns the change in a-b turn angle per second between the
// first and last observation of window.
func RotationSpeed(ref pose.Observation, window pose.Sequence, a, b pose.JointType) float64 {
	if window.Len() < minWindow {
		return 0
	}
	first, last := window[0], window[window.Len()-1]
	if !first.Has(a, b) || !last.Has(a, b) {
		return 0
	}
	return rate(TurnAngle(ref, last, a, b)-TurnAngle(ref, first, a, b), last.Timestamp-first.Timestamp)
}

// ShoulderRotationSpeed is RotationSpeed over the shoulder line.
func ShoulderRotationSpeed(ref pose.Observation, window pose.Sequence) float64 {
	return RotationSpeed(ref, window, pose.LeftShoulder, pose.RightShoulder)
}

// HipRotationSpeed is RotationSpeed over the hip line.
func HipRotationSpeed(ref pose.Observation, window pose.Sequence) float64 {
	return RotationSpeed(ref, window, pose.LeftHip, pose.RightHip)
}

// steps returns the displacement and elapsed time between consecutive
// observations where jt was detected in both.
func steps(window pose.Sequence, jt pose.JointType) (dist, dt []float64) {
	for i := 1; i < window.Len(); i++ {
		p, ok := window[i-1].Point(jt)
		if !ok {
			continue
		}
		q, ok := window[i].Point(jt)
		if !ok {
			continue
		}
		dist = append(dist, pose.Distance(p, q))
		dt = append(dt, window[i].Timestamp-window[i-1].Timestamp)
	}
	return dist, dt
}

// CumulativeDisplacement sums the frame-to-frame travel of jt across window.
func CumulativeDisplacement(window pose.Sequence, jt pose.JointType) float64 {
	dist, _ := steps(window, jt)
	if len(dist) == 0 {
		return 0
	}
	return floats.Sum(dist)
}

// PathSpeed returns the travelled path of jt divided by the window duration.
func PathSpeed(window pose.Sequence, jt pose.JointType) float64 {
	return rate(CumulativeDisplacement(window, jt), window.Duration())
}

// MaxJointSpeed returns the fastest frame-to-frame speed of jt in window.
func MaxJointSpeed(window pose.Sequence, jt pose.JointType) float64 {
	dist, dt := steps(window, jt)
	best := 0.0
	for i := range dist {
		best = math.Max(best, rate(dist[i], dt[i]))
	}
	return best
}

// PositionVariance returns var(x)+var(y) of jt over the frames it was detected in.
func PositionVariance(window pose.Sequence, jt pose.JointType) float64 {
	var xs, ys []float64
	for _, obs := range window {
		if p, ok := obs.Point(jt); ok {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	}
	if len(xs) < minWindow {
		return 0
	}
	return stat.Variance(xs, nil) + stat.Variance(ys, nil)
}

// HipCenterVariance returns the positional variance of the hip midpoint.
func HipCenterVariance(window pose.Sequence) float64 {
	var xs, ys []float64
	for _, obs := range window {
		p, ok := points(obs, pose.LeftHip, pose.RightHip)
		if !ok {
			continue
		}
		mid := pose.Midpoint(p[0], p[1])
		xs = append(xs, mid.X)
		ys = append(ys, mid.Y)
	}
	if len(xs) < minWindow {
		return 0
	}
	return stat.Variance(xs, nil) + stat.Variance(ys, nil)
}

// Change returns f(last) - f(first) over window, or 0 for short windows.
func Change(window pose.Sequence, f func(pose.Observation) float64) float64 {
	if window.Len() < minWindow {
		return 0
	}
	return f(window[window.Len()-1]) - f(window[0])
}
