// Package recovery provides the deterministic fallback used when the primary
// swing-plane estimate is degenerate.
package recovery

import (
	"math"

	"github.com/okian/swinglab/internal/domain/pose"
	"gonum.org/v1/gonum/floats"
)

// Tuning constants of the fallback chain.
const (
	// MinPairDisplacement is the distal joint travel needed for a pair to qualify.
	MinPairDisplacement = 0.02
	PairAngleMin        = 25.0
	PairAngleMax        = 65.0

	// MinMotion is the average per-frame, per-joint travel needed by the motion heuristic.
	MinMotion         = 0.01
	MotionScale       = 800.0
	MotionAngleMin    = 25.0
	MotionAngleMax    = 55.0
	DefaultPlaneAngle = 35.0
)

// Step identifies which link of the chain produced the angle.
type Step string

// Chain steps in evaluation order.
const (
	StepCandidatePair   Step = "candidate_pair"
	StepMotionMagnitude Step = "motion_magnitude"
	StepDefault         Step = "default"
)

// Pair is a distal/anchor joint combination tried by the first step.
type Pair struct {
	Distal pose.JointType
	Anchor pose.JointType
}

// CandidatePairs lists the joint pairs in priority order.
var CandidatePairs = []Pair{
	{Distal: pose.LeftWrist, Anchor: pose.LeftShoulder},
	{Distal: pose.RightWrist, Anchor: pose.RightShoulder},
	{Distal: pose.LeftElbow, Anchor: pose.LeftShoulder},
	{Distal: pose.RightElbow, Anchor: pose.RightShoulder},
}

// Result is the recovered plane angle with its provenance.
type Result struct {
	Angle float64
	Step  Step
	// Pair is set when Step is StepCandidatePair.
	Pair *Pair
	// Motion is the average displacement computed by the motion step, when reached.
	Motion float64
}

// Recover runs the fallback chain over seq. The same input always yields the
// same result.
func Recover(seq pose.Sequence) Result {
	if res, ok := fromPairs(seq); ok {
		return res
	}
	motion := averageMotion(seq)
	if motion > MinMotion {
		return Result{
			Angle:  clamp(motion*MotionScale, MotionAngleMin, MotionAngleMax),
			Step:   StepMotionMagnitude,
			Motion: motion,
		}
	}
	return Result{Angle: DefaultPlaneAngle, Step: StepDefault, Motion: motion}
}

// fromPairs returns the first candidate pair whose distal joint travelled far
// enough between the first and last observation.
func fromPairs(seq pose.Sequence) (Result, bool) {
	first, ok := seq.First()
	if !ok {
		return Result{}, false
	}
	last, _ := seq.Last()
	for i := range CandidatePairs {
		pair := CandidatePairs[i]
		if !first.Has(pair.Distal, pair.Anchor) || !last.Has(pair.Distal, pair.Anchor) {
			continue
		}
		from, _ := first.Point(pair.Distal)
		to, _ := last.Point(pair.Distal)
		dx, dy := to.X-from.X, to.Y-from.Y
		if math.Hypot(dx, dy) <= MinPairDisplacement {
			continue
		}
		angle := math.Atan2(math.Abs(dy), math.Abs(dx)) * 180 / math.Pi
		return Result{
			Angle: clamp(angle, PairAngleMin, PairAngleMax),
			Step:  StepCandidatePair,
			Pair:  &pair,
		}, true
	}
	return Result{}, false
}

// averageMotion returns the mean displacement over every (frame pair, joint)
// comparison where the joint was detected in both frames.
func averageMotion(seq pose.Sequence) float64 {
	var dists []float64
	for i := 1; i < seq.Len(); i++ {
		prev, cur := seq[i-1], seq[i]
		for _, jt := range pose.AllJoints() {
			p, ok := prev.Point(jt)
			if !ok {
				continue
			}
			q, ok := cur.Point(jt)
			if !ok {
				continue
			}
			dists = append(dists, pose.Distance(p, q))
		}
	}
	if len(dists) == 0 {
		return 0
	}
	return floats.Sum(dists) / float64(len(dists))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
