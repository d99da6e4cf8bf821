// Package validate checks whether a pose sequence carries enough frames for analysis.
package validate

import "github.com/okian/swinglab/internal/domain/pose"

// Frame thresholds for the reliability tiers.
const (
	MinFrames      = 3
	ReliableFrames = 10
)

// Tier is a coarse label for input data sufficiency.
type Tier string

// Reliability tiers.
const (
	TierNormal   Tier = "normal"
	TierLimited  Tier = "limited"
	TierDegraded Tier = "degraded"
)

// Result is the outcome of validating a sequence.
type Result struct {
	OK     bool
	Tier   Tier
	Frames int
}

// Validate classifies seq by length. It never returns an error: a short
// sequence is reported through OK=false and the degraded tier.
func Validate(seq pose.Sequence) Result {
	n := seq.Len()
	switch {
	case n < MinFrames:
		return Result{OK: false, Tier: TierDegraded, Frames: n}
	case n < ReliableFrames:
		return Result{OK: true, Tier: TierLimited, Frames: n}
	default:
		return Result{OK: true, Tier: TierNormal, Frames: n}
	}
}

// Err returns ErrInsufficientPoses for a failed result, nil otherwise.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return ErrInsufficientPoses
}
