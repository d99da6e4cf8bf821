// Package features assembles the fixed-order swing feature vector from a pose
// sequence.
package features

import (
	"context"

	"github.com/okian/swinglab/internal/domain/phase"
	"github.com/okian/swinglab/internal/domain/pose"
	"github.com/okian/swinglab/internal/domain/recovery"
	"github.com/okian/swinglab/internal/domain/validate"
	"github.com/okian/swinglab/pkg/logger"
)

// Assembly is the outcome of one assembler run.
type Assembly struct {
	Vector Vector
	// Recovery is set when the plane angle was replaced by the recovery chain.
	Recovery *recovery.Result
	Frames   int
}

// Recovered reports whether the plane angle came from the recovery chain.
func (a Assembly) Recovered() bool { return a.Recovery != nil }

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for recovery events.
func WithLogger(l logger.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.log = l
		}
	}
}

// WithRecoverer replaces the plane angle recovery chain.
func WithRecoverer(fn func(pose.Sequence) recovery.Result) Option {
	return func(a *Assembler) {
		if fn != nil {
			a.recover = fn
		}
	}
}

// Assembler runs the per-phase calculators. It holds no per-call state and is
// safe for concurrent use.
type Assembler struct {
	log     logger.Logger
	recover func(pose.Sequence) recovery.Result
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		log:     logger.Nop(),
		recover: recovery.Recover,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble computes the feature vector of seq. Sequences shorter than
// validate.MinFrames yield the zero vector.
func (a *Assembler) Assemble(ctx context.Context, seq pose.Sequence) Assembly {
	out := Assembly{Frames: seq.Len()}
	if seq.Len() < validate.MinFrames {
		return out
	}

	f := frame{seq: seq, segs: phase.Segment(seq.Len()), ref: seq[0]}
	for _, p := range phase.Phases() {
		if !f.segs.Sufficient(p) {
			continue
		}
		copy(out.Vector[Offset(p):Offset(p)+p.BlockSize()], blocks[p](f))
	}

	if out.Vector[SlotPlaneAngle] == 0 {
		res := a.recover(seq)
		out.Vector[SlotPlaneAngle] = res.Angle
		out.Recovery = &res
		a.log.Debug(ctx, "swing plane recovered",
			logger.String("step", string(res.Step)),
			logger.Float64("angle", res.Angle),
			logger.Int("frames", seq.Len()))
	}
	return out
}
