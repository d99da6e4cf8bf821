// Package phase splits a swing sequence into fixed proportional windows.
//
// Boundaries depend only on the sequence length; no biomechanical events are
// detected.
package phase

import "github.com/okian/swinglab/internal/domain/pose"

// Phase is one of the five temporal windows of a swing.
type Phase int

// Swing phases in slot order.
const (
	Setup Phase = iota
	Backswing
	Transition
	Downswing
	ImpactFollowThrough
)

// NumPhases is the number of phases.
const NumPhases = 5

// maxFinishWindow caps the trailing window used by the finish calculators.
const maxFinishWindow = 5

var phaseNames = [NumPhases]string{"setup", "backswing", "transition", "downswing", "impact_follow_through"}

// String returns the phase name.
func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// BlockSize returns the number of feature slots a phase contributes.
func (p Phase) BlockSize() int {
	switch p {
	case Setup:
		return 5
	case Backswing:
		return 10
	case Transition:
		return 5
	case Downswing:
		return 8
	case ImpactFollowThrough:
		return 7
	}
	return 0
}

// MinFrames returns the smallest window the phase's calculators accept.
func (p Phase) MinFrames() int {
	if p == Setup {
		return 1
	}
	return 2
}

// Phases returns all phases in slot order.
func Phases() []Phase {
	return []Phase{Setup, Backswing, Transition, Downswing, ImpactFollowThrough}
}

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices covered.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Segments holds the computed window of every phase for one sequence length.
type Segments struct {
	N      int
	Ranges [NumPhases]Range
}

// Segment computes the phase windows for a sequence of length n.
// For n = 30: backswing [0,20), transition [20,22), downswing [22,30).
func Segment(n int) Segments {
	s := Segments{N: n}
	if n <= 0 {
		return s
	}
	backEnd := 2 * n / 3
	transEnd := 3 * n / 4
	finish := min(maxFinishWindow, n/4)

	s.Ranges[Setup] = Range{Start: 0, End: 1}
	s.Ranges[Backswing] = Range{Start: 0, End: backEnd}
	s.Ranges[Transition] = Range{Start: backEnd, End: transEnd}
	s.Ranges[Downswing] = Range{Start: transEnd, End: n}
	s.Ranges[ImpactFollowThrough] = Range{Start: n - finish, End: n}
	return s
}

// Range returns the window of phase p.
func (s Segments) Range(p Phase) Range {
	if p < 0 || p >= NumPhases {
		return Range{}
	}
	return s.Ranges[p]
}

// Window returns the observations of seq that fall into phase p.
func (s Segments) Window(seq pose.Sequence, p Phase) pose.Sequence {
	r := s.Range(p)
	return seq.Window(r.Start, r.End)
}

// Sufficient reports whether phase p has enough observations to run its
// calculators.
func (s Segments) Sufficient(p Phase) bool {
	return s.Range(p).Len() >= p.MinFrames()
}
