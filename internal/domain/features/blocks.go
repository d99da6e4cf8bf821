package features

import (
	"github.com/okian/swinglab/internal/domain/geometry"
	"github.com/okian/swinglab/internal/domain/phase"
	"github.com/okian/swinglab/internal/domain/pose"
)

// frame is the per-call view shared by the block calculators.
type frame struct {
	seq  pose.Sequence
	segs phase.Segments
	ref  pose.Observation
}

func (f frame) window(p phase.Phase) pose.Sequence {
	return f.segs.Window(f.seq, p)
}

// blockFunc computes the slots of one phase in order.
type blockFunc func(f frame) []float64

var blocks = [phase.NumPhases]blockFunc{
	phase.Setup:               setupBlock,
	phase.Backswing:           backswingBlock,
	phase.Transition:          transitionBlock,
	phase.Downswing:           downswingBlock,
	phase.ImpactFollowThrough: impactBlock,
}

func setupBlock(f frame) []float64 {
	obs := f.ref
	return []float64{
		geometry.SpineAngle(obs),
		geometry.KneeFlexion(obs, pose.Left),
		geometry.ArmHangAngle(obs, pose.Left),
		geometry.StanceWidthRatio(obs),
		geometry.WeightDistribution(obs),
	}
}

func backswingBlock(f frame) []float64 {
	w := f.window(phase.Backswing)
	top := w[w.Len()-1]
	shoulders := geometry.ShoulderTurn(f.ref, top)
	hips := geometry.HipTurn(f.ref, top)
	return []float64{
		geometry.PhaseTempo(w.Len(), f.seq.Len()),
		geometry.MaxShoulderTurn(f.ref, w),
		hips,
		geometry.SwingPlaneAngle(w),
		shoulders - hips,
		geometry.ElbowAngle(top, pose.Left),
		geometry.WristHeight(top, pose.Left),
		geometry.CumulativeDisplacement(w, pose.Nose),
		geometry.PositionVariance(w, pose.LeftKnee),
		geometry.ShoulderRotationSpeed(f.ref, w),
	}
}

func transitionBlock(f frame) []float64 {
	w := f.window(phase.Transition)
	separation := func(obs pose.Observation) float64 {
		return geometry.ShoulderTurn(f.ref, obs) - geometry.HipTurn(f.ref, obs)
	}
	return []float64{
		geometry.PhaseTempo(w.Len(), f.seq.Len()),
		geometry.Change(w, separation),
		geometry.CumulativeDisplacement(w, pose.Nose),
		geometry.PathSpeed(w, pose.LeftWrist),
		geometry.Change(w, geometry.SpineAngle),
	}
}

func downswingBlock(f frame) []float64 {
	w := f.window(phase.Downswing)
	return []float64{
		geometry.PhaseTempo(w.Len(), f.seq.Len()),
		geometry.ShoulderRotationSpeed(f.ref, w),
		geometry.HipRotationSpeed(f.ref, w),
		geometry.MaxJointSpeed(w, pose.LeftWrist),
		geometry.CumulativeDisplacement(w, pose.Nose),
		geometry.PositionVariance(w, pose.LeftKnee),
		geometry.MaxElbowAngle(w, pose.Left),
		geometry.Change(w, geometry.WeightDistribution),
	}
}

func impactBlock(f frame) []float64 {
	w := f.window(phase.ImpactFollowThrough)
	impact := f.seq[f.seq.Len()-1]
	return []float64{
		geometry.SpineAngle(impact),
		geometry.ElbowAngle(impact, pose.Left),
		geometry.HipCenterVariance(w),
		geometry.CumulativeDisplacement(w, pose.Nose),
		geometry.FrameRatio(f.segs.Range(phase.Backswing).Len(), f.segs.Range(phase.Downswing).Len()),
		geometry.WeightDistribution(impact),
		geometry.HipTurn(f.ref, impact),
	}
}
