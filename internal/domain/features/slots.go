package features

import "github.com/okian/swinglab/internal/domain/phase"

// Size is the fixed length of the feature vector.
const Size = 35

// Slots with a meaning outside the assembler.
const (
	SlotPlaneAngle = 8
	SlotTempoRatio = 32
)

// Names holds the stable slot names. Changing the order changes the
// classifier contract.
//
//	setup                  0-4
//	backswing              5-14
//	transition             15-19
//	downswing              20-27
//	impact/follow-through  28-34
var Names = [Size]string{
	// setup
	"spine_angle",
	"knee_flexion",
	"arm_hang_angle",
	"stance_width_ratio",
	"weight_distribution",
	// backswing
	"backswing_tempo",
	"max_shoulder_turn",
	"hip_turn_at_top",
	"swing_plane_angle",
	"x_factor",
	"lead_arm_angle_at_top",
	"wrist_height_at_top",
	"backswing_head_movement",
	"backswing_knee_stability",
	"backswing_rotation_speed",
	// transition
	"transition_tempo",
	"hip_lead",
	"transition_head_movement",
	"transition_wrist_speed",
	"spine_angle_change",
	// downswing
	"downswing_tempo",
	"downswing_shoulder_speed",
	"downswing_hip_speed",
	"max_wrist_speed",
	"downswing_head_movement",
	"downswing_knee_stability",
	"arm_extension",
	"weight_shift",
	// impact and follow-through
	"spine_angle_at_impact",
	"lead_arm_angle_at_impact",
	"finish_balance",
	"finish_head_movement",
	"tempo_ratio",
	"finish_weight_distribution",
	"hip_turn_at_finish",
}

// Offset returns the first slot of phase p.
func Offset(p phase.Phase) int {
	off := 0
	for _, q := range phase.Phases() {
		if q == p {
			return off
		}
		off += q.BlockSize()
	}
	return off
}

// Vector is the fixed-order feature vector handed to the classifier.
type Vector [Size]float64

// Slice returns a copy of v as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// Named returns the vector keyed by slot name.
func (v Vector) Named() map[string]float64 {
	out := make(map[string]float64, Size)
	for i, name := range Names {
		out[name] = v[i]
	}
	return out
}

// IsZero reports whether every slot is 0.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// Fit zero-pads or truncates values to exactly Size entries.
func Fit(values []float64) Vector {
	var v Vector
	copy(v[:], values)
	return v
}
