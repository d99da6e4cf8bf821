// Package report turns a classified feature vector into the analysis report
// returned to callers.
package report

import (
	"fmt"

	"github.com/okian/swinglab/internal/domain/classify"
	"github.com/okian/swinglab/internal/domain/features"
	"github.com/okian/swinglab/internal/domain/recovery"
	"github.com/okian/swinglab/internal/domain/validate"
)

// Status is the extraction outcome stamped into diagnostics.
type Status string

// Extraction statuses.
const (
	StatusSuccess  Status = "success"
	StatusDegraded Status = "degraded"
)

const (
	steepInsight = "Your swing plane is too steep at %.1f degrees. Let the club shallow out as you start down instead of throwing it over the top."
	flatInsight  = "Your swing plane is too flat at %.1f degrees. Let the hands work more upward in the backswing so the club is not stuck behind you."
	goodInsight  = "Your swing plane of %.1f degrees is in a solid range. Keep repeating the same move."

	limitedNote = " This analysis is based on limited pose data, so treat it as approximate."

	degradedInsight = "Not enough pose data was detected to analyze this swing."
)

// Recommendations is the fixed advice attached to every analyzed swing.
var Recommendations = []string{
	"Film from a face-on angle with your whole body in frame.",
	"Keep a steady spine angle from address through impact.",
	"Make a full shoulder turn while keeping the lower body stable.",
	"Start the downswing with the lower body before the arms.",
	"Hold a balanced finish until the ball lands.",
}

// CaptureRecommendations is attached when the swing could not be analyzed.
var CaptureRecommendations = []string{
	"Record the entire swing from address to finish.",
	"Make sure your whole body stays in frame and well lit.",
	"Use a steady camera placed at hip height.",
}

// Diagnostics describes how the report was produced.
type Diagnostics struct {
	ExtractionStatus    Status        `json:"extraction_status"`
	ReliabilityTier     validate.Tier `json:"reliability_tier"`
	PlaneAngleRecovered bool          `json:"plane_angle_recovered"`
	RecoveryStep        recovery.Step `json:"recovery_step,omitempty"`
	Frames              int           `json:"frames"`
}

// Report is the terminal output of one analysis.
type Report struct {
	Label           classify.Label     `json:"predicted_label"`
	Confidence      float64            `json:"confidence"`
	ConfidenceGap   float64            `json:"confidence_gap"`
	Probabilities   map[string]float64 `json:"probabilities"`
	PlaneAngle      float64            `json:"plane_angle"`
	TempoRatio      float64            `json:"tempo_ratio"`
	Insight         string             `json:"insight"`
	Recommendations []string           `json:"recommendations"`
	Diagnostics     Diagnostics        `json:"diagnostics"`
	Features        map[string]float64 `json:"features,omitempty"`
}

// Degraded reports whether the swing could not be analyzed.
func (r Report) Degraded() bool {
	return r.Diagnostics.ExtractionStatus == StatusDegraded
}

// Input gathers everything the synthesizer needs.
type Input struct {
	Validation     validate.Result
	Assembly       features.Assembly
	Classification classify.Result
}

// Synthesize builds the report. Inputs that failed validation produce the
// degraded report and Classification is ignored.
func Synthesize(in Input) Report {
	if !in.Validation.OK {
		return degraded(in)
	}
	c := in.Classification
	r := Report{
		Label:           c.Label,
		Confidence:      c.Confidence,
		ConfidenceGap:   c.ConfidenceGap,
		Probabilities:   probabilities(c.Probabilities),
		PlaneAngle:      c.PlaneAngle,
		TempoRatio:      c.TempoRatio,
		Insight:         Insight(c.Label, c.PlaneAngle),
		Recommendations: clone(Recommendations),
		Diagnostics:     diagnostics(StatusSuccess, in),
		Features:        in.Assembly.Vector.Named(),
	}
	if in.Validation.Tier == validate.TierLimited {
		r.Insight += limitedNote
	}
	return r
}

// Insight returns the templated insight for label.
func Insight(label classify.Label, planeAngle float64) string {
	switch label {
	case classify.LabelTooSteep:
		return fmt.Sprintf(steepInsight, planeAngle)
	case classify.LabelTooFlat:
		return fmt.Sprintf(flatInsight, planeAngle)
	default:
		return fmt.Sprintf(goodInsight, planeAngle)
	}
}

func degraded(in Input) Report {
	return Report{
		Label:           classify.LabelUnclassified,
		ConfidenceGap:   -0.5,
		Probabilities:   map[string]float64{},
		Insight:         degradedInsight,
		Recommendations: clone(CaptureRecommendations),
		Diagnostics:     diagnostics(StatusDegraded, in),
		Features:        in.Assembly.Vector.Named(),
	}
}

func diagnostics(status Status, in Input) Diagnostics {
	d := Diagnostics{
		ExtractionStatus: status,
		ReliabilityTier:  in.Validation.Tier,
		Frames:           in.Validation.Frames,
	}
	if rec := in.Assembly.Recovery; rec != nil {
		d.PlaneAngleRecovered = true
		d.RecoveryStep = rec.Step
	}
	return d
}

func probabilities(in map[classify.Label]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for l, p := range in {
		out[string(l)] = p
	}
	return out
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
