package swingsim

import (
	"time"

	"github.com/okian/swinglab/internal/domain/pose"
)

// Joint is one keypoint in the request body.
type Joint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Observation is one frame in the request body.
type Observation struct {
	Timestamp float64          `json:"timestamp"`
	Joints    map[string]Joint `json:"joints"`
}

// AnalysisRequest is the body of POST /v1/analyses and /v1/analyze.
type AnalysisRequest struct {
	ID           string        `json:"id,omitempty"`
	Observations []Observation `json:"observations"`
}

// Report is the part of the analysis report the runner checks.
type Report struct {
	Label      string  `json:"predicted_label"`
	Confidence float64 `json:"confidence"`
	PlaneAngle float64 `json:"plane_angle"`
	TempoRatio float64 `json:"tempo_ratio"`
	Insight    string  `json:"insight"`
}

// Analysis is a stored analysis as returned by the service.
type Analysis struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Frames    int       `json:"frames"`
	Duplicate bool      `json:"duplicate"`
	Report    *Report   `json:"report"`
	Error     string    `json:"error"`
	CreatedAt time.Time `json:"created_at"`
}

// Analysis statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Encode converts seq to the request body, dropping undetected joints.
func Encode(id string, seq pose.Sequence) AnalysisRequest {
	req := AnalysisRequest{ID: id, Observations: make([]Observation, len(seq))}
	for i, o := range seq {
		joints := make(map[string]Joint)
		for _, jt := range pose.AllJoints() {
			if j, ok := o.Joint(jt); ok {
				joints[jt.String()] = Joint{X: j.X, Y: j.Y, Confidence: j.Confidence}
			}
		}
		req.Observations[i] = Observation{Timestamp: o.Timestamp, Joints: joints}
	}
	return req
}
