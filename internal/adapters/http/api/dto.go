package api

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/swinglab/internal/adapters/repository"
	"github.com/okian/swinglab/internal/domain/pose"
	"github.com/okian/swinglab/internal/domain/report"
)

// jointRequest is one detected keypoint on the wire.
type jointRequest struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// observationRequest is one frame; joints absent from the map were not detected.
type observationRequest struct {
	Timestamp float64                 `json:"timestamp"`
	Joints    map[string]jointRequest `json:"joints"`
}

// analysisRequest mirrors the OpenAPI schema for POST /v1/analyses and /v1/analyze.
type analysisRequest struct {
	ID           string               `json:"id,omitempty"`
	Observations []observationRequest `json:"observations"`
}

func (a analysisRequest) validate(maxObservations int) error {
	if a.Observations == nil {
		return errors.New("missing observations")
	}
	if maxObservations > 0 && len(a.Observations) > maxObservations {
		return fmt.Errorf("too many observations: %d > %d", len(a.Observations), maxObservations)
	}
	if len(a.ID) > maxIDLength || strings.ContainsAny(a.ID, "/ \t\n") {
		return errors.New("invalid id")
	}
	for i, o := range a.Observations {
		if !finite(o.Timestamp) || o.Timestamp < 0 {
			return fmt.Errorf("observations[%d]: invalid timestamp", i)
		}
		seen := make(map[pose.JointType]string, len(o.Joints))
		for name, j := range o.Joints {
			jt, err := pose.ParseJointType(name)
			if err != nil {
				return fmt.Errorf("observations[%d]: %w", i, err)
			}
			if prev, ok := seen[jt]; ok {
				return fmt.Errorf("observations[%d]: joint %s given as both %q and %q", i, jt, prev, name)
			}
			seen[jt] = name
			if !unit(j.X) || !unit(j.Y) {
				return fmt.Errorf("observations[%d].%s: position outside [0,1]", i, name)
			}
			if !unit(j.Confidence) {
				return fmt.Errorf("observations[%d].%s: confidence outside [0,1]", i, name)
			}
		}
	}
	return nil
}

// sequence converts a validated request to the domain model.
func (a analysisRequest) sequence() pose.Sequence {
	seq := make(pose.Sequence, len(a.Observations))
	for i, o := range a.Observations {
		joints := make(map[pose.JointType]pose.Joint, len(o.Joints))
		for name, j := range o.Joints {
			jt, _ := pose.ParseJointType(name)
			joints[jt] = pose.Joint{X: j.X, Y: j.Y, Confidence: j.Confidence}
		}
		seq[i] = pose.NewObservation(o.Timestamp, joints)
	}
	return seq
}

// analysisResponse is the wire form of a stored analysis.
type analysisResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Frames    int            `json:"frames"`
	Duplicate bool           `json:"duplicate,omitempty"`
	Report    *report.Report `json:"report,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func newAnalysisResponse(rec repository.Record) analysisResponse {
	return analysisResponse{
		ID:        rec.ID,
		Status:    string(rec.Status),
		Frames:    rec.Frames,
		Report:    rec.Report,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}

type listResponse struct {
	Analyses []analysisResponse `json:"analyses"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const maxIDLength = 128

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func unit(v float64) bool { return finite(v) && v >= 0 && v <= 1 }
