// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/swinglab/internal/domain/pose"
)

// Job is one swing submitted for asynchronous analysis.
type Job struct {
	ID          string        // unique id, also the idempotency key
	Sequence    pose.Sequence // observations in temporal order
	SubmittedAt time.Time
}

// Frames returns the number of observations carried by the job.
func (j Job) Frames() int { return j.Sequence.Len() }

// Wait returns how long the job has been waiting since submission.
func (j Job) Wait(now time.Time) time.Duration {
	if j.SubmittedAt.IsZero() {
		return 0
	}
	return now.Sub(j.SubmittedAt)
}
