// Package repository persists analysis records.
package repository

import (
	"context"
	"time"

	"github.com/okian/swinglab/internal/domain/report"
)

// Status is the lifecycle state of an analysis record.
type Status string

// Record statuses.
const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Record is one submitted analysis and, once finished, its outcome.
type Record struct {
	ID        string
	Status    Status
	Frames    int
	Report    *report.Report // set when Status is done
	Error     string         // set when Status is failed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store provides read/write access to analysis records.
type Store interface {
	// Create inserts a pending record. Returns ErrExists if the id is taken.
	Create(ctx context.Context, id string, frames int) (Record, error)

	// Complete marks the record done and attaches its report.
	Complete(ctx context.Context, id string, r report.Report) error

	// Fail marks the record failed with the cause's message.
	Fail(ctx context.Context, id string, cause error) error

	// Delete removes the record. Missing ids are not an error.
	Delete(ctx context.Context, id string) error

	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)

	// Recent returns up to n records, newest first.
	Recent(ctx context.Context, n int) ([]Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}
