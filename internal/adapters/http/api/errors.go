package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/swinglab/internal/app"
	"github.com/okian/swinglab/internal/adapters/repository"
	"github.com/okian/swinglab/internal/domain/classify"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("not found")
	ErrBackpressure        = errors.New("backpressure")
	ErrInvalidFeatureCount = errors.New("invalid feature count")
	ErrInferenceFailure    = errors.New("inference failure")
	ErrUnavailable         = errors.New("unavailable")
	ErrInternal            = errors.New("internal error")
)

// KindError tags an error with the operation that produced it and a kind
// used to pick the HTTP status.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

// NewKind returns a KindError without an underlying cause.
func NewKind(op string, kind error) *KindError {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind returns a KindError wrapping err.
func WrapKind(op string, kind, err error) *KindError {
	return &KindError{Op: op, Kind: kind, Err: err}
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// kindOf maps an upstream error to its API kind.
func kindOf(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidLimit):
		return ErrBadRequest
	case errors.Is(err, service.ErrBackpressure):
		return ErrBackpressure
	case errors.Is(err, classify.ErrInvalidFeatureCount):
		return ErrInvalidFeatureCount
	case errors.Is(err, classify.ErrInferenceFailure):
		return ErrInferenceFailure
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, service.ErrUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

// kinds maps each kind to its HTTP status and wire code.
var kinds = []struct {
	kind   error
	status int
	code   string
}{
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{ErrNotFound, http.StatusNotFound, "not_found"},
	{ErrBackpressure, http.StatusTooManyRequests, "backpressure"},
	{ErrInvalidFeatureCount, http.StatusUnprocessableEntity, "invalid_feature_count"},
	{ErrInferenceFailure, http.StatusBadGateway, "inference_failure"},
	{ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
}

// statusFor returns the HTTP status and code for err.
func statusFor(err error) (int, string) {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
