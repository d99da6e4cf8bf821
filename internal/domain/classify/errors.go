package classify

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification failures.
var (
	// ErrInvalidFeatureCount is returned when the vector is not exactly 35 long.
	ErrInvalidFeatureCount = errors.New("classify: invalid feature count")

	// ErrInferenceFailure matches every failed or malformed classifier call.
	ErrInferenceFailure = errors.New("classify: inference failure")

	// ErrUnknownLabel is returned when the classifier answers outside the label set.
	ErrUnknownLabel = errors.New("classify: unknown label")

	// ErrConfidenceRange is returned when a confidence or probability is not in [0,1].
	ErrConfidenceRange = errors.New("classify: confidence out of range")
)

// InferenceError wraps the cause of a failed classifier call. It matches
// ErrInferenceFailure with errors.Is.
type InferenceError struct {
	Classifier string
	Err        error
}

// Error implements the error interface.
func (e *InferenceError) Error() string {
	return fmt.Sprintf("classify [%s]: inference failure: %v", e.Classifier, e.Err)
}

// Unwrap returns the underlying error.
func (e *InferenceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInferenceFailure.
func (e *InferenceError) Is(target error) bool { return target == ErrInferenceFailure }
