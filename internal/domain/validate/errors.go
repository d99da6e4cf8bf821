package validate

import "errors"

// ErrInsufficientPoses marks a sequence too short for analysis. The pipeline
// resolves it locally with a degraded report.
var ErrInsufficientPoses = errors.New("insufficient poses")
