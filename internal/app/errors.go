package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("analysis queue is full")
	ErrUnavailable  = errors.New("service unavailable")
)
