package repository

import "errors"

// Sentinel errors returned by stores.
var (
	ErrNotFound     = errors.New("analysis not found")
	ErrExists       = errors.New("analysis already exists")
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrClosed       = errors.New("store closed")
)
