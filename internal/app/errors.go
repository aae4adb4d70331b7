package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotReady     = errors.New("no cohort snapshot loaded")
	ErrNoSource     = errors.New("no client source configured")
	ErrInvalidLimit = errors.New("invalid list limit")
)
