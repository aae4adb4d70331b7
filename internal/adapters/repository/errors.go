package repository

import "errors"

// Sentinel kinds for source errors.
var (
	ErrLoad            = errors.New("load client source")
	ErrUnknownKind     = errors.New("unknown source kind")
	ErrMissingID       = errors.New("client row without identifier")
	ErrDuplicateClient = errors.New("duplicate client identifier")
	ErrMissingColumn   = errors.New("required column missing")
)
