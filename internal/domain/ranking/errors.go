package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrClientNotFound = errors.New("client not found in cohort")
)
