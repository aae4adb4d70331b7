package stats

import (
	"errors"
	"fmt"
)

// Sentinel kinds for statistics errors.
var (
	ErrMissingPriority = errors.New("cohort member has no computed priority")
	ErrUnknownTier     = errors.New("cohort member has an unknown tier")
)

// MissingPriorityError identifies the member that violated the precondition.
type MissingPriorityError struct {
	Index    int
	ClientID string
}

func (e *MissingPriorityError) Error() string {
	return fmt.Sprintf("member %d (%q): %s", e.Index, e.ClientID, ErrMissingPriority)
}

// Unwrap allows errors.Is(err, ErrMissingPriority).
func (e *MissingPriorityError) Unwrap() error { return ErrMissingPriority }

// UnknownTierError identifies a member whose priority carries a tier outside
// High, Medium and Low.
type UnknownTierError struct {
	Index    int
	ClientID string
	Tier     string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("member %d (%q) tier %q: %s", e.Index, e.ClientID, e.Tier, ErrUnknownTier)
}

// Unwrap allows errors.Is(err, ErrUnknownTier).
func (e *UnknownTierError) Unwrap() error { return ErrUnknownTier }
