package types

import "fmt"

// ErrorKind classifies the failure surfaced in a ViewState.
//
// Kinds are ordered by display priority: when several sources carry an active
// error at the same time, the kind with the lowest numeric value wins.
type ErrorKind int

const (
	// KindSessionLoad indicates the session detail stream failed.
	KindSessionLoad ErrorKind = iota

	// KindFavoriteToggle indicates the favorite toggle action failed.
	KindFavoriteToggle

	// KindCountLoad indicates the thumbs-up count stream failed.
	KindCountLoad

	// KindIncrementFlush indicates a coalesced thumbs-up write failed.
	// Lowest priority: only shown when no other source is erroring.
	KindIncrementFlush
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindSessionLoad:
		return "SessionLoad"
	case KindFavoriteToggle:
		return "FavoriteToggle"
	case KindCountLoad:
		return "CountLoad"
	case KindIncrementFlush:
		return "IncrementFlush"
	default:
		return "Unknown"
	}
}

// ViewError is the error carried in a ViewState snapshot.
//
// It pairs a display-priority kind with the underlying cause. ViewErrors are
// transient: once the failing source recovers, the next recomputation clears
// the error from the snapshot.
type ViewError struct {
	Kind  ErrorKind
	Cause error
}

// Error implements the error interface.
func (e *ViewError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is / errors.As matching.
func (e *ViewError) Unwrap() error {
	return e.Cause
}
