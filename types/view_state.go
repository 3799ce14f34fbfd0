package types

// ViewState is the immutable snapshot rendered by the view-state consumer.
//
// A new snapshot is computed on every upstream emission. All fields except
// Loading and Err are sticky: they retain their last successfully loaded
// value across unrelated source updates or errors, and never reset to empty
// on an unrelated failure.
type ViewState struct {
	// Loading is true while the session stream or the favorite toggle is
	// in flight.
	Loading bool

	// Err is the highest-priority active error across all sources, nil when
	// no source is erroring. See ErrorKind for the priority order.
	Err *ViewError

	// Session holds the last successfully loaded session details, nil until
	// the first load completes. Sticky.
	Session *Session

	// ShowEllipsis is true while the description is collapsed. Expanding is
	// a one-way transition: once false it never becomes true again.
	ShowEllipsis bool

	// TotalThumbsUpCount is the last successfully loaded thumbs-up total.
	// Sticky.
	TotalThumbsUpCount int

	// PendingIncrement is the locally accumulated, not-yet-persisted
	// thumbs-up count, in [0, MaxApplyCount].
	PendingIncrement int
}

// EmptyViewState returns the baseline snapshot emitted before any source has
// produced a value.
func EmptyViewState() ViewState {
	return ViewState{ShowEllipsis: true}
}

// ErrKind returns the kind of the active error, and whether one is set.
func (s ViewState) ErrKind() (ErrorKind, bool) {
	if s.Err == nil {
		return 0, false
	}

	return s.Err.Kind, true
}
