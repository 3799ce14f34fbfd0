package types

import "context"

// Repository supplies the source streams consumed by the controller and
// accepts the coalesced writes it produces.
//
// Streaming methods are push-style: they block, invoking emit for every new
// value, until the stream ends or ctx is cancelled. A non-nil return surfaces
// as a stream failure; implementations should not retry internally
// (retry/backoff policy is outside this layer).
//
// Implementations must be safe for concurrent use: the controller runs each
// stream in its own goroutine and may issue writes while streams are active.
type Repository interface {
	// SessionContents pushes one SessionCollection snapshot per schedule
	// update, starting with the current state.
	SessionContents(ctx context.Context, emit func(SessionCollection)) error

	// ThumbsUpCounts pushes the total thumbs-up count for the given session
	// on every change, starting with the current value.
	ThumbsUpCounts(ctx context.Context, id SessionID, emit func(int)) error

	// ToggleFavorite flips the favorite mark for the given session.
	ToggleFavorite(ctx context.Context, id SessionID) error

	// IncrementThumbsUpCount applies a batch of count thumbs-up taps to the
	// given session in one write.
	IncrementThumbsUpCount(ctx context.Context, id SessionID, count int) error
}
