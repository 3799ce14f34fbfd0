package types

import "context"

// Hooks defines callbacks for controller lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking the state pipeline. Hooks receive the controller's
// lifecycle context, which is cancelled during shutdown.
//
// Hook execution behavior:
//   - Hooks run concurrently and may not complete before Stop() returns
//   - Hook errors are logged but never fail controller operations
//
// Implementations should complete quickly, respect context cancellation, and
// be idempotent.
type Hooks struct {
	// OnViewState is called after every recomputation with the new snapshot.
	OnViewState func(ctx context.Context, state ViewState) error

	// OnFlush is called after each coalesced write attempt.
	// err is nil when the write succeeded.
	OnFlush func(ctx context.Context, id SessionID, count int, err error) error

	// OnError is called when a recoverable error occurs in any source.
	OnError func(ctx context.Context, err error) error
}
