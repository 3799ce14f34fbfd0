// Package sessionview provides reactive view-state aggregation for a
// conference-session detail screen, with debounced write coalescing for
// thumbs-up taps.
//
// The Controller merges several independently-updating sources (the session
// detail stream, the favorite toggle status, the description-expand flag, the
// thumbs-up total, and the locally accumulated pending increments) into one
// immutable ViewState snapshot. A change in any single source triggers
// exactly one recomputation using the latest known value of every other
// source.
//
// # Quick Start
//
//	cfg := sessionview.Config{SessionID: "s-101"}
//
//	ctrl, err := sessionview.NewController(&cfg, repo)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ctrl.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer ctrl.Stop(context.Background())
//
//	states, unsubscribe := ctrl.Subscribe()
//	defer unsubscribe()
//	for state := range states {
//	    render(state)
//	}
//
// # Key Behaviors
//
//   - Sticky fields: session details and the thumbs-up total retain their
//     last successfully loaded value across unrelated errors; they never
//     reset to empty on an unrelated failure
//   - Error priority: when several sources error at once, the snapshot shows
//     the highest-priority one (session load > favorite toggle > count load >
//     increment flush)
//   - Coalescing: rapid ThumbsUp taps accumulate into an optimistic counter
//     (capped at 50) and persist as a single write after 500ms of quiescence
//
// # Architecture
//
// The generic building blocks live in their own packages: stream provides
// the LoadState wrapper and the N-ary latest-value combinator, coalesce
// provides the debounced batching state machine. The root package wires them
// to the Repository interface and exposes the action entry points Favorite,
// ExpandDescription and ThumbsUp. All three are fire-and-forget, with effects
// observable only through the view-state stream.
//
// See the examples/ directory for complete working examples.
package sessionview
