// Package stream provides generic reactive primitives for channel-based
// pipelines: LoadState wrapping for asynchronous fetches and an N-ary
// latest-value combinator.
//
// The primitives are deliberately small and domain-free. The sessionview
// controller composes them into one screen's view-state pipeline, but they
// can host any aggregation where several independently-updating sources must
// be merged into a single snapshot.
//
// # LoadState
//
// Load wraps a push-style producer into a channel of LoadState values:
//
//	states := stream.Load(ctx, func(ctx context.Context, emit func(int)) error {
//	    return repo.ThumbsUpCounts(ctx, id, emit)
//	})
//
// The sequence always starts with Loading, carries one Loaded per produced
// value, and terminates after a single Error when the producer fails.
//
// # Combine
//
// Combine merges labeled sources into snapshots via a pure projection:
//
//	out := stream.Combine(ctx, baseline, project,
//	    stream.From(sessions), stream.From(counts))
//
// Every emission from any source triggers exactly one projection over the
// latest known value of every source plus the previous snapshot.
package stream
