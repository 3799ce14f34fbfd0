package stream

import (
	"context"
	"sync"
)

// emission is one value arriving from a labeled source.
type emission struct {
	idx   int
	value any
}

// Source is one labeled input to Combine. Build sources with From.
type Source struct {
	forward func(ctx context.Context, idx int, sink chan<- emission)
}

// From adapts a typed channel into a Source.
//
// The source forwards every value in arrival order until the channel is
// closed or the combining context is cancelled.
func From[T any](ch <-chan T) Source {
	return Source{
		forward: func(ctx context.Context, idx int, sink chan<- emission) {
			for {
				select {
				case v, ok := <-ch:
					if !ok {
						return
					}
					select {
					case sink <- emission{idx: idx, value: v}:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		},
	}
}

// Latest holds the most recent value observed from each source, together
// with a seen flag per source. It is passed to the projection on every
// recomputation; projections must treat it as read-only.
type Latest struct {
	values []any
	seen   []bool
}

// Len returns the number of labeled sources.
func (l Latest) Len() int {
	return len(l.values)
}

// At returns the latest value of source i as type T.
//
// The second return is false when the source has not emitted yet or its
// latest value is not a T.
func At[T any](l Latest, i int) (T, bool) {
	if i < 0 || i >= len(l.values) || !l.seen[i] {
		var zero T
		return zero, false
	}

	v, ok := l.values[i].(T)

	return v, ok
}

// MakeLatest builds a Latest for n sources with every source unseen.
// Combine maintains its own Latest internally; MakeLatest exists so
// projections can be exercised in isolation.
func MakeLatest(n int) Latest {
	return Latest{
		values: make([]any, n),
		seen:   make([]bool, n),
	}
}

// With returns a copy of l with source i marked seen and set to v.
func (l Latest) With(i int, v any) Latest {
	next := Latest{
		values: make([]any, len(l.values)),
		seen:   make([]bool, len(l.seen)),
	}
	copy(next.values, l.values)
	copy(next.seen, l.seen)
	next.values[i] = v
	next.seen[i] = true

	return next
}

// Combine merges N labeled sources into a sequence of snapshots.
//
// The output emits initial first, before any source has produced a value.
// Afterwards, every emission from any single source triggers exactly one
// call to project with the previous snapshot and the latest known value of
// every source (last-value-wins; sources that have not emitted read as
// unseen). There is no deduplication: value-identical consecutive snapshots
// are still emitted.
//
// The output closes when every source is exhausted or ctx is cancelled.
// project must be pure; it runs on the single combining goroutine, so
// snapshots are never torn.
//
// Parameters:
//   - ctx: Bounds the lifetime of the combination
//   - initial: Baseline snapshot emitted first and seeded as prev
//   - project: Pure reducer from (prev, latest) to the next snapshot
//   - sources: Labeled inputs, indexed in argument order
//
// Returns:
//   - <-chan S: Snapshot sequence, closed on ctx cancellation or exhaustion
func Combine[S any](
	ctx context.Context,
	initial S,
	project func(prev S, latest Latest) S,
	sources ...Source,
) <-chan S {
	out := make(chan S, 1)
	out <- initial

	sink := make(chan emission, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			s.forward(ctx, idx, sink)
		}(i, src)
	}
	go func() {
		wg.Wait()
		close(sink)
	}()

	go func() {
		defer close(out)

		latest := Latest{
			values: make([]any, len(sources)),
			seen:   make([]bool, len(sources)),
		}
		prev := initial

		for em := range sink {
			latest.values[em.idx] = em.value
			latest.seen[em.idx] = true

			next := project(prev, latest)
			prev = next

			select {
			case out <- next:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
