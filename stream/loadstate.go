package stream

import (
	"context"
	"fmt"
)

// loadStage discriminates the LoadState variants.
type loadStage int

const (
	stageLoading loadStage = iota
	stageLoaded
	stageErrored
)

// LoadState represents the lifecycle of an asynchronous value fetch.
//
// It is a tagged tri-state: Loading while the fetch is in flight, Loaded once
// a value is available, Errored when the fetch failed. The zero value is
// Loading.
type LoadState[T any] struct {
	stage loadStage
	value T
	err   error
}

// Loading returns the in-flight state.
func Loading[T any]() LoadState[T] {
	return LoadState[T]{stage: stageLoading}
}

// Loaded returns a successful state carrying v.
func Loaded[T any](v T) LoadState[T] {
	return LoadState[T]{stage: stageLoaded, value: v}
}

// Errored returns a failed state carrying the cause.
func Errored[T any](err error) LoadState[T] {
	return LoadState[T]{stage: stageErrored, err: err}
}

// IsLoading reports whether the fetch is still in flight.
func (s LoadState[T]) IsLoading() bool {
	return s.stage == stageLoading
}

// Value returns the loaded value and true, or the zero value and false when
// the state is not Loaded.
func (s LoadState[T]) Value() (T, bool) {
	if s.stage != stageLoaded {
		var zero T
		return zero, false
	}

	return s.value, true
}

// Err returns the failure cause, nil unless the state is Errored.
func (s LoadState[T]) Err() error {
	return s.err
}

// String returns the variant name for logging.
func (s LoadState[T]) String() string {
	switch s.stage {
	case stageLoaded:
		return "Loaded"
	case stageErrored:
		return "Errored"
	default:
		return "Loading"
	}
}

// Producer pushes values into a Load stream. It blocks until the stream ends
// or ctx is cancelled, invoking emit once per value. A non-nil return marks
// the stream as failed.
type Producer[T any] func(ctx context.Context, emit func(T)) error

// Load wraps a producer into a LoadState sequence.
//
// The returned channel emits Loading immediately, then Loaded for every value
// the producer pushes. When the producer returns a non-nil error the channel
// emits exactly one Errored state and closes; no further values follow for
// this subscription. A nil return closes the channel without an error state.
//
// Cancellation of ctx terminates the sequence without surfacing ctx's error
// as an Errored state: teardown is not a fetch failure.
//
// Parameters:
//   - ctx: Bounds the producer's lifetime
//   - produce: Push-style value producer
//
// Returns:
//   - <-chan LoadState[T]: The wrapped sequence, closed when the producer ends
func Load[T any](ctx context.Context, produce Producer[T]) <-chan LoadState[T] {
	out := make(chan LoadState[T], 1)
	out <- Loading[T]()

	go func() {
		defer close(out)

		err := func() (err error) {
			// A panicking producer surfaces as an Errored state, never as a
			// crash of the pipeline.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("producer panic: %v", r)
				}
			}()

			return produce(ctx, func(v T) {
				select {
				case out <- Loaded(v):
				case <-ctx.Done():
				}
			})
		}()
		if err != nil && ctx.Err() == nil {
			select {
			case out <- Errored[T](err):
			case <-ctx.Done():
			}
		}
	}()

	return out
}
