// Package coalesce batches rapid increment events into single debounced
// writes.
//
// A Coalescer is an explicit timer-reset state machine:
//
//	Idle(pending=0) → Accumulating(pending=k) → Flushing → Idle(pending=0)
//
// Every Tap synchronously bumps an optimistic pending counter (capped at
// MaxApplyCount) and re-arms the debounce timer. Once the configured window
// elapses with no further taps, the accumulated count is written downstream
// in exactly one flush call per entity, and the counter resets.
//
// Flush failures are logged and carried in the next Status update but are
// never retried, and the optimistic counter is not rolled back. Coalescing is
// the backpressure strategy: taps are absorbed at any rate, only the deferred
// write is rate-bound.
package coalesce
