package testing

import (
	"context"
	"sync"

	"github.com/ryo-makiyama/sessionview/types"
)

// IncrementCall records one coalesced write received by the repository.
type IncrementCall struct {
	ID    types.SessionID
	Count int
}

// ScriptedRepository is an in-memory types.Repository whose streams are
// driven explicitly by the test: PublishSessions and PublishCount push
// values to every active subscriber, FailSessions and FailCount terminate
// the respective streams with an error. Write failures are injected with
// SetToggleErr and SetIncrementErr.
//
// Safe for concurrent use.
type ScriptedRepository struct {
	mu          sync.Mutex
	nextID      int
	sessionSubs map[int]chan streamEvent[types.SessionCollection]
	countSubs   map[int]chan streamEvent[int]

	// Last published values, replayed to late subscribers so streams start
	// with the current state as the Repository contract requires.
	lastSessions *types.SessionCollection
	lastCount    *int

	toggleErr    error
	toggleGate   chan struct{}
	incrementErr error

	toggles    []types.SessionID
	increments []IncrementCall
}

type streamEvent[T any] struct {
	value T
	err   error
}

var _ types.Repository = (*ScriptedRepository)(nil)

// NewScriptedRepository creates an empty scripted repository.
func NewScriptedRepository() *ScriptedRepository {
	return &ScriptedRepository{
		sessionSubs: make(map[int]chan streamEvent[types.SessionCollection]),
		countSubs:   make(map[int]chan streamEvent[int]),
	}
}

// SessionContents implements types.Repository.
func (r *ScriptedRepository) SessionContents(ctx context.Context, emit func(types.SessionCollection)) error {
	ch, cancel := subscribe(r, r.sessionSubs, func() *streamEvent[types.SessionCollection] {
		if r.lastSessions == nil {
			return nil
		}
		return &streamEvent[types.SessionCollection]{value: *r.lastSessions}
	})
	defer cancel()

	return pump(ctx, ch, emit)
}

// ThumbsUpCounts implements types.Repository.
func (r *ScriptedRepository) ThumbsUpCounts(ctx context.Context, _ types.SessionID, emit func(int)) error {
	ch, cancel := subscribe(r, r.countSubs, func() *streamEvent[int] {
		if r.lastCount == nil {
			return nil
		}
		return &streamEvent[int]{value: *r.lastCount}
	})
	defer cancel()

	return pump(ctx, ch, emit)
}

// ToggleFavorite implements types.Repository. The call blocks while a gate
// installed by HoldToggles is open, and records the toggled id.
func (r *ScriptedRepository) ToggleFavorite(ctx context.Context, id types.SessionID) error {
	r.mu.Lock()
	gate := r.toggleGate
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.toggles = append(r.toggles, id)

	return r.toggleErr
}

// IncrementThumbsUpCount implements types.Repository.
func (r *ScriptedRepository) IncrementThumbsUpCount(_ context.Context, id types.SessionID, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.increments = append(r.increments, IncrementCall{ID: id, Count: count})

	return r.incrementErr
}

// PublishSessions pushes a schedule snapshot to every session subscriber
// and replays it to subscribers arriving later.
func (r *ScriptedRepository) PublishSessions(collection types.SessionCollection) {
	r.mu.Lock()
	r.lastSessions = &collection
	r.mu.Unlock()
	broadcast(r, r.sessionSubs, streamEvent[types.SessionCollection]{value: collection})
}

// FailSessions terminates every active session stream with err.
func (r *ScriptedRepository) FailSessions(err error) {
	broadcast(r, r.sessionSubs, streamEvent[types.SessionCollection]{err: err})
}

// PublishCount pushes a thumbs-up total to every count subscriber and
// replays it to subscribers arriving later.
func (r *ScriptedRepository) PublishCount(count int) {
	r.mu.Lock()
	r.lastCount = &count
	r.mu.Unlock()
	broadcast(r, r.countSubs, streamEvent[int]{value: count})
}

// FailCount terminates every active count stream with err.
func (r *ScriptedRepository) FailCount(err error) {
	broadcast(r, r.countSubs, streamEvent[int]{err: err})
}

// SetToggleErr injects a failure into subsequent ToggleFavorite calls.
func (r *ScriptedRepository) SetToggleErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toggleErr = err
}

// SetIncrementErr injects a failure into subsequent IncrementThumbsUpCount calls.
func (r *ScriptedRepository) SetIncrementErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incrementErr = err
}

// HoldToggles makes ToggleFavorite block until the returned release function
// is called, for observing the in-flight Loading state.
func (r *ScriptedRepository) HoldToggles() (release func()) {
	gate := make(chan struct{})
	r.mu.Lock()
	r.toggleGate = gate
	r.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			close(gate)
			r.mu.Lock()
			r.toggleGate = nil
			r.mu.Unlock()
		})
	}
}

// ToggleCalls returns the ids passed to ToggleFavorite so far.
func (r *ScriptedRepository) ToggleCalls() []types.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.SessionID, len(r.toggles))
	copy(out, r.toggles)

	return out
}

// IncrementCalls returns the coalesced writes received so far.
func (r *ScriptedRepository) IncrementCalls() []IncrementCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]IncrementCall, len(r.increments))
	copy(out, r.increments)

	return out
}

// subscribe registers a stream channel and enqueues the replay event, if
// any, before releasing the lock so no published value can slip between.
func subscribe[T any](r *ScriptedRepository, subs map[int]chan streamEvent[T], replay func() *streamEvent[T]) (<-chan streamEvent[T], func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	ch := make(chan streamEvent[T], 64)
	subs[id] = ch
	if ev := replay(); ev != nil {
		ch <- *ev
	}
	r.mu.Unlock()

	return ch, func() {
		r.mu.Lock()
		delete(subs, id)
		r.mu.Unlock()
	}
}

func broadcast[T any](r *ScriptedRepository, subs map[int]chan streamEvent[T], ev streamEvent[T]) {
	r.mu.Lock()
	targets := make([]chan streamEvent[T], 0, len(subs))
	for _, ch := range subs {
		targets = append(targets, ch)
	}
	r.mu.Unlock()

	for _, ch := range targets {
		ch <- ev
	}
}

func pump[T any](ctx context.Context, ch <-chan streamEvent[T], emit func(T)) error {
	for {
		select {
		case ev := <-ch:
			if ev.err != nil {
				return ev.err
			}
			emit(ev.value)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
