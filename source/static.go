package source

import (
	"context"
	"sync"

	"github.com/ryo-makiyama/sessionview/types"
)

// Static implements an in-memory session repository.
//
// All state lives in process memory. Writes are applied immediately and
// re-emitted to every active stream, so a controller wired to a Static
// repository observes its own toggles and increments without a backend.
type Static struct {
	mu          sync.Mutex
	sessions    types.SessionCollection
	hasSessions bool
	favorites   map[types.SessionID]bool
	counts      map[types.SessionID]int

	nextSubID   int
	sessionSubs map[int]chan types.SessionCollection
	countSubs   map[int]countSub
}

type countSub struct {
	id types.SessionID
	ch chan int
}

var _ types.Repository = (*Static)(nil)

// NewStatic creates an in-memory repository seeded with the given schedule.
//
// Thumbs-up counts start at zero and no session is favorited. Use Update
// to replace the schedule later, which re-emits it to every active
// SessionContents stream.
//
// Parameters:
//   - sessions: Initial schedule snapshot (may be empty)
//
// Returns:
//   - *Static: Initialized in-memory repository
//
// Example:
//
//	repo := source.NewStatic(types.SessionCollection{
//	    {ID: "s-101", Title: "What's new in the platform"},
//	})
//	ctrl, err := sessionview.NewController(cfg, repo)
//	if err != nil { /* handle */ }
func NewStatic(sessions types.SessionCollection) *Static {
	s := &Static{
		favorites:   make(map[types.SessionID]bool),
		counts:      make(map[types.SessionID]int),
		sessionSubs: make(map[int]chan types.SessionCollection),
		countSubs:   make(map[int]countSub),
	}
	if sessions != nil {
		s.sessions = cloneSessions(sessions)
		s.hasSessions = true
	}

	return s
}

// SessionContents implements types.Repository.
//
// The current schedule (if seeded) is emitted first, then every update,
// until ctx is cancelled.
func (s *Static) SessionContents(ctx context.Context, emit func(types.SessionCollection)) error {
	s.mu.Lock()
	subID := s.nextSubID
	s.nextSubID++
	ch := make(chan types.SessionCollection, 16)
	s.sessionSubs[subID] = ch
	if s.hasSessions {
		ch <- s.snapshotLocked()
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sessionSubs, subID)
		s.mu.Unlock()
	}()

	for {
		select {
		case collection := <-ch:
			emit(collection)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ThumbsUpCounts implements types.Repository.
//
// The current total for id is emitted immediately, then every change,
// until ctx is cancelled.
func (s *Static) ThumbsUpCounts(ctx context.Context, id types.SessionID, emit func(int)) error {
	s.mu.Lock()
	subID := s.nextSubID
	s.nextSubID++
	ch := make(chan int, 16)
	s.countSubs[subID] = countSub{id: id, ch: ch}
	ch <- s.counts[id]
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.countSubs, subID)
		s.mu.Unlock()
	}()

	for {
		select {
		case count := <-ch:
			emit(count)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ToggleFavorite implements types.Repository.
//
// The favorite flag for id is flipped and the updated schedule is
// re-emitted to every SessionContents stream.
func (s *Static) ToggleFavorite(_ context.Context, id types.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites[id] = !s.favorites[id]
	s.broadcastSessionsLocked()

	return nil
}

// IncrementThumbsUpCount implements types.Repository.
//
// The total for id is raised by count and re-emitted to every
// ThumbsUpCounts stream watching that session.
func (s *Static) IncrementThumbsUpCount(_ context.Context, id types.SessionID, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[id] += count
	for _, sub := range s.countSubs {
		if sub.id == id {
			sub.ch <- s.counts[id]
		}
	}

	return nil
}

// Update replaces the schedule and re-emits it to every active stream.
//
// Favorite flags survive the update: the emitted snapshot carries the
// repository's favorite state, not the IsFavorited values in sessions.
//
// Parameters:
//   - sessions: New schedule snapshot
func (s *Static) Update(sessions types.SessionCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = cloneSessions(sessions)
	s.hasSessions = true
	s.broadcastSessionsLocked()
}

// SetCount overwrites the thumbs-up total for id and re-emits it.
// Useful for simulating remote increments from other attendees.
func (s *Static) SetCount(id types.SessionID, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[id] = count
	for _, sub := range s.countSubs {
		if sub.id == id {
			sub.ch <- count
		}
	}
}

// IsFavorited reports the current favorite flag for id.
func (s *Static) IsFavorited(id types.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.favorites[id]
}

// Count returns the current thumbs-up total for id.
func (s *Static) Count(id types.SessionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[id]
}

func (s *Static) broadcastSessionsLocked() {
	if !s.hasSessions {
		return
	}
	snapshot := s.snapshotLocked()
	for _, ch := range s.sessionSubs {
		ch <- snapshot
	}
}

// snapshotLocked copies the schedule with favorite flags applied.
func (s *Static) snapshotLocked() types.SessionCollection {
	snapshot := cloneSessions(s.sessions)
	for i := range snapshot {
		snapshot[i].IsFavorited = s.favorites[snapshot[i].ID]
	}

	return snapshot
}

func cloneSessions(sessions types.SessionCollection) types.SessionCollection {
	out := make(types.SessionCollection, len(sessions))
	copy(out, sessions)

	return out
}
