package sessionview

import (
	"sync"

	"github.com/ryo-makiyama/sessionview/types"
)

// viewSubscriber is a helper for managing view-state subscriptions.
type viewSubscriber struct {
	ch     chan types.ViewState
	mu     sync.Mutex
	closed bool
}

// trySend sends a snapshot to the subscriber's channel without blocking.
func (s *viewSubscriber) trySend(state types.ViewState, collector types.ControllerMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.ch <- state:
	default:
		// Subscriber is slow or not ready; they will get the next snapshot.
		collector.RecordSnapshotDropped()
	}
}

// close safely closes the subscriber's channel.
func (s *viewSubscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
