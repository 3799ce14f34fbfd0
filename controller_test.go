package sessionview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	svtest "github.com/ryo-makiyama/sessionview/testing"
	"github.com/ryo-makiyama/sessionview/types"
)

const testSessionID = SessionID("s-101")

func testSchedule() types.SessionCollection {
	return types.SessionCollection{
		{ID: "s-100", Title: "Registration"},
		{ID: testSessionID, Title: "Opening keynote", Room: "Hall A",
			Description: "A very long description that the screen truncates."},
	}
}

// startController spins up a controller over a scripted repository with a
// short debounce window so batching tests stay fast.
func startController(t *testing.T, opts ...Option) (*Controller, *svtest.ScriptedRepository) {
	t.Helper()

	repo := svtest.NewScriptedRepository()
	cfg := Config{
		SessionID:      testSessionID,
		DebounceWindow: 50 * time.Millisecond,
	}

	ctrl, err := NewController(&cfg, repo, opts...)
	require.NoError(t, err)
	require.NoError(t, ctrl.Start(context.Background()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ctrl.Stop(ctx)
	})

	return ctrl, repo
}

func TestNewControllerValidation(t *testing.T) {
	repo := svtest.NewScriptedRepository()

	t.Run("nil config", func(t *testing.T) {
		_, err := NewController(nil, repo)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewController(&Config{SessionID: testSessionID}, nil)
		require.ErrorIs(t, err, ErrRepositoryRequired)
	})

	t.Run("missing session id", func(t *testing.T) {
		_, err := NewController(&Config{}, repo)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("defaults applied", func(t *testing.T) {
		cfg := Config{SessionID: testSessionID}
		_, err := NewController(&cfg, repo)
		require.NoError(t, err)
		require.Equal(t, 500*time.Millisecond, cfg.DebounceWindow)
		require.Equal(t, 50, cfg.MaxApplyCount)
	})
}

func TestControllerLifecycle(t *testing.T) {
	repo := svtest.NewScriptedRepository()
	ctrl, err := NewController(&Config{SessionID: testSessionID}, repo)
	require.NoError(t, err)

	ctx := context.Background()

	require.ErrorIs(t, ctrl.Stop(ctx), ErrNotStarted)

	require.NoError(t, ctrl.Start(ctx))
	require.ErrorIs(t, ctrl.Start(ctx), ErrAlreadyStarted)

	require.NoError(t, ctrl.Stop(ctx))
	// Stop is idempotent.
	require.NoError(t, ctrl.Stop(ctx))
}

func TestControllerBaselineState(t *testing.T) {
	ctrl, _ := startController(t)

	state := ctrl.ViewState()
	require.Nil(t, state.Session)
	require.Nil(t, state.Err)
	require.True(t, state.ShowEllipsis)
	require.Zero(t, state.TotalThumbsUpCount)
	require.Zero(t, state.PendingIncrement)
}

func TestControllerSessionLoads(t *testing.T) {
	ctrl, repo := startController(t)

	// The streams report Loading before the first value arrives.
	require.Eventually(t, func() bool {
		return ctrl.ViewState().Loading
	}, 2*time.Second, 5*time.Millisecond)

	repo.PublishSessions(testSchedule())

	require.Eventually(t, func() bool {
		s := ctrl.ViewState()
		return s.Session != nil && s.Session.Title == "Opening keynote"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestControllerSessionSticky(t *testing.T) {
	ctrl, repo := startController(t)

	repo.PublishSessions(testSchedule())
	require.Eventually(t, func() bool {
		return ctrl.ViewState().Session != nil
	}, 2*time.Second, 5*time.Millisecond)

	repo.FailSessions(errors.New("schedule stream lost"))

	require.Eventually(t, func() bool {
		s := ctrl.ViewState()
		kind, ok := s.ErrKind()
		return ok && kind == types.KindSessionLoad
	}, 2*time.Second, 5*time.Millisecond)

	// The populated session survives the stream failure.
	require.NotNil(t, ctrl.ViewState().Session)
	require.Equal(t, "Opening keynote", ctrl.ViewState().Session.Title)
}

func TestControllerCountLoads(t *testing.T) {
	ctrl, repo := startController(t)

	repo.PublishCount(42)
	require.Eventually(t, func() bool {
		return ctrl.ViewState().TotalThumbsUpCount == 42
	}, 2*time.Second, 5*time.Millisecond)

	repo.PublishCount(43)
	require.Eventually(t, func() bool {
		return ctrl.ViewState().TotalThumbsUpCount == 43
	}, 2*time.Second, 5*time.Millisecond)
}

func TestControllerFavorite(t *testing.T) {
	ctrl, repo := startController(t)

	// Settle the session stream first so Loading reflects only the toggle.
	repo.PublishSessions(testSchedule())
	require.Eventually(t, func() bool {
		s := ctrl.ViewState()
		return s.Session != nil && !s.Loading
	}, 2*time.Second, 5*time.Millisecond)

	release := repo.HoldToggles()

	ctrl.Favorite()

	// In-flight toggle surfaces as Loading.
	require.Eventually(t, func() bool {
		return ctrl.ViewState().Loading
	}, 2*time.Second, 5*time.Millisecond)

	release()

	require.Eventually(t, func() bool {
		return len(repo.ToggleCalls()) == 1 && !ctrl.ViewState().Loading
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, testSessionID, repo.ToggleCalls()[0])
	require.Nil(t, ctrl.ViewState().Err)
}

func TestControllerFavoriteFailure(t *testing.T) {
	ctrl, repo := startController(t)

	repo.PublishSessions(testSchedule())
	require.Eventually(t, func() bool {
		return !ctrl.ViewState().Loading
	}, 2*time.Second, 5*time.Millisecond)

	repo.SetToggleErr(errors.New("backend rejected toggle"))

	ctrl.Favorite()

	require.Eventually(t, func() bool {
		kind, ok := ctrl.ViewState().ErrKind()
		return ok && kind == types.KindFavoriteToggle
	}, 2*time.Second, 5*time.Millisecond)

	// A later successful toggle clears the error.
	repo.SetToggleErr(nil)
	ctrl.Favorite()

	require.Eventually(t, func() bool {
		return ctrl.ViewState().Err == nil && !ctrl.ViewState().Loading
	}, 2*time.Second, 5*time.Millisecond)
}

func TestControllerExpandDescription(t *testing.T) {
	ctrl, _ := startController(t)

	require.True(t, ctrl.ViewState().ShowEllipsis)

	ctrl.ExpandDescription()
	require.Eventually(t, func() bool {
		return !ctrl.ViewState().ShowEllipsis
	}, 2*time.Second, 5*time.Millisecond)

	// Idempotent: a second expand leaves the description expanded.
	ctrl.ExpandDescription()
	time.Sleep(50 * time.Millisecond)
	require.False(t, ctrl.ViewState().ShowEllipsis)
}

func TestControllerThumbsUpBatching(t *testing.T) {
	ctrl, repo := startController(t)

	for i := 0; i < 10; i++ {
		ctrl.ThumbsUp()
	}

	// The optimistic counter reflects every tap before any write happens.
	require.Eventually(t, func() bool {
		return ctrl.ViewState().PendingIncrement == 10
	}, 2*time.Second, time.Millisecond)
	require.Empty(t, repo.IncrementCalls())

	// One coalesced write after the debounce window.
	require.Eventually(t, func() bool {
		return len(repo.IncrementCalls()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	call := repo.IncrementCalls()[0]
	require.Equal(t, testSessionID, call.ID)
	require.Equal(t, 10, call.Count)

	// The pending counter resets after the flush.
	require.Eventually(t, func() bool {
		return ctrl.ViewState().PendingIncrement == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestControllerThumbsUpBatchesResetBetweenBursts(t *testing.T) {
	ctrl, repo := startController(t)

	ctrl.ThumbsUp()
	ctrl.ThumbsUp()
	require.Eventually(t, func() bool {
		return len(repo.IncrementCalls()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	ctrl.ThumbsUp()
	require.Eventually(t, func() bool {
		return len(repo.IncrementCalls()) == 2
	}, 2*time.Second, 5*time.Millisecond)

	calls := repo.IncrementCalls()
	require.Equal(t, 2, calls[0].Count)
	require.Equal(t, 1, calls[1].Count)
}

func TestControllerThumbsUpCap(t *testing.T) {
	repo := svtest.NewScriptedRepository()
	cfg := Config{
		SessionID:      testSessionID,
		DebounceWindow: 50 * time.Millisecond,
		MaxApplyCount:  5,
	}

	ctrl, err := NewController(&cfg, repo)
	require.NoError(t, err)
	require.NoError(t, ctrl.Start(context.Background()))
	t.Cleanup(func() { _ = ctrl.Stop(context.Background()) })

	for i := 0; i < 8; i++ {
		ctrl.ThumbsUp()
	}

	require.Eventually(t, func() bool {
		return len(repo.IncrementCalls()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 5, repo.IncrementCalls()[0].Count)
}

func TestControllerFlushFailureSurfaces(t *testing.T) {
	ctrl, repo := startController(t)
	repo.SetIncrementErr(errors.New("backend rejected increment"))

	ctrl.ThumbsUp()

	require.Eventually(t, func() bool {
		kind, ok := ctrl.ViewState().ErrKind()
		return ok && kind == types.KindIncrementFlush
	}, 2*time.Second, 5*time.Millisecond)

	// The failed batch is not retried.
	time.Sleep(150 * time.Millisecond)
	require.Len(t, repo.IncrementCalls(), 1)

	// The next tap clears the stale flush error.
	repo.SetIncrementErr(nil)
	ctrl.ThumbsUp()

	require.Eventually(t, func() bool {
		return ctrl.ViewState().Err == nil
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(repo.IncrementCalls()) == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestControllerSubscribe(t *testing.T) {
	ctrl, repo := startController(t)

	states, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	// The current snapshot is replayed immediately.
	select {
	case state := <-states:
		require.True(t, state.ShowEllipsis)
	case <-time.After(2 * time.Second):
		t.Fatal("no replayed snapshot")
	}

	repo.PublishSessions(testSchedule())

	require.Eventually(t, func() bool {
		select {
		case state, ok := <-states:
			return ok && state.Session != nil
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}

func TestControllerUnsubscribe(t *testing.T) {
	ctrl, _ := startController(t)

	states, unsubscribe := ctrl.Subscribe()
	unsubscribe()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-states:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	// Unsubscribing twice is safe.
	unsubscribe()
}

func TestControllerStopClosesSubscribers(t *testing.T) {
	repo := svtest.NewScriptedRepository()
	ctrl, err := NewController(&Config{SessionID: testSessionID}, repo)
	require.NoError(t, err)
	require.NoError(t, ctrl.Start(context.Background()))

	states, _ := ctrl.Subscribe()

	require.NoError(t, ctrl.Stop(context.Background()))

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-states:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}

func TestControllerStopDropsPendingBatch(t *testing.T) {
	repo := svtest.NewScriptedRepository()
	cfg := Config{
		SessionID:      testSessionID,
		DebounceWindow: time.Hour, // never fires during the test
	}

	ctrl, err := NewController(&cfg, repo)
	require.NoError(t, err)
	require.NoError(t, ctrl.Start(context.Background()))

	ctrl.ThumbsUp()
	ctrl.ThumbsUp()

	require.NoError(t, ctrl.Stop(context.Background()))
	require.Empty(t, repo.IncrementCalls())
}

func TestControllerHooks(t *testing.T) {
	var mu sync.Mutex
	var flushes []int
	sawState := make(chan struct{}, 64)

	hooks := Hooks{
		OnViewState: func(_ context.Context, _ ViewState) error {
			select {
			case sawState <- struct{}{}:
			default:
			}
			return nil
		},
		OnFlush: func(_ context.Context, _ SessionID, count int, _ error) error {
			mu.Lock()
			flushes = append(flushes, count)
			mu.Unlock()
			return nil
		},
	}

	ctrl, _ := startController(t, WithHooks(&hooks))

	ctrl.ThumbsUp()
	ctrl.ThumbsUp()
	ctrl.ThumbsUp()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(flushes) == 1 && flushes[0] == 3
	}, 2*time.Second, 5*time.Millisecond)

	select {
	case <-sawState:
	case <-time.After(2 * time.Second):
		t.Fatal("view-state hook never fired")
	}
}
