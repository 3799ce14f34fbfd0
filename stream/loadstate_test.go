package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, ch <-chan LoadState[T]) []LoadState[T] {
	t.Helper()

	var states []LoadState[T]
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return states
			}
			states = append(states, s)
		case <-timeout:
			t.Fatal("timed out waiting for load stream to close")
		}
	}
}

func TestLoadState_ZeroValueIsLoading(t *testing.T) {
	var s LoadState[int]

	require.True(t, s.IsLoading())
	require.NoError(t, s.Err())

	_, ok := s.Value()
	require.False(t, ok)
}

func TestLoadState_Loaded(t *testing.T) {
	s := Loaded(42)

	require.False(t, s.IsLoading())
	v, ok := s.Value()
	require.True(t, ok)
	require.Equal(t, 42, v)
	require.Equal(t, "Loaded", s.String())
}

func TestLoad_SuccessSequence(t *testing.T) {
	ch := Load(context.Background(), func(_ context.Context, emit func(int)) error {
		emit(1)
		emit(2)
		return nil
	})

	states := collect(t, ch)
	require.Len(t, states, 3)
	require.True(t, states[0].IsLoading())

	v, ok := states[1].Value()
	require.True(t, ok)
	require.Equal(t, 1, v)

	v, ok = states[2].Value()
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestLoad_ErrorTerminatesSequence(t *testing.T) {
	cause := errors.New("backend unavailable")

	ch := Load(context.Background(), func(_ context.Context, emit func(string)) error {
		emit("first")
		return cause
	})

	states := collect(t, ch)
	require.Len(t, states, 3)
	require.True(t, states[0].IsLoading())

	v, ok := states[1].Value()
	require.True(t, ok)
	require.Equal(t, "first", v)

	require.ErrorIs(t, states[2].Err(), cause)
	require.Equal(t, "Errored", states[2].String())
}

func TestLoad_PanicSurfacesAsError(t *testing.T) {
	ch := Load(context.Background(), func(_ context.Context, _ func(int)) error {
		panic("boom")
	})

	states := collect(t, ch)
	require.Len(t, states, 2)
	require.True(t, states[0].IsLoading())
	require.Error(t, states[1].Err())
	require.Contains(t, states[1].Err().Error(), "boom")
}

func TestLoad_CancellationIsNotAFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	ch := Load(ctx, func(ctx context.Context, _ func(int)) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	cancel()

	states := collect(t, ch)
	for _, s := range states {
		require.NoError(t, s.Err(), "teardown must not surface as an Errored state")
	}
}
