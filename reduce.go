package sessionview

import (
	"github.com/ryo-makiyama/sessionview/coalesce"
	"github.com/ryo-makiyama/sessionview/stream"
	"github.com/ryo-makiyama/sessionview/types"
)

// Source indexes into the combinator's Latest view. The order matches the
// sources passed to stream.Combine in Controller.Start.
const (
	srcSession = iota
	srcFavorite
	srcExpand
	srcCount
	srcIncrement
	sourceCount
)

// newProjection returns the pure reducer that folds the latest value of
// every source plus the previous snapshot into the next ViewState.
//
// Sticky semantics: Session and TotalThumbsUpCount only ever move forward to
// a newly loaded value; on any other emission, including errors on unrelated
// sources, they keep the previous snapshot's value.
func newProjection(id types.SessionID) func(prev types.ViewState, latest stream.Latest) types.ViewState {
	return func(prev types.ViewState, latest stream.Latest) types.ViewState {
		next := prev

		var sessionErr, favoriteErr, countErr, flushErr error
		loading := false

		if st, ok := stream.At[stream.LoadState[types.SessionCollection]](latest, srcSession); ok {
			loading = loading || st.IsLoading()
			sessionErr = st.Err()
			if collection, loaded := st.Value(); loaded {
				if session := collection.FindByID(id); session != nil {
					next.Session = session
				}
			}
		}

		if st, ok := stream.At[stream.LoadState[bool]](latest, srcFavorite); ok {
			loading = loading || st.IsLoading()
			favoriteErr = st.Err()
		}

		if expanded, ok := stream.At[bool](latest, srcExpand); ok && expanded {
			next.ShowEllipsis = false
		}

		if st, ok := stream.At[stream.LoadState[int]](latest, srcCount); ok {
			countErr = st.Err()
			if count, loaded := st.Value(); loaded {
				next.TotalThumbsUpCount = count
			}
		}

		if st, ok := stream.At[coalesce.Status](latest, srcIncrement); ok {
			next.PendingIncrement = st.Pending
			flushErr = st.Err
		}

		next.Loading = loading
		next.Err = pickError(sessionErr, favoriteErr, countErr, flushErr)

		return next
	}
}

// pickError selects the active error by fixed display priority.
func pickError(sessionErr, favoriteErr, countErr, flushErr error) *types.ViewError {
	switch {
	case sessionErr != nil:
		return &types.ViewError{Kind: types.KindSessionLoad, Cause: sessionErr}
	case favoriteErr != nil:
		return &types.ViewError{Kind: types.KindFavoriteToggle, Cause: favoriteErr}
	case countErr != nil:
		return &types.ViewError{Kind: types.KindCountLoad, Cause: countErr}
	case flushErr != nil:
		return &types.ViewError{Kind: types.KindIncrementFlush, Cause: flushErr}
	default:
		return nil
	}
}
