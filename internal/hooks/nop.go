// Package hooks provides the default no-op hook set.
package hooks

import (
	"context"

	"github.com/ryo-makiyama/sessionview/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// NewNop creates a new no-op hooks set.
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnViewState: h.OnViewState,
		OnFlush:     h.OnFlush,
		OnError:     h.OnError,
	}
}

// OnViewState is a no-op implementation.
func (h *NopHooks) OnViewState(_ context.Context, _ types.ViewState) error {
	return nil
}

// OnFlush is a no-op implementation.
func (h *NopHooks) OnFlush(_ context.Context, _ types.SessionID, _ int, _ error) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
