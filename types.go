package sessionview

import "github.com/ryo-makiyama/sessionview/types"

// Re-export types from the types package.
//
// This file provides a stable public API for the library's core types. It
// uses type aliases to re-export definitions from the `types` subpackage,
// which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root sessionview
// package, while still providing a convenient `sessionview.ViewState`,
// `sessionview.Repository`, etc. for users.
type (
	ViewState         = types.ViewState
	ViewError         = types.ViewError
	ErrorKind         = types.ErrorKind
	Session           = types.Session
	SessionCollection = types.SessionCollection
	SessionID         = types.SessionID
	Speaker           = types.Speaker
)

// Re-export interfaces from the types package for convenience.
type (
	Repository       = types.Repository
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	Hooks            = types.Hooks
)

// Re-export ErrorKind constants from the types package.
const (
	KindSessionLoad    = types.KindSessionLoad
	KindFavoriteToggle = types.KindFavoriteToggle
	KindCountLoad      = types.KindCountLoad
	KindIncrementFlush = types.KindIncrementFlush
)

// EmptyViewState returns the baseline snapshot emitted before any source has
// produced a value.
func EmptyViewState() ViewState {
	return types.EmptyViewState()
}
