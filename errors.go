package sessionview

import "errors"

// Sentinel errors returned by the Controller.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRepositoryRequired is returned when the repository is nil.
	ErrRepositoryRequired = errors.New("repository is required")

	// ErrAlreadyStarted is returned when Start is called on an already running controller.
	ErrAlreadyStarted = errors.New("controller already started")

	// ErrNotStarted is returned when Stop is called on a controller that hasn't been started.
	ErrNotStarted = errors.New("controller not started")
)
