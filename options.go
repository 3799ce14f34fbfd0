package sessionview

// Option configures a Controller with optional dependencies.
type Option func(*controllerOptions)

// controllerOptions holds optional Controller configuration.
type controllerOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	hooks := &sessionview.Hooks{
//	    OnFlush: func(ctx context.Context, id sessionview.SessionID, count int, err error) error {
//	        return recordFlush(id, count, err)
//	    },
//	}
//	ctrl, err := sessionview.NewController(&cfg, repo, sessionview.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *controllerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - collector: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	collector := myPrometheusCollector
//	ctrl, err := sessionview.NewController(&cfg, repo, sessionview.WithMetrics(collector))
func WithMetrics(collector MetricsCollector) Option {
	return func(o *controllerOptions) {
		o.metrics = collector
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with slog-style loggers)
//
// Returns:
//   - Option: Functional option for NewController
//
// Example:
//
//	logger := mySlogAdapter
//	ctrl, err := sessionview.NewController(&cfg, repo, sessionview.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *controllerOptions) {
		o.logger = logger
	}
}
