package sessionview

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/ryo-makiyama/sessionview/coalesce"
	"github.com/ryo-makiyama/sessionview/internal/hooks"
	"github.com/ryo-makiyama/sessionview/internal/logging"
	"github.com/ryo-makiyama/sessionview/internal/metrics"
	"github.com/ryo-makiyama/sessionview/stream"
	"github.com/ryo-makiyama/sessionview/types"
)

// Controller aggregates one session detail screen's sources into a single
// view-state stream and coalesces thumbs-up taps into debounced writes.
//
// Controller is the main entry point of the sessionview library. It handles:
//   - Wrapping the repository's streams into LoadState sequences
//   - Combining all sources into immutable ViewState snapshots
//   - Debouncing and batching rapid thumbs-up taps
//   - Fan-out of snapshots to subscribers
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Snapshots are recomputed on a single combining goroutine, never torn
//
// Lifecycle:
//   - Create with NewController()
//   - Call Start() to begin consuming the repository streams
//   - Observe snapshots via ViewState() or Subscribe()
//   - Call Stop() for graceful shutdown; pending debounced writes are dropped
type Controller struct {
	cfg  Config
	repo types.Repository

	// Optional dependencies
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger

	// Internal components
	coalescer *coalesce.Coalescer

	// Action-fed sources
	favoriteCh chan stream.LoadState[bool]
	expandCh   chan bool

	// State management
	state            atomic.Value // types.ViewState
	subscribers      *xsync.Map[uint64, *viewSubscriber]
	nextSubscriberID atomic.Uint64

	// Lifecycle management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewController creates a new Controller instance with the provided
// configuration.
//
// Returns a concrete *Controller struct following the "accept interfaces,
// return structs" principle. Consumers can define their own interfaces for
// testing if needed.
//
// Parameters:
//   - cfg: Runtime configuration; zero fields take production defaults
//   - repo: Repository supplying the source streams and accepting writes
//   - opts: Optional configuration (hooks, metrics, logger)
//
// Returns:
//   - *Controller: Initialized controller instance
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	cfg := sessionview.Config{SessionID: "s-101"}
//	ctrl, err := sessionview.NewController(&cfg, repo)
func NewController(cfg *Config, repo types.Repository, opts ...Option) (*Controller, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	// Fill in missing configuration values with defaults
	SetDefaults(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Apply options
	options := &controllerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	collector := options.metrics
	if collector == nil {
		collector = metrics.NewNop()
	}

	logger := options.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	hookSet := options.hooks
	if hookSet == nil {
		nopHooks := hooks.NewNop()
		hookSet = &nopHooks
	}

	c := &Controller{
		cfg:         *cfg,
		repo:        repo,
		hooks:       hookSet,
		metrics:     collector,
		logger:      logger,
		favoriteCh:  make(chan stream.LoadState[bool], 16),
		expandCh:    make(chan bool, 1),
		subscribers: xsync.NewMap[uint64, *viewSubscriber](),
	}

	coalescer, err := coalesce.New(coalesce.Config{
		Window:        cfg.DebounceWindow,
		MaxApplyCount: cfg.MaxApplyCount,
		FlushTimeout:  cfg.OperationTimeout,
	}, c.flushIncrements,
		coalesce.WithLogger(logger),
		coalesce.WithMetrics(collector),
		coalesce.WithObserver(c.observeFlush),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create coalescer: %w", err)
	}
	c.coalescer = coalescer

	// Initialize state
	c.state.Store(types.EmptyViewState())

	return c, nil
}

// Start launches the source streams and the state combinator.
//
// Start returns immediately; the first snapshot observable after Start is
// the EMPTY baseline, updated as sources begin emitting.
//
// Parameters:
//   - ctx: Context for the start procedure (the controller's own lifetime
//     ends at Stop, not at ctx's cancellation)
//
// Returns:
//   - error: ErrAlreadyStarted when the controller is already running
func (c *Controller) Start(_ context.Context) error {
	c.mu.Lock()
	if c.ctx != nil {
		c.mu.Unlock()

		return ErrAlreadyStarted
	}

	// Create controller lifetime context
	c.ctx, c.cancel = context.WithCancel(context.Background())
	runCtx := c.ctx
	c.mu.Unlock()

	sessionStates := stream.Load(runCtx, func(ctx context.Context, emit func(types.SessionCollection)) error {
		return c.repo.SessionContents(ctx, emit)
	})
	countStates := stream.Load(runCtx, func(ctx context.Context, emit func(int)) error {
		return c.repo.ThumbsUpCounts(ctx, c.cfg.SessionID, emit)
	})

	if err := c.coalescer.Start(runCtx); err != nil {
		return fmt.Errorf("failed to start coalescer: %w", err)
	}

	snapshots := stream.Combine(runCtx, types.EmptyViewState(), newProjection(c.cfg.SessionID),
		stream.From(sessionStates),
		stream.From(c.favoriteCh),
		stream.From(c.expandCh),
		stream.From(countStates),
		stream.From(c.coalescer.Updates()),
	)

	c.wg.Add(1)
	go c.consumeSnapshots(runCtx, snapshots)

	c.logger.Info("controller started", "session_id", c.cfg.SessionID)

	return nil
}

// Stop shuts the controller down and waits for internal goroutines to exit.
//
// All source subscriptions, the debounce timer, and subscriber channels are
// released together. A thumbs-up batch still waiting on its debounce window
// is dropped.
//
// Parameters:
//   - ctx: Bounds the wait for goroutine teardown
//
// Returns:
//   - error: ErrNotStarted when Start was never called, or ctx's error when
//     teardown exceeds its deadline
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.ctx == nil {
		c.mu.Unlock()

		return ErrNotStarted
	}
	if c.stopped {
		c.mu.Unlock()

		return nil
	}
	c.stopped = true
	cancel := c.cancel
	c.mu.Unlock()

	cancel()

	if err := c.coalescer.Stop(); err != nil {
		c.logger.Warn("failed to stop coalescer", "error", err)
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("controller teardown incomplete: %w", ctx.Err())
	}

	// Release subscribers after the combining goroutine has exited, so no
	// further snapshots are broadcast.
	c.subscribers.Range(func(id uint64, sub *viewSubscriber) bool {
		sub.close()
		c.subscribers.Delete(id)

		return true
	})

	c.logger.Info("controller stopped", "session_id", c.cfg.SessionID)

	return nil
}

// ViewState returns the latest snapshot.
//
// Before any source emits, this is the EMPTY baseline.
func (c *Controller) ViewState() types.ViewState {
	return c.state.Load().(types.ViewState)
}

// Subscribe returns a channel that receives view-state snapshots.
//
// The subscriber receives the current snapshot immediately. Slow subscribers
// skip intermediate snapshots once their buffer fills (recorded via metrics);
// they always receive a later one. The channel closes when the controller
// stops or the returned unsubscribe function is called.
//
// Returns:
//   - <-chan types.ViewState: Channel that receives snapshots
//   - func(): Unsubscribe function to release resources
//
// Example:
//
//	states, unsubscribe := ctrl.Subscribe()
//	defer unsubscribe()
//	for state := range states {
//	    render(state)
//	}
func (c *Controller) Subscribe() (<-chan types.ViewState, func()) {
	id := c.nextSubscriberID.Add(1)

	sub := &viewSubscriber{ch: make(chan types.ViewState, c.cfg.SubscriberBuffer)}
	c.subscribers.Store(id, sub)

	// Immediately replay the current snapshot
	sub.trySend(c.ViewState(), c.metrics)

	unsubscribe := func() {
		if s, ok := c.subscribers.LoadAndDelete(id); ok {
			s.close()
		}
	}

	return sub.ch, unsubscribe
}

// Favorite toggles the favorite mark for the controller's session.
//
// Fire-and-forget: the toggle's progress surfaces only through the
// view-state stream (Loading while in flight, a FavoriteToggle error on
// failure). There is no single-flight guard; concurrent calls race and the
// last write wins.
func (c *Controller) Favorite() {
	runCtx := c.runContext()
	if runCtx == nil {
		c.logger.Warn("favorite ignored; controller not started")

		return
	}

	c.sendFavorite(runCtx, stream.Loading[bool]())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		opCtx, cancel := context.WithTimeout(runCtx, c.cfg.OperationTimeout)
		defer cancel()

		if err := c.repo.ToggleFavorite(opCtx, c.cfg.SessionID); err != nil {
			c.logger.Warn("favorite toggle failed", "session_id", c.cfg.SessionID, "error", err)
			c.notifyError(runCtx, err)
			c.sendFavorite(runCtx, stream.Errored[bool](err))

			return
		}

		c.sendFavorite(runCtx, stream.Loaded(true))
	}()
}

// ExpandDescription expands the session description.
//
// Idempotent and monotonic: there is no collapse action, so calling it again
// leaves the description expanded.
func (c *Controller) ExpandDescription() {
	select {
	case c.expandCh <- true:
	default:
		// An expand is already queued; a second one would be a no-op anyway.
	}
}

// ThumbsUp records one thumbs-up tap for the controller's session.
//
// The optimistic pending counter in the view state updates synchronously;
// the persisted write is debounced and batched (see package coalesce).
func (c *Controller) ThumbsUp() {
	c.coalescer.Tap(c.cfg.SessionID.String())
}

// runContext returns the controller's lifetime context, nil before Start.
func (c *Controller) runContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ctx
}

// sendFavorite feeds one favorite status into the combinator.
func (c *Controller) sendFavorite(runCtx context.Context, st stream.LoadState[bool]) {
	select {
	case c.favoriteCh <- st:
	case <-runCtx.Done():
	}
}

// flushIncrements is the coalescer's downstream write.
func (c *Controller) flushIncrements(ctx context.Context, id string, count int) error {
	return c.repo.IncrementThumbsUpCount(ctx, types.SessionID(id), count)
}

// observeFlush forwards flush outcomes to the hooks. Flush failures are
// deliberately not retried and the optimistic counter is not rolled back;
// the outcome reaches the view state through the coalescer's status stream.
func (c *Controller) observeFlush(id string, count int, err error) {
	runCtx := c.runContext()
	if runCtx == nil {
		return
	}

	if c.hooks.OnFlush != nil {
		go func() {
			if hookErr := c.hooks.OnFlush(runCtx, types.SessionID(id), count, err); hookErr != nil {
				c.logger.Warn("flush hook failed", "error", hookErr)
			}
		}()
	}
	if err != nil {
		c.notifyError(runCtx, err)
	}
}

// notifyError invokes the OnError hook asynchronously.
func (c *Controller) notifyError(runCtx context.Context, err error) {
	if c.hooks.OnError == nil {
		return
	}

	go func() {
		if hookErr := c.hooks.OnError(runCtx, err); hookErr != nil {
			c.logger.Warn("error hook failed", "error", hookErr)
		}
	}()
}

// consumeSnapshots drains the combinator, maintaining the latest snapshot
// and fanning it out to subscribers.
func (c *Controller) consumeSnapshots(runCtx context.Context, snapshots <-chan types.ViewState) {
	defer c.wg.Done()

	var lastKind types.ErrorKind
	hadErr := false

	for snap := range snapshots {
		c.state.Store(snap)
		c.metrics.RecordRecompute()

		if kind, ok := snap.ErrKind(); ok {
			if !hadErr || kind != lastKind {
				c.metrics.RecordViewError(kind.String())
				c.logger.Debug("view error surfaced", "kind", kind, "error", snap.Err.Cause)
			}
			hadErr = true
			lastKind = kind
		} else {
			hadErr = false
		}

		c.broadcast(snap)

		if c.hooks.OnViewState != nil {
			go func(s types.ViewState) {
				if err := c.hooks.OnViewState(runCtx, s); err != nil {
					c.logger.Warn("view-state hook failed", "error", err)
				}
			}(snap)
		}
	}
}

// broadcast fans one snapshot out to every subscriber without blocking.
func (c *Controller) broadcast(snap types.ViewState) {
	c.subscribers.Range(func(_ uint64, sub *viewSubscriber) bool {
		sub.trySend(snap, c.metrics)

		return true
	})
}
