package coalesce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ryo-makiyama/sessionview/internal/logging"
	"github.com/ryo-makiyama/sessionview/internal/metrics"
	"github.com/ryo-makiyama/sessionview/types"
)

// Common errors for coalescer operations.
var (
	ErrFlushRequired  = errors.New("flush function is required")
	ErrAlreadyStarted = errors.New("coalescer already started")
	ErrNotStarted     = errors.New("coalescer not started")
	ErrAlreadyStopped = errors.New("coalescer already stopped")
)

// Defaults applied by New when the corresponding Config field is zero.
const (
	// DefaultWindow is the debounce quiescence window.
	DefaultWindow = 500 * time.Millisecond

	// DefaultMaxApplyCount caps the taps batched into one write.
	DefaultMaxApplyCount = 50

	// DefaultFlushTimeout bounds a single downstream write.
	DefaultFlushTimeout = 10 * time.Second

	// DefaultUpdateBuffer is the Status channel capacity.
	DefaultUpdateBuffer = 256
)

// FlushFunc writes one coalesced batch downstream.
type FlushFunc func(ctx context.Context, id string, count int) error

// Status is the coalescer's observable state, published on every change.
//
// Pending is the optimistic not-yet-flushed tap count. Err carries the most
// recent flush failure; it is cleared by the next tap, and never triggers a
// retry or a rollback of the optimistic counter.
type Status struct {
	Pending int
	Err     error
}

// Config controls coalescing behavior.
type Config struct {
	// Window is the tap-quiescence duration that triggers a flush.
	Window time.Duration

	// MaxApplyCount caps the pending count per batch.
	MaxApplyCount int

	// FlushTimeout bounds each downstream write.
	FlushTimeout time.Duration

	// UpdateBuffer is the capacity of the Updates channel.
	UpdateBuffer int
}

// Option configures a Coalescer with optional dependencies.
type Option func(*Coalescer)

// WithLogger sets a logger.
func WithLogger(logger types.Logger) Option {
	return func(c *Coalescer) {
		c.logger = logger
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(collector types.CoalescerMetrics) Option {
	return func(c *Coalescer) {
		c.metrics = collector
	}
}

// WithObserver sets a callback invoked after every flush attempt.
//
// The observer runs on the coalescer's flush goroutine; it should complete
// quickly. err is nil when the write succeeded.
func WithObserver(observe func(id string, count int, err error)) Option {
	return func(c *Coalescer) {
		c.observer = observe
	}
}

// Coalescer batches taps into debounced writes.
//
// Thread safety: Tap, Pending, Start and Stop are safe for concurrent use.
// The Updates channel must be drained by exactly one consumer; when it falls
// behind, the oldest queued Status is discarded so the newest always lands.
type Coalescer struct {
	cfg      Config
	flush    FlushFunc
	logger   types.Logger
	metrics  types.CoalescerMetrics
	observer func(id string, count int, err error)

	// Accumulation state
	mu       sync.Mutex
	pending  map[string]int
	order    []string // ids in first-tap order, flushed in that order
	flushErr error

	updates chan Status
	events  chan struct{}

	// Lifecycle management
	lifeMu  sync.Mutex
	started bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new coalescer.
//
// Parameters:
//   - cfg: Coalescing configuration; zero fields take the package defaults
//   - flush: Downstream write invoked once per entity per elapsed window
//   - opts: Optional logger, metrics and flush observer
//
// Returns:
//   - *Coalescer: Initialized coalescer, not yet running
//   - error: ErrFlushRequired when flush is nil
func New(cfg Config, flush FlushFunc, opts ...Option) (*Coalescer, error) {
	if flush == nil {
		return nil, ErrFlushRequired
	}

	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxApplyCount <= 0 {
		cfg.MaxApplyCount = DefaultMaxApplyCount
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}
	if cfg.UpdateBuffer <= 0 {
		cfg.UpdateBuffer = DefaultUpdateBuffer
	}

	c := &Coalescer{
		cfg:     cfg,
		flush:   flush,
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
		pending: make(map[string]int),
		updates: make(chan Status, cfg.UpdateBuffer),
		events:  make(chan struct{}, cfg.UpdateBuffer),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Start begins the debounce loop in a background goroutine.
//
// Returns:
//   - error: ErrAlreadyStarted or ErrAlreadyStopped on lifecycle misuse
func (c *Coalescer) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()

	if c.stopped {
		return ErrAlreadyStopped
	}
	if c.started {
		return ErrAlreadyStarted
	}

	c.started = true
	go c.run(ctx)

	return nil
}

// Stop stops the coalescer and waits for the debounce loop to exit.
//
// A batch still waiting on its debounce window is dropped, matching the
// owning screen's teardown semantics. Safe to call multiple times.
//
// Returns:
//   - error: ErrNotStarted when Stop is called before Start
func (c *Coalescer) Stop() error {
	c.lifeMu.Lock()
	if !c.started {
		c.lifeMu.Unlock()
		return ErrNotStarted
	}
	if c.stopped {
		c.lifeMu.Unlock()
		return nil
	}
	c.stopped = true
	c.lifeMu.Unlock()

	close(c.stopCh)
	<-c.doneCh

	if dropped := c.Pending(); dropped > 0 {
		c.logger.Debug("pending increments dropped on stop", "count", dropped)
	}

	return nil
}

// Tap records one tap for the given entity.
//
// The optimistic pending counter is bumped synchronously (capped at
// MaxApplyCount), any prior flush error is cleared, a Status update is
// published, and the debounce timer re-arms.
//
// Parameters:
//   - id: Entity receiving the tap
//
// Returns:
//   - int: The new total pending count
func (c *Coalescer) Tap(id string) int {
	c.mu.Lock()
	n := c.pending[id]
	if n == 0 {
		c.order = append(c.order, id)
	}
	if n < c.cfg.MaxApplyCount {
		n++
	}
	c.pending[id] = n
	c.flushErr = nil
	total := c.totalLocked()
	c.mu.Unlock()

	c.metrics.RecordTap()
	c.metrics.SetPendingIncrements(total)
	c.publish(Status{Pending: total})

	// Re-arm the debounce timer. An already queued event re-arms at a later
	// instant than this tap, so dropping when the buffer is non-empty is
	// harmless.
	select {
	case c.events <- struct{}{}:
	default:
	}

	return total
}

// Pending returns the current total pending count.
func (c *Coalescer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalLocked()
}

// LastFlushError returns the failure of the most recent flush attempt, nil
// when it succeeded or a tap has since cleared it.
func (c *Coalescer) LastFlushError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.flushErr
}

// Updates returns the Status stream for the state combinator.
//
// The channel never closes; it is abandoned when the coalescer stops.
func (c *Coalescer) Updates() <-chan Status {
	return c.updates
}

func (c *Coalescer) totalLocked() int {
	total := 0
	for _, n := range c.pending {
		total += n
	}

	return total
}

// publish delivers a Status without ever blocking a Tap. When the consumer
// lags, the oldest queued update is discarded so the newest one lands.
func (c *Coalescer) publish(st Status) {
	for {
		select {
		case c.updates <- st:
			return
		default:
		}

		select {
		case <-c.updates:
			c.logger.Debug("status update evicted; consumer lagging")
		default:
		}
	}
}

// run is the debounce loop: every tap event re-arms the timer, and a timer
// expiry with no pending events flushes the accumulated batches.
func (c *Coalescer) run(ctx context.Context) {
	defer close(c.doneCh)

	timer := time.NewTimer(c.cfg.Window)
	timer.Stop() // armed only while accumulating
	defer timer.Stop()

	for {
		select {
		case <-c.events:
			timer.Reset(c.cfg.Window)

		case <-timer.C:
			// A tap that raced the expiry re-arms instead of flushing early.
			if c.drainEvents() {
				timer.Reset(c.cfg.Window)
				continue
			}
			c.flushPending(ctx)

		case <-c.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

// drainEvents consumes queued tap events without blocking, reporting whether
// any were present.
func (c *Coalescer) drainEvents() bool {
	drained := false
	for {
		select {
		case <-c.events:
			drained = true
		default:
			return drained
		}
	}
}

// flushPending writes the accumulated batches, one write per entity, and
// publishes the post-flush Status. The pending counters reset regardless of
// the write outcome; failures are surfaced, not retried.
func (c *Coalescer) flushPending(ctx context.Context) {
	c.mu.Lock()
	if len(c.order) == 0 {
		c.mu.Unlock()
		return
	}
	ids := c.order
	counts := c.pending
	c.order = nil
	c.pending = make(map[string]int)
	c.mu.Unlock()

	var flushErr error
	for _, id := range ids {
		count := counts[id]

		flushCtx, cancel := context.WithTimeout(ctx, c.cfg.FlushTimeout)
		err := c.flush(flushCtx, id, count)
		cancel()

		c.metrics.RecordFlush(count, err == nil)
		if c.observer != nil {
			c.observer(id, count, err)
		}

		if err != nil {
			flushErr = fmt.Errorf("increment flush for %s: %w", id, err)
			c.logger.Error("coalesced write failed", "id", id, "count", count, "error", err)
		} else {
			c.logger.Debug("coalesced write flushed", "id", id, "count", count)
		}
	}

	c.mu.Lock()
	c.flushErr = flushErr
	// Taps that arrived during the flush already accumulate into the next
	// batch; report them together with the flush outcome.
	total := c.totalLocked()
	c.mu.Unlock()

	c.metrics.SetPendingIncrements(total)
	c.publish(Status{Pending: total, Err: flushErr})
}
