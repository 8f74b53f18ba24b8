package recycler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/lelandrichardson/recycler/internal/hooks"
	"github.com/lelandrichardson/recycler/internal/logger"
	"github.com/lelandrichardson/recycler/internal/metrics"
	"github.com/lelandrichardson/recycler/internal/pool"
	"github.com/lelandrichardson/recycler/internal/window"
	"github.com/lelandrichardson/recycler/types"
)

// Coordinator keeps a bounded set of recycled slots covering the visible
// window of a large item list.
//
// Coordinator is the main entry point of the recycler library. It handles:
//   - Visible window computation from scroll state (with render-ahead)
//   - Range requests toward the content actor, with supersession and
//     timeout re-issue under fresh ids
//   - Reconciliation of pool assignments against the slot registry
//   - Rebind notifications toward the content-binding collaborator
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Pool state is mutated exclusively by the internal run loop
//   - Read accessors return copies or snapshots
//
// Lifecycle:
//   - Create with New()
//   - Call Start() to launch the run loop
//   - Feed scroll state via OnScroll() on every scroll tick
//   - Call Stop() for graceful shutdown (releases all slots)
type Coordinator struct {
	cfg       Config
	source    ItemSource
	geometry  Geometry
	transport Transport

	// Optional dependencies
	hooks   Hooks
	metrics MetricsCollector
	logger  Logger

	// Internal components
	tracker *window.Tracker

	// regMu serializes registry access: the run loop is the only writer,
	// read accessors take the read side for snapshots.
	regMu    sync.RWMutex
	registry *pool.Registry

	// State management
	state      atomic.Int32 // State
	currentWin atomic.Value // types.VisibleWindow
	lastScroll atomic.Value // types.ScrollState

	// Scroll intake: capacity 1, newest state wins.
	scrollCh chan types.ScrollState

	// Fan-out to subscribers
	subscribers      *xsync.Map[uint64, *stateSubscriber]
	nextSubscriberID atomic.Uint64

	// Run-loop-owned request tracking
	lastIssuedID   uint64
	outstanding    bool
	issuedAt       time.Time
	timeout        *time.Timer
	stateEnteredAt time.Time

	// Lifecycle management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// New creates a new Coordinator instance with the provided configuration.
//
// Returns a concrete *Coordinator struct following the "accept interfaces,
// return structs" principle. Consumers can define their own interfaces for
// testing if needed.
//
// Parameters:
//   - cfg: Runtime configuration with parsed durations (defaults are applied
//     in place)
//   - source: Item source describing the list content
//   - geometry: Geometry mapping scroll offsets to indices
//   - transport: Presentation-side transport toward the content actor
//   - binder: Collaborator receiving rebind notifications
//   - opts: Optional configuration (hooks, metrics, logger, policies)
//
// Returns:
//   - *Coordinator: Initialized coordinator instance
//   - error: Validation error if configuration or collaborators are invalid
//
// Example:
//
//	cfg := recycler.DefaultConfig()
//	pres, cont := transport.NewChannelPair(8)
//	coord, err := recycler.New(&cfg, src, geometry.NewUniform(48), pres, binder)
//	if err != nil { /* handle */ }
func New(
	cfg *Config,
	source ItemSource,
	geometry Geometry,
	transport Transport,
	binder SlotBinder,
	opts ...Option,
) (*Coordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrItemSourceRequired
	}
	if geometry == nil {
		return nil, ErrGeometryRequired
	}
	if transport == nil {
		return nil, ErrTransportRequired
	}
	if binder == nil {
		return nil, ErrBinderRequired
	}

	options := &coordinatorOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = logger.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	c := &Coordinator{
		cfg:         *cfg,
		source:      source,
		geometry:    geometry,
		transport:   transport,
		hooks:       hooks.Fill(options.hooks),
		metrics:     options.metrics,
		logger:      options.logger,
		tracker:     window.NewTracker(cfg.RenderAheadBefore, cfg.RenderAheadAfter),
		scrollCh:    make(chan types.ScrollState, 1),
		subscribers: xsync.NewMap[uint64, *stateSubscriber](),
	}
	c.registry = pool.NewRegistry(&pool.Config{
		MaxSlotsPerType: cfg.MaxSlotsPerType,
		Binder:          binder,
		Recycle:         options.recycle,
		Overflow:        options.overflow,
		Logger:          options.logger,
		Metrics:         options.metrics,
	})
	c.state.Store(int32(StateIdle))
	c.currentWin.Store(types.EmptyWindow())
	c.lastScroll.Store(types.ScrollState{})

	return c, nil
}

// Start launches the coordinator's run loop.
//
// The loop consumes scroll state, transport replies, and request timeouts
// until Stop is called. The coordinator's lifecycle is detached from the
// given context: cancelling it does not stop a started coordinator, only
// Stop does.
//
// Parameters:
//   - ctx: Context for startup-scoped work
//
// Returns:
//   - error: ErrAlreadyStarted when the coordinator is already running
func (c *Coordinator) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.stateEnteredAt = time.Now()

	c.wg.Add(1)
	go c.run()

	c.logger.Info("coordinator started",
		"renderAheadBefore", c.cfg.RenderAheadBefore,
		"renderAheadAfter", c.cfg.RenderAheadAfter,
		"requestTimeout", c.cfg.RequestTimeout,
		"maxSlotsPerType", c.cfg.MaxSlotsPerType,
	)

	return nil
}

// Stop gracefully shuts down the coordinator.
//
// All slots are released, the transport is closed, and subscribers are
// drained. Safe to call multiple times - subsequent calls return
// ErrNotStarted.
//
// Parameters:
//   - ctx: Context bounding the shutdown wait (combined with ShutdownTimeout)
//
// Returns:
//   - error: Shutdown timeout or context cancellation
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()

		return ErrNotStarted
	}
	c.started = false
	c.mu.Unlock()

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(c.cfg.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		return fmt.Errorf("shutdown timed out after %v", c.cfg.ShutdownTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := c.transport.Close(); err != nil {
		c.logger.Warn("failed to close transport", "error", err)
	}

	c.regMu.Lock()
	c.registry.Reset()
	c.regMu.Unlock()

	c.setState(StateStopped)
	c.subscribers.Range(func(id uint64, sub *stateSubscriber) bool {
		sub.close()
		c.subscribers.Delete(id)

		return true
	})

	c.logger.Info("coordinator stopped")

	return nil
}

// OnScroll feeds the current scroll state to the coordinator.
//
// Never blocks: when the run loop is busy, intermediate scroll states are
// coalesced away and only the newest one is processed. Safe to call from any
// goroutine on every scroll tick.
//
// Parameters:
//   - scroll: Current scroll offset and viewport extent
func (c *Coordinator) OnScroll(scroll ScrollState) {
	c.lastScroll.Store(scroll)

	for {
		select {
		case c.scrollCh <- scroll:
			return
		default:
			select {
			case <-c.scrollCh:
				c.metrics.RecordScrollCoalesced()
			default:
			}
		}
	}
}

// Refresh re-evaluates the window against the item source.
//
// Call after the underlying data changed (items inserted, removed, or
// retyped) without a scroll event; the coordinator recomputes the window
// from the last known scroll state and reconciles coverage.
//
// Returns:
//   - error: ErrNotStarted when the coordinator is not running
func (c *Coordinator) Refresh() error {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	scroll, _ := c.lastScroll.Load().(types.ScrollState)
	c.OnScroll(scroll)

	return nil
}

// State returns the current coordinator state.
//
// Returns:
//   - State: Current state
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Window returns the current required window (visible span plus render-ahead
// margins).
//
// Returns:
//   - VisibleWindow: Current window (empty before the first scroll tick)
func (c *Coordinator) Window() VisibleWindow {
	w, _ := c.currentWin.Load().(types.VisibleWindow)

	return w
}

// SlotsOf returns snapshots of every slot in the pool for the given type, in
// creation order.
//
// Parameters:
//   - typeKey: Pool to snapshot
//
// Returns:
//   - []SlotInfo: Slot snapshots (nil when no pool exists for the type)
func (c *Coordinator) SlotsOf(typeKey TypeKey) []SlotInfo {
	c.regMu.RLock()
	defer c.regMu.RUnlock()

	return c.registry.SlotsOf(typeKey)
}

// PoolSize returns the slot count of the pool for the given type.
//
// Returns:
//   - int: Slot count (0 when no pool exists)
func (c *Coordinator) PoolSize(typeKey TypeKey) int {
	c.regMu.RLock()
	defer c.regMu.RUnlock()

	return c.registry.PoolSize(typeKey)
}

// PoolTypes returns every type with a live pool, sorted.
//
// Returns:
//   - []TypeKey: Sorted type keys
func (c *Coordinator) PoolTypes() []TypeKey {
	c.regMu.RLock()
	defer c.regMu.RUnlock()

	return c.registry.Types()
}

// Subscribe returns a channel that receives state change notifications.
//
// The returned channel is buffered (SubscriberBufferSize) so rapid
// transitions never block the run loop; a slow subscriber misses
// intermediate states, never current ones. The subscriber receives the
// current state immediately upon subscription.
//
// Returns:
//   - <-chan State: Channel that receives state updates
//   - func(): Unsubscribe function to clean up resources
//
// Example:
//
//	ch, unsubscribe := coord.Subscribe()
//	defer unsubscribe()
//	for state := range ch {
//	    fmt.Printf("state: %s\n", state)
//	}
func (c *Coordinator) Subscribe() (<-chan State, func()) {
	id := c.nextSubscriberID.Add(1)

	sub := &stateSubscriber{ch: make(chan State, c.cfg.SubscriberBufferSize)}
	c.subscribers.Store(id, sub)

	// Immediately send the current state
	sub.trySend(c.State(), c.metrics)

	unsubscribe := func() {
		if s, ok := c.subscribers.LoadAndDelete(id); ok {
			s.close()
		}
	}

	return sub.ch, unsubscribe
}

// WaitState waits for the coordinator to reach the expected state within the
// timeout period.
//
// The returned channel receives exactly one value: nil if the state is
// reached in time, context.DeadlineExceeded otherwise. The channel is closed
// after sending, allowing safe use in select statements.
//
// Parameters:
//   - expectedState: The state to wait for
//   - timeout: Maximum duration to wait for the state
//
// Returns:
//   - <-chan error: A channel that receives the result
func (c *Coordinator) WaitState(expectedState State, timeout time.Duration) <-chan error {
	ch := make(chan error, 1) // Buffered to prevent goroutine leak

	go func() {
		defer close(ch)

		if c.State() == expectedState {
			ch <- nil

			return
		}

		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		timeoutTimer := time.NewTimer(timeout)
		defer timeoutTimer.Stop()

		for {
			select {
			case <-ticker.C:
				if c.State() == expectedState {
					ch <- nil

					return
				}
			case <-timeoutTimer.C:
				ch <- context.DeadlineExceeded

				return
			}
		}
	}()

	return ch
}

// run is the coordinator's single-mutator loop: the only place pool state
// and request tracking change.
func (c *Coordinator) run() {
	defer c.wg.Done()

	c.timeout = time.NewTimer(c.cfg.RequestTimeout)
	if !c.timeout.Stop() {
		<-c.timeout.C
	}
	defer c.timeout.Stop()

	var prune *time.Ticker
	var pruneC <-chan time.Time
	if c.cfg.IdleTypeTTL > 0 {
		prune = time.NewTicker(c.cfg.IdleTypeTTL)
		pruneC = prune.C
		defer prune.Stop()
	}

	for {
		select {
		case <-c.ctx.Done():
			return
		case scroll := <-c.scrollCh:
			c.handleScroll(scroll)
		case assignment, ok := <-c.transport.Assignments():
			if !ok {
				c.logger.Warn("assignment channel closed; coordinator will no longer reconcile")

				return
			}
			c.handleAssignment(assignment)
		case <-c.timeout.C:
			c.handleTimeout()
		case <-pruneC:
			c.handlePrune()
		}
	}
}

// handleScroll recomputes the window and requests coverage when needed.
func (c *Coordinator) handleScroll(scroll types.ScrollState) {
	n := c.source.Len()
	win := c.tracker.Compute(scroll, c.geometry, n)

	old, _ := c.currentWin.Load().(types.VisibleWindow)
	if win != old {
		c.currentWin.Store(win)
		c.logger.Debug("window changed",
			"first", win.First,
			"last", win.Last,
			"items", n,
		)
		go func() {
			if err := c.hooks.OnWindowChanged(c.ctx, old, win); err != nil {
				c.logger.Warn("OnWindowChanged hook failed", "error", err)
			}
		}()
	}

	if win.IsEmpty() {
		// Nothing required; outstanding requests for earlier windows become
		// stale and their replies merge into nothing.
		if !c.outstanding {
			c.setState(StateIdle)
		}

		return
	}

	c.regMu.RLock()
	uncovered := c.registry.Uncovered(c.requiredMap(win, n))
	c.regMu.RUnlock()
	if uncovered > 0 && (win != old || !c.outstanding) {
		// An unchanged window with a request already in flight keeps waiting;
		// re-issuing would only churn request ids.
		c.issueRequest(win, n)
	} else if uncovered == 0 && !c.outstanding {
		c.setState(StateIdle)
	}
}

// issueRequest emits a RangeRequest for the window under a fresh id and arms
// the reply timeout. Supersession is implicit: any previously outstanding id
// becomes stale the moment the new one is issued.
func (c *Coordinator) issueRequest(win types.VisibleWindow, n int) {
	last := win.Last
	if last > n-1 {
		last = n - 1
	}
	if win.First > last {
		return
	}

	c.lastIssuedID++
	req := types.RangeRequest{
		RequestID: c.lastIssuedID,
		Offset:    win.First,
		Limit:     last + 1,
		Types:     make([]types.TypeKey, 0, last-win.First+1),
	}
	for i := win.First; i <= last; i++ {
		req.Types = append(req.Types, c.source.TypeAt(i))
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.OperationTimeout)
	err := c.transport.SendRequest(ctx, req)
	cancel()
	if err != nil {
		// Leave the timeout armed: the re-issue path retries with a fresh id.
		c.logger.Warn("failed to send range request",
			"requestId", req.RequestID,
			"error", err,
		)
		c.dispatchError(fmt.Errorf("send range request %d: %w", req.RequestID, err))
	} else {
		c.logger.Debug("range request issued",
			"requestId", req.RequestID,
			"offset", req.Offset,
			"limit", req.Limit,
		)
	}

	c.metrics.RecordRequestIssued(req.Span())
	c.outstanding = true
	c.issuedAt = time.Now()
	c.resetTimeout()
	c.setState(StateAwaitingReply)
}

// handleAssignment reconciles a reply against the registry, then re-evaluates
// coverage for the current (possibly newer) window.
func (c *Coordinator) handleAssignment(assignment types.PoolAssignment) {
	c.setState(StateReconciling)

	newest := assignment.RequestID == c.lastIssuedID
	mode := pool.ModeMerge
	if newest {
		mode = pool.ModeFull
		c.metrics.RecordRoundTrip(time.Since(c.issuedAt).Seconds())
	} else {
		c.logger.Debug("merging stale assignment",
			"requestId", assignment.RequestID,
			"newestId", c.lastIssuedID,
		)
	}

	n := c.source.Len()
	win, _ := c.currentWin.Load().(types.VisibleWindow)
	required := c.requiredMap(win, n)

	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.OperationTimeout)
	c.regMu.Lock()
	res, err := c.registry.Apply(ctx, assignment, pool.ApplyOptions{
		Mode:      mode,
		Window:    win,
		ItemCount: n,
		Required: func(idx int) (types.TypeKey, bool) {
			tk, ok := required[idx]

			return tk, ok
		},
	})
	c.regMu.Unlock()
	cancel()
	if err != nil {
		c.logger.Warn("assignment rejected",
			"requestId", assignment.RequestID,
			"error", err,
		)
		c.dispatchError(err)
	}

	if !newest && res.Skipped > 0 && res.Rebinds == 0 && res.Grown == 0 {
		// Every index the stale reply carried is superseded. Not an error to
		// the caller; the reply simply contributes nothing.
		c.logger.Debug("stale assignment discarded",
			"requestId", assignment.RequestID,
			"skipped", res.Skipped,
			"reason", ErrStaleReply,
		)
	}

	for tk, shortfall := range res.Shortfalls {
		typeKey, requested, bound := tk, shortfall.Requested, shortfall.Bound
		c.dispatchError(fmt.Errorf("%w: type %s requested %d bound %d",
			ErrCapacityExceeded, typeKey, requested, bound))
		go func() {
			if err := c.hooks.OnCapacityExceeded(c.ctx, typeKey, requested, bound); err != nil {
				c.logger.Warn("OnCapacityExceeded hook failed", "type", typeKey, "error", err)
			}
		}()
	}

	if newest {
		c.outstanding = false
		c.stopTimeout()
	}

	if win.IsEmpty() {
		if !c.outstanding {
			c.setState(StateIdle)
		}

		return
	}

	c.regMu.RLock()
	uncovered := c.registry.Uncovered(required)
	c.regMu.RUnlock()
	if uncovered > 0 && !c.outstanding {
		// The window moved during reconciliation: ask for the rest. A stale
		// reply never triggers this while a newer request is in flight; the
		// outstanding reply will cover the gap.
		c.issueRequest(win, n)

		return
	}
	if !c.outstanding {
		c.setState(StateIdle)
	} else {
		c.setState(StateAwaitingReply)
	}
}

// handleTimeout re-issues the outstanding request under a fresh id.
func (c *Coordinator) handleTimeout() {
	if !c.outstanding {
		return
	}

	c.metrics.RecordRequestTimeout()
	c.logger.Warn("range request timed out, re-issuing",
		"requestId", c.lastIssuedID,
		"timeout", c.cfg.RequestTimeout,
	)
	c.dispatchError(fmt.Errorf("request %d: %w", c.lastIssuedID, ErrRequestTimeout))

	n := c.source.Len()
	win, _ := c.currentWin.Load().(types.VisibleWindow)
	if win.IsEmpty() || n == 0 {
		c.outstanding = false
		c.setState(StateIdle)

		return
	}
	c.issueRequest(win, n)
}

// handlePrune tears down pools for types idle past IdleTypeTTL.
func (c *Coordinator) handlePrune() {
	c.regMu.Lock()
	pruned := c.registry.PruneIdle(c.cfg.IdleTypeTTL)
	c.regMu.Unlock()
	if len(pruned) > 0 {
		c.logger.Info("pruned idle pools", "types", pruned)
	}
}

// requiredMap resolves the window to its required (index, type) pairs.
func (c *Coordinator) requiredMap(win types.VisibleWindow, n int) map[int]types.TypeKey {
	last := win.Last
	if last > n-1 {
		last = n - 1
	}
	required := make(map[int]types.TypeKey)
	for i := win.First; i <= last; i++ {
		required[i] = c.source.TypeAt(i)
	}

	return required
}

// setState transitions the coordinator state and notifies subscribers.
func (c *Coordinator) setState(to State) {
	from := State(c.state.Load())
	if from == to {
		return
	}
	c.state.Store(int32(to))

	now := time.Now()
	c.metrics.RecordStateTransition(from, to, now.Sub(c.stateEnteredAt).Seconds())
	c.stateEnteredAt = now
	c.logger.Debug("state transition", "from", from, "to", to)

	c.subscribers.Range(func(_ uint64, sub *stateSubscriber) bool {
		sub.trySend(to, c.metrics)

		return true
	})

	go func() {
		if err := c.hooks.OnStateChanged(c.ctx, from, to); err != nil {
			c.logger.Warn("OnStateChanged hook failed", "from", from, "to", to, "error", err)
		}
	}()
}

// dispatchError forwards a recoverable error to the OnError hook.
func (c *Coordinator) dispatchError(err error) {
	go func() {
		if hookErr := c.hooks.OnError(c.ctx, err); hookErr != nil {
			c.logger.Warn("OnError hook failed", "error", hookErr)
		}
	}()
}

func (c *Coordinator) resetTimeout() {
	if !c.timeout.Stop() {
		select {
		case <-c.timeout.C:
		default:
		}
	}
	c.timeout.Reset(c.cfg.RequestTimeout)
}

func (c *Coordinator) stopTimeout() {
	if !c.timeout.Stop() {
		select {
		case <-c.timeout.C:
		default:
		}
	}
}