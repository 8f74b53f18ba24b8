package content

import (
	"context"
	"sync"
	"time"

	"github.com/lelandrichardson/recycler/internal/logger"
	"github.com/lelandrichardson/recycler/types"
)

// GroupByType builds the PoolAssignment answering req.
//
// The request's aligned Types slice is grouped by TypeKey; within each type
// the indices keep ascending order, which downstream recycling relies on for
// deterministic slot reuse.
//
// Parameters:
//   - req: The RangeRequest to answer
//
// Returns:
//   - types.PoolAssignment: Assignment echoing req.RequestID
func GroupByType(req types.RangeRequest) types.PoolAssignment {
	assignment := types.PoolAssignment{
		RequestID:  req.RequestID,
		Assignment: make(map[types.TypeKey][]int),
	}
	span := req.Span()
	for i := 0; i < span && i < len(req.Types); i++ {
		tk := req.Types[i]
		assignment.Assignment[tk] = append(assignment.Assignment[tk], req.Offset+i)
	}

	return assignment
}

// Option configures a Responder.
type Option func(*Responder)

// WithLatency makes the responder wait before answering each request,
// simulating a slow content layer. Useful in tests and examples to force
// supersession and timeout paths.
func WithLatency(d time.Duration) Option {
	return func(r *Responder) {
		r.latency = d
	}
}

// WithLogger sets the responder's logger (default: no-op).
func WithLogger(l types.Logger) Option {
	return func(r *Responder) {
		if l != nil {
			r.logger = l
		}
	}
}

// Responder is the canonical content actor: a loop answering every inbound
// RangeRequest with the grouped assignment.
type Responder struct {
	transport types.ContentTransport
	latency   time.Duration
	logger    types.Logger

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// NewResponder creates a content responder over the given transport.
//
// Parameters:
//   - transport: Content-side transport to serve
//   - opts: Optional configuration
//
// Returns:
//   - *Responder: Responder ready for Start
func NewResponder(transport types.ContentTransport, opts ...Option) *Responder {
	r := &Responder{
		transport: transport,
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start launches the responder loop.
//
// The loop runs until Stop is called, the context is cancelled, or the
// transport's request channel closes.
//
// Returns:
//   - error: ErrAlreadyStarted when the responder is already running
func (r *Responder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return types.ErrAlreadyStarted
	}
	r.started = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go r.run(ctx, r.stop, r.done)

	return nil
}

// Stop terminates the responder loop and waits for it to exit.
//
// Returns:
//   - error: ErrNotStarted when the responder is not running
func (r *Responder) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()

		return types.ErrNotStarted
	}
	r.started = false
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	<-done

	return nil
}

func (r *Responder) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case req, ok := <-r.transport.Requests():
			if !ok {
				return
			}
			r.answer(ctx, stop, req)
		}
	}
}

func (r *Responder) answer(ctx context.Context, stop chan struct{}, req types.RangeRequest) {
	if r.latency > 0 {
		timer := time.NewTimer(r.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}

	assignment := GroupByType(req)
	r.logger.Debug("answering range request",
		"requestId", req.RequestID,
		"offset", req.Offset,
		"limit", req.Limit,
		"indices", assignment.IndexCount(),
	)
	if err := r.transport.SendAssignment(ctx, assignment); err != nil {
		// Lossy transport contract: the coordinator re-requests on timeout.
		r.logger.Warn("failed to send assignment",
			"requestId", req.RequestID,
			"error", err,
		)
	}
}
