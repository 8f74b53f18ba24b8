package transport

import (
	"context"
	"sync"

	"github.com/lelandrichardson/recycler/types"
)

// Compile-time interface checks.
var (
	_ types.Transport        = (*ChannelPresentation)(nil)
	_ types.ContentTransport = (*ChannelContent)(nil)
)

// channelCore holds the shared state of one in-process transport pair.
type channelCore struct {
	mu          sync.RWMutex
	closed      bool
	requests    chan types.RangeRequest
	assignments chan types.PoolAssignment
}

// ChannelPresentation is the presentation-side end of an in-process pair.
type ChannelPresentation struct {
	core *channelCore
}

// ChannelContent is the content-side end of an in-process pair.
type ChannelContent struct {
	core *channelCore
}

// NewChannelPair creates a connected in-process transport pair.
//
// Both directions use a buffered channel of the given size. Sends are
// non-blocking: a full buffer yields ErrTransportBusy rather than
// backpressure, matching the lossy transport contract.
//
// Parameters:
//   - buffer: Per-direction channel capacity; values < 1 are treated as 1
//
// Returns:
//   - *ChannelPresentation: End handed to the coordinator
//   - *ChannelContent: End handed to the content actor
func NewChannelPair(buffer int) (*ChannelPresentation, *ChannelContent) {
	if buffer < 1 {
		buffer = 1
	}
	core := &channelCore{
		requests:    make(chan types.RangeRequest, buffer),
		assignments: make(chan types.PoolAssignment, buffer),
	}

	return &ChannelPresentation{core: core}, &ChannelContent{core: core}
}

func (c *channelCore) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.requests)
	close(c.assignments)
}

// SendRequest enqueues a RangeRequest for the content side.
//
// Returns:
//   - error: ErrClosed after Close, ErrTransportBusy when the buffer is full,
//     or the context error
func (p *ChannelPresentation) SendRequest(ctx context.Context, req types.RangeRequest) error {
	p.core.mu.RLock()
	defer p.core.mu.RUnlock()

	if p.core.closed {
		return types.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.core.requests <- req:
		return nil
	default:
		return types.ErrTransportBusy
	}
}

// Assignments returns the channel of inbound PoolAssignments. The channel is
// closed when either end closes the pair.
func (p *ChannelPresentation) Assignments() <-chan types.PoolAssignment {
	return p.core.assignments
}

// Close tears down both directions. Safe to call from either end, once or
// repeatedly.
func (p *ChannelPresentation) Close() error {
	p.core.close()

	return nil
}

// Requests returns the channel of inbound RangeRequests. The channel is
// closed when either end closes the pair.
func (c *ChannelContent) Requests() <-chan types.RangeRequest {
	return c.core.requests
}

// SendAssignment enqueues a PoolAssignment for the presentation side.
//
// Returns:
//   - error: ErrClosed after Close, ErrTransportBusy when the buffer is full,
//     or the context error
func (c *ChannelContent) SendAssignment(ctx context.Context, assignment types.PoolAssignment) error {
	c.core.mu.RLock()
	defer c.core.mu.RUnlock()

	if c.core.closed {
		return types.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case c.core.assignments <- assignment:
		return nil
	default:
		return types.ErrTransportBusy
	}
}

// Close tears down both directions. Safe to call from either end, once or
// repeatedly.
func (c *ChannelContent) Close() error {
	c.core.close()

	return nil
}
