package types

import "context"

// Transport is the presentation actor's half of the boundary.
//
// Sends must never block the presentation actor: implementations either
// deliver immediately or fail fast with ErrTransportBusy, relying on the
// coordinator's timeout re-issue for recovery. The transport may drop,
// duplicate, or reorder messages; the coordinator tolerates all three.
type Transport interface {
	// SendRequest emits a RangeRequest toward the content actor.
	SendRequest(ctx context.Context, req RangeRequest) error

	// Assignments returns the channel delivering PoolAssignment replies.
	// The channel is owned by the transport and remains open until Close.
	Assignments() <-chan PoolAssignment

	// Close releases transport resources. Subsequent sends return ErrClosed.
	Close() error
}

// ContentTransport is the content actor's half of the boundary.
type ContentTransport interface {
	// Requests returns the channel delivering incoming RangeRequests.
	Requests() <-chan RangeRequest

	// SendAssignment emits a PoolAssignment toward the presentation actor.
	SendAssignment(ctx context.Context, assignment PoolAssignment) error

	// Close releases transport resources. Subsequent sends return ErrClosed.
	Close() error
}
