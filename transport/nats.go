package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/lelandrichardson/recycler/types"
)

// Compile-time interface checks.
var (
	_ types.Transport        = (*NATSPresentation)(nil)
	_ types.ContentTransport = (*NATSContent)(nil)
)

// chanBuffer is the inbound buffer per direction. Messages past it are
// dropped and counted; the coordinator recovers via timeout re-issue.
const chanBuffer = 64

// subjects derives the two core NATS subjects from a prefix.
func subjects(prefix string) (request, assignment string) {
	return prefix + ".request", prefix + ".assignment"
}

// NATSPresentation is the presentation-side transport over core NATS.
//
// RangeRequests publish to <prefix>.request; PoolAssignments arrive on
// <prefix>.assignment. Core NATS is at-most-once, which the coordinator
// tolerates: a lost reply looks like a timeout, a duplicate like a replay.
type NATSPresentation struct {
	conn        *nats.Conn
	sub         *nats.Subscription
	reqSubject  string
	assignments chan types.PoolAssignment
	dropped     atomic.Int64

	// mu orders in-flight subscription callbacks against Close so the channel
	// is never closed mid-send.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NewNATSPresentation creates the presentation-side transport.
//
// Parameters:
//   - conn: Connected NATS client (owned by the caller, not closed here)
//   - subjectPrefix: Subject prefix shared with the content side
//
// Returns:
//   - *NATSPresentation: Subscribed transport
//   - error: Subscription failure
func NewNATSPresentation(conn *nats.Conn, subjectPrefix string) (*NATSPresentation, error) {
	reqSubject, asgSubject := subjects(subjectPrefix)
	t := &NATSPresentation{
		conn:        conn,
		reqSubject:  reqSubject,
		assignments: make(chan types.PoolAssignment, chanBuffer),
	}

	sub, err := conn.Subscribe(asgSubject, func(msg *nats.Msg) {
		var assignment types.PoolAssignment
		if err := json.Unmarshal(msg.Data, &assignment); err != nil {
			t.dropped.Add(1)

			return
		}
		t.mu.RLock()
		defer t.mu.RUnlock()
		if t.closed {
			return
		}
		select {
		case t.assignments <- assignment:
		default:
			t.dropped.Add(1)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", asgSubject, err)
	}
	t.sub = sub

	return t, nil
}

// SendRequest publishes a RangeRequest to the content side.
func (t *NATSPresentation) SendRequest(_ context.Context, req types.RangeRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal range request: %w", err)
	}
	if err := t.conn.Publish(t.reqSubject, data); err != nil {
		return fmt.Errorf("failed to publish range request: %w", err)
	}

	return nil
}

// Assignments returns the channel of inbound PoolAssignments. Closed by
// Close.
func (t *NATSPresentation) Assignments() <-chan types.PoolAssignment {
	return t.assignments
}

// Dropped returns the number of inbound messages dropped because they were
// malformed or the receiver fell behind.
func (t *NATSPresentation) Dropped() int64 {
	return t.dropped.Load()
}

// Close unsubscribes and closes the assignment channel. The NATS connection
// stays open for the caller.
func (t *NATSPresentation) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.sub.Unsubscribe()
		t.mu.Lock()
		t.closed = true
		close(t.assignments)
		t.mu.Unlock()
	})

	return t.closeErr
}

// NATSContent is the content-side transport over core NATS, the mirror of
// NATSPresentation.
type NATSContent struct {
	conn       *nats.Conn
	sub        *nats.Subscription
	asgSubject string
	requests   chan types.RangeRequest
	dropped    atomic.Int64

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NewNATSContent creates the content-side transport.
//
// Parameters:
//   - conn: Connected NATS client (owned by the caller, not closed here)
//   - subjectPrefix: Subject prefix shared with the presentation side
//
// Returns:
//   - *NATSContent: Subscribed transport
//   - error: Subscription failure
func NewNATSContent(conn *nats.Conn, subjectPrefix string) (*NATSContent, error) {
	reqSubject, asgSubject := subjects(subjectPrefix)
	t := &NATSContent{
		conn:       conn,
		asgSubject: asgSubject,
		requests:   make(chan types.RangeRequest, chanBuffer),
	}

	sub, err := conn.Subscribe(reqSubject, func(msg *nats.Msg) {
		var req types.RangeRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			t.dropped.Add(1)

			return
		}
		t.mu.RLock()
		defer t.mu.RUnlock()
		if t.closed {
			return
		}
		select {
		case t.requests <- req:
		default:
			t.dropped.Add(1)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", reqSubject, err)
	}
	t.sub = sub

	return t, nil
}

// Requests returns the channel of inbound RangeRequests. Closed by Close.
func (t *NATSContent) Requests() <-chan types.RangeRequest {
	return t.requests
}

// SendAssignment publishes a PoolAssignment to the presentation side.
func (t *NATSContent) SendAssignment(_ context.Context, assignment types.PoolAssignment) error {
	data, err := json.Marshal(assignment)
	if err != nil {
		return fmt.Errorf("failed to marshal pool assignment: %w", err)
	}
	if err := t.conn.Publish(t.asgSubject, data); err != nil {
		return fmt.Errorf("failed to publish pool assignment: %w", err)
	}

	return nil
}

// Dropped returns the number of inbound messages dropped because they were
// malformed or the receiver fell behind.
func (t *NATSContent) Dropped() int64 {
	return t.dropped.Load()
}

// Close unsubscribes and closes the request channel. The NATS connection
// stays open for the caller.
func (t *NATSContent) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.sub.Unsubscribe()
		t.mu.Lock()
		t.closed = true
		close(t.requests)
		t.mu.Unlock()
	})

	return t.closeErr
}
