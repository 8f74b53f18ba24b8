package types

import "errors"

// Sentinel errors for the Recycler library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Coordinator errors - Public API errors returned by the Coordinator.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrItemSourceRequired is returned when the item source is nil.
	ErrItemSourceRequired = errors.New("item source is required")

	// ErrGeometryRequired is returned when the geometry collaborator is nil.
	ErrGeometryRequired = errors.New("geometry is required")

	// ErrTransportRequired is returned when the transport is nil.
	ErrTransportRequired = errors.New("transport is required")

	// ErrBinderRequired is returned when the slot binder is nil.
	ErrBinderRequired = errors.New("slot binder is required")

	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrNotStarted is returned when operations require a started coordinator.
	ErrNotStarted = errors.New("coordinator not started")
)

// Registry errors - Reconciliation errors. None of these abort the
// coordinator; they degrade to "keep showing the last good binding".
var (
	// ErrInvalidIndex is returned when a RangeRequest or PoolAssignment
	// references an index outside [0, n). Fatal to that specific message
	// only; the offending assignment is dropped without mutation.
	ErrInvalidIndex = errors.New("index outside item range")

	// ErrCapacityExceeded indicates a pool reached its configured capacity
	// ceiling and bound fewer indices than required. Surfaced as a
	// degraded-mode signal, never a fatal failure.
	ErrCapacityExceeded = errors.New("pool capacity ceiling exceeded")

	// ErrStaleReply indicates a PoolAssignment whose indices were all
	// superseded; it contributed no mutation. Logged, not returned to callers.
	ErrStaleReply = errors.New("stale assignment contributed no bindings")
)

// Transport errors - Boundary transport errors.
var (
	// ErrRequestTimeout indicates no PoolAssignment arrived within the
	// configured deadline. Recovered locally by re-issuing the request.
	ErrRequestTimeout = errors.New("range request timed out")

	// ErrTransportBusy is returned by non-blocking transports whose outbound
	// buffer is full. The coordinator's timeout re-issue recovers from it.
	ErrTransportBusy = errors.New("transport buffer full")

	// ErrClosed is returned when sending on a closed transport.
	ErrClosed = errors.New("transport closed")
)
