package recycler

import "github.com/lelandrichardson/recycler/types"

// Sentinel errors returned by the Coordinator, re-exported from the types
// subpackage so errors.Is works across package boundaries.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrItemSourceRequired is returned when the item source is nil.
	ErrItemSourceRequired = types.ErrItemSourceRequired

	// ErrGeometryRequired is returned when the geometry is nil.
	ErrGeometryRequired = types.ErrGeometryRequired

	// ErrTransportRequired is returned when the transport is nil.
	ErrTransportRequired = types.ErrTransportRequired

	// ErrBinderRequired is returned when the slot binder is nil.
	ErrBinderRequired = types.ErrBinderRequired

	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when Stop is called before Start.
	ErrNotStarted = types.ErrNotStarted

	// ErrInvalidIndex is returned when an assignment references an index
	// outside the current item range.
	ErrInvalidIndex = types.ErrInvalidIndex

	// ErrCapacityExceeded is returned when a required window cannot be fully
	// bound under the per-type capacity ceiling.
	ErrCapacityExceeded = types.ErrCapacityExceeded

	// ErrStaleReply marks an assignment answering a superseded request.
	ErrStaleReply = types.ErrStaleReply

	// ErrRequestTimeout marks a RangeRequest unanswered past RequestTimeout.
	ErrRequestTimeout = types.ErrRequestTimeout

	// ErrTransportBusy is returned when a non-blocking send finds the
	// transport buffer full.
	ErrTransportBusy = types.ErrTransportBusy

	// ErrClosed is returned when using a closed transport or coordinator.
	ErrClosed = types.ErrClosed
)
