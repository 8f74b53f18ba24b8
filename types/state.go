package types

// State represents the coordinator lifecycle state.
//
// States follow a defined progression during normal operation:
//
//	StateIdle → StateAwaitingReply → StateReconciling → StateIdle
//
// A window change during reconciliation loops back through AwaitingReply.
// There is no terminal state while the list is mounted; StateStopped is
// entered only when the coordinator shuts down.
type State int

const (
	// StateIdle indicates every required (type, index) pair is covered by a
	// bound slot and no request is outstanding.
	StateIdle State = iota

	// StateAwaitingReply indicates a RangeRequest has been emitted and the
	// coordinator is waiting, without blocking, for a PoolAssignment.
	StateAwaitingReply

	// StateReconciling indicates a PoolAssignment is being applied to the
	// pool registry.
	StateReconciling

	// StateStopped indicates the coordinator has shut down and released all
	// slots.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingReply:
		return "AwaitingReply"
	case StateReconciling:
		return "Reconciling"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
