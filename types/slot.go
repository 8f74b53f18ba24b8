package types

// IndexNone marks a slot that is not currently bound to any item.
const IndexNone = -1

// SlotInfo is a read-only snapshot of one recyclable view slot.
//
// Slots are owned and mutated exclusively by the pool registry; SlotInfo is
// the value handed to recycle policies and introspection callers.
type SlotInfo struct {
	// ID is unique per registry and ascends in creation order.
	ID uint64

	// TypeKey identifies the pool owning this slot.
	TypeKey TypeKey

	// BoundIndex is the logical index the slot currently displays,
	// or IndexNone when idle.
	BoundIndex int

	// Generation increments on every rebind. Content updates stamped with an
	// older generation must be discarded by the binding collaborator.
	Generation uint64

	// IdleSeq is the monotonic release stamp from when the slot last became
	// idle. Zero for a slot that has never been released. Among free slots a
	// lower IdleSeq means longer idle.
	IdleSeq uint64
}

// IsIdle reports whether the slot is free for recycling.
func (s SlotInfo) IsIdle() bool {
	return s.BoundIndex == IndexNone
}
