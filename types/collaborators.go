package types

import "context"

// ItemSource exposes the logical item list the coordinator maps slots onto.
//
// The source is the single source of truth for "what data lives at index i".
// Indices are stable only as long as the source is unchanged; callers that
// mutate the underlying sequence must keep serving consistent answers until
// the coordinator has picked up the new length on the next scroll tick.
//
// Implementations must be cheap: both methods sit on the scroll hot path and
// are called O(window size) times per tick.
type ItemSource interface {
	// Len returns the total number of items.
	Len() int

	// TypeAt returns the TypeKey of the item at index i, 0 <= i < Len().
	TypeAt(i int) TypeKey
}

// Geometry translates between scroll offsets and item indices.
//
// Concrete layout (list, grid, masonry) is external to this library; the
// coordinator only needs to map a scroll position to the index under it.
// Implementations must be O(1) or O(log n) — never a linear scan over all
// items — because IndexAt is called on every scroll tick.
type Geometry interface {
	// IndexAt returns the index of the item containing the given offset.
	// Results outside [0, n) are permitted; the tracker clamps them.
	IndexAt(offset float64) int

	// ExtentOf returns the layout extent of the item at index i along the
	// scroll axis.
	ExtentOf(i int) float64
}

// SlotBinder is the external content-binding collaborator.
//
// It receives one RebindNotification per slot rebind and is responsible for
// populating the slot's visual content for the new index. Because content
// loading may itself be asynchronous, the binder must re-check the
// notification's Generation before applying content: if the slot has since
// been rebound (newer generation), the update must be discarded, otherwise a
// recycled view would briefly show the wrong item.
type SlotBinder interface {
	// BindSlot applies content for the given rebind. Errors are logged by the
	// coordinator and never abort reconciliation.
	BindSlot(ctx context.Context, rebind RebindNotification) error
}
