package types

// RecyclePolicy chooses which free slot to reuse for the next fill request.
//
// Policy implementations should:
//   - Be deterministic (same input → same output)
//   - Run quickly (called once per rebind on the reconcile path)
//   - Be stateless (no side effects)
//
// The default policy reuses the oldest-idle slot first, maximizing
// time-since-last-shown before reuse and minimizing the chance that a
// still-finishing async content update lands on a slot that has already been
// reassigned again.
type RecyclePolicy interface {
	// PickSlot returns the position within free of the slot to reuse.
	//
	// Parameters:
	//   - free: Non-empty snapshot of the pool's free slots, in release order
	//
	// Returns:
	//   - int: Position in free of the chosen slot (must be in [0, len(free)))
	PickSlot(free []SlotInfo) int
}

// OverflowPolicy chooses which indices stay bound when a pool's capacity
// ceiling cannot cover every required index.
//
// The default policy keeps the indices nearest to the visible center, on the
// theory that peripheral items are the first to scroll away anyway.
type OverflowPolicy interface {
	// SelectIndices returns the subset of pending indices to bind.
	//
	// Parameters:
	//   - pending: Indices requiring slots, in assignment order
	//   - window: Current required window (for centering heuristics)
	//   - capacity: Number of slots actually available (< len(pending))
	//
	// Returns:
	//   - []int: At most capacity indices chosen from pending, in bind order.
	//     The result must be deterministic for identical inputs.
	SelectIndices(pending []int, window VisibleWindow, capacity int) []int
}
