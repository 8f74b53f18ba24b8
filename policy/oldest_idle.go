package policy

import "github.com/lelandrichardson/recycler/types"

// OldestIdle implements FIFO slot recycling: the slot that has been idle the
// longest is reused first.
type OldestIdle struct{}

var _ types.RecyclePolicy = (*OldestIdle)(nil)

// NewOldestIdle creates a new oldest-idle recycle policy.
//
// Returns:
//   - *OldestIdle: Initialized policy
func NewOldestIdle() *OldestIdle {
	return &OldestIdle{}
}

// PickSlot returns the position of the slot with the lowest idle stamp.
//
// Ties (slots released in the same reconciliation pass carry distinct stamps,
// so ties only occur for never-released slots with IdleSeq zero) are broken
// by ascending slot creation order.
//
// Parameters:
//   - free: Non-empty snapshot of free slots, in release order
//
// Returns:
//   - int: Position of the chosen slot
func (p *OldestIdle) PickSlot(free []types.SlotInfo) int {
	best := 0
	for i := 1; i < len(free); i++ {
		if free[i].IdleSeq < free[best].IdleSeq ||
			(free[i].IdleSeq == free[best].IdleSeq && free[i].ID < free[best].ID) {
			best = i
		}
	}

	return best
}
