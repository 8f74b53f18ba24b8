package pool

import (
	"slices"
	"time"

	"github.com/lelandrichardson/recycler/types"
)

// slot is one recyclable view unit. Owned by exactly one pool for its entire
// lifetime; only its binding changes.
type slot struct {
	id         uint64
	typeKey    types.TypeKey
	boundIndex int
	generation uint64
	idleSeq    uint64
}

func (s *slot) info() types.SlotInfo {
	return types.SlotInfo{
		ID:         s.id,
		TypeKey:    s.typeKey,
		BoundIndex: s.boundIndex,
		Generation: s.generation,
		IdleSeq:    s.idleSeq,
	}
}

// pool owns every slot sharing one TypeKey. Capacity grows lazily to the
// high-water mark of concurrently required slots and never shrinks while the
// pool lives.
type pool struct {
	typeKey types.TypeKey

	// slots in creation order; never reordered.
	slots []*slot

	// byIndex maps bound indices to their slot.
	byIndex map[int]*slot

	// free holds idle slots in release order (oldest first).
	free []*slot

	// lastRequired is the last time an assignment referenced this type.
	// Drives the idle-type prune policy.
	lastRequired time.Time
}

func newPool(typeKey types.TypeKey, now time.Time) *pool {
	return &pool{
		typeKey:      typeKey,
		byIndex:      make(map[int]*slot),
		lastRequired: now,
	}
}

func (p *pool) size() int {
	return len(p.slots)
}

// boundIndices returns the currently bound indices in ascending order.
func (p *pool) boundIndices() []int {
	out := make([]int, 0, len(p.byIndex))
	for idx := range p.byIndex {
		out = append(out, idx)
	}
	slices.Sort(out)

	return out
}

// takeFree removes and returns the free slot at position i.
func (p *pool) takeFree(i int) *slot {
	s := p.free[i]
	p.free = append(p.free[:i], p.free[i+1:]...)

	return s
}

func (p *pool) freeInfos() []types.SlotInfo {
	out := make([]types.SlotInfo, len(p.free))
	for i, s := range p.free {
		out[i] = s.info()
	}

	return out
}
