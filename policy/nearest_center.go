package policy

import (
	"sort"

	"github.com/lelandrichardson/recycler/types"
)

// NearestCenter implements overflow selection by distance from the visible
// center: when a pool cannot cover every required index, the indices closest
// to the window midpoint stay bound.
type NearestCenter struct {
	// anchor offsets the effective center, in items. Negative anchors bias
	// toward the top of the window, positive toward the bottom.
	anchor int
}

var _ types.OverflowPolicy = (*NearestCenter)(nil)

// NearestCenterOption configures a NearestCenter policy.
type NearestCenterOption func(*NearestCenter)

// NewNearestCenter creates a new nearest-to-center overflow policy.
//
// Parameters:
//   - opts: Optional configuration (WithCenterAnchor)
//
// Returns:
//   - *NearestCenter: Initialized policy
//
// Example:
//
//	overflow := policy.NewNearestCenter(policy.WithCenterAnchor(-2))
//	coord, err := recycler.New(&cfg, src, geo, tr, binder,
//	    recycler.WithOverflowPolicy(overflow))
func NewNearestCenter(opts ...NearestCenterOption) *NearestCenter {
	nc := &NearestCenter{}
	for _, opt := range opts {
		opt(nc)
	}

	return nc
}

// WithCenterAnchor shifts the effective center by the given item count.
//
// Scroll direction prediction can use this to keep slots ahead of the motion
// rather than symmetrically around the midpoint.
//
// Parameters:
//   - items: Offset in items (negative = up, positive = down)
//
// Returns:
//   - NearestCenterOption: Configuration option
func WithCenterAnchor(items int) NearestCenterOption {
	return func(nc *NearestCenter) {
		nc.anchor = items
	}
}

// SelectIndices returns up to capacity pending indices, nearest-first.
//
// Ordering is by ascending distance from the (anchored) window center, with
// ties broken by the lower index. The result is deterministic for identical
// inputs.
//
// Parameters:
//   - pending: Indices requiring slots
//   - window: Current required window
//   - capacity: Available slot count
//
// Returns:
//   - []int: Chosen indices in bind order
func (p *NearestCenter) SelectIndices(pending []int, window types.VisibleWindow, capacity int) []int {
	if capacity <= 0 || len(pending) == 0 {
		return nil
	}
	if capacity >= len(pending) {
		out := make([]int, len(pending))
		copy(out, pending)

		return out
	}

	center := window.Center() + p.anchor
	ranked := make([]int, len(pending))
	copy(ranked, pending)
	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := absDelta(ranked[i], center), absDelta(ranked[j], center)
		if di != dj {
			return di < dj
		}

		return ranked[i] < ranked[j]
	})

	return ranked[:capacity]
}

func absDelta(a, b int) int {
	if a > b {
		return a - b
	}

	return b - a
}
