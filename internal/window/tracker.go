// Package window computes the visible index window from scroll state.
package window

import (
	"github.com/lelandrichardson/recycler/types"
)

// Tracker turns scroll state into a render window: the visible index span
// expanded by the configured render-ahead margins and clamped to the item
// range.
//
// Compute is a pure function of its inputs and does O(log n) work at most
// (two Geometry lookups), so it is safe to call on every scroll tick.
type Tracker struct {
	before int
	after  int
}

// NewTracker creates a Tracker with the given render-ahead margins.
//
// Parameters:
//   - before: Extra items kept rendered above the visible span (negative
//     values are treated as 0)
//   - after: Extra items kept rendered below the visible span (negative
//     values are treated as 0)
//
// Returns:
//   - *Tracker: Tracker ready for Compute
func NewTracker(before, after int) *Tracker {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	return &Tracker{before: before, after: after}
}

// Compute returns the render window for the given scroll state.
//
// Over-scroll past the content end shifts the window back so it still spans
// the same item count, anchored at the last item. n == 0 yields the empty
// window.
//
// Parameters:
//   - scroll: Current scroll offset and viewport extent
//   - geo: Geometry resolving offsets to indices
//   - n: Current item count
//
// Returns:
//   - types.VisibleWindow: Render window clamped to [0, n-1]
func (t *Tracker) Compute(scroll types.ScrollState, geo types.Geometry, n int) types.VisibleWindow {
	if n <= 0 {
		return types.EmptyWindow()
	}

	offset := scroll.Offset
	if offset < 0 {
		offset = 0
	}
	viewport := scroll.Viewport
	if viewport < 0 {
		viewport = 0
	}

	first := geo.IndexAt(offset)
	last := geo.IndexAt(offset + viewport)

	// Over-scroll: keep the span, anchor it at the end.
	if last > n-1 {
		shift := last - (n - 1)
		first -= shift
		last = n - 1
	}
	if first < 0 {
		first = 0
	}
	if first > n-1 {
		first = n - 1
	}

	first -= t.before
	last += t.after
	if first < 0 {
		first = 0
	}
	if last > n-1 {
		last = n - 1
	}

	return types.VisibleWindow{First: first, Last: last}
}
