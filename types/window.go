package types

// ScrollState captures the presentation layer's current scroll position.
//
// Offsets are expressed in layout units (pixels, points, whatever the
// geometry collaborator measures in). The library never inspects units; it
// only forwards them to the Geometry implementation.
type ScrollState struct {
	// Offset is the scroll position of the top edge of the viewport.
	Offset float64 `json:"offset"`

	// Viewport is the extent of the visible area along the scroll axis.
	Viewport float64 `json:"viewport"`
}

// VisibleWindow is an inclusive index range over the logical item list.
//
// The canonical empty window is {First: 0, Last: -1}. Windows produced by the
// tracker already include the configured render-ahead margins and are clamped
// to [0, n-1].
type VisibleWindow struct {
	// First is the first required index (inclusive).
	First int `json:"first"`

	// Last is the last required index (inclusive).
	Last int `json:"last"`
}

// EmptyWindow returns the canonical empty window.
func EmptyWindow() VisibleWindow {
	return VisibleWindow{First: 0, Last: -1}
}

// IsEmpty reports whether the window contains no indices.
func (w VisibleWindow) IsEmpty() bool {
	return w.Last < w.First
}

// Count returns the number of indices in the window.
func (w VisibleWindow) Count() int {
	if w.IsEmpty() {
		return 0
	}

	return w.Last - w.First + 1
}

// Contains reports whether index i falls inside the window.
func (w VisibleWindow) Contains(i int) bool {
	return i >= w.First && i <= w.Last
}

// Center returns the midpoint index of the window.
//
// Used by overflow policies to keep the most central items bound when a pool
// hits its capacity ceiling. Returns 0 for an empty window.
func (w VisibleWindow) Center() int {
	if w.IsEmpty() {
		return 0
	}

	return w.First + (w.Last-w.First)/2
}
