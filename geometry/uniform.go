package geometry

import (
	"github.com/lelandrichardson/recycler/types"
)

// Compile-time interface check.
var _ types.Geometry = (*Uniform)(nil)

// Uniform is a Geometry where every item has the same extent, the common case
// for fixed-row lists. Offset lookups are O(1).
type Uniform struct {
	extent float64
}

// NewUniform creates a Uniform geometry.
//
// Parameters:
//   - extent: Per-item extent in layout units; values <= 0 are treated as 1
//
// Returns:
//   - *Uniform: Geometry with O(1) offset lookup
func NewUniform(extent float64) *Uniform {
	if extent <= 0 {
		extent = 1
	}

	return &Uniform{extent: extent}
}

// IndexAt returns the index of the item containing offset. Negative offsets
// map to index 0.
func (u *Uniform) IndexAt(offset float64) int {
	if offset <= 0 {
		return 0
	}

	return int(offset / u.extent)
}

// ExtentOf returns the fixed per-item extent.
func (u *Uniform) ExtentOf(int) float64 {
	return u.extent
}
