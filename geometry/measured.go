package geometry

import (
	"sort"

	"github.com/lelandrichardson/recycler/types"
)

// Compile-time interface check.
var _ types.Geometry = (*Measured)(nil)

// Measured is a Geometry backed by per-item measured extents. Offset lookups
// binary-search a prefix-sum table, O(log n).
type Measured struct {
	extents []float64
	// starts[i] is the offset where item i begins; starts[len] is the total
	// content extent.
	starts []float64
}

// NewMeasured creates a Measured geometry from per-item extents.
//
// Parameters:
//   - extents: Extent of each item in layout units; values <= 0 are treated
//     as 0 (collapsed item)
//
// Returns:
//   - *Measured: Geometry with O(log n) offset lookup
func NewMeasured(extents []float64) *Measured {
	m := &Measured{
		extents: make([]float64, len(extents)),
		starts:  make([]float64, len(extents)+1),
	}
	offset := 0.0
	for i, e := range extents {
		if e < 0 {
			e = 0
		}
		m.extents[i] = e
		m.starts[i] = offset
		offset += e
	}
	m.starts[len(extents)] = offset

	return m
}

// IndexAt returns the index of the item containing offset. Negative offsets
// map to index 0; offsets at or past the content end map to the last item.
func (m *Measured) IndexAt(offset float64) int {
	if len(m.extents) == 0 || offset <= 0 {
		return 0
	}
	// First item whose end lies past the offset.
	idx := sort.Search(len(m.extents), func(i int) bool {
		return m.starts[i+1] > offset
	})
	if idx >= len(m.extents) {
		idx = len(m.extents) - 1
	}

	return idx
}

// ExtentOf returns the measured extent of item i (0 when out of range).
func (m *Measured) ExtentOf(i int) float64 {
	if i < 0 || i >= len(m.extents) {
		return 0
	}

	return m.extents[i]
}

// TotalExtent returns the summed extent of all items.
func (m *Measured) TotalExtent() float64 {
	return m.starts[len(m.starts)-1]
}
