// Package geometry provides Geometry implementations that map scroll offsets
// to item indices.
//
// A Geometry answers two questions for the visible range tracker: which item
// contains a given pixel offset, and how tall a given item is. Implementations
// must answer in O(1) or O(log n); the tracker calls them on every scroll
// tick.
package geometry
