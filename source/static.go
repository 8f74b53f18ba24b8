package source

import (
	"sync"

	"github.com/lelandrichardson/recycler/types"
)

// Static implements an item source backed by a fixed slice of type keys.
type Static struct {
	mu    sync.RWMutex
	items []types.TypeKey
}

var _ types.ItemSource = (*Static)(nil)

// NewStatic creates a new static item source.
//
// Item i renders with template type items[i]. The slice is copied; later
// mutations of the caller's slice do not affect the source.
//
// Parameters:
//   - items: Type key per item index
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic([]types.TypeKey{"header", "row", "row", "footer"})
//	coord, err := recycler.New(&cfg, src, geometry.NewUniform(48), transport, binder)
//	if err != nil { /* handle */ }
func NewStatic(items []types.TypeKey) *Static {
	s := &Static{items: make([]types.TypeKey, len(items))}
	copy(s.items, items)

	return s
}

// Len returns the current item count.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// TypeAt returns the template type of item i. Out-of-range indices return the
// empty TypeKey.
//
// Parameters:
//   - i: Item index
//
// Returns:
//   - types.TypeKey: Template type for the index
func (s *Static) TypeAt(i int) types.TypeKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.items) {
		return ""
	}

	return s.items[i]
}

// Update replaces the item list.
//
// This lets the static source simulate data set changes, which is useful for
// testing window recomputation after inserts and removals.
//
// Parameters:
//   - items: New type key per item index
func (s *Static) Update(items []types.TypeKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]types.TypeKey, len(items))
	copy(s.items, items)
}
