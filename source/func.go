package source

import (
	"github.com/lelandrichardson/recycler/types"
)

// Func adapts a pair of closures into an ItemSource, for sources whose data
// lives elsewhere (a view model, a database cursor cache).
type Func struct {
	length func() int
	typeAt func(i int) types.TypeKey
}

var _ types.ItemSource = (*Func)(nil)

// NewFunc creates an item source from closures.
//
// Parameters:
//   - length: Returns the current item count
//   - typeAt: Returns the template type of item i
//
// Returns:
//   - *Func: Initialized functional source
func NewFunc(length func() int, typeAt func(i int) types.TypeKey) *Func {
	return &Func{length: length, typeAt: typeAt}
}

// Len returns the current item count.
func (f *Func) Len() int {
	return f.length()
}

// TypeAt returns the template type of item i.
func (f *Func) TypeAt(i int) types.TypeKey {
	return f.typeAt(i)
}
