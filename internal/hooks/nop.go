// Package hooks provides the default no-op hook implementations.
package hooks

import (
	"context"

	"github.com/lelandrichardson/recycler/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.State, types.State) error                   = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, types.VisibleWindow, types.VisibleWindow) error   = (*NopHooks)(nil).OnWindowChanged
	_ func(context.Context, types.TypeKey, int, int) error                    = (*NopHooks)(nil).OnCapacityExceeded
	_ func(context.Context, error) error                                      = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnStateChanged:     h.OnStateChanged,
		OnWindowChanged:    h.OnWindowChanged,
		OnCapacityExceeded: h.OnCapacityExceeded,
		OnError:            h.OnError,
	}
}

// Fill replaces nil callbacks in h with no-op implementations.
//
// Parameters:
//   - h: Hooks to normalize (may be nil)
//
// Returns:
//   - types.Hooks: Hooks with every callback non-nil
func Fill(h *types.Hooks) types.Hooks {
	filled := NewNop()
	if h == nil {
		return filled
	}
	if h.OnStateChanged != nil {
		filled.OnStateChanged = h.OnStateChanged
	}
	if h.OnWindowChanged != nil {
		filled.OnWindowChanged = h.OnWindowChanged
	}
	if h.OnCapacityExceeded != nil {
		filled.OnCapacityExceeded = h.OnCapacityExceeded
	}
	if h.OnError != nil {
		filled.OnError = h.OnError
	}

	return filled
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_ context.Context, _, _ types.State) error {
	return nil
}

// OnWindowChanged is a no-op implementation.
func (h *NopHooks) OnWindowChanged(_ context.Context, _, _ types.VisibleWindow) error {
	return nil
}

// OnCapacityExceeded is a no-op implementation.
func (h *NopHooks) OnCapacityExceeded(_ context.Context, _ types.TypeKey, _, _ int) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
