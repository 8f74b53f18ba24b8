package types

import "context"

// Hooks defines callbacks for coordinator lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// to avoid blocking the run loop. Hooks receive the coordinator's lifecycle
// context which will be cancelled during shutdown.
//
// IMPORTANT: Hook execution behavior:
//   - Hooks run concurrently and may not complete before Stop() returns
//   - The context passed to hooks is cancelled when the coordinator stops
//   - Hook errors are logged but don't fail coordinator operations
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Don't block on long I/O operations
//   - Make hooks idempotent (may be called multiple times)
//   - Handle errors gracefully (return error for logging)
type Hooks struct {
	// OnStateChanged is called when the coordinator state transitions.
	OnStateChanged func(ctx context.Context, from, to State) error

	// OnWindowChanged is called when the required window moves.
	OnWindowChanged func(ctx context.Context, old, current VisibleWindow) error

	// OnCapacityExceeded is called when a pool hits its capacity ceiling and
	// binds fewer indices than required. This is the degraded-mode signal:
	// requested is the number of indices the assignment asked for, bound is
	// how many slots actually cover them.
	OnCapacityExceeded func(ctx context.Context, typeKey TypeKey, requested, bound int) error

	// OnError is called when a recoverable error occurs (invalid assignment,
	// transport send failure, request timeout).
	OnError func(ctx context.Context, err error) error
}
