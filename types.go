package recycler

import "github.com/lelandrichardson/recycler/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the library's
// core types and interfaces. It uses type aliases to re-export definitions
// from the `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `recycler` package, while
// still providing a convenient `recycler.State`, `recycler.Logger`, etc. for
// users.
type (
	State              = types.State
	TypeKey            = types.TypeKey
	ScrollState        = types.ScrollState
	VisibleWindow      = types.VisibleWindow
	SlotInfo           = types.SlotInfo
	RangeRequest       = types.RangeRequest
	PoolAssignment     = types.PoolAssignment
	RebindNotification = types.RebindNotification
)

// Re-export interfaces from the internal types package for convenience.
type (
	ItemSource       = types.ItemSource
	Geometry         = types.Geometry
	SlotBinder       = types.SlotBinder
	Transport        = types.Transport
	ContentTransport = types.ContentTransport
	RecyclePolicy    = types.RecyclePolicy
	OverflowPolicy   = types.OverflowPolicy
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export State constants from the internal types package.
const (
	StateIdle          = types.StateIdle
	StateAwaitingReply = types.StateAwaitingReply
	StateReconciling   = types.StateReconciling
	StateStopped       = types.StateStopped
)

// IndexNone marks a slot not currently bound to any index.
const IndexNone = types.IndexNone
