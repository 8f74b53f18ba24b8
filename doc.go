// Package recycler provides a Go library for bounded view recycling over
// large item lists, coordinating a small pool of reusable slots with an
// asynchronous content layer.
//
// Recycler keeps memory and message traffic proportional to the visible
// window rather than the item count. A presentation-side coordinator tracks
// the scrolled window, asks the content actor to cover it, and reconciles
// replies into per-type slot pools that rebind existing slots instead of
// allocating new ones.
//
// # Quick Start
//
// Basic usage with an in-process content actor:
//
//	import (
//	    "github.com/lelandrichardson/recycler"
//	    "github.com/lelandrichardson/recycler/content"
//	    "github.com/lelandrichardson/recycler/geometry"
//	    "github.com/lelandrichardson/recycler/source"
//	    "github.com/lelandrichardson/recycler/transport"
//	)
//
//	cfg := recycler.DefaultConfig()
//	pres, cont := transport.NewChannelPair(8)
//
//	responder := content.NewResponder(cont)
//	_ = responder.Start(ctx)
//
//	src := source.NewStatic(itemTypes)
//	coord, err := recycler.New(&cfg, src, geometry.NewUniform(48), pres, binder)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := coord.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer coord.Stop(context.Background())
//
//	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 600})
//
// # Key Features
//
//   - Bounded pools: slot construction per type never exceeds the historical
//     maximum concurrently-required count
//   - Deterministic recycling: freed slots are reused oldest-idle first;
//     capacity overflow keeps the indices nearest the visible center
//   - Supersession: newer windows invalidate in-flight requests; stale
//     replies merge without evicting newer bindings
//   - Lossy-transport tolerance: drops, duplicates, and reorders are
//     absorbed by monotonic request ids, digests, and timeout re-issue
//
// # Architecture
//
// The coordinator progresses through a state machine on every window change:
//
//	Idle → AwaitingReply → Reconciling → Idle
//
// Scroll state feeds a visible range tracker; uncovered windows emit a
// RangeRequest; the content actor answers with a PoolAssignment; the
// reconciler rebinds slots and notifies the SlotBinder collaborator, which
// applies content only if the slot generation still matches.
//
// # Advanced Usage
//
// Custom policies and hooks:
//
//	import (
//	    "github.com/lelandrichardson/recycler"
//	    "github.com/lelandrichardson/recycler/policy"
//	)
//
//	hooks := &recycler.Hooks{
//	    OnCapacityExceeded: func(ctx context.Context, tk recycler.TypeKey, requested, bound int) error {
//	        // Degraded mode: fewer slots than the window requires
//	        return nil
//	    },
//	}
//
//	coord, err := recycler.New(&cfg, src, geo, pres, binder,
//	    recycler.WithOverflowPolicy(policy.NewNearestCenter()),
//	    recycler.WithHooks(hooks),
//	)
//
// See the examples/ directory for complete working examples.
package recycler
