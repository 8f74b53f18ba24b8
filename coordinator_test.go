package recycler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lelandrichardson/recycler"
	"github.com/lelandrichardson/recycler/content"
	"github.com/lelandrichardson/recycler/geometry"
	"github.com/lelandrichardson/recycler/source"
	rectesting "github.com/lelandrichardson/recycler/testing"
	"github.com/lelandrichardson/recycler/transport"
	"github.com/lelandrichardson/recycler/types"
)

// alternatingTypes builds n items alternating A (even) and B (odd).
func alternatingTypes(n int) []types.TypeKey {
	items := make([]types.TypeKey, n)
	for i := range items {
		if i%2 == 1 {
			items[i] = "B"
		} else {
			items[i] = "A"
		}
	}

	return items
}

// covered reports whether every index in [first, last] is bound by a slot of
// the item's type.
func covered(c *recycler.Coordinator, src recycler.ItemSource, first, last int) bool {
	bound := map[int]types.TypeKey{}
	for _, tk := range c.PoolTypes() {
		for _, s := range c.SlotsOf(tk) {
			if !s.IsIdle() {
				bound[s.BoundIndex] = s.TypeKey
			}
		}
	}
	for i := first; i <= last; i++ {
		if bound[i] != src.TypeAt(i) {
			return false
		}
	}

	return true
}

func TestNew_Validation(t *testing.T) {
	cfg := recycler.TestConfig()
	src := source.NewStatic(alternatingTypes(10))
	geo := geometry.NewUniform(50)
	pres, _ := transport.NewChannelPair(4)
	binder := rectesting.NewRecordingBinder()

	t.Run("nil config", func(t *testing.T) {
		_, err := recycler.New(nil, src, geo, pres, binder)
		require.ErrorIs(t, err, recycler.ErrInvalidConfig)
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := recycler.TestConfig()
		bad.MaxSlotsPerType = -1
		_, err := recycler.New(&bad, src, geo, pres, binder)
		require.ErrorIs(t, err, recycler.ErrInvalidConfig)
	})

	t.Run("nil source", func(t *testing.T) {
		_, err := recycler.New(&cfg, nil, geo, pres, binder)
		require.ErrorIs(t, err, recycler.ErrItemSourceRequired)
	})

	t.Run("nil geometry", func(t *testing.T) {
		_, err := recycler.New(&cfg, src, nil, pres, binder)
		require.ErrorIs(t, err, recycler.ErrGeometryRequired)
	})

	t.Run("nil transport", func(t *testing.T) {
		_, err := recycler.New(&cfg, src, geo, nil, binder)
		require.ErrorIs(t, err, recycler.ErrTransportRequired)
	})

	t.Run("nil binder", func(t *testing.T) {
		_, err := recycler.New(&cfg, src, geo, pres, nil)
		require.ErrorIs(t, err, recycler.ErrBinderRequired)
	})
}

func TestCoordinator_Lifecycle(t *testing.T) {
	cfg := recycler.TestConfig()
	src := source.NewStatic(alternatingTypes(10))
	pres, _ := transport.NewChannelPair(4)
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, rectesting.NewRecordingBinder())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, coord.Start(ctx))
	require.ErrorIs(t, coord.Start(ctx), recycler.ErrAlreadyStarted)

	require.NoError(t, coord.Stop(ctx))
	require.Equal(t, recycler.StateStopped, coord.State())
	require.ErrorIs(t, coord.Stop(ctx), recycler.ErrNotStarted)
}

func TestCoordinator_BindsVisibleWindow(t *testing.T) {
	cfg := recycler.TestConfig()
	cfg.RenderAheadBefore = 0
	cfg.RenderAheadAfter = 0
	src := source.NewStatic(alternatingTypes(100))
	pres, cont := transport.NewChannelPair(8)
	binder := rectesting.NewRecordingBinder()
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, binder)
	require.NoError(t, err)

	ctx := context.Background()
	responder := content.NewResponder(cont)
	require.NoError(t, responder.Start(ctx))
	defer func() { _ = responder.Stop() }()

	require.NoError(t, coord.Start(ctx))
	defer func() { _ = coord.Stop(ctx) }()

	// Ten 50-unit items fill a 500-unit viewport (plus the boundary item).
	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 500})

	require.NoError(t, <-coord.WaitState(recycler.StateIdle, 2*time.Second))
	require.Equal(t, recycler.VisibleWindow{First: 0, Last: 10}, coord.Window())
	require.True(t, covered(coord, src, 0, 10))
	require.Equal(t, 11, binder.Count())
	require.Equal(t, 6, coord.PoolSize("A"))
	require.Equal(t, 5, coord.PoolSize("B"))
}

func TestCoordinator_ScrollReusesSlots(t *testing.T) {
	cfg := recycler.TestConfig()
	cfg.RenderAheadBefore = 0
	cfg.RenderAheadAfter = 0
	src := source.NewStatic(alternatingTypes(100))
	pres, cont := transport.NewChannelPair(8)
	binder := rectesting.NewRecordingBinder()
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, binder)
	require.NoError(t, err)

	ctx := context.Background()
	responder := content.NewResponder(cont)
	require.NoError(t, responder.Start(ctx))
	defer func() { _ = responder.Stop() }()
	require.NoError(t, coord.Start(ctx))
	defer func() { _ = coord.Stop(ctx) }()

	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 500})
	require.NoError(t, <-coord.WaitState(recycler.StateIdle, 2*time.Second))
	sizeA, sizeB := coord.PoolSize("A"), coord.PoolSize("B")

	// Scroll far enough that the whole window moves.
	coord.OnScroll(recycler.ScrollState{Offset: 2500, Viewport: 500})
	require.Eventually(t, func() bool {
		return coord.State() == recycler.StateIdle && covered(coord, src, 50, 60)
	}, 2*time.Second, 5*time.Millisecond)

	// Same window shape: every new binding reused a freed slot.
	require.Equal(t, sizeA, coord.PoolSize("A"))
	require.Equal(t, sizeB, coord.PoolSize("B"))
}

func TestCoordinator_EmptySourceIssuesNoRequests(t *testing.T) {
	cfg := recycler.TestConfig()
	src := source.NewStatic(nil)
	pres, cont := transport.NewChannelPair(4)
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, rectesting.NewRecordingBinder())
	require.NoError(t, err)

	ctx := context.Background()
	scripted := rectesting.NewScriptedContent(t, cont)
	scripted.Hold()

	require.NoError(t, coord.Start(ctx))
	defer func() { _ = coord.Stop(ctx) }()

	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 500})

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, recycler.StateIdle, coord.State())
	require.True(t, coord.Window().IsEmpty())
	require.Equal(t, 0, scripted.HeldCount())
	require.Empty(t, coord.PoolTypes())
}

func TestCoordinator_SupersessionMergesStaleReply(t *testing.T) {
	cfg := recycler.TestConfig()
	cfg.RequestTimeout = 10 * time.Second // Keep timeouts out of this test
	cfg.OperationTimeout = 20 * time.Second
	cfg.RenderAheadBefore = 0
	cfg.RenderAheadAfter = 0
	src := source.NewStatic(alternatingTypes(100))
	pres, cont := transport.NewChannelPair(8)
	binder := rectesting.NewRecordingBinder()
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, binder)
	require.NoError(t, err)

	ctx := context.Background()
	scripted := rectesting.NewScriptedContent(t, cont)
	scripted.Hold()
	require.NoError(t, coord.Start(ctx))
	defer func() { _ = coord.Stop(ctx) }()

	// First window: request goes out and is parked.
	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 500})
	require.Eventually(t, func() bool { return scripted.HeldCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	// Window moves before the reply: a superseding request is issued.
	coord.OnScroll(recycler.ScrollState{Offset: 250, Viewport: 500})
	require.Eventually(t, func() bool { return scripted.HeldCount() == 2 }, 2*time.Second, 5*time.Millisecond)

	// The stale reply lands first. It may only contribute indices the
	// current window [5, 15] still needs; 0-4 must stay unbound.
	require.True(t, scripted.ReleaseOne())
	require.Eventually(t, func() bool {
		return covered(coord, src, 5, 10) && coord.State() == recycler.StateAwaitingReply
	}, 2*time.Second, 5*time.Millisecond)
	require.False(t, covered(coord, src, 0, 0))

	// The fresh reply completes the window.
	require.True(t, scripted.ReleaseOne())
	require.NoError(t, <-coord.WaitState(recycler.StateIdle, 2*time.Second))
	require.True(t, covered(coord, src, 5, 15))
}

func TestCoordinator_TimeoutReissuesFreshID(t *testing.T) {
	cfg := recycler.TestConfig()
	cfg.RequestTimeout = 30 * time.Millisecond
	cfg.RenderAheadBefore = 0
	cfg.RenderAheadAfter = 0
	src := source.NewStatic(alternatingTypes(100))
	pres, cont := transport.NewChannelPair(8)
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, rectesting.NewRecordingBinder())
	require.NoError(t, err)

	ctx := context.Background()
	scripted := rectesting.NewScriptedContent(t, cont)
	scripted.Hold()
	require.NoError(t, coord.Start(ctx))
	defer func() { _ = coord.Stop(ctx) }()

	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 500})

	// The unanswered request is re-issued at least once.
	require.Eventually(t, func() bool { return scripted.HeldCount() >= 2 }, 2*time.Second, 5*time.Millisecond)

	scripted.Release()
	require.NoError(t, <-coord.WaitState(recycler.StateIdle, 2*time.Second))
	require.True(t, covered(coord, src, 0, 10))
}

func TestCoordinator_CapacityCeilingFiresHook(t *testing.T) {
	type exceeded struct {
		typeKey   recycler.TypeKey
		requested int
		bound     int
	}
	exceededCh := make(chan exceeded, 4)

	cfg := recycler.TestConfig()
	cfg.MaxSlotsPerType = 3
	cfg.RenderAheadBefore = 0
	cfg.RenderAheadAfter = 0
	items := make([]types.TypeKey, 100)
	for i := range items {
		items[i] = "A"
	}
	src := source.NewStatic(items)
	pres, cont := transport.NewChannelPair(8)
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, rectesting.NewRecordingBinder(),
		recycler.WithHooks(&recycler.Hooks{
			OnCapacityExceeded: func(_ context.Context, tk recycler.TypeKey, requested, bound int) error {
				exceededCh <- exceeded{typeKey: tk, requested: requested, bound: bound}

				return nil
			},
		}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	responder := content.NewResponder(cont)
	require.NoError(t, responder.Start(ctx))
	defer func() { _ = responder.Stop() }()
	require.NoError(t, coord.Start(ctx))
	defer func() { _ = coord.Stop(ctx) }()

	// Five visible type-A items against a ceiling of three.
	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 200})

	select {
	case got := <-exceededCh:
		require.Equal(t, recycler.TypeKey("A"), got.typeKey)
		require.Equal(t, 5, got.requested)
		require.Equal(t, 3, got.bound)
	case <-time.After(2 * time.Second):
		t.Fatal("OnCapacityExceeded hook never fired")
	}

	require.Eventually(t, func() bool { return coord.PoolSize("A") == 3 }, 2*time.Second, 5*time.Millisecond)
	// Nearest-to-center selection for window [0, 4]: indices 1, 2, 3.
	require.True(t, covered(coord, src, 1, 3))
}

func TestCoordinator_SubscribeObservesTransitions(t *testing.T) {
	cfg := recycler.TestConfig()
	src := source.NewStatic(alternatingTypes(100))
	pres, cont := transport.NewChannelPair(8)
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, rectesting.NewRecordingBinder())
	require.NoError(t, err)

	ctx := context.Background()
	responder := content.NewResponder(cont)
	require.NoError(t, responder.Start(ctx))
	defer func() { _ = responder.Stop() }()
	require.NoError(t, coord.Start(ctx))
	defer func() { _ = coord.Stop(ctx) }()

	ch, unsubscribe := coord.Subscribe()
	defer unsubscribe()

	var mu sync.Mutex
	seen := map[recycler.State]bool{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for state := range ch {
			mu.Lock()
			seen[state] = true
			idle := state == recycler.StateIdle && len(seen) >= 3
			mu.Unlock()
			if idle {
				return
			}
		}
	}()

	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 500})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("did not observe the full state cycle")
	}
	mu.Lock()
	defer mu.Unlock()
	require.True(t, seen[recycler.StateAwaitingReply])
	require.True(t, seen[recycler.StateReconciling])
	require.True(t, seen[recycler.StateIdle])
}

func TestCoordinator_RefreshAfterSourceGrowth(t *testing.T) {
	cfg := recycler.TestConfig()
	cfg.RenderAheadBefore = 0
	cfg.RenderAheadAfter = 0
	src := source.NewStatic(alternatingTypes(5))
	pres, cont := transport.NewChannelPair(8)
	coord, err := recycler.New(&cfg, src, geometry.NewUniform(50), pres, rectesting.NewRecordingBinder())
	require.NoError(t, err)

	ctx := context.Background()
	responder := content.NewResponder(cont)
	require.NoError(t, responder.Start(ctx))
	defer func() { _ = responder.Stop() }()
	require.NoError(t, coord.Start(ctx))
	defer func() { _ = coord.Stop(ctx) }()

	coord.OnScroll(recycler.ScrollState{Offset: 0, Viewport: 500})
	require.NoError(t, <-coord.WaitState(recycler.StateIdle, 2*time.Second))
	require.Equal(t, recycler.VisibleWindow{First: 0, Last: 4}, coord.Window())

	// More items appear; the same scroll position now shows more of them.
	src.Update(alternatingTypes(100))
	require.NoError(t, coord.Refresh())

	require.Eventually(t, func() bool {
		return coord.Window().Last == 10 && covered(coord, src, 0, 10)
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCoordinator_RefreshBeforeStart(t *testing.T) {
	cfg := recycler.TestConfig()
	pres, _ := transport.NewChannelPair(4)
	coord, err := recycler.New(&cfg, source.NewStatic(nil), geometry.NewUniform(50), pres, rectesting.NewRecordingBinder())
	require.NoError(t, err)

	require.ErrorIs(t, coord.Refresh(), recycler.ErrNotStarted)
}
