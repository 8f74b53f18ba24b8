package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/lelandrichardson/recycler/types"
)

// recordingBinder captures every rebind notification.
type recordingBinder struct {
	mu      sync.Mutex
	rebinds []types.RebindNotification
	failErr error
}

func (b *recordingBinder) BindSlot(_ context.Context, rebind types.RebindNotification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rebinds = append(b.rebinds, rebind)

	return b.failErr
}

func (b *recordingBinder) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.rebinds)
}

func (b *recordingBinder) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rebinds = nil
}

// alternating builds the assignment for a window over items whose type
// alternates A (even indices) and B (odd indices).
func alternating(requestID uint64, first, last int) types.PoolAssignment {
	a := types.PoolAssignment{
		RequestID:  requestID,
		Assignment: map[types.TypeKey][]int{},
	}
	for i := first; i <= last; i++ {
		tk := types.TypeKey("A")
		if i%2 == 1 {
			tk = "B"
		}
		a.Assignment[tk] = append(a.Assignment[tk], i)
	}

	return a
}

func alternatingRequired(first, last int) func(int) (types.TypeKey, bool) {
	return func(idx int) (types.TypeKey, bool) {
		if idx < first || idx > last {
			return "", false
		}
		if idx%2 == 1 {
			return "B", true
		}

		return "A", true
	}
}

func boundIndicesOf(r *Registry, tk types.TypeKey) map[int]uint64 {
	out := map[int]uint64{}
	for _, s := range r.SlotsOf(tk) {
		if !s.IsIdle() {
			out[s.BoundIndex] = s.Generation
		}
	}

	return out
}

func TestRegistry_InitialBind(t *testing.T) {
	binder := &recordingBinder{}
	r := NewRegistry(&Config{Binder: binder})

	res, err := r.Apply(context.Background(), alternating(1, 0, 9), ApplyOptions{
		Mode:      ModeFull,
		Window:    types.VisibleWindow{First: 0, Last: 9},
		ItemCount: 100,
	})

	require.NoError(t, err)
	require.Equal(t, 10, res.Rebinds)
	require.Equal(t, 10, res.Grown)
	require.Equal(t, 0, res.Noops)
	require.Equal(t, 5, r.PoolSize("A"))
	require.Equal(t, 5, r.PoolSize("B"))
	require.Equal(t, 10, binder.count())
	for i := range 10 {
		tk := types.TypeKey("A")
		if i%2 == 1 {
			tk = "B"
		}
		require.True(t, r.Covers(i, tk), "index %d should be covered", i)
	}
}

// Scroll from [0,9] to [5,14]: slots bound to 0-4 are freed and exactly those
// are reused, oldest-idle first, to bind 10-14; slots bound to 5-9 are left
// untouched.
func TestRegistry_WindowShiftReusesOldestIdle(t *testing.T) {
	binder := &recordingBinder{}
	r := NewRegistry(&Config{Binder: binder})
	ctx := context.Background()

	_, err := r.Apply(ctx, alternating(1, 0, 9), ApplyOptions{
		Mode:      ModeFull,
		Window:    types.VisibleWindow{First: 0, Last: 9},
		ItemCount: 100,
	})
	require.NoError(t, err)

	before := map[types.TypeKey]map[int]uint64{
		"A": boundIndicesOf(r, "A"),
		"B": boundIndicesOf(r, "B"),
	}
	slotFor := map[int]uint64{}
	for _, tk := range []types.TypeKey{"A", "B"} {
		for _, s := range r.SlotsOf(tk) {
			slotFor[s.BoundIndex] = s.ID
		}
	}
	binder.reset()

	res, err := r.Apply(ctx, alternating(2, 5, 14), ApplyOptions{
		Mode:      ModeFull,
		Window:    types.VisibleWindow{First: 5, Last: 14},
		ItemCount: 100,
	})
	require.NoError(t, err)

	require.Equal(t, 5, res.Released)
	require.Equal(t, 5, res.Rebinds)
	require.Equal(t, 5, res.Noops)
	require.Equal(t, 0, res.Grown, "no new slots; freed ones must be reused")
	require.Equal(t, 5, r.PoolSize("A"))
	require.Equal(t, 5, r.PoolSize("B"))

	// 5-9 untouched: same slot, same generation.
	for i := 5; i <= 9; i++ {
		tk := types.TypeKey("A")
		if i%2 == 1 {
			tk = "B"
		}
		require.Equal(t, before[tk][i], boundIndicesOf(r, tk)[i], "index %d must keep its generation", i)
	}

	// Oldest-idle reuse: the slot that showed 0 now shows 10, 2 -> 12, 4 -> 14,
	// 1 -> 11, 3 -> 13.
	for _, tk := range []types.TypeKey{"A", "B"} {
		for _, s := range r.SlotsOf(tk) {
			if s.BoundIndex >= 10 {
				require.Equal(t, slotFor[s.BoundIndex-10], s.ID,
					"index %d should reuse the slot that showed %d", s.BoundIndex, s.BoundIndex-10)
			}
		}
	}
}

// An index already correctly bound generates zero rebind notifications.
func TestRegistry_NoopProperty(t *testing.T) {
	binder := &recordingBinder{}
	r := NewRegistry(&Config{Binder: binder})
	ctx := context.Background()

	first, err := r.Apply(ctx, alternating(1, 0, 9), ApplyOptions{
		Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 9}, ItemCount: 100,
	})
	require.NoError(t, err)
	require.Equal(t, 10, first.Rebinds)
	binder.reset()

	// Same content applied as a merge: different mode defeats the replay
	// shortcut, so every index walks the per-index path and lands on a no-op.
	res, err := r.Apply(ctx, alternating(2, 0, 9), ApplyOptions{
		Mode: ModeMerge, Window: types.VisibleWindow{First: 0, Last: 9}, ItemCount: 100,
	})
	require.NoError(t, err)
	require.False(t, res.Replayed)
	require.Equal(t, 0, res.Rebinds)
	require.Equal(t, 10, res.Noops)
	require.Equal(t, 0, binder.count())
}

// Replaying the byte-identical assignment twice produces identical bindings
// and a single no-op pass.
func TestRegistry_IdempotentReplay(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()
	assignment := alternating(1, 0, 9)
	opts := ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 9}, ItemCount: 100}

	_, err := r.Apply(ctx, assignment, opts)
	require.NoError(t, err)
	snapA := r.SlotsOf("A")
	snapB := r.SlotsOf("B")

	res, err := r.Apply(ctx, assignment, opts)
	require.NoError(t, err)
	require.True(t, res.Replayed)
	require.Equal(t, 0, res.Rebinds)
	require.Equal(t, 10, res.Noops)

	if diff := cmp.Diff(snapA, r.SlotsOf("A")); diff != "" {
		t.Errorf("pool A changed on replay (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(snapB, r.SlotsOf("B")); diff != "" {
		t.Errorf("pool B changed on replay (-before +after):\n%s", diff)
	}
}

// A stale reply reconciled after a newer one must not evict bindings for
// indices it does not reference.
func TestRegistry_StaleMergeDoesNotEvict(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	// Reply for request 2 (window [10,19]) reconciles first.
	_, err := r.Apply(ctx, alternating(2, 10, 19), ApplyOptions{
		Mode:      ModeFull,
		Window:    types.VisibleWindow{First: 10, Last: 19},
		ItemCount: 100,
		Required:  alternatingRequired(10, 19),
	})
	require.NoError(t, err)
	snapshot := boundIndicesOf(r, "A")

	// Reply for superseded request 1 (window [0,9]) arrives late and merges.
	res, err := r.Apply(ctx, alternating(1, 0, 9), ApplyOptions{
		Mode:      ModeMerge,
		Window:    types.VisibleWindow{First: 10, Last: 19},
		ItemCount: 100,
		Required:  alternatingRequired(10, 19),
	})
	require.NoError(t, err)
	require.Equal(t, 0, res.Rebinds)
	require.Equal(t, 10, res.Skipped)

	if diff := cmp.Diff(snapshot, boundIndicesOf(r, "A")); diff != "" {
		t.Errorf("stale merge evicted newer bindings (-before +after):\n%s", diff)
	}
	for i := 10; i <= 19; i++ {
		tk := types.TypeKey("A")
		if i%2 == 1 {
			tk = "B"
		}
		require.True(t, r.Covers(i, tk))
	}
}

// A stale reply overlapping the current window contributes its still-useful
// indices.
func TestRegistry_StaleMergePartialProgress(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	// Only [10,14] is covered so far.
	_, err := r.Apply(ctx, alternating(2, 10, 14), ApplyOptions{
		Mode:      ModeFull,
		Window:    types.VisibleWindow{First: 5, Last: 14},
		ItemCount: 100,
		Required:  alternatingRequired(5, 14),
	})
	require.NoError(t, err)

	// Stale reply for [0,9]: indices 5-9 are still required and get bound;
	// 0-4 are skipped.
	res, err := r.Apply(ctx, alternating(1, 0, 9), ApplyOptions{
		Mode:      ModeMerge,
		Window:    types.VisibleWindow{First: 5, Last: 14},
		ItemCount: 100,
		Required:  alternatingRequired(5, 14),
	})
	require.NoError(t, err)
	require.Equal(t, 5, res.Rebinds)
	require.Equal(t, 5, res.Skipped)
	for i := 5; i <= 14; i++ {
		tk := types.TypeKey("A")
		if i%2 == 1 {
			tk = "B"
		}
		require.True(t, r.Covers(i, tk), "index %d", i)
	}
	require.False(t, r.Covers(0, "A"))
}

// Last-reconciled-wins across types: an index claimed under a new type evicts
// the previous owner, regardless of request id ordering.
func TestRegistry_LastReconciledWinsAcrossTypes(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	_, err := r.Apply(ctx, types.PoolAssignment{
		RequestID:  2,
		Assignment: map[types.TypeKey][]int{"A": {0}},
	}, ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 0}, ItemCount: 10})
	require.NoError(t, err)
	require.True(t, r.Covers(0, "A"))

	res, err := r.Apply(ctx, types.PoolAssignment{
		RequestID:  1,
		Assignment: map[types.TypeKey][]int{"B": {0}},
	}, ApplyOptions{
		Mode:      ModeMerge,
		Window:    types.VisibleWindow{First: 0, Last: 0},
		ItemCount: 10,
		Required: func(idx int) (types.TypeKey, bool) {
			if idx == 0 {
				return "B", true
			}

			return "", false
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Rebinds)
	require.True(t, r.Covers(0, "B"))
	require.False(t, r.Covers(0, "A"))

	// The evicted A slot is idle, not destroyed.
	require.Equal(t, 1, r.PoolSize("A"))
	require.True(t, r.SlotsOf("A")[0].IsIdle())
}

// Capacity ceiling of 3 with 5 required type-A items: only 3 are bound,
// chosen nearest to the visible center.
func TestRegistry_CapacityCeiling(t *testing.T) {
	r := NewRegistry(&Config{MaxSlotsPerType: 3})
	ctx := context.Background()

	res, err := r.Apply(ctx, types.PoolAssignment{
		RequestID:  1,
		Assignment: map[types.TypeKey][]int{"A": {0, 1, 2, 3, 4}},
	}, ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 4}, ItemCount: 100})

	require.NoError(t, err)
	require.Equal(t, 3, res.Rebinds)
	require.Equal(t, 3, r.PoolSize("A"))
	require.Equal(t, Shortfall{Requested: 5, Bound: 3}, res.Shortfalls["A"])

	// Center of [0,4] is 2: indices 1, 2, 3 stay bound.
	for _, idx := range []int{1, 2, 3} {
		require.True(t, r.Covers(idx, "A"), "index %d", idx)
	}
	for _, idx := range []int{0, 4} {
		require.False(t, r.Covers(idx, "A"), "index %d", idx)
	}
}

func TestRegistry_InvalidIndexDropsAssignment(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	_, err := r.Apply(ctx, types.PoolAssignment{
		RequestID:  1,
		Assignment: map[types.TypeKey][]int{"A": {0, 10}},
	}, ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 9}, ItemCount: 10})

	require.ErrorIs(t, err, types.ErrInvalidIndex)
	// Dropped without mutation: not even the valid index 0 was bound.
	require.Empty(t, r.Types())
	require.False(t, r.Covers(0, "A"))
}

// Slot construction per type is bounded by the historical maximum
// concurrently required count, across any window sequence.
func TestRegistry_HighWaterBound(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	for first := 0; first <= 40; first += 3 {
		last := first + 9
		_, err := r.Apply(ctx, alternating(uint64(first+1), first, last), ApplyOptions{
			Mode:      ModeFull,
			Window:    types.VisibleWindow{First: first, Last: last},
			ItemCount: 100,
			Required:  alternatingRequired(first, last),
		})
		require.NoError(t, err)
		require.LessOrEqual(t, r.PoolSize("A"), 5)
		require.LessOrEqual(t, r.PoolSize("B"), 5)
	}
}

func TestRegistry_GenerationIncrementsPerRebind(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()

	// One slot cycling through three indices.
	for i, idx := range []int{0, 1, 2} {
		_, err := r.Apply(ctx, types.PoolAssignment{
			RequestID:  uint64(i + 1),
			Assignment: map[types.TypeKey][]int{"A": {idx}},
		}, ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: idx, Last: idx}, ItemCount: 10})
		require.NoError(t, err)
	}

	slots := r.SlotsOf("A")
	require.Len(t, slots, 1, "single-index windows must reuse one slot")
	require.Equal(t, uint64(3), slots[0].Generation)
	require.Equal(t, 2, slots[0].BoundIndex)
}

func TestRegistry_Uncovered(t *testing.T) {
	t.Run("empty registry counts all", func(t *testing.T) {
		r := NewRegistry(nil)

		require.Equal(t, 2, r.Uncovered(map[int]types.TypeKey{0: "A", 1: "B"}))
	})

	t.Run("fully bound counts zero", func(t *testing.T) {
		r := NewRegistry(nil)
		_, err := r.Apply(context.Background(), alternating(1, 0, 9), ApplyOptions{
			Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 9}, ItemCount: 100,
		})
		require.NoError(t, err)

		required := map[int]types.TypeKey{}
		for i := range 10 {
			tk := types.TypeKey("A")
			if i%2 == 1 {
				tk = "B"
			}
			required[i] = tk
		}
		require.Equal(t, 0, r.Uncovered(required))
	})

	t.Run("permanent ceiling shortfall counts zero", func(t *testing.T) {
		r := NewRegistry(&Config{MaxSlotsPerType: 3})
		_, err := r.Apply(context.Background(), types.PoolAssignment{
			RequestID:  1,
			Assignment: map[types.TypeKey][]int{"A": {0, 1, 2, 3, 4}},
		}, ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 4}, ItemCount: 100})
		require.NoError(t, err)

		// 1, 2, 3 are bound; 0 and 4 can never be satisfied at ceiling 3.
		// Re-requesting would change nothing, so they must not count.
		required := map[int]types.TypeKey{0: "A", 1: "A", 2: "A", 3: "A", 4: "A"}
		require.Equal(t, 0, r.Uncovered(required))
	})

	t.Run("reclaimable slots count", func(t *testing.T) {
		r := NewRegistry(&Config{MaxSlotsPerType: 3})
		_, err := r.Apply(context.Background(), types.PoolAssignment{
			RequestID:  1,
			Assignment: map[types.TypeKey][]int{"A": {0, 1, 2}},
		}, ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 2}, ItemCount: 100})
		require.NoError(t, err)

		// Window moved: 5, 6, 7 required, all three bound slots reclaimable.
		require.Equal(t, 3, r.Uncovered(map[int]types.TypeKey{5: "A", 6: "A", 7: "A"}))
	})
}

func TestRegistry_PruneIdle(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	r := NewRegistry(&Config{Clock: clock})
	ctx := context.Background()

	_, err := r.Apply(ctx, types.PoolAssignment{
		RequestID:  1,
		Assignment: map[types.TypeKey][]int{"A": {0}, "B": {1}},
	}, ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 1}, ItemCount: 10})
	require.NoError(t, err)

	// The B requirement disappears; its slot is released.
	_, err = r.Apply(ctx, types.PoolAssignment{
		RequestID:  2,
		Assignment: map[types.TypeKey][]int{"A": {0}},
	}, ApplyOptions{Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 0}, ItemCount: 10})
	require.NoError(t, err)

	t.Run("young idle pool survives", func(t *testing.T) {
		require.Empty(t, r.PruneIdle(time.Minute))
		require.Equal(t, []types.TypeKey{"A", "B"}, r.Types())
	})

	t.Run("old idle pool is torn down, bound pool survives", func(t *testing.T) {
		now = now.Add(2 * time.Minute)

		pruned := r.PruneIdle(time.Minute)

		require.Equal(t, []types.TypeKey{"B"}, pruned)
		require.Equal(t, []types.TypeKey{"A"}, r.Types())
		require.True(t, r.Covers(0, "A"))
	})
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Apply(context.Background(), alternating(1, 0, 9), ApplyOptions{
		Mode: ModeFull, Window: types.VisibleWindow{First: 0, Last: 9}, ItemCount: 100,
	})
	require.NoError(t, err)

	r.Reset()

	require.Empty(t, r.Types())
	require.Equal(t, 0, r.PoolSize("A"))
	require.False(t, r.Covers(0, "A"))
}

// A failing binder never aborts reconciliation: the slot stays bound to the
// new index and the pass completes.
func TestRegistry_BinderFailureDoesNotAbort(t *testing.T) {
	binder := &recordingBinder{failErr: types.ErrStaleReply}
	r := NewRegistry(&Config{Binder: binder})

	res, err := r.Apply(context.Background(), alternating(1, 0, 9), ApplyOptions{
		Mode:      ModeFull,
		Window:    types.VisibleWindow{First: 0, Last: 9},
		ItemCount: 100,
	})

	require.NoError(t, err)
	require.Equal(t, 10, res.Rebinds)
	require.Equal(t, 10, binder.count())
	for i := range 10 {
		tk := types.TypeKey("A")
		if i%2 == 1 {
			tk = "B"
		}
		require.True(t, r.Covers(i, tk))
	}
}
