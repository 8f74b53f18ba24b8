package pool

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/lelandrichardson/recycler/internal/digest"
	"github.com/lelandrichardson/recycler/internal/logger"
	"github.com/lelandrichardson/recycler/internal/metrics"
	"github.com/lelandrichardson/recycler/policy"
	"github.com/lelandrichardson/recycler/types"
)

// Mode selects how an assignment is applied.
type Mode int

const (
	// ModeFull reconciles completely: indices bound but no longer required
	// are released before fills are matched. Used for replies answering the
	// newest outstanding request.
	ModeFull Mode = iota

	// ModeMerge upserts only indices the current window still requires and
	// never releases existing bindings. Used for superseded replies so their
	// partial progress is kept without evicting newer reconciliations.
	ModeMerge
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Config configures a Registry.
type Config struct {
	// MaxSlotsPerType is the optional capacity ceiling per pool.
	// Zero means unbounded growth (up to the required high-water mark).
	MaxSlotsPerType int

	// Binder receives RebindNotifications. May be nil (no notifications).
	Binder types.SlotBinder

	// Recycle picks which free slot to reuse (default: policy.OldestIdle).
	Recycle types.RecyclePolicy

	// Overflow picks which indices stay bound under a capacity ceiling
	// (default: policy.NearestCenter).
	Overflow types.OverflowPolicy

	// Logger for reconciliation diagnostics (default: no-op).
	Logger types.Logger

	// Metrics collector (default: no-op).
	Metrics types.RegistryMetrics

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// ApplyOptions parameterizes one reconciliation pass.
type ApplyOptions struct {
	// Mode selects full reconciliation or stale-reply merge.
	Mode Mode

	// Window is the current required window, used by the overflow policy.
	Window types.VisibleWindow

	// ItemCount is the current item count n; indices outside [0, n) drop the
	// whole assignment.
	ItemCount int

	// Required resolves an index to its currently required TypeKey.
	// When nil, the requirement is derived from the assignment itself.
	Required func(index int) (types.TypeKey, bool)
}

// Shortfall describes a pool that hit its capacity ceiling during a pass.
type Shortfall struct {
	// Requested is how many still-required indices the assignment asked the
	// pool to cover.
	Requested int

	// Bound is how many slots actually cover them.
	Bound int
}

// Result summarizes one reconciliation pass.
type Result struct {
	// Rebinds is the number of slots rebound (and notifications emitted).
	Rebinds int

	// Noops is the number of indices already correctly bound.
	Noops int

	// Released is the number of slots freed during the release phase.
	Released int

	// Grown is the number of slots newly constructed.
	Grown int

	// Skipped is the number of assignment indices dropped because the
	// current window no longer requires them.
	Skipped int

	// Replayed is true when the assignment was a byte-identical replay of
	// the previous one and reconciliation short-circuited.
	Replayed bool

	// Shortfalls lists pools that hit their capacity ceiling.
	Shortfalls map[types.TypeKey]Shortfall
}

// Registry owns one pool per TypeKey and runs reconciliation.
//
// Invariants:
//   - An index is bound by at most one slot registry-wide.
//   - Pool capacity is monotonic within a session (grows to the high-water
//     mark, shrinks only through PruneIdle or Reset).
//
// Not safe for concurrent use: the registry is mutated exclusively by the
// presentation actor's run loop.
type Registry struct {
	pools      map[types.TypeKey]*pool
	indexOwner map[int]*slot

	nextSlotID  uint64
	nextIdleSeq uint64

	maxSlotsPerType int
	binder          types.SlotBinder
	recycle         types.RecyclePolicy
	overflow        types.OverflowPolicy
	logger          types.Logger
	metrics         types.RegistryMetrics
	now             func() time.Time

	lastDigest uint64
	lastMode   Mode
	hasDigest  bool
}

// NewRegistry creates a new empty registry.
//
// Parameters:
//   - cfg: Registry configuration (nil fields get defaults)
//
// Returns:
//   - *Registry: Initialized registry with no pools
func NewRegistry(cfg *Config) *Registry {
	if cfg == nil {
		cfg = &Config{}
	}

	r := &Registry{
		pools:           make(map[types.TypeKey]*pool),
		indexOwner:      make(map[int]*slot),
		maxSlotsPerType: cfg.MaxSlotsPerType,
		binder:          cfg.Binder,
		recycle:         cfg.Recycle,
		overflow:        cfg.Overflow,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		now:             cfg.Clock,
	}
	if r.recycle == nil {
		r.recycle = policy.NewOldestIdle()
	}
	if r.overflow == nil {
		r.overflow = policy.NewNearestCenter()
	}
	if r.logger == nil {
		r.logger = logger.NewNop()
	}
	if r.metrics == nil {
		r.metrics = metrics.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}

	return r
}

// Apply reconciles an assignment against the current bindings.
//
// The pass is synchronous and runs to completion; it is the only place pool
// state mutates. Binder errors are logged, never propagated: a failed content
// bind degrades to stale content in that slot, not a failed pass.
//
// Parameters:
//   - ctx: Context forwarded to the binder
//   - assignment: The PoolAssignment to apply
//   - opts: Mode, window, item count and requirement resolver
//
// Returns:
//   - Result: Mutation summary for logging/metrics
//   - error: ErrInvalidIndex if any index falls outside [0, ItemCount);
//     the assignment is dropped without mutation
func (r *Registry) Apply(ctx context.Context, assignment types.PoolAssignment, opts ApplyOptions) (Result, error) {
	start := r.now()
	res := Result{}

	if err := r.validate(assignment, opts.ItemCount); err != nil {
		r.metrics.RecordInvalidAssignment()

		return res, err
	}

	d := digest.Assignment(assignment)
	if r.hasDigest && d == r.lastDigest && opts.Mode == r.lastMode {
		// Byte-identical replay of the previous assignment: bindings already
		// match, so this collapses to a single no-op pass.
		r.metrics.RecordAssignmentReplayed()
		res.Replayed = true
		res.Noops = assignment.IndexCount()
		r.metrics.RecordNoopBindings(res.Noops)

		return res, nil
	}

	required := opts.Required
	if required == nil {
		required = requirementFromAssignment(assignment)
	}

	typeKeys := sortedTypeKeys(assignment)

	if opts.Mode == ModeFull {
		res.Released = r.releaseUnrequired(required)
	}

	now := r.now()
	for _, tk := range typeKeys {
		r.bindType(ctx, tk, assignment.Assignment[tk], opts, required, now, &res)
	}

	r.metrics.RecordNoopBindings(res.Noops)
	if opts.Mode == ModeMerge {
		r.metrics.RecordStaleMerge(res.Rebinds, res.Skipped)
		if res.Rebinds == 0 && res.Noops == 0 {
			r.logger.Debug("stale assignment contributed no bindings",
				"requestId", assignment.RequestID,
			)
		}
	}

	r.lastDigest = d
	r.lastMode = opts.Mode
	r.hasDigest = true
	r.metrics.RecordReconcileDuration(r.now().Sub(start).Seconds())

	return res, nil
}

// validate rejects assignments referencing indices outside [0, n).
func (r *Registry) validate(assignment types.PoolAssignment, n int) error {
	for tk, indices := range assignment.Assignment {
		for _, idx := range indices {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: index %d for type %q with %d items",
					types.ErrInvalidIndex, idx, tk, n)
			}
		}
	}

	return nil
}

// releaseUnrequired frees every slot whose bound index is no longer required
// (or is required under a different type). Pools are visited in sorted key
// order and indices ascending, so release stamps are deterministic.
func (r *Registry) releaseUnrequired(required func(int) (types.TypeKey, bool)) int {
	released := 0
	for _, tk := range sortedPoolKeys(r.pools) {
		p := r.pools[tk]
		for _, idx := range p.boundIndices() {
			needTk, ok := required(idx)
			if ok && needTk == p.typeKey {
				continue
			}
			r.releaseSlot(p, p.byIndex[idx])
			released++
		}
		r.metrics.SetPoolSize(tk, p.size())
	}

	return released
}

// bindType fills required indices for one type, in assignment order.
func (r *Registry) bindType(
	ctx context.Context,
	tk types.TypeKey,
	indices []int,
	opts ApplyOptions,
	required func(int) (types.TypeKey, bool),
	now time.Time,
	res *Result,
) {
	if len(indices) == 0 {
		return
	}

	p := r.ensurePool(tk)
	p.lastRequired = now

	noops := 0
	pending := make([]int, 0, len(indices))
	for _, idx := range indices {
		// Indices the current window no longer requires are dropped in both
		// modes; binding them would only grow pools past the high-water mark.
		needTk, ok := required(idx)
		if !ok || needTk != tk {
			res.Skipped++
			continue
		}
		if _, bound := p.byIndex[idx]; bound {
			noops++
			continue
		}
		pending = append(pending, idx)
	}
	res.Noops += noops

	selected := pending
	if avail := r.availableCapacity(p, len(pending)); avail < len(pending) {
		selected = r.overflow.SelectIndices(pending, opts.Window, avail)
		deficit := len(pending) - len(selected)
		r.metrics.RecordCapacityExceeded(tk, deficit)
		if res.Shortfalls == nil {
			res.Shortfalls = make(map[types.TypeKey]Shortfall)
		}
		res.Shortfalls[tk] = Shortfall{
			Requested: noops + len(pending),
			Bound:     noops + len(selected),
		}
		r.logger.Warn("pool capacity ceiling exceeded",
			"type", tk,
			"required", len(pending),
			"bound", len(selected),
			"ceiling", r.maxSlotsPerType,
		)
	}

	for _, idx := range selected {
		// Last-reconciled-wins across pools: an index claimed under a new
		// type evicts its previous owner first.
		if owner, ok := r.indexOwner[idx]; ok {
			r.releaseSlot(r.pools[owner.typeKey], owner)
			res.Released++
		}

		s, grew := r.acquireSlot(p)
		if grew {
			res.Grown++
		}
		r.bindSlot(ctx, p, s, idx)
		res.Rebinds++
	}
	r.metrics.SetPoolSize(tk, p.size())
}

// availableCapacity returns how many fills the pool can satisfy: free slots
// plus growth room under the ceiling. need caps the answer for the unbounded
// case.
func (r *Registry) availableCapacity(p *pool, need int) int {
	if r.maxSlotsPerType <= 0 {
		return need
	}

	room := r.maxSlotsPerType - p.size()
	if room < 0 {
		room = 0
	}

	return len(p.free) + room
}

// acquireSlot returns a slot ready for binding: a recycled free slot when one
// exists, otherwise a newly constructed one. Reports whether the pool grew.
func (r *Registry) acquireSlot(p *pool) (*slot, bool) {
	if len(p.free) > 0 {
		pick := r.recycle.PickSlot(p.freeInfos())
		if pick < 0 || pick >= len(p.free) {
			// Defective policy; fall back to FIFO head.
			pick = 0
		}

		return p.takeFree(pick), false
	}

	r.nextSlotID++
	s := &slot{
		id:         r.nextSlotID,
		typeKey:    p.typeKey,
		boundIndex: types.IndexNone,
	}
	p.slots = append(p.slots, s)
	r.metrics.RecordPoolGrowth(p.typeKey, p.size())
	r.logger.Debug("pool grew", "type", p.typeKey, "size", p.size(), "slotId", s.id)

	return s, true
}

// bindSlot points a slot at a new index, bumps its generation, and notifies
// the binder.
func (r *Registry) bindSlot(ctx context.Context, p *pool, s *slot, idx int) {
	s.boundIndex = idx
	s.generation++
	p.byIndex[idx] = s
	r.indexOwner[idx] = s
	r.metrics.RecordRebind(p.typeKey)

	if r.binder == nil {
		return
	}
	rebind := types.RebindNotification{
		TypeKey:    p.typeKey,
		SlotID:     s.id,
		Index:      idx,
		Generation: s.generation,
	}
	if err := r.binder.BindSlot(ctx, rebind); err != nil {
		r.logger.Warn("slot binder failed; slot keeps previous content",
			"type", p.typeKey,
			"slotId", s.id,
			"index", idx,
			"generation", s.generation,
			"error", err,
		)
	}
}

// releaseSlot frees a bound slot and stamps its release order.
func (r *Registry) releaseSlot(p *pool, s *slot) {
	delete(p.byIndex, s.boundIndex)
	delete(r.indexOwner, s.boundIndex)
	s.boundIndex = types.IndexNone
	r.nextIdleSeq++
	s.idleSeq = r.nextIdleSeq
	p.free = append(p.free, s)
}

func (r *Registry) ensurePool(tk types.TypeKey) *pool {
	p, ok := r.pools[tk]
	if !ok {
		p = newPool(tk, r.now())
		r.pools[tk] = p
	}

	return p
}

// Uncovered counts required (index, type) pairs that are unbound but still
// satisfiable — by a free slot, a reclaimable slot bound to a no-longer
// required index, or pool growth under the ceiling.
//
// Zero means no RangeRequest is needed: either everything is covered, or the
// remaining gap is a permanent capacity shortfall that re-requesting cannot
// fix (degraded mode).
//
// Parameters:
//   - required: Map from required index to its TypeKey
//
// Returns:
//   - int: Number of satisfiable uncovered pairs
func (r *Registry) Uncovered(required map[int]types.TypeKey) int {
	type demand struct {
		missing     int
		stillNeeded int
	}
	demands := make(map[types.TypeKey]*demand)
	for idx, tk := range required {
		d := demands[tk]
		if d == nil {
			d = &demand{}
			demands[tk] = d
		}
		if owner, ok := r.indexOwner[idx]; ok && owner.typeKey == tk {
			d.stillNeeded++
		} else {
			d.missing++
		}
	}

	uncovered := 0
	for tk, d := range demands {
		if d.missing == 0 {
			continue
		}
		if r.maxSlotsPerType <= 0 {
			uncovered += d.missing
			continue
		}

		p := r.pools[tk]
		size := 0
		if p != nil {
			size = p.size()
		}
		room := r.maxSlotsPerType - size
		if room < 0 {
			room = 0
		}
		// Slots not serving a still-required index are reclaimable by a full
		// reconcile.
		reclaimable := size - d.stillNeeded + room
		if reclaimable > d.missing {
			reclaimable = d.missing
		}
		if reclaimable > 0 {
			uncovered += reclaimable
		}
	}

	return uncovered
}

// Covers reports whether index idx is bound by a slot of the given type.
func (r *Registry) Covers(idx int, tk types.TypeKey) bool {
	owner, ok := r.indexOwner[idx]

	return ok && owner.typeKey == tk
}

// SlotsOf returns snapshots of every slot in the pool for tk, in creation
// order. Returns nil when no pool exists for the type.
func (r *Registry) SlotsOf(tk types.TypeKey) []types.SlotInfo {
	p, ok := r.pools[tk]
	if !ok {
		return nil
	}

	out := make([]types.SlotInfo, len(p.slots))
	for i, s := range p.slots {
		out[i] = s.info()
	}

	return out
}

// PoolSize returns the slot count of the pool for tk (0 when absent).
func (r *Registry) PoolSize(tk types.TypeKey) int {
	p, ok := r.pools[tk]
	if !ok {
		return 0
	}

	return p.size()
}

// Types returns every TypeKey with a live pool, sorted.
func (r *Registry) Types() []types.TypeKey {
	return sortedPoolKeys(r.pools)
}

// PruneIdle tears down pools whose type has had zero required capacity for at
// least maxIdle. Bound pools are never pruned.
//
// This is the policy hook for reclaiming pools of types that scrolled out of
// the data set entirely (a template no longer present).
//
// Parameters:
//   - maxIdle: Minimum idle duration before a pool is torn down
//
// Returns:
//   - []types.TypeKey: Pruned types, sorted
func (r *Registry) PruneIdle(maxIdle time.Duration) []types.TypeKey {
	now := r.now()
	var pruned []types.TypeKey
	for _, tk := range sortedPoolKeys(r.pools) {
		p := r.pools[tk]
		if len(p.byIndex) > 0 {
			continue
		}
		if now.Sub(p.lastRequired) < maxIdle {
			continue
		}
		delete(r.pools, tk)
		r.metrics.SetPoolSize(tk, 0)
		r.logger.Info("pruned idle pool", "type", tk, "slots", p.size())
		pruned = append(pruned, tk)
	}
	if pruned != nil {
		// Pool teardown invalidates the replay digest.
		r.hasDigest = false
	}

	return pruned
}

// Reset releases every slot and drops all pools. Called on unmount.
func (r *Registry) Reset() {
	for tk := range r.pools {
		r.metrics.SetPoolSize(tk, 0)
	}
	r.pools = make(map[types.TypeKey]*pool)
	r.indexOwner = make(map[int]*slot)
	r.hasDigest = false
}

// requirementFromAssignment derives the requirement resolver from the
// assignment itself, for standalone registry use.
func requirementFromAssignment(assignment types.PoolAssignment) func(int) (types.TypeKey, bool) {
	byIndex := make(map[int]types.TypeKey, assignment.IndexCount())
	for tk, indices := range assignment.Assignment {
		for _, idx := range indices {
			byIndex[idx] = tk
		}
	}

	return func(idx int) (types.TypeKey, bool) {
		tk, ok := byIndex[idx]

		return tk, ok
	}
}

func sortedTypeKeys(assignment types.PoolAssignment) []types.TypeKey {
	keys := make([]types.TypeKey, 0, len(assignment.Assignment))
	for tk := range assignment.Assignment {
		keys = append(keys, tk)
	}
	slices.Sort(keys)

	return keys
}

func sortedPoolKeys(pools map[types.TypeKey]*pool) []types.TypeKey {
	keys := make([]types.TypeKey, 0, len(pools))
	for tk := range pools {
		keys = append(keys, tk)
	}
	slices.Sort(keys)

	return keys
}
