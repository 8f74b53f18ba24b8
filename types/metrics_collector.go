package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from the coordinator's run loop and must not stall
// it; expensive exports belong behind buffered channels or async recorders.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	CoordinatorMetrics
	RegistryMetrics
}

// CoordinatorMetrics defines metrics for the coordinator state machine and
// the request/reply boundary.
type CoordinatorMetrics interface {
	// RecordStateTransition records a coordinator state transition event.
	//
	// Parameters:
	//   - from: Previous state
	//   - to: New state
	//   - duration: Time spent in the previous state, in seconds
	RecordStateTransition(from, to State, duration float64)

	// RecordRequestIssued records an emitted RangeRequest.
	//
	// Parameters:
	//   - span: Number of indices covered by the request
	RecordRequestIssued(span int)

	// RecordRequestTimeout records a RangeRequest that was re-issued after
	// its reply deadline elapsed.
	RecordRequestTimeout()

	// RecordRoundTrip records request-to-reconcile latency for the newest
	// outstanding request, in seconds.
	RecordRoundTrip(duration float64)

	// RecordScrollCoalesced records a scroll tick that was collapsed into a
	// newer one because the run loop was busy.
	RecordScrollCoalesced()

	// RecordStateChangeDropped records a state change notification dropped
	// due to a slow subscriber.
	RecordStateChangeDropped()
}

// RegistryMetrics defines metrics for pool reconciliation.
type RegistryMetrics interface {
	// RecordRebind records one slot rebind for the given type.
	RecordRebind(typeKey TypeKey)

	// RecordNoopBindings records indices that were already correctly bound
	// and generated zero work during a reconciliation pass.
	RecordNoopBindings(count int)

	// RecordPoolGrowth records a pool growing to a new high-water size.
	RecordPoolGrowth(typeKey TypeKey, newSize int)

	// SetPoolSize sets the current slot count for a pool (gauge metric).
	SetPoolSize(typeKey TypeKey, size int)

	// RecordStaleMerge records the outcome of merging a stale assignment:
	// how many indices were applied and how many were skipped as no longer
	// required.
	RecordStaleMerge(applied, skipped int)

	// RecordCapacityExceeded records required slots that could not be bound
	// because a pool reached its capacity ceiling.
	RecordCapacityExceeded(typeKey TypeKey, deficit int)

	// RecordAssignmentReplayed records a byte-identical assignment replay
	// detected by digest and short-circuited.
	RecordAssignmentReplayed()

	// RecordInvalidAssignment records an assignment dropped because it
	// referenced an index outside [0, n).
	RecordInvalidAssignment()

	// RecordReconcileDuration records the duration of one reconciliation
	// pass, in seconds.
	RecordReconcileDuration(duration float64)
}
