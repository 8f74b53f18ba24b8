// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/lelandrichardson/recycler/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// CoordinatorMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State, _ /* duration */ float64) {
	// No-op
}

// RecordRequestIssued discards the request issued metric.
func (n *NopMetrics) RecordRequestIssued(_ /* span */ int) {
	// No-op
}

// RecordRequestTimeout discards the request timeout metric.
func (n *NopMetrics) RecordRequestTimeout() {
	// No-op
}

// RecordRoundTrip discards the round-trip latency metric.
func (n *NopMetrics) RecordRoundTrip(_ /* duration */ float64) {
	// No-op
}

// RecordScrollCoalesced discards the coalesced scroll metric.
func (n *NopMetrics) RecordScrollCoalesced() {
	// No-op
}

// RecordStateChangeDropped discards the dropped state change metric.
func (n *NopMetrics) RecordStateChangeDropped() {
	// No-op
}

// RegistryMetrics implementation

// RecordRebind discards the rebind metric.
func (n *NopMetrics) RecordRebind(_ /* typeKey */ types.TypeKey) {
	// No-op
}

// RecordNoopBindings discards the no-op bindings metric.
func (n *NopMetrics) RecordNoopBindings(_ /* count */ int) {
	// No-op
}

// RecordPoolGrowth discards the pool growth metric.
func (n *NopMetrics) RecordPoolGrowth(_ /* typeKey */ types.TypeKey, _ /* newSize */ int) {
	// No-op
}

// SetPoolSize discards the pool size gauge.
func (n *NopMetrics) SetPoolSize(_ /* typeKey */ types.TypeKey, _ /* size */ int) {
	// No-op
}

// RecordStaleMerge discards the stale merge metric.
func (n *NopMetrics) RecordStaleMerge(_ /* applied */, _ /* skipped */ int) {
	// No-op
}

// RecordCapacityExceeded discards the capacity exceeded metric.
func (n *NopMetrics) RecordCapacityExceeded(_ /* typeKey */ types.TypeKey, _ /* deficit */ int) {
	// No-op
}

// RecordAssignmentReplayed discards the replayed assignment metric.
func (n *NopMetrics) RecordAssignmentReplayed() {
	// No-op
}

// RecordInvalidAssignment discards the invalid assignment metric.
func (n *NopMetrics) RecordInvalidAssignment() {
	// No-op
}

// RecordReconcileDuration discards the reconcile duration metric.
func (n *NopMetrics) RecordReconcileDuration(_ /* duration */ float64) {
	// No-op
}
