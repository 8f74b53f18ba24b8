package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/lelandrichardson/recycler/types"
)

func TestNopMetrics(t *testing.T) {
	var m types.MetricsCollector = NewNop()

	require.NotNil(t, m)

	// None of these should panic.
	m.RecordStateTransition(types.StateIdle, types.StateAwaitingReply, 0.1)
	m.RecordRequestIssued(10)
	m.RecordRequestTimeout()
	m.RecordRoundTrip(0.02)
	m.RecordScrollCoalesced()
	m.RecordStateChangeDropped()
	m.RecordRebind("a")
	m.RecordNoopBindings(5)
	m.RecordPoolGrowth("a", 6)
	m.SetPoolSize("a", 6)
	m.RecordStaleMerge(3, 7)
	m.RecordCapacityExceeded("a", 2)
	m.RecordAssignmentReplayed()
	m.RecordInvalidAssignment()
	m.RecordReconcileDuration(0.0004)
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	var m types.MetricsCollector = NewPrometheus(reg, "recycler_test")

	m.RecordStateTransition(types.StateIdle, types.StateAwaitingReply, 0.1)
	m.RecordRequestIssued(10)
	m.RecordRebind("a")
	m.RecordRebind("a")
	m.SetPoolSize("a", 6)
	m.RecordStaleMerge(3, 7)
	m.RecordReconcileDuration(0.0004)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["recycler_test_registry_rebinds_total"])
	require.True(t, names["recycler_test_registry_pool_slots"])
	require.True(t, names["recycler_test_coordinator_range_requests_total"])
}

func TestPrometheusCollector_SharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Two collectors on one registerer must not panic on duplicate
	// registration.
	a := NewPrometheus(reg, "shared")
	b := NewPrometheus(reg, "shared")

	a.RecordRebind("x")
	b.RecordRebind("y")
}
