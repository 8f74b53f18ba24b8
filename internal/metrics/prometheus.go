package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lelandrichardson/recycler/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stateTransitions  *prometheus.CounterVec
	requestsIssued    prometheus.Counter
	requestSpan       prometheus.Histogram
	requestTimeouts   prometheus.Counter
	roundTripSeconds  prometheus.Histogram
	scrollsCoalesced  prometheus.Counter
	stateDrops        prometheus.Counter
	rebinds           *prometheus.CounterVec
	noopBindings      prometheus.Counter
	poolGrowth        *prometheus.CounterVec
	poolSize          *prometheus.GaugeVec
	staleMergeIndices *prometheus.CounterVec
	capacityExceeded  *prometheus.CounterVec
	replays           prometheus.Counter
	invalid           prometheus.Counter
	reconcileSeconds  prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "recycler" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "recycler"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "state_transitions_total",
			Help:      "Total coordinator state transitions by from/to state.",
		}, []string{"from", "to"})

		p.requestsIssued = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "range_requests_total",
			Help:      "Total RangeRequests emitted to the content actor.",
		})

		p.requestSpan = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "range_request_span_items",
			Help:      "Number of indices covered per RangeRequest.",
			Buckets:   []float64{1, 5, 10, 20, 40, 80, 160},
		})

		p.requestTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "request_timeouts_total",
			Help:      "Total RangeRequests re-issued after the reply deadline elapsed.",
		})

		p.roundTripSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "request_roundtrip_seconds",
			Help:      "Request-to-reconcile latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		})

		p.scrollsCoalesced = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "scrolls_coalesced_total",
			Help:      "Scroll ticks collapsed into newer ones while the run loop was busy.",
		})

		p.stateDrops = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "state_changes_dropped_total",
			Help:      "State change notifications dropped due to slow subscribers.",
		})

		p.rebinds = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "rebinds_total",
			Help:      "Total slot rebinds by type key.",
		}, []string{"type"})

		p.noopBindings = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "noop_bindings_total",
			Help:      "Indices already correctly bound that generated zero work.",
		})

		p.poolGrowth = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "pool_growth_total",
			Help:      "Slot constructions by type key.",
		}, []string{"type"})

		p.poolSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "pool_slots",
			Help:      "Current slot count per pool.",
		}, []string{"type"})

		p.staleMergeIndices = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "stale_merge_indices_total",
			Help:      "Indices from stale assignments by merge outcome.",
		}, []string{"outcome"})

		p.capacityExceeded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "capacity_exceeded_total",
			Help:      "Required slots left unbound because a pool hit its ceiling.",
		}, []string{"type"})

		p.replays = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "assignments_replayed_total",
			Help:      "Byte-identical assignment replays short-circuited by digest.",
		})

		p.invalid = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "invalid_assignments_total",
			Help:      "Assignments dropped for referencing out-of-range indices.",
		})

		p.reconcileSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "registry",
			Name:      "reconcile_seconds",
			Help:      "Duration of one reconciliation pass in seconds.",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		})

		collectors := []prometheus.Collector{
			p.stateTransitions, p.requestsIssued, p.requestSpan, p.requestTimeouts,
			p.roundTripSeconds, p.scrollsCoalesced, p.stateDrops,
			p.rebinds, p.noopBindings, p.poolGrowth, p.poolSize,
			p.staleMergeIndices, p.capacityExceeded, p.replays, p.invalid,
			p.reconcileSeconds,
		}
		for _, c := range collectors {
			// AlreadyRegisteredError is tolerated so multiple coordinators can
			// share a registerer.
			_ = p.reg.Register(c)
		}
	})
}

// RecordStateTransition records a coordinator state transition.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State, _ /* duration */ float64) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordRequestIssued records an emitted RangeRequest.
func (p *PrometheusCollector) RecordRequestIssued(span int) {
	p.ensureRegistered()
	p.requestsIssued.Inc()
	p.requestSpan.Observe(float64(span))
}

// RecordRequestTimeout records a request re-issued after timeout.
func (p *PrometheusCollector) RecordRequestTimeout() {
	p.ensureRegistered()
	p.requestTimeouts.Inc()
}

// RecordRoundTrip records request-to-reconcile latency.
func (p *PrometheusCollector) RecordRoundTrip(duration float64) {
	p.ensureRegistered()
	p.roundTripSeconds.Observe(duration)
}

// RecordScrollCoalesced records a collapsed scroll tick.
func (p *PrometheusCollector) RecordScrollCoalesced() {
	p.ensureRegistered()
	p.scrollsCoalesced.Inc()
}

// RecordStateChangeDropped records a dropped state change notification.
func (p *PrometheusCollector) RecordStateChangeDropped() {
	p.ensureRegistered()
	p.stateDrops.Inc()
}

// RecordRebind records one slot rebind.
func (p *PrometheusCollector) RecordRebind(typeKey types.TypeKey) {
	p.ensureRegistered()
	p.rebinds.WithLabelValues(typeKey.String()).Inc()
}

// RecordNoopBindings records zero-work bindings.
func (p *PrometheusCollector) RecordNoopBindings(count int) {
	p.ensureRegistered()
	p.noopBindings.Add(float64(count))
}

// RecordPoolGrowth records a pool growing to a new size.
func (p *PrometheusCollector) RecordPoolGrowth(typeKey types.TypeKey, _ /* newSize */ int) {
	p.ensureRegistered()
	p.poolGrowth.WithLabelValues(typeKey.String()).Inc()
}

// SetPoolSize sets the current slot count for a pool.
func (p *PrometheusCollector) SetPoolSize(typeKey types.TypeKey, size int) {
	p.ensureRegistered()
	p.poolSize.WithLabelValues(typeKey.String()).Set(float64(size))
}

// RecordStaleMerge records a stale assignment merge outcome.
func (p *PrometheusCollector) RecordStaleMerge(applied, skipped int) {
	p.ensureRegistered()
	p.staleMergeIndices.WithLabelValues("applied").Add(float64(applied))
	p.staleMergeIndices.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordCapacityExceeded records unbound required slots.
func (p *PrometheusCollector) RecordCapacityExceeded(typeKey types.TypeKey, deficit int) {
	p.ensureRegistered()
	p.capacityExceeded.WithLabelValues(typeKey.String()).Add(float64(deficit))
}

// RecordAssignmentReplayed records a digest-detected replay.
func (p *PrometheusCollector) RecordAssignmentReplayed() {
	p.ensureRegistered()
	p.replays.Inc()
}

// RecordInvalidAssignment records a dropped invalid assignment.
func (p *PrometheusCollector) RecordInvalidAssignment() {
	p.ensureRegistered()
	p.invalid.Inc()
}

// RecordReconcileDuration records one reconciliation pass duration.
func (p *PrometheusCollector) RecordReconcileDuration(duration float64) {
	p.ensureRegistered()
	p.reconcileSeconds.Observe(duration)
}
