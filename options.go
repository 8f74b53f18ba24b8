package recycler

// Option configures a Coordinator with optional dependencies.
type Option func(*coordinatorOptions)

// coordinatorOptions holds optional Coordinator configuration.
type coordinatorOptions struct {
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
	recycle  RecyclePolicy
	overflow OverflowPolicy
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	hooks := &recycler.Hooks{
//	    OnWindowChanged: func(ctx context.Context, old, new recycler.VisibleWindow) {
//	        log.Printf("window %v -> %v", old, new)
//	    },
//	}
//	coord, err := recycler.New(&cfg, src, geo, tr, binder, recycler.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *coordinatorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer)
//	coord, err := recycler.New(&cfg, src, geo, tr, binder, recycler.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *coordinatorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with slog via logging.NewSlog)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	coord, err := recycler.New(&cfg, src, geo, tr, binder,
//	    recycler.WithLogger(logging.NewSlogDefault()))
func WithLogger(logger Logger) Option {
	return func(o *coordinatorOptions) {
		o.logger = logger
	}
}

// WithRecyclePolicy sets the policy picking which free slot to reuse.
// Default: policy.NewOldestIdle().
//
// Parameters:
//   - p: RecyclePolicy implementation
//
// Returns:
//   - Option: Functional option for New
func WithRecyclePolicy(p RecyclePolicy) Option {
	return func(o *coordinatorOptions) {
		o.recycle = p
	}
}

// WithOverflowPolicy sets the policy choosing which indices stay bound when a
// pool hits its capacity ceiling. Default: policy.NewNearestCenter().
//
// Parameters:
//   - p: OverflowPolicy implementation
//
// Returns:
//   - Option: Functional option for New
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(o *coordinatorOptions) {
		o.overflow = p
	}
}
