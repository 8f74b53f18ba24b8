package recycler

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// Timing Configuration Model
// ============================================================================
//
// The coordinator uses two timing layers for predictable update behavior:
//
// ┌─────────────────────────────────────────────────────────────────────────┐
// │ LAYER 1: Request latency - how long we wait for the content actor      │
// ├─────────────────────────────────────────────────────────────────────────┤
// │ • RequestTimeout: 1s (configurable)                                    │
// │   - A RangeRequest unanswered for this long is re-issued under a       │
// │     fresh id; the old reply, if it ever arrives, merges as stale       │
// └─────────────────────────────────────────────────────────────────────────┘
//
// ┌─────────────────────────────────────────────────────────────────────────┐
// │ LAYER 2: Reclamation - how long unused pools linger                    │
// ├─────────────────────────────────────────────────────────────────────────┤
// │ • IdleTypeTTL: 0 = never (configurable)                                │
// │   - A pool whose type has had zero required capacity for this long     │
// │     is torn down on the next sweep                                     │
// └─────────────────────────────────────────────────────────────────────────┘
//
// Scroll events themselves are not timed: the newest state wins immediately
// and intermediate states are coalesced away.
//
// ============================================================================

// Config is the configuration for the Coordinator.
//
// All duration fields accept standard Go duration strings like "500ms", "5s".
type Config struct {
	// RenderAheadBefore is how many extra items to keep bound above the
	// visible span. Zero is valid (no look-behind).
	RenderAheadBefore int `yaml:"renderAheadBefore"`

	// RenderAheadAfter is how many extra items to keep bound below the
	// visible span. Zero is valid (no look-ahead).
	RenderAheadAfter int `yaml:"renderAheadAfter"`

	// RequestTimeout is how long an outstanding RangeRequest may stay
	// unanswered before it is re-issued under a fresh id.
	// Recommended: 1 second.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// MaxSlotsPerType is the per-type pool capacity ceiling.
	// Zero means unbounded (pools grow to the high-water requirement).
	MaxSlotsPerType int `yaml:"maxSlotsPerType"`

	// IdleTypeTTL is how long a type may have zero required capacity before
	// its pool is torn down. Zero disables pruning.
	IdleTypeTTL time.Duration `yaml:"idleTypeTtl"`

	// OperationTimeout bounds each reconciliation pass, including binder
	// calls. Recommended: 5 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// ShutdownTimeout is the maximum time Stop waits for the run loop and
	// transport to wind down. Recommended: 5 seconds.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// SubscriberBufferSize is the buffer of each Subscribe channel. State
	// changes past a full buffer are dropped and counted, never blocked on.
	SubscriberBufferSize int `yaml:"subscriberBufferSize"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		RenderAheadBefore:    2,
		RenderAheadAfter:     2,
		RequestTimeout:       1 * time.Second,
		MaxSlotsPerType:      0, // Unbounded - pools grow to the high-water mark
		IdleTypeTTL:          0, // Never prune
		OperationTimeout:     5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		SubscriberBufferSize: 16,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Integer fields where zero is meaningful (RenderAheadBefore/After,
// MaxSlotsPerType, IdleTypeTTL) are left untouched.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.SubscriberBufferSize == 0 {
		cfg.SubscriberBufferSize = defaults.SubscriberBufferSize
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - RenderAheadBefore/After >= 0
//   - RequestTimeout > 0
//   - MaxSlotsPerType >= 0 (0 = unbounded)
//   - IdleTypeTTL >= 0 (0 = never prune)
//   - OperationTimeout > 0, ShutdownTimeout > 0
//   - RequestTimeout <= OperationTimeout (re-issue must fire before the pass
//     deadline would)
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.RenderAheadBefore < 0 || cfg.RenderAheadAfter < 0 {
		return fmt.Errorf("%w: render-ahead margins must be >= 0, got before=%d after=%d",
			ErrInvalidConfig, cfg.RenderAheadBefore, cfg.RenderAheadAfter)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("%w: RequestTimeout must be > 0, got %v", ErrInvalidConfig, cfg.RequestTimeout)
	}
	if cfg.MaxSlotsPerType < 0 {
		return fmt.Errorf("%w: MaxSlotsPerType must be >= 0, got %d", ErrInvalidConfig, cfg.MaxSlotsPerType)
	}
	if cfg.IdleTypeTTL < 0 {
		return fmt.Errorf("%w: IdleTypeTTL must be >= 0, got %v", ErrInvalidConfig, cfg.IdleTypeTTL)
	}
	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("%w: OperationTimeout must be > 0, got %v", ErrInvalidConfig, cfg.OperationTimeout)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: ShutdownTimeout must be > 0, got %v", ErrInvalidConfig, cfg.ShutdownTimeout)
	}
	if cfg.SubscriberBufferSize < 0 {
		return fmt.Errorf("%w: SubscriberBufferSize must be >= 0, got %d", ErrInvalidConfig, cfg.SubscriberBufferSize)
	}
	if cfg.RequestTimeout > cfg.OperationTimeout {
		return fmt.Errorf("%w: RequestTimeout (%v) must be <= OperationTimeout (%v)",
			ErrInvalidConfig, cfg.RequestTimeout, cfg.OperationTimeout)
	}

	return nil
}

// LoadConfig reads a YAML configuration file, applies defaults, and validates.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - Config: Loaded configuration
//   - error: File, decode, or validation failure
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-50x faster than production defaults to enable rapid
// iteration without sacrificing test coverage. Use DefaultConfig() for
// production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := recycler.TestConfig()
//	cfg.MaxSlotsPerType = 3
//	coord, err := recycler.New(&cfg, src, geo, tr, binder)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.RequestTimeout = 50 * time.Millisecond // 20x faster
	cfg.OperationTimeout = 1 * time.Second     // 5x faster
	cfg.ShutdownTimeout = 1 * time.Second      // 5x faster

	return cfg
}
