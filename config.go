package sessionview

import (
	"fmt"
	"time"
)

// Config is the configuration for the Controller.
//
// All duration fields accept standard Go duration strings like "500ms", "5s"
// when unmarshalled from YAML.
type Config struct {
	// SessionID identifies the session this controller aggregates state for.
	// Required.
	SessionID SessionID `yaml:"sessionId"`

	// DebounceWindow is the tap-quiescence duration before a coalesced
	// thumbs-up write fires. Taps arriving faster than this window keep
	// accumulating without triggering a write.
	// Recommended: 500 milliseconds.
	DebounceWindow time.Duration `yaml:"debounceWindow"`

	// MaxApplyCount caps the taps batched into a single write. Taps beyond
	// the cap still re-arm the debounce timer but do not grow the batch.
	// Recommended: 50.
	MaxApplyCount int `yaml:"maxApplyCount"`

	// OperationTimeout bounds each repository write (favorite toggle,
	// increment flush).
	// Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// SubscriberBuffer is the per-subscriber snapshot channel capacity. Slow
	// subscribers skip intermediate snapshots once their buffer is full;
	// they always receive a later one.
	// Recommended: 4.
	SubscriberBuffer int `yaml:"subscriberBuffer"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// The SessionID field has no default and must be set by the caller.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		DebounceWindow:   500 * time.Millisecond,
		MaxApplyCount:    50,
		OperationTimeout: 10 * time.Second,
		SubscriberBuffer: 4,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.DebounceWindow == 0 {
		cfg.DebounceWindow = defaults.DebounceWindow
	}
	if cfg.MaxApplyCount == 0 {
		cfg.MaxApplyCount = defaults.MaxApplyCount
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.SubscriberBuffer == 0 {
		cfg.SubscriberBuffer = defaults.SubscriberBuffer
	}
}

// Validate checks the configuration for invalid values.
//
// Returns:
//   - error: Describes the first invalid field, nil when the config is valid
func (c *Config) Validate() error {
	if c.SessionID == "" {
		return fmt.Errorf("%w: sessionId is required", ErrInvalidConfig)
	}
	if c.DebounceWindow < 0 {
		return fmt.Errorf("%w: debounceWindow must be positive", ErrInvalidConfig)
	}
	if c.MaxApplyCount < 0 {
		return fmt.Errorf("%w: maxApplyCount must be positive", ErrInvalidConfig)
	}
	if c.OperationTimeout < 0 {
		return fmt.Errorf("%w: operationTimeout must be positive", ErrInvalidConfig)
	}
	if c.SubscriberBuffer < 0 {
		return fmt.Errorf("%w: subscriberBuffer must be positive", ErrInvalidConfig)
	}

	return nil
}
