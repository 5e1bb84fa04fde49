package respcodec

import "github.com/raniellyferreira/redis-resp-codec/protocol"

// config holds the configuration for a Codec
type config struct {
	maxDepth int
	logger   Logger
	metrics  MetricsCollector
}

// defaultConfig returns a configuration with sensible defaults
func defaultConfig() *config {
	return &config{
		maxDepth: protocol.DefaultMaxDepth,
		logger:   nopLogger{},
	}
}

// Option represents a configuration option for a Codec
type Option func(*config) error

// WithMaxDepth sets the maximum array nesting depth accepted by Decode.
// Input nested deeper than this fails with protocol.ErrTooDeep.
//
// Example:
//
//	WithMaxDepth(16)
func WithMaxDepth(depth int) Option {
	return func(c *config) error {
		if depth < 1 {
			return ErrInvalidConfig
		}
		c.maxDepth = depth
		return nil
	}
}

// WithLogger sets a custom logger for the codec. Decoded and encoded
// message sizes are logged at debug level.
//
// Example:
//
//	WithLogger(respcodec.NewStdLogger())
func WithLogger(logger Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return ErrInvalidConfig
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics enables metrics collection with the provided collector
//
// Example:
//
//	WithMetrics(myMetricsCollector)
func WithMetrics(collector MetricsCollector) Option {
	return func(c *config) error {
		c.metrics = collector
		return nil
	}
}
