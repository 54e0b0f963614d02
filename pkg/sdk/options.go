package zenithds

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dataPath     string
	workers      int
	mode         string // "pattern" or "regex"
	pattern      string
	headerSample int

	logger       *slog.Logger
	engineLogger *zap.Logger
	metricsReg   prometheus.Registerer
}

// WithDataPath sets the directory that holds the collections.
// Default: ./data.
func WithDataPath(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dataPath = path
	})
}

// WithWorkers sets the number of file groups scanned in parallel per select.
// Default: 4.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithFilenamePattern evaluates every filename predicate against the text the
// pattern extracts from each file name: its first capture group, or the whole
// match when it has none. An empty pattern keeps the default date pattern,
// whose group excludes the leading underscore: sales_20240131.csv compares
// as "20240131", so write "__date >= 20240101", not "__date >= _20240101".
func WithFilenamePattern(pattern string) Option {
	return optionFunc(func(c *clientConfig) {
		c.mode = "pattern"
		c.pattern = pattern
	})
}

// WithFilenameRegex makes each filename predicate carry its own pattern:
// in `__<pattern> <op> <value>` the pattern is applied to the file name.
func WithFilenameRegex() Option {
	return optionFunc(func(c *clientConfig) {
		c.mode = "regex"
	})
}

// WithHeaderSample sets how many existing files Insert checks for header
// consistency. Default: 3.
func WithHeaderSample(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.headerSample = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithEngineLogger receives the engine's own logs (per-select group sizes,
// skipped files). Default: discarded.
func WithEngineLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.engineLogger = l
	})
}

// WithMetrics registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
