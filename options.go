package geocoder

import (
	"log/slog"

	"github.com/gersmaps/geocoder/query"
	"github.com/gersmaps/geocoder/shard"
)

// Limits of the caller-facing search contract.
const (
	DefaultLimit = 10
	MaxLimit     = 40
)

// DefaultCandidateLimit caps the reverse-geocoding candidate pool.
const DefaultCandidateLimit = 50

type options struct {
	logger         *Logger
	metrics        MetricsCollector
	ranking        query.RankingConfig
	maxQueryLength int
	candidateLimit int
	shardCacheSize int

	// Per-shard full-text queries fetch more rows than requested so
	// high-population places with middling BM25 scores survive the
	// population re-rank: max(limit × fetchMultiplier, fetchFloor).
	fetchMultiplier int
	fetchFloor      int
}

// Option configures Engine behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithRanking overrides the ranking constants. The defaults are
// empirically chosen; see query.RankingConfig.
func WithRanking(cfg query.RankingConfig) Option {
	return func(o *options) {
		o.ranking = cfg
	}
}

// WithMaxQueryLength overrides the maximum accepted query length.
func WithMaxQueryLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxQueryLength = n
		}
	}
}

// WithCandidateLimit overrides the reverse-geocoding candidate cap.
func WithCandidateLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.candidateLimit = n
		}
	}
}

// WithShardCacheSize bounds the number of concurrently open shard
// handles.
func WithShardCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shardCacheSize = n
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:          NoopLogger(),
		metrics:         NoopMetricsCollector{},
		ranking:         query.DefaultRankingConfig(),
		maxQueryLength:  query.DefaultMaxQueryLength,
		candidateLimit:  DefaultCandidateLimit,
		shardCacheSize:  shard.DefaultCacheSize,
		fetchMultiplier: 10,
		fetchFloor:      100,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
