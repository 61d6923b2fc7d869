package geocoder

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordSearch is called after each forward search.
	// results is the number of results returned, duration the total
	// time taken, err is nil if successful.
	RecordSearch(results int, duration time.Duration, err error)

	// RecordReverse is called after each reverse geocoding operation.
	RecordReverse(results int, duration time.Duration, err error)

	// RecordShardQuery is called per shard queried within a request.
	// optional marks shards whose failure degrades to skip.
	RecordShardQuery(shardID string, optional bool, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordReverse(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordShardQuery(string, bool, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	ReverseCount      atomic.Int64
	ReverseErrors     atomic.Int64
	ReverseTotalNanos atomic.Int64
	ShardQueryCount   atomic.Int64
	ShardQuerySkips   atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordReverse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReverse(results int, duration time.Duration, err error) {
	b.ReverseCount.Add(1)
	b.ReverseTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReverseErrors.Add(1)
	}
}

// RecordShardQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShardQuery(shardID string, optional bool, duration time.Duration, err error) {
	b.ShardQueryCount.Add(1)
	if err != nil && optional {
		b.ShardQuerySkips.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		ReverseCount:    b.ReverseCount.Load(),
		ReverseErrors:   b.ReverseErrors.Load(),
		ShardQueryCount: b.ShardQueryCount.Load(),
		ShardQuerySkips: b.ShardQuerySkips.Load(),
	}
	if stats.SearchCount > 0 {
		stats.SearchAvgNanos = b.SearchTotalNanos.Load() / stats.SearchCount
	}
	if stats.ReverseCount > 0 {
		stats.ReverseAvgNanos = b.ReverseTotalNanos.Load() / stats.ReverseCount
	}
	return stats
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount     int64
	SearchErrors    int64
	SearchAvgNanos  int64
	ReverseCount    int64
	ReverseErrors   int64
	ReverseAvgNanos int64
	ShardQueryCount int64
	ShardQuerySkips int64
}
