package geocoder

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with geocoder-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogSearch logs a forward search operation.
func (l *Logger) LogSearch(ctx context.Context, query string, results int, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"query", query,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"query", query,
			"results", results,
			"duration_ms", dur.Milliseconds(),
		)
	}
}

// LogReverse logs a reverse geocoding operation.
func (l *Logger) LogReverse(ctx context.Context, lat, lon float64, results int, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reverse failed",
			"lat", lat,
			"lon", lon,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "reverse completed",
			"lat", lat,
			"lon", lon,
			"results", results,
			"duration_ms", dur.Milliseconds(),
		)
	}
}

// LogShardSkipped logs an optional shard that failed and was dropped from
// the merge. Never escalated: optional shards must not fail a request.
func (l *Logger) LogShardSkipped(ctx context.Context, shardID string, err error) {
	l.WarnContext(ctx, "optional shard skipped",
		"shard", shardID,
		"error", err,
	)
}
