package metagrid

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with metagrid-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKey adds a metadata key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogSel logs a selection operation.
func (l *Logger) LogSel(ctx context.Context, keys []string, in, out int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "selection failed",
			"keys", keys,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "selection completed",
			"keys", keys,
			"in", in,
			"out", out,
		)
	}
}

// LogOrderBy logs an ordering operation.
func (l *Logger) LogOrderBy(ctx context.Context, keys []string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "order_by failed",
			"keys", keys,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "order_by completed",
			"keys", keys,
			"count", count,
		)
	}
}

// LogAvailability logs an availability build.
func (l *Logger) LogAvailability(ctx context.Context, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "availability build failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "availability built",
			"records", records,
		)
	}
}
