package litedb

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with litedb-specific context.
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

// WithTable adds a table field to the logger.
func (l *Logger) WithTable(tag string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", tag),
	}
}

// LogOpen logs opening or creating a table.
func (l *Logger) LogOpen(ctx context.Context, path string, size int, created bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table opened",
			"path", path,
			"size", size,
			"created", created,
		)
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, slot uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"slot", slot,
		)
	}
}

// LogBatchInsert logs a batch insert operation.
func (l *Logger) LogBatchInsert(ctx context.Context, count, inserted int, err error) {
	if err != nil {
		l.WarnContext(ctx, "batch insert completed with failures",
			"total", count,
			"inserted", inserted,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "batch insert completed",
			"count", count,
		)
	}
}

// LogRetrieve logs a retrieve operation.
func (l *Logger) LogRetrieve(ctx context.Context, predicates, matched int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "retrieve failed",
			"predicates", predicates,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "retrieve completed",
			"predicates", predicates,
			"matched", matched,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, predicates, deleted int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"predicates", predicates,
			"deleted", deleted,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"predicates", predicates,
			"deleted", deleted,
		)
	}
}

// LogCommit logs a commit.
func (l *Logger) LogCommit(ctx context.Context, pages int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "commit completed",
			"pages_written", pages,
		)
	}
}

// LogClear logs clearing a table.
func (l *Logger) LogClear(ctx context.Context, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clear failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "table cleared",
			"removed", removed,
		)
	}
}
