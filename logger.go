package vizsync

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/vizsync/schema"
)

// Logger wraps slog.Logger with vizsync-specific context.
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
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithObject adds the object type and id to the logger.
func (l *Logger) WithObject(kind schema.Kind, id int) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind.String(), "id", id),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, kind schema.Kind, id int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"kind", kind.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"kind", kind.String(),
			"id", id,
		)
	}
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(ctx context.Context, kind schema.Kind, id int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "update failed",
			"kind", kind.String(),
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"kind", kind.String(),
			"id", id,
		)
	}
}

// LogRender logs a frame.
func (l *Logger) LogRender(ctx context.Context, frame uint64, flushed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "render failed",
			"frame", frame,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "frame rendered",
			"frame", frame,
			"flushed", flushed,
		)
	}
}

// LogReplay logs the end of a replay.
func (l *Logger) LogReplay(ctx context.Context, frames, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "replay failed",
			"frames", frames,
			"entries", entries,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "replay completed",
			"frames", frames,
			"entries", entries,
		)
	}
}

// LogUpload logs the upload of a recording.
func (l *Logger) LogUpload(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "upload failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "recording uploaded",
			"name", name,
		)
	}
}
