package kernelscore

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with model-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithModel adds model shape fields to the logger.
func (l *Logger) WithModel(dictionarySize, supportVectors int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dictionary_size", dictionarySize, "support_vectors", supportVectors),
	}
}

// LogSave logs a save operation.
func (l *Logger) LogSave(ctx context.Context, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model save failed",
			"records", records,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "model saved",
			"records", records,
		)
	}
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, dictionarySize, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model load failed",
			"dictionary_size", dictionarySize,
			"records", records,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "model loaded",
			"dictionary_size", dictionarySize,
			"records", records,
		)
	}
}

// LogUpdate logs an online update.
func (l *Logger) LogUpdate(ctx context.Context, grad, learningRate float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "online update failed",
			"gradient", grad,
			"learning_rate", learningRate,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "online update applied",
			"gradient", grad,
			"learning_rate", learningRate,
		)
	}
}

// LogReplay logs a journal replay.
func (l *Logger) LogReplay(ctx context.Context, entriesReplayed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "journal replay failed",
			"entries_replayed", entriesReplayed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "journal replay completed",
			"entries_replayed", entriesReplayed,
		)
	}
}
