// Package logger wraps log/slog with the helpers used across the service.
package logger

import (
	"context"
	"log/slog"
	"os"

	pkgcontext "github.com/trueframework/true-board/internal/pkg/context"
)

// Logger embeds slog.Logger so call sites keep the slog API.
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout at the given level. Format is
// "json" or "text", anything else falls back to text.
func New(level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// Default returns a text logger at info level.
func Default() *Logger {
	return New("info", "text")
}

// WithContext tags records with the request id carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if id := pkgcontext.GetRequestID(ctx); id != "" {
		return &Logger{Logger: l.With("request_id", id)}
	}
	return l
}

// WithModel tags records with the model they concern.
func (l *Logger) WithModel(name string) *Logger {
	return &Logger{Logger: l.With("model", name)}
}

// WithError tags records with an error message.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err.Error())}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
