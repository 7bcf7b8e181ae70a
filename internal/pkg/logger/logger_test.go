package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	pkgcontext "github.com/trueframework/true-board/internal/pkg/context"
)

func bufferLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}, &buf
}

func TestNew(t *testing.T) {
	for _, tt := range []struct {
		level  string
		format string
	}{
		{"debug", "text"},
		{"info", "json"},
		{"error", "bogus"},
	} {
		l := New(tt.level, tt.format)
		if l == nil || l.Logger == nil {
			t.Fatalf("New(%q, %q) returned an unusable logger", tt.level, tt.format)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWithContext_AddsRequestID(t *testing.T) {
	l, buf := bufferLogger()

	ctx := pkgcontext.WithRequestID(context.Background(), "ab12cd34")
	l.WithContext(ctx).Info("handled")

	if out := buf.String(); !strings.Contains(out, `"request_id":"ab12cd34"`) {
		t.Errorf("output missing request id: %s", out)
	}
}

func TestWithContext_NoRequestID(t *testing.T) {
	l, buf := bufferLogger()

	l.WithContext(context.Background()).Info("handled")

	if out := buf.String(); strings.Contains(out, "request_id") {
		t.Errorf("output should not mention request_id: %s", out)
	}
}

func TestWithModel(t *testing.T) {
	l, buf := bufferLogger()

	l.WithModel("mistral-7b").Info("seeded")

	if out := buf.String(); !strings.Contains(out, `"model":"mistral-7b"`) {
		t.Errorf("output missing model attribute: %s", out)
	}
}

func TestWithError(t *testing.T) {
	l, buf := bufferLogger()

	l.WithError(context.DeadlineExceeded).Warn("remote save failed")

	if out := buf.String(); !strings.Contains(out, "deadline exceeded") {
		t.Errorf("output missing error attribute: %s", out)
	}
}
