package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/smartcampus/smartcampus/internal/config"
)

func TestNewLoggerAddsTraceIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(testLoggerConfig(t), &buf)

	logger.InfoContext(ContextWithTraceID(context.Background(), "trace-7"), "ask_received")

	entry := decodeLogLine(t, &buf)
	if entry["trace_id"] != "trace-7" || entry["service"] != "smartcampus-api" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestNewLoggerDoesNotDuplicateExplicitTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(testLoggerConfig(t), &buf)

	logger.InfoContext(ContextWithTraceID(context.Background(), "ctx-trace"), "x", slog.String("trace_id", "explicit"))

	if got := bytes.Count(buf.Bytes(), []byte(`"trace_id"`)); got != 1 {
		t.Fatalf("trace_id appears %d times: %s", got, buf.String())
	}
}

func TestNewLoggerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(testLoggerConfig(t), &buf)

	logger.Warn("login_failed", slog.String("username", "alice"), slog.String("password", "hunter2"))

	entry := decodeLogLine(t, &buf)
	if entry["password"] != redacted || entry["username"] != "alice" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestTraceIDContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "abc123")
	if got := TraceIDFromContext(ctx); got != "abc123" {
		t.Fatalf("TraceIDFromContext() = %q", got)
	}
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Fatalf("TraceIDFromContext(empty) = %q", got)
	}
}

func testLoggerConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("smartcampus-api", func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	cfg.Observability.LogJSON = true
	cfg.Observability.LogLevel = slog.LevelDebug
	return cfg
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	return entry
}
