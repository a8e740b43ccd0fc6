package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextLogger(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Fatalf("expected no logger on a bare context")
	}

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger to round-trip through context")
	}

	FromContext(ctx).Info("hello", "user_id", 7)
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "hello" || line["user_id"] != float64(7) {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	if RequestIDFromContext(context.Background()) != "" {
		t.Fatalf("expected empty request id")
	}
	id := NewRequestID()
	if id == "" || id == NewRequestID() {
		t.Fatalf("expected unique non-empty ids")
	}
	ctx := ContextWithRequestID(context.Background(), id)
	if got := RequestIDFromContext(ctx); got != id {
		t.Fatalf("expected %q, got %q", id, got)
	}
}
