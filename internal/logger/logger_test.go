package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := global
	global = New(&buf, "json", slog.LevelInfo)
	t.Cleanup(func() { global = prev })

	ctx := WithRequestID(context.Background(), "req-123")
	Info(ctx, "invoice issued", "number", "FAC-1")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["request_id"] != "req-123" {
		t.Fatalf("request_id = %v", line["request_id"])
	}
	if line["number"] != "FAC-1" {
		t.Fatalf("number = %v", line["number"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "text", parseLevel("warn"))
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("warn should be written")
	}
}

func TestRequestIDEmptyWithoutValue(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("RequestID = %q", got)
	}
}
