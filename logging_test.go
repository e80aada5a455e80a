package statequeue

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	q := New(1, WithLogger[int](logger))
	if err := q.AddSource(NewMapSource(0, func(v int) int { return v + 1 })); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := q.Update(); err != nil {
		t.Fatalf("update: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "statequeue resolved") || !strings.Contains(out, "changed=true") {
		t.Fatalf("unexpected debug output %q", out)
	}

	buf.Reset()
	logger.LogEvaluation(EvaluatorLogEvent{Engine: "expr", Expr: "value", Scope: "user", Err: errors.New("boom")})
	out = buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "engine=expr") || !strings.Contains(out, "boom") {
		t.Fatalf("unexpected error output %q", out)
	}
}

func TestNilLoggerFallsBack(t *testing.T) {
	if NewSlogLogger(nil) == nil {
		t.Fatalf("expected slog default fallback")
	}
	q := New(0, WithLogger[int](nil))
	if err := q.SetDefault(1); err != nil {
		t.Fatalf("set default: %v", err)
	}
}
