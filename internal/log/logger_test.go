package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"unknown": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentGrouper, Output: &buf})
	logger.Info("hello", FieldJob, "fees")

	out := buf.String()
	if !strings.Contains(out, "component=grouper") || !strings.Contains(out, "job=fees") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	logger.WithComponent(ComponentStorage).Info("saved")
	if !strings.Contains(buf.String(), "component=storage") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: &buf}))

	sl.LogGroupCompleted(context.Background(), "fees", "cron", 12, 3, false)
	out := buf.String()
	for _, want := range []string{"rows=12", "groups=3", "trigger=cron", "cache_hit=false"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("bad"), ComponentSheets, OpRead, nil)
	if !strings.Contains(buf.String(), "error=bad") || !strings.Contains(buf.String(), "operation=read") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestContextCarriesLogger(t *testing.T) {
	logger := Discard().WithComponent(ComponentHTTP)
	ctx := NewContext(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Fatalf("expected stored logger, got %+v", got)
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger without context value")
	}
}
