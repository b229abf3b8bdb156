package app

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", in, got, want)
		}
	}
}

func TestNewLogger_FormatSelection(t *testing.T) {
	jsonLog := NewLogger("info", "json")
	if _, ok := jsonLog.Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("format json: handler is %T, want *slog.JSONHandler", jsonLog.Handler())
	}

	prettyLog := NewLogger("info", "pretty")
	if _, ok := prettyLog.Handler().(*prettyHandler); !ok {
		t.Fatalf("format pretty: handler is %T, want *prettyHandler", prettyLog.Handler())
	}

	// Unknown formats fall back to JSON.
	fallback := NewLogger("info", "xml")
	if _, ok := fallback.Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("format xml: handler is %T, want *slog.JSONHandler", fallback.Handler())
	}
}

func TestNewLogger_LevelApplied(t *testing.T) {
	log := NewLogger("error", "json")

	ctx := context.Background()
	if log.Handler().Enabled(ctx, slog.LevelInfo) {
		t.Fatal("info should be disabled at level error")
	}
	if !log.Handler().Enabled(ctx, slog.LevelError) {
		t.Fatal("error should be enabled at level error")
	}
}
