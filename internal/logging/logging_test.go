package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"orderexport/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetup_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup := logging.Setup(logging.Options{Level: "warn", Output: &buf})
	defer cleanup()

	logger.Info("export: skipped")
	logger.Warn("export: slow", "rows", 3)

	out := buf.String()
	if strings.Contains(out, "skipped") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "export: slow") || !strings.Contains(out, "rows=3") {
		t.Errorf("expected warn line, got %q", out)
	}
}

func TestDiscard(t *testing.T) {
	logging.Discard().Error("nothing")
}
