package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"periphery-mcp/internal/logging"
)

func TestInit_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(slog.LevelInfo, "text", &buf)

	logging.New("runner").Info("spawned", "pid", 42)

	out := buf.String()
	if !strings.Contains(out, "component=runner") {
		t.Errorf("expected component attribute, got: %s", out)
	}
	if !strings.Contains(out, "pid=42") {
		t.Errorf("expected pid attribute, got: %s", out)
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(slog.LevelInfo, "json", &buf)

	logging.New("dispatch").Warn("slow scan")

	out := buf.String()
	if !strings.Contains(out, `"component":"dispatch"`) {
		t.Errorf("expected JSON component field, got: %s", out)
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(slog.LevelWarn, "text", &buf)

	logging.New("x").Debug("hidden")
	logging.New("x").Info("also hidden")

	if buf.Len() != 0 {
		t.Errorf("expected below-level records to be dropped, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, c := range cases {
		got, err := logging.ParseLevel(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", c.in, err, c.wantErr)
			continue
		}
		if !c.wantErr && got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
