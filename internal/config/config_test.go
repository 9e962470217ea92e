package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"periphery-mcp/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "periphery-mcp.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
periphery_bin = "periphery-nightly"
scan_timeout_sec = 60
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PeripheryBin != "periphery-nightly" {
		t.Errorf("PeripheryBin = %q", cfg.PeripheryBin)
	}
	if cfg.ScanTimeout() != 60*time.Second {
		t.Errorf("ScanTimeout = %v", cfg.ScanTimeout())
	}
	// Untouched fields keep their defaults.
	if cfg.XcodebuildBin != "xcodebuild" {
		t.Errorf("XcodebuildBin = %q", cfg.XcodebuildBin)
	}
	if cfg.LogTailLines != 200 {
		t.Errorf("LogTailLines = %d", cfg.LogTailLines)
	}
}

func TestLoad_RejectsBadFormat(t *testing.T) {
	path := writeConfig(t, `log_format = "xml"`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for log_format")
	}
}

func TestLoad_RejectsMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, `periphery_bin = [unclosed`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
