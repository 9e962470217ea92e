// Package config holds the server configuration: which binaries to invoke,
// how long each operation may run, and how diagnostics are emitted.
// Everything has a sane default so running without a config file works.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// PeripheryBin is the periphery executable name, resolved via PATH.
	PeripheryBin string `toml:"periphery_bin"`
	// XcodebuildBin is the build tool executable name.
	XcodebuildBin string `toml:"xcodebuild_bin"`

	SetupTimeoutSec int `toml:"setup_timeout_sec"`
	BuildTimeoutSec int `toml:"build_timeout_sec"`
	ScanTimeoutSec  int `toml:"scan_timeout_sec"`

	// LogTailLines caps the log_tail in every result payload.
	LogTailLines int `toml:"log_tail_lines"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the configuration used when no file is given.
// Timeouts match the wrapped tool's expected run times: setup and scan
// trigger full builds on large projects and need generous ceilings.
func Default() *Config {
	return &Config{
		PeripheryBin:    "periphery",
		XcodebuildBin:   "xcodebuild",
		SetupTimeoutSec: 600,
		BuildTimeoutSec: 900,
		ScanTimeoutSec:  1800,
		LogTailLines:    200,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads a TOML config from path. An empty path yields Default().
// Missing fields fall back to their defaults before validation.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	loaded := &Config{}
	if err := toml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	cfg.merge(loaded)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.PeripheryBin != "" {
		c.PeripheryBin = o.PeripheryBin
	}
	if o.XcodebuildBin != "" {
		c.XcodebuildBin = o.XcodebuildBin
	}
	if o.SetupTimeoutSec != 0 {
		c.SetupTimeoutSec = o.SetupTimeoutSec
	}
	if o.BuildTimeoutSec != 0 {
		c.BuildTimeoutSec = o.BuildTimeoutSec
	}
	if o.ScanTimeoutSec != 0 {
		c.ScanTimeoutSec = o.ScanTimeoutSec
	}
	if o.LogTailLines != 0 {
		c.LogTailLines = o.LogTailLines
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
}

func (c *Config) Validate() error {
	if c.PeripheryBin == "" {
		return fmt.Errorf("config missing periphery_bin")
	}
	if c.XcodebuildBin == "" {
		return fmt.Errorf("config missing xcodebuild_bin")
	}
	if c.SetupTimeoutSec <= 0 || c.BuildTimeoutSec <= 0 || c.ScanTimeoutSec <= 0 {
		return fmt.Errorf("config timeouts must be positive")
	}
	if c.LogTailLines <= 0 {
		return fmt.Errorf("config log_tail_lines must be positive")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func (c *Config) SetupTimeout() time.Duration {
	return time.Duration(c.SetupTimeoutSec) * time.Second
}

func (c *Config) BuildTimeout() time.Duration {
	return time.Duration(c.BuildTimeoutSec) * time.Second
}

func (c *Config) ScanTimeout() time.Duration {
	return time.Duration(c.ScanTimeoutSec) * time.Second
}
