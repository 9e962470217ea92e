// Package periphery wraps the Periphery static-analysis CLI behind a small
// capability interface: configure a project, verify it builds, scan it for
// unreferenced code. The dispatcher and tests depend only on the Tool
// interface, never on the executable itself.
package periphery

import "context"

// ConfigFileName is the conventional Periphery config inside a project.
const ConfigFileName = ".periphery.yml"

// Issue is one unreferenced declaration reported by a scan.
type Issue struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier"`
	File       string `json:"file"`
	Line       int    `json:"line"`
}

// ErrorDetail is the structured error carried inside a result payload.
type ErrorDetail struct {
	Code     Code     `json:"code"`
	Summary  string   `json:"summary"`
	LogTail  []string `json:"log_tail"`
	ExitCode *int     `json:"exit_code"`
}

// SetupResult reports one run of the configuration wizard.
type SetupResult struct {
	Success  bool     `json:"success"`
	YML      *string  `json:"yml"`
	LogTail  []string `json:"log_tail"`
	Warnings []string `json:"warnings,omitempty"`
}

// BuildResult reports one build verification.
type BuildResult struct {
	BuildOK bool     `json:"build_ok"`
	LogTail []string `json:"log_tail"`
}

// ScanResult reports one scan. A failed scan carries BuildError and empty
// Issues; a clean scan carries Issues (possibly empty) and the raw parsed
// document.
type ScanResult struct {
	BuildOK    bool         `json:"build_ok"`
	Issues     []Issue      `json:"issues"`
	RawJSON    any          `json:"raw_json"`
	BuildError *ErrorDetail `json:"build_error"`
}

// Tool is the capability interface over the wrapped analyzer. A fake
// implementation stands in for the real CLI in dispatcher tests.
type Tool interface {
	Setup(ctx context.Context, projectPath string) (*SetupResult, error)
	Build(ctx context.Context, projectPath, scheme string) (*BuildResult, error)
	Scan(ctx context.Context, projectPath string, extraArgs []string) (*ScanResult, error)
}
