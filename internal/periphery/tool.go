package periphery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"periphery-mcp/internal/config"
	"periphery-mcp/internal/execx"
	"periphery-mcp/internal/logging"
)

// CLITool runs the real periphery and xcodebuild binaries. Both runner
// dependencies are interfaces so tests can substitute recording fakes.
type CLITool struct {
	Runner      execx.Runner
	Interactive execx.InteractiveRunner
	Config      *config.Config
}

var _ Tool = (*CLITool)(nil)

func NewCLITool(cfg *config.Config) *CLITool {
	return &CLITool{
		Runner:      execx.ExecRunner{},
		Interactive: execx.PTYRunner{},
		Config:      cfg,
	}
}

// ResolveDir expands and absolutizes a project path, requiring an existing
// directory. All three operations validate through here before any spawn.
func ResolveDir(path string) (string, *ToolError) {
	if strings.TrimSpace(path) == "" {
		return "", Errorf(CodeInvalidPath, "project_path is required")
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", Errorf(CodeInvalidPath, "cannot resolve project path %q: %v", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", Errorf(CodeInvalidPath, "project path does not exist: %s", abs)
	}
	if !info.IsDir() {
		return "", Errorf(CodeInvalidPath, "project path is not a directory: %s", abs)
	}
	return abs, nil
}

// Setup runs Periphery's guided configuration for the project. An existing
// .periphery.yml short-circuits; SPM packages get a minimal config written
// directly; Xcode projects go through the interactive wizard on a pty.
func (t *CLITool) Setup(ctx context.Context, projectPath string) (*SetupResult, error) {
	logger := logging.New("setup")
	dir, terr := ResolveDir(projectPath)
	if terr != nil {
		return nil, terr
	}
	logger.Info("setup requested", "project", dir)

	cfgPath := filepath.Join(dir, ConfigFileName)
	if content, err := os.ReadFile(cfgPath); err == nil {
		yml := string(content)
		return &SetupResult{
			Success: true,
			YML:     &yml,
			LogTail: []string{"Configuration file already exists"},
		}, nil
	}

	flavor, projectFile := detectProject(dir)
	switch flavor {
	case projectSPM:
		return t.setupSPM(ctx, dir)
	case projectNone:
		return &SetupResult{
			Success: false,
			LogTail: []string{"Error: no Xcode project, workspace, or Package.swift found in " + dir},
		}, nil
	}

	logger.Info("running setup wizard", "project_file", projectFile)
	res, err := t.Interactive.RunInteractive(ctx, execx.Spec{
		Command: t.Config.PeripheryBin,
		Args:    []string{"scan", "--setup"},
		Dir:     dir,
		Timeout: t.Config.SetupTimeout(),
	}, setupScript())
	if err != nil {
		return nil, t.classifyRunErr(err, t.Config.PeripheryBin)
	}

	tail := LogTail(res.Stdout, t.Config.LogTailLines)
	out := &SetupResult{LogTail: tail}
	if res.FallbackUsed > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"%d wizard prompt(s) were not recognized and answered with the default; review %s before trusting scan results",
			res.FallbackUsed, ConfigFileName))
	}
	if res.TimedOut {
		out.LogTail = append(out.LogTail, fmt.Sprintf("Error: setup wizard timed out after %s", t.Config.SetupTimeout()))
		out.LogTail = CapLines(out.LogTail, t.Config.LogTailLines)
		return out, nil
	}

	out.Success = res.ExitCode != nil && *res.ExitCode == 0
	if content, err := os.ReadFile(cfgPath); err == nil {
		yml := string(content)
		out.YML = &yml
		if warn := checkConfigYAML(content); warn != "" {
			out.Warnings = append(out.Warnings, warn)
		}
	} else if out.Success {
		out.Warnings = append(out.Warnings, "wizard exited cleanly but wrote no "+ConfigFileName)
	}
	logger.Info("setup finished", "success", out.Success, "elapsed", res.Elapsed, "fallback_used", res.FallbackUsed)
	return out, nil
}

// setupSPM writes the minimal config a Swift package needs and validates it
// with a quick scan.
func (t *CLITool) setupSPM(ctx context.Context, dir string) (*SetupResult, error) {
	logger := logging.New("setup")
	logger.Info("swift package detected, writing minimal config", "project", dir)

	const content = "format: xcode\n"
	cfgPath := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		return &SetupResult{
			Success: false,
			LogTail: []string{"Error writing " + ConfigFileName + ": " + err.Error()},
		}, nil
	}

	res, err := t.Runner.Run(ctx, execx.Spec{
		Command: t.Config.PeripheryBin,
		Args:    []string{"scan", "--quiet", "--format", "json"},
		Dir:     dir,
		Timeout: t.Config.SetupTimeout(),
	})
	if err != nil {
		return nil, t.classifyRunErr(err, t.Config.PeripheryBin)
	}

	yml := content
	if res.TimedOut {
		return &SetupResult{
			YML: &yml,
			LogTail: []string{
				"Swift Package Manager project detected",
				fmt.Sprintf("Error: validation scan timed out after %s", t.Config.SetupTimeout()),
			},
		}, nil
	}
	if *res.ExitCode != 0 {
		tail := append([]string{"Swift Package Manager project detected"},
			append(LogTail(res.Combined(), t.Config.LogTailLines),
				fmt.Sprintf("Error: validation scan exited with code %d", *res.ExitCode))...)
		return &SetupResult{LogTail: CapLines(tail, t.Config.LogTailLines)}, nil
	}
	return &SetupResult{
		Success: true,
		YML:     &yml,
		LogTail: []string{
			"Swift Package Manager project detected",
			"Created basic configuration",
			"Configuration validated successfully",
		},
	}, nil
}

// Build runs the xcodebuild verification step. A non-zero exit is a result
// (build_ok=false with the log tail), not an error.
func (t *CLITool) Build(ctx context.Context, projectPath, scheme string) (*BuildResult, error) {
	logger := logging.New("build")
	dir, terr := ResolveDir(projectPath)
	if terr != nil {
		return nil, terr
	}

	projects, _ := filepath.Glob(filepath.Join(dir, "*.xcodeproj"))
	if len(projects) == 0 {
		return &BuildResult{
			BuildOK: false,
			LogTail: []string{"Error: no .xcodeproj file found in project directory"},
		}, nil
	}
	projectFile := projects[0]
	if scheme == "" {
		scheme = strings.TrimSuffix(filepath.Base(projectFile), ".xcodeproj")
	}
	logger.Info("build requested", "project", dir, "scheme", scheme)

	// Same build arguments Periphery itself uses, so a passing verification
	// means the subsequent scan's build phase will pass too.
	args := []string{
		"-project", projectFile,
		"-scheme", scheme,
		"-quiet",
		"build-for-testing",
		"CODE_SIGNING_ALLOWED=NO",
		"ENABLE_BITCODE=NO",
		"DEBUG_INFORMATION_FORMAT=dwarf",
		"COMPILER_INDEX_STORE_ENABLE=YES",
		"INDEX_ENABLE_DATA_STORE=YES",
	}
	res, err := t.Runner.Run(ctx, execx.Spec{
		Command: t.Config.XcodebuildBin,
		Args:    args,
		Dir:     dir,
		Timeout: t.Config.BuildTimeout(),
	})
	if err != nil {
		return nil, t.classifyRunErr(err, t.Config.XcodebuildBin)
	}

	if res.TimedOut {
		tail := LogTail(res.Combined(), t.Config.LogTailLines)
		tail = append(tail, fmt.Sprintf("Error: build timed out after %s", t.Config.BuildTimeout()))
		tail = CapLines(tail, t.Config.LogTailLines)
		logger.Warn("build timed out", "project", dir, "elapsed", res.Elapsed)
		return &BuildResult{BuildOK: false, LogTail: tail}, nil
	}
	if *res.ExitCode != 0 {
		tail := LogTail(res.Combined(), t.Config.LogTailLines)
		if len(tail) == 0 {
			tail = []string{fmt.Sprintf("xcodebuild exited with code %d", *res.ExitCode)}
		}
		logger.Info("build failed", "project", dir, "exit_code", *res.ExitCode, "elapsed", res.Elapsed)
		return &BuildResult{BuildOK: false, LogTail: tail}, nil
	}
	logger.Info("build succeeded", "project", dir, "elapsed", res.Elapsed)
	return &BuildResult{BuildOK: true, LogTail: []string{}}, nil
}

// Scan runs the analyzer and normalizes its JSON output. Configuration must
// exist: setup is a deliberate separate phase, so its absence is surfaced
// as configuration_missing rather than triggering an implicit setup.
func (t *CLITool) Scan(ctx context.Context, projectPath string, extraArgs []string) (*ScanResult, error) {
	logger := logging.New("scan")
	dir, terr := ResolveDir(projectPath)
	if terr != nil {
		return nil, terr
	}

	if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err != nil {
		logger.Info("scan refused, no configuration", "project", dir)
		return &ScanResult{
			BuildOK: false,
			Issues:  []Issue{},
			BuildError: (&ToolError{
				Code:    CodeConfigurationMissing,
				Summary: ConfigFileName + " not found in " + dir,
				Hint:    "run periphery_setup first",
			}).Detail(),
		}, nil
	}

	args := append([]string{"scan", "--format", "json", "--quiet"}, extraArgs...)
	logger.Info("scan requested", "project", dir, "extra_args", extraArgs)
	res, err := t.Runner.Run(ctx, execx.Spec{
		Command: t.Config.PeripheryBin,
		Args:    args,
		Dir:     dir,
		Timeout: t.Config.ScanTimeout(),
	})
	if err != nil {
		return nil, t.classifyRunErr(err, t.Config.PeripheryBin)
	}

	if res.TimedOut {
		logger.Warn("scan timed out", "project", dir, "elapsed", res.Elapsed)
		return &ScanResult{
			BuildOK: false,
			Issues:  []Issue{},
			BuildError: (&ToolError{
				Code:    CodeTimeout,
				Summary: fmt.Sprintf("scan timed out after %s", t.Config.ScanTimeout()),
				LogTail: LogTail(res.Combined(), t.Config.LogTailLines),
			}).Detail(),
		}, nil
	}
	if *res.ExitCode != 0 {
		logger.Info("scan failed", "project", dir, "exit_code", *res.ExitCode, "elapsed", res.Elapsed)
		return &ScanResult{
			BuildOK: false,
			Issues:  []Issue{},
			BuildError: (&ToolError{
				Code:     CodeBuildFailed,
				Summary:  summarize(res.Stderr),
				LogTail:  LogTail(res.Combined(), t.Config.LogTailLines),
				ExitCode: res.ExitCode,
			}).Detail(),
		}, nil
	}

	issues, raw, perr := ParseIssues([]byte(res.Stdout), t.Config.LogTailLines)
	if perr != nil {
		logger.Warn("scan output unparseable", "project", dir)
		return &ScanResult{
			BuildOK:    false,
			Issues:     []Issue{},
			BuildError: perr.Detail(),
		}, nil
	}
	logger.Info("scan finished", "project", dir, "issues", len(issues), "elapsed", res.Elapsed)
	return &ScanResult{
		BuildOK: true,
		Issues:  issues,
		RawJSON: raw,
	}, nil
}

type projectFlavor int

const (
	projectNone projectFlavor = iota
	projectXcode
	projectSPM
)

// detectProject prefers a workspace over a project over a bare package,
// mirroring how the wrapped tool resolves ambiguity.
func detectProject(dir string) (projectFlavor, string) {
	if m, _ := filepath.Glob(filepath.Join(dir, "*.xcworkspace")); len(m) > 0 {
		return projectXcode, m[0]
	}
	if m, _ := filepath.Glob(filepath.Join(dir, "*.xcodeproj")); len(m) > 0 {
		return projectXcode, m[0]
	}
	if _, err := os.Stat(filepath.Join(dir, "Package.swift")); err == nil {
		return projectSPM, filepath.Join(dir, "Package.swift")
	}
	return projectNone, ""
}

// checkConfigYAML sanity-checks the wizard's generated config; a warning
// string is returned when it does not parse as a YAML mapping.
func checkConfigYAML(content []byte) string {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return "generated " + ConfigFileName + " is not valid YAML: " + err.Error()
	}
	return ""
}

func (t *CLITool) classifyRunErr(err error, bin string) *ToolError {
	if errors.Is(err, exec.ErrNotFound) {
		return &ToolError{
			Code:    CodeToolNotFound,
			Summary: bin + " not found on PATH",
			Hint:    "install it (e.g. `brew install periphery`) or set the binary name in the config file",
		}
	}
	return &ToolError{Code: CodeInternal, Summary: err.Error()}
}
