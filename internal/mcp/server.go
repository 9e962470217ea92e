// Package mcp is the dispatcher boundary: it registers the three Periphery
// tools with the MCP SDK, validates inputs before any subprocess spawns,
// and folds every classified failure into a structured result payload so
// nothing propagates to the transport as an unhandled fault.
package mcp

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"periphery-mcp/internal/logging"
	"periphery-mcp/internal/periphery"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Server wraps the MCP SDK server around a periphery.Tool. The tool set and
// its schemas are registered once here and stay static for the process
// lifetime; every call is otherwise stateless.
type Server struct {
	MCPServer *sdkmcp.Server
	Tool      periphery.Tool

	tailLimit int
}

// NewServer builds the server and registers the tool metadata. tailLimit
// caps the log_tail of every folded failure payload, matching the cap the
// tool applies to its own results.
func NewServer(tool periphery.Tool, tailLimit int) *Server {
	s := &Server{Tool: tool, tailLimit: tailLimit}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "periphery-mcp", Version: Version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "periphery_setup",
		Description: "Run Periphery's guided setup for a project. Creates .periphery.yml and returns the wizard transcript tail.",
	}, s.handleSetup)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "project_build",
		Description: "Verify the project builds with xcodebuild. Returns build_ok plus the failing log tail.",
	}, s.handleBuild)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "periphery_scan",
		Description: "Run a Periphery scan and return normalized unused-code issues. Requires a prior periphery_setup.",
	}, s.handleScan)
}

// --- Tool input types ---

type setupInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to the Xcode or Swift package project directory"`
}

type buildInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to the project directory containing the .xcodeproj"`
	Scheme      string `json:"scheme,omitempty" jsonschema:"build scheme; defaults to the project name"`
}

type scanInput struct {
	ProjectPath string   `json:"project_path" jsonschema:"path to the configured project directory"`
	ExtraArgs   []string `json:"extra_args,omitempty" jsonschema:"additional flags passed to periphery scan verbatim"`
}

// --- Tool handlers ---

func (s *Server) handleSetup(ctx context.Context, _ *sdkmcp.CallToolRequest, input setupInput) (*sdkmcp.CallToolResult, periphery.SetupResult, error) {
	logger := logging.New("dispatch")
	start := time.Now()

	dir, terr := periphery.ResolveDir(input.ProjectPath)
	if terr != nil {
		logger.Info("periphery_setup rejected", "project_path", input.ProjectPath, "code", terr.Code)
		return nil, s.setupFailure(terr), nil
	}

	res, err := s.Tool.Setup(ctx, dir)
	if err != nil {
		te := periphery.AsToolError(err)
		logger.Error("periphery_setup failed", "project", dir, "code", te.Code, "error", err, "elapsed", time.Since(start))
		return nil, s.setupFailure(te), nil
	}
	logger.Info("periphery_setup done", "project", dir, "success", res.Success, "elapsed", time.Since(start))
	out := *res
	if out.LogTail == nil {
		out.LogTail = []string{}
	}
	return nil, out, nil
}

func (s *Server) handleBuild(ctx context.Context, _ *sdkmcp.CallToolRequest, input buildInput) (*sdkmcp.CallToolResult, periphery.BuildResult, error) {
	logger := logging.New("dispatch")
	start := time.Now()

	dir, terr := periphery.ResolveDir(input.ProjectPath)
	if terr != nil {
		logger.Info("project_build rejected", "project_path", input.ProjectPath, "code", terr.Code)
		return nil, s.buildFailure(terr), nil
	}

	res, err := s.Tool.Build(ctx, dir, input.Scheme)
	if err != nil {
		te := periphery.AsToolError(err)
		logger.Error("project_build failed", "project", dir, "code", te.Code, "error", err, "elapsed", time.Since(start))
		return nil, s.buildFailure(te), nil
	}
	logger.Info("project_build done", "project", dir, "build_ok", res.BuildOK, "elapsed", time.Since(start))
	out := *res
	if out.LogTail == nil {
		out.LogTail = []string{}
	}
	return nil, out, nil
}

func (s *Server) handleScan(ctx context.Context, _ *sdkmcp.CallToolRequest, input scanInput) (*sdkmcp.CallToolResult, periphery.ScanResult, error) {
	logger := logging.New("dispatch")
	start := time.Now()

	dir, terr := periphery.ResolveDir(input.ProjectPath)
	if terr != nil {
		logger.Info("periphery_scan rejected", "project_path", input.ProjectPath, "code", terr.Code)
		return nil, s.scanFailure(terr), nil
	}

	res, err := s.Tool.Scan(ctx, dir, input.ExtraArgs)
	if err != nil {
		te := periphery.AsToolError(err)
		logger.Error("periphery_scan failed", "project", dir, "code", te.Code, "error", err, "elapsed", time.Since(start))
		return nil, s.scanFailure(te), nil
	}
	logger.Info("periphery_scan done", "project", dir, "build_ok", res.BuildOK, "issues", len(res.Issues), "elapsed", time.Since(start))
	out := *res
	if out.Issues == nil {
		out.Issues = []periphery.Issue{}
	}
	return nil, out, nil
}

// --- Failure folding ---
// Result payloads are always fully populated; a classified error becomes a
// failed result in the shape the client expects for that tool.

func (s *Server) foldTail(te *periphery.ToolError) []string {
	tail := append([]string{}, te.LogTail...)
	tail = append(tail, "Error: "+te.Error())
	return periphery.CapLines(tail, s.tailLimit)
}

func (s *Server) setupFailure(te *periphery.ToolError) periphery.SetupResult {
	return periphery.SetupResult{Success: false, LogTail: s.foldTail(te)}
}

func (s *Server) buildFailure(te *periphery.ToolError) periphery.BuildResult {
	return periphery.BuildResult{BuildOK: false, LogTail: s.foldTail(te)}
}

func (s *Server) scanFailure(te *periphery.ToolError) periphery.ScanResult {
	return periphery.ScanResult{
		BuildOK:    false,
		Issues:     []periphery.Issue{},
		BuildError: te.Detail(),
	}
}
