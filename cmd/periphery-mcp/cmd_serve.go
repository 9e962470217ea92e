package main

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"periphery-mcp/internal/logging"
	mcpserver "periphery-mcp/internal/mcp"
	"periphery-mcp/internal/periphery"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout. One process serves one client
session; clients discover periphery_setup, project_build and periphery_scan
via the standard tools/list request.

The server monitors for parent process death. When the client disconnects
or restarts, the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Boot-time check: refuse to serve tools that can never succeed.
	if _, err := exec.LookPath(cfg.PeripheryBin); err != nil {
		return fmt.Errorf("%s not found on PATH: %w", cfg.PeripheryBin, err)
	}

	srv := mcpserver.NewServer(periphery.NewCLITool(cfg), cfg.LogTailLines)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting periphery MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
