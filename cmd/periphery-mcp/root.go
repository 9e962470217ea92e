package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"periphery-mcp/internal/config"
	"periphery-mcp/internal/logging"
	mcpserver "periphery-mcp/internal/mcp"
)

// version is set at build time via -ldflags.
var version = "dev"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "periphery-mcp",
	Short: "Expose Periphery dead-code analysis to MCP clients",
	Long: "periphery-mcp wraps the Periphery static analyzer behind an MCP stdio\n" +
		"server (serve) and a direct CLI (setup, build, scan). Diagnostics go to\n" +
		"stderr; stdout is reserved for protocol framing and command output.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to TOML config file (optional)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.Version = version
	mcpserver.Version = version
}

// loadConfig reads the TOML config (or defaults) and initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.Init(level, cfg.LogFormat)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
