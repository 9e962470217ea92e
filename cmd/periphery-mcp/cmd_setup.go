package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"periphery-mcp/internal/periphery"
)

var setupCmd = &cobra.Command{
	Use:   "setup <project-path>",
	Short: "Run Periphery's guided configuration for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tool := periphery.NewCLITool(cfg)

	res, err := tool.Setup(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, line := range res.LogTail {
		fmt.Println(line)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning: "+w)
	}
	if !res.Success {
		cmd.SilenceUsage = true
		return fmt.Errorf("setup failed")
	}
	if res.YML != nil {
		fmt.Printf("Configuration (%s):\n%s", periphery.ConfigFileName, *res.YML)
	}
	return nil
}
