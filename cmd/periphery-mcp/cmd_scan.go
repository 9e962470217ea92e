package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"periphery-mcp/internal/format"
	"periphery-mcp/internal/periphery"
)

var scanFormat string

var scanCmd = &cobra.Command{
	Use:   "scan <project-path> [-- <periphery flags>...]",
	Short: "Scan the project for unreferenced code",
	Long: `Runs a Periphery scan and prints the normalized issues as a table.
Arguments after the project path are passed to periphery scan verbatim,
e.g.: periphery-mcp scan ~/src/App -- --retain-public`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "ascii", "Table format: ascii or markdown")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tool := periphery.NewCLITool(cfg)

	res, err := tool.Scan(cmd.Context(), args[0], args[1:])
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	if res.BuildError != nil {
		for _, line := range res.BuildError.LogTail {
			fmt.Println(line)
		}
		return fmt.Errorf("scan failed (%s): %s", res.BuildError.Code, res.BuildError.Summary)
	}
	if len(res.Issues) == 0 {
		fmt.Println("no unreferenced code found")
		return nil
	}
	fmt.Println(format.IssueTable(res.Issues, format.ParseMode(scanFormat)))
	fmt.Printf("%d unreferenced declaration(s)\n", len(res.Issues))
	return nil
}
