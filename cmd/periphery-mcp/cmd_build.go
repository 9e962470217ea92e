package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"periphery-mcp/internal/periphery"
)

var buildScheme string

var buildCmd = &cobra.Command{
	Use:   "build <project-path>",
	Short: "Verify the project builds with xcodebuild",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildScheme, "scheme", "", "Build scheme (defaults to the project name)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tool := periphery.NewCLITool(cfg)

	res, err := tool.Build(cmd.Context(), args[0], buildScheme)
	if err != nil {
		return err
	}
	if !res.BuildOK {
		for _, line := range res.LogTail {
			fmt.Println(line)
		}
		cmd.SilenceUsage = true
		return fmt.Errorf("build failed")
	}
	fmt.Println("build ok")
	return nil
}
