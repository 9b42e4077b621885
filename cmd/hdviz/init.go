package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hypervector/hdviz/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default hdviz.yml",
	Long: `Write the default configuration to ./hdviz.yml, or to --config if given.

An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigFile
	if configPath != "" {
		path = config.ExpandPath(configPath)
	}

	if _, err := os.Stat(path); err == nil {
		exitWithError(ExitError, "%s already exists", path)
	}

	if err := config.Default().Save(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Created %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "created", Path: path})
}
