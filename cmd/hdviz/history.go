package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hypervector/hdviz/internal/history"
)

// DefaultHistoryLimit is the default number of artifacts listed.
const DefaultHistoryLimit = 20

var historyLimit int
var historyRun string

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", DefaultHistoryLimit, "Maximum artifacts to list (0 = all)")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "List only the artifacts of this run ID")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously written images and CSVs",
	Long: `List artifacts recorded in the history database, most recent first.

Each entry has the run that wrote it, its inputs, size and BLAKE2b-256 digest.

Examples:
  hdviz history --limit 5 --human
  hdviz history --run 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// HistoryResponse is the response for the history command.
type HistoryResponse struct {
	Artifacts []history.Artifact `json:"artifacts"`
	Count     int                `json:"count"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		exitWithError(ExitError, "opening history: %v", err)
	}
	defer db.Close()

	var artifacts []history.Artifact
	if historyRun != "" {
		artifacts, err = db.ByRun(historyRun)
	} else {
		artifacts, err = db.List(historyLimit)
	}
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if artifacts == nil {
		artifacts = []history.Artifact{}
	}

	if !humanOutput {
		return outputJSON(HistoryResponse{Artifacts: artifacts, Count: len(artifacts)})
	}

	if len(artifacts) == 0 {
		outputHuman("No artifacts recorded\n")
		return nil
	}
	for _, a := range artifacts {
		fmt.Printf("%s  %-10s %s\n", dimStyle.Render(a.CreatedAt.Local().Format("2006-01-02 15:04:05")), a.Kind, headerStyle.Render(a.Output))
		fmt.Printf("    %s  %s  run %s\n", formatBytes(a.Bytes), shortDigest(a.Digest), a.RunID)
		if len(a.Inputs) > 0 {
			fmt.Printf("    from %s\n", strings.Join(a.Inputs, ", "))
		}
	}
	return nil
}

// shortDigest returns the first 12 hex characters of a digest.
func shortDigest(d string) string {
	if len(d) <= 12 {
		return d
	}
	return d[:12]
}
