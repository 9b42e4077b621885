package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hypervector/hdviz/internal/config"
	"github.com/hypervector/hdviz/internal/visualizer"
)

var runFailFast bool

func init() {
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop at the first failed request")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Render every output listed in the config",
	Long: `Render every output listed under "outputs" in hdviz.yml, in order.

When the config lists no outputs, one side-by-side pair is rendered per
configured variant. A failed request is reported and the run continues with
the next one; --fail-fast stops at the first failure instead. The command
exits with status 1 if any request failed.

Example:
  hdviz run --human`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

// RunResponse is the response for batch commands.
type RunResponse struct {
	RunID    string               `json:"run_id"`
	Outcomes []visualizer.Outcome `json:"outcomes"`
	Failed   int                  `json:"failed"`
	Skipped  int                  `json:"skipped"`
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	return runRequests(cfg, cfg.Requests(), runFailFast)
}

// runRequests renders requests, prints the outcomes and exits with
// ExitError when any request failed.
func runRequests(cfg *config.Config, requests []config.Output, failFast bool) error {
	v, closeHistory := newVisualizer(cfg)
	outcomes := v.Run(requests, failFast)
	closeHistory()

	resp := RunResponse{
		RunID:    v.RunID(),
		Outcomes: outcomes,
		Failed:   visualizer.Failed(outcomes),
		Skipped:  len(requests) - len(outcomes),
	}

	if humanOutput {
		printRunHuman(resp)
	} else if err := outputJSON(resp); err != nil {
		return err
	}

	if resp.Failed > 0 {
		os.Exit(ExitError)
	}
	return nil
}

func printRunHuman(resp RunResponse) {
	fmt.Println(headerStyle.Render("Run " + resp.RunID))
	for _, o := range resp.Outcomes {
		if o.OK() {
			fmt.Printf("  %s %-28s %s %s\n", successStyle.Render("✓"), o.Request.String(), o.Output,
				dimStyle.Render(formatDuration(o.Duration)))
		} else {
			fmt.Printf("  %s %-28s %s\n", errorStyle.Render("✗"), o.Request.String(), o.Error)
		}
	}
	fmt.Println()

	ok := len(resp.Outcomes) - resp.Failed
	summary := fmt.Sprintf("%d succeeded, %d failed", ok, resp.Failed)
	if resp.Skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", resp.Skipped)
	}
	if resp.Failed > 0 {
		fmt.Println(errorStyle.Render(summary))
	} else {
		fmt.Println(successStyle.Render(summary))
	}
}
