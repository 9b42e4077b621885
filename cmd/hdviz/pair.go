package main

import (
	"github.com/spf13/cobra"

	"github.com/hypervector/hdviz/internal/config"
)

var pairFailFast bool

func init() {
	pairCmd.Flags().BoolVar(&pairFailFast, "fail-fast", false, "Stop at the first dataset that fails")
	rootCmd.AddCommand(pairCmd)
}

var pairCmd = &cobra.Command{
	Use:   "pair [dataset...]",
	Short: "Render side-by-side heatmap pairs for HDV variants",
	Long: `Render the configured panels of each dataset side by side.

For dataset "binary" with the default config the inputs are
RESULTS/hdv_binary_objects.csv and RESULTS/hdv_binary_sentences.csv, and the
figure is written to ASSETS/binary_hdv_combined.png. With no arguments every
configured variant is rendered.

Examples:
  hdviz pair
  hdviz pair binary complex --human`,
	RunE: runPair,
}

func runPair(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	return runRequests(cfg, pairRequests(cfg, args), pairFailFast)
}

// pairRequests returns one pair request per dataset, defaulting to the configured variants.
func pairRequests(cfg *config.Config, datasets []string) []config.Output {
	if len(datasets) == 0 {
		datasets = cfg.Variants
	}
	reqs := make([]config.Output, len(datasets))
	for i, d := range datasets {
		reqs[i] = config.Output{Kind: config.KindPair, Dataset: d}
	}
	return reqs
}
