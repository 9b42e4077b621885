package main

import (
	"github.com/spf13/cobra"
)

var heatmapTitle string
var heatmapOutput string

func init() {
	heatmapCmd.Flags().StringVarP(&heatmapTitle, "title", "t", "", "Figure title (default: input file name)")
	heatmapCmd.Flags().StringVarP(&heatmapOutput, "output", "o", "", "Output PNG path (default: show in viewer)")
	rootCmd.AddCommand(heatmapCmd)
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <csv>",
	Short: "Render a labelled similarity matrix as an annotated heatmap",
	Long: `Render a labelled similarity matrix as a heatmap.

The CSV has a header row of column labels and an index column of row labels.
Every cell is annotated with its value. Without --output the image is opened
in the configured viewer.

Examples:
  hdviz heatmap RESULTS/hdv_real_objects.csv --output ASSETS/real_objects.png
  hdviz heatmap RESULTS/language_similarity.csv --title "Language similarity"`,
	Args: cobra.ExactArgs(1),
	RunE: runHeatmap,
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	v, closeHistory := newVisualizer(cfg)
	defer closeHistory()

	res, err := v.RenderHeatmap(args[0], heatmapTitle, heatmapOutput)
	if err != nil {
		closeHistory()
		exitOnError(err)
	}

	if humanOutput {
		outputHuman("%s (%d×%d, %d annotated cells)\n", describeOutput(res.Output, res.Shown), res.Rows, res.Cols, res.Cells)
		return nil
	}
	return outputJSON(res)
}
