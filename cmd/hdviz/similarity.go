package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hypervector/hdviz/internal/matrix"
)

var (
	similarityOutput string
	similarityLabels []string
	similarityIndex  bool
	similarityHeader bool
)

func init() {
	similarityCmd.Flags().StringVarP(&similarityOutput, "output", "o", "", "Output CSV path (default: stdout)")
	similarityCmd.Flags().StringSliceVar(&similarityLabels, "labels", nil, "Comma-separated row labels")
	similarityCmd.Flags().BoolVar(&similarityIndex, "index", false, "First column holds entity labels")
	similarityCmd.Flags().BoolVar(&similarityHeader, "header", false, "First row is a header")
	rootCmd.AddCommand(similarityCmd)
}

var similarityCmd = &cobra.Command{
	Use:   "similarity <csv>",
	Short: "Compute the pairwise cosine similarity of embedding rows",
	Long: `Compute the pairwise cosine similarity of embedding rows.

The result is a labelled CSV that "hdviz heatmap" can render. Labels come from
--labels, then the index column, then the row numbers.

Examples:
  hdviz similarity RESULTS/model.csv --labels af,bg,cs --output RESULTS/language_similarity.csv
  hdviz similarity embeddings.csv --index > similarity.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilarity,
}

// SimilarityResponse is the response for similarity when written to a file.
type SimilarityResponse struct {
	Output   string `json:"output"`
	Entities int    `json:"entities"`
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	v, closeHistory := newVisualizer(cfg)
	defer closeHistory()

	layout := matrix.Layout{Header: similarityHeader, Index: similarityIndex}
	sim, err := v.ComputeSimilarity(args[0], layout, similarityLabels, similarityOutput)
	if err != nil {
		closeHistory()
		exitOnError(err)
	}

	if similarityOutput == "" {
		return matrix.WriteLabeled(os.Stdout, sim)
	}

	rows, _ := sim.Dims()
	if humanOutput {
		outputHuman("Wrote %s (%d×%d)\n", similarityOutput, rows, rows)
		return nil
	}
	return outputJSON(SimilarityResponse{Output: similarityOutput, Entities: rows})
}
