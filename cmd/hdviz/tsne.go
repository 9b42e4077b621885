package main

import (
	"github.com/spf13/cobra"

	"github.com/hypervector/hdviz/internal/config"
)

var (
	tsneLabels     []string
	tsneTitle      string
	tsneOutput     string
	tsneSeed       uint64
	tsnePerplexity float64
	tsneIterations int
	tsneInit       string
	tsneIndex      bool
)

func init() {
	tsneCmd.Flags().StringSliceVar(&tsneLabels, "labels", nil, "Comma-separated point labels (default: index column, then config)")
	tsneCmd.Flags().StringVarP(&tsneTitle, "title", "t", "", "Figure title")
	tsneCmd.Flags().StringVarP(&tsneOutput, "output", "o", "", "Output PNG path (default: show in viewer)")
	tsneCmd.Flags().Uint64Var(&tsneSeed, "seed", 0, "Random seed (default from config)")
	tsneCmd.Flags().Float64Var(&tsnePerplexity, "perplexity", 0, "Perplexity, must be below the number of rows (default from config)")
	tsneCmd.Flags().IntVar(&tsneIterations, "iterations", 0, "Number of gradient steps (default from config)")
	tsneCmd.Flags().StringVar(&tsneInit, "init", "", "Initial layout: pca or random (default from config)")
	tsneCmd.Flags().BoolVar(&tsneIndex, "index", false, "First column holds entity labels")
	rootCmd.AddCommand(tsneCmd)
}

var tsneCmd = &cobra.Command{
	Use:   "tsne [csv]",
	Short: "Project embeddings to 2D with t-SNE and plot them",
	Long: `Project embedding rows to two dimensions with t-SNE and draw a labelled scatter plot.

The input defaults to tsne.input from the config. Each row is one entity; the
number of labels must equal the number of rows. The same input and seed always
produce the same layout.

Examples:
  hdviz tsne --output ASSETS/language_tsne.png
  hdviz tsne RESULTS/model.csv --perplexity 3 --seed 7`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTSNE,
}

func runTSNE(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	applyTSNEFlags(cmd, cfg)

	input := ""
	if len(args) == 1 {
		input = args[0]
	}

	v, closeHistory := newVisualizer(cfg)
	defer closeHistory()

	res, err := v.ProjectFile(input, tsneLabels, tsneTitle, tsneOutput)
	if err != nil {
		closeHistory()
		exitOnError(err)
	}

	if humanOutput {
		outputHuman("%s (%d entities, KL divergence %.4f after %d iterations)\n",
			describeOutput(res.Output, res.Shown), res.Entities, res.Divergence, res.Iterations)
		return nil
	}
	return outputJSON(res)
}

// applyTSNEFlags overrides config values with flags the user set explicitly.
func applyTSNEFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.TSNE.Seed = tsneSeed
	}
	if flags.Changed("perplexity") {
		cfg.TSNE.Perplexity = tsnePerplexity
	}
	if flags.Changed("iterations") {
		cfg.TSNE.Iterations = tsneIterations
	}
	if flags.Changed("init") {
		cfg.TSNE.Init = tsneInit
	}
	if flags.Changed("index") {
		cfg.TSNE.Index = tsneIndex
	}
}
