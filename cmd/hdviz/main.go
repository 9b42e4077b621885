// Package main provides the hdviz CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hypervector/hdviz/internal/config"
	"github.com/hypervector/hdviz/internal/history"
	"github.com/hypervector/hdviz/internal/visualizer"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	humanOutput bool
	configPath  string
	verbose     bool
)

// logger is configured in PersistentPreRun from --verbose.
var logger = slog.New(slog.DiscardHandler)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors (unknown flags, bad args) are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hdviz",
	Short: "Render hypervector similarity results as images",
	Long: `hdviz renders the outputs of hyperdimensional computing experiments.

  - heatmaps of labelled similarity matrices, one annotation per cell
  - side-by-side heatmap pairs for each HDV variant (binary, bipolar, real, complex)
  - 2D t-SNE projections of language embeddings

Inputs are CSV files under the results directory; images are PNG files under
the assets directory. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		config.LoadEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to hdviz.yml (default: $HDVIZ_CONFIG or ./hdviz.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	rootCmd.Version = Version
}

// mustLoadConfig loads the effective configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.LoadEffective(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// openHistory opens the artifact history. The history is optional: when it
// cannot be opened, artifacts are not recorded and a warning is logged.
// The returned close function is always safe to call.
func openHistory(cfg *config.Config) (history.Recorder, func()) {
	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("artifact history unavailable", "path", cfg.HistoryPath(), "error", err)
		return history.Discard, func() {}
	}
	return db, func() { db.Close() }
}

// newVisualizer builds a visualizer that records to the history database.
// The caller must call the returned close function.
func newVisualizer(cfg *config.Config) (*visualizer.Visualizer, func()) {
	rec, closeFn := openHistory(cfg)
	v := visualizer.New(cfg,
		visualizer.WithRecorder(rec),
		visualizer.WithLogger(logger),
	)
	return v, closeFn
}
