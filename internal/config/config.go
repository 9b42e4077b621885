// Package config handles hdviz configuration: input/output locations,
// dataset variants, projection parameters and the list of requested outputs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hypervector/hdviz/internal/matrix"
	"github.com/hypervector/hdviz/internal/tsne"
)

// Output kinds accepted in the outputs list.
const (
	KindHeatmap = "heatmap"
	KindPair    = "pair"
	KindTSNE    = "tsne"
)

// ValidKinds lists the supported output kinds.
var ValidKinds = []string{KindHeatmap, KindPair, KindTSNE}

const (
	ConfigFile  = "hdviz.yml"
	HistoryFile = "history.db"
)

// Config represents the contents of hdviz.yml.
type Config struct {
	ResultsDir string   `yaml:"results_dir"`
	AssetsDir  string   `yaml:"assets_dir"`
	StateDir   string   `yaml:"state_dir"`
	Viewer     string   `yaml:"viewer"`
	Variants   []string `yaml:"variants"`
	Pair       Pair     `yaml:"pair"`
	Heatmap    Heatmap  `yaml:"heatmap"`
	TSNE       TSNE     `yaml:"tsne"`
	Outputs    []Output `yaml:"outputs,omitempty"`
}

// Pair describes the side-by-side figure for a dataset variant.
type Pair struct {
	Prefix string  `yaml:"prefix"` // file stem shared by all pair inputs, e.g. "hdv"
	Panels []Panel `yaml:"panels"`
}

// Panel is one heatmap of a pair, read from <results>/<prefix>_<variant>_<suffix>.csv.
type Panel struct {
	Suffix string `yaml:"suffix"`
	Title  string `yaml:"title"`
}

// Heatmap holds heatmap styling.
type Heatmap struct {
	Format   string  `yaml:"format"`
	WidthCM  float64 `yaml:"width_cm"`
	HeightCM float64 `yaml:"height_cm"`
}

// TSNE holds the projection input and parameters.
type TSNE struct {
	Input             string   `yaml:"input"`
	Labels            []string `yaml:"labels"`
	Title             string   `yaml:"title"`
	Seed              uint64   `yaml:"seed"`
	Perplexity        float64  `yaml:"perplexity"`
	Iterations        int      `yaml:"iterations"`
	LearningRate      float64  `yaml:"learning_rate"` // 0 = auto
	EarlyExaggeration float64  `yaml:"early_exaggeration"`
	Init              string   `yaml:"init"`
	Header            bool     `yaml:"header"`
	Index             bool     `yaml:"index"`
}

// Output is one requested artifact in a batch run.
type Output struct {
	Kind    string   `yaml:"kind" json:"kind"`
	Dataset string   `yaml:"dataset,omitempty" json:"dataset,omitempty"` // pair
	Input   string   `yaml:"input,omitempty" json:"input,omitempty"`     // heatmap, tsne
	Title   string   `yaml:"title,omitempty" json:"title,omitempty"`
	Labels  []string `yaml:"labels,omitempty" json:"labels,omitempty"` // tsne
	Output  string   `yaml:"output,omitempty" json:"output,omitempty"` // empty = show
}

// String returns a short description used in logs and run summaries.
func (o Output) String() string {
	switch o.Kind {
	case KindPair:
		return "pair:" + o.Dataset
	case KindHeatmap, KindTSNE:
		if o.Input != "" {
			return o.Kind + ":" + o.Input
		}
	}
	return o.Kind
}

// LanguageCodes are the 22 languages of the language identification experiment.
var LanguageCodes = []string{
	"af", "bg", "cs", "da", "de", "el", "en", "es", "et", "fi", "fr",
	"hu", "it", "lt", "lv", "nl", "pl", "pt", "ro", "sk", "sl", "sv",
}

// Default returns the configuration used when no hdviz.yml exists.
func Default() *Config {
	params := tsne.DefaultConfig()
	return &Config{
		ResultsDir: "RESULTS",
		AssetsDir:  "ASSETS",
		StateDir:   ".hdviz",
		Viewer:     "system",
		Variants:   []string{"binary", "bipolar", "real", "complex"},
		Pair: Pair{
			Prefix: "hdv",
			Panels: []Panel{
				{Suffix: "objects", Title: "Object Similarities"},
				{Suffix: "sentences", Title: "Sentence Similarities"},
			},
		},
		Heatmap: Heatmap{
			Format:   "%.2f",
			WidthCM:  20.32,
			HeightCM: 15.24,
		},
		TSNE: TSNE{
			Input:             filepath.Join("RESULTS", "model.csv"),
			Labels:            append([]string(nil), LanguageCodes...),
			Title:             "Language space via HDV similarity",
			Seed:              params.Seed,
			Perplexity:        params.Perplexity,
			Iterations:        params.Iterations,
			LearningRate:      params.LearningRate,
			EarlyExaggeration: params.EarlyExaggeration,
			Init:              params.Init,
		},
	}
}

// Load reads configuration from path on top of the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the configuration for values no operation could use.
func (c *Config) Validate() error {
	if len(c.Variants) == 0 {
		return fmt.Errorf("variants must list at least one dataset")
	}
	for i, v := range c.Variants {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("variant %d is empty", i+1)
		}
	}
	if c.Pair.Prefix == "" {
		return fmt.Errorf("pair.prefix must not be empty")
	}
	if len(c.Pair.Panels) == 0 {
		return fmt.Errorf("pair.panels must define at least one panel")
	}
	for i, p := range c.Pair.Panels {
		if p.Suffix == "" {
			return fmt.Errorf("pair panel %d must have a suffix", i+1)
		}
	}
	if c.Heatmap.WidthCM <= 0 || c.Heatmap.HeightCM <= 0 {
		return fmt.Errorf("heatmap width_cm and height_cm must be positive")
	}
	for i, o := range c.Outputs {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("output %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks that an output request carries the fields its kind needs.
func (o Output) Validate() error {
	switch o.Kind {
	case KindPair:
		if o.Dataset == "" {
			return fmt.Errorf("pair output needs a dataset")
		}
	case KindHeatmap:
		if o.Input == "" {
			return fmt.Errorf("heatmap output needs an input")
		}
	case KindTSNE:
	default:
		return fmt.Errorf("invalid kind %q (valid: %v)", o.Kind, ValidKinds)
	}
	return nil
}

// Requests returns the configured outputs, or one pair request per variant
// when the outputs list is empty.
func (c *Config) Requests() []Output {
	if len(c.Outputs) > 0 {
		return c.Outputs
	}
	reqs := make([]Output, len(c.Variants))
	for i, v := range c.Variants {
		reqs[i] = Output{Kind: KindPair, Dataset: v}
	}
	return reqs
}

// PanelPath returns the input CSV of one pair panel for a dataset variant.
func (c *Config) PanelPath(dataset string, panel Panel) string {
	name := fmt.Sprintf("%s_%s_%s.csv", c.Pair.Prefix, dataset, panel.Suffix)
	return filepath.Join(c.ResultsDir, name)
}

// CombinedPath returns where the side-by-side figure for a dataset is written.
func (c *Config) CombinedPath(dataset string) string {
	name := fmt.Sprintf("%s_%s_combined.png", dataset, c.Pair.Prefix)
	return filepath.Join(c.AssetsDir, name)
}

// HistoryPath returns the path to the artifact history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.StateDir, HistoryFile)
}

// Params converts the tsne section to projection parameters.
func (t TSNE) Params() tsne.Config {
	return tsne.Config{
		Seed:              t.Seed,
		Perplexity:        t.Perplexity,
		Iterations:        t.Iterations,
		LearningRate:      t.LearningRate,
		EarlyExaggeration: t.EarlyExaggeration,
		Init:              t.Init,
	}
}

// Layout returns the CSV layout of the embedding input.
func (t TSNE) Layout() matrix.Layout {
	return matrix.Layout{Header: t.Header, Index: t.Index}
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
