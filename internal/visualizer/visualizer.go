// Package visualizer turns similarity matrices and embedding sets into images.
//
// Every operation is one synchronous load → transform → render sequence.
// Outputs are written atomically and, when a recorder is configured, logged
// to the artifact history. An empty output path means "show": the image is
// written to a temp file and handed to the viewer instead.
package visualizer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gonum.org/v1/plot/vg"

	"github.com/hypervector/hdviz/internal/config"
	"github.com/hypervector/hdviz/internal/display"
	"github.com/hypervector/hdviz/internal/fileutil"
	"github.com/hypervector/hdviz/internal/history"
	"github.com/hypervector/hdviz/internal/matrix"
	"github.com/hypervector/hdviz/internal/render"
)

// KindSimilarity marks similarity CSVs in the artifact history.
const KindSimilarity = "similarity"

// Visualizer renders the configured datasets.
type Visualizer struct {
	cfg      *config.Config
	recorder history.Recorder
	viewer   display.Viewer
	logger   *slog.Logger
	runID    string
}

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithRecorder logs written artifacts to r.
func WithRecorder(r history.Recorder) Option {
	return func(v *Visualizer) { v.recorder = r }
}

// WithViewer shows images with viewer instead of the system default.
func WithViewer(viewer display.Viewer) Option {
	return func(v *Visualizer) { v.viewer = viewer }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Visualizer) { v.logger = l }
}

// WithRunID groups recorded artifacts under id.
func WithRunID(id string) Option {
	return func(v *Visualizer) { v.runID = id }
}

// New creates a Visualizer for cfg.
func New(cfg *config.Config, opts ...Option) *Visualizer {
	v := &Visualizer{
		cfg:      cfg,
		recorder: history.Discard,
		viewer:   display.NewSystemViewer(cfg.Viewer),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.runID == "" {
		v.runID = history.NewRunID()
	}
	return v
}

// RunID returns the identifier recorded with this visualizer's artifacts.
func (v *Visualizer) RunID() string {
	return v.runID
}

// HeatmapResult describes a rendered heatmap.
type HeatmapResult struct {
	Output string `json:"output"`
	Shown  bool   `json:"shown"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Cells  int    `json:"annotated_cells"`
}

// RenderHeatmap renders the labelled matrix in input with one annotation per cell.
// Returns a *matrix.ParseError if input is missing or malformed.
func (v *Visualizer) RenderHeatmap(input, title, output string) (*HeatmapResult, error) {
	m, err := matrix.ReadLabeled(input)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	fig, err := render.NewHeatmap(m, title, v.heatmapOptions())
	if err != nil {
		return nil, err
	}

	path, shown, err := v.emit(config.KindHeatmap, output, []string{input}, v.heatmapSize(), fig)
	if err != nil {
		return nil, err
	}

	rows, cols := m.Dims()
	return &HeatmapResult{Output: path, Shown: shown, Rows: rows, Cols: cols, Cells: fig.Cells}, nil
}

// RenderSideBySidePair renders every configured panel of dataset side by side
// and writes the figure to the dataset's combined path, which is returned.
func (v *Visualizer) RenderSideBySidePair(dataset string) (string, error) {
	if dataset == "" {
		return "", fmt.Errorf("dataset must not be empty")
	}

	panels := v.cfg.Pair.Panels
	drawers := make([]render.Drawer, 0, len(panels))
	inputs := make([]string, 0, len(panels))
	for _, p := range panels {
		input := v.cfg.PanelPath(dataset, p)
		m, err := matrix.ReadLabeled(input)
		if err != nil {
			return "", err
		}
		fig, err := render.NewHeatmap(m, PanelTitle(dataset, p), v.heatmapOptions())
		if err != nil {
			return "", err
		}
		drawers = append(drawers, fig)
		inputs = append(inputs, input)
	}

	output := v.cfg.CombinedPath(dataset)
	size := render.PairSize(v.heatmapSize(), len(drawers))
	if err := render.SavePNG(output, size, drawers...); err != nil {
		return "", fmt.Errorf("writing %s: %w", output, err)
	}
	v.record(config.KindPair, output, inputs)
	return output, nil
}

// PanelTitle returns the title of one pair panel, e.g. "Binary HDV – Object Similarities".
func PanelTitle(dataset string, p config.Panel) string {
	name := cases.Title(language.Und).String(dataset)
	if p.Title == "" {
		return fmt.Sprintf("%s HDV – %s", name, p.Suffix)
	}
	return fmt.Sprintf("%s HDV – %s", name, p.Title)
}

// ComputeSimilarity reads an embedding CSV in layout and returns its pairwise
// cosine similarity matrix. When output is set the matrix is also written there
// as a labelled CSV that RenderHeatmap can read.
func (v *Visualizer) ComputeSimilarity(input string, layout matrix.Layout, labels []string, output string) (*matrix.Matrix, error) {
	data, fileLabels, err := matrix.ReadEmbeddings(input, layout)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		labels = fileLabels
	}
	if len(labels) == 0 {
		rows, _ := data.Dims()
		labels = make([]string, rows)
		for i := range labels {
			labels[i] = fmt.Sprintf("%d", i)
		}
	}

	set, err := matrix.NewEmbeddingSet(data, labels)
	if err != nil {
		return nil, err
	}
	sim := set.Similarity()

	if output != "" {
		err := fileutil.WriteAtomic(output, func(w io.Writer) error {
			return matrix.WriteLabeled(w, sim)
		})
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", output, err)
		}
		v.record(KindSimilarity, output, []string{input})
	}
	return sim, nil
}

// emit saves drawers to output, or shows them when output is empty.
// It returns the path of the written image and whether it was shown.
func (v *Visualizer) emit(kind, output string, inputs []string, size render.Size, drawers ...render.Drawer) (string, bool, error) {
	if output != "" {
		if err := render.SavePNG(output, size, drawers...); err != nil {
			return "", false, fmt.Errorf("writing %s: %w", output, err)
		}
		v.record(kind, output, inputs)
		return output, false, nil
	}

	path, err := showPath(kind)
	if err != nil {
		return "", false, err
	}
	if err := render.SavePNG(path, size, drawers...); err != nil {
		return "", false, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := v.viewer.Open(path); err != nil {
		return path, false, fmt.Errorf("showing %s: %w", path, err)
	}
	return path, true, nil
}

// showPath reserves a fresh file name in the display directory.
func showPath(kind string) (string, error) {
	dir := display.ShowDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating display directory: %w", err)
	}
	f, err := os.CreateTemp(dir, kind+"-*.png")
	if err != nil {
		return "", fmt.Errorf("creating display file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing display file: %w", err)
	}
	return path, nil
}

// record logs an artifact. History is best effort: a failure is logged, not returned.
func (v *Visualizer) record(kind, output string, inputs []string) {
	a, err := history.Describe(v.runID, kind, output, inputs)
	if err == nil {
		err = v.recorder.Record(a)
	}
	if err != nil {
		v.logger.Warn("recording artifact failed", "output", output, "error", err)
	}
}

func (v *Visualizer) heatmapOptions() render.HeatmapOptions {
	return render.HeatmapOptions{CellFormat: v.cfg.Heatmap.Format}
}

func (v *Visualizer) heatmapSize() render.Size {
	return render.Size{
		Width:  vg.Length(v.cfg.Heatmap.WidthCM) * vg.Centimeter,
		Height: vg.Length(v.cfg.Heatmap.HeightCM) * vg.Centimeter,
	}
}
