package visualizer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hypervector/hdviz/internal/config"
	"github.com/hypervector/hdviz/internal/matrix"
	"github.com/hypervector/hdviz/internal/render"
	"github.com/hypervector/hdviz/internal/tsne"
)

// ScatterResult describes a rendered projection.
type ScatterResult struct {
	Output      string     `json:"output"`
	Shown       bool       `json:"shown"`
	Entities    int        `json:"entities"`
	Divergence  float64    `json:"kl_divergence"`
	Iterations  int        `json:"iterations"`
	Coordinates *mat.Dense `json:"-"`
}

// ProjectFile loads embeddings from input (the configured tsne input when
// empty) and projects them with ProjectAndScatter. Labels fall back to the
// file's index column, then to the configured labels.
func (v *Visualizer) ProjectFile(input string, labels []string, title, output string) (*ScatterResult, error) {
	if input == "" {
		input = v.cfg.TSNE.Input
	}
	data, fileLabels, err := matrix.ReadEmbeddings(input, v.cfg.TSNE.Layout())
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		labels = fileLabels
	}
	if len(labels) == 0 {
		labels = v.cfg.TSNE.Labels
	}
	return v.project(data, labels, title, output, []string{input})
}

// ProjectAndScatter projects the embedding rows to 2D with the configured
// t-SNE parameters and plots one labelled point per entity.
// Returns a *matrix.ValidationError when rows and labels differ in number,
// and a *tsne.ConfigurationError when the parameters cannot fit the input.
func (v *Visualizer) ProjectAndScatter(data *mat.Dense, labels []string, title, output string) (*ScatterResult, error) {
	return v.project(data, labels, title, output, nil)
}

func (v *Visualizer) project(data *mat.Dense, labels []string, title, output string, inputs []string) (*ScatterResult, error) {
	set, err := matrix.NewEmbeddingSet(data, labels)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = v.cfg.TSNE.Title
	}

	params := v.cfg.TSNE.Params()
	params.Progress = func(iteration int, divergence float64) {
		v.logger.Debug("t-SNE progress", "iteration", iteration, "kl_divergence", divergence)
	}
	res, err := tsne.Project(set.Data, params)
	if err != nil {
		return nil, err
	}

	p, err := render.NewScatter(res.Coordinates, set.Labels, title)
	if err != nil {
		return nil, err
	}

	path, shown, err := v.emit(config.KindTSNE, output, inputs, render.ScatterSize, p)
	if err != nil {
		return nil, err
	}

	return &ScatterResult{
		Output:      path,
		Shown:       shown,
		Entities:    set.Len(),
		Divergence:  res.Divergence,
		Iterations:  res.Iterations,
		Coordinates: res.Coordinates,
	}, nil
}
