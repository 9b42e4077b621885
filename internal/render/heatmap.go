package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/hypervector/hdviz/internal/matrix"
)

// Heatmap styling.
const (
	DefaultCellFormat = "%.2f"
	paletteColors     = 255
	scaleFraction     = 0.12 // share of the figure width given to the color scale
)

// HeatmapOptions controls annotation formatting.
type HeatmapOptions struct {
	CellFormat string // fmt verb for per-cell annotations, e.g. "%.2f"
}

// HeatmapFigure is a heatmap plot with its color scale drawn to the right.
type HeatmapFigure struct {
	Plot  *plot.Plot
	Scale *plot.Plot
	Cells int // number of annotated cells
}

// grid adapts a Matrix to plotter.GridXYZ with row 0 drawn at the top.
type grid struct {
	m *matrix.Matrix
}

func (g grid) Dims() (c, r int) {
	rows, cols := g.m.Dims()
	return cols, rows
}

func (g grid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	return g.m.At(rows-1-r, c)
}

func (g grid) X(c int) float64 { return float64(c) }
func (g grid) Y(r int) float64 { return float64(r) }

// NewHeatmap builds a color-mapped, annotated heatmap of m.
// The color range is the data range; no other normalization is applied.
func NewHeatmap(m *matrix.Matrix, title string, opts HeatmapOptions) (*HeatmapFigure, error) {
	if opts.CellFormat == "" {
		opts.CellFormat = DefaultCellFormat
	}

	lo, hi := m.Range()
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMax(hi)
	cmap.SetMin(lo)

	p := plot.New()
	p.Title.Text = title

	h := plotter.NewHeatMap(grid{m}, cmap.Palette(paletteColors))
	h.Min, h.Max = lo, hi
	p.Add(h)

	labels, err := annotations(m, cmap, opts.CellFormat)
	if err != nil {
		return nil, err
	}
	p.Add(labels)

	rows, _ := m.Dims()
	yNames := make([]string, rows)
	for i, l := range m.RowLabels {
		yNames[rows-1-i] = l
	}
	p.NominalX(m.ColLabels...)
	p.NominalY(yNames...)

	scale := plot.New()
	scale.HideX()
	scale.Y.Padding = 0
	scale.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true, Colors: paletteColors})

	return &HeatmapFigure{Plot: p, Scale: scale, Cells: len(labels.Labels)}, nil
}

// annotations places one formatted value label at the center of every cell.
// Text is white on dark cells and black on light ones.
func annotations(m *matrix.Matrix, cmap palette.ColorMap, format string) (*plotter.Labels, error) {
	rows, cols := m.Dims()
	xys := make(plotter.XYs, 0, rows*cols)
	texts := make([]string, 0, rows*cols)
	inks := make([]color.Color, 0, rows*cols)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(rows - 1 - i)})
			texts = append(texts, fmt.Sprintf(format, v))
			inks = append(inks, inkFor(cmap, v))
		}
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("building annotations: %w", err)
	}

	size := annotationSize(cols)
	for k := range labels.TextStyle {
		labels.TextStyle[k].XAlign = text.XCenter
		labels.TextStyle[k].YAlign = text.YCenter
		labels.TextStyle[k].Font.Size = size
		labels.TextStyle[k].Color = inks[k]
	}
	return labels, nil
}

// annotationSize shrinks the label font as the grid gets wider.
func annotationSize(cols int) vg.Length {
	pt := 120.0 / float64(max(cols, 1))
	return vg.Points(min(max(pt, 4), 10))
}

func inkFor(cmap palette.ColorMap, v float64) color.Color {
	c, err := cmap.At(v)
	if err != nil {
		return color.Black
	}
	r, g, b, _ := c.RGBA()
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 0xffff
	if luminance < 0.5 {
		return color.White
	}
	return color.Black
}

// Draw draws the heatmap and its color scale into c.
func (f *HeatmapFigure) Draw(c draw.Canvas) {
	width := c.Max.X - c.Min.X
	bar := width * scaleFraction
	f.Plot.Draw(draw.Crop(c, 0, -bar, 0, 0))
	f.Scale.Draw(draw.Crop(c, width-bar, 0, 0, 0))
}
