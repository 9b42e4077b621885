package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/hypervector/hdviz/internal/matrix"
)

// NewScatter plots one point per row of coords (n×2) with its label beside it.
func NewScatter(coords mat.Matrix, labels []string, title string) (*plot.Plot, error) {
	n, c := coords.Dims()
	if c != 2 {
		return nil, fmt.Errorf("scatter needs 2 columns, got %d", c)
	}
	if n != len(labels) {
		return nil, &matrix.ValidationError{Field: "point labels", Got: len(labels), Want: n}
	}

	xys := make(plotter.XYs, n)
	for i := range xys {
		xys[i].X = coords.At(i, 0)
		xys[i].Y = coords.At(i, 1)
	}

	points, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("building scatter: %w", err)
	}
	points.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  plotutil.Color(i),
			Radius: vg.Points(4),
			Shape:  draw.CircleGlyph{},
		}
	}

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("building point labels: %w", err)
	}
	names.Offset = vg.Point{X: vg.Points(5), Y: vg.Points(2)}
	for k := range names.TextStyle {
		names.TextStyle[k].Font.Size = vg.Points(12)
		names.TextStyle[k].Color = color.Black
	}

	p := plot.New()
	p.Title.Text = title
	p.Add(plotter.NewGrid(), points, names)
	return p, nil
}
