// Package render draws similarity heatmaps and projection scatter plots to PNG.
package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/hypervector/hdviz/internal/fileutil"
)

// DPI of the PNG output.
const DPI = 150

// Drawer is anything that can draw itself onto a canvas region.
// *plot.Plot satisfies it, as does *HeatmapFigure.
type Drawer interface {
	Draw(c draw.Canvas)
}

// Size is a figure size.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// Default figure sizes.
var (
	HeatmapSize = Size{Width: 8 * vg.Inch, Height: 6 * vg.Inch}
	ScatterSize = Size{Width: 10 * vg.Inch, Height: 8 * vg.Inch}
)

// PairSize returns the canvas size for panels heatmaps laid out side by side.
func PairSize(panel Size, panels int) Size {
	return Size{Width: panel.Width * vg.Length(panels) * 7 / 8, Height: panel.Height}
}

// WritePNG lays the drawers out in one row of equal tiles and encodes the canvas as PNG.
func WritePNG(w io.Writer, size Size, drawers ...Drawer) error {
	if len(drawers) == 0 {
		return fmt.Errorf("nothing to draw")
	}

	img := vgimg.NewWith(vgimg.UseWH(size.Width, size.Height), vgimg.UseDPI(DPI))
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(drawers),
		PadX:      vg.Centimeter,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}
	for i, d := range drawers {
		d.Draw(tiles.At(dc, i, 0))
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// SavePNG writes the drawers to path as PNG. The file appears only if encoding succeeds.
func SavePNG(path string, size Size, drawers ...Drawer) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return WritePNG(w, size, drawers...)
	})
}
