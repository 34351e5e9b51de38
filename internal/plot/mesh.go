// Package plot renders section meshes, solver results, and spanwise charts
// to PNG images. All drawing is done in-process on an RGBA canvas.
package plot

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/vtk"
)

const (
	plotMargin    = 50
	colorbarWidth = 20
	colorbarGap   = 30
	markerSize    = 3
	minPlotWidth  = 200
	minPlotHeight = 150
)

// MeshOptions controls scalar mesh rendering.
type MeshOptions struct {
	Scalar string
	Width  int
	Height int
}

// RenderMesh draws the mesh cells colored by the named scalar field. The
// field is looked up in cell data first, then point data (averaged per
// cell); when it is absent the mesh is drawn with a flat fill. Line cells
// are drawn as segments in the field color.
func RenderMesh(m *vtk.Mesh, opts MeshOptions) (*image.RGBA, error) {
	if opts.Width < minPlotWidth || opts.Height < minPlotHeight {
		return nil, errors.Newf("plot size %dx%d is below the minimum %dx%d",
			opts.Width, opts.Height, minPlotWidth, minPlotHeight).
			Category(errors.CategoryValidation).Build()
	}
	if m.NumCells() == 0 {
		return nil, errors.Newf("mesh has no cells to plot").
			Category(errors.CategoryValidation).Build()
	}

	values, found := cellScalars(m, opts.Scalar)
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}

	c := newCanvas(opts.Width, opts.Height)
	bounds := m.Bounds()
	meshRect := image.Rect(plotMargin, plotMargin,
		opts.Width-plotMargin-colorbarWidth-colorbarGap, opts.Height-plotMargin)
	c.setViewport(bounds[0], bounds[2], bounds[1], bounds[3], meshRect)

	for ci, cell := range m.Cells {
		col := mapColor(normalize01(values[ci], lo, hi))
		switch cell.Type {
		case vtk.CellTriangle, vtk.CellQuad, vtk.CellPolygon:
			poly := make([][2]float64, len(cell.Points))
			for i, pi := range cell.Points {
				poly[i] = [2]float64{m.Points[pi][0], m.Points[pi][1]}
			}
			c.fillPolygon(poly, col)
		case vtk.CellLine, vtk.CellPolyLine:
			for i := 0; i+1 < len(cell.Points); i++ {
				a, b := m.Points[cell.Points[i]], m.Points[cell.Points[i+1]]
				c.drawLine(a[0], a[1], b[0], b[1], col)
			}
		}
	}

	if found {
		drawColorbar(c, opts, lo, hi)
		c.drawText(plotMargin, plotMargin-10, opts.Scalar, colorText)
	} else {
		c.drawText(plotMargin, plotMargin-10, opts.Scalar+" (not present)", colorText)
	}
	return c.img, nil
}

// SaveMesh renders the mesh and writes the image to path as PNG.
func SaveMesh(m *vtk.Mesh, path string, opts MeshOptions) error {
	if err := requirePNG(path); err != nil {
		return err
	}
	img, err := RenderMesh(m, opts)
	if err != nil {
		return err
	}
	return savePNG(img, path)
}

// cellScalars resolves the named field to one value per cell. A missing
// field yields a flat array and found == false.
func cellScalars(m *vtk.Mesh, name string) (values []float64, found bool) {
	if vals, ok := m.CellData[name]; ok {
		return vals, true
	}
	if vals, ok := m.PointData[name]; ok {
		out := make([]float64, m.NumCells())
		for ci, cell := range m.Cells {
			sum := 0.0
			for _, pi := range cell.Points {
				sum += vals[pi]
			}
			out[ci] = sum / float64(len(cell.Points))
		}
		return out, true
	}
	slog.Warn("scalar field not found in mesh data, using flat fill", "scalar", name)
	return make([]float64, m.NumCells()), false
}

func drawColorbar(c *canvas, opts MeshOptions, lo, hi float64) {
	barLeft := opts.Width - plotMargin - colorbarWidth
	barTop := plotMargin
	barBottom := opts.Height - plotMargin
	for y := barTop; y < barBottom; y++ {
		t := 1 - float64(y-barTop)/float64(barBottom-barTop)
		col := mapColor(t)
		for x := barLeft; x < barLeft+colorbarWidth; x++ {
			c.img.SetRGBA(x, y, col)
		}
	}
	c.drawText(barLeft, barTop-6, formatTick(hi), colorText)
	c.drawText(barLeft, barBottom+14, formatTick(lo), colorText)
}

func normalize01(v, lo, hi float64) float64 {
	if hi-lo < 1e-30 {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

func formatTick(v float64) string {
	av := v
	if av < 0 {
		av = -av
	}
	if av != 0 && (av < 0.01 || av >= 10000) {
		return fmt.Sprintf("%.2e", v)
	}
	return fmt.Sprintf("%.3g", v)
}

func requirePNG(path string) error {
	if len(path) < 4 || path[len(path)-4:] != ".png" {
		return errors.Newf("output file %s must have a .png extension", path).
			Category(errors.CategoryValidation).FileContext(path).Build()
	}
	return nil
}
