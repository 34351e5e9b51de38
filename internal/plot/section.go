package plot

import (
	"image"
	"image/color"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/wr1/b3-2d/internal/anba"
	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/vtk"
)

var (
	colorMassCenter    = color.RGBA{214, 39, 40, 255}
	colorShearCenter   = color.RGBA{31, 119, 180, 255}
	colorTensionCenter = color.RGBA{44, 160, 44, 255}
	colorPrincipalAxis = color.RGBA{120, 120, 120, 255}
)

// SaveSectionResult renders the section mesh with the solver centers and
// principal axis overlaid, and writes the image to path.
func SaveSectionResult(m *vtk.Mesh, result *anba.Result, path string, opts MeshOptions) error {
	if err := requirePNG(path); err != nil {
		return err
	}
	img, err := RenderMesh(m, opts)
	if err != nil {
		return err
	}
	c := &canvas{img: img}
	bounds := m.Bounds()
	meshRect := image.Rect(plotMargin, plotMargin,
		opts.Width-plotMargin-colorbarWidth-colorbarGap, opts.Height-plotMargin)
	c.setViewport(bounds[0], bounds[2], bounds[1], bounds[3], meshRect)

	// Principal axis through the mass center, spanning the section extent.
	span := math.Max(bounds[1]-bounds[0], bounds[3]-bounds[2])
	dx := math.Cos(result.PrincipalAngle) * span
	dy := math.Sin(result.PrincipalAngle) * span
	mc := result.MassCenter
	c.drawLine(mc[0]-dx, mc[1]-dy, mc[0]+dx, mc[1]+dy, colorPrincipalAxis)

	c.drawMarker(mc[0], mc[1], markerSize, colorMassCenter)
	c.drawMarker(result.ShearCenter[0], result.ShearCenter[1], markerSize, colorShearCenter)
	c.drawMarker(result.TensionCenter[0], result.TensionCenter[1], markerSize, colorTensionCenter)

	legendY := opts.Height - plotMargin + 20
	legendX := plotMargin
	for _, entry := range []struct {
		label string
		col   color.RGBA
	}{
		{"mass center", colorMassCenter},
		{"shear center", colorShearCenter},
		{"tension center", colorTensionCenter},
	} {
		c.drawMarkerPixel(legendX, legendY-4, markerSize, entry.col)
		c.drawText(legendX+10, legendY, entry.label, colorText)
		legendX += textWidth(entry.label) + 40
	}

	return c.savePNG(path)
}

// RenderSectionResults renders an anba_plot.png overlay into every section
// directory under outputDir that holds both a generated mesh and a solver
// result. Sections with unreadable inputs are skipped with a warning. The
// returned count is the number of plots written.
func RenderSectionResults(outputDir string, opts MeshOptions) (int, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, "section_*", "anba_out.json"))
	if err != nil {
		return 0, errors.New(err).Category(errors.CategoryFileIO).Build()
	}

	written := 0
	for _, resultPath := range matches {
		sectionDir := filepath.Dir(resultPath)
		result, err := anba.LoadResult(resultPath)
		if err != nil {
			slog.Warn("skipping section plot, unreadable solver result",
				"path", resultPath, "error", err)
			continue
		}
		meshPath := filepath.Join(sectionDir, "output.vtk")
		m, err := vtk.ReadLegacy(meshPath)
		if err != nil {
			slog.Warn("skipping section plot, unreadable mesh",
				"path", meshPath, "error", err)
			continue
		}
		outPath := filepath.Join(sectionDir, "anba_plot.png")
		if err := SaveSectionResult(m, result, outPath, opts); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func (c *canvas) drawMarkerPixel(px, py, size int, col color.RGBA) {
	for dy := -size; dy <= size; dy++ {
		for dx := -size; dx <= size; dx++ {
			c.img.SetRGBA(px+dx, py+dy, col)
		}
	}
}
