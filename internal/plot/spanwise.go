package plot

import (
	"image"
	"math"
	"sort"

	"github.com/wr1/b3-2d/internal/anba"
	"github.com/wr1/b3-2d/internal/bom"
	"github.com/wr1/b3-2d/internal/errors"
)

// Series is one named line in a spanwise chart, indexed by section id.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// ChartOptions controls spanwise chart rendering.
type ChartOptions struct {
	Title  string
	Width  int
	Height int
}

// SaveChart renders a multi-series line chart to path.
func SaveChart(series []Series, path string, opts ChartOptions) error {
	if err := requirePNG(path); err != nil {
		return err
	}
	if len(series) == 0 {
		return errors.Newf("no data series to plot").
			Category(errors.CategoryValidation).Build()
	}
	if opts.Width < minPlotWidth || opts.Height < minPlotHeight {
		return errors.Newf("plot size %dx%d is below the minimum %dx%d",
			opts.Width, opts.Height, minPlotWidth, minPlotHeight).
			Category(errors.CategoryValidation).Build()
	}

	x0, x1 := math.Inf(1), math.Inf(-1)
	y0, y1 := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for i := range s.X {
			x0, x1 = math.Min(x0, s.X[i]), math.Max(x1, s.X[i])
			y0, y1 = math.Min(y0, s.Y[i]), math.Max(y1, s.Y[i])
		}
	}
	if math.IsInf(x0, 1) {
		return errors.Newf("all data series are empty").
			Category(errors.CategoryValidation).Build()
	}

	c := newCanvas(opts.Width, opts.Height)
	chartRect := image.Rect(plotMargin+20, plotMargin, opts.Width-plotMargin, opts.Height-plotMargin)
	c.setViewport(x0, y0, x1, y1, chartRect)

	drawAxes(c, chartRect, x0, y0, x1, y1)

	for si, s := range series {
		col := seriesColor(si)
		for i := 0; i+1 < len(s.X); i++ {
			c.drawLine(s.X[i], s.Y[i], s.X[i+1], s.Y[i+1], col)
		}
		for i := range s.X {
			c.drawMarker(s.X[i], s.Y[i], 2, col)
		}
	}

	c.drawText(chartRect.Min.X, plotMargin-10, opts.Title, colorText)
	legendX := chartRect.Min.X
	legendY := opts.Height - plotMargin + 24
	for si, s := range series {
		c.drawMarkerPixel(legendX, legendY-4, 3, seriesColor(si))
		c.drawText(legendX+10, legendY, s.Name, colorText)
		legendX += textWidth(s.Name) + 40
	}

	return c.savePNG(path)
}

func drawAxes(c *canvas, rect image.Rectangle, x0, y0, x1, y1 float64) {
	c.drawPixelLine(rect.Min.X, rect.Max.Y, rect.Max.X, rect.Max.Y, colorAxis)
	c.drawPixelLine(rect.Min.X, rect.Min.Y, rect.Min.X, rect.Max.Y, colorAxis)

	const nTicks = 5
	for i := 0; i <= nTicks; i++ {
		frac := float64(i) / nTicks
		px := rect.Min.X + int(frac*float64(rect.Dx()))
		py := rect.Max.Y - int(frac*float64(rect.Dy()))
		c.drawPixelLine(px, rect.Min.Y, px, rect.Max.Y, colorGrid)
		c.drawPixelLine(rect.Min.X, py, rect.Max.X, py, colorGrid)
		xLabel := formatTick(x0 + frac*(x1-x0))
		yLabel := formatTick(y0 + frac*(y1-y0))
		c.drawText(px-textWidth(xLabel)/2, rect.Max.Y+14, xLabel, colorText)
		c.drawText(rect.Min.X-textWidth(yLabel)-6, py+4, yLabel, colorText)
	}
}

// SaveSpanwiseBOM plots per-material areas against section id.
func SaveSpanwiseBOM(boms []bom.SectionBOM, path string, opts ChartOptions) error {
	if len(boms) == 0 {
		return errors.Newf("no BOM data to plot").
			Category(errors.CategoryValidation).Build()
	}

	materials := map[string]bool{}
	for _, sb := range boms {
		for key := range sb.BOM.AreasPerMaterial {
			materials[key] = true
		}
	}
	names := make([]string, 0, len(materials))
	for key := range materials {
		names = append(names, key)
	}
	sort.Strings(names)

	series := make([]Series, 0, len(names)+1)
	total := Series{Name: "total"}
	for _, sb := range boms {
		total.X = append(total.X, float64(sb.SectionID))
		total.Y = append(total.Y, sb.BOM.TotalArea)
	}
	series = append(series, total)
	for _, name := range names {
		s := Series{Name: "material " + name}
		for _, sb := range boms {
			s.X = append(s.X, float64(sb.SectionID))
			s.Y = append(s.Y, sb.BOM.AreasPerMaterial[name])
		}
		series = append(series, s)
	}

	if opts.Title == "" {
		opts.Title = "cross-sectional area per material"
	}
	return SaveChart(series, path, opts)
}

// SaveSpanwiseAnba plots the solver centers and principal angle against
// section id.
func SaveSpanwiseAnba(results []anba.SectionResult, path string, opts ChartOptions) error {
	if len(results) == 0 {
		return errors.Newf("no solver results to plot").
			Category(errors.CategoryValidation).Build()
	}

	pick := []struct {
		name string
		get  func(r anba.Result) float64
	}{
		{"mass center x", func(r anba.Result) float64 { return r.MassCenter[0] }},
		{"mass center y", func(r anba.Result) float64 { return r.MassCenter[1] }},
		{"shear center x", func(r anba.Result) float64 { return r.ShearCenter[0] }},
		{"shear center y", func(r anba.Result) float64 { return r.ShearCenter[1] }},
		{"principal angle", func(r anba.Result) float64 { return r.PrincipalAngle }},
	}

	series := make([]Series, 0, len(pick))
	for _, p := range pick {
		s := Series{Name: p.name}
		for _, sr := range results {
			s.X = append(s.X, float64(sr.SectionID))
			s.Y = append(s.Y, p.get(sr.Result))
		}
		series = append(series, s)
	}

	if opts.Title == "" {
		opts.Title = "section properties along span"
	}
	return SaveChart(series, path, opts)
}
