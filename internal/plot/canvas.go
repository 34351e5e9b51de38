package plot

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wr1/b3-2d/internal/errors"
)

var (
	colorBackground = color.RGBA{255, 255, 255, 255}
	colorAxis       = color.RGBA{60, 60, 60, 255}
	colorGrid       = color.RGBA{220, 220, 220, 255}
	colorText       = color.RGBA{30, 30, 30, 255}
)

// canvas maps a world-coordinate viewport onto a pixel rectangle of an RGBA
// image. The y axis points up in world coordinates and down in pixels.
type canvas struct {
	img            *image.RGBA
	x0, y0, x1, y1 float64
	rect           image.Rectangle
}

func newCanvas(width, height int) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	return &canvas{img: img, rect: img.Bounds()}
}

// setViewport maps the world rectangle onto the pixel rectangle. Degenerate
// world extents are padded so the transform stays invertible.
func (c *canvas) setViewport(x0, y0, x1, y1 float64, rect image.Rectangle) {
	if x1-x0 < 1e-12 {
		x0 -= 0.5
		x1 += 0.5
	}
	if y1-y0 < 1e-12 {
		y0 -= 0.5
		y1 += 0.5
	}
	c.x0, c.y0, c.x1, c.y1 = x0, y0, x1, y1
	c.rect = rect
}

func (c *canvas) toPixel(x, y float64) (int, int) {
	px := float64(c.rect.Min.X) + (x-c.x0)/(c.x1-c.x0)*float64(c.rect.Dx())
	py := float64(c.rect.Max.Y) - (y-c.y0)/(c.y1-c.y0)*float64(c.rect.Dy())
	return int(px + 0.5), int(py + 0.5)
}

// fillPolygon rasterizes a polygon given in world coordinates with an
// even-odd scanline test over its pixel bounding box.
func (c *canvas) fillPolygon(pts [][2]float64, col color.RGBA) {
	if len(pts) < 3 {
		return
	}
	px := make([]float64, len(pts))
	py := make([]float64, len(pts))
	minX, minY := 1<<30, 1<<30
	maxX, maxY := -(1 << 30), -(1 << 30)
	for i, p := range pts {
		x, y := c.toPixel(p[0], p[1])
		px[i], py[i] = float64(x), float64(y)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	minX = max(minX, c.img.Bounds().Min.X)
	minY = max(minY, c.img.Bounds().Min.Y)
	maxX = min(maxX, c.img.Bounds().Max.X-1)
	maxY = min(maxY, c.img.Bounds().Max.Y-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInPolygon(float64(x)+0.5, float64(y)+0.5, px, py) {
				c.img.SetRGBA(x, y, col)
			}
		}
	}
}

func pointInPolygon(x, y float64, px, py []float64) bool {
	inside := false
	n := len(px)
	j := n - 1
	for i := 0; i < n; i++ {
		if (py[i] > y) != (py[j] > y) &&
			x < (px[j]-px[i])*(y-py[i])/(py[j]-py[i])+px[i] {
			inside = !inside
		}
		j = i
	}
	return inside
}

// drawLine draws a world-coordinate segment with Bresenham stepping.
func (c *canvas) drawLine(x0, y0, x1, y1 float64, col color.RGBA) {
	ax, ay := c.toPixel(x0, y0)
	bx, by := c.toPixel(x1, y1)
	c.drawPixelLine(ax, ay, bx, by, col)
}

func (c *canvas) drawPixelLine(x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawMarker draws a filled square marker centered on a world point.
func (c *canvas) drawMarker(x, y float64, size int, col color.RGBA) {
	cx, cy := c.toPixel(x, y)
	for dy := -size; dy <= size; dy++ {
		for dx := -size; dx <= size; dx++ {
			c.img.SetRGBA(cx+dx, cy+dy, col)
		}
	}
}

// drawText renders a label at the given pixel position using the builtin
// 7x13 bitmap face.
func (c *canvas) drawText(px, py int, text string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(px, py),
	}
	d.DrawString(text)
}

func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

// savePNG writes an image to path.
func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return errors.New(err).Category(errors.CategoryRendering).FileContext(path).Build()
	}
	return nil
}

func (c *canvas) savePNG(path string) error {
	return savePNG(c.img, path)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
