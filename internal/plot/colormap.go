package plot

import "image/color"

// viridisAnchors are evenly spaced control points of the viridis colormap.
var viridisAnchors = [][3]uint8{
	{68, 1, 84},
	{71, 44, 122},
	{59, 81, 139},
	{44, 113, 142},
	{33, 144, 141},
	{39, 173, 129},
	{92, 200, 99},
	{170, 220, 50},
	{253, 231, 37},
}

// mapColor maps t in [0, 1] onto the viridis colormap. Values outside the
// range are clamped.
func mapColor(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	pos := t * float64(len(viridisAnchors)-1)
	lo := int(pos)
	if lo >= len(viridisAnchors)-1 {
		lo = len(viridisAnchors) - 2
	}
	frac := pos - float64(lo)
	a, b := viridisAnchors[lo], viridisAnchors[lo+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + frac*(float64(y)-float64(x)))
	}
	return color.RGBA{lerp(a[0], b[0]), lerp(a[1], b[1]), lerp(a[2], b[2]), 255}
}

// seriesColors cycles through a small palette for spanwise line charts.
var seriesColors = []color.RGBA{
	{31, 119, 180, 255},
	{255, 127, 14, 255},
	{44, 160, 44, 255},
	{214, 39, 40, 255},
	{148, 103, 189, 255},
	{140, 86, 75, 255},
}

func seriesColor(i int) color.RGBA {
	return seriesColors[i%len(seriesColors)]
}
