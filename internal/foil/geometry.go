package foil

import (
	"math"
	"slices"
	"sort"
)

// ValidatePoints reports whether pts is a usable 2D point list: non-empty
// with finite coordinates.
func ValidatePoints(pts [][2]float64) bool {
	if len(pts) == 0 {
		return false
	}
	for _, p := range pts {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return false
		}
	}
	return true
}

// SortPointsByY returns a copy of pts ordered by ascending y. Web polylines
// arrive in mesh traversal order; sorting gives a consistent bottom-to-top
// direction.
func SortPointsByY(pts [][2]float64) [][2]float64 {
	out := slices.Clone(pts)
	sort.SliceStable(out, func(i, j int) bool { return out[i][1] < out[j][1] })
	return out
}

// polygonArea returns the absolute shoelace area of a polygon.
func polygonArea(pts [][2]float64) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return math.Abs(sum) / 2
}

// centroid returns the average of the points.
func centroid(pts [][2]float64) [2]float64 {
	var c [2]float64
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c[0] += p[0]
		c[1] += p[1]
	}
	c[0] /= float64(len(pts))
	c[1] /= float64(len(pts))
	return c
}

func normalize(v [2]float64) [2]float64 {
	n := math.Hypot(v[0], v[1])
	if n == 0 {
		return v
	}
	return [2]float64{v[0] / n, v[1] / n}
}

// inwardNormals computes a unit normal per node of a closed outline,
// oriented towards the outline centroid. Tangents are central differences
// over the neighbors.
func inwardNormals(outline [][2]float64) [][2]float64 {
	n := len(outline)
	c := centroid(outline)
	normals := make([][2]float64, n)
	for i := range outline {
		prev := outline[(i-1+n)%n]
		next := outline[(i+1)%n]
		tangent := [2]float64{next[0] - prev[0], next[1] - prev[1]}
		normal := normalize([2]float64{-tangent[1], tangent[0]})
		toCenter := [2]float64{c[0] - outline[i][0], c[1] - outline[i][1]}
		if normal[0]*toCenter[0]+normal[1]*toCenter[1] < 0 {
			normal[0], normal[1] = -normal[0], -normal[1]
		}
		normals[i] = normal
	}
	return normals
}

// arcLengths returns the cumulative arc length at every node of a polyline.
func arcLengths(pts [][2]float64, closed bool) []float64 {
	n := len(pts)
	count := n
	if closed {
		count = n + 1
	}
	s := make([]float64, count)
	for i := 1; i < count; i++ {
		a := pts[(i-1)%n]
		b := pts[i%n]
		s[i] = s[i-1] + math.Hypot(b[0]-a[0], b[1]-a[1])
	}
	return s
}

// resamplePolyline redistributes a polyline to n points with uniform arc
// length spacing. Values associated with the original nodes are linearly
// interpolated alongside; pass nil when there are none. A closed polyline
// keeps its period (the duplicate end point is not emitted).
func resamplePolyline(pts [][2]float64, values map[string][]float64, n int, closed bool) ([][2]float64, map[string][]float64) {
	if n < 2 || len(pts) < 2 {
		return pts, values
	}
	s := arcLengths(pts, closed)
	total := s[len(s)-1]
	if total == 0 {
		return pts, values
	}

	targets := make([]float64, n)
	for i := range targets {
		if closed {
			targets[i] = total * float64(i) / float64(n)
		} else {
			targets[i] = total * float64(i) / float64(n-1)
		}
	}

	outPts := make([][2]float64, n)
	outVals := make(map[string][]float64, len(values))
	for name := range values {
		outVals[name] = make([]float64, n)
	}

	seg := 0
	for i, target := range targets {
		for seg < len(s)-2 && s[seg+1] < target {
			seg++
		}
		segLen := s[seg+1] - s[seg]
		frac := 0.0
		if segLen > 0 {
			frac = (target - s[seg]) / segLen
		}
		a := pts[seg%len(pts)]
		b := pts[(seg+1)%len(pts)]
		outPts[i] = [2]float64{a[0] + frac*(b[0]-a[0]), a[1] + frac*(b[1]-a[1])}
		for name, vals := range values {
			va := vals[seg%len(pts)]
			vb := vals[(seg+1)%len(pts)]
			outVals[name][i] = va + frac*(vb-va)
		}
	}
	if values == nil {
		outVals = nil
	}
	return outPts, outVals
}
