package vtk

import (
	"math"

	"github.com/wr1/b3-2d/internal/errors"
)

// RotateZ rotates all points around the z axis by the given angle in
// degrees. The mesh is modified in place and returned for chaining.
func (m *Mesh) RotateZ(degrees float64) *Mesh {
	rad := degrees * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	for i, p := range m.Points {
		m.Points[i][0] = p[0]*cos - p[1]*sin
		m.Points[i][1] = p[0]*sin + p[1]*cos
	}
	return m
}

// Threshold returns a new mesh containing only the cells whose value of the
// named cell data array lies in [lo, hi]. Points are compacted and both
// cell and point data arrays are carried over.
func (m *Mesh) Threshold(name string, lo, hi float64) (*Mesh, error) {
	vals, ok := m.CellData[name]
	if !ok {
		return nil, errors.Newf("%s not found in cell data", name).
			Category(errors.CategoryValidation).
			Build()
	}

	out := NewMesh()
	pointMap := make(map[int]int)
	var keptCells []int

	for ci, c := range m.Cells {
		v := vals[ci]
		if v < lo || v > hi {
			continue
		}
		keptCells = append(keptCells, ci)
		newCell := Cell{Type: c.Type, Points: make([]int, len(c.Points))}
		for pi, old := range c.Points {
			idx, seen := pointMap[old]
			if !seen {
				idx = len(out.Points)
				pointMap[old] = idx
				out.Points = append(out.Points, m.Points[old])
			}
			newCell.Points[pi] = idx
		}
		out.Cells = append(out.Cells, newCell)
	}

	for dataName, data := range m.CellData {
		sub := make([]float64, len(keptCells))
		for i, ci := range keptCells {
			sub[i] = data[ci]
		}
		out.CellData[dataName] = sub
	}
	for dataName, data := range m.PointData {
		sub := make([]float64, len(out.Points))
		for old, idx := range pointMap {
			sub[idx] = data[old]
		}
		out.PointData[dataName] = sub
	}
	return out, nil
}

// CellDataToPointData returns a copy of the mesh whose point data holds the
// arithmetic mean of each cell data array over the cells adjacent to every
// point. Existing point data arrays are kept unless shadowed by a cell data
// array of the same name.
func (m *Mesh) CellDataToPointData() *Mesh {
	out := m.Copy()
	counts := make([]int, len(m.Points))
	for _, c := range m.Cells {
		for _, pi := range c.Points {
			counts[pi]++
		}
	}
	for name, vals := range m.CellData {
		avg := make([]float64, len(m.Points))
		for ci, c := range m.Cells {
			for _, pi := range c.Points {
				avg[pi] += vals[ci]
			}
		}
		for pi := range avg {
			if counts[pi] > 0 {
				avg[pi] /= float64(counts[pi])
			}
		}
		out.PointData[name] = avg
	}
	return out
}

// Merge concatenates two meshes into a new one. Data arrays present in only
// one input are zero filled for the other.
func Merge(a, b *Mesh) *Mesh {
	out := a.Copy()
	offset := len(out.Points)
	out.Points = append(out.Points, b.Points...)
	for _, c := range b.Cells {
		nc := Cell{Type: c.Type, Points: make([]int, len(c.Points))}
		for i, pi := range c.Points {
			nc.Points[i] = pi + offset
		}
		out.Cells = append(out.Cells, nc)
	}

	names := make(map[string]struct{})
	for name := range a.CellData {
		names[name] = struct{}{}
	}
	for name := range b.CellData {
		names[name] = struct{}{}
	}
	for name := range names {
		merged := make([]float64, 0, len(a.Cells)+len(b.Cells))
		merged = append(merged, padded(a.CellData[name], len(a.Cells))...)
		merged = append(merged, padded(b.CellData[name], len(b.Cells))...)
		out.CellData[name] = merged
	}

	names = make(map[string]struct{})
	for name := range a.PointData {
		names[name] = struct{}{}
	}
	for name := range b.PointData {
		names[name] = struct{}{}
	}
	for name := range names {
		merged := make([]float64, 0, len(a.Points)+len(b.Points))
		merged = append(merged, padded(a.PointData[name], len(a.Points))...)
		merged = append(merged, padded(b.PointData[name], len(b.Points))...)
		out.PointData[name] = merged
	}
	return out
}

func padded(vals []float64, n int) []float64 {
	if len(vals) == n {
		return vals
	}
	out := make([]float64, n)
	copy(out, vals)
	return out
}
