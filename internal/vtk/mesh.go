// Package vtk implements the subset of the VTK file family used by the
// blade pre-processing chain: XML PolyData (.vtp) and legacy ASCII (.vtk)
// readers, a legacy writer, and the mesh transforms the section splitter
// needs.
package vtk

import (
	"fmt"
	"math"
	"slices"

	"github.com/wr1/b3-2d/internal/errors"
)

// CellType holds the VTK cell type id.
type CellType int

const (
	CellVertex   CellType = 1
	CellLine     CellType = 3
	CellPolyLine CellType = 4
	CellTriangle CellType = 5
	CellPolygon  CellType = 7
	CellQuad     CellType = 9
)

// Cell is a single mesh cell referencing points by index.
type Cell struct {
	Type   CellType
	Points []int
}

// Mesh is an unstructured mesh with named per-cell and per-point float
// arrays. It covers both PolyData and UnstructuredGrid inputs.
type Mesh struct {
	Points    [][3]float64
	Cells     []Cell
	CellData  map[string][]float64
	PointData map[string][]float64
}

// NewMesh returns an empty mesh with initialized data maps.
func NewMesh() *Mesh {
	return &Mesh{
		CellData:  make(map[string][]float64),
		PointData: make(map[string][]float64),
	}
}

// NumPoints returns the point count.
func (m *Mesh) NumPoints() int { return len(m.Points) }

// NumCells returns the cell count.
func (m *Mesh) NumCells() int { return len(m.Cells) }

// AddCellData attaches a named per-cell array.
func (m *Mesh) AddCellData(name string, values []float64) error {
	if len(values) != len(m.Cells) {
		return errors.Newf("cell data %s has %d values for %d cells", name, len(values), len(m.Cells)).
			Category(errors.CategoryValidation).
			Build()
	}
	if m.CellData == nil {
		m.CellData = make(map[string][]float64)
	}
	m.CellData[name] = values
	return nil
}

// AddPointData attaches a named per-point array.
func (m *Mesh) AddPointData(name string, values []float64) error {
	if len(values) != len(m.Points) {
		return errors.Newf("point data %s has %d values for %d points", name, len(values), len(m.Points)).
			Category(errors.CategoryValidation).
			Build()
	}
	if m.PointData == nil {
		m.PointData = make(map[string][]float64)
	}
	m.PointData[name] = values
	return nil
}

// Copy returns a deep copy of the mesh.
func (m *Mesh) Copy() *Mesh {
	out := NewMesh()
	out.Points = slices.Clone(m.Points)
	out.Cells = make([]Cell, len(m.Cells))
	for i, c := range m.Cells {
		out.Cells[i] = Cell{Type: c.Type, Points: slices.Clone(c.Points)}
	}
	for name, vals := range m.CellData {
		out.CellData[name] = slices.Clone(vals)
	}
	for name, vals := range m.PointData {
		out.PointData[name] = slices.Clone(vals)
	}
	return out
}

// Bounds returns xmin, xmax, ymin, ymax, zmin, zmax. An empty mesh returns
// all zeros.
func (m *Mesh) Bounds() [6]float64 {
	var b [6]float64
	if len(m.Points) == 0 {
		return b
	}
	b = [6]float64{
		math.Inf(1), math.Inf(-1),
		math.Inf(1), math.Inf(-1),
		math.Inf(1), math.Inf(-1),
	}
	for _, p := range m.Points {
		for axis := 0; axis < 3; axis++ {
			b[2*axis] = math.Min(b[2*axis], p[axis])
			b[2*axis+1] = math.Max(b[2*axis+1], p[axis])
		}
	}
	return b
}

// BBSize returns the diagonal length of the xy bounding box.
func (m *Mesh) BBSize() float64 {
	b := m.Bounds()
	dx := b[1] - b[0]
	dy := b[3] - b[2]
	return math.Hypot(dx, dy)
}

// UniqueCellValues returns the sorted distinct values of a cell data array.
func (m *Mesh) UniqueCellValues(name string) ([]float64, error) {
	vals, ok := m.CellData[name]
	if !ok {
		return nil, errors.Newf("%s not found in cell data", name).
			Category(errors.CategoryValidation).
			Build()
	}
	seen := make(map[float64]struct{}, len(vals))
	var unique []float64
	for _, v := range vals {
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			unique = append(unique, v)
		}
	}
	slices.Sort(unique)
	return unique, nil
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh(points=%d, cells=%d, cellData=%d, pointData=%d)",
		len(m.Points), len(m.Cells), len(m.CellData), len(m.PointData))
}
