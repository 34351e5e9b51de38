package vtk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoQuadMesh builds a 2x1 strip of two unit quads with section and panel
// ids, mirroring the attribute layout of a draped blade surface.
func twoQuadMesh(t *testing.T) *Mesh {
	t.Helper()
	m := NewMesh()
	m.Points = [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0},
		{0, 1, 0}, {1, 1, 0}, {2, 1, 0},
	}
	m.Cells = []Cell{
		{Type: CellQuad, Points: []int{0, 1, 4, 3}},
		{Type: CellQuad, Points: []int{1, 2, 5, 4}},
	}
	require.NoError(t, m.AddCellData("section_id", []float64{0, 1}))
	require.NoError(t, m.AddCellData("panel_id", []float64{2, -1}))
	return m
}

func TestBoundsAndBBSize(t *testing.T) {
	m := twoQuadMesh(t)
	b := m.Bounds()
	assert.InDelta(t, 0.0, b[0], 1e-12)
	assert.InDelta(t, 2.0, b[1], 1e-12)
	assert.InDelta(t, 0.0, b[2], 1e-12)
	assert.InDelta(t, 1.0, b[3], 1e-12)
	assert.InDelta(t, math.Sqrt(5), m.BBSize(), 1e-12)

	empty := NewMesh()
	assert.InDelta(t, 0.0, empty.BBSize(), 1e-12)
}

func TestRotateZ(t *testing.T) {
	m := NewMesh()
	m.Points = [][3]float64{{1, 0, 3}}
	m.RotateZ(90)
	assert.InDelta(t, 0.0, m.Points[0][0], 1e-12)
	assert.InDelta(t, 1.0, m.Points[0][1], 1e-12)
	assert.InDelta(t, 3.0, m.Points[0][2], 1e-12, "z must be unchanged")
}

func TestThresholdKeepsMatchingCells(t *testing.T) {
	m := twoQuadMesh(t)

	section, err := m.Threshold("section_id", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, section.NumCells())
	assert.Equal(t, 4, section.NumPoints(), "unused points must be compacted away")
	assert.Equal(t, []float64{1}, section.CellData["section_id"])
	assert.Equal(t, []float64{-1}, section.CellData["panel_id"])

	// Empty selection is valid and yields an empty mesh.
	none, err := m.Threshold("section_id", 7, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, none.NumCells())

	_, err = m.Threshold("missing_field", 0, 1)
	assert.Error(t, err)
}

func TestCellDataToPointData(t *testing.T) {
	m := twoQuadMesh(t)
	converted := m.CellDataToPointData()

	pd, ok := converted.PointData["section_id"]
	require.True(t, ok)
	require.Len(t, pd, 6)
	// Points 0 and 3 only touch cell 0 (value 0); points 2 and 5 only touch
	// cell 1 (value 1); shared points 1 and 4 average to 0.5.
	assert.InDelta(t, 0.0, pd[0], 1e-12)
	assert.InDelta(t, 0.5, pd[1], 1e-12)
	assert.InDelta(t, 1.0, pd[2], 1e-12)
	assert.InDelta(t, 0.5, pd[4], 1e-12)

	// Source mesh is untouched.
	_, ok = m.PointData["section_id"]
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	a := twoQuadMesh(t)
	b := NewMesh()
	b.Points = [][3]float64{{5, 5, 0}, {6, 5, 0}, {6, 6, 0}}
	b.Cells = []Cell{{Type: CellTriangle, Points: []int{0, 1, 2}}}
	require.NoError(t, b.AddCellData("section_id", []float64{9}))

	merged := Merge(a, b)
	assert.Equal(t, 9, merged.NumPoints())
	assert.Equal(t, 3, merged.NumCells())
	assert.Equal(t, []int{6, 7, 8}, merged.Cells[2].Points, "indices must be remapped")
	assert.Equal(t, []float64{0, 1, 9}, merged.CellData["section_id"])
	// panel_id only exists on a; b's cells get zero filled.
	assert.Equal(t, []float64{2, -1, 0}, merged.CellData["panel_id"])
}

func TestUniqueCellValues(t *testing.T) {
	m := NewMesh()
	m.Points = [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	for i := 0; i < 4; i++ {
		m.Cells = append(m.Cells, Cell{Type: CellTriangle, Points: []int{0, 1, 2}})
	}
	require.NoError(t, m.AddCellData("section_id", []float64{3, 1, 3, 2}))

	unique, err := m.UniqueCellValues("section_id")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, unique)

	_, err = m.UniqueCellValues("nope")
	assert.Error(t, err)
}

func TestAddCellDataValidatesLength(t *testing.T) {
	m := twoQuadMesh(t)
	err := m.AddCellData("bad", []float64{1})
	require.Error(t, err)
	err = m.AddPointData("bad", []float64{1, 2})
	require.Error(t, err)
}
