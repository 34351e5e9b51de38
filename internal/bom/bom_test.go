package bom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/vtk"
)

func meshWithAreas(t *testing.T) *vtk.Mesh {
	t.Helper()
	m := vtk.NewMesh()
	m.Points = [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	for i := 0; i < 3; i++ {
		m.Cells = append(m.Cells, vtk.Cell{Type: vtk.CellTriangle, Points: []int{0, 1, 2}})
	}
	require.NoError(t, m.AddCellData("Area", []float64{1, 2, 3}))
	require.NoError(t, m.AddCellData("material_id", []float64{1, 1, 2}))
	return m
}

func TestComputeWithoutMatDB(t *testing.T) {
	b := Compute(meshWithAreas(t), nil)
	require.NotNil(t, b)
	assert.InDelta(t, 6.0, b.TotalArea, 1e-12)
	assert.InDelta(t, 3.0, b.AreasPerMaterial["1"], 1e-12)
	assert.InDelta(t, 3.0, b.AreasPerMaterial["2"], 1e-12)
	assert.Nil(t, b.TotalMass)
	assert.Nil(t, b.MassesPerMaterial)
}

func TestComputeWithMatDB(t *testing.T) {
	matdb := conf.MatDB{
		"carbon": {ID: 1, Rho: 1600},
		"glass":  {ID: 2, Rho: 1200},
	}
	b := Compute(meshWithAreas(t), matdb)
	require.NotNil(t, b)
	require.NotNil(t, b.TotalMass)
	assert.InDelta(t, 3*1600.0+3*1200.0, *b.TotalMass, 1e-9)
	assert.InDelta(t, 4800.0, b.MassesPerMaterial["1"], 1e-9)
	assert.InDelta(t, 3600.0, b.MassesPerMaterial["2"], 1e-9)
}

func TestComputeMissingDensity(t *testing.T) {
	matdb := conf.MatDB{"carbon": {ID: 1, Rho: 1600}}
	b := Compute(meshWithAreas(t), matdb)
	require.NotNil(t, b)
	// Material 2 has no matdb entry; only carbon contributes mass.
	assert.InDelta(t, 4800.0, *b.TotalMass, 1e-9)
	_, ok := b.MassesPerMaterial["2"]
	assert.False(t, ok)
}

func TestComputeMissingData(t *testing.T) {
	m := vtk.NewMesh()
	assert.Nil(t, Compute(m, nil))
}

func TestWriteAndLoadSpanwise(t *testing.T) {
	dir := t.TempDir()
	for _, sid := range []int{2, 0, 1} {
		sectionDir := filepath.Join(dir, "section_"+string(rune('0'+sid)))
		require.NoError(t, os.MkdirAll(sectionDir, 0o755))
		b := Compute(meshWithAreas(t), nil)
		b.TotalArea = float64(sid)
		require.NoError(t, Write(b, filepath.Join(sectionDir, "bom.json")))
	}

	loaded, err := LoadSpanwise(dir)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for i, sb := range loaded {
		assert.Equal(t, i, sb.SectionID, "results must be sorted by section id")
		assert.InDelta(t, float64(i), sb.BOM.TotalArea, 1e-12)
	}
}

func TestLoadSpanwiseSkipsInvalid(t *testing.T) {
	dir := t.TempDir()
	sectionDir := filepath.Join(dir, "section_0")
	require.NoError(t, os.MkdirAll(sectionDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sectionDir, "bom.json"), []byte("{}"), 0o644))

	loaded, err := LoadSpanwise(dir)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSectionIDFromPath(t *testing.T) {
	id, ok := SectionIDFromPath("/out/section_12/bom.json")
	require.True(t, ok)
	assert.Equal(t, 12, id)

	_, ok = SectionIDFromPath("/out/other_3/bom.json")
	assert.False(t, ok)
	_, ok = SectionIDFromPath("/out/section_x/bom.json")
	assert.False(t, ok)
}
