package section

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/foil"
	"github.com/wr1/b3-2d/internal/vtk"
)

// drapedSection builds a synthetic draped section: a 16 point outline where
// the first 12 spans are airfoil panels, the last 4 are trailing edge, plus
// two vertical shear webs. Cell data mirrors the draping tool output.
func drapedSection(t *testing.T, sectionID float64) *vtk.Mesh {
	t.Helper()
	m := vtk.NewMesh()

	const nOutline = 16
	for i := 0; i < nOutline; i++ {
		angle := 2 * math.Pi * float64(i) / float64(nOutline)
		m.Points = append(m.Points, [3]float64{math.Cos(angle), math.Sin(angle), 0})
	}

	var sectionIDs, panelIDs, plyThickness []float64
	for i := 0; i < nOutline; i++ {
		m.Cells = append(m.Cells, vtk.Cell{Type: vtk.CellLine, Points: []int{i, (i + 1) % nOutline}})
		sectionIDs = append(sectionIDs, sectionID)
		if i < 12 {
			panelIDs = append(panelIDs, float64(i%13))
		} else {
			panelIDs = append(panelIDs, -3)
		}
		plyThickness = append(plyThickness, 2.0)
	}

	// Two webs as chords, far from the outline point indices.
	webBase := m.NumPoints()
	m.Points = append(m.Points,
		[3]float64{0.3, -0.7, 0}, [3]float64{0.3, 0.7, 0},
		[3]float64{-0.3, -0.7, 0}, [3]float64{-0.3, 0.7, 0},
	)
	m.Cells = append(m.Cells,
		vtk.Cell{Type: vtk.CellLine, Points: []int{webBase, webBase + 1}},
		vtk.Cell{Type: vtk.CellLine, Points: []int{webBase + 2, webBase + 3}},
	)
	sectionIDs = append(sectionIDs, sectionID, sectionID)
	panelIDs = append(panelIDs, -1, -2)
	plyThickness = append(plyThickness, 0, 0)

	require.NoError(t, m.AddCellData("section_id", sectionIDs))
	require.NoError(t, m.AddCellData("panel_id", panelIDs))
	require.NoError(t, m.AddCellData("ply_1_spar_1_thickness", plyThickness))
	return m
}

func TestExtract(t *testing.T) {
	m := drapedSection(t, 3)

	ex, err := Extract(m, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, ex.SectionID)

	// 13 airfoil points minus the duplicated last, plus 5 TE points minus
	// the duplicated first.
	assert.Len(t, ex.Outline, 16)
	require.Len(t, ex.Webs, 2)
	assert.Len(t, ex.Webs[0], 2)

	// Web points come out sorted bottom to top.
	assert.Less(t, ex.Webs[0][0][1], ex.Webs[0][1][1])

	require.Contains(t, ex.PlyThickness, "1_spar_1")
	thickness := ex.PlyThickness["1_spar_1"]
	require.Len(t, thickness, len(ex.Outline))
	// Airfoil part: 2.0 * 0.01 + 0.04.
	assert.InDelta(t, 0.06, thickness[0], 1e-12)
	// TE part: 2.0 * 1.0 + 0.04.
	assert.InDelta(t, 2.04, thickness[len(thickness)-1], 1e-12)
}

func TestExtractMissingSection(t *testing.T) {
	m := drapedSection(t, 3)
	_, err := Extract(m, 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cells")
}

func TestExtractWithoutWebs(t *testing.T) {
	m := drapedSection(t, 1)
	// Overwrite web panels with airfoil ids so no webs remain.
	panels := m.CellData["panel_id"]
	for i, v := range panels {
		if v == -1 || v == -2 {
			panels[i] = 0
		}
	}
	ex, err := Extract(m, 1)
	require.NoError(t, err)
	assert.Empty(t, ex.Webs)
	assert.NotEmpty(t, ex.Outline)
}

func TestBuildAirfoilMesh(t *testing.T) {
	m := drapedSection(t, 2)
	ex, err := Extract(m, 2)
	require.NoError(t, err)

	meshCfg := &conf.MeshSettings{WebNCell: 10, WebPlyThickness: 0.004}
	input := BuildAirfoilMesh(ex, meshCfg, "")

	require.Len(t, input.Skins, 1)
	skin := input.Skins["skin_0"]
	assert.Equal(t, 1, skin.Material)
	assert.Equal(t, foil.ThicknessArray, skin.Thickness.Type)

	require.Len(t, input.Webs, 2)
	assert.Equal(t, [2]float64{1, 0}, input.Webs["web1"].NormalRef)
	assert.Equal(t, [2]float64{-1, 0}, input.Webs["web2"].NormalRef)
	assert.Equal(t, 10, input.Webs["web1"].NCell)
	assert.Equal(t, 2, input.Webs["web1"].Plies[0].Material)
	assert.Equal(t, 3, input.Webs["web2"].Plies[0].Material)
}

func TestExtractToMeshEndToEnd(t *testing.T) {
	m := drapedSection(t, 5)
	ex, err := Extract(m, 5)
	require.NoError(t, err)

	meshCfg := &conf.MeshSettings{WebNCell: 5, WebPlyThickness: 0.004}
	input := BuildAirfoilMesh(ex, meshCfg, "")

	generated, err := foil.Generate(input)
	require.NoError(t, err)
	assert.Positive(t, generated.NumCells())
	assert.Contains(t, generated.CellData, "material_id")
	assert.Contains(t, generated.CellData, "Area")
}
