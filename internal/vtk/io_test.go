package vtk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVTP = `<?xml version="1.0"?>
<VTKFile type="PolyData" version="0.1" byte_order="LittleEndian">
  <PolyData>
    <Piece NumberOfPoints="6" NumberOfLines="1" NumberOfPolys="2">
      <Points>
        <DataArray type="Float64" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 0  2 0 0
          0 1 0  1 1 0  2 1 0
        </DataArray>
      </Points>
      <Lines>
        <DataArray type="Int64" Name="connectivity" format="ascii">0 3</DataArray>
        <DataArray type="Int64" Name="offsets" format="ascii">2</DataArray>
      </Lines>
      <Polys>
        <DataArray type="Int64" Name="connectivity" format="ascii">0 1 4 3 1 2 5 4</DataArray>
        <DataArray type="Int64" Name="offsets" format="ascii">4 8</DataArray>
      </Polys>
      <CellData>
        <DataArray type="Float64" Name="section_id" format="ascii">-1 0 1</DataArray>
        <DataArray type="Float64" Name="panel_id" format="ascii">-3 2 5</DataArray>
      </CellData>
      <PointData>
        <DataArray type="Float64" Name="ply_1_web_1_thickness" format="ascii">1 2 3 4 5 6</DataArray>
      </PointData>
    </Piece>
  </PolyData>
</VTKFile>
`

func TestReadVTP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surface.vtp")
	require.NoError(t, os.WriteFile(path, []byte(sampleVTP), 0o644))

	m, err := ReadVTP(path)
	require.NoError(t, err)
	assert.Equal(t, 6, m.NumPoints())
	assert.Equal(t, 3, m.NumCells(), "one line cell plus two polys")
	assert.Equal(t, CellLine, m.Cells[0].Type)
	assert.Equal(t, CellQuad, m.Cells[1].Type)
	assert.Equal(t, []float64{-1, 0, 1}, m.CellData["section_id"])
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, m.PointData["ply_1_web_1_thickness"])
	assert.Equal(t, [3]float64{2, 1, 0}, m.Points[5])
}

func TestReadVTPRejectsBinary(t *testing.T) {
	content := strings.ReplaceAll(sampleVTP, `format="ascii"`, `format="binary"`)
	path := filepath.Join(t.TempDir(), "binary.vtp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err := ReadVTP(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only ascii is supported")
}

func TestLegacyRoundTrip(t *testing.T) {
	m := twoQuadMesh(t)
	require.NoError(t, m.AddPointData("thickness", []float64{1, 2, 3, 4, 5, 6}))

	path := filepath.Join(t.TempDir(), "out.vtk")
	require.NoError(t, WriteLegacy(m, path, "round trip"))

	back, err := ReadLegacy(path)
	require.NoError(t, err)
	assert.Equal(t, m.NumPoints(), back.NumPoints())
	assert.Equal(t, m.NumCells(), back.NumCells())
	assert.Equal(t, CellQuad, back.Cells[0].Type)
	assert.InDeltaSlice(t, m.CellData["section_id"], back.CellData["section_id"], 1e-12)
	assert.InDeltaSlice(t, m.CellData["panel_id"], back.CellData["panel_id"], 1e-12)
	assert.InDeltaSlice(t, m.PointData["thickness"], back.PointData["thickness"], 1e-12)
	for i := range m.Points {
		assert.InDeltaSlice(t, m.Points[i][:], back.Points[i][:], 1e-12)
	}
}

func TestReadLegacyScalarsBlock(t *testing.T) {
	content := `# vtk DataFile Version 3.0
written by hand
ASCII
DATASET POLYDATA
POINTS 4 float
0 0 0
1 0 0
1 1 0
0 1 0
POLYGONS 1 5
4 0 1 2 3
CELL_DATA 1
SCALARS material_id float 1
LOOKUP_TABLE default
7
POINT_DATA 4
SCALARS twist float 1
LOOKUP_TABLE default
0.5 0.5 0.5 0.5
`
	path := filepath.Join(t.TempDir(), "scalars.vtk")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := ReadLegacy(path)
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumPoints())
	assert.Equal(t, 1, m.NumCells())
	assert.Equal(t, []float64{7}, m.CellData["material_id"])
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, m.PointData["twist"])
}

func TestReadLegacyRejectsBinary(t *testing.T) {
	content := "# vtk DataFile Version 3.0\ntitle\nBINARY\nDATASET POLYDATA\n"
	path := filepath.Join(t.TempDir(), "bin.vtk")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err := ReadLegacy(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only ASCII is supported")
}

func TestReadFileDispatch(t *testing.T) {
	dir := t.TempDir()

	vtpPath := filepath.Join(dir, "surface.vtp")
	require.NoError(t, os.WriteFile(vtpPath, []byte(sampleVTP), 0o644))
	m, err := ReadFile(vtpPath)
	require.NoError(t, err)
	assert.Equal(t, 6, m.NumPoints())

	// XML content behind an unknown extension is sniffed.
	oddPath := filepath.Join(dir, "surface.dat")
	require.NoError(t, os.WriteFile(oddPath, []byte(sampleVTP), 0o644))
	m, err = ReadFile(oddPath)
	require.NoError(t, err)
	assert.Equal(t, 6, m.NumPoints())

	_, err = ReadFile(filepath.Join(dir, "missing.vtk"))
	assert.Error(t, err)
}

func TestPickleRoundTrip(t *testing.T) {
	m := twoQuadMesh(t)
	path := filepath.Join(t.TempDir(), "mesh.pck")
	require.NoError(t, WritePickle(m, path))

	back, err := ReadPickle(path)
	require.NoError(t, err)
	assert.Equal(t, m.Points, back.Points)
	assert.Equal(t, m.Cells, back.Cells)
	assert.Equal(t, m.CellData, back.CellData)
}
