package analysis

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/datastore"
	"github.com/wr1/b3-2d/internal/vtk"
)

// drapedSection builds one synthetic blade section: a 16 point outline with
// 12 airfoil panels and 4 trailing edge panels, plus two shear web chords.
func drapedSection(t *testing.T, sectionID float64) *vtk.Mesh {
	t.Helper()
	m := vtk.NewMesh()

	const nOutline = 16
	for i := 0; i < nOutline; i++ {
		angle := 2 * math.Pi * float64(i) / float64(nOutline)
		m.Points = append(m.Points, [3]float64{math.Cos(angle), math.Sin(angle), sectionID})
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

	webBase := m.NumPoints()
	m.Points = append(m.Points,
		[3]float64{0.3, -0.7, sectionID}, [3]float64{0.3, 0.7, sectionID},
		[3]float64{-0.3, -0.7, sectionID}, [3]float64{-0.3, 0.7, sectionID},
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

// writeDrapedFile writes a legacy VTK file with the given section ids.
func writeDrapedFile(t *testing.T, dir string, sectionIDs ...float64) string {
	t.Helper()
	var combined *vtk.Mesh
	for _, sid := range sectionIDs {
		part := drapedSection(t, sid)
		if combined == nil {
			combined = part
		} else {
			combined = vtk.Merge(combined, part)
		}
	}
	path := filepath.Join(dir, "draped.vtk")
	require.NoError(t, vtk.WriteLegacy(combined, path, "draped blade surface"))
	return path
}

func testSettings(t *testing.T, inputPath, outputDir string) *conf.Settings {
	t.Helper()
	s := &conf.Settings{}
	s.Input.Path = inputPath
	s.Output.Dir = outputDir
	s.Mesh = conf.MeshSettings{
		NumProcesses:    2,
		RotationAngle:   0,
		WebNCell:        5,
		WebPlyThickness: 0.004,
	}
	return s
}

func TestRunMultiSection(t *testing.T) {
	dir := t.TempDir()
	input := writeDrapedFile(t, dir, 0, 1, 2)
	outputDir := filepath.Join(dir, "out")
	settings := testSettings(t, input, outputDir)

	summary, err := RunMultiSection(context.Background(), settings)
	require.NoError(t, err)
	require.Len(t, summary.Sections, 3)
	assert.NotEmpty(t, summary.RunID)
	assert.LessOrEqual(t, summary.Workers, 3)

	for i, outcome := range summary.Sections {
		assert.Equal(t, i, outcome.SectionID)
		assert.True(t, outcome.Success, "section %d: %v", outcome.SectionID, outcome.Err)

		sectionDir := filepath.Join(outputDir, sectionDirName(outcome.SectionID))
		for _, name := range []string{fileMesh, filePickle, fileAnba, fileBOM, fileSectLog} {
			assert.FileExists(t, filepath.Join(sectionDir, name))
		}
	}
}

func TestRunMultiSectionOutputsAreReadable(t *testing.T) {
	dir := t.TempDir()
	input := writeDrapedFile(t, dir, 4)
	outputDir := filepath.Join(dir, "out")

	_, err := RunMultiSection(context.Background(), testSettings(t, input, outputDir))
	require.NoError(t, err)

	sectionDir := filepath.Join(outputDir, "section_4")
	mesh, err := vtk.ReadLegacy(filepath.Join(sectionDir, fileMesh))
	require.NoError(t, err)
	assert.Positive(t, mesh.NumCells())
	assert.Contains(t, mesh.CellData, "material_id")

	pickled, err := vtk.ReadPickle(filepath.Join(sectionDir, filePickle))
	require.NoError(t, err)
	assert.Equal(t, mesh.NumCells(), pickled.NumCells())
}

func TestRunMultiSectionMissingSectionID(t *testing.T) {
	dir := t.TempDir()
	m := drapedSection(t, 0)
	delete(m.CellData, "section_id")
	path := filepath.Join(dir, "draped.vtk")
	require.NoError(t, vtk.WriteLegacy(m, path, "no sections"))

	_, err := RunMultiSection(context.Background(), testSettings(t, path, filepath.Join(dir, "out")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section_id")
}

func TestRunMultiSectionMissingInput(t *testing.T) {
	dir := t.TempDir()
	settings := testSettings(t, filepath.Join(dir, "absent.vtk"), dir)
	_, err := RunMultiSection(context.Background(), settings)
	assert.Error(t, err)
}

func TestRunMultiSectionFailedSectionIsolated(t *testing.T) {
	dir := t.TempDir()
	// Section 1 has no airfoil panels, so it fails while section 0 succeeds.
	good := drapedSection(t, 0)
	bad := drapedSection(t, 1)
	for i, v := range bad.CellData["panel_id"] {
		if v >= 0 {
			bad.CellData["panel_id"][i] = -3
		}
	}
	combined := vtk.Merge(good, bad)
	path := filepath.Join(dir, "draped.vtk")
	require.NoError(t, vtk.WriteLegacy(combined, path, "draped"))

	summary, err := RunMultiSection(context.Background(), testSettings(t, path, filepath.Join(dir, "out")))
	require.NoError(t, err)
	require.Len(t, summary.Sections, 2)
	assert.True(t, summary.Sections[0].Success)
	assert.False(t, summary.Sections[1].Success)
	assert.Error(t, summary.Sections[1].Err)
	assert.Equal(t, 1, summary.NumFailed())
}

func TestRunMultiSectionCancelled(t *testing.T) {
	dir := t.TempDir()
	input := writeDrapedFile(t, dir, 0, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := RunMultiSection(ctx, testSettings(t, input, filepath.Join(dir, "out")))
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
}

func TestRunMultiSectionPersistsHistory(t *testing.T) {
	dir := t.TempDir()
	input := writeDrapedFile(t, dir, 0, 1)
	outputDir := filepath.Join(dir, "out")
	settings := testSettings(t, input, outputDir)
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = "runs.db"

	summary, err := RunMultiSection(context.Background(), settings)
	require.NoError(t, err)

	store, err := datastore.Open("runs.db", outputDir, false)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].ID)
	assert.Equal(t, 2, runs[0].NumSections)

	records, err := store.Sections(summary.RunID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWriteTable(t *testing.T) {
	summary := &RunSummary{
		Started:  time.Now().Add(-time.Second),
		Finished: time.Now(),
		Sections: []SectionOutcome{
			{SectionID: 0, Success: true, CreatedFiles: []string{"a", "b"}},
			{SectionID: 1, Success: false, Err: os.ErrNotExist},
		},
	}
	var sb strings.Builder
	summary.WriteTable(&sb)
	out := sb.String()
	assert.Contains(t, out, "SECTION")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "2 sections, 1 failed")
}
