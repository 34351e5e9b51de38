// Package anba integrates the external ANBA4 cross-sectional solver: it
// exports generated section meshes to the solver's JSON input format, runs
// the solver through conda, and loads the solver results for spanwise
// post-processing.
package anba

import (
	"encoding/json"
	"os"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/vtk"
)

// Export is the solver input for one cross-section.
type Export struct {
	Nodes       [][2]float64             `json:"nodes"`
	Elements    [][]int                  `json:"elements"`
	MaterialIDs []int                    `json:"material_ids"`
	Materials   map[string]conf.Material `json:"materials,omitempty"`
}

// NewExport converts a generated section mesh into the solver input. Only
// quad and triangle cells are exported; the material database travels along
// so the solver can resolve material properties by id.
func NewExport(m *vtk.Mesh, matdb conf.MatDB) (*Export, error) {
	mats, ok := m.CellData["material_id"]
	if !ok {
		return nil, errors.Newf("mesh has no material_id cell data").
			Category(errors.CategoryValidation).Build()
	}

	ex := &Export{
		Nodes: make([][2]float64, len(m.Points)),
	}
	for i, p := range m.Points {
		ex.Nodes[i] = [2]float64{p[0], p[1]}
	}
	for ci, c := range m.Cells {
		switch c.Type {
		case vtk.CellQuad, vtk.CellTriangle:
			elem := make([]int, len(c.Points))
			copy(elem, c.Points)
			ex.Elements = append(ex.Elements, elem)
			ex.MaterialIDs = append(ex.MaterialIDs, int(mats[ci]))
		default:
			// Line and vertex cells carry no section stiffness.
		}
	}
	if len(ex.Elements) == 0 {
		return nil, errors.Newf("mesh has no area cells to export").
			Category(errors.CategoryValidation).Build()
	}
	if len(matdb) > 0 {
		ex.Materials = matdb
	}
	return ex, nil
}

// Write serializes the export as JSON to path.
func (ex *Export) Write(path string) error {
	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	return nil
}
