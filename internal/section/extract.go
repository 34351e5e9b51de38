// Package section extracts per-section airfoil geometry from a draped blade
// surface mesh and turns it into a mesher input.
package section

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/foil"
	"github.com/wr1/b3-2d/internal/vtk"
)

// Panel id ranges in the draped surface. Panels 0..12 form the airfoil
// shell, -3 is the trailing edge and -1/-2 are the shear webs.
const (
	panelAirfoilLo = 0
	panelAirfoilHi = 12
	panelTE        = -3
	panelWeb1      = -1
	panelWeb2      = -2
)

var plyFieldRe = regexp.MustCompile(`^ply_(\d+)_(\w+)_(\d+)_thickness$`)

// Thickness calibration applied to the draped per-ply fields. The airfoil
// shell stores thickness in centimeters; both parts carry a 4 cm core
// offset.
const (
	airfoilThicknessScale = 0.01
	teThicknessScale      = 1.0
	thicknessOffset       = 0.04
)

// Extraction is the geometry pulled out of one blade section.
type Extraction struct {
	SectionID    int
	Outline      [][2]float64
	Webs         [][][2]float64
	PlyThickness map[string][]float64 // key <n1>_<slab>_<n2>, per outline point
}

// Extract pulls the airfoil outline, web polylines and ply thickness
// distributions for one section out of the (already rotated) draped mesh.
func Extract(m *vtk.Mesh, sectionID int) (*Extraction, error) {
	sectionMesh, err := m.Threshold("section_id", float64(sectionID), float64(sectionID))
	if err != nil {
		return nil, err
	}
	if sectionMesh.NumCells() == 0 {
		return nil, errors.Newf("section %d has no cells", sectionID).
			Category(errors.CategorySection).Build()
	}

	airfoil, err := sectionMesh.Threshold("panel_id", panelAirfoilLo, panelAirfoilHi)
	if err != nil {
		return nil, err
	}
	if airfoil.NumPoints() == 0 {
		return nil, errors.Newf("section %d has no airfoil panels", sectionID).
			Category(errors.CategorySection).Build()
	}
	te, err := sectionMesh.Threshold("panel_id", panelTE, panelTE)
	if err != nil {
		return nil, err
	}

	ex := &Extraction{
		SectionID:    sectionID,
		Outline:      buildOutline(airfoil, te),
		PlyThickness: extractPlyThickness(airfoil, te),
	}

	for _, panelID := range []float64{panelWeb1, panelWeb2} {
		web, err := sectionMesh.Threshold("panel_id", panelID, panelID)
		if err != nil {
			return nil, err
		}
		if web.NumPoints() == 0 {
			continue
		}
		ex.Webs = append(ex.Webs, foil.SortPointsByY(pointsXY(web)))
	}

	if !foil.ValidatePoints(ex.Outline) {
		return nil, errors.Newf("section %d yields an invalid outline", sectionID).
			Category(errors.CategorySection).Build()
	}
	return ex, nil
}

// buildOutline joins the airfoil shell points (dropping the duplicated last
// point) with the trailing edge points (dropping the duplicated first one).
func buildOutline(airfoil, te *vtk.Mesh) [][2]float64 {
	airfoilPts := pointsXY(airfoil)
	tePts := pointsXY(te)
	outline := make([][2]float64, 0, len(airfoilPts)+len(tePts))
	if len(airfoilPts) > 0 {
		outline = append(outline, airfoilPts[:len(airfoilPts)-1]...)
	}
	if len(tePts) > 1 {
		outline = append(outline, tePts[1:]...)
	}
	return outline
}

// extractPlyThickness collects the per-ply thickness distributions along the
// outline. A field contributes only when present on both the shell and the
// trailing edge so the array lines up with the outline points.
func extractPlyThickness(airfoil, te *vtk.Mesh) map[string][]float64 {
	airfoilPD := airfoil.CellDataToPointData().PointData
	tePD := te.CellDataToPointData().PointData

	out := make(map[string][]float64)
	for field, airfoilVals := range airfoilPD {
		match := plyFieldRe.FindStringSubmatch(field)
		if match == nil {
			continue
		}
		teVals, ok := tePD[field]
		if !ok {
			continue
		}
		combined := make([]float64, 0, len(airfoilVals)+len(teVals))
		if len(airfoilVals) > 0 {
			for _, v := range airfoilVals[:len(airfoilVals)-1] {
				combined = append(combined, v*airfoilThicknessScale+thicknessOffset)
			}
		}
		if len(teVals) > 1 {
			for _, v := range teVals[1:] {
				combined = append(combined, v*teThicknessScale+thicknessOffset)
			}
		}
		key := fmt.Sprintf("%s_%s_%s", match[1], match[2], match[3])
		out[key] = combined
	}
	return out
}

func pointsXY(m *vtk.Mesh) [][2]float64 {
	out := make([][2]float64, len(m.Points))
	for i, p := range m.Points {
		out[i] = [2]float64{p[0], p[1]}
	}
	return out
}

// BuildAirfoilMesh assembles the mesher input for an extraction: one skin
// per ply thickness distribution with sequential materials from 1, then the
// webs with a constant ply thickness and alternating normal references.
func BuildAirfoilMesh(ex *Extraction, meshCfg *conf.MeshSettings, vtkPath string) *foil.AirfoilMesh {
	keys := make([]string, 0, len(ex.PlyThickness))
	for key := range ex.PlyThickness {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	skins := make(map[string]foil.Skin, len(keys))
	for i, key := range keys {
		skins[fmt.Sprintf("skin_%d", i)] = foil.Skin{
			Thickness: foil.ArrayThickness(ex.PlyThickness[key]),
			Material:  i + 1,
			SortIndex: i,
		}
	}

	webs := make(map[string]foil.Web, len(ex.Webs))
	for i, points := range ex.Webs {
		normalRef := [2]float64{1, 0}
		if i%2 == 1 {
			normalRef = [2]float64{-1, 0}
		}
		webs[fmt.Sprintf("web%d", i+1)] = foil.Web{
			Points: points,
			Plies: []foil.Ply{{
				Thickness: foil.ConstantThickness(meshCfg.WebPlyThickness),
				Material:  len(skins) + i + 1,
			}},
			NormalRef: normalRef,
			NCell:     meshCfg.WebNCell,
		}
	}

	return &foil.AirfoilMesh{
		Skins:        skins,
		Webs:         webs,
		AirfoilInput: ex.Outline,
		NElem:        meshCfg.NElem,
		VTKPath:      vtkPath,
	}
}
