package foil

import (
	"sort"

	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/vtk"
)

// minCellArea filters out degenerate quads produced by zero thickness spans.
const minCellArea = 1e-14

// Generate builds the structured cross-section mesh for the given input and
// writes it to the configured VTK path when one is set. The resulting mesh
// carries material_id, ply_id and Area cell data.
func Generate(input *AirfoilMesh) (*vtk.Mesh, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	outline := input.AirfoilInput
	skinNames := sortedSkinNames(input.Skins)

	// Thickness arrays must line up with the input outline before any
	// resampling interpolates over them.
	for _, name := range skinNames {
		if err := input.Skins[name].Thickness.Validate(len(outline)); err != nil {
			return nil, errors.New(err).Context("skin", name).Category(errors.CategoryValidation).Build()
		}
	}

	// Optional resampling redistributes the outline and every per-point
	// thickness array over the same arc length parameterization.
	if input.NElem > 0 {
		thicknessArrays := make(map[string][]float64)
		for _, name := range skinNames {
			if input.Skins[name].Thickness.Type == ThicknessArray {
				thicknessArrays[name] = input.Skins[name].Thickness.Array
			}
		}
		resampled, resampledVals := resamplePolyline(outline, thicknessArrays, input.NElem, true)
		outline = resampled
		for name, vals := range resampledVals {
			skin := input.Skins[name]
			skin.Thickness = ArrayThickness(vals)
			input.Skins[name] = skin
		}
	}

	m := vtk.NewMesh()
	var materialIDs, plyIDs, areas []float64
	plyCounter := 0

	if err := meshSkins(m, input, outline, skinNames, &materialIDs, &plyIDs, &areas, &plyCounter); err != nil {
		return nil, err
	}
	if err := meshWebs(m, input, &materialIDs, &plyIDs, &areas, &plyCounter); err != nil {
		return nil, err
	}

	if err := m.AddCellData("material_id", materialIDs); err != nil {
		return nil, err
	}
	if err := m.AddCellData("ply_id", plyIDs); err != nil {
		return nil, err
	}
	if err := m.AddCellData("Area", areas); err != nil {
		return nil, err
	}

	if input.VTKPath != "" {
		if err := vtk.WriteLegacy(m, input.VTKPath, "airfoil cross-section mesh"); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func validateInput(input *AirfoilMesh) error {
	if input == nil {
		return errors.Newf("nil mesh input").Category(errors.CategoryValidation).Build()
	}
	if len(input.AirfoilInput) < 3 {
		return errors.Newf("airfoil outline needs at least 3 points, got %d", len(input.AirfoilInput)).
			Category(errors.CategoryValidation).Build()
	}
	if !ValidatePoints(input.AirfoilInput) {
		return errors.Newf("airfoil outline contains non-finite coordinates").
			Category(errors.CategoryValidation).Build()
	}
	if len(input.Skins) == 0 && len(input.Webs) == 0 {
		return errors.Newf("mesh input defines neither skins nor webs").
			Category(errors.CategoryValidation).Build()
	}
	for name, web := range input.Webs {
		if len(web.Points) < 2 {
			return errors.Newf("web %s needs at least 2 points", name).
				Category(errors.CategoryValidation).Build()
		}
		if !ValidatePoints(web.Points) {
			return errors.Newf("web %s contains non-finite coordinates", name).
				Category(errors.CategoryValidation).Build()
		}
		if len(web.Plies) == 0 {
			return errors.Newf("web %s has no plies", name).
				Category(errors.CategoryValidation).Build()
		}
	}
	return nil
}

// sortedSkinNames orders skins by SortIndex, ties broken by name for
// determinism.
func sortedSkinNames(skins map[string]Skin) []string {
	names := make([]string, 0, len(skins))
	for name := range skins {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := skins[names[i]], skins[names[j]]
		if a.SortIndex != b.SortIndex {
			return a.SortIndex < b.SortIndex
		}
		return names[i] < names[j]
	})
	return names
}

// meshSkins extrudes the skin stack inward from the outline, one quad ring
// per skin layer. Rings share their boundary point rows.
func meshSkins(m *vtk.Mesh, input *AirfoilMesh, outline [][2]float64, skinNames []string,
	materialIDs, plyIDs, areas *[]float64, plyCounter *int) error {

	if len(skinNames) == 0 {
		return nil
	}
	n := len(outline)
	normals := inwardNormals(outline)
	offsets := make([]float64, n)

	prevRow := make([]int, n)
	for i, p := range outline {
		prevRow[i] = m.NumPoints()
		m.Points = append(m.Points, [3]float64{p[0], p[1], 0})
	}

	for _, name := range skinNames {
		skin := input.Skins[name]
		nextRow := make([]int, n)
		for i := range outline {
			offsets[i] += skin.Thickness.At(i)
			nextRow[i] = m.NumPoints()
			m.Points = append(m.Points, [3]float64{
				outline[i][0] + normals[i][0]*offsets[i],
				outline[i][1] + normals[i][1]*offsets[i],
				0,
			})
		}
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			quad := []int{prevRow[i], prevRow[j], nextRow[j], nextRow[i]}
			area := quadArea(m, quad)
			if area < minCellArea {
				continue
			}
			m.Cells = append(m.Cells, vtk.Cell{Type: vtk.CellQuad, Points: quad})
			*materialIDs = append(*materialIDs, float64(skin.Material))
			*plyIDs = append(*plyIDs, float64(*plyCounter))
			*areas = append(*areas, area)
		}
		prevRow = nextRow
		*plyCounter++
	}
	return nil
}

// meshWebs discretizes every web polyline into NCell spans and extrudes the
// ply stack along the web normal.
func meshWebs(m *vtk.Mesh, input *AirfoilMesh, materialIDs, plyIDs, areas *[]float64, plyCounter *int) error {
	webNames := make([]string, 0, len(input.Webs))
	for name := range input.Webs {
		webNames = append(webNames, name)
	}
	sort.Strings(webNames)

	for _, name := range webNames {
		web := input.Webs[name]
		ncell := web.NCell
		if ncell < 1 {
			ncell = 1
		}
		line, _ := resamplePolyline(web.Points, nil, ncell+1, false)
		normal := normalize(web.NormalRef)
		if normal[0] == 0 && normal[1] == 0 {
			return errors.Newf("web %s has a zero normal reference", name).
				Category(errors.CategoryMeshGen).Build()
		}

		for plyIdx, ply := range web.Plies {
			if err := ply.Thickness.Validate(len(line)); err != nil {
				return errors.New(err).Context("web", name).Context("ply", plyIdx).
					Category(errors.CategoryValidation).Build()
			}
		}

		prevRow := make([]int, len(line))
		for i, p := range line {
			prevRow[i] = m.NumPoints()
			m.Points = append(m.Points, [3]float64{p[0], p[1], 0})
		}
		offset := 0.0
		for _, ply := range web.Plies {
			offset += ply.Thickness.At(0)
			nextRow := make([]int, len(line))
			for i, p := range line {
				nextRow[i] = m.NumPoints()
				m.Points = append(m.Points, [3]float64{
					p[0] + normal[0]*offset,
					p[1] + normal[1]*offset,
					0,
				})
			}
			for i := 0; i < len(line)-1; i++ {
				quad := []int{prevRow[i], prevRow[i+1], nextRow[i+1], nextRow[i]}
				area := quadArea(m, quad)
				if area < minCellArea {
					continue
				}
				m.Cells = append(m.Cells, vtk.Cell{Type: vtk.CellQuad, Points: quad})
				*materialIDs = append(*materialIDs, float64(ply.Material))
				*plyIDs = append(*plyIDs, float64(*plyCounter))
				*areas = append(*areas, area)
			}
			prevRow = nextRow
			*plyCounter++
		}
	}
	return nil
}

func quadArea(m *vtk.Mesh, indices []int) float64 {
	pts := make([][2]float64, len(indices))
	for i, idx := range indices {
		pts[i] = [2]float64{m.Points[idx][0], m.Points[idx][1]}
	}
	return polygonArea(pts)
}
