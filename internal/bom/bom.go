// Package bom computes bill-of-materials roll-ups from generated section
// meshes: per-material areas and, with a material database, masses.
package bom

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wr1/b3-2d/internal/conf"
	"github.com/wr1/b3-2d/internal/errors"
	"github.com/wr1/b3-2d/internal/vtk"
)

// BOM is the per-section bill of materials.
type BOM struct {
	TotalArea         float64            `json:"total_area"`
	AreasPerMaterial  map[string]float64 `json:"areas_per_material"`
	TotalMass         *float64           `json:"total_mass,omitempty"`
	MassesPerMaterial map[string]float64 `json:"masses_per_material,omitempty"`
}

// Compute builds the BOM from the Area and material_id cell data of a
// generated mesh. It returns nil when the mesh lacks either array. With a
// material database, masses are included for materials that define a
// density.
func Compute(m *vtk.Mesh, matdb conf.MatDB) *BOM {
	areas, okArea := m.CellData["Area"]
	mats, okMat := m.CellData["material_id"]
	if !okArea || !okMat {
		return nil
	}

	out := &BOM{AreasPerMaterial: make(map[string]float64)}
	for i, area := range areas {
		out.TotalArea += area
		key := materialKey(mats[i])
		out.AreasPerMaterial[key] += area
	}

	if len(matdb) == 0 {
		return out
	}

	out.MassesPerMaterial = make(map[string]float64)
	totalMass := 0.0
	for key, area := range out.AreasPerMaterial {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		name, props, ok := matdb.ByID(id)
		if !ok {
			slog.Warn("material id not found in material database, skipping mass",
				"material_id", id)
			continue
		}
		if props.Rho <= 0 {
			slog.Warn("material has no density, skipping mass",
				"material", name, "material_id", id)
			continue
		}
		mass := area * props.Rho
		out.MassesPerMaterial[key] = mass
		totalMass += mass
	}
	out.TotalMass = &totalMass
	return out
}

func materialKey(id float64) string {
	return strconv.Itoa(int(id))
}

// Write serializes the BOM as JSON to the given path.
func Write(b *BOM, path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	return nil
}

// SectionBOM pairs a section id with its BOM for spanwise roll-ups.
type SectionBOM struct {
	SectionID int
	BOM       BOM
}

// LoadSpanwise collects section_*/bom.json files under outputDir, sorted by
// section id. Files with missing required keys are skipped with a warning.
func LoadSpanwise(outputDir string) ([]SectionBOM, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, "section_*", "bom.json"))
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).Build()
	}

	var out []SectionBOM
	for _, path := range matches {
		sid, ok := SectionIDFromPath(path)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("failed to read BOM file", "path", path, "error", err)
			continue
		}
		var b BOM
		if err := json.Unmarshal(data, &b); err != nil {
			slog.Warn("failed to parse BOM file", "path", path, "error", err)
			continue
		}
		if b.AreasPerMaterial == nil {
			slog.Warn("BOM file is missing required keys", "path", path)
			continue
		}
		out = append(out, SectionBOM{SectionID: sid, BOM: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out, nil
}

// SectionIDFromPath parses the section id out of a section_<i> directory in
// the path.
func SectionIDFromPath(path string) (int, bool) {
	dir := filepath.Base(filepath.Dir(path))
	name, ok := strings.CutPrefix(dir, "section_")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	return id, true
}
