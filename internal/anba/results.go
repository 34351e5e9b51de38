package anba

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/wr1/b3-2d/internal/bom"
	"github.com/wr1/b3-2d/internal/errors"
)

// Result holds the solver outputs used by the spanwise plots.
type Result struct {
	MassCenter     [2]float64 `json:"mass_center"`
	ShearCenter    [2]float64 `json:"shear_center"`
	TensionCenter  [2]float64 `json:"tension_center"`
	PrincipalAngle float64    `json:"principal_angle"` // radians
}

// SectionResult pairs a section id with its solver result.
type SectionResult struct {
	SectionID int
	Result    Result
}

// requiredKeys guards against partially written solver outputs.
var requiredKeys = []string{"mass_center", "shear_center", "tension_center", "principal_angle"}

// LoadResult reads one anba_out.json file, requiring all result keys.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileParsing).FileContext(path).Build()
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, errors.Newf("missing required key %s", key).
				Category(errors.CategoryFileParsing).FileContext(path).Build()
		}
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileParsing).FileContext(path).Build()
	}
	return &result, nil
}

// LoadSpanwise collects section_*/anba_out.json files under outputDir,
// sorted by section id. Incomplete files are skipped with a warning.
func LoadSpanwise(outputDir string) ([]SectionResult, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, "section_*", "anba_out.json"))
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).Build()
	}

	var out []SectionResult
	for _, path := range matches {
		sid, ok := bom.SectionIDFromPath(path)
		if !ok {
			continue
		}
		result, err := LoadResult(path)
		if err != nil {
			slog.Warn("skipping solver result", "path", path, "error", err)
			continue
		}
		out = append(out, SectionResult{SectionID: sid, Result: *result})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out, nil
}
