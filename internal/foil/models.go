// Package foil generates structured 2D cross-section meshes for airfoil
// sections: skin plies extruded inward from the outline and shear webs
// discretized between the skins.
package foil

import (
	"math"

	"github.com/wr1/b3-2d/internal/errors"
)

// ThicknessType selects between a constant thickness and a per-point array.
type ThicknessType string

const (
	ThicknessConstant ThicknessType = "constant"
	ThicknessArray    ThicknessType = "array"
)

// Thickness describes a ply or skin thickness distribution.
type Thickness struct {
	Type  ThicknessType `json:"type"`
	Value float64       `json:"value,omitempty"`
	Array []float64     `json:"array,omitempty"`
}

// ConstantThickness is a convenience constructor.
func ConstantThickness(v float64) Thickness {
	return Thickness{Type: ThicknessConstant, Value: v}
}

// ArrayThickness is a convenience constructor.
func ArrayThickness(vals []float64) Thickness {
	return Thickness{Type: ThicknessArray, Array: vals}
}

// At returns the thickness at node i.
func (t Thickness) At(i int) float64 {
	if t.Type == ThicknessArray {
		if i < 0 || i >= len(t.Array) {
			return 0
		}
		return t.Array[i]
	}
	return t.Value
}

// Validate checks the thickness against the expected node count.
func (t Thickness) Validate(nodes int) error {
	switch t.Type {
	case ThicknessConstant:
		if t.Value < 0 || math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
			return errors.Newf("constant thickness %v is invalid", t.Value).
				Category(errors.CategoryValidation).Build()
		}
	case ThicknessArray:
		if len(t.Array) != nodes {
			return errors.Newf("thickness array has %d values for %d nodes", len(t.Array), nodes).
				Category(errors.CategoryValidation).Build()
		}
		for _, v := range t.Array {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf("thickness array contains invalid value %v", v).
					Category(errors.CategoryValidation).Build()
			}
		}
	default:
		return errors.Newf("unknown thickness type %q", t.Type).
			Category(errors.CategoryValidation).Build()
	}
	return nil
}

// Ply is a single layer of a web layup.
type Ply struct {
	Thickness Thickness `json:"thickness"`
	Material  int       `json:"material"`
}

// Skin is one layer of the outer shell layup. SortIndex fixes the stacking
// order from the outside inwards.
type Skin struct {
	Thickness Thickness `json:"thickness"`
	Material  int       `json:"material"`
	SortIndex int       `json:"sort_index"`
}

// Web is a shear web between the skins.
type Web struct {
	Points    [][2]float64 `json:"points"`
	Plies     []Ply        `json:"plies"`
	NormalRef [2]float64   `json:"normal_ref"`
	NCell     int          `json:"n_cell"`
}

// AirfoilMesh is the full input description for one cross-section mesh.
type AirfoilMesh struct {
	Skins        map[string]Skin `json:"skins"`
	Webs         map[string]Web  `json:"webs"`
	AirfoilInput [][2]float64    `json:"airfoil_input"`
	NElem        int             `json:"n_elem,omitempty"` // outline resampling target, 0 keeps the input
	VTKPath      string          `json:"vtk,omitempty"`    // optional output file written by Generate
}
