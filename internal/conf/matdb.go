package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Material describes one entry of the material database.
type Material struct {
	ID  int     `yaml:"id" json:"id"`
	Rho float64 `yaml:"rho" json:"rho"` // density
	E   float64 `yaml:"e,omitempty" json:"e,omitempty"`
	Nu  float64 `yaml:"nu,omitempty" json:"nu,omitempty"`
	G   float64 `yaml:"g,omitempty" json:"g,omitempty"`
}

// MatDB maps material names to their properties.
type MatDB map[string]Material

// LoadMatDB reads a material database from a YAML file keyed by material
// name.
func LoadMatDB(path string) (MatDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading material database %s: %w", path, err)
	}
	var db MatDB
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("error parsing material database %s: %w", path, err)
	}
	return db, nil
}

// ByID returns the name and properties of the material with the given id.
func (db MatDB) ByID(id int) (string, Material, bool) {
	for name, props := range db {
		if props.ID == id {
			return name, props, true
		}
	}
	return "", Material{}, false
}
