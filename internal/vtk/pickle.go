package vtk

import (
	"encoding/gob"
	"os"

	"github.com/wr1/b3-2d/internal/errors"
)

// WritePickle serializes the mesh to a binary file with encoding/gob. The
// .pck artifact lets downstream tooling reload the generated mesh without
// re-parsing VTK text.
func WritePickle(m *Mesh, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	return nil
}

// ReadPickle loads a mesh previously written with WritePickle.
func ReadPickle(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	defer f.Close()
	var m Mesh
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileParsing).FileContext(path).Build()
	}
	return &m, nil
}
