package vtk

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wr1/b3-2d/internal/errors"
)

type xmlVTKFile struct {
	XMLName  xml.Name     `xml:"VTKFile"`
	Type     string       `xml:"type,attr"`
	PolyData *xmlPolyData `xml:"PolyData"`
}

type xmlPolyData struct {
	Pieces []xmlPiece `xml:"Piece"`
}

type xmlPiece struct {
	NumberOfPoints int            `xml:"NumberOfPoints,attr"`
	NumberOfLines  int            `xml:"NumberOfLines,attr"`
	NumberOfPolys  int            `xml:"NumberOfPolys,attr"`
	Points         *xmlArrayBlock `xml:"Points"`
	Lines          *xmlArrayBlock `xml:"Lines"`
	Polys          *xmlArrayBlock `xml:"Polys"`
	CellData       *xmlArrayBlock `xml:"CellData"`
	PointData      *xmlArrayBlock `xml:"PointData"`
}

type xmlArrayBlock struct {
	Arrays []xmlDataArray `xml:"DataArray"`
}

type xmlDataArray struct {
	Name               string `xml:"Name,attr"`
	Format             string `xml:"format,attr"`
	NumberOfComponents string `xml:"NumberOfComponents,attr"`
	Body               string `xml:",chardata"`
}

func (b *xmlArrayBlock) byName(name string) *xmlDataArray {
	if b == nil {
		return nil
	}
	for i := range b.Arrays {
		if b.Arrays[i].Name == name {
			return &b.Arrays[i]
		}
	}
	return nil
}

func (a *xmlDataArray) floats() ([]float64, error) {
	if a.Format != "" && a.Format != "ascii" {
		return nil, fmt.Errorf("data array %s has unsupported format %q, only ascii is supported", a.Name, a.Format)
	}
	fields := strings.Fields(a.Body)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("data array %s: %w", a.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

func (a *xmlDataArray) ints() ([]int, error) {
	vals, err := a.floats()
	if err != nil {
		return nil, err
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = int(v)
	}
	return out, nil
}

// ReadVTP parses an XML VTK PolyData file with ascii data arrays.
func ReadVTP(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	m, err := parseVTP(data)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileParsing).FileContext(path).Build()
	}
	return m, nil
}

func parseVTP(data []byte) (*Mesh, error) {
	var file xmlVTKFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing VTP XML: %w", err)
	}
	if file.Type != "PolyData" || file.PolyData == nil {
		return nil, fmt.Errorf("unsupported VTKFile type %q, expected PolyData", file.Type)
	}
	if len(file.PolyData.Pieces) == 0 {
		return nil, fmt.Errorf("VTP file contains no pieces")
	}

	m := NewMesh()
	for i := range file.PolyData.Pieces {
		piece, err := parsePiece(&file.PolyData.Pieces[i])
		if err != nil {
			return nil, err
		}
		if m.NumPoints() == 0 && m.NumCells() == 0 {
			m = piece
		} else {
			m = Merge(m, piece)
		}
	}
	return m, nil
}

func parsePiece(piece *xmlPiece) (*Mesh, error) {
	m := NewMesh()

	if piece.Points == nil || len(piece.Points.Arrays) == 0 {
		return nil, fmt.Errorf("piece has no Points array")
	}
	coords, err := piece.Points.Arrays[0].floats()
	if err != nil {
		return nil, err
	}
	if len(coords) != 3*piece.NumberOfPoints {
		return nil, fmt.Errorf("piece declares %d points but has %d coordinates", piece.NumberOfPoints, len(coords))
	}
	m.Points = make([][3]float64, piece.NumberOfPoints)
	for i := 0; i < piece.NumberOfPoints; i++ {
		m.Points[i] = [3]float64{coords[3*i], coords[3*i+1], coords[3*i+2]}
	}

	// VTK orders cell data as verts, lines, polys, strips; verts and strips
	// are not used by the draping chain.
	if err := appendConnectivity(m, piece.Lines, piece.NumberOfLines, false); err != nil {
		return nil, err
	}
	if err := appendConnectivity(m, piece.Polys, piece.NumberOfPolys, true); err != nil {
		return nil, err
	}

	if piece.CellData != nil {
		for i := range piece.CellData.Arrays {
			a := &piece.CellData.Arrays[i]
			vals, err := a.floats()
			if err != nil {
				return nil, err
			}
			if err := m.AddCellData(a.Name, vals); err != nil {
				return nil, err
			}
		}
	}
	if piece.PointData != nil {
		for i := range piece.PointData.Arrays {
			a := &piece.PointData.Arrays[i]
			vals, err := a.floats()
			if err != nil {
				return nil, err
			}
			if err := m.AddPointData(a.Name, vals); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func appendConnectivity(m *Mesh, block *xmlArrayBlock, count int, poly bool) error {
	if block == nil || count == 0 {
		return nil
	}
	connArr := block.byName("connectivity")
	offsArr := block.byName("offsets")
	if connArr == nil || offsArr == nil {
		return fmt.Errorf("cell block is missing connectivity or offsets")
	}
	conn, err := connArr.ints()
	if err != nil {
		return err
	}
	offsets, err := offsArr.ints()
	if err != nil {
		return err
	}
	if len(offsets) != count {
		return fmt.Errorf("cell block declares %d cells but has %d offsets", count, len(offsets))
	}
	start := 0
	for _, end := range offsets {
		if end < start || end > len(conn) {
			return fmt.Errorf("invalid offset %d in cell block", end)
		}
		pts := make([]int, end-start)
		copy(pts, conn[start:end])
		kind := CellLine
		if poly {
			kind = polyCellType("POLYGONS", len(pts))
		} else if len(pts) > 2 {
			kind = CellPolyLine
		}
		m.Cells = append(m.Cells, Cell{Type: kind, Points: pts})
		start = end
	}
	return nil
}

// ReadFile reads a mesh file, dispatching on the file extension and, for
// unknown extensions, on the leading bytes.
func ReadFile(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtp":
		return ReadVTP(path)
	case ".vtk":
		return ReadLegacy(path)
	}
	head, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	trimmed := strings.TrimSpace(string(head[:min(len(head), 64)]))
	if strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<VTKFile") {
		return ReadVTP(path)
	}
	return ReadLegacy(path)
}
