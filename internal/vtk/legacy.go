package vtk

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wr1/b3-2d/internal/errors"
)

// tokenReader walks an ASCII legacy VTK body word by word, with one token
// of pushback for section keyword lookahead.
type tokenReader struct {
	scanner *bufio.Scanner
	pushed  string
	hasPush bool
}

func newTokenReader(r io.Reader) *tokenReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	s.Split(bufio.ScanWords)
	return &tokenReader{scanner: s}
}

func (t *tokenReader) next() (string, bool) {
	if t.hasPush {
		t.hasPush = false
		return t.pushed, true
	}
	if t.scanner.Scan() {
		return t.scanner.Text(), true
	}
	return "", false
}

func (t *tokenReader) push(tok string) {
	t.pushed = tok
	t.hasPush = true
}

func (t *tokenReader) nextInt() (int, error) {
	tok, ok := t.next()
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.Atoi(tok)
}

func (t *tokenReader) nextFloat() (float64, error) {
	tok, ok := t.next()
	if !ok {
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(tok, 64)
}

func (t *tokenReader) floats(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := t.nextFloat()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadLegacy parses a legacy ASCII VTK file holding a POLYDATA or
// UNSTRUCTURED_GRID dataset.
func ReadLegacy(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	defer f.Close()

	m, err := parseLegacy(f)
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryFileParsing).FileContext(path).Build()
	}
	return m, nil
}

func parseLegacy(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if !strings.HasPrefix(header, "# vtk DataFile") {
		return nil, fmt.Errorf("not a legacy VTK file: %q", strings.TrimSpace(header))
	}
	// Title line is free text.
	if _, err := br.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("reading title: %w", err)
	}
	format, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading format: %w", err)
	}
	if strings.TrimSpace(format) != "ASCII" {
		return nil, fmt.Errorf("unsupported format %q, only ASCII is supported", strings.TrimSpace(format))
	}

	tr := newTokenReader(br)
	tok, ok := tr.next()
	if !ok || tok != "DATASET" {
		return nil, fmt.Errorf("expected DATASET, got %q", tok)
	}
	dataset, _ := tr.next()
	switch dataset {
	case "POLYDATA", "UNSTRUCTURED_GRID":
	default:
		return nil, fmt.Errorf("unsupported dataset type %q", dataset)
	}

	m := NewMesh()
	for {
		section, ok := tr.next()
		if !ok {
			break
		}
		switch section {
		case "POINTS":
			n, err := tr.nextInt()
			if err != nil {
				return nil, fmt.Errorf("POINTS count: %w", err)
			}
			tr.next() // data type
			coords, err := tr.floats(3 * n)
			if err != nil {
				return nil, fmt.Errorf("POINTS values: %w", err)
			}
			m.Points = make([][3]float64, n)
			for i := 0; i < n; i++ {
				m.Points[i] = [3]float64{coords[3*i], coords[3*i+1], coords[3*i+2]}
			}
		case "POLYGONS", "LINES", "VERTICES":
			if err := readLegacyCellBlock(tr, m, section); err != nil {
				return nil, err
			}
		case "CELLS":
			if err := readLegacyUnstructuredCells(tr, m); err != nil {
				return nil, err
			}
		case "CELL_TYPES":
			n, err := tr.nextInt()
			if err != nil {
				return nil, fmt.Errorf("CELL_TYPES count: %w", err)
			}
			for i := 0; i < n; i++ {
				ct, err := tr.nextInt()
				if err != nil {
					return nil, fmt.Errorf("CELL_TYPES values: %w", err)
				}
				if i < len(m.Cells) {
					m.Cells[i].Type = CellType(ct)
				}
			}
		case "CELL_DATA":
			n, err := tr.nextInt()
			if err != nil {
				return nil, fmt.Errorf("CELL_DATA count: %w", err)
			}
			if err := readLegacyAttributes(tr, m.CellData, n); err != nil {
				return nil, err
			}
		case "POINT_DATA":
			n, err := tr.nextInt()
			if err != nil {
				return nil, fmt.Errorf("POINT_DATA count: %w", err)
			}
			if err := readLegacyAttributes(tr, m.PointData, n); err != nil {
				return nil, err
			}
		default:
			// Skip unknown sections token by token until a known keyword shows
			// up again; the loop naturally resynchronizes on the next keyword.
		}
	}
	return m, nil
}

func readLegacyCellBlock(tr *tokenReader, m *Mesh, section string) error {
	n, err := tr.nextInt()
	if err != nil {
		return fmt.Errorf("%s count: %w", section, err)
	}
	if _, err := tr.nextInt(); err != nil { // total size, unused
		return fmt.Errorf("%s size: %w", section, err)
	}
	for i := 0; i < n; i++ {
		npts, err := tr.nextInt()
		if err != nil {
			return fmt.Errorf("%s entry: %w", section, err)
		}
		pts := make([]int, npts)
		for i := range pts {
			if pts[i], err = tr.nextInt(); err != nil {
				return fmt.Errorf("%s indices: %w", section, err)
			}
		}
		m.Cells = append(m.Cells, Cell{Type: polyCellType(section, npts), Points: pts})
	}
	return nil
}

func polyCellType(section string, npts int) CellType {
	switch section {
	case "VERTICES":
		return CellVertex
	case "LINES":
		if npts > 2 {
			return CellPolyLine
		}
		return CellLine
	default:
		switch npts {
		case 3:
			return CellTriangle
		case 4:
			return CellQuad
		default:
			return CellPolygon
		}
	}
}

func readLegacyUnstructuredCells(tr *tokenReader, m *Mesh) error {
	n, err := tr.nextInt()
	if err != nil {
		return fmt.Errorf("CELLS count: %w", err)
	}
	if _, err := tr.nextInt(); err != nil {
		return fmt.Errorf("CELLS size: %w", err)
	}
	for i := 0; i < n; i++ {
		npts, err := tr.nextInt()
		if err != nil {
			return fmt.Errorf("CELLS entry: %w", err)
		}
		pts := make([]int, npts)
		for i := range pts {
			if pts[i], err = tr.nextInt(); err != nil {
				return fmt.Errorf("CELLS indices: %w", err)
			}
		}
		// Type is filled in by the CELL_TYPES section.
		m.Cells = append(m.Cells, Cell{Type: CellPolygon, Points: pts})
	}
	return nil
}

// readLegacyAttributes parses SCALARS and FIELD attribute blocks.
func readLegacyAttributes(tr *tokenReader, target map[string][]float64, n int) error {
	for {
		kind, ok := tr.next()
		if !ok {
			return nil
		}
		switch kind {
		case "SCALARS":
			name, _ := tr.next()
			tr.next() // data type
			// Skip the optional component count up to the mandatory
			// LOOKUP_TABLE line.
			for {
				tok, ok := tr.next()
				if !ok {
					return io.ErrUnexpectedEOF
				}
				if tok == "LOOKUP_TABLE" {
					tr.next() // table name
					break
				}
			}
			vals, err := tr.floats(n)
			if err != nil {
				return fmt.Errorf("SCALARS values for %s: %w", name, err)
			}
			target[name] = vals
		case "FIELD":
			tr.next() // field data name
			narrays, err := tr.nextInt()
			if err != nil {
				return fmt.Errorf("FIELD array count: %w", err)
			}
			for i := 0; i < narrays; i++ {
				name, _ := tr.next()
				ncomp, err := tr.nextInt()
				if err != nil {
					return fmt.Errorf("FIELD components: %w", err)
				}
				ntuples, err := tr.nextInt()
				if err != nil {
					return fmt.Errorf("FIELD tuples: %w", err)
				}
				tr.next() // data type
				vals, err := tr.floats(ncomp * ntuples)
				if err != nil {
					return fmt.Errorf("FIELD values for %s: %w", name, err)
				}
				target[name] = vals
			}
		default:
			// A section keyword (POINT_DATA, CELL_DATA, ...) terminates the
			// attribute block; hand it back to the outer loop.
			tr.push(kind)
			return nil
		}
	}
}

// WriteLegacy writes the mesh as a legacy ASCII UNSTRUCTURED_GRID file with
// all cell and point data arrays in FIELD blocks.
func WriteLegacy(m *Mesh, path, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if title == "" {
		title = "b3-2d mesh"
	}
	fmt.Fprintf(w, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET UNSTRUCTURED_GRID\n", title)

	fmt.Fprintf(w, "POINTS %d float\n", len(m.Points))
	for _, p := range m.Points {
		fmt.Fprintf(w, "%g %g %g\n", p[0], p[1], p[2])
	}

	size := 0
	for _, c := range m.Cells {
		size += 1 + len(c.Points)
	}
	fmt.Fprintf(w, "CELLS %d %d\n", len(m.Cells), size)
	for _, c := range m.Cells {
		fmt.Fprintf(w, "%d", len(c.Points))
		for _, pi := range c.Points {
			fmt.Fprintf(w, " %d", pi)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "CELL_TYPES %d\n", len(m.Cells))
	for _, c := range m.Cells {
		fmt.Fprintf(w, "%d\n", c.Type)
	}

	if len(m.CellData) > 0 {
		fmt.Fprintf(w, "CELL_DATA %d\n", len(m.Cells))
		writeFieldBlock(w, m.CellData, len(m.Cells))
	}
	if len(m.PointData) > 0 {
		fmt.Fprintf(w, "POINT_DATA %d\n", len(m.Points))
		writeFieldBlock(w, m.PointData, len(m.Points))
	}

	if err := w.Flush(); err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).FileContext(path).Build()
	}
	return nil
}

func writeFieldBlock(w io.Writer, data map[string][]float64, n int) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "FIELD FieldData %d\n", len(names))
	for _, name := range names {
		vals := data[name]
		fmt.Fprintf(w, "%s 1 %d float\n", name, n)
		for i, v := range vals {
			if i > 0 && i%9 == 0 {
				fmt.Fprintln(w)
			} else if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%g", v)
		}
		fmt.Fprintln(w)
	}
}
