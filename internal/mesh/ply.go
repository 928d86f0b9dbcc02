package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"safespawn/internal/logging"
)

type plyProperty struct {
	Name      string
	Type      string // scalar type, or the element type of a list
	IsList    bool
	CountType string
}

type plyElement struct {
	Name  string
	Count int
	Props []plyProperty
}

type plyHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Elements []plyElement
}

// LoadPLY reads a PLY file. Vertex x/y/z and the face index list are kept;
// every other property and element is skipped. Polygons are fan-triangulated.
func LoadPLY(path string) (*Mesh, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ReadPLY(bufio.NewReader(f), strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("mesh: %s: %w", path, err)
	}

	logging.Logger().Debug("loaded PLY", "path", path, "vertices", len(m.Verts),
		"triangles", len(m.Tris), "elapsed", time.Since(start))
	return m, nil
}

// ReadPLY parses a PLY stream positioned at its magic line.
func ReadPLY(r *bufio.Reader, name string) (*Mesh, error) {
	h, err := parsePLYHeader(r)
	if err != nil {
		return nil, err
	}

	var vr valueReader
	switch h.Format {
	case "ascii":
		s := bufio.NewScanner(r)
		s.Split(bufio.ScanWords)
		vr = &asciiReader{s: s}
	case "binary_little_endian":
		vr = &binaryReader{r: r, order: binary.LittleEndian}
	case "binary_big_endian":
		vr = &binaryReader{r: r, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: PLY encoding %q", ErrUnsupportedFormat, h.Format)
	}

	m := &Mesh{Name: name}
	for _, el := range h.Elements {
		switch el.Name {
		case "vertex":
			err = readVertices(vr, el, m)
		case "face":
			err = readFaces(vr, el, m)
		default:
			err = skipElement(vr, el)
		}
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", el.Name, err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func parsePLYHeader(r *bufio.Reader) (*plyHeader, error) {
	magic, err := r.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("missing ply magic")
	}

	h := &plyHeader{}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if h.Format == "" {
				return nil, fmt.Errorf("header: no format line")
			}
			return h, nil
		case "comment", "obj_info":
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("header: bad format line %q", strings.TrimSpace(line))
			}
			h.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("header: bad element line %q", strings.TrimSpace(line))
			}
			n, err := strconv.Atoi(parts[2])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("header: bad element count %q", parts[2])
			}
			h.Elements = append(h.Elements, plyElement{Name: parts[1], Count: n})
		case "property":
			if len(h.Elements) == 0 {
				return nil, fmt.Errorf("header: property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			el := &h.Elements[len(h.Elements)-1]
			el.Props = append(el.Props, prop)
		default:
			return nil, fmt.Errorf("header: unknown keyword %q", parts[0])
		}
	}
}

func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		p := plyProperty{Name: parts[3], Type: parts[2], IsList: true, CountType: parts[1]}
		if typeSize(p.Type) == 0 || typeSize(p.CountType) == 0 {
			return p, fmt.Errorf("%w: list property %q of %s %s", ErrUnsupportedFormat, p.Name, p.CountType, p.Type)
		}
		return p, nil
	}
	if len(parts) != 2 {
		return plyProperty{}, fmt.Errorf("header: bad property %q", strings.Join(parts, " "))
	}
	p := plyProperty{Name: parts[1], Type: parts[0]}
	if typeSize(p.Type) == 0 {
		return p, fmt.Errorf("%w: property %q of type %s", ErrUnsupportedFormat, p.Name, p.Type)
	}
	return p, nil
}

func readVertices(vr valueReader, el plyElement, m *Mesh) error {
	xyz := [3]int{-1, -1, -1}
	for i, p := range el.Props {
		switch p.Name {
		case "x":
			xyz[0] = i
		case "y":
			xyz[1] = i
		case "z":
			xyz[2] = i
		}
	}
	if xyz[0] < 0 || xyz[1] < 0 || xyz[2] < 0 {
		return fmt.Errorf("missing x, y or z property")
	}

	m.Verts = make([][3]float32, el.Count)
	for v := range el.Count {
		for i, p := range el.Props {
			if p.IsList {
				if err := skipList(vr, p); err != nil {
					return err
				}
				continue
			}
			val, err := vr.scalar(p.Type)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", v, err)
			}
			for k := range 3 {
				if xyz[k] == i {
					m.Verts[v][k] = float32(val)
				}
			}
		}
	}
	return nil
}

func readFaces(vr valueReader, el plyElement, m *Mesh) error {
	idx := -1
	for i, p := range el.Props {
		if p.IsList && (p.Name == "vertex_indices" || p.Name == "vertex_index") {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("missing vertex_indices list")
	}

	m.Tris = make([][3]int32, 0, el.Count)
	poly := make([]int32, 0, 8)
	for f := range el.Count {
		for i, p := range el.Props {
			if i != idx {
				if err := skipProperty(vr, p); err != nil {
					return err
				}
				continue
			}
			n, err := vr.scalar(p.CountType)
			if err != nil {
				return fmt.Errorf("face %d: %w", f, err)
			}
			poly = poly[:0]
			for range int(n) {
				vi, err := vr.scalar(p.Type)
				if err != nil {
					return fmt.Errorf("face %d: %w", f, err)
				}
				poly = append(poly, int32(vi))
			}
			for k := 1; k+1 < len(poly); k++ {
				m.Tris = append(m.Tris, [3]int32{poly[0], poly[k], poly[k+1]})
			}
		}
	}
	return nil
}

func skipElement(vr valueReader, el plyElement) error {
	for range el.Count {
		for _, p := range el.Props {
			if err := skipProperty(vr, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipProperty(vr valueReader, p plyProperty) error {
	if p.IsList {
		return skipList(vr, p)
	}
	_, err := vr.scalar(p.Type)
	return err
}

func skipList(vr valueReader, p plyProperty) error {
	n, err := vr.scalar(p.CountType)
	if err != nil {
		return err
	}
	for range int(n) {
		if _, err := vr.scalar(p.Type); err != nil {
			return err
		}
	}
	return nil
}

// typeSize returns the byte width of a PLY scalar type, 0 if unknown.
func typeSize(t string) int {
	switch t {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

type valueReader interface {
	scalar(typ string) (float64, error)
}

type asciiReader struct {
	s *bufio.Scanner
}

func (a *asciiReader) scalar(string) (float64, error) {
	if !a.s.Scan() {
		if err := a.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.s.Text(), 64)
}

type binaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) scalar(typ string) (float64, error) {
	n := typeSize(typ)
	if _, err := io.ReadFull(b.r, b.buf[:n]); err != nil {
		return 0, err
	}
	p := b.buf[:n]
	switch typ {
	case "char", "int8":
		return float64(int8(p[0])), nil
	case "uchar", "uint8":
		return float64(p[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(p))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(p)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(p))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(p)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(p))), nil
	default:
		return math.Float64frombits(b.order.Uint64(p)), nil
	}
}
