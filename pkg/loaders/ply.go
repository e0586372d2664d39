package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one "element" block: its name, count and properties in file order
type PLYElement struct {
	Name  string
	Count int
	Props []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// LoadPLY loads a PLY file as a triangle mesh
func LoadPLY(filename string) (*geometry.TriangleMesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	return ReadPLY(file)
}

// ReadPLY decodes an ASCII or binary PLY stream. Vertex positions are
// required; nx/ny/nz and u/v (or s/t) are picked up when present. Polygons
// with more than three vertices are split into a triangle fan.
func ReadPLY(r io.Reader) (*geometry.TriangleMesh, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		values = &asciiValueReader{reader: reader}
	case "binary_little_endian":
		values = &binaryValueReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValueReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("PLY format %q: %w", header.Format, ErrUnsupportedFormat)
	}

	mesh := &geometry.TriangleMesh{}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readPLYVertices(values, element, mesh)
		case "face":
			err = readPLYFaces(values, element, mesh)
		default:
			err = skipPLYElement(values, element)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read PLY %s data: %w", element.Name, err)
		}
	}

	if len(mesh.Positions) == 0 {
		return nil, fmt.Errorf("PLY file has no vertices")
	}
	return mesh, nil
}

// parsePLYHeader reads up to and including "end_header"
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("missing ply magic number")
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("error reading header: %w", err)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, fmt.Errorf("missing format line")
			}
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line")
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line")
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}
			current := &header.Elements[len(header.Elements)-1]
			current.Props = append(current.Props, prop)
		default:
			return nil, fmt.Errorf("unexpected header line %q", strings.TrimSpace(line))
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

func readPLYVertices(values plyValueReader, element PLYElement, mesh *geometry.TriangleMesh) error {
	found := make(map[string]bool)
	for _, prop := range element.Props {
		found[plyVertexChannel(prop.Name)] = true
	}
	if !found["x"] || !found["y"] || !found["z"] {
		return fmt.Errorf("vertex element lacks x, y or z")
	}
	hasNormals := found["nx"] && found["ny"] && found["nz"]
	hasUVs := found["u"] && found["v"]

	for i := 0; i < element.Count; i++ {
		channels := make(map[string]float64, len(element.Props))
		for _, prop := range element.Props {
			if prop.IsList {
				if err := skipPLYList(values, prop); err != nil {
					return err
				}
				continue
			}
			v, err := values.read(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d property %s: %w", i, prop.Name, err)
			}
			channels[plyVertexChannel(prop.Name)] = v
		}

		mesh.Positions = append(mesh.Positions, core.NewVec3(channels["x"], channels["y"], channels["z"]))
		if hasNormals {
			mesh.Normals = append(mesh.Normals, core.NewVec3(channels["nx"], channels["ny"], channels["nz"]).Normalize())
		}
		if hasUVs {
			// PLY puts v = 0 at the bottom of the image, textures at the top
			mesh.UVs = append(mesh.UVs, core.NewVec2(channels["u"], 1-channels["v"]))
		}
	}
	return nil
}

// plyVertexChannel maps property name aliases onto one channel name
func plyVertexChannel(name string) string {
	switch name {
	case "s", "texture_u", "texture_s":
		return "u"
	case "t", "texture_v", "texture_t":
		return "v"
	default:
		return name
	}
}

func readPLYFaces(values plyValueReader, element PLYElement, mesh *geometry.TriangleMesh) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Props {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipPLYProperty(values, prop); err != nil {
					return fmt.Errorf("face %d property %s: %w", i, prop.Name, err)
				}
				continue
			}

			count, err := values.read(prop.ListType)
			if err != nil {
				return fmt.Errorf("face %d vertex count: %w", i, err)
			}
			if count < 3 {
				return fmt.Errorf("face %d has %v vertices", i, count)
			}

			indices := make([]int, int(count))
			for j := range indices {
				v, err := values.read(prop.DataType)
				if err != nil {
					return fmt.Errorf("face %d index %d: %w", i, j, err)
				}
				indices[j] = int(v)
			}

			for j := 1; j+1 < len(indices); j++ {
				mesh.Faces = append(mesh.Faces, [3]int{indices[0], indices[j], indices[j+1]})
			}
		}
	}
	return nil
}

func skipPLYElement(values plyValueReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Props {
			if err := skipPLYProperty(values, prop); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPLYProperty(values plyValueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipPLYList(values, prop)
	}
	_, err := values.read(prop.Type)
	return err
}

func skipPLYList(values plyValueReader, prop PLYProperty) error {
	count, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for j := 0; j < int(count); j++ {
		if _, err := values.read(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// plyValueReader reads one scalar of a PLY data type as float64
type plyValueReader interface {
	read(dataType string) (float64, error)
}

type asciiValueReader struct {
	reader *bufio.Reader
}

func (a *asciiValueReader) read(dataType string) (float64, error) {
	if _, err := getTypeSize(dataType); err != nil {
		return 0, err
	}
	token, err := readPPMToken(a.reader)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, token)
	}
	return v, nil
}

type binaryValueReader struct {
	reader io.Reader
	order  binary.ByteOrder
}

func (b *binaryValueReader) read(dataType string) (float64, error) {
	size, err := getTypeSize(dataType)
	if err != nil {
		return 0, err
	}

	var buf [8]byte
	if _, err := io.ReadFull(b.reader, buf[:size]); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf[:]))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf[:])), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf[:]))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf[:])), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf[:]))), nil
	default: // "double", "float64"
		return math.Float64frombits(b.order.Uint64(buf[:])), nil
	}
}

// getTypeSize returns the size in bytes of a PLY data type
func getTypeSize(dataType string) (int, error) {
	switch dataType {
	case "char", "int8", "uchar", "uint8":
		return 1, nil
	case "short", "int16", "ushort", "uint16":
		return 2, nil
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4, nil
	case "double", "float64":
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: PLY data type %q", ErrUnsupportedFormat, dataType)
	}
}
