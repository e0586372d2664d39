package loaders

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// LoadGLTF loads every triangle primitive of a glTF or GLB file. Each
// primitive becomes its own mesh because normals and texture coordinates
// are optional per primitive.
func LoadGLTF(path string) ([]*geometry.TriangleMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return processDocument(doc)
}

func processDocument(doc *gltf.Document) ([]*geometry.TriangleMesh, error) {
	var meshes []*geometry.TriangleMesh
	for _, m := range doc.Meshes {
		for i, prim := range m.Primitives {
			mesh, ok, err := processPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
			}
			if ok {
				meshes = append(meshes, mesh)
			}
		}
	}
	return meshes, nil
}

// processPrimitive converts one primitive. Non-triangle primitives and
// primitives without positions are skipped.
func processPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*geometry.TriangleMesh, bool, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, false, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, false, nil
	}

	mesh := &geometry.TriangleMesh{}
	var err error
	if mesh.Positions, err = readVec3Accessor(doc, posIdx); err != nil {
		return nil, false, fmt.Errorf("read positions: %w", err)
	}

	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if mesh.Normals, err = readVec3Accessor(doc, normIdx); err != nil {
			return nil, false, fmt.Errorf("read normals: %w", err)
		}
	}

	// glTF and textures both put v = 0 at the top, so no flip is needed
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if mesh.UVs, err = readVec2Accessor(doc, uvIdx); err != nil {
			return nil, false, fmt.Errorf("read uvs: %w", err)
		}
	}

	var indices []int
	if prim.Indices != nil {
		if indices, err = readIndices(doc, *prim.Indices); err != nil {
			return nil, false, fmt.Errorf("read indices: %w", err)
		}
	} else {
		// No indices, assume sequential triangles
		indices = make([]int, len(mesh.Positions))
		for i := range indices {
			indices[i] = i
		}
	}

	for i := 0; i+2 < len(indices); i += 3 {
		mesh.Faces = append(mesh.Faces, [3]int{indices[i], indices[i+1], indices[i+2]})
	}

	return mesh, true, nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]core.Vec3, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([]core.Vec3, len(floats))
	for i, f := range floats {
		result[i] = core.NewVec3(f[0], f[1], f[2])
	}
	return result, nil
}

func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]core.Vec2, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([]core.Vec2, len(floats))
	for i, f := range floats {
		result[i] = core.NewVec2(f[0], f[1])
	}
	return result, nil
}

// readFloatAccessor reads count elements of n little-endian float32 components
func readFloatAccessor(doc *gltf.Document, accessorIdx int, want gltf.AccessorType, n int) ([][3]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != want {
		return nil, fmt.Errorf("expected %v, got %v", want, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("%w: component type %v", ErrUnsupportedFormat, accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, 4*n)
	if err != nil {
		return nil, err
	}

	result := make([][3]float64, accessor.Count)
	for i := range accessor.Count {
		offset := start + i*stride
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			result[i][j] = float64(math.Float32frombits(bits))
		}
	}
	return result, nil
}

// readIndices reads an unsigned scalar index accessor
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("%w: index component type %v", ErrUnsupportedFormat, accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		b := data[start+i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// accessorBytes returns the embedded buffer behind accessor with the byte
// offset of its first element and the stride between elements, after
// checking that every element lies inside the buffer
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elementSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView < 0 || *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("buffer view %d out of range", *accessor.BufferView)
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer < 0 || bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer %d out of range", bufferView.Buffer)
	}
	buffer := doc.Buffers[bufferView.Buffer]

	if buffer.URI != "" && len(buffer.Data) == 0 {
		return nil, 0, 0, fmt.Errorf("%w: external buffer %q", ErrUnsupportedFormat, buffer.URI)
	}
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elementSize
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elementSize
		if end > len(buffer.Data) {
			return nil, 0, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(buffer.Data))
		}
	}

	return buffer.Data, start, stride, nil
}
