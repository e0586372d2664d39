package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// LoadMeshes loads the triangle meshes in a PLY, glTF or GLB file
func LoadMeshes(filename string) ([]*geometry.TriangleMesh, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ply":
		mesh, err := LoadPLY(filename)
		if err != nil {
			return nil, err
		}
		return []*geometry.TriangleMesh{mesh}, nil
	case ".gltf", ".glb":
		return LoadGLTF(filename)
	default:
		return nil, fmt.Errorf("mesh file %q: %w", filename, ErrUnsupportedFormat)
	}
}
