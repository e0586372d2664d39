package geometry

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// TriangleMesh is an indexed triangle list. It is flattened into individual
// Triangle primitives before tracing; there is no acceleration structure.
type TriangleMesh struct {
	Positions []core.Vec3
	Normals   []core.Vec3 // Optional, parallel to Positions; enables smooth shading
	UVs       []core.Vec2 // Optional, parallel to Positions
	Faces     [][3]int    // Indices into Positions
}

// TriangleCount returns the number of faces in the mesh
func (m *TriangleMesh) TriangleCount() int {
	return len(m.Faces)
}

// Triangles builds one Triangle per face. newInfo is called once per face so
// every triangle receives its own identity.
func (m *TriangleMesh) Triangles(newInfo func() *ObjectInfo) ([]*Triangle, error) {
	hasNormals := len(m.Normals) > 0
	hasUVs := len(m.UVs) > 0
	if hasNormals && len(m.Normals) != len(m.Positions) {
		return nil, fmt.Errorf("mesh has %d normals for %d positions", len(m.Normals), len(m.Positions))
	}
	if hasUVs && len(m.UVs) != len(m.Positions) {
		return nil, fmt.Errorf("mesh has %d texture coordinates for %d positions", len(m.UVs), len(m.Positions))
	}

	triangles := make([]*Triangle, 0, len(m.Faces))
	for i, face := range m.Faces {
		for _, idx := range face {
			if idx < 0 || idx >= len(m.Positions) {
				return nil, fmt.Errorf("face %d: vertex index %d out of range [0, %d)", i, idx, len(m.Positions))
			}
		}

		tri := NewTriangle(m.Positions[face[0]], m.Positions[face[1]], m.Positions[face[2]], newInfo())
		if hasNormals {
			tri.SetVertexNormals(m.Normals[face[0]], m.Normals[face[1]], m.Normals[face[2]])
		}
		if hasUVs {
			tri.SetTexCoords(m.UVs[face[0]], m.UVs[face[1]], m.UVs[face[2]])
		}
		triangles = append(triangles, tri)
	}

	return triangles, nil
}
