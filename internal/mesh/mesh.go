// Package mesh provides indexed triangle meshes in single precision: a PLY
// reader, a few procedural shapes and a shared cache.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"safespawn/internal/spawn"
)

// ErrUnsupportedFormat is returned for PLY encodings or property types the
// reader does not handle.
var ErrUnsupportedFormat = errors.New("mesh: unsupported format")

// Mesh is an indexed triangle list in object space.
type Mesh struct {
	Name  string
	Verts [][3]float32
	Tris  [][3]int32
}

// Triangle returns triangle i as spawn input.
func (m *Mesh) Triangle(i int) spawn.Triangle {
	t := m.Tris[i]
	return spawn.Triangle{
		V0: mgl32.Vec3(m.Verts[t[0]]),
		V1: mgl32.Vec3(m.Verts[t[1]]),
		V2: mgl32.Vec3(m.Verts[t[2]]),
	}
}

// Validate checks that every index refers to a vertex.
func (m *Mesh) Validate() error {
	n := int32(len(m.Verts))
	for i, t := range m.Tris {
		for _, vi := range t {
			if vi < 0 || vi >= n {
				return fmt.Errorf("mesh: %s: triangle %d references vertex %d of %d", m.Name, i, vi, n)
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned box of all vertices. An empty mesh
// returns zero vectors.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	if len(m.Verts) == 0 {
		return lo, hi
	}
	lo, hi = m.Verts[0], m.Verts[0]
	for _, v := range m.Verts[1:] {
		for k := range 3 {
			lo[k] = min(lo[k], v[k])
			hi[k] = max(hi[k], v[k])
		}
	}
	return lo, hi
}
