// Package trace is the renderer side of a spawn: it casts secondary rays
// from spawn points and checks whether they hit the surface they left.
package trace

import (
	"github.com/go-gl/mathgl/mgl32"

	"safespawn/internal/spawn"
)

// Intersect runs Möller–Trumbore in single precision and returns the ray
// parameter of the hit. Any t > 0 counts, with no epsilon, so a ray that
// starts on the wrong side of its own triangle reports the hit.
func Intersect(orig, dir mgl32.Vec3, tri spawn.Triangle) (float32, bool) {
	edge1 := tri.V1.Sub(tri.V0)
	edge2 := tri.V2.Sub(tri.V0)

	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if a == 0 {
		return 0, false // parallel to the plane
	}

	f := 1 / a
	s := orig.Sub(tri.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t <= 0 {
		return 0, false
	}
	return t, true
}
