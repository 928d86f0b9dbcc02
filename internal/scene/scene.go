// Package scene places meshes in world space. Each instance carries the
// object-to-world and world-to-object pair the spawn core expects.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"safespawn/internal/config"
	"safespawn/internal/logging"
	"safespawn/internal/mesh"
	"safespawn/internal/spawn"
)

// Transform describes an instance placement: scale, then rotate (XYZ Euler
// degrees), then translate.
type Transform struct {
	Translate mgl64.Vec3
	RotateDeg mgl64.Vec3
	Scale     mgl64.Vec3
}

// Instance is a mesh placed in the world.
type Instance struct {
	Name string
	Mesh *mesh.Mesh
	O2W  spawn.Affine
	W2O  spawn.Affine
}

// Matrix returns the float64 object-to-world map. Rotation is Rz·Ry·Rx,
// so X is applied first. A zero Scale means unit scale.
func (tr Transform) Matrix() mgl64.Mat4 {
	s, r, t := tr.Scale, tr.RotateDeg, tr.Translate
	if s == (mgl64.Vec3{}) {
		s = mgl64.Vec3{1, 1, 1}
	}
	rot := mgl64.HomogRotate3DZ(mgl64.DegToRad(r[2])).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r[1]))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r[0])))
	return mgl64.Translate3D(t[0], t[1], t[2]).Mul4(rot).Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// AffinePair returns o2w and w2o rounded to single precision. Both are
// derived from one float64 matrix and its inverse, so the rounded pair is
// as close to mutually inverse as float32 allows.
func AffinePair(tr Transform) (o2w, w2o spawn.Affine, err error) {
	m := tr.Matrix()
	// Inv returns the zero matrix below this threshold.
	if mgl64.FloatEqual(m.Det(), 0) {
		return o2w, w2o, fmt.Errorf("scene: singular transform (scale %v)", tr.Scale)
	}
	return Narrow(m), Narrow(m.Inv()), nil
}

// Narrow rounds the affine part of m to single precision.
func Narrow(m mgl64.Mat4) spawn.Affine {
	var l mgl32.Mat3
	for i, v := range m.Mat3() {
		l[i] = float32(v)
	}
	t := m.Col(3)
	return spawn.NewAffine(l, mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})
}

// Widen is the exact float64 image of a.
func Widen(a spawn.Affine) mgl64.Mat4 {
	m := mgl64.Ident4()
	for r := range 3 {
		for c := range 4 {
			m.Set(r, c, float64(a[r*4+c]))
		}
	}
	return m
}

// Load builds every instance named in the config. Meshes come from cache.
// When verify is set each transform pair is run through spawn.CheckInverse.
func Load(defs []config.Instance, cache *mesh.Cache, verify bool) ([]Instance, error) {
	log := logging.Logger()
	out := make([]Instance, 0, len(defs))

	for i, d := range defs {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", d.Mesh, i)
		}

		m, err := cache.Get(d.Mesh, d.Detail)
		if err != nil {
			return nil, fmt.Errorf("scene: instance %s: %w", name, err)
		}

		o2w, w2o, err := AffinePair(Transform{
			Translate: d.Translate,
			RotateDeg: d.RotateDeg,
			Scale:     d.Scale,
		})
		if err != nil {
			return nil, fmt.Errorf("scene: instance %s: %w", name, err)
		}

		if verify {
			if err := spawn.CheckInverse(o2w, w2o, 1e-5); err != nil {
				return nil, fmt.Errorf("scene: instance %s: %w", name, err)
			}
		}

		lo, hi := m.Bounds()
		log.Debug("instance ready", "name", name, "mesh", m.Name, "triangles", len(m.Tris), "bounds_lo", lo, "bounds_hi", hi)
		out = append(out, Instance{Name: name, Mesh: m, O2W: o2w, W2O: w2o})
	}
	return out, nil
}

// TriangleCount sums the triangles of all instances.
func TriangleCount(insts []Instance) int {
	n := 0
	for _, in := range insts {
		n += len(in.Mesh.Tris)
	}
	return n
}
