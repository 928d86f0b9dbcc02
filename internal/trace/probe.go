package trace

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"safespawn/internal/spawn"
)

// maxCosineU keeps sampled directions at least ~2° off the tangent plane.
// Closer to grazing, the error of carrying the direction into object space
// can tip it across the plane, which no origin offset covers.
const maxCosineU = 0.999

// Sample is the outcome of probing one hit.
type Sample struct {
	Offset        float32
	Rays          int // rays cast, front and back together
	SelfHits      int // rays from the spawn points that hit their own triangle
	NaiveSelfHits int // the same rays from the unoffset hit position
	Degenerate    bool
}

// Probe computes the spawn for one hit on tri and casts rays from both
// spawn points into their hemispheres. Rays are carried into object space
// with w2o, the way an instanced renderer traverses them.
func Probe(tri spawn.Triangle, bary mgl32.Vec2, o2w, w2o spawn.Affine, rng *rand.Rand, rays int) Sample {
	r := spawn.TriangleOffset(tri, bary, o2w, w2o)
	s := Sample{Offset: r.Offset}
	if math32.IsNaN(r.Offset) || math32.IsInf(r.Offset, 0) {
		// Zero-area triangle: there is no normal to offset along.
		s.Degenerate = true
		return s
	}

	front, back := spawn.Points(r.WldPos, r.WldNorm, r.Offset)
	for range rays {
		for _, side := range [2]struct {
			origin mgl32.Vec3
			normal mgl32.Vec3
		}{
			{front, r.WldNorm},
			{back, r.WldNorm.Mul(-1)},
		} {
			dir := CosineDirection(side.normal, rng)
			s.Rays++
			if selfHit(tri, w2o, side.origin, dir) {
				s.SelfHits++
			}
			if selfHit(tri, w2o, r.WldPos, dir) {
				s.NaiveSelfHits++
			}
		}
	}
	return s
}

func selfHit(tri spawn.Triangle, w2o spawn.Affine, origin, dir mgl32.Vec3) bool {
	_, hit := Intersect(w2o.TransformPoint(origin), w2o.TransformVector(dir), tri)
	return hit
}

// CosineDirection returns a cosine-weighted direction in the hemisphere
// around n. n must be unit length.
func CosineDirection(n mgl32.Vec3, rng *rand.Rand) mgl32.Vec3 {
	a := 2 * math.Pi * rng.Float64()
	u := maxCosineU * rng.Float64()
	r := math.Sqrt(u)
	x, y, z := r*math.Cos(a), r*math.Sin(a), math.Sqrt(1-u)

	w := mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])}
	helper := mgl64.Vec3{1, 0, 0}
	if math.Abs(w[0]) > 0.1 {
		helper = mgl64.Vec3{0, 1, 0}
	}
	tangent := helper.Cross(w).Normalize()
	bitangent := w.Cross(tangent)

	d := tangent.Mul(x).Add(bitangent.Mul(y)).Add(w.Mul(z))
	return mgl32.Vec3{float32(d[0]), float32(d[1]), float32(d[2])}
}

// RandomBary returns barycentrics uniformly distributed over the triangle,
// kept a little away from the edges.
func RandomBary(rng *rand.Rand) mgl32.Vec2 {
	u, v := rng.Float32(), rng.Float32()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	const inset = 1e-3
	return mgl32.Vec2{inset + (1-3*inset)*u, inset + (1-3*inset)*v}
}
