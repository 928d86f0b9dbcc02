package trace

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"safespawn/internal/spawn"
)

var unitTri = spawn.Triangle{
	V0: mgl32.Vec3{0, 0, 0},
	V1: mgl32.Vec3{1, 0, 0},
	V2: mgl32.Vec3{0, 1, 0},
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name  string
		orig  mgl32.Vec3
		dir   mgl32.Vec3
		hit   bool
		wantT float32
	}{
		{"down onto face", mgl32.Vec3{0.25, 0.25, 1}, mgl32.Vec3{0, 0, -1}, true, 1},
		{"up from below", mgl32.Vec3{0.25, 0.25, -2}, mgl32.Vec3{0, 0, 1}, true, 2},
		{"away from face", mgl32.Vec3{0.25, 0.25, 1}, mgl32.Vec3{0, 0, 1}, false, 0},
		{"outside edge", mgl32.Vec3{0.8, 0.8, 1}, mgl32.Vec3{0, 0, -1}, false, 0},
		{"negative u", mgl32.Vec3{-0.1, 0.5, 1}, mgl32.Vec3{0, 0, -1}, false, 0},
		{"parallel", mgl32.Vec3{0.25, 0.25, 1}, mgl32.Vec3{1, 0, 0}, false, 0},
		{"origin on plane", mgl32.Vec3{0.25, 0.25, 0}, mgl32.Vec3{0, 0, 1}, false, 0},
	}
	for _, tt := range tests {
		got, hit := Intersect(tt.orig, tt.dir, unitTri)
		if hit != tt.hit {
			t.Errorf("%s: hit = %v, want %v", tt.name, hit, tt.hit)
			continue
		}
		if hit && mgl32.Abs(got-tt.wantT) > 1e-6 {
			t.Errorf("%s: t = %v, want %v", tt.name, got, tt.wantT)
		}
	}
}

func TestCosineDirection(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	normals := []mgl32.Vec3{
		{0, 0, 1},
		{1, 0, 0},
		mgl32.Vec3{1, -2, 3}.Normalize(),
	}
	for _, n := range normals {
		var mean float32
		const count = 4000
		for range count {
			d := CosineDirection(n, rng)
			if l := d.Len(); mgl32.Abs(l-1) > 1e-5 {
				t.Fatalf("n=%v: |d| = %v", n, l)
			}
			c := d.Dot(n)
			if c <= 0.03 {
				t.Fatalf("n=%v: cos = %v, direction too close to the tangent plane", n, c)
			}
			mean += c
		}
		// E[cos] is 2/3 for a cosine-weighted hemisphere.
		if mean /= count; mgl32.Abs(mean-2.0/3) > 0.02 {
			t.Errorf("n=%v: mean cos = %v, want ~0.667", n, mean)
		}
	}
}

func TestRandomBary(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for range 1000 {
		b := RandomBary(rng)
		if b[0] <= 0 || b[1] <= 0 || b[0]+b[1] >= 1 {
			t.Fatalf("bary %v not strictly inside", b)
		}
	}
}

func instance(t *testing.T, translate mgl32.Vec3, angle float32, axis mgl32.Vec3, scale mgl32.Vec3) (spawn.Affine, spawn.Affine) {
	t.Helper()
	m := mgl32.Translate3D(translate[0], translate[1], translate[2]).
		Mul4(mgl32.HomogRotate3D(angle, axis.Normalize())).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
	return spawn.AffineFromMat4(m), spawn.AffineFromMat4(m.Inv())
}

func TestProbe_NoSelfHits(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	tests := []struct {
		name      string
		translate mgl32.Vec3
		scale     mgl32.Vec3
	}{
		{"origin", mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}},
		{"far", mgl32.Vec3{4096, -512, 2048}, mgl32.Vec3{2, 2, 2}},
		{"stretched", mgl32.Vec3{30, 10, -70}, mgl32.Vec3{8, 1, 0.5}},
	}
	for _, tt := range tests {
		o2w, w2o := instance(t, tt.translate, 0.7, mgl32.Vec3{1, 2, 3}, tt.scale)
		for range 200 {
			s := Probe(unitTri, RandomBary(rng), o2w, w2o, rng, 4)
			if s.Rays != 8 {
				t.Fatalf("%s: Rays = %d, want 8", tt.name, s.Rays)
			}
			if s.SelfHits != 0 {
				t.Fatalf("%s: %d self hits with offset %v", tt.name, s.SelfHits, s.Offset)
			}
		}
	}
}

func TestProbe_NaiveOriginSelfHits(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	o2w, w2o := instance(t, mgl32.Vec3{4096, -512, 2048}, 0.7, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{2, 2, 2})

	var naive int
	for range 500 {
		s := Probe(unitTri, RandomBary(rng), o2w, w2o, rng, 4)
		naive += s.NaiveSelfHits
	}
	if naive == 0 {
		t.Error("rays from the unoffset hit point never hit their own triangle; the check cannot tell a bad offset from a good one")
	}
}

func TestProbe_Degenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	flat := spawn.Triangle{V0: mgl32.Vec3{0, 0, 0}, V1: mgl32.Vec3{1, 1, 1}, V2: mgl32.Vec3{2, 2, 2}}
	s := Probe(flat, mgl32.Vec2{0.3, 0.3}, spawn.IdentityAffine(), spawn.IdentityAffine(), rng, 4)
	if !s.Degenerate || s.Rays != 0 {
		t.Errorf("degenerate triangle: %+v", s)
	}
}
