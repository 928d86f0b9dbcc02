package raster

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"safespawn/internal/batch"
	"safespawn/internal/config"
	"safespawn/internal/mesh"
	"safespawn/internal/scene"
)

func TestRasterizeTriangle_ZBuffer(t *testing.T) {
	fb := NewFrameBuffer(16, 16)
	far := [3]uint8{0, 0, 200}
	near := [3]uint8{0, 200, 0}

	RasterizeTriangle(fb, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{16, 0, 1}, mgl64.Vec3{0, 16, 1}, near, 1)
	// Drawn later but farther away, and with the opposite winding.
	RasterizeTriangle(fb, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 16, -1}, mgl64.Vec3{16, 16, -1}, far, 1)

	at := func(x, y int) [4]uint8 {
		i := (y*fb.Width + x) * 4
		return [4]uint8{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
	}
	if got := at(2, 5); got != [4]uint8{0, 200, 0, 255} {
		t.Errorf("overlap pixel = %v, want the nearer green", got)
	}
	if got := at(3, 14); got != [4]uint8{0, 0, 200, 255} {
		t.Errorf("far-only pixel = %v, want blue", got)
	}
	if got := at(15, 2); got[3] != 0 {
		t.Errorf("uncovered pixel = %v, want transparent", got)
	}
}

func TestRasterizeTriangle_Clipped(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	RasterizeTriangle(fb, mgl64.Vec3{-100, -100, 0}, mgl64.Vec3{100, -100, 0}, mgl64.Vec3{0, 100, 0}, [3]uint8{255, 255, 255}, 0.5)
	for i := 3; i < len(fb.Color); i += 4 {
		if fb.Color[i] != 255 {
			t.Fatalf("pixel %d not covered", i/4)
		}
	}
	if fb.Color[0] != 128 {
		t.Errorf("shaded value = %d, want 128", fb.Color[0])
	}
}

func TestRamp(t *testing.T) {
	if Ramp(-1) != Ramp(0) || Ramp(2) != Ramp(1) {
		t.Error("ramp not clamped")
	}
	lo, hi := Ramp(0), Ramp(1)
	if lo[2] <= lo[0] || hi[0] <= hi[2] {
		t.Errorf("ramp ends %v..%v, want blue to yellow", lo, hi)
	}
	for _, c := range []float64{0, 0.3, 0.7, 1} {
		if Ramp(c) == SelfHitColor {
			t.Errorf("ramp(%v) collides with the self-hit color", c)
		}
	}
}

func TestLogScale(t *testing.T) {
	s := NewLogScale([]float32{1e-6, 1e-4, 0, float32(math.NaN()), 1e-2})
	if math.Abs(s.Lo+6) > 1e-6 || math.Abs(s.Hi+2) > 1e-6 {
		t.Fatalf("scale = %+v", s)
	}
	if got := s.At(1e-4); math.Abs(got-0.5) > 1e-6 {
		t.Errorf("At(1e-4) = %v, want 0.5", got)
	}
	if got := NewLogScale([]float32{3}).At(3); got != 0.5 {
		t.Errorf("single value maps to %v", got)
	}
	if got := NewLogScale(nil).At(1); got != 0.5 {
		t.Errorf("empty scale maps to %v", got)
	}
}

func TestRenderHeatMap(t *testing.T) {
	defs := []config.Instance{
		{Name: "a", Mesh: "icosphere", Detail: 1},
		{Name: "b", Mesh: "icosphere", Detail: 1, Translate: mgl64.Vec3{1000, 0, 0}},
	}
	insts, err := scene.Load(defs, mesh.NewCache(), false)
	if err != nil {
		t.Fatal(err)
	}

	stats := make([][]batch.TriangleStat, len(insts))
	for i, in := range insts {
		stats[i] = make([]batch.TriangleStat, len(in.Mesh.Tris))
		for j := range stats[i] {
			stats[i][j].MaxOffset = float32(i+1) * 1e-6
			stats[i][j].SelfHits = 1
		}
	}

	img := RenderHeatMap(insts, stats, 32, 2)
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Fatalf("size = %v", b)
	}

	// Two instances tile side by side; both tile centers are covered.
	for _, x := range []int{16, 48} {
		c := img.NRGBAAt(x, 16)
		if c.A != 255 {
			t.Errorf("tile center (%d,16) not covered", x)
		}
		if c.R <= c.G || c.R <= c.B {
			t.Errorf("self-hit triangle at (%d,16) = %v, want red", x, c)
		}
	}
	if img.NRGBAAt(0, 0).A != 0 {
		t.Error("margin should stay transparent")
	}
}

func TestRenderHeatMap_Empty(t *testing.T) {
	img := RenderHeatMap(nil, nil, 8, 1)
	if img.Bounds().Dx() != 8 {
		t.Errorf("size = %v", img.Bounds())
	}
}
