// Package raster draws the offset heat map: every instance rasterized in
// its own tile under an isometric view, triangles colored by spawn offset.
package raster

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"safespawn/internal/batch"
	"safespawn/internal/scene"
)

// isoView is the fixed camera: 45° around Y, then a 30° tilt around X.
var isoView = mgl64.Rotate3DX(mgl64.DegToRad(30)).Mul3(mgl64.Rotate3DY(mgl64.DegToRad(-45)))

// RenderHeatMap renders insts into a size×size image, scaled up by
// supersample. stats[i] holds the per-triangle results of insts[i]; a nil
// or short slice leaves the missing triangles at the low end of the ramp.
// Offsets are colored on one log scale shared by all instances.
func RenderHeatMap(insts []scene.Instance, stats [][]batch.TriangleStat, size, supersample int) *image.NRGBA {
	supersample = max(supersample, 1)
	renderSize := size * supersample
	fb := NewFrameBuffer(renderSize, renderSize)
	if len(insts) == 0 {
		return fb.Image()
	}

	var offsets []float32
	for _, st := range stats {
		for _, s := range st {
			if !s.Degenerate {
				offsets = append(offsets, s.MaxOffset)
			}
		}
	}
	scale := NewLogScale(offsets)

	cols := int(math.Ceil(math.Sqrt(float64(len(insts)))))
	rows := (len(insts) + cols - 1) / cols
	tile := renderSize / max(cols, rows)
	margin := tile / 16

	for i, in := range insts {
		var st []batch.TriangleStat
		if i < len(stats) {
			st = stats[i]
		}
		ox, oy := (i%cols)*tile, (i/cols)*tile
		drawInstance(fb, in, st, scale, image.Rect(ox+margin, oy+margin, ox+tile-margin, oy+tile-margin))
	}
	return fb.Image()
}

// drawInstance fits the instance's world-space triangles into area.
func drawInstance(fb *FrameBuffer, in scene.Instance, stats []batch.TriangleStat, scale LogScale, area image.Rectangle) {
	m := in.Mesh
	if len(m.Verts) == 0 || area.Dx() <= 0 || area.Dy() <= 0 {
		return
	}

	// View-space vertices, recentered so the instance's own size sets the
	// zoom regardless of where it sits in the world.
	view := make([]mgl64.Vec3, len(m.Verts))
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	origin := widen(in.O2W.Translation())
	for i, v := range m.Verts {
		w := widen(in.O2W.TransformPoint(v))
		view[i] = isoView.Mul3x1(w.Sub(origin))
		for k := range 3 {
			lo[k] = min(lo[k], view[i][k])
			hi[k] = max(hi[k], view[i][k])
		}
	}

	span := max(hi[0]-lo[0], hi[1]-lo[1], 1e-9)
	px := float64(min(area.Dx(), area.Dy())) / span
	cx := float64(area.Min.X+area.Max.X) / 2
	cy := float64(area.Min.Y+area.Max.Y) / 2
	mid := lo.Add(hi).Mul(0.5)

	project := func(v mgl64.Vec3) mgl64.Vec3 {
		return mgl64.Vec3{
			cx + (v[0]-mid[0])*px,
			cy - (v[1]-mid[1])*px, // image y grows downward
			v[2],
		}
	}

	for t, tri := range m.Tris {
		a, b, c := view[tri[0]], view[tri[1]], view[tri[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() > 0 {
			n = n.Normalize()
		}

		var s batch.TriangleStat
		if t < len(stats) {
			s = stats[t]
		}
		var rgb [3]uint8
		switch {
		case s.SelfHits > 0:
			rgb = SelfHitColor
		case s.Degenerate:
			rgb = DegenerateColor
		default:
			rgb = Ramp(scale.At(s.MaxOffset))
		}
		RasterizeTriangle(fb, project(a), project(b), project(c), rgb, flatShade(n))
	}
}

func widen(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
