package spawn

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// All matrix products in this file run over |m| and |v|. Signed entries
// would let error terms cancel and shrink the bound.

// triangleExtent is the largest per-axis sum |e1| + |e2| + |e1-e2|.
func triangleExtent(e1, e2 mgl32.Vec3) float32 {
	d := sub3(e1, e2)
	var ext mgl32.Vec3
	for i := range 3 {
		ext[i] = math32.Abs(e1[i]) + math32.Abs(e2[i]) + math32.Abs(d[i])
	}
	return math32.Max(math32.Max(ext[0], ext[1]), ext[2])
}

// objectError bounds the object-space error of the interpolated position,
// including the error of the intersection test that produced bary.
func objectError(v0 mgl32.Vec3, extent float32) mgl32.Vec3 {
	base := float32(c1 * extent)
	a := abs3(v0)
	return mgl32.Vec3{
		fma32(c0, a[0], base),
		fma32(c0, a[1], base),
		fma32(c0, a[2], base),
	}
}

// worldError bounds the error introduced by o2w when mapping objPos.
func worldError(o2w Affine, objPos mgl32.Vec3) mgl32.Vec3 {
	p := abs3(objPos)
	var e mgl32.Vec3
	for r := range 3 {
		t := float32(c2 * math32.Abs(o2w[r*4+3]))
		e[r] = fma32(c1, o2w.absRowDot(r, p), t)
	}
	return e
}

// roundTripError adds to objErr the error of mapping wldPos back through
// w2o, translation included.
func roundTripError(w2o Affine, wldPos, objErr mgl32.Vec3) mgl32.Vec3 {
	p := abs3(wldPos)
	for r := range 3 {
		s := w2o.absRowDot(r, p) + math32.Abs(w2o[r*4+3])
		objErr[r] = fma32(c2, s, objErr[r])
	}
	return objErr
}

// combineOffset projects both bounds on their normals and returns the sum in
// world units. objNorm is unnormalized; wldScale is the factor that turned
// w2o^T·objNorm into the unit wldNorm, so it carries the object term into
// world units the same way.
func combineOffset(objErr, objNorm, wldErr, wldNorm mgl32.Vec3, wldScale float32) float32 {
	wldOffset := dot3(wldErr, abs3(wldNorm))
	objOffset := dot3(objErr, abs3(objNorm))
	return fma32(wldScale, objOffset, wldOffset)
}
