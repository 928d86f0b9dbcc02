// Package spawn computes origins for secondary rays leaving a triangle hit
// that are guaranteed to clear the originating surface.
//
// The offset returned alongside the hit position is a conservative bound on
// the floating-point error accumulated while reconstructing the hit from its
// barycentrics and while carrying it through an instance transform. Moving
// the world-space position by that much along the world-space normal puts
// the new origin strictly on one side of the triangle.
//
// Every function here is pure and allocation-free; callers may invoke them
// from any number of goroutines.
package spawn

import "github.com/go-gl/mathgl/mgl32"

// Rounding-error constants for binary32 arithmetic, all within a few ULPs of
// 2^-24.
const (
	// c0 scales the magnitude of the base vertex.
	c0 float32 = 5.9604644775390625e-8
	// c1 scales the triangle extent and the object-to-world product.
	c1 float32 = 1.788139769587360206060111522674560546875e-7
	// c2 scales the error of applying a transform matrix.
	c2 float32 = 1.19209317972490680404007434844970703125e-7
)

// Triangle holds three object-space vertices. A degenerate triangle has no
// normal; its Result carries NaN normals and a NaN offset.
type Triangle struct {
	V0, V1, V2 mgl32.Vec3
}

// Result is everything a caller needs to spawn rays from one hit.
type Result struct {
	ObjPos  mgl32.Vec3 // object-space hit position
	WldPos  mgl32.Vec3 // world-space hit position
	ObjNorm mgl32.Vec3 // unit object-space geometric normal
	WldNorm mgl32.Vec3 // unit world-space geometric normal
	Offset  float32    // world-space distance to move along WldNorm
}

// Front returns the spawn point on the side WldNorm points to.
func (r Result) Front() mgl32.Vec3 {
	return Point(r.WldPos, r.WldNorm, r.Offset)
}

// Back returns the spawn point on the opposite side.
func (r Result) Back() mgl32.Vec3 {
	return Point(r.WldPos, r.WldNorm, -r.Offset)
}

// TriangleOffset reconstructs the hit at bary on tri, carries it to world
// space with o2w, and returns the positions, normals and safe offset.
//
// w2o must be the inverse of o2w. That is not verified here; see
// CheckInverse for an opt-in check.
func TriangleOffset(tri Triangle, bary mgl32.Vec2, o2w, w2o Affine) Result {
	objPos, objNorm, extent := reconstruct(tri, bary)

	wldPos := o2w.TransformPoint(objPos)
	wldNorm := w2o.TransformNormal(objNorm)
	wldScale := rsqrt(dot3(wldNorm, wldNorm))
	wldNorm = scale3(wldNorm, wldScale)

	objErr := objectError(tri.V0, extent)
	wldErr := worldError(o2w, objPos)
	objErr = roundTripError(w2o, wldPos, objErr)

	return Result{
		ObjPos:  objPos,
		WldPos:  wldPos,
		ObjNorm: scale3(objNorm, rsqrt(dot3(objNorm, objNorm))),
		WldNorm: wldNorm,
		Offset:  combineOffset(objErr, objNorm, wldErr, wldNorm, wldScale),
	}
}

// ObjectTriangleOffset is TriangleOffset for geometry that is not
// instanced: object space is world space and only the reconstruction error
// applies.
func ObjectTriangleOffset(tri Triangle, bary mgl32.Vec2) (pos, norm mgl32.Vec3, offset float32) {
	pos, n, extent := reconstruct(tri, bary)
	objErr := objectError(tri.V0, extent)

	scale := rsqrt(dot3(n, n))
	offset = float32(dot3(objErr, abs3(n)) * scale)
	return pos, scale3(n, scale), offset
}

// reconstruct interpolates the hit position and returns it with the
// unnormalized geometric normal and the triangle extent. The base vertex is
// added last so the small edge term keeps its precision.
func reconstruct(tri Triangle, bary mgl32.Vec2) (pos, norm mgl32.Vec3, extent float32) {
	e1 := sub3(tri.V1, tri.V0)
	e2 := sub3(tri.V2, tri.V0)

	for i := range 3 {
		t := float32(bary[1] * e2[i])
		t = fma32(bary[0], e1[i], t)
		pos[i] = tri.V0[i] + t
	}

	return pos, cross3(e1, e2), triangleExtent(e1, e2)
}
