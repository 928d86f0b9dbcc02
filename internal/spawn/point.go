package spawn

import "github.com/go-gl/mathgl/mgl32"

// Point returns p + offset*n, each component in one fused step. Pass a
// negative offset for the back side.
func Point(p, n mgl32.Vec3, offset float32) mgl32.Vec3 {
	return mgl32.Vec3{
		fma32(offset, n[0], p[0]),
		fma32(offset, n[1], p[1]),
		fma32(offset, n[2], p[2]),
	}
}

// Points returns the front (+offset) and back (-offset) spawn points.
//
// Which one to use is up to the caller: rays whose direction has a positive
// dot product with n leave from front, the rest from back.
func Points(p, n mgl32.Vec3, offset float32) (front, back mgl32.Vec3) {
	return Point(p, n, offset), Point(p, n, -offset)
}
