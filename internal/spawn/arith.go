package spawn

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// The helpers below fix the evaluation order of every chain the error
// bounds depend on. Go may fuse x*y+z into one instruction unless an
// explicit float32 conversion sits between the multiply and the add, so
// products that must round on their own are always wrapped in float32().

// fma32 returns x*y+z with a single fused step.
//
// The product of two float32 values is exact in float64, so the only
// roundings are the float64 sum and the final narrowing. The bounds carry
// enough slack to absorb that second rounding.
func fma32(x, y, z float32) float32 {
	return float32(math.FMA(float64(x), float64(y), float64(z)))
}

func sub3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func abs3(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])}
}

func scale3(v mgl32.Vec3, s float32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(v[0] * s),
		float32(v[1] * s),
		float32(v[2] * s),
	}
}

// dot3 accumulates z first, then y, then x.
func dot3(a, b mgl32.Vec3) float32 {
	s := float32(a[2] * b[2])
	s = fma32(a[1], b[1], s)
	return fma32(a[0], b[0], s)
}

func cross3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(a[1]*b[2]) - float32(a[2]*b[1]),
		float32(a[2]*b[0]) - float32(a[0]*b[2]),
		float32(a[0]*b[1]) - float32(a[1]*b[0]),
	}
}

// rsqrt returns 1/sqrt(x). Zero yields +Inf.
func rsqrt(x float32) float32 {
	return 1 / math32.Sqrt(x)
}
