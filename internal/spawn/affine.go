package spawn

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Affine is a 3×4 affine map stored row-major:
//
//	| m0 m1  m2  m3  |   x' = m0*x + m1*y + m2*z + m3
//	| m4 m5  m6  m7  |   y' = m4*x + m5*y + m6*z + m7
//	| m8 m9  m10 m11 |   z' = m8*x + m9*y + m10*z + m11
type Affine [12]float32

// IdentityAffine returns the identity map.
func IdentityAffine() Affine {
	return Affine{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
}

// NewAffine builds an affine map from a linear part and a translation.
func NewAffine(linear mgl32.Mat3, t mgl32.Vec3) Affine {
	var m Affine
	for r := range 3 {
		for c := range 3 {
			m[r*4+c] = linear.At(r, c)
		}
		m[r*4+3] = t[r]
	}
	return m
}

// AffineFromMat4 drops the projective row of a homogeneous mgl32 matrix.
func AffineFromMat4(h mgl32.Mat4) Affine {
	var m Affine
	for r := range 3 {
		for c := range 4 {
			m[r*4+c] = h.At(r, c)
		}
	}
	return m
}

// Linear returns the 3×3 linear part.
func (m Affine) Linear() mgl32.Mat3 {
	var l mgl32.Mat3
	for r := range 3 {
		for c := range 3 {
			l.Set(r, c, m[r*4+c])
		}
	}
	return l
}

// Translation returns the translation column.
func (m Affine) Translation() mgl32.Vec3 {
	return mgl32.Vec3{m[3], m[7], m[11]}
}

// TransformPoint maps p through the linear part and adds the translation
// last, outside the multiply-add chain.
func (m Affine) TransformPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		m.rowDot(0, p) + m[3],
		m.rowDot(1, p) + m[7],
		m.rowDot(2, p) + m[11],
	}
}

// TransformVector maps v through the linear part only.
func (m Affine) TransformVector(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{m.rowDot(0, v), m.rowDot(1, v), m.rowDot(2, v)}
}

// TransformNormal maps n through the transpose of the linear part. Called
// on a world-to-object map it carries an object-space normal to world
// space.
func (m Affine) TransformNormal(n mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{m.colDot(0, n), m.colDot(1, n), m.colDot(2, n)}
}

// rowDot evaluates m[r][0]*v0 + m[r][1]*v1 + m[r][2]*v2, innermost (z) term
// first.
func (m Affine) rowDot(r int, v mgl32.Vec3) float32 {
	i := r * 4
	s := float32(m[i+2] * v[2])
	s = fma32(m[i+1], v[1], s)
	return fma32(m[i], v[0], s)
}

func (m Affine) colDot(c int, v mgl32.Vec3) float32 {
	s := float32(m[8+c] * v[2])
	s = fma32(m[4+c], v[1], s)
	return fma32(m[c], v[0], s)
}

// absRowDot is rowDot over |m|. v must already be non-negative.
func (m Affine) absRowDot(r int, v mgl32.Vec3) float32 {
	i := r * 4
	s := float32(math32.Abs(m[i+2]) * v[2])
	s = fma32(math32.Abs(m[i+1]), v[1], s)
	return fma32(math32.Abs(m[i]), v[0], s)
}
