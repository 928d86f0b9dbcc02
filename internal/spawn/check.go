package spawn

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotInverse is returned by CheckInverse when the pair does not compose
// to the identity.
var ErrNotInverse = errors.New("spawn: transforms are not mutual inverses")

// CheckInverse reports whether o2w∘w2o is the identity within tol.
//
// Linear entries are compared absolutely. The translation residual is
// measured relative to the larger of the two translations (at least 1),
// since it grows with scene scale. The composition runs in float64 so the
// check itself adds no float32 error.
//
// TriangleOffset never calls this; it is meant for scene loading and debug
// builds.
func CheckInverse(o2w, w2o Affine, tol float32) error {
	var linDev, tDev float64
	tScale := 1.0
	for r := range 3 {
		tScale = max(tScale, math.Abs(float64(o2w[r*4+3])), math.Abs(float64(w2o[r*4+3])))
	}

	for r := range 3 {
		for c := range 4 {
			var s float64
			for k := range 3 {
				s += float64(o2w[r*4+k]) * float64(w2o[k*4+c])
			}
			if c == 3 {
				s += float64(o2w[r*4+3])
				tDev = max(tDev, math.Abs(s)/tScale)
				continue
			}
			want := 0.0
			if r == c {
				want = 1
			}
			linDev = max(linDev, math.Abs(s-want))
		}
	}

	if linDev > float64(tol) || tDev > float64(tol) {
		return fmt.Errorf("%w: linear deviation %.3g, translation deviation %.3g, tolerance %.3g",
			ErrNotInverse, linDev, tDev, tol)
	}
	return nil
}
