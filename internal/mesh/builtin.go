package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Builtin returns a procedural mesh. param is the grid resolution for
// "grid" and the subdivision level for "icosphere"; "plane" ignores it.
// All shapes are counter-clockwise seen from +Z or from outside.
func Builtin(name string, param int) (*Mesh, error) {
	switch name {
	case "plane":
		return Grid(1), nil
	case "grid":
		return Grid(max(param, 1)), nil
	case "icosphere":
		if param < 0 || param > 7 {
			return nil, fmt.Errorf("mesh: icosphere level %d out of range 0..7", param)
		}
		return Icosphere(param), nil
	}
	return nil, fmt.Errorf("mesh: unknown builtin %q", name)
}

// IsBuiltin reports whether name refers to a procedural shape.
func IsBuiltin(name string) bool {
	switch name {
	case "plane", "grid", "icosphere":
		return true
	}
	return false
}

// Grid returns an n×n grid of quads covering [-1,1]² in the z=0 plane.
func Grid(n int) *Mesh {
	m := &Mesh{Name: fmt.Sprintf("grid%d", n)}
	step := 2 / float64(n)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			m.Verts = append(m.Verts, [3]float32{float32(-1 + float64(i)*step), float32(-1 + float64(j)*step), 0})
		}
	}

	row := int32(n + 1)
	for j := range int32(n) {
		for i := range int32(n) {
			a := j*row + i
			b := a + 1
			c := a + row
			d := c + 1
			m.Tris = append(m.Tris, [3]int32{a, b, d}, [3]int32{a, d, c})
		}
	}
	return m
}

var icoFaces = [20][3]int32{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// Icosphere returns a unit sphere made by splitting every face of an
// icosahedron into four, level times.
func Icosphere(level int) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	verts := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range verts {
		verts[i] = verts[i].Normalize()
	}
	tris := icoFaces[:]

	for range level {
		mid := make(map[[2]int32]int32)
		midpoint := func(a, b int32) int32 {
			key := [2]int32{min(a, b), max(a, b)}
			if i, ok := mid[key]; ok {
				return i
			}
			verts = append(verts, verts[a].Add(verts[b]).Normalize())
			i := int32(len(verts) - 1)
			mid[key] = i
			return i
		}

		next := make([][3]int32, 0, len(tris)*4)
		for _, f := range tris {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]int32{f[0], ab, ca},
				[3]int32{f[1], bc, ab},
				[3]int32{f[2], ca, bc},
				[3]int32{ab, bc, ca},
			)
		}
		tris = next
	}

	m := &Mesh{
		Name:  fmt.Sprintf("icosphere%d", level),
		Verts: make([][3]float32, len(verts)),
		Tris:  append([][3]int32(nil), tris...),
	}
	for i, v := range verts {
		m.Verts[i] = [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
	}
	return m
}
