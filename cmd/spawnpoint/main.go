// Command spawnpoint computes the spawn offset for one triangle hit. It
// reads a JSON request from stdin and writes the result to stdout.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"safespawn/internal/scene"
	"safespawn/internal/spawn"
)

type request struct {
	V0   [3]float32   `json:"v0"`
	V1   [3]float32   `json:"v1"`
	V2   [3]float32   `json:"v2"`
	Bary [2]float32   `json:"bary"`
	O2W  *[12]float32 `json:"o2w"` // row-major 3x4, identity when absent
	W2O  *[12]float32 `json:"w2o"` // derived from o2w when absent
}

type response struct {
	ObjPos  [3]float32 `json:"obj_pos"`
	ObjNorm [3]float32 `json:"obj_norm"`
	WldPos  [3]float32 `json:"wld_pos"`
	WldNorm [3]float32 `json:"wld_norm"`
	Offset  float32    `json:"offset"`
	Front   [3]float32 `json:"front"`
	Back    [3]float32 `json:"back"`
}

func main() {
	check := flag.Bool("check", false, "Verify that o2w and w2o are mutual inverses")
	flag.Parse()

	var req request
	if err := decode(os.Stdin, &req); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	o2w, w2o, err := transforms(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *check {
		if err := spawn.CheckInverse(o2w, w2o, 1e-5); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	tri := spawn.Triangle{V0: req.V0, V1: req.V1, V2: req.V2}
	r := spawn.TriangleOffset(tri, mgl32.Vec2(req.Bary), o2w, w2o)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(response{
		ObjPos:  r.ObjPos,
		ObjNorm: r.ObjNorm,
		WldPos:  r.WldPos,
		WldNorm: r.WldNorm,
		Offset:  r.Offset,
		Front:   r.Front(),
		Back:    r.Back(),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func decode(r io.Reader, req *request) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request on stdin")
		}
		return fmt.Errorf("parse request: %w", err)
	}
	return nil
}

// transforms fills in the identity for a missing o2w and the float64
// inverse of o2w for a missing w2o.
func transforms(req request) (o2w, w2o spawn.Affine, err error) {
	o2w = spawn.IdentityAffine()
	if req.O2W != nil {
		o2w = spawn.Affine(*req.O2W)
	}
	if req.W2O != nil {
		return o2w, spawn.Affine(*req.W2O), nil
	}

	m := scene.Widen(o2w)
	if mgl64.FloatEqual(m.Det(), 0) {
		return o2w, w2o, errors.New("o2w is singular")
	}
	return o2w, scene.Narrow(m.Inv()), nil
}
