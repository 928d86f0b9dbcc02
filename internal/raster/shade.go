package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Fixed colors for triangles that are not on the offset ramp.
var (
	SelfHitColor    = [3]uint8{230, 30, 30}
	DegenerateColor = [3]uint8{110, 110, 110}
)

// lightDir points from the surface toward the light, in view space.
var lightDir = mgl64.Vec3{0.3, 0.5, 1}.Normalize()

// flatShade returns the brightness factor for a view-space face normal.
// Faces are lit from both sides.
func flatShade(n mgl64.Vec3) float64 {
	return 0.35 + 0.65*math.Abs(n.Dot(lightDir))
}

// rampStops run from small offsets (blue) to large ones (yellow). Red is
// left to SelfHitColor.
var rampStops = [...][3]float64{
	{40, 40, 150},
	{30, 120, 200},
	{40, 180, 120},
	{170, 210, 50},
	{250, 230, 80},
}

// Ramp maps t in [0,1] to a color on the offset ramp.
func Ramp(t float64) [3]uint8 {
	t = math.Max(0, math.Min(1, t))
	f := t * float64(len(rampStops)-1)
	i := int(f)
	if i >= len(rampStops)-1 {
		i = len(rampStops) - 2
	}
	frac := f - float64(i)
	a, b := rampStops[i], rampStops[i+1]
	var c [3]uint8
	for k := range c {
		c[k] = clamp255(a[k] + (b[k]-a[k])*frac)
	}
	return c
}

// LogScale maps offsets to [0,1] on a log10 scale between Lo and Hi.
type LogScale struct {
	Lo, Hi float64 // log10 of the smallest and largest offsets
}

// NewLogScale returns a scale spanning the positive finite values in
// offsets. A single value maps to 0.5.
func NewLogScale(offsets []float32) LogScale {
	s := LogScale{Lo: math.Inf(1), Hi: math.Inf(-1)}
	for _, o := range offsets {
		if !(o > 0) || math.IsInf(float64(o), 0) {
			continue
		}
		l := math.Log10(float64(o))
		s.Lo = math.Min(s.Lo, l)
		s.Hi = math.Max(s.Hi, l)
	}
	if math.IsInf(s.Lo, 1) {
		return LogScale{}
	}
	return s
}

// At returns the position of offset o on the scale.
func (s LogScale) At(o float32) float64 {
	if s.Hi <= s.Lo {
		return 0.5
	}
	return (math.Log10(float64(o)) - s.Lo) / (s.Hi - s.Lo)
}
