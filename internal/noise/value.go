package noise

import "math"

// Value is deterministic lattice value noise with a quintic fade.
type Value struct {
	seed int64
}

func NewValue(seed int64) *Value {
	return &Value{seed: seed}
}

// fade is the smootherstep 6t^5 - 15t^4 + 10t^3; its first and second
// derivatives vanish at the lattice so neighbouring cells join smoothly.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func hash2(x, y, seed int64) uint64 {
	// SplitMix64 style integer hash, stable across runs for same inputs
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func latticeValue(x, y, seed int64) float64 {
	h := hash2(x, y, seed)
	return float64(h&0xFFFFFFFF) / float64(0xFFFFFFFF)
}

func (v *Value) Noise2D(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	ix, iy := int64(x0), int64(y0)

	fx := fade(x - x0)
	fy := fade(y - y0)

	v00 := latticeValue(ix, iy, v.seed)
	v10 := latticeValue(ix+1, iy, v.seed)
	v01 := latticeValue(ix, iy+1, v.seed)
	v11 := latticeValue(ix+1, iy+1, v.seed)

	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fy)
}
