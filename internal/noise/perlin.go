package noise

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Perlin wraps a single-octave gradient noise generator. Octaves are summed
// by Field, so the generator itself runs with n=1.
type Perlin struct {
	p *perlin.Perlin
}

func NewPerlin(seed int64) *Perlin {
	return &Perlin{p: perlin.NewPerlin(2, 2, 1, seed)}
}

// Noise2D maps the raw [-1/sqrt2, 1/sqrt2] gradient noise onto [0,1].
func (p *Perlin) Noise2D(x, y float64) float64 {
	return clamp01(0.5 + p.p.Noise2D(x, y)*math.Sqrt2/2)
}
