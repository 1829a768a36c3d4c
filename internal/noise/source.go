// Package noise turns world positions into terrain heights.
package noise

import (
	"citysim/internal/config"
)

// Source is a single octave of coherent 2D noise. Implementations return
// values in [0,1], are C1-continuous and safe for concurrent use.
type Source interface {
	Noise2D(x, y float64) float64
}

// NewSource builds the source named by n.Kind.
func NewSource(n config.Noise) Source {
	switch n.Kind {
	case config.NoiseValue:
		return NewValue(n.Seed)
	case config.NoiseSimplex:
		return NewSimplex(n.Seed)
	case config.NoiseFlat:
		return Flat(n.FlatValue)
	default:
		return NewPerlin(n.Seed)
	}
}

// Flat is a constant source, mostly useful for tests.
type Flat float64

func (f Flat) Noise2D(x, y float64) float64 { return float64(f) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
