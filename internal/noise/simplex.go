package noise

import (
	"github.com/ojrac/opensimplex-go"
)

// Simplex is OpenSimplex noise already normalized to [0,1].
type Simplex struct {
	n opensimplex.Noise
}

func NewSimplex(seed int64) *Simplex {
	return &Simplex{n: opensimplex.NewNormalized(seed)}
}

func (s *Simplex) Noise2D(x, y float64) float64 {
	return clamp01(s.n.Eval2(x, y))
}
