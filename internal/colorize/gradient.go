// Package colorize derives vertex colors from height and local slope.
package colorize

import (
	"sort"

	"citysim/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

// Stop is one key of a Gradient.
type Stop struct {
	At    float32
	Color mgl32.Vec4
}

// Gradient is a piecewise linear color ramp over [0,1].
type Gradient struct {
	stops []Stop
}

// NewGradient sorts stops by position and keeps at most
// config.MaxColorStops of them.
func NewGradient(stops ...Stop) Gradient {
	s := append([]Stop(nil), stops...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].At < s[j].At })
	if len(s) > config.MaxColorStops {
		s = s[:config.MaxColorStops]
	}
	return Gradient{stops: s}
}

// GradientFromConfig converts config stops, skipping colors that do not
// parse.
func GradientFromConfig(stops []config.ColorStop) Gradient {
	out := make([]Stop, 0, len(stops))
	for _, cs := range stops {
		c, err := config.ParseColor(cs.Color)
		if err != nil {
			continue
		}
		out = append(out, Stop{At: cs.At, Color: c})
	}
	return NewGradient(out...)
}

// Len returns the number of stops.
func (g Gradient) Len() int { return len(g.stops) }

// Evaluate returns the color at t. Values before the first stop or after
// the last take that stop's color. An empty gradient is opaque white.
func (g Gradient) Evaluate(t float32) mgl32.Vec4 {
	if len(g.stops) == 0 {
		return mgl32.Vec4{1, 1, 1, 1}
	}
	if t <= g.stops[0].At {
		return g.stops[0].Color
	}
	last := g.stops[len(g.stops)-1]
	if t >= last.At {
		return last.Color
	}
	for i := 1; i < len(g.stops); i++ {
		hi := g.stops[i]
		if t > hi.At {
			continue
		}
		lo := g.stops[i-1]
		span := hi.At - lo.At
		if span <= 0 {
			return hi.Color
		}
		return lerpColor(lo.Color, hi.Color, (t-lo.At)/span)
	}
	return last.Color
}

func lerpColor(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}
