package colorize

import (
	"citysim/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

// Colorizer maps vertices of a (n+1)x(n+1) row-major height grid to
// colors. Vertices under the water plane use the water ramp; the rest
// use the soil ramp blended toward flora where the ground is flat.
type Colorizer struct {
	soil  Gradient
	flora Gradient
	water Gradient

	waterHeight    float32
	maxHeight      float32
	quadSize       float32
	floraExtremity float32
}

// New builds a colorizer from a normalized config.
func New(cfg *config.Config) *Colorizer {
	return &Colorizer{
		soil:           GradientFromConfig(cfg.Colors.Soil),
		flora:          GradientFromConfig(cfg.Colors.Flora),
		water:          GradientFromConfig(cfg.Colors.Water),
		waterHeight:    cfg.WaterHeight(),
		maxHeight:      cfg.MaxHeight(),
		quadSize:       cfg.Grid.QuadSize,
		floraExtremity: cfg.FloraExtremity,
	}
}

// Color returns the color of vertex (x, y).
func (c *Colorizer) Color(vertices []mgl32.Vec3, n, x, y int) mgl32.Vec4 {
	h := vertices[y*(n+1)+x].Y()

	if h < c.waterHeight {
		return c.water.Evaluate(h / c.waterHeight)
	}

	var t float32
	if span := c.maxHeight - c.waterHeight; span > 0 {
		t = mgl32.Clamp((h-c.waterHeight)/span, 0, 1)
	}
	soil := c.soil.Evaluate(t)

	slope := c.slope(vertices, n, x, y)
	w := 1 - mgl32.Clamp(slope/c.floraExtremity, 0, 1)
	if w == 0 {
		return soil
	}
	return lerpColor(soil, c.flora.Evaluate(t), w)
}

// slope is the steepest rise or fall to an axis neighbour, per world unit.
func (c *Colorizer) slope(vertices []mgl32.Vec3, n, x, y int) float32 {
	h := vertices[y*(n+1)+x].Y()
	var steepest float32
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || ny < 0 || nx > n || ny > n {
			continue
		}
		diff := vertices[ny*(n+1)+nx].Y() - h
		if diff < 0 {
			diff = -diff
		}
		steepest = max(steepest, diff)
	}
	return steepest / c.quadSize
}

// Fill colors every vertex.
func (c *Colorizer) Fill(vertices []mgl32.Vec3, colors []mgl32.Vec4, n int) {
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			colors[y*(n+1)+x] = c.Color(vertices, n, x, y)
		}
	}
}

// Refresh recolors the given vertex indices and their axis neighbours,
// whose slope changes with them.
func (c *Colorizer) Refresh(vertices []mgl32.Vec3, colors []mgl32.Vec4, n int, indices ...int) {
	seen := make(map[int]struct{}, len(indices)*5)
	for _, i := range indices {
		x, y := i%(n+1), i/(n+1)
		for _, d := range [5][2]int{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx > n || ny > n {
				continue
			}
			j := ny*(n+1) + nx
			if _, ok := seen[j]; ok {
				continue
			}
			seen[j] = struct{}{}
			colors[j] = c.Color(vertices, n, nx, ny)
		}
	}
}
