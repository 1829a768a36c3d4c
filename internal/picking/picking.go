// Package picking finds where a ray meets the terrain surface.
package picking

import (
	"citysim/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultInterval is the march step used when none is given.
	DefaultInterval = 0.1
	// DefaultMaxDistance bounds the march when none is given.
	DefaultMaxDistance = 1000
)

// HeightSampler answers terrain heights at world X/Z.
type HeightSampler interface {
	HeightAt(worldX, worldZ float32) float32
}

// Result stores the outcome of a pick.
type Result struct {
	Position mgl32.Vec3 // on the surface, Y snapped to terrain height
	Distance float32
	Hit      bool
}

// Pick marches from origin along dir in interval steps and stops at the
// first point no more than one step above the surface. Slopes up to about
// 60 degrees are found reliably at the default interval.
func Pick(s HeightSampler, origin, dir mgl32.Vec3, maxDist, interval float32) Result {
	defer profiling.Track("picking.Pick")()
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxDist <= 0 {
		maxDist = DefaultMaxDistance
	}
	if dir.Len() == 0 {
		return Result{}
	}
	dir = dir.Normalize()

	steps := int(maxDist / interval)
	for i := 0; i <= steps; i++ {
		dist := float32(i) * interval
		p := origin.Add(dir.Mul(dist))
		h := s.HeightAt(p.X(), p.Z())
		if p.Y()-h < interval {
			p[1] = h
			return Result{Position: p, Distance: dist, Hit: true}
		}
	}
	return Result{}
}
