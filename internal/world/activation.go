package world

import (
	"sort"

	"citysim/internal/profiling"
)

// UpdateActivity activates every chunk inside the square render range
// around a world point, creating the missing ones nearest first, and
// deactivates existing chunks outside it. It returns the inclusive grid
// bounds of the range.
func (g *Grid) UpdateActivity(centerX, centerZ, renderRange float32) (from, to [2]int) {
	defer profiling.Track("world.UpdateActivity")()
	fx, fz := g.ToGridCoords(centerX-renderRange, centerZ-renderRange)
	tx, tz := g.ToGridCoords(centerX+renderRange, centerZ+renderRange)
	from, to = [2]int{fx, fz}, [2]int{tx, tz}

	cx, cz := g.ToGridCoords(centerX, centerZ)
	radius := max(cx-fx, tx-cx, cz-fz, tz-cz)
	for r := 0; r <= radius; r++ {
		for _, p := range ring(cx, cz, r) {
			if p[0] < fx || p[0] > tx || p[1] < fz || p[1] > tz {
				continue
			}
			if c := g.GetOrCreate(p[0], p[1]); c != nil {
				c.SetActive(true)
			}
		}
	}

	for _, c := range g.chunks() {
		p := c.Coord()
		if p[0] < fx || p[0] > tx || p[1] < fz || p[1] > tz {
			c.SetActive(false)
		}
	}
	return from, to
}

// ring returns the grid positions at Chebyshev distance r from (cx, cz),
// walking the square's edges.
func ring(cx, cz, r int) [][2]int {
	if r == 0 {
		return [][2]int{{cx, cz}}
	}
	out := make([][2]int, 0, 8*r)
	x0, x1 := cx-r, cx+r
	z0, z1 := cz-r, cz+r
	for x := x0; x <= x1; x++ {
		out = append(out, [2]int{x, z0})
	}
	for z := z0 + 1; z <= z1-1; z++ {
		out = append(out, [2]int{x1, z})
	}
	for x := x1; x >= x0; x-- {
		out = append(out, [2]int{x, z1})
	}
	for z := z1 - 1; z >= z0+1; z-- {
		out = append(out, [2]int{x0, z})
	}
	return out
}

// ActiveChunks returns the coordinates of active chunks, sorted by row.
func (g *Grid) ActiveChunks() [][2]int {
	var out [][2]int
	for _, c := range g.chunks() {
		if c.Active() {
			out = append(out, c.Coord())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][0] < out[j][0]
	})
	return out
}
