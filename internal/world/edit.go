package world

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotReady is returned when a chunk is asked to change before its
	// generation has been committed.
	ErrNotReady = errors.New("world: chunk not ready")

	// ErrEditGeometry marks an edit whose geometry falls outside every
	// expected case. It indicates a bug, not bad input.
	ErrEditGeometry = errors.New("world: edit geometry fault")
)

// EditKind classifies an edit by where the edited point lies relative to
// the chunk being changed.
type EditKind int

const (
	// EditInterior: the point lies in this chunk.
	EditInterior EditKind = iota
	// EditHorizontal: the point lies in the chunk left or right of this one.
	EditHorizontal
	// EditVertical: the point lies in the chunk below or above this one.
	EditVertical
	// EditCorner: the point lies in a diagonal neighbour.
	EditCorner
)

func (k EditKind) String() string {
	switch k {
	case EditInterior:
		return "interior"
	case EditHorizontal:
		return "edge-horizontal"
	case EditVertical:
		return "edge-vertical"
	case EditCorner:
		return "corner"
	}
	return fmt.Sprintf("EditKind(%d)", int(k))
}

// Site is the triangle under an edited point. Quad and Upper are in the
// frame of the chunk owning the point; Shift is that chunk's grid position
// relative to the chunk being changed.
type Site struct {
	Quad  [2]int
	Upper bool
	Shift [2]int
}

// Kind classifies the site from its shift.
func (s Site) Kind() (EditKind, error) {
	sx, sy := s.Shift[0], s.Shift[1]
	if sx < -1 || sx > 1 || sy < -1 || sy > 1 {
		return 0, fmt.Errorf("%w: shift %v", ErrEditGeometry, s.Shift)
	}
	switch {
	case sx == 0 && sy == 0:
		return EditInterior, nil
	case sy == 0:
		return EditHorizontal, nil
	case sx == 0:
		return EditVertical, nil
	default:
		return EditCorner, nil
	}
}

// Neighbour returns the same site seen from the chunk at offset d from
// the owner.
func (s Site) Neighbour(d [2]int) Site {
	s.Shift = [2]int{s.Shift[0] - d[0], s.Shift[1] - d[1]}
	return s
}

// Corners returns the triangle's vertex coordinates in the owner's frame,
// in the winding of the index buffer.
func (s Site) Corners() [3][2]int {
	x, y := s.Quad[0], s.Quad[1]
	if s.Upper {
		return [3][2]int{{x + 1, y}, {x, y + 1}, {x + 1, y + 1}}
	}
	return [3][2]int{{x, y}, {x, y + 1}, {x + 1, y}}
}

// Affected returns the vertex indices of an n-quad chunk touched by the
// edit. An interior edit always touches three; a neighbour touches only
// the vertices it shares with the owner, possibly none.
func (s Site) Affected(n int) ([]int, error) {
	kind, err := s.Kind()
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, 3)
	for _, v := range s.Corners() {
		x := v[0] + s.Shift[0]*n
		y := v[1] + s.Shift[1]*n
		if x < 0 || y < 0 || x > n || y > n {
			continue
		}
		indices = append(indices, y*(n+1)+x)
	}

	if kind == EditInterior && len(indices) != 3 {
		return nil, fmt.Errorf("%w: interior site %v touches %d vertices", ErrEditGeometry, s.Quad, len(indices))
	}
	return indices, nil
}

// locate finds the triangle under a local point of an n-quad chunk. The
// quad is clamped into the chunk and x+y == 1 belongs to the upper
// triangle.
func locate(localX, localY, quadSize float32, n int) Site {
	fx := float64(localX) / float64(quadSize)
	fy := float64(localY) / float64(quadSize)
	ix := clampInt(int(math.Floor(fx)), 0, n-1)
	iy := clampInt(int(math.Floor(fy)), 0, n-1)
	x := fx - float64(ix)
	y := fy - float64(iy)
	return Site{Quad: [2]int{ix, iy}, Upper: x+y >= 1}
}

// siteFromLocal resolves coordinates given in the frame of the chunk being
// changed. Coordinates one chunk outside on either axis name a point in a
// neighbour; the far edge itself belongs to this chunk, as in locate.
func siteFromLocal(localX, localY, chunkSize, quadSize float32, n int) Site {
	shiftX := chunkShift(localX, chunkSize)
	shiftY := chunkShift(localY, chunkSize)
	ox := float64(localX) - float64(shiftX)*float64(chunkSize)
	oy := float64(localY) - float64(shiftY)*float64(chunkSize)
	s := locate(float32(ox), float32(oy), quadSize, n)
	s.Shift = [2]int{shiftX, shiftY}
	return s
}

func chunkShift(v, chunkSize float32) int {
	if v == chunkSize {
		return 0
	}
	return int(math.Floor(float64(v) / float64(chunkSize)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
