// Package world holds the chunked terrain: per-chunk heightfields generated
// off the owner goroutine, triangle-accurate height queries and edits that
// keep shared seams identical across chunks.
package world

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"citysim/internal/colorize"
	"citysim/internal/meshing"
	"citysim/internal/noise"
	"citysim/internal/profiling"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// State is the generation state of a chunk.
type State int32

const (
	Pending State = iota
	Generating
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Generating:
		return "generating"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// terrain is the immutable per-grid state every chunk reads.
type terrain struct {
	n         int
	quadSize  float32
	chunkSize float32
	floor     float32
	field     *noise.Field
	colorizer *colorize.Colorizer
	triangles []int32
	sink      meshing.Sink
}

type buffers struct {
	vertices []mgl32.Vec3
	colors   []mgl32.Vec4
}

type deferredEdit struct {
	site  Site
	value float32
	level bool
}

// Chunk is one square heightfield tile. Apart from its state, which the
// generation job advances, a chunk is only touched by the grid owner.
type Chunk struct {
	coord  [2]int
	offset mgl32.Vec2
	t      *terrain

	state  atomic.Int32
	active atomic.Bool
	job    pond.Result[buffers]
	err    error

	vertices []mgl32.Vec3
	colors   []mgl32.Vec4
	deferred []deferredEdit
}

func newChunk(t *terrain, gx, gy int) *Chunk {
	return &Chunk{
		coord:  [2]int{gx, gy},
		offset: mgl32.Vec2{float32(gx) * t.chunkSize, float32(gy) * t.chunkSize},
		t:      t,
	}
}

// start submits the generation job.
func (c *Chunk) start(pool pond.ResultPool[buffers]) {
	c.job = pool.Submit(func() buffers {
		defer profiling.Track("world.generate")()
		c.state.CompareAndSwap(int32(Pending), int32(Generating))
		return generate(c.t, c.offset)
	})
}

func generate(t *terrain, offset mgl32.Vec2) buffers {
	row := t.n + 1
	b := buffers{
		vertices: make([]mgl32.Vec3, row*row),
		colors:   make([]mgl32.Vec4, row*row),
	}
	for y := 0; y <= t.n; y++ {
		for x := 0; x <= t.n; x++ {
			b.vertices[y*row+x] = mgl32.Vec3{
				float32(x) * t.quadSize,
				t.field.Height(offset, x, y),
				float32(y) * t.quadSize,
			}
		}
	}
	t.colorizer.Fill(b.vertices, b.colors, t.n)
	return b
}

// Coord returns the chunk's grid coordinates.
func (c *Chunk) Coord() [2]int { return c.coord }

// Offset returns the chunk's world offset on X/Z.
func (c *Chunk) Offset() mgl32.Vec2 { return c.offset }

// State returns the current generation state.
func (c *Chunk) State() State { return State(c.state.Load()) }

// Err returns the generation error of a Failed chunk.
func (c *Chunk) Err() error { return c.err }

// Active reports whether the chunk is inside the render range.
func (c *Chunk) Active() bool { return c.active.Load() }

// SetActive toggles render-range activity.
func (c *Chunk) SetActive(v bool) { c.active.Store(v) }

// Mesh returns the chunk's current mesh. The buffers are the chunk's own.
func (c *Chunk) Mesh() meshing.Mesh {
	return meshing.Mesh{
		Coord:     c.coord,
		Offset:    c.offset,
		Vertices:  c.vertices,
		Colors:    c.colors,
		Triangles: c.t.triangles,
	}
}

// Poll commits the generation result if the job has finished. It never
// blocks. The returned error is the generation failure, once.
func (c *Chunk) Poll() (bool, error) {
	if c.State() == Ready {
		return true, nil
	}
	if c.job == nil {
		return false, nil
	}
	select {
	case <-c.job.Done():
		err := c.commit()
		return err == nil, err
	default:
		return false, nil
	}
}

// Wait blocks until the generation job finishes and commits it.
func (c *Chunk) Wait(ctx context.Context) error {
	if c.job == nil {
		switch c.State() {
		case Ready:
			return nil
		case Failed:
			return c.err
		}
		return ErrNotReady
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.job.Done():
	}
	return c.commit()
}

// commit moves the job's buffers into the chunk in one step, replays edits
// that arrived while it was generating and publishes the mesh.
func (c *Chunk) commit() error {
	defer profiling.Track("world.commit")()
	res, err := c.job.Wait()
	c.job = nil
	if err != nil {
		c.err = fmt.Errorf("generate chunk %v: %w", c.coord, err)
		c.state.Store(int32(Failed))
		return c.err
	}

	c.vertices, c.colors = res.vertices, res.colors
	c.state.Store(int32(Ready))

	for _, e := range c.deferred {
		if _, _, err := c.apply(e.site, e.value, e.level); err != nil {
			c.deferred = nil
			return err
		}
	}
	c.deferred = nil

	c.t.sink.Publish(c.Mesh())
	return nil
}

// Close waits for an outstanding job and releases the buffers. The chunk
// answers every query with 0 afterwards.
func (c *Chunk) Close() {
	if c.job != nil {
		c.job.Wait()
		c.job = nil
	}
	c.vertices, c.colors, c.deferred = nil, nil, nil
	c.active.Store(false)
	c.state.Store(int32(Pending))
}

func (c *Chunk) quad(localX, localY float32) (ix, iy int, x, y float32) {
	n := c.t.n
	fx := float64(localX) / float64(c.t.quadSize)
	fy := float64(localY) / float64(c.t.quadSize)
	ix = clampInt(int(math.Floor(fx)), 0, n-1)
	iy = clampInt(int(math.Floor(fy)), 0, n-1)
	return ix, iy, float32(fx - float64(ix)), float32(fy - float64(iy))
}

// HeightAt returns the height under a chunk-local point, interpolated on
// the triangle that contains it. It returns 0 until the chunk is Ready.
func (c *Chunk) HeightAt(localX, localY float32) float32 {
	if c.State() != Ready {
		return 0
	}
	ix, iy, x, y := c.quad(localX, localY)
	row := c.t.n + 1
	q := iy*row + ix
	a := c.vertices[q].Y()
	b := c.vertices[q+row].Y()
	cc := c.vertices[q+row+1].Y()
	d := c.vertices[q+1].Y()

	xi, yi := 1-x, 1-y
	switch {
	case x+y == 0:
		return a
	case xi+yi == 0:
		return cc
	case xi == 0 && y == 0:
		return d
	case x == 0 && yi == 0:
		return b
	}

	if s := x + y; s < 1 {
		// blend along B-D, then walk out from A
		e := d*(x/s) + b*(y/s)
		return a + (e-a)*s
	}
	s := xi + yi
	e := b*(xi/s) + d*(yi/s)
	return cc + (e-cc)*s
}

// TriangleCorners returns the world positions of the corners of the
// triangle under a chunk-local point.
func (c *Chunk) TriangleCorners(localX, localY float32) ([3]mgl32.Vec3, bool) {
	var out [3]mgl32.Vec3
	if c.State() != Ready {
		return out, false
	}
	site := locate(localX, localY, c.t.quadSize, c.t.n)
	row := c.t.n + 1
	offset := mgl32.Vec3{c.offset.X(), 0, c.offset.Y()}
	for i, v := range site.Corners() {
		out[i] = c.vertices[v[1]*row+v[0]].Add(offset)
	}
	return out, true
}

// ChangeHeight edits the triangle under a local point. Coordinates up to
// one chunk outside this chunk on either axis address a point owned by a
// neighbour; only the vertices shared with it change. In level mode the
// touched vertices are flattened to their average (three vertices) or to
// value (fewer); otherwise value is added. It returns the applied value:
// the average when one was taken, else value.
func (c *Chunk) ChangeHeight(localX, localY, value float32, level bool) (float32, error) {
	if c.State() != Ready {
		return 0, ErrNotReady
	}
	site := siteFromLocal(localX, localY, c.t.chunkSize, c.t.quadSize, c.t.n)
	return c.edit(site, value, level)
}

// edit applies a resolved site and publishes. Edits against a chunk that
// is still generating are replayed on commit.
func (c *Chunk) edit(site Site, value float32, level bool) (float32, error) {
	switch c.State() {
	case Ready:
	case Pending, Generating:
		if c.job == nil {
			return 0, ErrNotReady
		}
		if _, err := site.Affected(c.t.n); err != nil {
			return 0, err
		}
		c.deferred = append(c.deferred, deferredEdit{site: site, value: value, level: level})
		return value, nil
	default:
		return 0, ErrNotReady
	}

	applied, touched, err := c.apply(site, value, level)
	if err != nil {
		return 0, err
	}
	if touched > 0 {
		c.t.sink.Publish(c.Mesh())
	}
	return applied, nil
}

// apply changes the vertices under site and returns the applied value and
// how many vertices it touched.
func (c *Chunk) apply(site Site, value float32, level bool) (float32, int, error) {
	defer profiling.Track("world.apply")()
	indices, err := site.Affected(c.t.n)
	if err != nil {
		return 0, 0, err
	}
	if len(indices) == 0 {
		return value, 0, nil
	}

	applied := value
	if level && len(indices) == 3 {
		var sum float64
		for _, i := range indices {
			sum += float64(c.vertices[i].Y())
		}
		applied = float32(sum / 3)
	}

	for _, i := range indices {
		h := c.vertices[i].Y() + value
		if level {
			h = applied
		}
		c.vertices[i][1] = max(h, c.t.floor)
	}
	c.t.colorizer.Refresh(c.vertices, c.colors, c.t.n, indices...)
	return applied, len(indices), nil
}
