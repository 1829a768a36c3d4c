package world

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"sync"

	"citysim/internal/colorize"
	"citysim/internal/config"
	"citysim/internal/meshing"
	"citysim/internal/noise"
	"citysim/internal/profiling"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Grid is a bounded G x G sparse grid of chunks, generated on first access.
// Queries and edits are driven by one owner goroutine; slot lookups are
// safe from any goroutine.
type Grid struct {
	cfg  *config.Config
	t    *terrain
	pool pond.ResultPool[buffers]
	log  *slog.Logger

	size    int
	mapSize float32

	mu    sync.RWMutex
	slots []*Chunk
}

// Stats is a snapshot of the grid.
type Stats struct {
	Chunks     int
	Pending    int
	Generating int
	Ready      int
	Failed     int
	Active     int
	Queued     uint64
}

// NewGrid builds a grid for cfg. The config is copied and normalized;
// corrections are logged. A nil sink discards meshes and a nil logger
// discards logs.
func NewGrid(cfg *config.Config, sink meshing.Sink, log *slog.Logger) *Grid {
	return newGrid(cfg, nil, sink, log)
}

// newGrid lets tests swap the noise source named by the config.
func newGrid(cfg *config.Config, src noise.Source, sink meshing.Sink, log *slog.Logger) *Grid {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if sink == nil {
		sink = meshing.NopSink{}
	}

	cfg = cfg.Clone()
	for _, fix := range cfg.Normalize() {
		log.Warn("config corrected", "fix", fix)
	}

	if src == nil {
		src = noise.NewSource(cfg.Noise)
	}

	workers := cfg.Grid.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	g := &Grid{
		cfg: cfg,
		t: &terrain{
			n:         cfg.Grid.QuadsPerChunk,
			quadSize:  cfg.Grid.QuadSize,
			chunkSize: cfg.ChunkSize(),
			floor:     cfg.WaterFloor(),
			field:     noise.NewFieldWithSource(cfg, src),
			colorizer: colorize.New(cfg),
			triangles: meshing.Shared(cfg.Grid.QuadsPerChunk),
			sink:      sink,
		},
		pool:    pond.NewResultPool[buffers](workers),
		log:     log,
		size:    cfg.Grid.MaxGridSize,
		mapSize: cfg.MapSize(),
	}
	g.slots = make([]*Chunk, g.size*g.size)

	log.Debug("grid created",
		"size", g.size,
		"quads", g.t.n,
		"quad_size", g.t.quadSize,
		"noise", cfg.Noise.Kind,
		"workers", workers,
	)
	return g
}

// Config returns the normalized config the grid runs with.
func (g *Grid) Config() *config.Config { return g.cfg }

// Size returns the number of chunks per axis.
func (g *Grid) Size() int { return g.size }

// ChunkSize returns the world edge length of one chunk.
func (g *Grid) ChunkSize() float32 { return g.t.chunkSize }

// MapSize returns the world edge length of the grid.
func (g *Grid) MapSize() float32 { return g.mapSize }

// ToGridCoords returns the chunk containing a world point, clamped into the
// grid.
func (g *Grid) ToGridCoords(worldX, worldZ float32) (int, int) {
	gx := int(math.Floor(float64(worldX) / float64(g.t.chunkSize)))
	gz := int(math.Floor(float64(worldZ) / float64(g.t.chunkSize)))
	return clampInt(gx, 0, g.size-1), clampInt(gz, 0, g.size-1)
}

// GridCoords is ToGridCoords for points on the map; ok is false outside it.
func (g *Grid) GridCoords(worldX, worldZ float32) (gx, gz int, ok bool) {
	if !g.onMap(worldX, worldZ) {
		return 0, 0, false
	}
	gx, gz = g.ToGridCoords(worldX, worldZ)
	return gx, gz, true
}

func (g *Grid) onMap(worldX, worldZ float32) bool {
	return worldX >= 0 && worldZ >= 0 && worldX < g.mapSize && worldZ < g.mapSize
}

func (g *Grid) inRange(gx, gz int) bool {
	return gx >= 0 && gz >= 0 && gx < g.size && gz < g.size
}

// Chunk returns the chunk at grid coordinates without creating it.
func (g *Grid) Chunk(gx, gz int) (*Chunk, bool) {
	if !g.inRange(gx, gz) {
		return nil, false
	}
	g.mu.RLock()
	c := g.slots[gz*g.size+gx]
	g.mu.RUnlock()
	return c, c != nil
}

// ChunkExists reports whether a chunk has been created at grid coordinates.
func (g *Grid) ChunkExists(gx, gz int) bool {
	_, ok := g.Chunk(gx, gz)
	return ok
}

// GetOrCreate returns the chunk at grid coordinates, creating it and
// submitting its generation job on first use. Out of range coordinates
// return nil.
func (g *Grid) GetOrCreate(gx, gz int) *Chunk {
	if !g.inRange(gx, gz) {
		return nil
	}
	i := gz*g.size + gx

	g.mu.RLock()
	c := g.slots[i]
	g.mu.RUnlock()
	if c != nil {
		return c
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.slots[i]; c != nil {
		return c
	}
	c = newChunk(g.t, gx, gz)
	c.start(g.pool)
	g.slots[i] = c
	return c
}

// resolve finds the chunk owning a world point and the point's local
// coordinates in it.
func (g *Grid) resolve(worldX, worldZ float32) (*Chunk, float32, float32, bool) {
	if !g.onMap(worldX, worldZ) {
		return nil, 0, 0, false
	}
	gx, gz := g.ToGridCoords(worldX, worldZ)
	c := g.GetOrCreate(gx, gz)
	g.poll(c)
	off := c.Offset()
	lx := min(max(worldX-off.X(), 0), g.t.chunkSize)
	lz := min(max(worldZ-off.Y(), 0), g.t.chunkSize)
	return c, lx, lz, true
}

func (g *Grid) poll(c *Chunk) bool {
	ready, err := c.Poll()
	if err != nil {
		g.log.Error("chunk generation failed", "chunk", c.Coord(), "err", err)
	}
	return ready
}

// HeightAt returns the terrain height at a world point. Points off the map
// return 0 without creating anything; chunks still generating return 0.
func (g *Grid) HeightAt(worldX, worldZ float32) float32 {
	c, lx, lz, ok := g.resolve(worldX, worldZ)
	if !ok {
		return 0
	}
	return c.HeightAt(lx, lz)
}

// TriangleCorners returns the world corners of the triangle under pos.
func (g *Grid) TriangleCorners(pos mgl32.Vec3) ([3]mgl32.Vec3, bool) {
	c, lx, lz, ok := g.resolve(pos.X(), pos.Z())
	if !ok {
		return [3]mgl32.Vec3{}, false
	}
	return c.TriangleCorners(lx, lz)
}

// ChangeHeight edits the terrain under pos and carries the change to every
// neighbour sharing a vertex of the edited triangle, using the value the
// owner applied so every copy of a shared vertex ends up identical. It
// returns the applied value and whether the edit happened.
func (g *Grid) ChangeHeight(pos mgl32.Vec3, amount float32, level bool) (float32, bool) {
	defer profiling.Track("world.ChangeHeight")()
	owner, lx, lz, ok := g.resolve(pos.X(), pos.Z())
	if !ok || owner.State() != Ready {
		return 0, false
	}

	site := locate(lx, lz, g.t.quadSize, g.t.n)
	applied, err := owner.edit(site, amount, level)
	if err != nil {
		g.log.Error("terrain edit aborted", "chunk", owner.Coord(), "pos", pos, "err", err)
		return 0, false
	}

	coord := owner.Coord()
	for _, d := range g.neighbours(site) {
		nb := g.GetOrCreate(coord[0]+d[0], coord[1]+d[1])
		if nb == nil {
			continue
		}
		g.poll(nb)
		if _, err := nb.edit(site.Neighbour(d), applied, level); err != nil {
			g.log.Error("seam edit aborted", "chunk", nb.Coord(), "from", coord, "err", err)
		}
	}
	return applied, true
}

// neighbours lists the chunk offsets sharing a vertex of the triangle at
// site. A corner on a chunk edge names the chunk across it; a corner on a
// chunk corner also names the diagonal.
func (g *Grid) neighbours(site Site) [][2]int {
	var out [][2]int
	add := func(d [2]int) {
		if d == [2]int{} || slices.Contains(out, d) {
			return
		}
		out = append(out, d)
	}
	for _, v := range site.Corners() {
		dx, dz := g.edgeSide(v[0]), g.edgeSide(v[1])
		add([2]int{dx, 0})
		add([2]int{0, dz})
		add([2]int{dx, dz})
	}
	return out
}

// edgeSide maps a vertex coordinate to -1 or +1 on the chunk's near or far
// edge, 0 inside.
func (g *Grid) edgeSide(v int) int {
	switch v {
	case 0:
		return -1
	case g.t.n:
		return 1
	}
	return 0
}

func (g *Grid) chunks() []*Chunk {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Chunk, 0, len(g.slots))
	for _, c := range g.slots {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Poll commits every finished generation job and returns how many chunks
// became ready. Call it once per frame.
func (g *Grid) Poll() int {
	defer profiling.Track("world.Poll")()
	n := 0
	for _, c := range g.chunks() {
		if c.State() == Ready {
			continue
		}
		if g.poll(c) {
			n++
		}
	}
	return n
}

// Wait blocks until every created chunk has finished generating.
func (g *Grid) Wait(ctx context.Context) error {
	var errs []error
	for _, c := range g.chunks() {
		if err := c.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteAll drops every chunk, waiting for outstanding jobs first. Later
// access regenerates from the same parameters; edits are lost.
func (g *Grid) DeleteAll() {
	g.mu.Lock()
	old := g.slots
	g.slots = make([]*Chunk, g.size*g.size)
	g.mu.Unlock()

	n := 0
	for _, c := range old {
		if c != nil {
			c.Close()
			n++
		}
	}
	g.log.Debug("grid cleared", "chunks", n)
}

// Close drops every chunk and stops the worker pool.
func (g *Grid) Close() {
	g.DeleteAll()
	g.pool.StopAndWait()
}

// Stats counts chunks by state.
func (g *Grid) Stats() Stats {
	s := Stats{Queued: g.pool.WaitingTasks()}
	for _, c := range g.chunks() {
		s.Chunks++
		switch c.State() {
		case Pending:
			s.Pending++
		case Generating:
			s.Generating++
		case Ready:
			s.Ready++
		case Failed:
			s.Failed++
		}
		if c.Active() {
			s.Active++
		}
	}
	return s
}
