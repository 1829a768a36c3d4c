package meshing

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is the renderable state of one chunk. Vertices are chunk-local;
// Offset places the chunk in the world. Triangles is the shared topology.
type Mesh struct {
	Coord     [2]int
	Offset    mgl32.Vec2
	Vertices  []mgl32.Vec3
	Colors    []mgl32.Vec4
	Triangles []int32
}

// Clone copies the per-chunk buffers. Triangles stays shared.
func (m Mesh) Clone() Mesh {
	m.Vertices = append([]mgl32.Vec3(nil), m.Vertices...)
	m.Colors = append([]mgl32.Vec4(nil), m.Colors...)
	return m
}

// Sink receives a chunk's mesh after generation and after every edit.
// Publish runs on the grid owner's goroutine; the buffers belong to the
// chunk and must be copied if kept past the call.
type Sink interface {
	Publish(m Mesh)
}

// NopSink discards meshes.
type NopSink struct{}

func (NopSink) Publish(Mesh) {}

// Recorder keeps a copy of every published mesh.
type Recorder struct {
	mu     sync.Mutex
	meshes []Mesh
}

func (r *Recorder) Publish(m Mesh) {
	r.mu.Lock()
	r.meshes = append(r.meshes, m.Clone())
	r.mu.Unlock()
}

// Meshes returns the recorded meshes in publish order.
func (r *Recorder) Meshes() []Mesh {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Mesh(nil), r.meshes...)
}

// Latest returns the most recent mesh published for coord.
func (r *Recorder) Latest(coord [2]int) (Mesh, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.meshes) - 1; i >= 0; i-- {
		if r.meshes[i].Coord == coord {
			return r.meshes[i], true
		}
	}
	return Mesh{}, false
}

// Count returns how many meshes were published for coord.
func (r *Recorder) Count(coord [2]int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.meshes {
		if m.Coord == coord {
			n++
		}
	}
	return n
}
