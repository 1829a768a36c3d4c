package meshing

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBuildTrianglesSingleQuad(t *testing.T) {
	got := BuildTriangles(1)
	want := []int32{0, 2, 1, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %d indices, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d (full %v)", i, got[i], want[i], got)
		}
	}
}

func TestBuildTrianglesLength(t *testing.T) {
	for _, n := range []int{1, 2, 4, 16, 64} {
		if got := len(BuildTriangles(n)); got != n*n*6 {
			t.Errorf("n=%d: got %d indices, want %d", n, got, n*n*6)
		}
	}
	if BuildTriangles(0) != nil {
		t.Error("n=0 should produce no triangles")
	}
}

func TestBuildTrianglesQuadOrder(t *testing.T) {
	n := 4
	tris := BuildTriangles(n)
	// quad (x=2, y=1) is the 6th quad: q = 1*5+2 = 7
	base := (1*n + 2) * 6
	want := []int32{7, 12, 8, 8, 12, 13}
	for i, w := range want {
		if tris[base+i] != w {
			t.Errorf("quad (2,1) index %d: got %d, want %d", i, tris[base+i], w)
		}
	}
}

// TestBuildTrianglesWinding verifies every triangle faces up (+Y) for a
// flat grid laid out on X/Z, i.e. the winding is consistent.
func TestBuildTrianglesWinding(t *testing.T) {
	n := 3
	verts := make([]mgl32.Vec3, (n+1)*(n+1))
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			verts[y*(n+1)+x] = mgl32.Vec3{float32(x), 0, float32(y)}
		}
	}
	tris := BuildTriangles(n)
	for i := 0; i < len(tris); i += 3 {
		a, b, c := verts[tris[i]], verts[tris[i+1]], verts[tris[i+2]]
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Y() <= 0 {
			t.Fatalf("triangle %d (%v) faces down: normal %v", i/3, tris[i:i+3], normal)
		}
	}
}

func TestSharedIsCached(t *testing.T) {
	a := Shared(8)
	b := Shared(8)
	if &a[0] != &b[0] {
		t.Error("Shared(8) rebuilt the topology")
	}
	if c := Shared(4); len(c) != 4*4*6 {
		t.Errorf("Shared(4): got %d indices", len(c))
	}
}

func testMesh(coord [2]int) Mesh {
	return Mesh{
		Coord:     coord,
		Vertices:  []mgl32.Vec3{{0, 1, 0}},
		Colors:    []mgl32.Vec4{{1, 1, 1, 1}},
		Triangles: Shared(1),
	}
}

func TestRecorderCopies(t *testing.T) {
	var r Recorder
	m := testMesh([2]int{1, 2})
	r.Publish(m)
	m.Vertices[0][1] = 5

	got, ok := r.Latest([2]int{1, 2})
	if !ok {
		t.Fatal("mesh not recorded")
	}
	if got.Vertices[0].Y() != 1 {
		t.Errorf("recorder kept a reference to the chunk buffer")
	}
	if r.Count([2]int{1, 2}) != 1 || r.Count([2]int{0, 0}) != 0 {
		t.Errorf("unexpected counts")
	}
}

type countingSink struct {
	mu sync.Mutex
	n  map[[2]int]int
}

func (c *countingSink) Publish(m Mesh) {
	c.mu.Lock()
	c.n[m.Coord]++
	c.mu.Unlock()
}

func TestQueuedSinkDelivers(t *testing.T) {
	down := &countingSink{n: make(map[[2]int]int)}
	s := NewBlockingQueuedSink(down, 2, 4)
	for i := 0; i < 40; i++ {
		s.Publish(testMesh([2]int{i % 4, 0}))
	}
	s.Close()

	total := 0
	for _, n := range down.n {
		total += n
	}
	if total != 40 {
		t.Errorf("delivered %d meshes, want 40", total)
	}
	if s.Dropped() != 0 {
		t.Errorf("dropped %d meshes", s.Dropped())
	}
}

type blockingSink struct{ release chan struct{} }

func (b blockingSink) Publish(Mesh) { <-b.release }

func TestQueuedSinkDropsWhenFull(t *testing.T) {
	down := blockingSink{release: make(chan struct{})}
	s := NewQueuedSink(down, 1, 1)
	for i := 0; i < 10; i++ {
		s.Publish(testMesh([2]int{0, 0}))
	}
	if s.Dropped() == 0 {
		t.Error("expected drops on a full queue")
	}
	close(down.release)
	s.Close()
}

func TestBlockingQueuedSinkNeverDrops(t *testing.T) {
	down := &countingSink{n: make(map[[2]int]int)}
	s := NewBlockingQueuedSink(down, 1, 1)
	for i := 0; i < 50; i++ {
		s.Publish(testMesh([2]int{0, i}))
	}
	s.Close()
	if len(down.n) != 50 || s.Dropped() != 0 {
		t.Errorf("delivered %d distinct meshes, dropped %d", len(down.n), s.Dropped())
	}
}
