// Package meshing builds the triangle topology shared by every terrain
// chunk and defines where finished meshes are published.
package meshing

import "sync"

// BuildTriangles returns the index buffer for an n x n quad grid whose
// (n+1)^2 vertices are stored row-major. Each quad emits two triangles,
// (q, q+n+1, q+1) then (q+1, q+n+1, q+n+2); the winding must not change.
func BuildTriangles(n int) []int32 {
	if n < 1 {
		return nil
	}
	tris := make([]int32, 0, n*n*6)
	row := int32(n + 1)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			q := int32(y)*row + int32(x)
			tris = append(tris,
				q, q+row, q+1,
				q+1, q+row, q+row+1,
			)
		}
	}
	return tris
}

var (
	sharedMu sync.Mutex
	shared   = make(map[int][]int32)
)

// Shared returns the index buffer for n, building it on first use. Callers
// must treat the slice as read-only.
func Shared(n int) []int32 {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if tris, ok := shared[n]; ok {
		return tris
	}
	tris := BuildTriangles(n)
	shared[n] = tris
	return tris
}
