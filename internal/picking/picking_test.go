package picking_test

import (
	"testing"

	"citysim/internal/picking"

	"github.com/go-gl/mathgl/mgl32"
)

// plane is a flat surface at a fixed height inside [0,size)².
type plane struct {
	height float32
	size   float32
}

func (p plane) HeightAt(x, z float32) float32 {
	if x < 0 || z < 0 || x >= p.size || z >= p.size {
		return 0
	}
	return p.height
}

// ramp rises one unit per unit of X.
type ramp struct{}

func (ramp) HeightAt(x, z float32) float32 { return x }

func TestPickStraightDown(t *testing.T) {
	s := plane{height: 2, size: 100}
	res := picking.Pick(s, mgl32.Vec3{10, 12, 20}, mgl32.Vec3{0, -1, 0}, 50, 0.1)

	if !res.Hit {
		t.Fatalf("Expected hit, got miss")
	}
	if res.Position.Y() != 2 {
		t.Errorf("Expected Y snapped to 2, got %v", res.Position.Y())
	}
	if res.Position.X() != 10 || res.Position.Z() != 20 {
		t.Errorf("Expected hit below origin, got %v", res.Position)
	}
	if res.Distance < 9.8 || res.Distance > 10.01 {
		t.Errorf("Expected distance about 10, got %f", res.Distance)
	}
}

func TestPickMisses(t *testing.T) {
	s := plane{height: 2, size: 100}

	// too short
	if res := picking.Pick(s, mgl32.Vec3{10, 12, 20}, mgl32.Vec3{0, -1, 0}, 5, 0.1); res.Hit {
		t.Errorf("Expected miss due to maxDist, got hit at %v", res.Position)
	}
	// pointing up
	if res := picking.Pick(s, mgl32.Vec3{10, 12, 20}, mgl32.Vec3{0, 1, 0}, 50, 0.1); res.Hit {
		t.Errorf("Expected miss, got hit at %v", res.Position)
	}
	// no direction
	if res := picking.Pick(s, mgl32.Vec3{10, 12, 20}, mgl32.Vec3{}, 50, 0.1); res.Hit {
		t.Errorf("Expected miss for zero direction")
	}
}

func TestPickSlope(t *testing.T) {
	// Ray from (0, 10, 0) heading down at 45 degrees towards +X meets the
	// ramp y = x at x = 5.
	dir := mgl32.Vec3{1, -1, 0}
	res := picking.Pick(ramp{}, mgl32.Vec3{0, 10, 0}, dir, 0, 0.05)
	if !res.Hit {
		t.Fatalf("Expected hit on ramp, got miss")
	}
	if x := res.Position.X(); x < 4.9 || x > 5.05 {
		t.Errorf("Expected hit near x=5, got %v", res.Position)
	}
	if res.Position.Y() != res.Position.X() {
		t.Errorf("Expected Y snapped onto the ramp, got %v", res.Position)
	}
}
