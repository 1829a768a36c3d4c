package config

import "sync"

const (
	MinRenderRange     = 10
	MaxRenderRange     = 10000
	DefaultRenderRange = 5000
)

// RenderSettings holds the render range used to toggle chunk activity.
// It is safe to read from the render goroutine while input changes it.
type RenderSettings struct {
	mu          sync.RWMutex
	renderRange float32 // world units around the camera target
}

// NewRenderSettings creates settings with the given range, clamped.
func NewRenderSettings(renderRange float32) *RenderSettings {
	rs := &RenderSettings{}
	rs.SetRenderRange(renderRange)
	return rs
}

// RenderRange returns the current render range in world units.
func (rs *RenderSettings) RenderRange() float32 {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.renderRange
}

// SetRenderRange sets the render range in world units.
func (rs *RenderSettings) SetRenderRange(r float32) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	// Clamp to reasonable values
	if r < MinRenderRange {
		r = MinRenderRange
	}
	if r > MaxRenderRange {
		r = MaxRenderRange
	}

	rs.renderRange = r
}
