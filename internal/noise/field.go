package noise

import (
	"math"

	"citysim/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

// Field sums octaves of a Source into terrain heights.
type Field struct {
	src Source

	octaves     int
	amplitude   float64
	persistence float64
	frequency   float64
	lacunarity  float64
	offset      [2]float64

	quadSize float64
	quads    float64 // quads per chunk edge
	floor    float32
}

// NewField builds a field for a normalized config using the source named
// by cfg.Noise.Kind.
func NewField(cfg *config.Config) *Field {
	return NewFieldWithSource(cfg, NewSource(cfg.Noise))
}

// NewFieldWithSource builds a field around an explicit source.
func NewFieldWithSource(cfg *config.Config, src Source) *Field {
	n := cfg.Noise
	return &Field{
		src:         src,
		octaves:     n.Octaves,
		amplitude:   float64(n.InitialAmplitude),
		persistence: float64(n.Persistence),
		frequency:   float64(n.InitialFrequency),
		lacunarity:  float64(n.Lacunarity),
		offset:      [2]float64{float64(n.Offset[0]), float64(n.Offset[1])},
		quadSize:    float64(cfg.Grid.QuadSize),
		quads:       float64(cfg.Grid.QuadsPerChunk),
		floor:       cfg.WaterFloor(),
	}
}

// Floor is the lowest height the field returns.
func (f *Field) Floor() float32 { return f.floor }

// Height returns the height of vertex (x, y) of the chunk whose world
// offset is chunkOffset. The vertex is resolved to a global lattice index
// first so two chunks sharing an edge sample bit-identical positions.
func (f *Field) Height(chunkOffset mgl32.Vec2, x, y int) float32 {
	gx := math.Round(float64(chunkOffset.X())/f.quadSize) + float64(x)
	gy := math.Round(float64(chunkOffset.Y())/f.quadSize) + float64(y)
	return f.Sample(gx*f.quadSize, gy*f.quadSize)
}

// Sample returns the height at an arbitrary world position.
func (f *Field) Sample(worldX, worldY float64) float32 {
	amplitude := f.amplitude
	frequency := f.frequency
	sum := 0.0
	for range f.octaves {
		px := worldX/f.quads*frequency + f.offset[0]
		py := worldY/f.quads*frequency + f.offset[1]
		sum += f.src.Noise2D(px, py) * amplitude
		amplitude *= f.persistence
		frequency *= f.lacunarity
	}
	return max(float32(sum), f.floor)
}
