package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MaxColorStops is the number of stops a color ramp may carry.
	MaxColorStops = 7

	// WaterEpsilon keeps the terrain floor just below the water plane so
	// submerged vertices never sit exactly on it.
	WaterEpsilon = 0.01

	// NoiseKind values accepted by Noise.Kind.
	NoiseValue   = "value"
	NoisePerlin  = "perlin"
	NoiseSimplex = "simplex"
	NoiseFlat    = "flat"
)

// Config holds the immutable terrain configuration shared by every chunk.
type Config struct {
	Grid           Grid    `yaml:"grid"`
	Noise          Noise   `yaml:"noise"`
	WaterLevel     float32 `yaml:"water_level"`     // fraction of InitialAmplitude
	FloraExtremity float32 `yaml:"flora_extremity"` // slope at which flora vanishes
	Colors         Colors  `yaml:"colors"`
}

// Grid describes the chunk layout.
type Grid struct {
	QuadsPerChunk int     `yaml:"quads_per_chunk"`
	QuadSize      float32 `yaml:"quad_size"`
	MaxGridSize   int     `yaml:"max_grid_size"`
	Workers       int     `yaml:"workers"` // 0 = one per CPU
}

// Noise holds the fractal noise parameters.
type Noise struct {
	Kind             string     `yaml:"kind"`
	Seed             int64      `yaml:"seed"`
	Octaves          int        `yaml:"octaves"`
	InitialAmplitude float32    `yaml:"initial_amplitude"`
	Persistence      float32    `yaml:"persistence"`
	InitialFrequency float32    `yaml:"initial_frequency"`
	Lacunarity       float32    `yaml:"lacunarity"`
	Offset           [2]float32 `yaml:"offset"`
	FlatValue        float32    `yaml:"flat_value"` // used by kind "flat"
}

// Colors holds the three color ramps.
type Colors struct {
	Soil  []ColorStop `yaml:"soil"`
	Flora []ColorStop `yaml:"flora"`
	Water []ColorStop `yaml:"water"`
}

// ColorStop is one gradient key: a position in [0,1] and a hex color.
type ColorStop struct {
	At    float32 `yaml:"at"`
	Color string  `yaml:"color"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Grid: Grid{
			QuadsPerChunk: 64,
			QuadSize:      1,
			MaxGridSize:   10,
		},
		Noise: Noise{
			Kind:             NoisePerlin,
			Seed:             1337,
			Octaves:          4,
			InitialAmplitude: 40,
			Persistence:      0.5,
			InitialFrequency: 1,
			Lacunarity:       2,
			Offset:           [2]float32{0.37, 0.61}, // off the lattice
		},
		WaterLevel:     0.3,
		FloraExtremity: 0.6,
		Colors: Colors{
			Soil: []ColorStop{
				{At: 0, Color: "#c2b280"},
				{At: 0.25, Color: "#8b6d4c"},
				{At: 0.7, Color: "#7a7a7a"},
				{At: 1, Color: "#f4f4f4"},
			},
			Flora: []ColorStop{
				{At: 0, Color: "#5f8f3a"},
				{At: 0.5, Color: "#2f5d1e"},
				{At: 1, Color: "#1e3b14"},
			},
			Water: []ColorStop{
				{At: 0, Color: "#1b3a5c"},
				{At: 1, Color: "#4f86a8"},
			},
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Colors.Soil = append([]ColorStop(nil), c.Colors.Soil...)
	cp.Colors.Flora = append([]ColorStop(nil), c.Colors.Flora...)
	cp.Colors.Water = append([]ColorStop(nil), c.Colors.Water...)
	return &cp
}

// ChunkSize is the world-space edge length of one chunk.
func (c *Config) ChunkSize() float32 {
	return float32(c.Grid.QuadsPerChunk) * c.Grid.QuadSize
}

// MapSize is the world-space edge length of the whole grid.
func (c *Config) MapSize() float32 {
	return c.ChunkSize() * float32(c.Grid.MaxGridSize)
}

// WaterHeight is the water plane expressed in height units.
func (c *Config) WaterHeight() float32 {
	return c.WaterLevel * c.Noise.InitialAmplitude
}

// WaterFloor is the lowest height any vertex may take.
func (c *Config) WaterFloor() float32 {
	return c.WaterHeight() - WaterEpsilon
}

// MaxHeight is the largest height the octave sum can reach.
func (c *Config) MaxHeight() float32 {
	amp := c.Noise.InitialAmplitude
	var sum float32
	for i := 0; i < c.Noise.Octaves; i++ {
		sum += amp
		amp *= c.Noise.Persistence
	}
	return sum
}

// Normalize corrects malformed values in place instead of rejecting them.
// It returns one human readable line per correction.
func (c *Config) Normalize() []string {
	var fixes []string
	d := Default()

	if c.Grid.QuadsPerChunk < 1 {
		fixes = append(fixes, fmt.Sprintf("quads_per_chunk %d < 1, using %d", c.Grid.QuadsPerChunk, d.Grid.QuadsPerChunk))
		c.Grid.QuadsPerChunk = d.Grid.QuadsPerChunk
	}
	if c.Grid.QuadSize <= 0 {
		fixes = append(fixes, fmt.Sprintf("quad_size %g <= 0, using %g", c.Grid.QuadSize, d.Grid.QuadSize))
		c.Grid.QuadSize = d.Grid.QuadSize
	}
	if even := c.Grid.MaxGridSize / 2 * 2; even != c.Grid.MaxGridSize || even < 2 {
		if even < 2 {
			even = 2
		}
		fixes = append(fixes, fmt.Sprintf("max_grid_size %d forced to %d", c.Grid.MaxGridSize, even))
		c.Grid.MaxGridSize = even
	}
	if c.Grid.Workers < 0 {
		fixes = append(fixes, fmt.Sprintf("workers %d < 0, using one per CPU", c.Grid.Workers))
		c.Grid.Workers = 0
	}

	switch c.Noise.Kind {
	case NoiseValue, NoisePerlin, NoiseSimplex, NoiseFlat:
	default:
		fixes = append(fixes, fmt.Sprintf("noise kind %q unknown, using %q", c.Noise.Kind, d.Noise.Kind))
		c.Noise.Kind = d.Noise.Kind
	}
	if c.Noise.Octaves < 1 {
		fixes = append(fixes, fmt.Sprintf("octaves %d < 1, using 1", c.Noise.Octaves))
		c.Noise.Octaves = 1
	}

	if c.WaterLevel < 0 || c.WaterLevel > 1 {
		clamped := mgl32.Clamp(c.WaterLevel, 0, 1)
		fixes = append(fixes, fmt.Sprintf("water_level %g clamped to %g", c.WaterLevel, clamped))
		c.WaterLevel = clamped
	}
	if c.FloraExtremity <= 0 {
		fixes = append(fixes, fmt.Sprintf("flora_extremity %g <= 0, using %g", c.FloraExtremity, d.FloraExtremity))
		c.FloraExtremity = d.FloraExtremity
	}

	c.Colors.Soil, fixes = normalizeRamp("soil", c.Colors.Soil, fixes)
	c.Colors.Flora, fixes = normalizeRamp("flora", c.Colors.Flora, fixes)
	c.Colors.Water, fixes = normalizeRamp("water", c.Colors.Water, fixes)
	return fixes
}

func normalizeRamp(name string, stops []ColorStop, fixes []string) ([]ColorStop, []string) {
	kept := stops[:0:0]
	for _, s := range stops {
		if _, err := ParseColor(s.Color); err != nil {
			fixes = append(fixes, fmt.Sprintf("%s color %q dropped: %v", name, s.Color, err))
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) > MaxColorStops {
		fixes = append(fixes, fmt.Sprintf("%s ramp has %d stops, truncated to %d", name, len(kept), MaxColorStops))
		kept = kept[:MaxColorStops]
	}
	return kept, fixes
}

// ParseColor parses "#rrggbb" or "#rrggbbaa" into a normalized RGBA vector.
func ParseColor(s string) (mgl32.Vec4, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return mgl32.Vec4{}, fmt.Errorf("want #rrggbb or #rrggbbaa, got %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return mgl32.Vec4{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return mgl32.Vec4{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
