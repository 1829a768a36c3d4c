package config

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaultNeedsNoCorrection(t *testing.T) {
	cfg := Default()
	if fixes := cfg.Normalize(); len(fixes) != 0 {
		t.Errorf("default config corrected: %v", fixes)
	}
}

func TestNormalizeForcesEvenGrid(t *testing.T) {
	cases := map[int]int{7: 6, 10: 10, 1: 2, 0: 2, -3: 2}
	for in, want := range cases {
		cfg := Default()
		cfg.Grid.MaxGridSize = in
		cfg.Normalize()
		if cfg.Grid.MaxGridSize != want {
			t.Errorf("max_grid_size %d: got %d, want %d", in, cfg.Grid.MaxGridSize, want)
		}
	}
}

func TestNormalizeTruncatesRamps(t *testing.T) {
	cfg := Default()
	cfg.Colors.Flora = nil
	for i := 0; i < 10; i++ {
		cfg.Colors.Flora = append(cfg.Colors.Flora, ColorStop{At: float32(i) / 9, Color: "#102030"})
	}
	fixes := cfg.Normalize()
	if len(cfg.Colors.Flora) != MaxColorStops {
		t.Fatalf("flora stops: got %d, want %d", len(cfg.Colors.Flora), MaxColorStops)
	}
	if len(fixes) != 1 {
		t.Errorf("expected one correction, got %v", fixes)
	}
}

func TestNormalizeDropsBadColors(t *testing.T) {
	cfg := Default()
	cfg.Colors.Water = []ColorStop{{At: 0, Color: "blue"}, {At: 1, Color: "#0000ff"}}
	cfg.Normalize()
	if len(cfg.Colors.Water) != 1 || cfg.Colors.Water[0].Color != "#0000ff" {
		t.Errorf("unexpected water ramp after normalize: %+v", cfg.Colors.Water)
	}
}

func TestNormalizeResetsSizes(t *testing.T) {
	cfg := Default()
	cfg.Grid.QuadsPerChunk = 0
	cfg.Grid.QuadSize = -1
	cfg.Noise.Octaves = 0
	cfg.Noise.Kind = "fractal"
	cfg.WaterLevel = 1.5
	cfg.Normalize()

	d := Default()
	if cfg.Grid.QuadsPerChunk != d.Grid.QuadsPerChunk {
		t.Errorf("quads_per_chunk: got %d", cfg.Grid.QuadsPerChunk)
	}
	if cfg.Grid.QuadSize != d.Grid.QuadSize {
		t.Errorf("quad_size: got %g", cfg.Grid.QuadSize)
	}
	if cfg.Noise.Octaves != 1 {
		t.Errorf("octaves: got %d", cfg.Noise.Octaves)
	}
	if cfg.Noise.Kind != d.Noise.Kind {
		t.Errorf("kind: got %q", cfg.Noise.Kind)
	}
	if cfg.WaterLevel != 1 {
		t.Errorf("water_level: got %g", cfg.WaterLevel)
	}
}

func TestDerivedSizes(t *testing.T) {
	cfg := Default()
	cfg.Grid.QuadsPerChunk = 4
	cfg.Grid.QuadSize = 2
	cfg.Grid.MaxGridSize = 6
	cfg.Noise.InitialAmplitude = 10
	cfg.Noise.Octaves = 3
	cfg.Noise.Persistence = 0.5
	cfg.WaterLevel = 0.5

	if got := cfg.ChunkSize(); got != 8 {
		t.Errorf("ChunkSize: got %g, want 8", got)
	}
	if got := cfg.MapSize(); got != 48 {
		t.Errorf("MapSize: got %g, want 48", got)
	}
	if got := cfg.WaterHeight(); got != 5 {
		t.Errorf("WaterHeight: got %g, want 5", got)
	}
	if got := cfg.WaterFloor(); got >= cfg.WaterHeight() {
		t.Errorf("WaterFloor %g should sit below the water plane", got)
	}
	if got := cfg.MaxHeight(); got != 17.5 {
		t.Errorf("MaxHeight: got %g, want 17.5", got)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if !c.ApproxEqual(mgl32.Vec4{1, 128.0 / 255, 0, 1}) {
		t.Errorf("got %v", c)
	}

	c, err = ParseColor("00000080")
	if err != nil {
		t.Fatalf("ParseColor without hash: %v", err)
	}
	if !mgl32.FloatEqual(c.W(), 128.0/255) {
		t.Errorf("alpha: got %g", c.W())
	}

	if _, err := ParseColor("#12"); err == nil {
		t.Error("expected error for short color")
	}
	if _, err := ParseColor("#zzzzzz"); err == nil {
		t.Error("expected error for non-hex color")
	}
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load("testdata/terrain.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.QuadsPerChunk != 32 || cfg.Grid.QuadSize != 2 || cfg.Grid.Workers != 2 {
		t.Errorf("grid: %+v", cfg.Grid)
	}
	if cfg.Noise.Kind != NoiseSimplex || cfg.Noise.Seed != 42 || cfg.Noise.Octaves != 5 {
		t.Errorf("noise: %+v", cfg.Noise)
	}
	if cfg.Noise.Offset != [2]float32{10, -4} {
		t.Errorf("offset: %v", cfg.Noise.Offset)
	}

	fixes := cfg.Normalize()
	if cfg.Grid.MaxGridSize != 6 {
		t.Errorf("max_grid_size: got %d, want 6", cfg.Grid.MaxGridSize)
	}
	if len(cfg.Colors.Flora) != MaxColorStops {
		t.Errorf("flora stops: got %d", len(cfg.Colors.Flora))
	}
	if len(fixes) != 2 {
		t.Errorf("expected 2 corrections, got %v", fixes)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("water_level: 0.1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.WaterLevel != 0.1 {
		t.Errorf("water_level: got %g", cfg.WaterLevel)
	}
	if cfg.Grid != Default().Grid {
		t.Errorf("grid defaults lost: %+v", cfg.Grid)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if cfg.Noise != Default().Noise {
		t.Errorf("noise defaults lost: %+v", cfg.Noise)
	}
}

func TestLoadRejectsBadShape(t *testing.T) {
	_, err := Load("testdata/bad_shape.yaml")
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/nope.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRenderSettingsClamp(t *testing.T) {
	rs := NewRenderSettings(1)
	if got := rs.RenderRange(); got != MinRenderRange {
		t.Errorf("got %g, want %d", got, MinRenderRange)
	}
	rs.SetRenderRange(1e6)
	if got := rs.RenderRange(); got != MaxRenderRange {
		t.Errorf("got %g, want %d", got, MaxRenderRange)
	}
	rs.SetRenderRange(250)
	if got := rs.RenderRange(); got != 250 {
		t.Errorf("got %g, want 250", got)
	}
}
