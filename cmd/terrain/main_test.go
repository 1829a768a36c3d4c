package main

import (
	"flag"
	"io"
	"testing"

	"citysim/internal/config"
)

func parseOverrides(t *testing.T, args ...string) *config.Config {
	t.Helper()
	fs := flag.NewFlagSet("terrain", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	seed := fs.Int64("seed", 0, "")
	workers := fs.Int("workers", -1, "")
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Noise.Seed = 42
	cfg.Grid.Workers = 3
	applyOverrides(fs, cfg, *seed, *workers)
	return cfg
}

func TestApplyOverrides(t *testing.T) {
	if cfg := parseOverrides(t); cfg.Noise.Seed != 42 || cfg.Grid.Workers != 3 {
		t.Errorf("no flags: seed %d, workers %d", cfg.Noise.Seed, cfg.Grid.Workers)
	}
	if cfg := parseOverrides(t, "-seed", "0"); cfg.Noise.Seed != 0 {
		t.Errorf("-seed 0: seed %d, want 0", cfg.Noise.Seed)
	}
	if cfg := parseOverrides(t, "-seed", "7", "-workers", "0"); cfg.Noise.Seed != 7 || cfg.Grid.Workers != 0 {
		t.Errorf("seed %d, workers %d", cfg.Noise.Seed, cfg.Grid.Workers)
	}
}
