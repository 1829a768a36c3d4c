package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"citysim/internal/config"
	"citysim/internal/meshing"
	"citysim/internal/picking"
	"citysim/internal/preview"
	"citysim/internal/profiling"
	"citysim/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "terrain config (YAML); defaults when empty")
		out       = flag.String("out", "terrain.png", "preview image path; empty to skip")
		rangeFlag = flag.Float64("range", config.DefaultRenderRange, "render range around the map centre in world units")
		pixels    = flag.Int("pixels", 512, "preview edge length in pixels")
		seed      = flag.Int64("seed", 0, "override the noise seed")
		workers   = flag.Int("workers", -1, "override the generation worker count (0 = one per CPU)")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	applyOverrides(flag.CommandLine, cfg, *seed, *workers)

	recorder := &meshing.Recorder{}
	queue := meshing.NewBlockingQueuedSink(recorder, 1, 256)
	flush := sync.OnceFunc(queue.Close)
	grid := world.NewGrid(cfg, queue, log)
	closer.Bind(func() {
		grid.Close()
		flush()
	})
	defer closer.Close()

	if err := run(grid, recorder, flush, log, float32(*rangeFlag), *out, *pixels); err != nil {
		log.Error("terrain", "error", err)
		closer.Exit(1)
	}
}

// applyOverrides copies flags given on the command line into cfg. The seed
// applies whenever -seed was passed, 0 included.
func applyOverrides(fs *flag.FlagSet, cfg *config.Config, seed int64, workers int) {
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Noise.Seed = seed
		}
	})
	if workers >= 0 {
		cfg.Grid.Workers = workers
	}
}

func run(grid *world.Grid, recorder *meshing.Recorder, flush func(), log *slog.Logger, renderRange float32, out string, pixels int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	settings := config.NewRenderSettings(renderRange)
	centre := grid.MapSize() / 2

	start := time.Now()
	from, to := grid.UpdateActivity(centre, centre, settings.RenderRange())
	log.Info("generating", "from", from, "to", to, "range", settings.RenderRange())

	if err := grid.Wait(ctx); err != nil {
		return fmt.Errorf("wait for generation: %w", err)
	}
	stats := grid.Stats()
	log.Info("generated",
		"chunks", stats.Chunks,
		"ready", stats.Ready,
		"failed", stats.Failed,
		"active", stats.Active,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	hit := picking.Pick(grid, mgl32.Vec3{centre, grid.Config().MaxHeight() + 10, centre}, mgl32.Vec3{0, -1, 0.25}, 0, 0)
	if hit.Hit {
		corners, _ := grid.TriangleCorners(hit.Position)
		log.Info("picked", "pos", hit.Position, "distance", hit.Distance, "triangle", corners)
	}
	gen := profiling.Snapshot()["world.generate"]
	log.Debug("profile",
		"top", profiling.TopN(6),
		"generate_mean", gen.Mean().Round(time.Microsecond),
		"world_total", profiling.SumWithPrefix("world.").Round(time.Microsecond),
	)

	if out == "" {
		return nil
	}
	// meshes reach the recorder through the queue
	flush()
	if err := writePreview(grid, recorder, out, pixels); err != nil {
		return err
	}
	log.Info("preview written", "path", out, "meshes", len(recorder.Meshes()))
	return nil
}

func writePreview(grid *world.Grid, recorder *meshing.Recorder, path string, pixels int) error {
	defer profiling.Track("preview.write")()
	cfg := grid.Config()

	img := preview.Render(recorder.Meshes(), cfg.Grid.QuadsPerChunk, grid.Size())
	scaled := preview.Scale(img, pixels)
	preview.Caption(scaled, fmt.Sprintf("%dx%d %s seed %d", grid.Size(), grid.Size(), cfg.Noise.Kind, cfg.Noise.Seed))
	return preview.WritePNG(path, scaled)
}
