package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"safespawn/internal/batch"
	"safespawn/internal/config"
	"safespawn/internal/imageio"
	"safespawn/internal/logging"
	"safespawn/internal/mesh"
	"safespawn/internal/postprocess"
	"safespawn/internal/raster"
	"safespawn/internal/scene"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to scene config JSON (default: built-in scene)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	samples := flag.Int("samples", 0, "Hits sampled per triangle (default: 16)")
	rays := flag.Int("rays", 0, "Rays per hit and side (default: 8)")
	seed := flag.Int64("seed", 0, "Random seed (default: 1)")
	outputDir := flag.String("out", "", "Output directory (default: spawncheck-out)")
	format := flag.String("format", "", "Heat map format: webp, tga or png (default: webp)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir: *outputDir,
		Format:    *format,
		Samples:   *samples,
		Rays:      *rays,
		Seed:      *seed,
		Workers:   *workers,
		Verbose:   *verbose,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))

	insts, err := scene.Load(cfg.Instances, mesh.NewCache(), cfg.VerifyTransforms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}

	p := message.NewPrinter(language.English)
	p.Printf("Spawn point self-intersection audit\n")
	p.Printf("Instances: %d, Triangles: %d, Workers: %d\n", len(insts), scene.TriangleCount(insts), cfg.Workers)
	p.Printf("Samples/triangle: %d, Rays/sample: %d x 2 sides, Seed: %d\n", cfg.Samples, cfg.Rays, cfg.Seed)
	p.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Run batch
	summary := batch.Run(ctx, batch.Config{
		Samples: cfg.Samples,
		Rays:    cfg.Rays,
		Seed:    cfg.Seed,
		Workers: cfg.Workers,
	}, insts)

	fmt.Println("------------------------------------------------------------")
	p.Printf("Done in %.1fs\n", summary.Elapsed.Seconds())
	if summary.Canceled {
		p.Printf("Cancelled after %d/%d triangles\n", summary.Processed, summary.Triangles)
	}
	p.Printf("Rays: %d, Self hits: %d (unoffset baseline: %d)\n", summary.Rays, summary.SelfHits, summary.NaiveSelfHits)
	for _, in := range summary.Instances {
		p.Printf("  %-20s %8d tris  offset %.3g..%.3g  self hits %d / baseline %d\n",
			in.Name, in.Triangles, in.MinOffset, in.MaxOffset, in.SelfHits, in.NaiveSelfHits)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Write report
	reportPath := filepath.Join(cfg.OutputDir, "report.json")
	if err := batch.WriteReport(reportPath, summary); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: report write failed: %v\n", err)
	} else {
		fmt.Printf("Report: %s\n", reportPath)
	}

	// Heat map
	stats := make([][]batch.TriangleStat, len(summary.Instances))
	for i, in := range summary.Instances {
		stats[i] = in.Stats
	}
	img := raster.RenderHeatMap(insts, stats, cfg.ImageSize, cfg.Supersample)
	img = postprocess.Downsample(img, cfg.Supersample)
	heatPath := filepath.Join(cfg.OutputDir, "heatmap."+cfg.Format)
	if err := imageio.Save(heatPath, img); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: heat map write failed: %v\n", err)
	} else {
		fmt.Printf("Heat map: %s\n", heatPath)
	}

	if summary.Failed() || summary.Canceled {
		os.Exit(1)
	}
}
