package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"connector-align/internal/config"
	"connector-align/internal/hud"
	"connector-align/internal/logging"
	"connector-align/internal/preview"
	"connector-align/internal/raster"
	"connector-align/internal/scene"
	"connector-align/internal/sim"
	"connector-align/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (JSON, YAML or TOML)")
	sceneFile := flag.String("scene", "", "Path to scene file (YAML or JSON)")
	ticks := flag.Int("ticks", 0, "Simulation ticks to run (default: 120)")
	outputDir := flag.String("output", "", "Preview output directory (default: renders)")
	withPreview := flag.Bool("preview", false, "Write WebP previews and a manifest")
	workers := flag.Int("workers", 0, "Preview worker goroutines (default: NumCPU)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Resolve(config.Flags{
		Scene:     *sceneFile,
		OutputDir: *outputDir,
		LogLevel:  *logLevel,
		Ticks:     *ticks,
		Workers:   *workers,
		Preview:   *withPreview,
	})

	log, closeLog := setupLogging(cfg)
	defer closeLog()

	if cfg.Scene == "" {
		fmt.Fprintln(os.Stderr, "Error: no scene. Use -scene or set scene in the config file.")
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("run failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func setupLogging(cfg config.Config) (*slog.Logger, func()) {
	opts := logging.Options{Tool: "connalign", Level: cfg.LogLevel}
	if cfg.LogsDir == "" {
		return logging.New(opts), func() {}
	}
	path := logging.LogFilePath(cfg.LogsDir, "connalign", time.Now())
	if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
		return logging.New(opts), func() {}
	}
	file, err := os.Create(path)
	if err != nil {
		return logging.New(opts), func() {}
	}
	opts.File = file
	return logging.New(opts), func() { file.Close() }
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f, err := scene.LoadFile(cfg.Scene)
	if err != nil {
		return err
	}
	w, err := f.Build(log)
	if err != nil {
		return err
	}

	s := sim.New(w, f, sim.Config{
		Ticks:       cfg.Sim.Ticks,
		TickSeconds: cfg.Sim.TickSeconds,
		RunEvery:    cfg.Sim.RunEvery,
		HUD: hud.Options{
			Locator:         cfg.Locator,
			CustomDataEvery: cfg.HUD.CustomDataEvery,
			ColorEvery:      cfg.HUD.ColorEvery,
		},
		Record: cfg.Preview.Enabled,
	}, log)
	defer s.Close()

	fmt.Printf("Scene: %s (%s)\n", f.Name, cfg.Scene)
	fmt.Printf("Displays: %d, Ticks: %d\n", len(s.Displays()), cfg.Sim.Ticks)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	jobs, err := s.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Simulated in %.1fs\n", time.Since(start).Seconds())

	if !cfg.Preview.Enabled {
		return nil
	}
	return writePreview(ctx, cfg, jobs, log)
}

func writePreview(ctx context.Context, cfg config.Config, jobs []preview.Job, log *slog.Logger) error {
	bg, err := scene.ParseColor(cfg.Preview.Background)
	if err != nil {
		return fmt.Errorf("preview background: %w", err)
	}
	texIndex := texture.BuildIndex(cfg.Preview.TextureDir)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	pcfg := preview.Config{
		OutputDir: cfg.Preview.OutputDir,
		Textures:  texture.NewCache(texIndex, log),
		Raster: raster.Options{
			Background:  color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: bg.A},
			Supersample: cfg.Preview.Supersample,
		},
		Workers: cfg.Preview.Workers,
		Log:     log,
	}

	start := time.Now()
	results := preview.Run(ctx, pcfg, jobs)
	success := 0
	for _, r := range results {
		if r.Success {
			success++
		} else {
			log.Warn("frame failed", "display", r.Display, "tick", r.Tick, "error", r.Error)
		}
	}
	fmt.Printf("Rendered: %d/%d in %.1fs\n", success, len(jobs), time.Since(start).Seconds())

	if err := os.MkdirAll(cfg.Preview.OutputDir, 0755); err != nil {
		return err
	}
	manifestPath := filepath.Join(cfg.Preview.OutputDir, "manifest.json")
	if err := preview.WriteManifest(manifestPath, jobs, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if cfg.Preview.Animate {
		byDisplay := map[string][]preview.Job{}
		var order []string
		for _, j := range jobs {
			if _, ok := byDisplay[j.Display]; !ok {
				order = append(order, j.Display)
			}
			byDisplay[j.Display] = append(byDisplay[j.Display], j)
		}
		for _, name := range order {
			path := filepath.Join(cfg.Preview.OutputDir, name+".webp")
			if err := preview.WriteAnimation(path, pcfg, byDisplay[name], cfg.Preview.FrameDelay); err != nil {
				log.Warn("animation failed", "display", name, "error", err)
				continue
			}
			fmt.Printf("Animation: %s\n", path)
		}
	}

	if success < len(jobs) {
		return fmt.Errorf("%d of %d frames failed", len(jobs)-success, len(jobs))
	}
	return nil
}
