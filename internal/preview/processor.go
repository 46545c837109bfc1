// Package preview renders recorded HUD frames to WebP files with a worker
// pool.
package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"connector-align/internal/hud"
	"connector-align/internal/logging"
	"connector-align/internal/raster"
	"connector-align/internal/texture"
)

// Config holds the shared resources for a preview run.
type Config struct {
	OutputDir string
	Textures  texture.Resolver
	Raster    raster.Options
	Workers   int
	// Progress is the interval between progress log lines; zero means 2s.
	Progress time.Duration
	Log      logging.Logger
}

// Job is one recorded frame of one display.
type Job struct {
	Display string
	Tick    int
	Frame   hud.Frame
}

// ImagePath is the output path of a job relative to the output directory.
func (j Job) ImagePath() string {
	return filepath.ToSlash(filepath.Join(j.Display, fmt.Sprintf("%06d.webp", j.Tick)))
}

// Result holds the outcome of rendering one job.
type Result struct {
	Display string
	Tick    int
	Image   string
	Success bool
	Error   string
}

// Run renders every job and returns results in job order. Jobs not started
// before ctx is cancelled fail with the context error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	log := logging.OrNop(cfg.Log)
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	interval := cfg.Progress
	if interval <= 0 {
		interval = 2 * time.Second
	}

	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("preview progress", "done", p, "total", total, "framesPerSec", rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				if err := ctx.Err(); err != nil {
					results[idx] = failed(jobs[idx], err)
				} else {
					results[idx] = renderJob(cfg, jobs[idx])
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	log.Debug("preview finished", "frames", total, "elapsed", time.Since(start))
	return results
}

func failed(j Job, err error) Result {
	return Result{Display: j.Display, Tick: j.Tick, Image: j.ImagePath(), Error: err.Error()}
}

// writeFile creates path and fills it with write. A file that could not be
// written or closed in full is removed.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return write(f)
}

func renderJob(cfg Config, j Job) Result {
	img := raster.RenderFrame(j.Frame, cfg.Textures, cfg.Raster)
	if img.Bounds().Empty() {
		return failed(j, fmt.Errorf("empty frame"))
	}

	outPath := filepath.Join(cfg.OutputDir, filepath.FromSlash(j.ImagePath()))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return failed(j, err)
	}

	err := writeFile(outPath, func(w io.Writer) error {
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("WebP encode: %w", err)
		}
		return nil
	})
	if err != nil {
		return failed(j, err)
	}

	return Result{Display: j.Display, Tick: j.Tick, Image: j.ImagePath(), Success: true}
}
