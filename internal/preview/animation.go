package preview

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"connector-align/internal/raster"
)

// ErrNoFrames is returned when an animation has nothing to show.
var ErrNoFrames = errors.New("preview: no frames")

// WriteAnimation renders jobs in order into one looping animated WebP at
// path, showing each frame for delay.
func WriteAnimation(path string, cfg Config, jobs []Job, delay time.Duration) error {
	if len(jobs) == 0 {
		return ErrNoFrames
	}
	ms := uint(delay / time.Millisecond)
	if ms == 0 {
		ms = 1
	}

	ani := &nativewebp.Animation{
		Images:    make([]image.Image, 0, len(jobs)),
		Durations: make([]uint, 0, len(jobs)),
		Disposals: make([]uint, 0, len(jobs)),
	}
	for _, j := range jobs {
		img := raster.RenderFrame(j.Frame, cfg.Textures, cfg.Raster)
		if img.Bounds().Empty() {
			return fmt.Errorf("preview: %s tick %d: empty frame", j.Display, j.Tick)
		}
		ani.Images = append(ani.Images, img)
		ani.Durations = append(ani.Durations, ms)
		ani.Disposals = append(ani.Disposals, 0)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		if err := nativewebp.EncodeAll(w, ani, nil); err != nil {
			return fmt.Errorf("preview: WebP encode: %w", err)
		}
		return nil
	})
}
