// Package raster draws HUD frames into images for offline inspection.
package raster

import (
	"image"
	"image/color"
	"image/draw"

	"connector-align/internal/hud"
	"connector-align/internal/texture"
)

// Options control frame rendering.
type Options struct {
	// Background fills the canvas before sprites are drawn.
	Background color.NRGBA
	// Supersample renders at this multiple of the texture size and filters
	// down. Values below 2 render directly.
	Supersample int
}

// DefaultOptions renders on opaque black with 2× supersampling.
func DefaultOptions() Options {
	return Options{Background: color.NRGBA{A: 255}, Supersample: 2}
}

// RenderFrame draws f at its texture size. Sprites whose texture cannot be
// resolved are skipped.
func RenderFrame(f hud.Frame, textures texture.Resolver, opts Options) *image.NRGBA {
	w, h := int(f.TextureSize[0]+0.5), int(f.TextureSize[1]+0.5)
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}
	k := float64(ss)

	canvas := image.NewRGBA(image.Rect(0, 0, w*ss, h*ss))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	for _, s := range f.Sprites {
		switch s.Type {
		case hud.SpriteTexture:
			var tex *image.NRGBA
			if textures != nil {
				tex = textures.Resolve(s.Data)
			}
			drawTexture(canvas, s, tex, k)
		case hud.SpriteText:
			drawText(canvas, s, k)
		}
	}

	return downsample(canvas, w, h)
}
