package texture

import (
	"image"
	"image/color"
	"math"
	"strings"
)

// Built-in texture ids.
const (
	VelocityVector = "AH_VelocityVector"
	DockingBracket = "LCD_CAA_DOCKING_BRACKET"
)

// builtins draw white alpha masks; sprites tint them.
var builtins = map[string]func() *image.NRGBA{
	strings.ToLower(VelocityVector): velocityVector,
	strings.ToLower(DockingBracket): dockingBracket,
}

// Builtin returns a procedural texture, or nil for unknown ids.
func Builtin(texName string) *image.NRGBA {
	gen, ok := builtins[stemOf(texName)]
	if !ok {
		return nil
	}
	return gen()
}

// velocityVector is a ring with three ticks: left, right and up.
func velocityVector() *image.NRGBA {
	const size = 128
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	inner, outer := 0.22*size, 0.3*size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-c, float64(y)+0.5-c
			r := math.Hypot(dx, dy)
			on := r >= inner && r <= outer
			// ticks 8 px wide
			if math.Abs(dy) <= 4 && math.Abs(dx) > outer && math.Abs(dx) <= 0.48*size {
				on = true
			}
			if math.Abs(dx) <= 4 && dy < -outer && dy >= -0.44*size {
				on = true
			}
			if on {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

// dockingBracket is a tall "[" opening toward +X.
func dockingBracket() *image.NRGBA {
	const w, h, t = 128, 512, 20
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	white := color.NRGBA{255, 255, 255, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < t || y < t || y >= h-t {
				img.SetNRGBA(x, y, white)
			}
		}
	}
	return img
}
