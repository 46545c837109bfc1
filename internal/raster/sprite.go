package raster

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"connector-align/internal/hud"
)

// drawTexture draws a texture sprite centred on its position, scaled to its
// size and rotated clockwise by RotationOrScale radians.
func drawTexture(dst *image.RGBA, s hud.Sprite, tex *image.NRGBA, k float64) {
	if tex == nil || s.Size[0] <= 0 || s.Size[1] <= 0 {
		return
	}
	src := tint(tex, s.Color)
	b := src.Bounds()
	xdraw.BiLinear.Transform(dst, spriteAff(s, b.Dx(), b.Dy(), k), src, b, xdraw.Over, nil)
}

// spriteAff maps texture pixels of a w×h texture onto the canvas.
func spriteAff(s hud.Sprite, w, h int, k float64) f64.Aff3 {
	sx := s.Size[0] * k / float64(w)
	sy := s.Size[1] * k / float64(h)
	sin, cos := math.Sincos(s.RotationOrScale)
	a, b := cos*sx, -sin*sy
	d, e := sin*sx, cos*sy
	hw, hh := float64(w)/2, float64(h)/2
	return f64.Aff3{
		a, b, s.Position[0]*k - (a*hw + b*hh),
		d, e, s.Position[1]*k - (d*hw + e*hh),
	}
}

// tint multiplies every texel by c.
func tint(tex *image.NRGBA, c color.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(tex.Rect)
	for i := 0; i+3 < len(tex.Pix); i += 4 {
		out.Pix[i] = mul8(tex.Pix[i], c.R)
		out.Pix[i+1] = mul8(tex.Pix[i+1], c.G)
		out.Pix[i+2] = mul8(tex.Pix[i+2], c.B)
		out.Pix[i+3] = mul8(tex.Pix[i+3], c.A)
	}
	return out
}

func mul8(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}
