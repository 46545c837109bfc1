package raster

import (
	"image"
	"strings"
	"unicode"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"connector-align/internal/hud"
)

// lineHeight is the pixel height of one text line at scale 1.
const lineHeight = 28.8

var face = basicfont.Face7x13

// asciiFold strips diacritics and replaces what remains outside the font's
// range. The degree sign reads as a small o.
var asciiFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Map(func(r rune) rune {
		switch {
		case r == '°' || r == 'º':
			return 'o'
		case r == '\n':
			return r
		case r < 0x20 || r > 0x7e:
			return '?'
		}
		return r
	}),
)

// Fold converts s to the printable ASCII the preview font can draw.
func Fold(s string) string {
	out, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	return out
}

// drawText draws a text sprite. Position is the top of the first line;
// alignment is horizontal.
func drawText(dst *image.RGBA, s hud.Sprite, k float64) {
	scale := s.RotationOrScale * k
	if scale <= 0 || s.Data == "" {
		return
	}
	m := face.Metrics()
	glyphH := float64(m.Height.Ceil())
	px := lineHeight * scale / glyphH
	src := image.NewUniform(s.Color)

	for i, line := range strings.Split(Fold(s.Data), "\n") {
		if line == "" {
			continue
		}
		w := font.MeasureString(face, line).Ceil()
		mask := image.NewNRGBA(image.Rect(0, 0, w, int(glyphH)))
		d := font.Drawer{Dst: mask, Src: src, Face: face, Dot: fixed.P(0, m.Ascent.Ceil())}
		d.DrawString(line)

		x := s.Position[0] * k
		switch s.Alignment {
		case hud.AlignCenter:
			x -= float64(w) * px / 2
		case hud.AlignRight:
			x -= float64(w) * px
		}
		y := s.Position[1]*k + float64(i)*lineHeight*scale
		aff := f64.Aff3{px, 0, x, 0, px, y}
		xdraw.BiLinear.Transform(dst, aff, mask, mask.Bounds(), xdraw.Over, nil)
	}
}
