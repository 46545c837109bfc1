package hud

import "connector-align/internal/mathutil"

// pxPerScale is the line height in pixels of text drawn at scale 1.
const pxPerScale = 28.8

// Font heights relative to the shorter screen side.
const (
	compactFontHeight = 0.033
	largeFontHeight   = 0.075
)

// Layout maps normalized coordinates onto the visible part of a surface.
// The visible rectangle is centred in the texture.
type Layout struct {
	Origin    mathutil.Vec2
	Size      mathutil.Vec2
	Aspect    float64
	MinExtent float64
}

// NewLayout builds the layout for a texture of textureSize showing
// surfaceSize pixels.
func NewLayout(textureSize, surfaceSize mathutil.Vec2) Layout {
	l := Layout{
		Origin: textureSize.Sub(surfaceSize).Scale(0.5),
		Size:   surfaceSize,
	}
	if surfaceSize[1] != 0 {
		l.Aspect = surfaceSize[0] / surfaceSize[1]
	}
	l.MinExtent = surfaceSize.Min()
	return l
}

// Center returns the middle of the visible rectangle.
func (l Layout) Center() mathutil.Vec2 {
	return l.Origin.Add(l.Size.Scale(0.5))
}

// ToScreen converts (x, y) relative to the anchor (relX, relY), both in
// screen fractions, to pixels. With square set the fractions refer to the
// largest centred square instead of the full rectangle.
func (l Layout) ToScreen(x, y, relX, relY float64, square bool) mathutil.Vec2 {
	w, h := l.Size[0], l.Size[1]
	var padX, padY float64
	if square {
		padX = (w - l.MinExtent) * 0.5
		padY = (h - l.MinExtent) * 0.5
		w, h = l.MinExtent, l.MinExtent
	}
	return mathutil.Vec2{
		(relX+x)*w + l.Origin[0] + padX,
		(relY+y)*h + l.Origin[1] + padY,
	}
}

// Centered is ToScreen anchored at the middle of the largest square.
func (l Layout) Centered(x, y float64) mathutil.Vec2 {
	return l.ToScreen(x, y, 0.5, 0.5, true)
}

// TextureSize returns the pixel size of a texture drawn at size screen
// fractions. textureAspect scales the width.
func (l Layout) TextureSize(size, textureAspect float64) mathutil.Vec2 {
	w, h := l.Size[0], l.Size[1]
	if l.Aspect > 1 {
		return mathutil.Vec2{w * textureAspect / l.Aspect, h}.Scale(size)
	}
	return mathutil.Vec2{w * textureAspect, h * l.Aspect}.Scale(size)
}

// FontScale returns the text scale whose line height is height screen
// fractions of the shorter side.
func (l Layout) FontScale(height float64) float64 {
	return height * l.MinExtent / pxPerScale
}

// ValuesFontScale returns the readout text scale for the font option.
func (l Layout) ValuesFontScale(large bool) float64 {
	if large {
		return l.FontScale(largeFontHeight)
	}
	return l.FontScale(compactFontHeight)
}
