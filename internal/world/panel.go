package world

import (
	"image/color"

	"connector-align/internal/align"
	"connector-align/internal/assembly"
	"connector-align/internal/mathutil"
)

// Panel is a display block's drawing surface.
type Panel struct {
	w           *World
	id          align.EntityID
	textureSize mathutil.Vec2
	surfaceSize mathutil.Vec2
	fg          color.RGBA
	customData  string
}

func (p *Panel) ID() align.EntityID { return p.id }

func (p *Panel) Name() string {
	if b, ok := p.w.blocks[p.id]; ok {
		return b.name
	}
	return ""
}

// Grid returns the grid the panel is mounted on.
func (p *Panel) Grid() assembly.GridID {
	if b, ok := p.w.blocks[p.id]; ok {
		return b.grid
	}
	return 0
}

// Transform returns the panel's live world transform.
func (p *Panel) Transform() mathutil.Transform {
	b, ok := p.w.blocks[p.id]
	if !ok {
		return mathutil.TransformIdentity()
	}
	return p.w.blockWorld(b)
}

func (p *Panel) TextureSize() mathutil.Vec2      { return p.textureSize }
func (p *Panel) SurfaceSize() mathutil.Vec2      { return p.surfaceSize }
func (p *Panel) ForegroundColor() color.RGBA     { return p.fg }
func (p *Panel) SetForegroundColor(c color.RGBA) { p.fg = c }
func (p *Panel) CustomData() string              { return p.customData }
func (p *Panel) SetCustomData(s string)          { p.customData = s }
