package hud

import (
	"image/color"

	"connector-align/internal/align"
	"connector-align/internal/mathutil"
)

// SpriteType distinguishes textured quads from text runs.
type SpriteType uint8

const (
	SpriteTexture SpriteType = iota
	SpriteText
)

func (t SpriteType) String() string {
	if t == SpriteText {
		return "text"
	}
	return "texture"
}

// Alignment anchors a sprite horizontally on its position.
type Alignment uint8

const (
	AlignCenter Alignment = iota
	AlignLeft
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	}
	return "center"
}

// Texture and font identifiers.
const (
	TextureVelocityVector = "AH_VelocityVector"
	TextureDockingBracket = "LCD_CAA_DOCKING_BRACKET"
	FontWhite             = "White"
)

// Sprite is one drawable in surface pixel coordinates. For textures Data is
// a texture id and RotationOrScale a rotation in radians; for text Data is
// the string and RotationOrScale the glyph scale.
type Sprite struct {
	Type            SpriteType
	Data            string
	Position        mathutil.Vec2
	Size            mathutil.Vec2
	RotationOrScale float64
	Color           color.NRGBA
	Alignment       Alignment
	FontID          string
}

// Readout is the textual state of one run. Status, Offsets and Distance are
// zero unless Paired.
type Readout struct {
	Paired      bool
	HomeLabel   string
	TargetLabel string
	Position    string
	Pitch       string
	Yaw         string
	Roll        string
	Speed       string
	Distance    float64
	Status      align.Status
	Offsets     align.Offsets
}

// Frame is what one run draws, in draw order.
type Frame struct {
	TextureSize mathutil.Vec2
	Sprites     []Sprite
	Readout     Readout
}

// slot indexes the persistent sprites. The target marker is drawn after the
// brackets and only when a pair exists.
type slot int

const (
	slotMidPoint slot = iota
	slotLeftRing
	slotTopRing
	slotRightRing
	slotBottomRing
	slotTarget
	slotHomeLabel
	slotTargetLabel
	slotPositionLabel
	slotPositionValue
	slotPitchLabel
	slotPitchValue
	slotYawLabel
	slotYawValue
	slotRollLabel
	slotRollValue
	slotSpeedValue
	slotCount
)

// spriteAlpha is applied to the foreground colour of textured sprites.
const spriteAlpha = 0.66

// straight reads a host colour as non-premultiplied.
func straight(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func withAlpha(c color.RGBA, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a * 255)}
}

// Status colours of the position readout.
var (
	colorConnectable = color.NRGBA{R: 255, G: 255, A: 255}
	colorConnected   = color.NRGBA{G: 128, A: 255}
)
