// Package hud drives the alignment display: on every run it selects a
// connector pair for the panel's assembly, resolves the offsets and lays
// the readout out as a frame of sprites.
package hud

import (
	"context"
	"errors"
	"image/color"
	"math"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"connector-align/internal/align"
	"connector-align/internal/assembly"
	"connector-align/internal/customdata"
	"connector-align/internal/logging"
	"connector-align/internal/mathutil"
)

// Surface is the panel the HUD draws on.
type Surface interface {
	Transform() mathutil.Transform
	TextureSize() mathutil.Vec2
	SurfaceSize() mathutil.Vec2
	ForegroundColor() color.RGBA
	CustomData() string
	SetCustomData(text string)
}

// Scene enumerates connectors and answers spatial queries.
type Scene interface {
	align.Finder
	Connectors(grids []assembly.GridID) []align.Connector
}

// Membership is the panel's assembly. *assembly.Tracker implements it.
type Membership interface {
	Contains(grid assembly.GridID) bool
	Grids() []assembly.GridID
	Close()
}

// Default run cadences.
const (
	DefaultCustomDataEvery = 12
	DefaultColorEvery      = 12
)

// Options tune an App. Zero values take the defaults.
type Options struct {
	Locator         align.LocatorConfig
	CustomDataEvery int
	ColorEvery      int
	// Meter records run metrics; nil uses the global meter provider.
	Meter metric.Meter
}

// App is one display instance. Run and Close must be called from the same
// goroutine as the host simulation.
type App struct {
	surface Surface
	scene   Scene
	members Membership
	locator *align.Locator
	log     logging.Logger
	metrics instruments

	customDataEvery int
	colorEvery      int
	customDataTick  int
	colorTick       int

	opts    customdata.Options
	fg      color.RGBA
	layout  Layout
	sprites [slotCount]Sprite

	closeOnce sync.Once
	closed    bool
}

// New seeds the surface's custom data with missing options and builds the
// sprite layout.
func New(surface Surface, scene Scene, members Membership, opts Options, log logging.Logger) *App {
	log = logging.OrNop(log)
	if opts.CustomDataEvery <= 0 {
		opts.CustomDataEvery = DefaultCustomDataEvery
	}
	if opts.ColorEvery <= 0 {
		opts.ColorEvery = DefaultColorEvery
	}
	a := &App{
		surface:         surface,
		scene:           scene,
		members:         members,
		locator:         align.NewLocator(opts.Locator, log),
		log:             log,
		metrics:         newInstruments(opts.Meter, log),
		customDataEvery: opts.CustomDataEvery,
		colorEvery:      opts.ColorEvery,
		colorTick:       opts.ColorEvery / 2,
	}

	parsed, text, changed, err := customdata.GetOrCreate(surface.CustomData())
	if err != nil {
		log.Warn("hud: custom data", "error", err)
	}
	if changed {
		surface.SetCustomData(text)
		log.Debug("hud: seeded custom data")
	}
	a.opts = parsed

	a.fg = surface.ForegroundColor()
	a.layout = NewLayout(surface.TextureSize(), surface.SurfaceSize())
	a.createSprites()
	return a
}

// Options returns the options in effect.
func (a *App) Options() customdata.Options { return a.opts }

// Layout returns the screen layout.
func (a *App) Layout() Layout { return a.layout }

// Run evaluates once and returns the frame to draw. After Close it returns
// an empty frame.
func (a *App) Run(ctx context.Context) Frame {
	if a.closed {
		return Frame{}
	}
	a.checkCustomData()
	a.checkColors()

	pair, ok := a.locator.Locate(a.scene.Connectors(a.members.Grids()), a.members.Contains, a.scene)
	var r Readout
	if ok {
		r = a.readout(pair)
	} else {
		r = placeholder(a.opts.UseLargeFont)
	}
	a.apply(r)
	a.metrics.record(ctx, ok, pair.Distance)

	f := Frame{
		TextureSize: a.surface.TextureSize(),
		Readout:     r,
		Sprites:     make([]Sprite, 0, slotCount),
	}
	for i, s := range a.sprites {
		if slot(i) == slotTarget && !ok {
			continue
		}
		f.Sprites = append(f.Sprites, s)
	}
	return f
}

// Close releases the assembly subscriptions. It is safe to call repeatedly.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.closed = true
		a.members.Close()
		a.log.Debug("hud: closed")
	})
}

func (a *App) readout(p align.Pair) Readout {
	off := align.Resolve(p.Home, p.Target, a.surface.Transform())
	pos, rot := off.Position, off.Rotation
	if a.opts.RelativeToLcd {
		pos, rot = off.PanelPosition, off.PanelRotation
	}
	return Readout{
		Paired:      true,
		HomeLabel:   formatLabel(p.Home.Name),
		TargetLabel: formatLabel(p.Target.Name),
		Position:    formatPosition(pos, a.opts.UseLargeFont),
		Pitch:       formatAngle(rot[0]),
		Yaw:         formatAngle(rot[1]),
		Roll:        formatAngle(rot[2]),
		Speed:       formatSpeed(p.Target.GridVelocity.Len() - p.Home.GridVelocity.Len()),
		Distance:    p.Distance,
		Status:      p.Home.Status,
		Offsets:     off,
	}
}

// apply writes the readout into the persistent sprites.
func (a *App) apply(r Readout) {
	s := &a.sprites
	s[slotHomeLabel].Data = r.HomeLabel
	s[slotTargetLabel].Data = r.TargetLabel
	s[slotPositionValue].Data = r.Position
	s[slotPitchValue].Data = r.Pitch
	s[slotYawValue].Data = r.Yaw
	s[slotRollValue].Data = r.Roll
	s[slotSpeedValue].Data = r.Speed

	fg := straight(a.surface.ForegroundColor())
	if !r.Paired {
		s[slotPositionValue].Color = fg
		return
	}
	switch r.Status {
	case align.StatusConnectable:
		s[slotPositionValue].Color = colorConnectable
	case align.StatusConnected:
		s[slotPositionValue].Color = colorConnected
	default:
		s[slotPositionValue].Color = fg
	}

	lcd := r.Offsets.PanelPosition
	t := &s[slotTarget]
	t.Position = a.layout.Centered(lcd[0]*0.025, -lcd[1]*0.025)
	t.Size = a.layout.TextureSize(0.1, 1).Scale(1 + lcd[2]*0.0125)
	t.RotationOrScale = mathutil.Deg2Rad(r.Offsets.Rotation[2])
}

// checkCustomData re-reads the options every customDataEvery runs. Text
// that does not parse leaves the options unchanged.
func (a *App) checkCustomData() {
	a.customDataTick++
	if a.customDataTick < a.customDataEvery {
		return
	}
	a.customDataTick = 0

	opts, err := customdata.Read(a.surface.CustomData())
	if errors.Is(err, customdata.ErrSyntax) {
		a.log.Debug("hud: custom data unreadable", "error", err)
		return
	}
	if err != nil {
		a.log.Warn("hud: custom data", "error", err)
	}
	relayout := opts.UseLargeFont != a.opts.UseLargeFont
	a.opts = opts
	if relayout {
		a.layoutText()
	}
}

// checkColors re-colours every sprite when the panel's foreground colour
// changed. Textured sprites keep their translucency.
func (a *App) checkColors() {
	a.colorTick++
	if a.colorTick < a.colorEvery {
		return
	}
	a.colorTick = 0

	fg := a.surface.ForegroundColor()
	if fg == a.fg {
		return
	}
	a.fg = fg
	for i := range a.sprites {
		if a.sprites[i].Type == SpriteTexture {
			a.sprites[i].Color = withAlpha(fg, spriteAlpha)
		} else {
			a.sprites[i].Color = straight(fg)
		}
	}
	a.log.Debug("hud: foreground colour changed", "color", fg)
}

func (a *App) createSprites() {
	l := a.layout
	tex := withAlpha(a.fg, spriteAlpha)
	bracket := l.TextureSize(0.4, 128.0/512.0)
	marker := l.TextureSize(0.1, 1)

	s := &a.sprites
	s[slotMidPoint] = Sprite{Type: SpriteTexture, Data: TextureVelocityVector, Position: l.Centered(0, 0), Size: marker, Color: tex}
	s[slotLeftRing] = Sprite{Type: SpriteTexture, Data: TextureDockingBracket, Position: l.Centered(-0.35, 0), Size: bracket, Color: tex}
	s[slotTopRing] = Sprite{Type: SpriteTexture, Data: TextureDockingBracket, Position: l.Centered(0, -0.35), Size: bracket, RotationOrScale: math.Pi / 2, Color: tex}
	s[slotRightRing] = Sprite{Type: SpriteTexture, Data: TextureDockingBracket, Position: l.Centered(0.35, 0), Size: bracket, RotationOrScale: math.Pi, Color: tex}
	s[slotBottomRing] = Sprite{Type: SpriteTexture, Data: TextureDockingBracket, Position: l.Centered(0, 0.35), Size: bracket, RotationOrScale: 3 * math.Pi / 2, Color: tex}
	s[slotTarget] = Sprite{Type: SpriteTexture, Data: TextureVelocityVector, Position: l.Center(), Size: mathutil.Vec2{25.5, 25.5}, Color: tex}

	p := placeholder(a.opts.UseLargeFont)
	text := func(data string, al Alignment) Sprite {
		return Sprite{Type: SpriteText, Data: data, Color: straight(a.fg), Alignment: al, FontID: FontWhite}
	}
	s[slotHomeLabel] = text(p.HomeLabel, AlignLeft)
	s[slotTargetLabel] = text(p.TargetLabel, AlignRight)
	s[slotPositionLabel] = text("X\nY\nZ", AlignCenter)
	s[slotPositionValue] = text(p.Position, AlignLeft)
	s[slotPitchLabel] = text("P\nI\nT\nC\nH", AlignCenter)
	s[slotPitchValue] = text(p.Pitch, AlignRight)
	s[slotYawLabel] = text("YAW", AlignCenter)
	s[slotYawValue] = text(p.Yaw, AlignCenter)
	s[slotRollLabel] = text("ROLL", AlignCenter)
	s[slotRollValue] = text(p.Roll, AlignCenter)
	s[slotSpeedValue] = text(p.Speed, AlignCenter)
	a.layoutText()
}

// layoutText places and scales the text sprites for the current font
// option.
func (a *App) layoutText() {
	l := a.layout
	large := a.opts.UseLargeFont
	fs := l.ValuesFontScale(large)
	line := fs * pxPerScale
	pick := func(big, small float64) float64 {
		if large {
			return big
		}
		return small
	}
	down := func(dy float64) mathutil.Vec2 { return mathutil.Vec2{0, dy} }

	s := &a.sprites
	place := func(i slot, pos mathutil.Vec2, scale float64) {
		s[i].Position = pos
		s[i].RotationOrScale = scale
	}
	place(slotHomeLabel, l.Centered(-0.475, -0.475), fs)
	place(slotTargetLabel, l.Centered(0.475, -0.475), fs)
	place(slotPositionLabel, l.Centered(pick(-0.415, -0.385), 0).Sub(down(line*1.5)), fs)
	place(slotPositionValue, l.Centered(-0.35, 0).Sub(down(line*1.5)), fs)
	place(slotPitchLabel, l.Centered(pick(0.415, 0.38), 0).Sub(down(line*0.65*2.5)), fs*0.65)
	place(slotPitchValue, l.Centered(0.35, 0).Sub(down(line*0.5)), fs)
	place(slotYawLabel, l.Centered(0, pick(0.475, 0.4)).Sub(down(line)), fs)
	place(slotYawValue, l.Centered(0, 0.36).Sub(down(line)), fs)
	place(slotRollLabel, l.Centered(0, pick(-0.475, -0.4)), fs)
	place(slotRollValue, l.Centered(0, -0.36), fs)
	place(slotSpeedValue, l.Centered(0.25, 0.25).Sub(down(line*0.5)), fs)
}
