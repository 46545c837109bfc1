package hud

import (
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"connector-align/internal/align"
	"connector-align/internal/assembly"
	"connector-align/internal/mathutil"
	"connector-align/internal/model"
	"connector-align/internal/world"
)

var white = color.RGBA{255, 255, 255, 255}

const seeded = "[ConnAlign]\nrelativeToLcd = true\nuseLargeFont = true\n"

// dock builds a ship (grid 1) facing +X with a connector and a panel on
// it, and a station (grid 2) at gap whose connector faces the ship.
func dock(t *testing.T, gap float64, panelFwd, panelUp mathutil.Direction) (*world.World, *world.Panel) {
	t.Helper()
	w := world.New(nil, nil)
	require.NoError(t, w.AddGrid(world.GridSpec{ID: 1, Name: "ship", Forward: mathutil.Vec3{1, 0, 0}, Up: mathutil.Vec3{0, 0, 1}}))
	require.NoError(t, w.AddGrid(world.GridSpec{ID: 2, Name: "station", Position: mathutil.Vec3{gap, 0, 0}, Forward: mathutil.Vec3{-1, 0, 0}, Up: mathutil.Vec3{0, 0, 1}}))
	require.NoError(t, w.AddBlock(world.BlockSpec{ID: 10, Name: "Ship Connector", Kind: world.KindConnector, Grid: 1, Model: model.LargeConnector, Forward: mathutil.Forward, Up: mathutil.Up}))
	require.NoError(t, w.AddBlock(world.BlockSpec{ID: 20, Name: "Station Connector", Kind: world.KindConnector, Grid: 2, Model: model.LargeConnector, Forward: mathutil.Forward, Up: mathutil.Up}))
	p, err := w.AddPanel(world.PanelSpec{
		BlockSpec:  world.BlockSpec{ID: 5, Name: "HUD", Grid: 1, Position: mathutil.Vec3{0, 2.5, 0}, Forward: panelFwd, Up: panelUp},
		Foreground: white,
		CustomData: seeded,
	})
	require.NoError(t, err)
	return w, p
}

// countingMembership counts Close calls on a tracker.
type countingMembership struct {
	*assembly.Tracker
	closes int
}

func (c *countingMembership) Close() {
	c.closes++
	c.Tracker.Close()
}

func newApp(t *testing.T, w *world.World, p *world.Panel) (*App, *countingMembership) {
	t.Helper()
	m := &countingMembership{Tracker: assembly.NewTracker(w.Registry(), 1, nil)}
	a := New(p, w, m, Options{Meter: noop.NewMeterProvider().Meter("test")}, nil)
	t.Cleanup(a.Close)
	return a, m
}

func spriteData(f Frame) []string {
	out := make([]string, 0, len(f.Sprites))
	for _, s := range f.Sprites {
		out = append(out, s.Data)
	}
	return out
}

func TestLayout(t *testing.T) {
	l := NewLayout(mathutil.Vec2{512, 512}, mathutil.Vec2{512, 512})
	assert.Equal(t, mathutil.Vec2{256, 256}, l.Centered(0, 0))
	assert.Equal(t, mathutil.Vec2{256, 256}, l.Center())
	assert.InDeltaSlice(t, []float64{51.2, 204.8}, l.TextureSize(0.4, 0.25)[:], 1e-9)
	assert.InDelta(t, 0.075*512/28.8, l.ValuesFontScale(true), 1e-12)
	assert.InDelta(t, 0.033*512/28.8, l.ValuesFontScale(false), 1e-12)

	// A wide surface centred in a square texture.
	wide := NewLayout(mathutil.Vec2{512, 512}, mathutil.Vec2{512, 256})
	assert.Equal(t, mathutil.Vec2{0, 128}, wide.Origin)
	assert.InDelta(t, 2.0, wide.Aspect, 1e-12)
	assert.Equal(t, 256.0, wide.MinExtent)
	assert.Equal(t, mathutil.Vec2{256, 256}, wide.Centered(0, 0))
	assert.Equal(t, mathutil.Vec2{128, 128}, wide.Centered(-0.5, -0.5))
	assert.Equal(t, mathutil.Vec2{0, 128}, wide.ToScreen(0, 0, 0, 0, false))
	assert.InDeltaSlice(t, []float64{256, 256}, wide.TextureSize(1, 1)[:], 1e-9)

	tall := NewLayout(mathutil.Vec2{512, 512}, mathutil.Vec2{256, 512})
	assert.InDeltaSlice(t, []float64{256, 256}, tall.TextureSize(1, 1)[:], 1e-9)
}

func TestRoundNumber(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   string
	}{
		{2.5, 0, "2"},
		{3.5, 0, "4"},
		{0.25, 1, "0.2"},
		{0.75, 1, "0.8"},
		{-0.04, 1, "0"},
		{-3.14159, 2, "-3.14"},
		{10, 2, "10"},
		{1234.5678, 2, "1234.57"},
		{-7.25, 1, "-7.2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundNumber(tt.v, tt.places), "%v@%d", tt.v, tt.places)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.5\n-2\n0", formatPosition(mathutil.Vec3{1.5, -2, -0.001}, true))
	assert.Equal(t, "1.5 m\n-2 m\n0 m", formatPosition(mathutil.Vec3{1.5, -2, -0.001}, false))
	assert.Equal(t, "-12.3°", formatAngle(-12.34))
	assert.Equal(t, "0°", formatAngle(-0.01))
	assert.Equal(t, "2.5 m/s", formatSpeed(2.45000001))

	assert.Equal(t, "Connector AB", formatLabel("Connector AB"))
	assert.Equal(t, "Docking\nPort\nAlpha", formatLabel("Docking Port Alpha"))
	assert.Equal(t, "Überlastungen", formatLabel("Überlastungen"))
}

func TestPlaceholder(t *testing.T) {
	p := placeholder(true)
	assert.Equal(t, " - ", p.HomeLabel)
	assert.Equal(t, " - ", p.TargetLabel)
	assert.Equal(t, "0\n0\n0", p.Position)
	assert.Equal(t, "0°", p.Pitch)
	assert.Equal(t, "0°", p.Yaw)
	assert.Equal(t, "0°", p.Roll)
	assert.Equal(t, "0 m/s", p.Speed)
	assert.False(t, p.Paired)
	assert.Equal(t, "0 m\n0 m\n0 m", placeholder(false).Position)
}

func TestRunPaired(t *testing.T) {
	w, p := dock(t, 10, mathutil.Forward, mathutil.Up)
	a, _ := newApp(t, w, p)

	f := a.Run(context.Background())
	r := f.Readout
	require.True(t, r.Paired)
	assert.Equal(t, "Ship\nConnector", r.HomeLabel)
	assert.Equal(t, "Station\nConnector", r.TargetLabel)
	assert.Equal(t, "0\n0\n-10", r.Position)
	assert.Equal(t, "0°", r.Pitch)
	assert.Equal(t, "0°", r.Yaw)
	assert.Equal(t, "0°", r.Roll)
	assert.Equal(t, "0 m/s", r.Speed)
	assert.InDelta(t, 10, r.Distance, 1e-9)
	assert.Equal(t, align.StatusOther, r.Status)

	require.Len(t, f.Sprites, int(slotCount))
	assert.Equal(t, []string{
		TextureVelocityVector,
		TextureDockingBracket, TextureDockingBracket, TextureDockingBracket, TextureDockingBracket,
		TextureVelocityVector,
		"Ship\nConnector", "Station\nConnector",
		"X\nY\nZ", "0\n0\n-10",
		"P\nI\nT\nC\nH", "0°",
		"YAW", "0°",
		"ROLL", "0°",
		"0 m/s",
	}, spriteData(f))

	target := f.Sprites[slotTarget]
	assert.InDeltaSlice(t, []float64{256, 256}, target.Position[:], 1e-9)
	assert.InDeltaSlice(t, []float64{44.8, 44.8}, target.Size[:], 1e-9)
	assert.InDelta(t, 0, target.RotationOrScale, 1e-9)
	assert.Equal(t, withAlpha(white, spriteAlpha), target.Color)
	assert.Equal(t, uint8(168), target.Color.A)
	assert.Equal(t, straight(white), f.Sprites[slotPositionValue].Color)
}

func TestRunSpeedDifference(t *testing.T) {
	w, p := dock(t, 10, mathutil.Forward, mathutil.Up)
	require.NoError(t, w.SetGridMotion(2, mathutil.Vec3{3, 4, 0}, mathutil.Vec3{}))
	require.NoError(t, w.SetGridMotion(1, mathutil.Vec3{0, 0, 1.5}, mathutil.Vec3{}))
	a, _ := newApp(t, w, p)
	assert.Equal(t, "3.5 m/s", a.Run(context.Background()).Readout.Speed)
}

func TestRunPanelFrame(t *testing.T) {
	// Panel facing up with its top toward the ship's back.
	w, p := dock(t, 10, mathutil.Up, mathutil.Backward)
	a, _ := newApp(t, w, p)

	f := a.Run(context.Background())
	assert.Equal(t, "0\n-10\n0", f.Readout.Position)
	target := f.Sprites[slotTarget]
	assert.InDeltaSlice(t, []float64{256, 384}, target.Position[:], 1e-9)
	assert.InDeltaSlice(t, []float64{51.2, 51.2}, target.Size[:], 1e-9)

	p.SetCustomData("[ConnAlign]\nrelativeToLcd = false\nuseLargeFont = true\n")
	for i := 0; i < DefaultCustomDataEvery-2; i++ {
		a.Run(context.Background())
	}
	f = a.Run(context.Background())
	assert.False(t, a.Options().RelativeToLcd)
	assert.Equal(t, "0\n0\n-10", f.Readout.Position)
	// The marker always follows the panel frame.
	assert.InDeltaSlice(t, []float64{256, 384}, f.Sprites[slotTarget].Position[:], 1e-9)
}

func TestRunPlaceholderAfterPair(t *testing.T) {
	w, p := dock(t, 10, mathutil.Forward, mathutil.Up)
	a, _ := newApp(t, w, p)
	require.True(t, a.Run(context.Background()).Readout.Paired)

	require.NoError(t, w.SetGridPose(2, mathutil.Vec3{500, 0, 0}, mathutil.Vec3{-1, 0, 0}, mathutil.Vec3{0, 0, 1}))
	f := a.Run(context.Background())
	assert.Equal(t, placeholder(true), f.Readout)
	assert.Len(t, f.Sprites, int(slotCount)-1)
	assert.Equal(t, []string{
		TextureVelocityVector,
		TextureDockingBracket, TextureDockingBracket, TextureDockingBracket, TextureDockingBracket,
		" - ", " - ",
		"X\nY\nZ", "0\n0\n0",
		"P\nI\nT\nC\nH", "0°",
		"YAW", "0°",
		"ROLL", "0°",
		"0 m/s",
	}, spriteData(f))
	assert.Equal(t, straight(white), f.Sprites[slotPositionValue-1].Color)
}

func TestRunStatusColours(t *testing.T) {
	w, p := dock(t, 0.3, mathutil.Forward, mathutil.Up)
	a, _ := newApp(t, w, p)

	f := a.Run(context.Background())
	require.True(t, f.Readout.Paired)
	assert.Equal(t, align.StatusConnectable, f.Readout.Status)
	assert.Equal(t, colorConnectable, f.Sprites[slotPositionValue].Color)

	require.NoError(t, w.Connect(10))
	f = a.Run(context.Background())
	assert.Equal(t, align.StatusConnected, f.Readout.Status)
	assert.Equal(t, colorConnected, f.Sprites[slotPositionValue].Color)
}

func TestAssemblyMembersAreNotTargets(t *testing.T) {
	w, p := dock(t, 10, mathutil.Forward, mathutil.Up)
	a, _ := newApp(t, w, p)
	require.True(t, a.Run(context.Background()).Readout.Paired)

	require.NoError(t, w.Link(1, 2))
	assert.False(t, a.Run(context.Background()).Readout.Paired)

	require.NoError(t, w.Unlink(1, 2))
	assert.True(t, a.Run(context.Background()).Readout.Paired)
}

func TestCustomDataSeeding(t *testing.T) {
	w, p := dock(t, 10, mathutil.Forward, mathutil.Up)

	p.SetCustomData("")
	a, _ := newApp(t, w, p)
	assert.Contains(t, p.CustomData(), "[ConnAlign]")
	assert.Contains(t, p.CustomData(), "relativeToLcd = true")
	assert.Contains(t, p.CustomData(), "useLargeFont  = true")
	assert.True(t, a.Options().RelativeToLcd)
	assert.True(t, a.Options().UseLargeFont)

	// Complete text is left untouched.
	text := "; notes\n[ConnAlign]\nrelativeToLcd=no\nuseLargeFont=off\n"
	p.SetCustomData(text)
	b, _ := newApp(t, w, p)
	assert.Equal(t, text, p.CustomData())
	assert.False(t, b.Options().RelativeToLcd)
	assert.False(t, b.Options().UseLargeFont)

	// Unparseable text is left untouched and the defaults apply.
	broken := "[ConnAlign\nrelativeToLcd=false"
	p.SetCustomData(broken)
	c, _ := newApp(t, w, p)
	assert.Equal(t, broken, p.CustomData())
	assert.True(t, c.Options().RelativeToLcd)
}

func TestCustomDataCadence(t *testing.T) {
	w, p := dock(t, 10, mathutil.Forward, mathutil.Up)
	a, _ := newApp(t, w, p)
	largeScale := a.Layout().ValuesFontScale(true)
	smallScale := a.Layout().ValuesFontScale(false)

	p.SetCustomData("[ConnAlign]\nuseLargeFont = false\n")
	for i := 1; i < DefaultCustomDataEvery; i++ {
		f := a.Run(context.Background())
		require.True(t, a.Options().UseLargeFont, "run %d", i)
		assert.Equal(t, largeScale, f.Sprites[slotPositionValue].RotationOrScale)
	}
	f := a.Run(context.Background())
	assert.False(t, a.Options().UseLargeFont)
	assert.True(t, a.Options().RelativeToLcd, "missing key reads as default")
	assert.Equal(t, "0 m\n0 m\n-10 m", f.Readout.Position)
	assert.Equal(t, smallScale, f.Sprites[slotPositionValue].RotationOrScale)
	assert.InDelta(t, smallScale*0.65, f.Sprites[slotPitchLabel].RotationOrScale, 1e-12)
	wantLabel := a.Layout().Centered(-0.385, 0).Sub(mathutil.Vec2{0, smallScale * pxPerScale * 1.5})
	assert.InDeltaSlice(t, wantLabel[:], f.Sprites[slotPositionLabel].Position[:], 1e-9)

	// Unreadable text keeps the last good options.
	p.SetCustomData("[ConnAlign")
	for i := 0; i < DefaultCustomDataEvery; i++ {
		a.Run(context.Background())
	}
	assert.False(t, a.Options().UseLargeFont)
}

func TestColorCadence(t *testing.T) {
	w, p := dock(t, 500, mathutil.Forward, mathutil.Up)
	a, _ := newApp(t, w, p)
	red := color.RGBA{200, 10, 10, 255}
	p.SetForegroundColor(red)

	// The colour check is offset by half a period from the custom data check.
	for i := 1; i < DefaultColorEvery/2; i++ {
		f := a.Run(context.Background())
		assert.Equal(t, withAlpha(white, spriteAlpha), f.Sprites[slotMidPoint].Color, "run %d", i)
		assert.Equal(t, straight(white), f.Sprites[slotYawLabel-1].Color, "run %d", i)
	}
	f := a.Run(context.Background())
	assert.Equal(t, withAlpha(red, spriteAlpha), f.Sprites[slotMidPoint].Color)
	assert.Equal(t, withAlpha(red, spriteAlpha), f.Sprites[slotBottomRing].Color)
	assert.Equal(t, straight(red), f.Sprites[slotYawLabel-1].Color)
	for _, s := range f.Sprites {
		if s.Type == SpriteText {
			assert.Equal(t, straight(red), s.Color, s.Data)
		}
	}
}

func TestClose(t *testing.T) {
	w, p := dock(t, 10, mathutil.Forward, mathutil.Up)
	a, m := newApp(t, w, p)
	group, ok := m.Group()
	require.True(t, ok)
	require.Equal(t, 1, w.Registry().Subscribers(group))

	a.Close()
	a.Close()
	assert.Equal(t, 1, m.closes)
	assert.Equal(t, 0, w.Registry().Subscribers(group))
	assert.Empty(t, a.Run(context.Background()).Sprites)
}

func TestTextSpritesUseWhiteFont(t *testing.T) {
	w, p := dock(t, 10, mathutil.Forward, mathutil.Up)
	a, _ := newApp(t, w, p)
	for _, s := range a.Run(context.Background()).Sprites {
		if s.Type == SpriteText {
			assert.Equal(t, FontWhite, s.FontID)
			assert.False(t, strings.ContainsRune(s.Data, '\t'))
		}
	}
}
