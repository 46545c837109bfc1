package scene

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connector-align/internal/align"
	"connector-align/internal/assembly"
	"connector-align/internal/mathutil"
	"connector-align/internal/model"
	"connector-align/internal/world"
)

const dockingYAML = `
name: docking
models:
  - name: OffsetConnector
    dummies:
      - name: root
        position: [0, 0, -1]
      - name: detector_Connector_001
        parent: 0
        rotation: [0, 0, 90]
grids:
  - id: 1
    name: ship
    forward: [1, 0, 0]
    up: [0, 0, 1]
  - id: 2
    name: station
    position: [20, 0, 0]
    forward: [-1, 0, 0]
    up: [0, 0, 1]
  - id: 3
    name: arm
blocks:
  - {id: 10, name: Ship Connector, kind: connector, grid: 1, model: LargeBlockConnector}
  - {id: 20, name: Station Connector, kind: Connector, grid: 2, model: offsetconnector, forward: forward, up: up}
panels:
  - id: 5
    name: Cockpit LCD
    grid: 1
    position: [0, 1, 0]
    forward: backward
    textureSize: [512, 256]
    foreground: "#ff8000"
    customData: |
      [ConnAlign]
      relativeToLcd = true
links:
  - [1, 3]
mateTolerance: {distance: 0.5, angleDeg: 10, lockDistance: 0.05, lockAngleDeg: 2}
events:
  - {tick: 5, action: motion, grid: 1, velocity: [2, 0, 0]}
  - {tick: 5, action: customData, block: 5, text: "[ConnAlign]"}
  - {tick: 9, action: pose, grid: 2, position: [1.2, 0, 0]}
  - {tick: 9, action: Connect, block: 10}
`

func TestLoadYAMLAndBuild(t *testing.T) {
	f, err := LoadYAML(strings.NewReader(dockingYAML))
	require.NoError(t, err)
	assert.Equal(t, "docking", f.Name)
	require.Len(t, f.Panels, 1)
	assert.Equal(t, Color{255, 128, 0, 255}, *f.Panels[0].Foreground)
	assert.Nil(t, f.Models[0].Dummies[0].Parent)
	require.NotNil(t, f.Models[0].Dummies[1].Parent)

	w, err := f.Build(nil)
	require.NoError(t, err)

	c, ok := w.Connector(10)
	require.True(t, ok)
	assert.True(t, c.World.Forward().ApproxEqual(mathutil.Vec3{1, 0, 0}, 1e-9))

	// The custom model's port sits one metre ahead of the block.
	st, ok := w.Connector(20)
	require.True(t, ok)
	port := model.FunctionalTransform(st.World, st.Dummies).Translation
	assert.True(t, port.ApproxEqual(mathutil.Vec3{19, 0, 0}, 1e-9), "got %v", port)

	p, ok := w.Panel(5)
	require.True(t, ok)
	assert.Equal(t, "Cockpit LCD", p.Name())
	assert.Equal(t, mathutil.Vec2{512, 256}, p.TextureSize())
	assert.Equal(t, color.RGBA{255, 128, 0, 255}, p.ForegroundColor())
	assert.Contains(t, p.CustomData(), "relativeToLcd = true")
	assert.True(t, p.Transform().Forward().ApproxEqual(mathutil.Vec3{-1, 0, 0}, 1e-9))

	g1, _ := w.Registry().GroupOf(1)
	g3, _ := w.Registry().GroupOf(3)
	assert.Equal(t, g1, g3)

	assert.Equal(t, 9, f.LastEventTick())
	assert.Len(t, f.EventsAt(5), 2)
	assert.Empty(t, f.EventsAt(6))
}

func TestApplyEvents(t *testing.T) {
	f, err := LoadYAML(strings.NewReader(dockingYAML))
	require.NoError(t, err)
	w, err := f.Build(nil)
	require.NoError(t, err)

	require.NoError(t, f.ApplyEvents(w, 5))
	p, _ := w.Panel(5)
	assert.Equal(t, "[ConnAlign]", p.CustomData())

	require.NoError(t, f.ApplyEvents(w, 9))
	pose, ok := w.GridPose(2)
	require.True(t, ok)
	assert.True(t, pose.Translation.ApproxEqual(mathutil.Vec3{1.2, 0, 0}, 1e-9))
	// Orientation is kept when only the position is given.
	assert.True(t, pose.Forward().ApproxEqual(mathutil.Vec3{-1, 0, 0}, 1e-9))

	for _, id := range []align.EntityID{10, 20} {
		c, _ := w.Connector(id)
		assert.Equal(t, align.StatusConnected, c.Status, "connector %d", id)
	}

	// Nothing scheduled.
	require.NoError(t, f.ApplyEvents(w, 100))
}

func TestEventApply(t *testing.T) {
	f, err := LoadYAML(strings.NewReader(dockingYAML))
	require.NoError(t, err)
	w, err := f.Build(nil)
	require.NoError(t, err)

	require.NoError(t, Event{Action: ActionUnlink, Grid: 1, Other: 3}.Apply(w))
	g1, _ := w.Registry().GroupOf(1)
	g3, _ := w.Registry().GroupOf(3)
	assert.NotEqual(t, g1, g3)

	orange := Color{255, 128, 0, 255}
	require.NoError(t, Event{Action: ActionForeground, Block: 5, Color: &orange}.Apply(w))
	assert.Error(t, Event{Action: ActionForeground, Block: 5}.Apply(w))
	assert.ErrorIs(t, Event{Action: ActionCustomData, Block: 99}.Apply(w), world.ErrNotFound)
	assert.ErrorIs(t, Event{Action: ActionPose, Grid: 99}.Apply(w), world.ErrNotFound)
	assert.Error(t, Event{Action: "explode"}.Apply(w))

	require.NoError(t, Event{Action: ActionRemove, Grid: 3}.Apply(w))
	_, ok := w.GridPose(assembly.GridID(3))
	assert.False(t, ok)
}

func TestLoadJSON(t *testing.T) {
	const doc = `{
  "name": "json",
  "grids": [{"id": 1, "name": "ship", "velocity": [1, 2, 3]}],
  "panels": [{"id": 5, "name": "LCD", "grid": 1, "customData": ""}],
  "events": [{"tick": 2, "action": "disconnect", "block": 5}]
}`
	f, err := LoadJSON(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, Vec3{1, 2, 3}, f.Grids[0].Velocity)
	assert.Equal(t, "LCD", f.Panels[0].Name)

	w, err := f.Build(nil)
	require.NoError(t, err)
	p, ok := w.Panel(5)
	require.True(t, ok)
	assert.Equal(t, defaultForeground, p.ForegroundColor())
	assert.Equal(t, mathutil.Vec2{512, 512}, p.TextureSize())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(yml, []byte(dockingYAML), 0644))
	f, err := LoadFile(yml)
	require.NoError(t, err)
	assert.Equal(t, "docking", f.Name)

	js := filepath.Join(dir, "scene.JSON")
	require.NoError(t, os.WriteFile(js, []byte(`{"name": "j", "grids": []}`), 0644))
	f, err = LoadFile(js)
	require.NoError(t, err)
	assert.Equal(t, "j", f.Name)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"short vector":  "grids:\n  - {id: 1, position: [1, 2]}\n",
		"unknown field": "grids:\n  - {id: 1, mass: 5}\n",
		"bad colour":    "panels:\n  - {id: 1, grid: 1, foreground: orange}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := LoadJSON(strings.NewReader(`{"grids": [{"id": 1, "spin": [1, 2, 3, 4]}]}`))
	assert.Error(t, err)
	_, err = LoadJSON(strings.NewReader(`{"extra": true}`))
	assert.Error(t, err)
}

func TestBuildErrors(t *testing.T) {
	base := func() *File {
		return &File{Grids: []Grid{{ID: 1, Name: "ship"}}}
	}
	parent := 3
	cases := map[string]func(f *File){
		"duplicate grid": func(f *File) { f.Grids = append(f.Grids, Grid{ID: 1}) },
		"bad kind":       func(f *File) { f.Blocks = []Block{{ID: 1, Grid: 1, Kind: "turret"}} },
		"bad direction":  func(f *File) { f.Blocks = []Block{{ID: 1, Grid: 1, Forward: "sideways"}} },
		"bad up":         func(f *File) { f.Blocks = []Block{{ID: 1, Grid: 1, Forward: "up", Up: "down"}} },
		"missing grid":   func(f *File) { f.Blocks = []Block{{ID: 1, Grid: 9}} },
		"unknown model":  func(f *File) { f.Blocks = []Block{{ID: 1, Grid: 1, Model: "nope"}} },
		"short link":     func(f *File) { f.Links = [][]int64{{1}} },
		"link missing":   func(f *File) { f.Links = [][]int64{{1, 2}} },
		"bad parent": func(f *File) {
			f.Models = []Model{{Name: "m", Dummies: []Dummy{{Name: "a", Parent: &parent}}}}
		},
		"bad action":    func(f *File) { f.Events = []Event{{Tick: 1, Action: "explode"}} },
		"negative tick": func(f *File) { f.Events = []Event{{Tick: -1, Action: ActionConnect}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := base()
			mutate(f)
			_, err := f.Build(nil)
			assert.Error(t, err)
		})
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#102030")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 0xff}, c)

	c, err = ParseColor("ffffff80")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)

	_, err = ParseColor("#fff")
	assert.Error(t, err)
	_, err = ParseColor("#gggggg")
	assert.Error(t, err)
}
