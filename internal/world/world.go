// Package world is a small deterministic stand-in for the host simulation:
// grids carrying blocks, mechanical links maintained in an assembly
// registry, a spatial index over block positions and connector status.
// A World is driven from one goroutine and is not safe for concurrent use.
package world

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"

	"connector-align/internal/align"
	"connector-align/internal/assembly"
	"connector-align/internal/logging"
	"connector-align/internal/mathutil"
	"connector-align/internal/model"
)

// ErrNotFound is returned for unknown grid or block ids.
var ErrNotFound = errors.New("world: not found")

// BlockKind distinguishes the blocks the HUD cares about.
type BlockKind uint8

const (
	KindOther BlockKind = iota
	KindConnector
	KindPanel
)

func (k BlockKind) String() string {
	switch k {
	case KindConnector:
		return "connector"
	case KindPanel:
		return "panel"
	}
	return "other"
}

// ParseKind maps a kind name (case-insensitive) to its value.
func ParseKind(s string) (BlockKind, error) {
	switch strings.ToLower(s) {
	case "connector":
		return KindConnector, nil
	case "panel", "lcd":
		return KindPanel, nil
	case "", "other", "block":
		return KindOther, nil
	}
	return KindOther, fmt.Errorf("world: unknown block kind %q", s)
}

// GridSpec describes a rigid body. Spin is angular velocity in degrees per
// second about world axes.
type GridSpec struct {
	ID       assembly.GridID
	Name     string
	Position mathutil.Vec3
	Forward  mathutil.Vec3
	Up       mathutil.Vec3
	Velocity mathutil.Vec3
	Spin     mathutil.Vec3
}

// BlockSpec places a block on a grid, oriented in 90° steps.
type BlockSpec struct {
	ID       align.EntityID
	Name     string
	Kind     BlockKind
	Grid     assembly.GridID
	Model    string
	Position mathutil.Vec3
	Forward  mathutil.Direction
	Up       mathutil.Direction
}

// PanelSpec is a display block.
type PanelSpec struct {
	BlockSpec
	TextureSize mathutil.Vec2
	SurfaceSize mathutil.Vec2
	Foreground  color.RGBA
	CustomData  string
}

// MateTolerance bounds how close two facing ports must be. Within Distance
// and AngleDeg a pair is connectable and may be locked with Connect; within
// LockDistance and LockAngleDeg it locks on its own.
type MateTolerance struct {
	Distance     float64
	AngleDeg     float64
	LockDistance float64
	LockAngleDeg float64
}

// DefaultMateTolerance returns the tolerances a new world starts with.
func DefaultMateTolerance() MateTolerance {
	return MateTolerance{Distance: 0.5, AngleDeg: 10, LockDistance: 0.05, LockAngleDeg: 2}
}

type grid struct {
	id       assembly.GridID
	name     string
	pose     mathutil.Transform
	velocity mathutil.Vec3
	spin     mathutil.Vec3
}

type block struct {
	id      align.EntityID
	name    string
	kind    BlockKind
	grid    assembly.GridID
	dummies []model.Dummy
	local   mathutil.Transform
	status  align.Status
}

// World holds grids, blocks and their grouping.
type World struct {
	catalog  *model.Catalog
	registry *assembly.Registry
	log      logging.Logger

	grids     map[assembly.GridID]*grid
	blocks    map[align.EntityID]*block
	panels    map[align.EntityID]*Panel
	connected map[align.EntityID]align.EntityID
	index     spatialIndex
	mate      MateTolerance

	tick int
	time float64
}

// New creates an empty world resolving block models through catalog.
func New(catalog *model.Catalog, log logging.Logger) *World {
	if catalog == nil {
		catalog = model.NewCatalog()
	}
	return &World{
		catalog:   catalog,
		registry:  assembly.NewRegistry(),
		log:       logging.OrNop(log),
		grids:     make(map[assembly.GridID]*grid),
		blocks:    make(map[align.EntityID]*block),
		panels:    make(map[align.EntityID]*Panel),
		connected: make(map[align.EntityID]align.EntityID),
		index:     spatialIndex{dirty: true},
		mate:      DefaultMateTolerance(),
	}
}

// Registry exposes the grouping service for assembly trackers.
func (w *World) Registry() *assembly.Registry { return w.registry }

// Tick returns the number of completed steps.
func (w *World) Tick() int { return w.tick }

// Time returns the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

// SetMateTolerance overrides the mating tolerances. Zero lock bounds keep
// the defaults.
func (w *World) SetMateTolerance(t MateTolerance) {
	def := DefaultMateTolerance()
	if t.LockDistance <= 0 {
		t.LockDistance = def.LockDistance
	}
	if t.LockAngleDeg <= 0 {
		t.LockAngleDeg = def.LockAngleDeg
	}
	w.mate = t
	w.refreshStatus()
}

// AddGrid adds a rigid body.
func (w *World) AddGrid(spec GridSpec) error {
	if _, ok := w.grids[spec.ID]; ok {
		return fmt.Errorf("world: grid %d already exists", spec.ID)
	}
	fwd, up := spec.Forward, spec.Up
	if fwd.LenSq() == 0 {
		fwd = mathutil.Forward.Vector()
	}
	if up.LenSq() == 0 {
		up = mathutil.Up.Vector()
	}
	if fwd.Normalize().Cross(up.Normalize()).LenSq() < 1e-12 {
		return fmt.Errorf("world: grid %d: forward and up are parallel", spec.ID)
	}
	w.grids[spec.ID] = &grid{
		id:       spec.ID,
		name:     spec.Name,
		pose:     mathutil.NewTransform(spec.Position, fwd, up),
		velocity: spec.Velocity,
		spin:     spec.Spin,
	}
	w.registry.AddGrid(spec.ID)
	w.index.dirty = true
	return nil
}

// AddBlock places a block. Unknown model names are rejected; an empty model
// name gives a block without attachment points.
func (w *World) AddBlock(spec BlockSpec) error {
	if _, ok := w.blocks[spec.ID]; ok {
		return fmt.Errorf("world: block %d already exists", spec.ID)
	}
	if _, ok := w.grids[spec.Grid]; !ok {
		return fmt.Errorf("world: block %d: grid %d: %w", spec.ID, spec.Grid, ErrNotFound)
	}
	var dummies []model.Dummy
	if spec.Model != "" {
		m, ok := w.catalog.Lookup(spec.Model)
		if !ok {
			return fmt.Errorf("world: block %d: unknown model %q", spec.ID, spec.Model)
		}
		dummies = m.Dummies
	}
	rot, err := mathutil.BlockOrientation(spec.Forward, spec.Up)
	if err != nil {
		return fmt.Errorf("world: block %d: %w", spec.ID, err)
	}
	w.blocks[spec.ID] = &block{
		id:      spec.ID,
		name:    spec.Name,
		kind:    spec.Kind,
		grid:    spec.Grid,
		dummies: dummies,
		local:   mathutil.Transform{Rotation: rot, Translation: spec.Position},
	}
	w.index.dirty = true
	w.refreshStatus()
	return nil
}

// AddPanel places a display block and returns its surface.
func (w *World) AddPanel(spec PanelSpec) (*Panel, error) {
	spec.Kind = KindPanel
	if err := w.AddBlock(spec.BlockSpec); err != nil {
		return nil, err
	}
	p := &Panel{
		w:           w,
		id:          spec.ID,
		textureSize: spec.TextureSize,
		surfaceSize: spec.SurfaceSize,
		fg:          spec.Foreground,
		customData:  spec.CustomData,
	}
	if p.textureSize == (mathutil.Vec2{}) {
		p.textureSize = mathutil.Vec2{512, 512}
	}
	if p.surfaceSize == (mathutil.Vec2{}) {
		p.surfaceSize = p.textureSize
	}
	w.panels[spec.ID] = p
	return p, nil
}

// Link joins two grids mechanically.
func (w *World) Link(a, b assembly.GridID) error {
	if err := w.requireGrids(a, b); err != nil {
		return err
	}
	w.registry.Link(a, b)
	return nil
}

// Unlink removes one mechanical link between two grids.
func (w *World) Unlink(a, b assembly.GridID) error {
	if err := w.requireGrids(a, b); err != nil {
		return err
	}
	w.registry.Unlink(a, b)
	return nil
}

// RemoveGrid deletes a grid with all of its blocks and links.
func (w *World) RemoveGrid(id assembly.GridID) error {
	if _, ok := w.grids[id]; !ok {
		return fmt.Errorf("world: grid %d: %w", id, ErrNotFound)
	}
	for bid, b := range w.blocks {
		if b.grid != id {
			continue
		}
		if other, ok := w.connected[bid]; ok {
			delete(w.connected, other)
			delete(w.connected, bid)
		}
		delete(w.blocks, bid)
		delete(w.panels, bid)
	}
	delete(w.grids, id)
	w.registry.RemoveGrid(id)
	w.index.dirty = true
	w.refreshStatus()
	return nil
}

// SetGridPose moves a grid.
func (w *World) SetGridPose(id assembly.GridID, position, forward, up mathutil.Vec3) error {
	g, ok := w.grids[id]
	if !ok {
		return fmt.Errorf("world: grid %d: %w", id, ErrNotFound)
	}
	g.pose = mathutil.NewTransform(position, forward, up)
	w.index.dirty = true
	w.refreshStatus()
	return nil
}

// SetGridMotion sets linear velocity (m/s) and spin (deg/s).
func (w *World) SetGridMotion(id assembly.GridID, velocity, spin mathutil.Vec3) error {
	g, ok := w.grids[id]
	if !ok {
		return fmt.Errorf("world: grid %d: %w", id, ErrNotFound)
	}
	g.velocity, g.spin = velocity, spin
	return nil
}

// GridPose returns a grid's world transform.
func (w *World) GridPose(id assembly.GridID) (mathutil.Transform, bool) {
	g, ok := w.grids[id]
	if !ok {
		return mathutil.Transform{}, false
	}
	return g.pose, true
}

// Step advances every grid by dt seconds and re-evaluates connector status.
func (w *World) Step(dt float64) {
	for _, g := range w.grids {
		moved := false
		if g.velocity.LenSq() > 0 {
			g.pose.Translation = g.pose.Translation.Add(g.velocity.Scale(dt))
			moved = true
		}
		if rate := g.spin.Len(); rate > 0 {
			turn := mathutil.AxisAngle(g.spin, mathutil.Deg2Rad(rate*dt))
			g.pose.Rotation = mathutil.Mat3Mul(g.pose.Rotation, turn)
			moved = true
		}
		if moved {
			w.index.dirty = true
		}
	}
	w.tick++
	w.time += dt
	w.refreshStatus()
}

// Connectors returns the connector blocks on the given grids, ordered by id.
func (w *World) Connectors(grids []assembly.GridID) []align.Connector {
	want := make(map[assembly.GridID]bool, len(grids))
	for _, g := range grids {
		want[g] = true
	}
	var out []align.Connector
	for _, id := range w.sortedBlockIDs() {
		b := w.blocks[id]
		if b.kind == KindConnector && want[b.grid] {
			out = append(out, w.connectorOf(b))
		}
	}
	return out
}

// Connector returns one connector block.
func (w *World) Connector(id align.EntityID) (align.Connector, bool) {
	b, ok := w.blocks[id]
	if !ok || b.kind != KindConnector {
		return align.Connector{}, false
	}
	return w.connectorOf(b), true
}

// EntitiesInSphere answers a spatial query over block positions.
func (w *World) EntitiesInSphere(s mathutil.Sphere) []align.Entity {
	if w.index.dirty {
		points := make(entityPoints, 0, len(w.blocks))
		for id, b := range w.blocks {
			points = append(points, entityPoint{pos: w.blockWorld(b).Translation, id: id})
		}
		w.index.rebuild(points)
	}
	ids := w.index.within(s)
	out := make([]align.Entity, 0, len(ids))
	for _, id := range ids {
		b := w.blocks[id]
		e := align.Entity{ID: id, Position: w.blockWorld(b).Translation}
		if b.kind == KindConnector {
			c := w.connectorOf(b)
			e.Connector = &c
		}
		out = append(out, e)
	}
	return out
}

// Panel returns a display surface by block id.
func (w *World) Panel(id align.EntityID) (*Panel, bool) {
	p, ok := w.panels[id]
	return p, ok
}

// Panels returns all display surfaces, ordered by id.
func (w *World) Panels() []*Panel {
	out := make([]*Panel, 0, len(w.panels))
	for _, p := range w.panels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (w *World) requireGrids(ids ...assembly.GridID) error {
	for _, id := range ids {
		if _, ok := w.grids[id]; !ok {
			return fmt.Errorf("world: grid %d: %w", id, ErrNotFound)
		}
	}
	return nil
}

func (w *World) blockWorld(b *block) mathutil.Transform {
	return mathutil.Compose(b.local, w.grids[b.grid].pose)
}

func (w *World) connectorOf(b *block) align.Connector {
	return align.Connector{
		ID:           b.id,
		Name:         b.name,
		Grid:         b.grid,
		World:        w.blockWorld(b),
		Dummies:      b.dummies,
		Status:       b.status,
		GridVelocity: w.grids[b.grid].velocity,
	}
}

func (w *World) sortedBlockIDs() []align.EntityID {
	ids := make([]align.EntityID, 0, len(w.blocks))
	for id := range w.blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
