package scene

import (
	"fmt"
	"image/color"

	"connector-align/internal/align"
	"connector-align/internal/assembly"
	"connector-align/internal/logging"
	"connector-align/internal/mathutil"
	"connector-align/internal/model"
	"connector-align/internal/world"
)

var defaultForeground = color.RGBA{255, 255, 255, 255}

// Build creates a world holding the scene's models, grids, blocks, panels and
// links. Events are validated but not applied.
func (f *File) Build(log logging.Logger) (*world.World, error) {
	catalog := model.NewCatalog()
	for _, m := range f.Models {
		if err := catalog.Register(m.toModel()); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}

	w := world.New(catalog, log)
	if f.MateTolerance != nil {
		w.SetMateTolerance(world.MateTolerance{
			Distance:     f.MateTolerance.Distance,
			AngleDeg:     f.MateTolerance.AngleDeg,
			LockDistance: f.MateTolerance.LockDistance,
			LockAngleDeg: f.MateTolerance.LockAngleDeg,
		})
	}

	for _, g := range f.Grids {
		spec := world.GridSpec{
			ID:       assembly.GridID(g.ID),
			Name:     g.Name,
			Position: mathutil.Vec3(g.Position),
			Forward:  vecOr(g.Forward, mathutil.Vec3{}),
			Up:       vecOr(g.Up, mathutil.Vec3{}),
			Velocity: mathutil.Vec3(g.Velocity),
			Spin:     mathutil.Vec3(g.Spin),
		}
		if err := w.AddGrid(spec); err != nil {
			return nil, fmt.Errorf("scene: grid %q: %w", g.Name, err)
		}
	}

	for _, b := range f.Blocks {
		spec, err := b.spec()
		if err != nil {
			return nil, fmt.Errorf("scene: block %q: %w", b.Name, err)
		}
		if err := w.AddBlock(spec); err != nil {
			return nil, fmt.Errorf("scene: block %q: %w", b.Name, err)
		}
	}

	for _, p := range f.Panels {
		spec, err := p.Block.spec()
		if err != nil {
			return nil, fmt.Errorf("scene: panel %q: %w", p.Name, err)
		}
		ps := world.PanelSpec{
			BlockSpec:  spec,
			Foreground: defaultForeground,
			CustomData: p.CustomData,
		}
		if p.TextureSize != nil {
			ps.TextureSize = mathutil.Vec2(*p.TextureSize)
		}
		if p.SurfaceSize != nil {
			ps.SurfaceSize = mathutil.Vec2(*p.SurfaceSize)
		}
		if p.Foreground != nil {
			ps.Foreground = colorOf(*p.Foreground)
		}
		if _, err := w.AddPanel(ps); err != nil {
			return nil, fmt.Errorf("scene: panel %q: %w", p.Name, err)
		}
	}

	for i, l := range f.Links {
		if len(l) != 2 {
			return nil, fmt.Errorf("scene: link %d: want 2 grid ids, got %d", i, len(l))
		}
		if err := w.Link(assembly.GridID(l[0]), assembly.GridID(l[1])); err != nil {
			return nil, fmt.Errorf("scene: link %d: %w", i, err)
		}
	}

	for i, e := range f.Events {
		if e.Tick < 0 {
			return nil, fmt.Errorf("scene: event %d: negative tick %d", i, e.Tick)
		}
		if _, err := normalizeAction(e.Action); err != nil {
			return nil, fmt.Errorf("scene: event %d: %w", i, err)
		}
	}
	return w, nil
}

// ApplyEvents applies the events scheduled for tick, in file order, and stops
// at the first failure.
func (f *File) ApplyEvents(w *world.World, tick int) error {
	for _, e := range f.EventsAt(tick) {
		if err := e.Apply(w); err != nil {
			return fmt.Errorf("scene: tick %d %s: %w", tick, e.Action, err)
		}
	}
	return nil
}

func (m Model) toModel() model.Model {
	out := model.Model{Name: m.Name, Dummies: make([]model.Dummy, len(m.Dummies))}
	for i, d := range m.Dummies {
		parent := -1
		if d.Parent != nil {
			parent = *d.Parent
		}
		out.Dummies[i] = model.Dummy{
			Name:     d.Name,
			Parent:   parent,
			Position: mathutil.Vec3(d.Position),
			Rotation: mathutil.Vec3{
				mathutil.Deg2Rad(d.Rotation[0]),
				mathutil.Deg2Rad(d.Rotation[1]),
				mathutil.Deg2Rad(d.Rotation[2]),
			},
		}
	}
	return out
}

func (b Block) spec() (world.BlockSpec, error) {
	kind, err := world.ParseKind(b.Kind)
	if err != nil {
		return world.BlockSpec{}, err
	}
	fwd, err := directionOr(b.Forward, mathutil.Forward)
	if err != nil {
		return world.BlockSpec{}, err
	}
	up, err := directionOr(b.Up, mathutil.Up)
	if err != nil {
		return world.BlockSpec{}, err
	}
	return world.BlockSpec{
		ID:       align.EntityID(b.ID),
		Name:     b.Name,
		Kind:     kind,
		Grid:     assembly.GridID(b.Grid),
		Model:    b.Model,
		Position: mathutil.Vec3(b.Position),
		Forward:  fwd,
		Up:       up,
	}, nil
}

func directionOr(s string, def mathutil.Direction) (mathutil.Direction, error) {
	if s == "" {
		return def, nil
	}
	return mathutil.ParseDirection(s)
}

func colorOf(c Color) color.RGBA { return color.RGBA(c) }
