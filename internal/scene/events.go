package scene

import (
	"fmt"
	"strings"

	"connector-align/internal/align"
	"connector-align/internal/assembly"
	"connector-align/internal/mathutil"
	"connector-align/internal/world"
)

// Event actions.
const (
	ActionConnect    = "connect"
	ActionDisconnect = "disconnect"
	ActionLink       = "link"
	ActionUnlink     = "unlink"
	ActionMotion     = "motion"
	ActionPose       = "pose"
	ActionRemove     = "remove"
	ActionCustomData = "customData"
	ActionForeground = "foreground"
)

var actions = []string{
	ActionConnect, ActionDisconnect, ActionLink, ActionUnlink, ActionMotion,
	ActionPose, ActionRemove, ActionCustomData, ActionForeground,
}

// Event changes the world before the simulation tick it names. Which fields
// are read depends on the action.
type Event struct {
	Tick     int    `json:"tick" yaml:"tick"`
	Action   string `json:"action" yaml:"action"`
	Block    int64  `json:"block,omitempty" yaml:"block,omitempty"`
	Grid     int64  `json:"grid,omitempty" yaml:"grid,omitempty"`
	Other    int64  `json:"other,omitempty" yaml:"other,omitempty"`
	Position *Vec3  `json:"position,omitempty" yaml:"position,omitempty"`
	Forward  *Vec3  `json:"forward,omitempty" yaml:"forward,omitempty"`
	Up       *Vec3  `json:"up,omitempty" yaml:"up,omitempty"`
	Velocity *Vec3  `json:"velocity,omitempty" yaml:"velocity,omitempty"`
	Spin     *Vec3  `json:"spin,omitempty" yaml:"spin,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	Color    *Color `json:"color,omitempty" yaml:"color,omitempty"`
}

// normalizeAction returns the canonical spelling of an action name.
func normalizeAction(s string) (string, error) {
	for _, a := range actions {
		if strings.EqualFold(s, a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// EventsAt returns the events scheduled for tick, in file order.
func (f *File) EventsAt(tick int) []Event {
	var out []Event
	for _, e := range f.Events {
		if e.Tick == tick {
			out = append(out, e)
		}
	}
	return out
}

// LastEventTick returns the highest scheduled tick, or -1.
func (f *File) LastEventTick() int {
	last := -1
	for _, e := range f.Events {
		if e.Tick > last {
			last = e.Tick
		}
	}
	return last
}

// Apply performs the event on w.
func (e Event) Apply(w *world.World) error {
	action, err := normalizeAction(e.Action)
	if err != nil {
		return err
	}
	grid := assembly.GridID(e.Grid)
	other := assembly.GridID(e.Other)
	block := align.EntityID(e.Block)

	switch action {
	case ActionConnect:
		return w.Connect(block)
	case ActionDisconnect:
		w.Disconnect(block)
		return nil
	case ActionLink:
		return w.Link(grid, other)
	case ActionUnlink:
		return w.Unlink(grid, other)
	case ActionRemove:
		return w.RemoveGrid(grid)
	case ActionMotion:
		return w.SetGridMotion(grid, vecOr(e.Velocity, mathutil.Vec3{}), vecOr(e.Spin, mathutil.Vec3{}))
	case ActionPose:
		pose, ok := w.GridPose(grid)
		if !ok {
			return fmt.Errorf("grid %d: %w", e.Grid, world.ErrNotFound)
		}
		return w.SetGridPose(grid,
			vecOr(e.Position, pose.Translation),
			vecOr(e.Forward, pose.Forward()),
			vecOr(e.Up, pose.Up()))
	case ActionCustomData, ActionForeground:
		p, ok := w.Panel(block)
		if !ok {
			return fmt.Errorf("panel %d: %w", e.Block, world.ErrNotFound)
		}
		if action == ActionCustomData {
			p.SetCustomData(e.Text)
			return nil
		}
		if e.Color == nil {
			return fmt.Errorf("panel %d: foreground needs a color", e.Block)
		}
		p.SetForegroundColor(colorOf(*e.Color))
		return nil
	}
	return nil
}

func vecOr(v *Vec3, def mathutil.Vec3) mathutil.Vec3 {
	if v == nil {
		return def
	}
	return mathutil.Vec3(*v)
}
