// Package sim steps a scene's world and runs every panel's HUD on a fixed
// cadence, collecting the frames for preview output.
package sim

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"connector-align/internal/assembly"
	"connector-align/internal/hud"
	"connector-align/internal/logging"
	"connector-align/internal/preview"
	"connector-align/internal/scene"
	"connector-align/internal/world"
)

// Config sets the session length and cadence.
type Config struct {
	Ticks       int
	TickSeconds float64
	// RunEvery is the number of ticks between HUD runs.
	RunEvery int
	HUD      hud.Options
	// Record keeps every frame for preview output.
	Record bool
}

// Display is one panel with its HUD.
type Display struct {
	Name  string
	Panel *world.Panel
	App   *hud.App

	last    hud.Readout
	seen    bool
	removed bool
}

// Removed reports whether the panel has left the world. A removed display
// is closed and no longer runs.
func (d *Display) Removed() bool { return d.removed }

// Session owns the HUDs of one world.
type Session struct {
	world    *world.World
	scene    *scene.File
	cfg      Config
	log      logging.Logger
	displays []*Display
}

// New creates a HUD for every panel in w. f supplies timed events and may be
// nil.
func New(w *world.World, f *scene.File, cfg Config, log logging.Logger) *Session {
	log = logging.OrNop(log)
	if cfg.RunEvery <= 0 {
		cfg.RunEvery = 10
	}
	if cfg.TickSeconds <= 0 {
		cfg.TickSeconds = 1.0 / 60
	}
	s := &Session{world: w, scene: f, cfg: cfg, log: log}
	for _, p := range w.Panels() {
		tracker := assembly.NewTracker(w.Registry(), p.Grid(), log)
		s.displays = append(s.displays, &Display{
			Name:  DisplayName(p.Name(), int64(p.ID())),
			Panel: p,
			App:   hud.New(p, w, tracker, cfg.HUD, log),
		})
	}
	return s
}

// Displays returns the session's displays in panel order.
func (s *Session) Displays() []*Display { return s.displays }

// Run applies each tick's events, runs the HUDs on the cadence and steps the
// world. It stops early when ctx is cancelled or an event fails.
func (s *Session) Run(ctx context.Context) ([]preview.Job, error) {
	var jobs []preview.Job
	for i := 0; i < s.cfg.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			return jobs, err
		}
		tick := s.world.Tick()
		if s.scene != nil {
			if err := s.scene.ApplyEvents(s.world, tick); err != nil {
				return jobs, err
			}
		}
		for _, d := range s.displays {
			s.retire(d, tick)
		}
		if tick%s.cfg.RunEvery == 0 {
			for _, d := range s.displays {
				if d.removed {
					continue
				}
				f := d.App.Run(ctx)
				s.report(d, tick, f.Readout)
				if s.cfg.Record {
					jobs = append(jobs, preview.Job{Display: d.Name, Tick: tick, Frame: f})
				}
			}
		}
		s.world.Step(s.cfg.TickSeconds)
	}
	return jobs, nil
}

// Close releases every HUD.
func (s *Session) Close() {
	for _, d := range s.displays {
		d.App.Close()
	}
}

// retire closes d once its panel is gone from the world.
func (s *Session) retire(d *Display, tick int) {
	if d.removed {
		return
	}
	if _, ok := s.world.Panel(d.Panel.ID()); ok {
		return
	}
	d.removed = true
	d.App.Close()
	s.log.Info("panel removed", "display", d.Name, "tick", tick)
}

func (s *Session) report(d *Display, tick int, r hud.Readout) {
	if d.seen && sameReadout(d.last, r) {
		return
	}
	d.last, d.seen = r, true
	if !r.Paired {
		s.log.Info("no connector pair", "display", d.Name, "tick", tick)
		return
	}
	s.log.Info("readout",
		"display", d.Name,
		"tick", tick,
		"home", oneLine(r.HomeLabel),
		"target", oneLine(r.TargetLabel),
		"position", oneLine(r.Position),
		"pitch", r.Pitch,
		"yaw", r.Yaw,
		"roll", r.Roll,
		"speed", r.Speed,
		"status", r.Status,
	)
}

func sameReadout(a, b hud.Readout) bool {
	return a.Paired == b.Paired &&
		a.HomeLabel == b.HomeLabel &&
		a.TargetLabel == b.TargetLabel &&
		a.Position == b.Position &&
		a.Pitch == b.Pitch &&
		a.Yaw == b.Yaw &&
		a.Roll == b.Roll &&
		a.Speed == b.Speed &&
		a.Status == b.Status
}

func oneLine(s string) string { return strings.ReplaceAll(s, "\n", " ") }

// DisplayName builds a file-safe display name from a panel name and id.
func DisplayName(name string, id int64) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
		} else if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return fmt.Sprintf("panel-%d", id)
	}
	return fmt.Sprintf("%s-%d", slug, id)
}
