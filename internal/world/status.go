package world

import (
	"fmt"
	"math"

	"connector-align/internal/align"
	"connector-align/internal/mathutil"
	"connector-align/internal/model"
)

// Connect locks a connectable connector to its partner.
func (w *World) Connect(id align.EntityID) error {
	b, ok := w.blocks[id]
	if !ok || b.kind != KindConnector {
		return fmt.Errorf("world: connector %d: %w", id, ErrNotFound)
	}
	if _, ok := w.connected[id]; ok {
		return nil
	}
	partner, ok := w.partnerOf(b)
	if !ok {
		return fmt.Errorf("world: connector %d is not connectable", id)
	}
	w.connected[id] = partner.id
	w.connected[partner.id] = id
	w.log.Info("connectors locked", "connector", id, "partner", partner.id)
	w.refreshStatus()
	return nil
}

// Disconnect releases a locked connector. Unlocked connectors are ignored.
func (w *World) Disconnect(id align.EntityID) {
	other, ok := w.connected[id]
	if !ok {
		return
	}
	delete(w.connected, id)
	delete(w.connected, other)
	w.refreshStatus()
}

// refreshStatus derives every connector's status from the current geometry.
// Locked pairs that drift out of the connectable bound unlock, and free pairs
// inside the lock bound lock on their own.
func (w *World) refreshStatus() {
	for _, id := range w.sortedBlockIDs() {
		b := w.blocks[id]
		if b.kind != KindConnector {
			continue
		}
		if other, ok := w.connected[id]; ok {
			if ob, exists := w.blocks[other]; exists && w.mateable(b, ob) {
				b.status = align.StatusConnected
				continue
			}
			delete(w.connected, id)
			delete(w.connected, other)
			w.log.Info("connectors unlocked", "connector", id, "partner", other)
		}
		partner, ok := w.partnerOf(b)
		switch {
		case !ok:
			b.status = align.StatusOther
		case w.lockable(b, partner):
			w.connected[id] = partner.id
			w.connected[partner.id] = id
			b.status = align.StatusConnected
			partner.status = align.StatusConnected
			w.log.Info("connectors locked", "connector", id, "partner", partner.id, "auto", true)
		default:
			b.status = align.StatusConnectable
		}
	}
}

// partnerOf returns the nearest free port b could mate with.
func (w *World) partnerOf(b *block) (*block, bool) {
	var best *block
	bestDist := math.Inf(1)
	for _, id := range w.sortedBlockIDs() {
		o := w.blocks[id]
		if o.kind != KindConnector {
			continue
		}
		if _, locked := w.connected[o.id]; locked {
			continue
		}
		m, ok := w.measure(b, o)
		if !ok || m.dist > w.mate.Distance || m.angle > w.mate.AngleDeg {
			continue
		}
		if m.dist < bestDist {
			best, bestDist = o, m.dist
		}
	}
	return best, best != nil
}

// mateable reports whether two ports are within the connectable bound.
func (w *World) mateable(a, b *block) bool {
	m, ok := w.measure(a, b)
	return ok && m.dist <= w.mate.Distance && m.angle <= w.mate.AngleDeg
}

// lockable reports whether two ports are within the lock bound.
func (w *World) lockable(a, b *block) bool {
	m, ok := w.measure(a, b)
	return ok && m.dist <= w.mate.LockDistance && m.angle <= w.mate.LockAngleDeg
}

type mateGap struct {
	dist  float64
	angle float64 // degrees away from facing head-on
}

// measure returns the gap between two functional ports of the same size on
// different grids.
func (w *World) measure(a, b *block) (mateGap, bool) {
	if a.id == b.id || a.grid == b.grid {
		return mateGap{}, false
	}
	ac, bc := model.Classify(a.dummies), model.Classify(b.dummies)
	if !ac.Functional || !bc.Functional || ac.Small != bc.Small {
		return mateGap{}, false
	}
	fa := model.FunctionalTransform(w.blockWorld(a), a.dummies)
	fb := model.FunctionalTransform(w.blockWorld(b), b.dummies)
	facing := mathutil.AngleBetween(fa.Forward(), fb.Forward())
	return mateGap{
		dist:  fa.Translation.Dist(fb.Translation),
		angle: mathutil.AngleDist(facing, 180),
	}, true
}
