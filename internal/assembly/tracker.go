package assembly

import (
	"sort"
	"sync"

	"connector-align/internal/logging"
)

// Tracker keeps the membership of the assembly that contains a main grid,
// following it across merges and splits. Create it with NewTracker and
// release it with Close.
type Tracker struct {
	svc  Service
	main GridID
	log  logging.Logger

	mu       sync.Mutex
	current  *binding
	bindings map[*binding]struct{}
	grids    map[GridID]struct{}
	closed   bool
}

// binding is one subscription. It remembers the group it was made for so a
// callback delivered through a recycled group can be recognised.
type binding struct {
	t     *Tracker
	group GroupID
	id    SubscriptionID
}

// NewTracker loads the main grid's group and subscribes to it.
func NewTracker(svc Service, main GridID, log logging.Logger) *Tracker {
	t := &Tracker{
		svc:      svc,
		main:     main,
		log:      logging.OrNop(log),
		bindings: make(map[*binding]struct{}),
	}
	t.mu.Lock()
	t.refreshLocked()
	t.mu.Unlock()
	return t
}

// Main returns the grid the tracker follows.
func (t *Tracker) Main() GridID { return t.main }

// Contains reports whether grid is in the tracked assembly.
func (t *Tracker) Contains(grid GridID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.grids[grid]
	return ok
}

// Grids returns the tracked membership, sorted.
func (t *Tracker) Grids() []GridID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]GridID, 0, len(t.grids))
	for g := range t.grids {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Group returns the group currently subscribed to, if any.
func (t *Tracker) Group() (GroupID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return GroupID{}, false
	}
	return t.current.group, true
}

// Close releases every subscription. Calling it again does nothing.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for b := range t.bindings {
		t.dropLocked(b)
	}
	t.current = nil
}

// refreshLocked re-queries membership from the main grid's group and
// subscribes to it.
func (t *Tracker) refreshLocked() {
	t.grids = map[GridID]struct{}{t.main: {}}
	t.current = nil

	group, ok := t.svc.GroupOf(t.main)
	if !ok {
		t.log.Warn("main grid has no group", "grid", t.main)
		return
	}
	for _, g := range t.svc.Grids(group) {
		t.grids[g] = struct{}{}
	}
	b := &binding{t: t, group: group}
	id, err := t.svc.Subscribe(group, b)
	if err != nil {
		t.log.Warn("subscribe failed", "group", group, "error", err)
		return
	}
	b.id = id
	t.bindings[b] = struct{}{}
	t.current = b
}

func (t *Tracker) dropLocked(b *binding) {
	if _, ok := t.bindings[b]; !ok {
		return
	}
	delete(t.bindings, b)
	t.svc.Unsubscribe(b.group, b.id)
	if t.current == b {
		t.current = nil
	}
}

// acceptLocked reports whether a callback on b for group should be applied.
// Callbacks for a group other than the one b was made for, or on a binding
// that is no longer current, drop the binding and are ignored.
func (t *Tracker) acceptLocked(b *binding, group GroupID) bool {
	if t.closed {
		return false
	}
	if group != b.group || t.current != b {
		t.log.Debug("stale group notification", "bound", b.group, "group", group)
		t.dropLocked(b)
		return false
	}
	return true
}

func (b *binding) GridAdded(group GroupID, grid GridID, _ GroupID) {
	t := b.t
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.acceptLocked(b, group) {
		return
	}
	t.grids[grid] = struct{}{}
}

func (b *binding) GridRemoved(group GroupID, grid GridID, next GroupID) {
	t := b.t
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.acceptLocked(b, group) {
		return
	}
	if grid != t.main {
		delete(t.grids, grid)
		return
	}
	t.log.Debug("main grid changed group", "from", group, "to", next)
	t.dropLocked(b)
	t.refreshLocked()
}

func (b *binding) Released(group GroupID) {
	t := b.t
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropLocked(b)
}
