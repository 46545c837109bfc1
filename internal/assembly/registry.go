package assembly

import (
	"sort"
	"sync"
)

type subscriber struct {
	id  SubscriptionID
	obs Observer
}

type slot struct {
	gen   uint32
	live  bool
	grids map[GridID]struct{}
	// subs survive release: the host keeps observers on the pooled object
	// until they unsubscribe themselves.
	subs []subscriber
}

type eventKind uint8

const (
	evAdded eventKind = iota
	evRemoved
	evReleased
)

type event struct {
	kind  eventKind
	group GroupID
	grid  GridID
	other GroupID
}

// Registry is an in-memory grouping service. Grids joined by links form a
// group; linking merges groups and unlinking splits them. Observers are
// called after the registry lock is released, so they may query and
// (un)subscribe from inside a callback.
type Registry struct {
	mu      sync.Mutex
	slots   []slot
	free    []uint32
	groupOf map[GridID]GroupID
	links   map[GridID]map[GridID]int
	nextSub SubscriptionID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		groupOf: make(map[GridID]GroupID),
		links:   make(map[GridID]map[GridID]int),
	}
}

// AddGrid puts grid into a fresh single-member group.
func (r *Registry) AddGrid(grid GridID) GroupID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groupOf[grid]; ok {
		return g
	}
	g := r.alloc()
	r.slots[g.Index].grids[grid] = struct{}{}
	r.groupOf[grid] = g
	return g
}

// RemoveGrid drops grid and all of its links.
func (r *Registry) RemoveGrid(grid GridID) {
	r.mu.Lock()
	g, ok := r.groupOf[grid]
	if !ok {
		r.mu.Unlock()
		return
	}
	var events []event
	for other := range r.links[grid] {
		delete(r.links[other], grid)
	}
	delete(r.links, grid)

	delete(r.slots[g.Index].grids, grid)
	delete(r.groupOf, grid)
	events = append(events, event{kind: evRemoved, group: g, grid: grid})
	events = r.splitLocked(g, events)
	events = r.releaseIfEmptyLocked(g, events)
	r.mu.Unlock()

	r.dispatch(events)
}

// Link joins a and b mechanically. Links are counted, so two links between
// the same pair need two Unlink calls.
func (r *Registry) Link(a, b GridID) {
	r.AddGrid(a)
	r.AddGrid(b)

	r.mu.Lock()
	r.addEdge(a, b)
	r.addEdge(b, a)
	ga, gb := r.groupOf[a], r.groupOf[b]
	var events []event
	if ga != gb {
		// Merge the smaller group into the larger one.
		from, to := gb, ga
		if len(r.slots[ga.Index].grids) < len(r.slots[gb.Index].grids) {
			from, to = ga, gb
		}
		for _, grid := range sortedGrids(r.slots[from.Index].grids) {
			events = r.moveLocked(grid, from, to, events)
		}
		events = r.releaseIfEmptyLocked(from, events)
	}
	r.mu.Unlock()

	r.dispatch(events)
}

// Unlink removes one link between a and b, splitting their group when it
// was the last path between them.
func (r *Registry) Unlink(a, b GridID) {
	r.mu.Lock()
	if r.links[a][b] == 0 {
		r.mu.Unlock()
		return
	}
	r.dropEdge(a, b)
	r.dropEdge(b, a)
	events := r.splitLocked(r.groupOf[a], nil)
	r.mu.Unlock()

	r.dispatch(events)
}

// Linked reports whether a and b share at least one direct link.
func (r *Registry) Linked(a, b GridID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[a][b] > 0
}

// GroupOf implements Service.
func (r *Registry) GroupOf(grid GridID) (GroupID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groupOf[grid]
	return g, ok
}

// Grids implements Service. The result is sorted.
func (r *Registry) Grids(group GroupID) []GridID {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.liveSlot(group)
	if !ok {
		return nil
	}
	return sortedGrids(s.grids)
}

// Subscribe implements Service.
func (r *Registry) Subscribe(group GroupID, o Observer) (SubscriptionID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.liveSlot(group)
	if !ok {
		return 0, ErrUnknownGroup
	}
	r.nextSub++
	s.subs = append(s.subs, subscriber{id: r.nextSub, obs: o})
	return r.nextSub, nil
}

// Unsubscribe implements Service. It addresses the pooled slot by index, so
// a registration made before the slot was recycled can still be removed.
func (r *Registry) Unsubscribe(group GroupID, id SubscriptionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(group.Index) >= len(r.slots) {
		return
	}
	s := &r.slots[group.Index]
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of registrations on group's slot.
func (r *Registry) Subscribers(group GroupID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(group.Index) >= len(r.slots) {
		return 0
	}
	return len(r.slots[group.Index].subs)
}

func (r *Registry) liveSlot(g GroupID) (*slot, bool) {
	if int(g.Index) >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[g.Index]
	if !s.live || s.gen != g.Gen {
		return nil, false
	}
	return s, true
}

func (r *Registry) alloc() GroupID {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}
	s := &r.slots[idx]
	s.gen++
	s.live = true
	s.grids = make(map[GridID]struct{})
	return GroupID{Index: idx, Gen: s.gen}
}

func (r *Registry) addEdge(a, b GridID) {
	if r.links[a] == nil {
		r.links[a] = make(map[GridID]int)
	}
	r.links[a][b]++
}

func (r *Registry) dropEdge(a, b GridID) {
	if r.links[a][b] <= 1 {
		delete(r.links[a], b)
		return
	}
	r.links[a][b]--
}

func (r *Registry) moveLocked(grid GridID, from, to GroupID, events []event) []event {
	delete(r.slots[from.Index].grids, grid)
	r.slots[to.Index].grids[grid] = struct{}{}
	r.groupOf[grid] = to
	return append(events,
		event{kind: evRemoved, group: from, grid: grid, other: to},
		event{kind: evAdded, group: to, grid: grid, other: from},
	)
}

func (r *Registry) releaseIfEmptyLocked(g GroupID, events []event) []event {
	s := &r.slots[g.Index]
	if !s.live || s.gen != g.Gen || len(s.grids) > 0 {
		return events
	}
	s.live = false
	s.grids = nil
	r.free = append(r.free, g.Index)
	return append(events, event{kind: evReleased, group: g})
}

// splitLocked recomputes the connected components of group g. The largest
// component keeps g; every other component moves to a new group.
func (r *Registry) splitLocked(g GroupID, events []event) []event {
	s, ok := r.liveSlot(g)
	if !ok || len(s.grids) < 2 {
		return events
	}
	var comps [][]GridID
	seen := make(map[GridID]bool, len(s.grids))
	for _, start := range sortedGrids(s.grids) {
		if seen[start] {
			continue
		}
		comp := []GridID{start}
		seen[start] = true
		for i := 0; i < len(comp); i++ {
			for next := range r.links[comp[i]] {
				if !seen[next] {
					seen[next] = true
					comp = append(comp, next)
				}
			}
		}
		sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
		comps = append(comps, comp)
	}
	if len(comps) < 2 {
		return events
	}
	sort.SliceStable(comps, func(i, j int) bool { return len(comps[i]) > len(comps[j]) })
	for _, comp := range comps[1:] {
		ng := r.alloc()
		for _, grid := range comp {
			events = r.moveLocked(grid, g, ng, events)
		}
	}
	return events
}

func (r *Registry) dispatch(events []event) {
	for _, ev := range events {
		r.mu.Lock()
		var subs []subscriber
		if int(ev.group.Index) < len(r.slots) {
			subs = append(subs, r.slots[ev.group.Index].subs...)
		}
		r.mu.Unlock()

		for _, sub := range subs {
			switch ev.kind {
			case evAdded:
				sub.obs.GridAdded(ev.group, ev.grid, ev.other)
			case evRemoved:
				sub.obs.GridRemoved(ev.group, ev.grid, ev.other)
			case evReleased:
				sub.obs.Released(ev.group)
			}
		}
	}
}

func sortedGrids(set map[GridID]struct{}) []GridID {
	out := make([]GridID, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
