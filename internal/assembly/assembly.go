// Package assembly tracks which grids are mechanically joined into one
// assembly. Groups are arena handles: a released group is recycled with a
// new generation, so a stale handle never equals the group that reuses it.
package assembly

import (
	"errors"
	"fmt"
)

// GridID identifies a rigid body.
type GridID int64

// GroupID is an arena handle. The zero value names no group.
type GroupID struct {
	Index uint32
	Gen   uint32
}

// Valid reports whether g refers to some (possibly released) group.
func (g GroupID) Valid() bool { return g.Gen != 0 }

func (g GroupID) String() string { return fmt.Sprintf("group#%d.%d", g.Index, g.Gen) }

// SubscriptionID identifies one observer registration.
type SubscriptionID uint64

// ErrUnknownGroup is returned for handles that are not live.
var ErrUnknownGroup = errors.New("assembly: unknown group")

// Observer receives membership notifications for the group it subscribed to.
// Notifications may arrive outside the regular tick cadence.
type Observer interface {
	// GridAdded: grid joined group, coming from prev (zero when new).
	GridAdded(group GroupID, grid GridID, prev GroupID)
	// GridRemoved: grid left group, moving to next (zero when removed).
	GridRemoved(group GroupID, grid GridID, next GroupID)
	// Released: group is empty and will be returned to the pool.
	Released(group GroupID)
}

// Service is the structural grouping query exposed by the host.
type Service interface {
	GroupOf(grid GridID) (GroupID, bool)
	Grids(group GroupID) []GridID
	Subscribe(group GroupID, o Observer) (SubscriptionID, error)
	// Unsubscribe removes a registration. Unknown ids are ignored.
	Unsubscribe(group GroupID, id SubscriptionID)
}
