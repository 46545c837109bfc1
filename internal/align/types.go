// Package align selects a docking pair of connector ports and computes the
// offsets a pilot must close to mate them.
//
// Frame conventions are those of mathutil: orientations are row-layout
// (right, up, backward), forward is -Z, and rotations compose as
// Mat3Mul(first, then). Euler angles are XYZ order with X the pitch axis,
// Y the yaw axis and Z the roll axis. The resolver works in radians and
// reports degrees; rounding happens only at presentation.
package align

import (
	"connector-align/internal/assembly"
	"connector-align/internal/mathutil"
	"connector-align/internal/model"
)

// EntityID identifies an entity in the host world.
type EntityID int64

// Status is a connector's mating state as reported by the host.
type Status uint8

const (
	StatusOther Status = iota
	StatusConnectable
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnectable:
		return "connectable"
	case StatusConnected:
		return "connected"
	}
	return "other"
}

// Connector is a connector block as seen during one evaluation.
type Connector struct {
	ID      EntityID
	Name    string
	Grid    assembly.GridID
	World   mathutil.Transform
	Dummies []model.Dummy
	Status  Status
	// GridVelocity is the linear velocity of the connector's grid.
	GridVelocity mathutil.Vec3
}

// Class classifies the connector from its model dummies.
func (c Connector) Class() model.Class { return model.Classify(c.Dummies) }

// Position is the entity origin.
func (c Connector) Position() mathutil.Vec3 { return c.World.Translation }

// Entity is a spatial query hit. Connector is nil for entities that cannot
// act as connectors.
type Entity struct {
	ID        EntityID
	Position  mathutil.Vec3
	Connector *Connector
}

// Finder answers spatial queries against the host's entity index.
type Finder interface {
	EntitiesInSphere(s mathutil.Sphere) []Entity
}

// Pair is the selected home and target connector.
type Pair struct {
	Home     Connector
	Target   Connector
	Distance float64
}

// Offsets holds the four vectors shown on the display. Position values are
// distances; rotation values are degrees.
type Offsets struct {
	Position      mathutil.Vec3
	Rotation      mathutil.Vec3
	PanelPosition mathutil.Vec3
	PanelRotation mathutil.Vec3
}
