// Package model describes block models by their named attachment points
// (dummies) and classifies connector ports from them.
package model

import (
	"strings"

	"connector-align/internal/mathutil"
)

const (
	connectorTag      = "connector"
	smallConnectorTag = "small_connector"
)

// Dummy is a named attachment point in model space.
// Parent indexes an earlier dummy in the same table, or -1 for the model root.
type Dummy struct {
	Name     string
	Parent   int
	Position mathutil.Vec3
	Rotation mathutil.Vec3 // Euler XYZ radians
}

// Model is a block model's attachment-point table.
type Model struct {
	Name    string
	Dummies []Dummy
}

// Class is the port classification derived from a dummy table.
type Class struct {
	Functional bool
	Small      bool
}

// Classify reports whether the dummies describe a mating port and its size.
// An empty table yields the zero Class.
func Classify(dummies []Dummy) Class {
	var c Class
	for _, d := range dummies {
		name := strings.ToLower(d.Name)
		if strings.Contains(name, connectorTag) {
			c.Functional = true
		}
		if strings.Contains(name, smallConnectorTag) {
			c.Small = true
		}
	}
	return c
}

// ConnectorDummy returns the index of the first dummy naming a connector.
func ConnectorDummy(dummies []Dummy) (int, bool) {
	for i, d := range dummies {
		if strings.Contains(strings.ToLower(d.Name), connectorTag) {
			return i, true
		}
	}
	return -1, false
}

// LocalTransforms returns the model-space pose of every dummy, chaining each
// through its parent. Out-of-order parents are treated as roots.
func LocalTransforms(dummies []Dummy) []mathutil.Transform {
	out := make([]mathutil.Transform, len(dummies))
	for i, d := range dummies {
		q := mathutil.EulerToQuat(d.Rotation[0], d.Rotation[1], d.Rotation[2])
		local := mathutil.Transform{
			Rotation:    mathutil.QuatToMat3(q).Transpose(),
			Translation: d.Position,
		}
		if d.Parent >= 0 && d.Parent < i {
			out[i] = mathutil.Compose(local, out[d.Parent])
		} else {
			out[i] = local
		}
	}
	return out
}

// FunctionalTransform returns the world pose of the connector dummy, or
// world itself when the model has none.
func FunctionalTransform(world mathutil.Transform, dummies []Dummy) mathutil.Transform {
	i, ok := ConnectorDummy(dummies)
	if !ok {
		return world
	}
	return mathutil.Compose(LocalTransforms(dummies[:i+1])[i], world)
}
