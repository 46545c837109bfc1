package mathutil

import (
	"fmt"
	"math"
	"strings"
)

// Direction is one of the six axis-aligned block directions.
type Direction uint8

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

var directionNames = [...]string{"forward", "backward", "left", "right", "up", "down"}

// Vector returns the unit vector of d in the row-layout convention
// (forward is -Z, up is +Y, right is +X).
func (d Direction) Vector() Vec3 {
	switch d {
	case Forward:
		return Vec3{0, 0, -1}
	case Backward:
		return Vec3{0, 0, 1}
	case Left:
		return Vec3{-1, 0, 0}
	case Right:
		return Vec3{1, 0, 0}
	case Up:
		return Vec3{0, 1, 0}
	case Down:
		return Vec3{0, -1, 0}
	}
	return Vec3{}
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", d)
}

// ParseDirection maps a direction name (case-insensitive) to its value.
func ParseDirection(s string) (Direction, error) {
	for i, n := range directionNames {
		if strings.EqualFold(s, n) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("mathutil: unknown direction %q", s)
}

// BlockOrientation returns the orientation of a block whose forward and up
// face the given grid directions. Parallel directions are rejected.
func BlockOrientation(forward, up Direction) (Mat3, error) {
	f, u := forward.Vector(), up.Vector()
	if f.Cross(u).LenSq() < 0.5 {
		return Mat3Identity(), fmt.Errorf("mathutil: forward %s and up %s are not perpendicular", forward, up)
	}
	return Mat3FromAxes(f, u), nil
}

// AngleDist returns the shortest angular distance between two angles in degrees (0–180).
func AngleDist(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d < 0 {
		d += 360
	}
	if d > 180 {
		return 360 - d
	}
	return d
}

// AngleBetween returns the angle between two directions in degrees.
func AngleBetween(a, b Vec3) float64 {
	c := a.Normalize().Dot(b.Normalize())
	c = math.Max(-1, math.Min(1, c))
	return Rad2Deg(math.Acos(c))
}
