package align

import (
	"math"

	"connector-align/internal/mathutil"
	"connector-align/internal/model"
)

// Resolve computes the offsets of target relative to home, in home's
// connector frame and in the panel's frame.
func Resolve(home, target Connector, panel mathutil.Transform) Offsets {
	homeFn := model.FunctionalTransform(home.World, home.Dummies)
	targetFn := model.FunctionalTransform(target.World, target.Dummies)

	g := home.World.Rotation
	t := target.World.Rotation
	l := panel.Rotation

	var out Offsets
	out.Position = g.MulVec3(targetFn.Translation.Sub(homeFn.Translation))
	out.PanelPosition = l.MulVec3(target.Position().Sub(home.Position()))

	// Mated ports face each other: turn the target half a revolution about
	// its own up before comparing.
	flipped := mathutil.Mat3Mul(t, mathutil.AxisAngle(t.Up(), math.Pi))
	rel := relative(flipped, g)
	raw, _ := mathutil.EulerXYZ(rel)

	// Quarter turns about home's forward axis move only the roll angle, so
	// the snapped roll lands in range whatever the pitch and yaw.
	steps := RollSnapSteps(mathutil.Rad2Deg(raw[2]))
	final, _ := mathutil.EulerXYZ(mathutil.Mat3Mul(rel, mathutil.RotZ(float64(steps)*math.Pi/2)))

	out.Rotation = mathutil.Vec3Rad2Deg(final)
	out.PanelRotation = mathutil.VecMul(out.Rotation, mathutil.Mat3Mul(g, l.Transpose()))
	return out
}

// RollSnapSteps returns how many quarter turns about the home connector's
// forward axis bring rawRollDeg into (-45, 45]. Exact half-way values round
// toward the positive end of the range.
func RollSnapSteps(rawRollDeg float64) int {
	return -int(math.Ceil(rawRollDeg/90 - 0.5))
}

// relative returns target expressed against home (target × home⁻¹).
func relative(target, home mathutil.Mat3) mathutil.Mat3 {
	return mathutil.Mat3Mul(target, home.Transpose())
}
