package mathutil

// Transform is a rigid pose: a row-layout orientation and a translation.
type Transform struct {
	Rotation    Mat3
	Translation Vec3
}

// TransformIdentity returns the pose at the origin with no rotation.
func TransformIdentity() Transform {
	return Transform{Rotation: Mat3Identity()}
}

// NewTransform builds a pose at position facing forward with the given up.
func NewTransform(position, forward, up Vec3) Transform {
	return Transform{Rotation: Mat3FromAxes(forward, up), Translation: position}
}

func (t Transform) Forward() Vec3  { return t.Rotation.Forward() }
func (t Transform) Backward() Vec3 { return t.Rotation.Backward() }
func (t Transform) Up() Vec3       { return t.Rotation.Up() }
func (t Transform) Right() Vec3    { return t.Rotation.Right() }

// PureRotation returns t with its translation zeroed.
func (t Transform) PureRotation() Transform {
	return Transform{Rotation: t.Rotation}
}

// Compose expresses local, given in parent's frame, in world space.
func Compose(local, parent Transform) Transform {
	return Transform{
		Rotation:    Mat3Mul(local.Rotation, parent.Rotation),
		Translation: VecMul(local.Translation, parent.Rotation).Add(parent.Translation),
	}
}

// ToWorld maps a point from t's local frame to world space.
func (t Transform) ToWorld(p Vec3) Vec3 {
	return VecMul(p, t.Rotation).Add(t.Translation)
}

// ToLocal maps a world point into t's local frame.
func (t Transform) ToLocal(p Vec3) Vec3 {
	return t.Rotation.MulVec3(p.Sub(t.Translation))
}
