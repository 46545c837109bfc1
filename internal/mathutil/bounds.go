package mathutil

// Sphere is a ball given by centre and radius.
type Sphere struct {
	Center Vec3
	Radius float64
}

// Contains reports whether p lies inside or on the sphere.
func (s Sphere) Contains(p Vec3) bool {
	return p.Sub(s.Center).LenSq() <= s.Radius*s.Radius
}

// OrientedBox is a box with per-axis half extents along its own axes.
type OrientedBox struct {
	Center      Vec3
	HalfExtent  Vec3
	Orientation Quat
}

// NewOrientedBox orients a box like the row-layout rotation rot.
func NewOrientedBox(center, halfExtent Vec3, rot Mat3) OrientedBox {
	return OrientedBox{Center: center, HalfExtent: halfExtent, Orientation: QuatFromMat3(rot)}
}

// Contains reports whether p lies inside or on the box.
func (b OrientedBox) Contains(p Vec3) bool {
	local := b.Orientation.Conjugate().Rotate(p.Sub(b.Center))
	const eps = 1e-9
	for i := 0; i < 3; i++ {
		if local[i] > b.HalfExtent[i]+eps || local[i] < -b.HalfExtent[i]-eps {
			return false
		}
	}
	return true
}
