package mathutil

import "math"

// RotX returns a 3×3 rotation matrix around the X axis. Angle in radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotY returns a 3×3 rotation matrix around the Y axis.
func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// RotZ returns a 3×3 rotation matrix around the Z axis.
func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// AxisAngle returns the row-layout rotation by angle (radians, right-handed)
// about a world axis. It is the transpose of RotX/RotY/RotZ for the cardinal
// axes: VecMul(v, AxisAngle(a, t)) rotates v, and Mat3Mul(o, AxisAngle(a, t))
// rotates every axis of orientation o.
func AxisAngle(axis Vec3, angle float64) Mat3 {
	a := axis.Normalize()
	x, y, z := a[0], a[1], a[2]
	c, s := math.Cos(angle), math.Sin(angle)
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	return Mat3{
		xx + c*(1-xx), xy - c*xy + s*z, xz - c*xz - s*y,
		xy - c*xy - s*z, yy + c*(1-yy), yz - c*yz + s*x,
		xz - c*xz + s*y, yz - c*yz - s*x, zz + c*(1-zz),
	}
}

// EulerXYZ decomposes m, read as Rx·Ry·Rz, into angles in radians
// (X = pitch axis, Y = yaw axis, Z = roll axis). The second result is false
// on the gimbal-lock branch, where Z is folded into X and reported as zero.
func EulerXYZ(m Mat3) (Vec3, bool) {
	m11, m12, m13 := m[0], m[1], m[2]
	m21, m22, m23 := m[3], m[4], m[5]
	m33 := m[8]

	switch {
	case m13 <= -1:
		return Vec3{-math.Atan2(m21, m22), -math.Pi / 2, 0}, false
	case m13 >= 1:
		return Vec3{math.Atan2(m21, m22), math.Pi / 2, 0}, false
	}
	return Vec3{
		math.Atan2(-m23, m33),
		math.Asin(m13),
		math.Atan2(-m12, m11),
	}, true
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}

// Vec3Rad2Deg converts each component from radians to degrees.
func Vec3Rad2Deg(v Vec3) Vec3 {
	return Vec3{Rad2Deg(v[0]), Rad2Deg(v[1]), Rad2Deg(v[2])}
}
