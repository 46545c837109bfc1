package mathutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func randomRotation(rng *rand.Rand) Mat3 {
	axis := Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
	return AxisAngle(axis, rng.Float64()*2*math.Pi)
}

func TestMat3FromAxesIdentity(t *testing.T) {
	m := Mat3FromAxes(Vec3{0, 0, -1}, Vec3{0, 1, 0})
	assert.True(t, m.ApproxEqual(Mat3Identity(), tol), "got %v", m)
	assert.True(t, m.Forward().ApproxEqual(Vec3{0, 0, -1}, tol))
}

func TestMat3FromAxesRightHanded(t *testing.T) {
	m := Mat3FromAxes(Vec3{1, 0, 0}, Vec3{0, 0, 1})
	assert.True(t, m.Forward().ApproxEqual(Vec3{1, 0, 0}, tol))
	assert.True(t, m.Up().ApproxEqual(Vec3{0, 0, 1}, tol))
	assert.True(t, m.Right().ApproxEqual(m.Forward().Cross(m.Up()), tol))
	assert.InDelta(t, 1, m.Det(), tol)
}

func TestAxisAngleRotatesRowVectors(t *testing.T) {
	// +90° about +Z takes +X to +Y.
	got := VecMul(Vec3{1, 0, 0}, AxisAngle(Vec3{0, 0, 1}, math.Pi/2))
	assert.True(t, got.ApproxEqual(Vec3{0, 1, 0}, tol), "got %v", got)

	assert.True(t, AxisAngle(Vec3{1, 0, 0}, 0.3).ApproxEqual(RotX(0.3).Transpose(), tol))
	assert.True(t, AxisAngle(Vec3{0, 1, 0}, 0.3).ApproxEqual(RotY(0.3).Transpose(), tol))
	assert.True(t, AxisAngle(Vec3{0, 0, 1}, 0.3).ApproxEqual(RotZ(0.3).Transpose(), tol))
}

func TestAxisAngleOrthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		m := randomRotation(rng)
		assert.True(t, Mat3Mul(m, m.Transpose()).ApproxEqual(Mat3Identity(), 1e-9))
		assert.InDelta(t, 1, m.Det(), 1e-9)
		assert.True(t, m.Inverse().ApproxEqual(m.Transpose(), 1e-9))
	}
}

func TestEulerXYZRoundTrip(t *testing.T) {
	cases := []Vec3{
		{0, 0, 0},
		{0.1, 0.2, 0.3},
		{-0.7, 0.4, 2.5},
		{1.2, -1.1, -3.0},
	}
	for _, want := range cases {
		m := Mat3Mul(Mat3Mul(RotX(want[0]), RotY(want[1])), RotZ(want[2]))
		got, ok := EulerXYZ(m)
		require.True(t, ok)
		assert.True(t, got.ApproxEqual(want, 1e-9), "want %v got %v", want, got)
	}
}

func TestEulerXYZGimbalLock(t *testing.T) {
	m := Mat3Mul(Mat3Mul(RotX(0.3), RotY(math.Pi/2)), RotZ(0.2))
	// Force the exact branch the decomposition special-cases.
	m[2] = 1
	got, ok := EulerXYZ(m)
	assert.False(t, ok)
	assert.InDelta(t, math.Pi/2, got[1], tol)
	assert.Equal(t, 0.0, got[2])
	assert.False(t, math.IsNaN(got[0]))
}

func TestQuatFromMat3(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		m := randomRotation(rng)
		q := QuatFromMat3(m)
		assert.True(t, QuatToMat3(q).ApproxEqual(m.Transpose(), 1e-9))

		v := Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
		assert.True(t, q.Rotate(v).ApproxEqual(VecMul(v, m), 1e-9))
		assert.True(t, q.Conjugate().Rotate(v).ApproxEqual(m.MulVec3(v), 1e-9))
	}
}

func TestTransformRoundTrip(t *testing.T) {
	parent := NewTransform(Vec3{10, -2, 4}, Vec3{1, 0, 0}, Vec3{0, 0, 1})
	local := Transform{Rotation: AxisAngle(Vec3{0, 1, 0}, math.Pi/2), Translation: Vec3{0, 0, -1.5}}
	world := Compose(local, parent)

	// local forward offset of 1.5 lands 1.5 along the parent's forward.
	assert.True(t, world.Translation.ApproxEqual(Vec3{11.5, -2, 4}, tol), "got %v", world.Translation)

	p := Vec3{3, 4, 5}
	assert.True(t, parent.ToLocal(parent.ToWorld(p)).ApproxEqual(p, tol))
	assert.Equal(t, Vec3{}, parent.PureRotation().Translation)
}

func TestOrientedBoxContains(t *testing.T) {
	rot := Mat3FromAxes(Vec3{1, 0, 0}, Vec3{0, 0, 1})
	box := NewOrientedBox(Vec3{20, 0, 0}, Vec3{20, 20, 20}, rot)

	assert.True(t, box.Contains(Vec3{20, 0, 0}))
	assert.True(t, box.Contains(Vec3{40, 20, -20}))
	assert.True(t, box.Contains(Vec3{0, 0, 0}))
	assert.False(t, box.Contains(Vec3{-0.1, 0, 0}))
	assert.False(t, box.Contains(Vec3{-25, 0, 0}))
	assert.False(t, box.Contains(Vec3{20, 0, 20.5}))

	tilted := NewOrientedBox(Vec3{}, Vec3{1, 1, 10}, AxisAngle(Vec3{0, 1, 0}, math.Pi/2))
	assert.True(t, tilted.Contains(Vec3{9, 0, 0}))
	assert.False(t, tilted.Contains(Vec3{0, 0, 9}))
}

func TestSphereContains(t *testing.T) {
	s := Sphere{Center: Vec3{1, 1, 1}, Radius: 2}
	assert.True(t, s.Contains(Vec3{3, 1, 1}))
	assert.False(t, s.Contains(Vec3{3.01, 1, 1}))
}

func TestBlockOrientation(t *testing.T) {
	m, err := BlockOrientation(Up, Backward)
	require.NoError(t, err)
	assert.True(t, m.Forward().ApproxEqual(Vec3{0, 1, 0}, tol))
	assert.True(t, m.Up().ApproxEqual(Vec3{0, 0, 1}, tol))

	_, err = BlockOrientation(Up, Down)
	assert.Error(t, err)

	d, err := ParseDirection("LEFT")
	require.NoError(t, err)
	assert.Equal(t, Left, d)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestAngleDist(t *testing.T) {
	assert.InDelta(t, 20, AngleDist(350, 10), tol)
	assert.InDelta(t, 180, AngleDist(0, 180), tol)
	assert.InDelta(t, 180, AngleBetween(Vec3{1, 0, 0}, Vec3{-2, 0, 0}), 1e-6)
}
