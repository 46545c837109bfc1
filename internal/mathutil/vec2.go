package mathutil

// Vec2 is a 2-component vector used for screen-space layout.
type Vec2 [2]float64

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a[0] + b[0], a[1] + b[1]} }

func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a[0] - b[0], a[1] - b[1]} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v[0] * s, v[1] * s} }

// Mul multiplies component-wise.
func (a Vec2) Mul(b Vec2) Vec2 { return Vec2{a[0] * b[0], a[1] * b[1]} }

// Min returns the smaller component.
func (v Vec2) Min() float64 {
	if v[0] < v[1] {
		return v[0]
	}
	return v[1]
}
