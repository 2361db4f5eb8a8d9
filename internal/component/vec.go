package component

import "math"

// Vec3 is a position or extent in level space.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(f float32) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Lerp returns v + (o-v)*f.
func (v Vec3) Lerp(o Vec3, f float32) Vec3 {
	return v.Add(o.Sub(v).Scale(f))
}

// Abs returns the component-wise absolute value.
func (v Vec3) Abs() Vec3 {
	return Vec3{abs32(v.X), abs32(v.Y), abs32(v.Z)}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
