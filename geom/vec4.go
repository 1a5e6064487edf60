package geom

import "math"

// Vec4 is an immutable 4-component float64 vector, used for texture axes
// and other homogeneous quantities the rest of the core treats opaquely.
type Vec4 struct {
	X, Y, Z, W float64
}

func (v Vec4) Add(o Vec4) Vec4 { return Vec4{v.X + o.X, v.Y + o.Y, v.Z + o.Z, v.W + o.W} }
func (v Vec4) Sub(o Vec4) Vec4 { return Vec4{v.X - o.X, v.Y - o.Y, v.Z - o.Z, v.W - o.W} }

func (v Vec4) Scalar(s float64) Vec4 { return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s} }

func (v Vec4) Dot(o Vec4) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z + v.W*o.W }

func (v Vec4) Length() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec4) Normalize() Vec4 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scalar(1 / l)
}

func (v Vec4) Min(o Vec4) Vec4 {
	return Vec4{math.Min(v.X, o.X), math.Min(v.Y, o.Y), math.Min(v.Z, o.Z), math.Min(v.W, o.W)}
}

func (v Vec4) Max(o Vec4) Vec4 {
	return Vec4{math.Max(v.X, o.X), math.Max(v.Y, o.Y), math.Max(v.Z, o.Z), math.Max(v.W, o.W)}
}

func (v Vec4) IsValid() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z) && isFinite(v.W)
}

// XYZ drops the W component, e.g. to go from a texture axis to a plain
// direction vector.
func (v Vec4) XYZ() Vec3 { return Vec3{v.X, v.Y, v.Z} }
