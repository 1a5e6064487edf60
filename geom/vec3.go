// Package geom provides immutable 3D/4D vector and plane algebra: the
// foundation the winding engine clips against. Values, not pointers: every
// operation returns a new Vec3/Vec4/Plane rather than mutating in place.
package geom

import "math"

// Vec3 is an immutable 3-component float64 vector.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scalar multiplies every component by s.
func (v Vec3) Scalar(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// ScalarVec multiplies component-wise by o.
func (v Vec3) ScalarVec(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length; the zero vector normalizes to
// itself rather than producing NaN.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scalar(1 / l)
}

func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{math.Min(v.X, o.X), math.Min(v.Y, o.Y), math.Min(v.Z, o.Z)}
}

func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{math.Max(v.X, o.X), math.Max(v.Y, o.Y), math.Max(v.Z, o.Z)}
}

// Snap rounds each component to the nearest multiple of grid. grid <= 0 is
// a no-op (nothing to snap to).
func (v Vec3) Snap(grid float64) Vec3 {
	if grid <= 0 {
		return v
	}
	return Vec3{
		math.Round(v.X/grid) * grid,
		math.Round(v.Y/grid) * grid,
		math.Round(v.Z/grid) * grid,
	}
}

// IsValid rejects NaN and infinite components.
func (v Vec3) IsValid() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Translate returns v + offset; kept distinct from Add for call-site clarity
// at winding/brush transform sites that read "rotate then translate".
func (v Vec3) Translate(offset Vec3) Vec3 { return v.Add(offset) }

// Rotate applies a Source-style QAngle (pitch, yaw, roll in degrees, stored
// as X, Y, Z respectively) to v, matching the reference compiler's
// AngleVectors basis construction: forward, left (the negated right
// vector) and up are the columns of the rotation.
func (v Vec3) Rotate(angles Vec3) Vec3 {
	forward, right, up := anglesToBasis(angles)
	return Vec3{
		v.X*forward.X - v.Y*right.X + v.Z*up.X,
		v.X*forward.Y - v.Y*right.Y + v.Z*up.Y,
		v.X*forward.Z - v.Y*right.Z + v.Z*up.Z,
	}
}

func anglesToBasis(angles Vec3) (forward, right, up Vec3) {
	const deg2rad = math.Pi / 180

	sp, cp := math.Sincos(angles.X * deg2rad)
	sy, cy := math.Sincos(angles.Y * deg2rad)
	sr, cr := math.Sincos(angles.Z * deg2rad)

	forward = Vec3{cp * cy, cp * sy, -sp}
	right = Vec3{
		-sr*sp*cy + -cr*-sy,
		-sr*sp*sy + -cr*cy,
		-sr * cp,
	}
	up = Vec3{
		cr*sp*cy + -sr*-sy,
		cr*sp*sy + -sr*cy,
		cr * cp,
	}
	return forward, right, up
}
