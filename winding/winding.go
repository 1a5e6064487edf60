// Package winding implements the polygon-clipping core of the brush
// reconstructor: building a huge base polygon for a plane and clipping it
// down, face by face, against every other plane of a brush.
package winding

import (
	"math"

	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/geom"
)

// OnEpsilon is the tolerance used to classify a vertex as lying on a
// clipping plane rather than strictly in front of or behind it.
const OnEpsilon = 0.1

// DegenerateEpsilon is the tolerance used by RemoveDegenerated to treat two
// consecutive vertices as the same point.
const DegenerateEpsilon = 1e-3

// Winding is an ordered, convex, planar polygon. The zero value is an
// empty (invalid) winding.
type Winding []geom.Vec3

// MaxLen returns ceil(sqrt(3) * MaxCoord) for d, the half-extent of the
// base polygon built for any plane under that dialect.
func MaxLen(d dialect.ID) float64 {
	return math.Ceil(math.Sqrt(3) * d.MaxCoord())
}

// BaseWindingForPlane builds a huge square, centered on the plane's
// closest point to the origin, large enough that clipping it against every
// side of any brush in a map of this size can only shrink it.
func BaseWindingForPlane(p geom.Plane, d dialect.ID) Winding {
	org := p.N.Scalar(p.D)

	ax, ay, az := math.Abs(p.N.X), math.Abs(p.N.Y), math.Abs(p.N.Z)
	var up geom.Vec3
	if ax >= ay && ax >= az || ay >= ax && ay >= az {
		up = geom.Vec3{Z: 1}
	} else {
		up = geom.Vec3{X: 1}
	}
	up = up.Sub(p.N.Scalar(up.Dot(p.N))).Normalize()
	right := up.Cross(p.N)

	maxLen := MaxLen(d)
	up = up.Scalar(maxLen)
	right = right.Scalar(maxLen)

	return Winding{
		org.Sub(right).Add(up),
		org.Add(right).Add(up),
		org.Add(right).Sub(up),
		org.Sub(right).Sub(up),
	}
}

// vertexClass is the Sutherland-Hodgman classification of a vertex against
// the clipping plane.
type vertexClass int

const (
	classFront vertexClass = iota
	classOn
	classBack
)

func classify(dist float64) vertexClass {
	switch {
	case dist > OnEpsilon:
		return classFront
	case dist < -OnEpsilon:
		return classBack
	default:
		return classOn
	}
}

// ClipPlane clips w against p, keeping the front (and, if keepOn, the
// on-plane) portion and discarding the back. Returns an empty Winding if
// nothing survives.
func ClipPlane(w Winding, p geom.Plane, keepOn bool) Winding {
	n := len(w)
	if n == 0 {
		return nil
	}
	dists := make([]float64, n)
	classes := make([]vertexClass, n)
	for i, v := range w {
		dists[i] = p.Distance(v)
		classes[i] = classify(dists[i])
	}

	out := make(Winding, 0, n+4)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		ci, cj := classes[i], classes[j]
		vi, vj := w[i], w[j]

		switch ci {
		case classFront:
			out = append(out, vi)
		case classOn:
			if keepOn {
				out = append(out, vi)
			}
		case classBack:
			// dropped
		}

		if (ci == classFront && cj == classBack) || (ci == classBack && cj == classFront) {
			di, dj := dists[i], dists[j]
			t := di / (di - dj)
			out = append(out, vi.Add(vj.Sub(vi).Scalar(t)))
		}
	}
	return out
}

// IsHuge reports whether any component of any vertex exceeds the
// dialect's MaxCoord, a sign that clipping failed to bound the polygon.
func IsHuge(w Winding, d dialect.ID) bool {
	max := d.MaxCoord()
	for _, v := range w {
		if math.Abs(v.X) > max || math.Abs(v.Y) > max || math.Abs(v.Z) > max {
			return true
		}
	}
	return false
}

// RemoveDegenerated drops any vertex equal, within DegenerateEpsilon, to
// its immediate predecessor (including the wraparound edge).
func RemoveDegenerated(w Winding) Winding {
	if len(w) < 2 {
		return w
	}
	out := make(Winding, 0, len(w))
	for i, v := range w {
		prev := w[(i-1+len(w))%len(w)]
		if i == 0 {
			out = append(out, v)
			continue
		}
		if closeEnough(v, prev) {
			continue
		}
		out = append(out, v)
	}
	// Drop a final vertex that collapses onto the (possibly now-shorter)
	// first vertex after the loop above.
	for len(out) > 1 && closeEnough(out[len(out)-1], out[0]) {
		out = out[:len(out)-1]
	}
	return out
}

func closeEnough(a, b geom.Vec3) bool {
	return a.Sub(b).Length() <= DegenerateEpsilon
}

// BuildPlane returns the first three non-collinear vertices of w, in
// order, for recomputing a face's plane/normal. Returns false if fewer
// than 3 non-collinear points exist.
func BuildPlane(w Winding) (p0, p1, p2 geom.Vec3, ok bool) {
	if len(w) < 3 {
		return p0, p1, p2, false
	}
	p0 = w[0]
	for i := 1; i < len(w)-1; i++ {
		p1 = w[i]
		for j := i + 1; j < len(w); j++ {
			p2 = w[j]
			e1 := p1.Sub(p0)
			e2 := p2.Sub(p0)
			if e1.Cross(e2).Length() > DegenerateEpsilon {
				return p0, p1, p2, true
			}
		}
	}
	return p0, p1, p2, false
}

// Rotate applies a Source QAngle rotation to every vertex.
func Rotate(w Winding, angles geom.Vec3) Winding {
	out := make(Winding, len(w))
	for i, v := range w {
		out[i] = v.Rotate(angles)
	}
	return out
}

// Translate offsets every vertex by offset.
func Translate(w Winding, offset geom.Vec3) Winding {
	out := make(Winding, len(w))
	for i, v := range w {
		out[i] = v.Translate(offset)
	}
	return out
}
