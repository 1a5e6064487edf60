package winding

import (
	"math"
	"testing"

	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/geom"
)

func TestBaseWindingContainment(t *testing.T) {
	// Property 4: for any plane with |n|=1 and |d| <= MAX_COORD, all four
	// vertices lie on the plane to within 1e-3.
	planes := []geom.Plane{
		{N: geom.Vec3{X: 1}, D: 100},
		{N: geom.Vec3{Y: 1}, D: -500},
		{N: geom.Vec3{X: 0.6, Y: 0.8}, D: 1234},
	}
	for _, p := range planes {
		w := BaseWindingForPlane(p, dialect.Generic)
		if len(w) != 4 {
			t.Fatalf("expected 4 vertices, got %d", len(w))
		}
		for _, v := range w {
			if d := math.Abs(p.Distance(v)); d > 1e-3 {
				t.Fatalf("vertex %v not on plane %+v, distance %v", v, p, d)
			}
		}
	}
}

func TestBaseWindingForAxisPlaneHasExpectedExtent(t *testing.T) {
	// Scenario 6: plane n=(1,0,0), d=100: four vertices with x=100,
	// |y|=|z|=MAX_LEN.
	p := geom.Plane{N: geom.Vec3{X: 1}, D: 100}
	w := BaseWindingForPlane(p, dialect.Generic)
	maxLen := MaxLen(dialect.Generic)
	for _, v := range w {
		if math.Abs(v.X-100) > 1e-6 {
			t.Fatalf("expected x=100, got %v", v.X)
		}
		if math.Abs(math.Abs(v.Y)-maxLen) > 1e-6 {
			t.Fatalf("expected |y|=%v, got %v", maxLen, v.Y)
		}
		if math.Abs(math.Abs(v.Z)-maxLen) > 1e-6 {
			t.Fatalf("expected |z|=%v, got %v", maxLen, v.Z)
		}
	}
}

func TestClipMonotonicity(t *testing.T) {
	// Property 5: repeated ClipPlane against the same half-space yields
	// the same winding from the second call onward.
	p := geom.Plane{N: geom.Vec3{X: 1}, D: 100}
	w := BaseWindingForPlane(p, dialect.Generic)
	clipPlane := geom.Plane{N: geom.Vec3{X: 1}, D: 0}

	first := ClipPlane(w, clipPlane, false)
	second := ClipPlane(first, clipPlane, false)
	third := ClipPlane(second, clipPlane, false)

	if len(first) != len(second) || len(second) != len(third) {
		t.Fatalf("winding size changed across repeated clips: %d, %d, %d", len(first), len(second), len(third))
	}
	for i := range second {
		if second[i] != third[i] {
			t.Fatalf("vertex %d changed between repeated clips: %v vs %v", i, second[i], third[i])
		}
	}
}

func unitCubePlanes() []geom.Plane {
	return []geom.Plane{
		{N: geom.Vec3{X: 1}, D: 8},
		{N: geom.Vec3{X: -1}, D: 8},
		{N: geom.Vec3{Y: 1}, D: 8},
		{N: geom.Vec3{Y: -1}, D: 8},
		{N: geom.Vec3{Z: 1}, D: 8},
		{N: geom.Vec3{Z: -1}, D: 8},
	}
}

func TestClipCubeProducesSixQuads(t *testing.T) {
	planes := unitCubePlanes()
	for i, p := range planes {
		w := BaseWindingForPlane(p, dialect.Generic)
		for j, other := range planes {
			if i == j {
				continue
			}
			w = ClipPlane(w, other.Flipped(), false)
		}
		w = RemoveDegenerated(w)
		if len(w) != 4 {
			t.Fatalf("side %d: expected 4 vertices after clipping a cube, got %d: %v", i, len(w), w)
		}
		if IsHuge(w, dialect.Generic) {
			t.Fatalf("side %d: clipped cube face reported huge", i)
		}
		for _, v := range w {
			if d := math.Abs(p.Distance(v)); d > 1e-6 {
				t.Fatalf("side %d vertex %v not on its own plane, distance %v", i, v, d)
			}
		}
	}
}

func TestIsHuge(t *testing.T) {
	small := Winding{{X: 10}, {X: 20}, {X: 30}}
	if IsHuge(small, dialect.Generic) {
		t.Fatal("small winding reported huge")
	}
	huge := Winding{{X: 1e6}, {X: 20}, {X: 30}}
	if !IsHuge(huge, dialect.Generic) {
		t.Fatal("huge winding not detected")
	}
}

func TestRemoveDegenerated(t *testing.T) {
	w := Winding{{X: 0}, {X: 0.00001}, {X: 1}, {X: 2}}
	out := RemoveDegenerated(w)
	if len(out) != 3 {
		t.Fatalf("expected duplicate collapsed, got %d vertices: %v", len(out), out)
	}
}

func TestBuildPlane(t *testing.T) {
	w := Winding{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0}}
	p0, p1, p2, ok := BuildPlane(w)
	if !ok {
		t.Fatal("expected a valid 3-point plane")
	}
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	if e1.Cross(e2).Length() <= DegenerateEpsilon {
		t.Fatal("BuildPlane returned collinear points")
	}
}

func TestBuildPlaneRejectsCollinear(t *testing.T) {
	w := Winding{{X: 0}, {X: 1}, {X: 2}}
	_, _, _, ok := BuildPlane(w)
	if ok {
		t.Fatal("expected collinear points to be rejected")
	}
}

func TestRotateTranslate(t *testing.T) {
	w := Winding{{X: 1}, {Y: 1}, {Z: 1}}
	translated := Translate(w, geom.Vec3{X: 5, Y: 5, Z: 5})
	if translated[0] != (geom.Vec3{X: 6, Y: 5, Z: 5}) {
		t.Fatalf("Translate = %v", translated[0])
	}
	rotated := Rotate(w, geom.Vec3{})
	for i := range w {
		if math.Abs(rotated[i].X-w[i].X) > 1e-9 {
			t.Fatalf("Rotate with zero angles changed vertex %d: %v vs %v", i, rotated[i], w[i])
		}
	}
}
