package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestVec3Basics(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Fatalf("Add = %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Fatalf("Sub = %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Fatalf("Dot = %v, want 32", got)
	}
	cross := Vec3{1, 0, 0}.Cross(Vec3{0, 1, 0})
	if cross != (Vec3{0, 0, 1}) {
		t.Fatalf("Cross = %v, want (0,0,1)", cross)
	}
}

func TestNormalizeUnitLength(t *testing.T) {
	v := Vec3{3, 4, 0}.Normalize()
	if !almostEqual(v.Length(), 1, 1e-9) {
		t.Fatalf("Length() = %v, want 1", v.Length())
	}
	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Fatalf("normalizing the zero vector should stay zero, got %v", zero)
	}
}

func TestIsValidRejectsNaNAndInf(t *testing.T) {
	if (Vec3{math.NaN(), 0, 0}).IsValid() {
		t.Fatal("NaN component should be invalid")
	}
	if (Vec3{math.Inf(1), 0, 0}).IsValid() {
		t.Fatal("+Inf component should be invalid")
	}
	if !(Vec3{1, 2, 3}).IsValid() {
		t.Fatal("finite vector should be valid")
	}
}

func TestSnapToGrid(t *testing.T) {
	v := Vec3{7.4, -3.1, 0.49}.Snap(1)
	if v != (Vec3{7, -3, 0}) {
		t.Fatalf("Snap(1) = %v", v)
	}
}

func TestRotateIdentityAngles(t *testing.T) {
	v := Vec3{10, 20, 30}
	got := v.Rotate(Vec3{0, 0, 0})
	if !almostEqual(got.X, v.X, 1e-9) || !almostEqual(got.Y, v.Y, 1e-9) || !almostEqual(got.Z, v.Z, 1e-9) {
		t.Fatalf("Rotate with zero angles = %v, want %v", got, v)
	}
}

func TestRotatePreservesLength(t *testing.T) {
	v := Vec3{12, -4, 7}
	got := v.Rotate(Vec3{15, 90, -30})
	if !almostEqual(got.Length(), v.Length(), 1e-6) {
		t.Fatalf("rotation changed length: %v vs %v", got.Length(), v.Length())
	}
}

func TestPlaneDistanceAndFlip(t *testing.T) {
	p := Plane{N: Vec3{1, 0, 0}, D: 10}
	if d := p.Distance(Vec3{15, 0, 0}); !almostEqual(d, 5, 1e-9) {
		t.Fatalf("Distance = %v, want 5", d)
	}
	flipped := p.Flipped()
	if flipped.N != (Vec3{-1, 0, 0}) || flipped.D != -10 {
		t.Fatalf("Flipped() = %+v", flipped)
	}
}
