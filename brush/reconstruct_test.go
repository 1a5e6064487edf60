package brush

import (
	"context"
	"errors"
	"testing"

	"github.com/AlleyKatPr0/bspsrc/bspdata"
	"github.com/AlleyKatPr0/bspsrc/bsperr"
	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/geom"
)

// cubeData builds the six axis-aligned planes of a 2x2x2 cube centered on
// the origin, each contributing one non-bevel brush side.
func cubeData(contents int32) *bspdata.Data {
	planes := []geom.Plane{
		{N: geom.Vec3{X: 1}, D: 1},
		{N: geom.Vec3{X: -1}, D: 1},
		{N: geom.Vec3{Y: 1}, D: 1},
		{N: geom.Vec3{Y: -1}, D: 1},
		{N: geom.Vec3{Z: 1}, D: 1},
		{N: geom.Vec3{Z: -1}, D: 1},
	}
	sides := make([]bspdata.DBrushSide, len(planes))
	for i := range planes {
		sides[i] = bspdata.DBrushSide{PlaneNum: int32(i), TexInfo: -1}
	}
	return &bspdata.Data{
		Planes: planes,
		Brushes: []bspdata.DBrush{
			{FirstSide: 0, NumSides: int32(len(sides)), Contents: contents},
		},
		BrushSides: sides,
	}
}

func TestReconstructBrushCube(t *testing.T) {
	data := cubeData(0x1)
	rc := &Reconstructor{Dialect: dialect.Generic}

	solid, warnings, err := rc.ReconstructBrush(context.Background(), data, 0, nil)
	if err != nil {
		t.Fatalf("ReconstructBrush: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if len(solid.Sides) != 6 {
		t.Fatalf("len(Sides) = %d, want 6", len(solid.Sides))
	}
	for _, s := range solid.Sides {
		if len(s.Winding) != 4 {
			t.Errorf("side plane %d: len(Winding) = %d, want 4", s.PlaneNum, len(s.Winding))
		}
		for _, v := range s.Winding {
			if (v.X != 1 && v.X != -1) && (v.Y != 1 && v.Y != -1) && (v.Z != 1 && v.Z != -1) {
				t.Errorf("vertex %v not on cube surface", v)
			}
		}
	}
}

func TestReconstructBrushAppliesInstanceTransform(t *testing.T) {
	data := cubeData(0x1)
	rc := &Reconstructor{Dialect: dialect.Generic}
	inst := &Instance{Origin: geom.Vec3{X: 100, Y: 0, Z: 0}}

	solid, _, err := rc.ReconstructBrush(context.Background(), data, 0, inst)
	if err != nil {
		t.Fatalf("ReconstructBrush: %v", err)
	}
	for _, s := range solid.Sides {
		for _, v := range s.Winding {
			if v.X < 99 {
				t.Fatalf("vertex %v not translated by instance origin", v)
			}
		}
	}
}

func TestReconstructBrushSkipsBevelSides(t *testing.T) {
	data := cubeData(0x1)
	data.BrushSides = append(data.BrushSides, bspdata.DBrushSide{PlaneNum: 0, Bevel: true})
	data.Brushes[0].NumSides++

	rc := &Reconstructor{Dialect: dialect.Generic}
	solid, _, err := rc.ReconstructBrush(context.Background(), data, 0, nil)
	if err != nil {
		t.Fatalf("ReconstructBrush: %v", err)
	}
	if len(solid.Sides) != 6 {
		t.Fatalf("len(Sides) = %d, want 6 (bevel side excluded)", len(solid.Sides))
	}
}

func TestReconstructBrushTooFewSidesIsSkippedNotMalformed(t *testing.T) {
	data := &bspdata.Data{
		Planes: []geom.Plane{
			{N: geom.Vec3{X: 1}, D: 1},
			{N: geom.Vec3{X: -1}, D: 1},
		},
		Brushes: []bspdata.DBrush{{FirstSide: 0, NumSides: 2}},
		BrushSides: []bspdata.DBrushSide{
			{PlaneNum: 0}, {PlaneNum: 1},
		},
	}
	rc := &Reconstructor{Dialect: dialect.Generic}
	solid, warnings, err := rc.ReconstructBrush(context.Background(), data, 0, nil)
	if err != nil {
		t.Fatalf("err = %v, want nil (fewer than 3 valid sides is a Warning, not ErrMalformedBrush)", err)
	}
	if solid != nil {
		t.Fatalf("solid = %+v, want nil", solid)
	}
	if len(warnings) == 0 {
		t.Fatal("want at least one warning for the skipped brush")
	}
}

func TestReconstructBrushOutOfRangeIndex(t *testing.T) {
	rc := &Reconstructor{Dialect: dialect.Generic}
	_, _, err := rc.ReconstructBrush(context.Background(), &bspdata.Data{}, 0, nil)
	if !errors.Is(err, bsperr.ErrMalformedBrush) {
		t.Fatalf("err = %v, want ErrMalformedBrush", err)
	}
}

func TestReconstructBrushPolicySkipsDetail(t *testing.T) {
	data := cubeData(ContentsDetail)
	rc := &Reconstructor{Dialect: dialect.Generic, Policy: Policy{SkipDetail: true}}
	solid, _, err := rc.ReconstructBrush(context.Background(), data, 0, nil)
	if err != nil {
		t.Fatalf("ReconstructBrush: %v", err)
	}
	if solid != nil {
		t.Fatalf("solid = %+v, want nil (policy-skipped)", solid)
	}
}

func TestWriteBrushesAssignsStableIDs(t *testing.T) {
	data := cubeData(0x1)
	data.Brushes = append(data.Brushes, data.Brushes[0])

	rc := &Reconstructor{Dialect: dialect.Generic}
	emitted, rejected, _, err := rc.WriteBrushes(context.Background(), data, 0, 2, nil, NopEmitter{})
	if err != nil {
		t.Fatalf("WriteBrushes: %v", err)
	}
	if emitted != 2 || rejected != 0 {
		t.Fatalf("emitted=%d rejected=%d, want 2,0", emitted, rejected)
	}
	id0, ok := rc.SolidID(0)
	if !ok || id0 != 1 {
		t.Fatalf("SolidID(0) = (%d,%v), want (1,true)", id0, ok)
	}
	id1, ok := rc.SolidID(1)
	if !ok || id1 != 2 {
		t.Fatalf("SolidID(1) = (%d,%v), want (2,true)", id1, ok)
	}
	if _, ok := rc.SolidID(5); ok {
		t.Fatal("SolidID(5) should not exist")
	}
}

func TestWriteBrushesCountsRejects(t *testing.T) {
	good := cubeData(0x1)
	// References a side index past the end of BrushSides: a genuine
	// malformed brush, distinct from the merely-skipped <3-sides case.
	bad := bspdata.DBrush{FirstSide: 0, NumSides: 99}
	data := &bspdata.Data{
		Planes:     good.Planes,
		BrushSides: good.BrushSides,
		Brushes:    []bspdata.DBrush{good.Brushes[0], bad},
	}
	rc := &Reconstructor{Dialect: dialect.Generic}
	emitted, rejected, _, err := rc.WriteBrushes(context.Background(), data, 0, 2, nil, nil)
	if err != nil {
		t.Fatalf("WriteBrushes: %v", err)
	}
	if emitted != 1 || rejected != 1 {
		t.Fatalf("emitted=%d rejected=%d, want 1,1", emitted, rejected)
	}
}

func TestWriteBrushesSkipsTooFewSidesWithoutCountingEither(t *testing.T) {
	data := &bspdata.Data{
		Planes: []geom.Plane{
			{N: geom.Vec3{X: 1}, D: 1},
			{N: geom.Vec3{X: -1}, D: 1},
		},
		Brushes: []bspdata.DBrush{{FirstSide: 0, NumSides: 2}},
		BrushSides: []bspdata.DBrushSide{
			{PlaneNum: 0}, {PlaneNum: 1},
		},
	}
	rc := &Reconstructor{Dialect: dialect.Generic}
	emitted, rejected, warnings, err := rc.WriteBrushes(context.Background(), data, 0, 1, nil, nil)
	if err != nil {
		t.Fatalf("WriteBrushes: %v", err)
	}
	if emitted != 0 || rejected != 0 {
		t.Fatalf("emitted=%d rejected=%d, want 0,0 (skipped, not rejected)", emitted, rejected)
	}
	if len(warnings) == 0 {
		t.Fatal("want at least one warning for the skipped brush")
	}
}
