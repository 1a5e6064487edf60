package brush

import (
	"context"
	"fmt"

	"github.com/AlleyKatPr0/bspsrc/bspdata"
	"github.com/AlleyKatPr0/bspsrc/bsperr"
	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/external"
	"github.com/AlleyKatPr0/bspsrc/geom"
	"github.com/AlleyKatPr0/bspsrc/observability"
	"github.com/AlleyKatPr0/bspsrc/recovery"
	"github.com/AlleyKatPr0/bspsrc/winding"
)

// Reconstructor holds the collaborators and per-run caches used to turn
// brush half-spaces back into polyhedra. The zero value is usable; caches
// are allocated lazily on first use.
type Reconstructor struct {
	Dialect     dialect.ID
	TextureAxis external.TextureAxisBuilder
	Smoothing   external.SmoothingGroupResolver
	Policy      Policy
	Strategy    recovery.Strategy
	Logger      observability.Logger

	windingByPlane map[int32]winding.Winding

	nextSolidID    int
	nextSideID     int
	brushIndexToID map[int]int
	sideIndexToID  map[int]int
}

func (rc *Reconstructor) logger() observability.Logger {
	if rc.Logger == nil {
		return observability.NopLogger{}
	}
	return rc.Logger
}

// baseWindingByPlane returns the huge base polygon for planeNum, building
// and caching it on first use. The cache is keyed by plane index, not by
// winding content, since distinct brush sides sharing a plane (common on
// grid-aligned geometry) would otherwise rebuild the same polygon.
func (rc *Reconstructor) baseWindingByPlane(data *bspdata.Data, planeNum int32) winding.Winding {
	if rc.windingByPlane == nil {
		rc.windingByPlane = make(map[int32]winding.Winding)
	}
	if w, ok := rc.windingByPlane[planeNum]; ok {
		return w
	}
	w := winding.BaseWindingForPlane(data.Planes[planeNum], rc.Dialect)
	rc.windingByPlane[planeNum] = w
	return w
}

type acceptedSide struct {
	sideIndex int32
	w         winding.Winding
	ds        bspdata.DBrushSide
}

// ReconstructBrush rebuilds the convex solid for data.Brushes[brushIndex]:
// every non-bevel side's base winding is clipped against the flipped plane
// of every other non-bevel side, degenerate results are dropped, and
// surviving sides are validated before being emitted. instance is nil for
// the world brush model and non-nil for brush entities, applying the
// model's placement to every winding.
//
// A brush referencing an out-of-range side or plane index is malformed and
// returns ErrMalformedBrush. A brush left with fewer than 3 valid sides
// after clipping, or one a Policy rejects (detail/areaportal/ladder), is
// not an error: both return (nil, warnings, nil) and are counted as
// neither emitted nor rejected by WriteBrushes.
func (rc *Reconstructor) ReconstructBrush(ctx context.Context, data *bspdata.Data, brushIndex int, instance *Instance) (*Solid, []bsperr.Warning, error) {
	if brushIndex < 0 || brushIndex >= len(data.Brushes) {
		return nil, nil, fmt.Errorf("%w: brush index %d out of range", bsperr.ErrMalformedBrush, brushIndex)
	}
	b := data.Brushes[brushIndex]
	var warnings []bsperr.Warning

	var accepted []acceptedSide
	for j := int32(0); j < b.NumSides; j++ {
		sideIdx := b.FirstSide + j
		if sideIdx < 0 || int(sideIdx) >= len(data.BrushSides) {
			return nil, warnings, fmt.Errorf("%w: brush %d references out-of-range side %d", bsperr.ErrMalformedBrush, brushIndex, sideIdx)
		}
		sj := data.BrushSides[sideIdx]
		if sj.Bevel {
			continue
		}
		if int(sj.PlaneNum) < 0 || int(sj.PlaneNum) >= len(data.Planes) {
			return nil, warnings, fmt.Errorf("%w: brush %d side %d references out-of-range plane %d", bsperr.ErrMalformedBrush, brushIndex, sideIdx, sj.PlaneNum)
		}

		w := rc.baseWindingByPlane(data, sj.PlaneNum)
		for m := int32(0); m < b.NumSides; m++ {
			if m == j {
				continue
			}
			otherIdx := b.FirstSide + m
			if otherIdx < 0 || int(otherIdx) >= len(data.BrushSides) {
				return nil, warnings, fmt.Errorf("%w: brush %d references out-of-range side %d", bsperr.ErrMalformedBrush, brushIndex, otherIdx)
			}
			so := data.BrushSides[otherIdx]
			if so.Bevel {
				continue
			}
			if int(so.PlaneNum) < 0 || int(so.PlaneNum) >= len(data.Planes) {
				continue
			}
			w = winding.ClipPlane(w, data.Planes[so.PlaneNum].Flipped(), false)
			if len(w) == 0 {
				break
			}
		}
		w = winding.RemoveDegenerated(w)

		reason := ""
		switch {
		case len(w) == 0:
			reason = "empty winding after clipping"
		case len(w) < 3:
			reason = "fewer than 3 vertices after clipping"
		case winding.IsHuge(w, rc.Dialect):
			reason = "winding exceeds dialect max coordinate"
		}
		var p0, p1, p2 geom.Vec3
		if reason == "" {
			var ok bool
			p0, p1, p2, ok = winding.BuildPlane(w)
			if !ok {
				reason = "fewer than 3 non-collinear plane points"
			}
		}
		if reason == "" && (!p0.IsValid() || !p1.IsValid() || !p2.IsValid()) {
			reason = "invalid plane point"
		}
		if reason != "" {
			warnings = append(warnings, rc.rejectSide(ctx, brushIndex, int(sideIdx), reason))
			continue
		}

		if instance != nil {
			w = winding.Rotate(w, instance.Angles)
			w = winding.Translate(w, instance.Origin)
		}
		accepted = append(accepted, acceptedSide{sideIndex: sideIdx, w: w, ds: sj})
	}

	if len(accepted) < 3 {
		w := bsperr.NewWarning("brush", "skipped brush with fewer than 3 valid sides", fmt.Sprintf("brush %d", brushIndex))
		rc.logger().Warn("brush skipped: fewer than 3 valid sides", observability.Int("brush", brushIndex))
		if rc.Strategy != nil {
			rc.Strategy.OnError(ctx, w, recovery.Location{Component: "brush", BrushIndex: brushIndex})
		}
		return nil, append(warnings, w), nil
	}

	if rc.Policy.rejects(b.Contents) {
		return nil, warnings, nil
	}

	solid := &Solid{BrushIndex: brushIndex}
	for _, a := range accepted {
		p0, p1, p2, _ := winding.BuildPlane(a.w)
		normal := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		plane := geom.Plane{N: normal, D: normal.Dot(p0)}

		var uAxis, vAxis external.Axis
		if rc.TextureAxis != nil {
			uAxis, vAxis = rc.TextureAxis.Build(a.ds, plane)
		}
		var sg uint32
		if rc.Smoothing != nil {
			sg = rc.Smoothing.Resolve(int(a.sideIndex))
		}
		solid.Sides = append(solid.Sides, Side{
			OrigSideIndex:   a.sideIndex,
			PlaneNum:        a.ds.PlaneNum,
			Winding:         a.w,
			Normal:          normal,
			TexInfo:         a.ds.TexInfo,
			UAxis:           uAxis,
			VAxis:           vAxis,
			SmoothingGroups: sg,
		})
	}
	return solid, warnings, nil
}

func (rc *Reconstructor) rejectSide(ctx context.Context, brushIndex, sideIndex int, reason string) bsperr.Warning {
	w := bsperr.NewWarning("brush", "side rejected", fmt.Sprintf("brush %d side %d: %s", brushIndex, sideIndex, reason))
	rc.logger().Warn("brush side rejected", observability.Int("brush", brushIndex), observability.Int("side", sideIndex), observability.String("reason", reason))
	if rc.Strategy != nil {
		rc.Strategy.OnError(ctx, w, recovery.Location{Component: "brush", BrushIndex: brushIndex, BrushSideIndex: sideIndex})
	}
	return w
}

// WriteBrushes reconstructs every brush in [first, first+count), assigns
// each accepted Solid and Side a process-stable, strictly increasing ID
// (recorded in the index->ID maps for later lookup), and emits it through
// emitter if non-nil. It reports how many brushes were emitted and how
// many were rejected as malformed (an out-of-range side/plane reference);
// policy-skipped brushes and brushes left with fewer than 3 valid sides
// count as neither.
func (rc *Reconstructor) WriteBrushes(ctx context.Context, data *bspdata.Data, first, count int32, instance *Instance, emitter VMFEmitter) (emitted, rejected int, warnings []bsperr.Warning, err error) {
	if rc.brushIndexToID == nil {
		rc.brushIndexToID = make(map[int]int)
	}
	if rc.sideIndexToID == nil {
		rc.sideIndexToID = make(map[int]int)
	}

	for i := int32(0); i < count; i++ {
		brushIndex := int(first + i)
		solid, warns, e := rc.ReconstructBrush(ctx, data, brushIndex, instance)
		warnings = append(warnings, warns...)
		if e != nil {
			rejected++
			rc.logger().Warn("brush rejected", observability.Int("brush", brushIndex), observability.Error("err", e))
			if rc.Strategy != nil && rc.Strategy.OnError(ctx, e, recovery.Location{Component: "brush", BrushIndex: brushIndex}) == recovery.ActionFail {
				return emitted, rejected, warnings, e
			}
			continue
		}
		if solid == nil {
			continue
		}

		rc.nextSolidID++
		solid.ID = rc.nextSolidID
		rc.brushIndexToID[brushIndex] = solid.ID
		for si := range solid.Sides {
			rc.nextSideID++
			solid.Sides[si].ID = rc.nextSideID
			rc.sideIndexToID[int(solid.Sides[si].OrigSideIndex)] = solid.Sides[si].ID
		}

		if emitter != nil {
			if e := emitter.EmitSolid(solid); e != nil {
				return emitted, rejected, warnings, fmt.Errorf("%w: emit solid for brush %d: %v", bsperr.ErrIoFailure, brushIndex, e)
			}
		}
		emitted++
	}
	return emitted, rejected, warnings, nil
}

// SolidID looks up the VMF solid ID assigned to brushIndex by a prior
// WriteBrushes call, reporting false if that brush was never emitted.
func (rc *Reconstructor) SolidID(brushIndex int) (int, bool) {
	id, ok := rc.brushIndexToID[brushIndex]
	return id, ok
}

// SideID looks up the VMF side ID assigned to a brush-side index by a
// prior WriteBrushes call, reporting false if that side was never emitted.
func (rc *Reconstructor) SideID(sideIndex int) (int, bool) {
	id, ok := rc.sideIndexToID[sideIndex]
	return id, ok
}
