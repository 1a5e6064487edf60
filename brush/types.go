// Package brush reconstructs convex polyhedral brushes from the compiled
// half-space representation in bspdata.Data (component J): clipping each
// side's base winding against every other side of its brush, validating
// the result, and assigning the stable index→ID mapping the VMF emitter
// needs.
package brush

import (
	"github.com/AlleyKatPr0/bspsrc/external"
	"github.com/AlleyKatPr0/bspsrc/geom"
	"github.com/AlleyKatPr0/bspsrc/winding"
)

// Source CONTENTS_ bits relevant to brush acceptance policy.
const (
	ContentsDetail     = 0x8000000
	ContentsAreaportal = 0x8000
	ContentsLadder     = 0x20000000
)

// Side is one emitted face of a reconstructed brush.
type Side struct {
	ID              int
	OrigSideIndex   int32
	PlaneNum        int32
	Winding         winding.Winding
	Normal          geom.Vec3
	TexInfo         int16
	UAxis           external.Axis
	VAxis           external.Axis
	SmoothingGroups uint32
}

// Solid is one reconstructed brush: the originating brush index plus the
// accepted sides that survived the clip/validate pipeline.
type Solid struct {
	ID         int
	BrushIndex int
	Sides      []Side
}

// Instance carries the per-model placement (model index > 0) applied to a
// brush's windings before emission.
type Instance struct {
	Origin geom.Vec3
	Angles geom.Vec3
}

// Policy controls which brush content types the caller wants skipped
// entirely rather than emitted.
type Policy struct {
	SkipDetail     bool
	SkipAreaportal bool
	SkipLadder     bool
}

func (p Policy) rejects(contents int32) bool {
	if p.SkipDetail && contents&ContentsDetail != 0 {
		return true
	}
	if p.SkipAreaportal && contents&ContentsAreaportal != 0 {
		return true
	}
	if p.SkipLadder && contents&ContentsLadder != 0 {
		return true
	}
	return false
}
