// Package external declares the collaborator interfaces the core consumes
// but does not implement: entity key-value decoding, texture axis
// construction, smoothing-group resolution, and the decoders/extractors a
// full decompiler wires in around this core. None of these are called by
// anything outside brush reconstruction and bspfile load; they exist so a
// caller can plug in a real implementation without this core depending on
// one.
package external

import (
	"github.com/AlleyKatPr0/bspsrc/bspdata"
	"github.com/AlleyKatPr0/bspsrc/geom"
)

// KeyValue is one decoded entity property.
type KeyValue struct {
	Key   string
	Value string
}

// EntityDecoder turns the raw entity lump text into key-value pairs per
// entity. The core never parses entity text itself: brush emission only
// needs a model's origin/angles, which arrive through bspdata.ModelHead and
// the caller-supplied Instance, not through entity decoding.
type EntityDecoder interface {
	Decode(raw []byte) ([]KeyValue, error)
}

// Axis is a VMF texture axis: a plane-space direction, an offset, and a
// scale, matching the "[x y z offset] scale" VMF representation.
type Axis struct {
	Normal geom.Vec3
	Offset float64
	Scale  float64
}

// TextureAxisBuilder computes the U/V texture axes for one brush side.
// This core has no notion of texture alignment; it only recomputes
// geometry, so axis construction is always delegated here.
type TextureAxisBuilder interface {
	Build(side bspdata.DBrushSide, plane geom.Plane) (uAxis, vAxis Axis)
}

// SmoothingGroupResolver looks up the smoothing-group bitmask for an
// emitted brush side, keyed by its original brush-side index.
type SmoothingGroupResolver interface {
	Resolve(brushSideIndex int) uint32
}

// DisplacementDecoder decodes a DispInfo entry plus its displacement
// vertex/alpha lumps into a editable displacement description. Not called
// by this core: brush reconstruction treats displacement-flagged faces
// like any other face; forward seam for a full decompiler.
type DisplacementDecoder interface {
	Decode(dispInfoIndex int) (interface{}, error)
}

// OverlayDecoder decodes the Overlays lump into placeable overlay
// descriptions. Forward seam, not called by this core.
type OverlayDecoder interface {
	Decode(raw []byte) (interface{}, error)
}

// PakfileExtractor extracts the embedded zip archive out of LUMP_PAKFILE.
// Forward seam, not called by this core.
type PakfileExtractor interface {
	Extract(raw []byte) (map[string][]byte, error)
}

// ProtectionDetector flags known map-protection / obfuscation signatures
// (e.g. degenerate entity lumps, garbage texture names) so a caller can
// warn the user before attempting a full decompile. Forward seam, not
// called by this core.
type ProtectionDetector interface {
	Detect(data *bspdata.Data) (bool, string)
}
