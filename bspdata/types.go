// Package bspdata derives the read-only per-lump tables the brush
// reconstructor walks: vertices, edges, the surface-edge indirection table,
// planes, brushes, brush sides, models, original faces, and texinfo.
package bspdata

import "github.com/AlleyKatPr0/bspsrc/geom"

// DBrush is one compiled brush: the half-open range [FirstSide, FirstSide+
// NumSides) of BrushSides belonging to it, plus its compile-time content
// flags.
type DBrush struct {
	FirstSide int32
	NumSides  int32
	Contents  int32
}

// DBrushSide references one plane of a brush. Bevel sides bound the
// clipping hull but never themselves contribute a face.
type DBrushSide struct {
	PlaneNum int32
	TexInfo  int16
	DispInfo int16
	Bevel    bool
}

// DBrushModel is the derived (FirstBrush, NumBrush) range covering every
// brush reachable from a model's head node, computed by bsptree.BrushRange.
type DBrushModel struct {
	FirstBrush int32
	NumBrush   int32
}

// OrigFace is the subset of the original-faces lump the reconstructor
// needs: which plane the face lies on, which side of it, and its texinfo.
type OrigFace struct {
	PlaneNum int32
	Side     int8
	TexInfo  int16
}

// TexInfo holds the texture axis vectors and flags; everything else about
// a texinfo entry (lightmap scale, texdata linkage) is opaque to brush
// reconstruction and is passed through for the external VMF emitter.
type TexInfo struct {
	TextureVecs [2][4]float32
	LightmapVecs [2][4]float32
	Flags        int32
	TexData      int32
}

// DNode is the subset of a BSP tree node bsptree.BrushRange needs: the two
// child indices, each either a positive node index or a negative leaf
// reference encoded as -(leafIndex+1).
type DNode struct {
	Children [2]int32
}

// DLeaf is the subset of a leaf bsptree.BrushRange needs: its run of
// indices into LeafBrushes.
type DLeaf struct {
	FirstLeafBrush uint16
	NumLeafBrushes uint16
}

// ModelHead is the per-model head-node reference parsed from the Models
// lump; bsptree.BrushRange walks from HeadNode to produce the
// (FirstBrush, NumBrush) range that becomes this model's DBrushModel
// entry. Origin stays here; DBrushModel does not carry it.
type ModelHead struct {
	Origin   geom.Vec3
	HeadNode int32
}

// Data is the complete derived, read-only view fed into the brush
// reconstructor and bsptree walker.
type Data struct {
	Vertexes   []geom.Vec3
	Edges      [][2]uint16
	Surfedges  []int32
	Planes     []geom.Plane
	Brushes    []DBrush
	BrushSides []DBrushSide
	OrigFaces  []OrigFace
	TexInfo    []TexInfo

	Nodes       []DNode
	Leafs       []DLeaf
	LeafBrushes []uint16

	ModelHeads []ModelHead

	// Models is empty after Parse; bsptree.AssignModels fills it in by
	// walking each ModelHead's tree.
	Models []DBrushModel

	// Occluders and AreaPortals are left as raw per-Non-goals payloads:
	// decoding their entry formats is the external collaborator's job, not
	// this core's.
	Occluders   []byte
	AreaPortals []byte
}
