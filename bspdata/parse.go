package bspdata

import (
	"fmt"
	"math"

	"github.com/AlleyKatPr0/bspsrc/bspio"
	"github.com/AlleyKatPr0/bspsrc/bsperr"
	"github.com/AlleyKatPr0/bspsrc/geom"
	"github.com/AlleyKatPr0/bspsrc/lump"
)

const (
	sizeVertex     = 12
	sizeEdge       = 4
	sizeSurfedge   = 4
	sizePlane      = 20
	sizeBrush      = 12
	sizeBrushSide  = 8
	sizeModel      = 48
	sizeOrigFace   = 56 // matches the classic dface_t layout; only a few fields are decoded
	sizeTexInfo    = 72
	sizeNode       = 32
	sizeLeaf       = 32
	sizeLeafBrush  = 2
)

// Parse derives every table bspdata exposes from a parsed lump.Directory.
// r supplies the byte order the tables are decoded with and must carry the
// directory's own byte order (the directory does not retain it once parsed).
func Parse(dir *lump.Directory, r bspio.Reader) (*Data, error) {
	data := &Data{}
	var err error

	if data.Vertexes, err = parseVertexes(dir, r); err != nil {
		return nil, err
	}
	if data.Edges, err = parseEdges(dir, r); err != nil {
		return nil, err
	}
	if data.Surfedges, err = parseSurfedges(dir, r); err != nil {
		return nil, err
	}
	if data.Planes, err = parsePlanes(dir, r); err != nil {
		return nil, err
	}
	if data.Brushes, err = parseBrushes(dir, r); err != nil {
		return nil, err
	}
	if data.BrushSides, err = parseBrushSides(dir, r); err != nil {
		return nil, err
	}
	if data.OrigFaces, err = parseOrigFaces(dir, r); err != nil {
		return nil, err
	}
	if data.TexInfo, err = parseTexInfo(dir, r); err != nil {
		return nil, err
	}
	if data.Nodes, err = parseNodes(dir, r); err != nil {
		return nil, err
	}
	if data.Leafs, err = parseLeafs(dir, r); err != nil {
		return nil, err
	}
	if data.LeafBrushes, err = parseLeafBrushes(dir, r); err != nil {
		return nil, err
	}
	if data.ModelHeads, err = parseModelHeads(dir, r); err != nil {
		return nil, err
	}

	data.Occluders = lumpBytes(dir, lump.Occlusion)
	data.AreaPortals = lumpBytes(dir, lump.AreaPortals)

	return data, nil
}

func lumpBytes(dir *lump.Directory, t lump.Type) []byte {
	if int(t) >= len(dir.Lumps) {
		return nil
	}
	return dir.Lumps[t].Data
}

func fixedReader(dir *lump.Directory, r bspio.Reader, t lump.Type, elemSize int) (bspio.Reader, int, error) {
	b := lumpBytes(dir, t)
	if len(b)%elemSize != 0 {
		return bspio.Reader{}, 0, fmt.Errorf("%w: %s lump size %d is not a multiple of %d", bsperr.ErrInvalidHeader, t, len(b), elemSize)
	}
	sub := bspio.New(b, r.Order())
	return sub, len(b) / elemSize, nil
}

func parseVertexes(dir *lump.Directory, r bspio.Reader) ([]geom.Vec3, error) {
	sub, n, err := fixedReader(dir, r, lump.Vertexes, sizeVertex)
	if err != nil {
		return nil, err
	}
	out := make([]geom.Vec3, n)
	for i := 0; i < n; i++ {
		base := int64(i * sizeVertex)
		x, _ := readF32At(sub, base)
		y, _ := readF32At(sub, base+4)
		z, _ := readF32At(sub, base+8)
		out[i] = geom.Vec3{X: x, Y: y, Z: z}
	}
	return out, nil
}

func readF32At(r bspio.Reader, off int64) (float64, error) {
	bits, err := r.U32At(off)
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(bits)), nil
}

func parseEdges(dir *lump.Directory, r bspio.Reader) ([][2]uint16, error) {
	sub, n, err := fixedReader(dir, r, lump.Edges, sizeEdge)
	if err != nil {
		return nil, err
	}
	out := make([][2]uint16, n)
	for i := 0; i < n; i++ {
		base := int64(i * sizeEdge)
		a, _ := sub.U16At(base)
		b, _ := sub.U16At(base + 2)
		out[i] = [2]uint16{a, b}
	}
	return out, nil
}

func parseSurfedges(dir *lump.Directory, r bspio.Reader) ([]int32, error) {
	sub, n, err := fixedReader(dir, r, lump.Surfedges, sizeSurfedge)
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		v, _ := sub.I32At(int64(i * sizeSurfedge))
		out[i] = v
	}
	return out, nil
}

func parsePlanes(dir *lump.Directory, r bspio.Reader) ([]geom.Plane, error) {
	sub, n, err := fixedReader(dir, r, lump.Planes, sizePlane)
	if err != nil {
		return nil, err
	}
	out := make([]geom.Plane, n)
	for i := 0; i < n; i++ {
		base := int64(i * sizePlane)
		nx, _ := readF32At(sub, base)
		ny, _ := readF32At(sub, base+4)
		nz, _ := readF32At(sub, base+8)
		d, _ := readF32At(sub, base+12)
		out[i] = geom.Plane{N: geom.Vec3{X: nx, Y: ny, Z: nz}, D: d}
	}
	return out, nil
}

func parseBrushes(dir *lump.Directory, r bspio.Reader) ([]DBrush, error) {
	sub, n, err := fixedReader(dir, r, lump.Brushes, sizeBrush)
	if err != nil {
		return nil, err
	}
	out := make([]DBrush, n)
	for i := 0; i < n; i++ {
		base := int64(i * sizeBrush)
		fs, _ := sub.I32At(base)
		ns, _ := sub.I32At(base + 4)
		c, _ := sub.I32At(base + 8)
		out[i] = DBrush{FirstSide: fs, NumSides: ns, Contents: c}
	}
	return out, nil
}

func parseBrushSides(dir *lump.Directory, r bspio.Reader) ([]DBrushSide, error) {
	sub, n, err := fixedReader(dir, r, lump.BrushSides, sizeBrushSide)
	if err != nil {
		return nil, err
	}
	out := make([]DBrushSide, n)
	for i := 0; i < n; i++ {
		base := int64(i * sizeBrushSide)
		pnum, _ := sub.U16At(base)
		texinfo, _ := sub.U16At(base + 2)
		dispinfo, _ := sub.U16At(base + 4)
		bevel, _ := sub.U16At(base + 6)
		out[i] = DBrushSide{
			PlaneNum: int32(pnum),
			TexInfo:  int16(texinfo),
			DispInfo: int16(dispinfo),
			Bevel:    bevel != 0,
		}
	}
	return out, nil
}

func parseOrigFaces(dir *lump.Directory, r bspio.Reader) ([]OrigFace, error) {
	sub, n, err := fixedReader(dir, r, lump.OriginalFaces, sizeOrigFace)
	if err != nil {
		return nil, err
	}
	out := make([]OrigFace, n)
	for i := 0; i < n; i++ {
		base := int64(i * sizeOrigFace)
		planenum, _ := sub.U16At(base)
		sideByte, _ := sub.BytesAt(base+2, 1)
		texinfo, _ := sub.U16At(base + 10)
		var side int8
		if len(sideByte) == 1 {
			side = int8(sideByte[0])
		}
		out[i] = OrigFace{
			PlaneNum: int32(planenum),
			Side:     side,
			TexInfo:  int16(texinfo),
		}
	}
	return out, nil
}

func parseTexInfo(dir *lump.Directory, r bspio.Reader) ([]TexInfo, error) {
	sub, n, err := fixedReader(dir, r, lump.TexInfo, sizeTexInfo)
	if err != nil {
		return nil, err
	}
	out := make([]TexInfo, n)
	for i := 0; i < n; i++ {
		base := int64(i * sizeTexInfo)
		var ti TexInfo
		for row := 0; row < 2; row++ {
			for col := 0; col < 4; col++ {
				off := base + int64(row*16+col*4)
				v, _ := readF32At(sub, off)
				ti.TextureVecs[row][col] = float32(v)
			}
		}
		for row := 0; row < 2; row++ {
			for col := 0; col < 4; col++ {
				off := base + 32 + int64(row*16+col*4)
				v, _ := readF32At(sub, off)
				ti.LightmapVecs[row][col] = float32(v)
			}
		}
		flags, _ := sub.I32At(base + 64)
		texdata, _ := sub.I32At(base + 68)
		ti.Flags = flags
		ti.TexData = texdata
		out[i] = ti
	}
	return out, nil
}

func parseNodes(dir *lump.Directory, r bspio.Reader) ([]DNode, error) {
	sub, n, err := fixedReader(dir, r, lump.Nodes, sizeNode)
	if err != nil {
		return nil, err
	}
	out := make([]DNode, n)
	for i := 0; i < n; i++ {
		base := int64(i*sizeNode + 4) // skip leading planenum field
		c0, _ := sub.I32At(base)
		c1, _ := sub.I32At(base + 4)
		out[i] = DNode{Children: [2]int32{c0, c1}}
	}
	return out, nil
}

func parseLeafs(dir *lump.Directory, r bspio.Reader) ([]DLeaf, error) {
	sub, n, err := fixedReader(dir, r, lump.Leafs, sizeLeaf)
	if err != nil {
		return nil, err
	}
	out := make([]DLeaf, n)
	for i := 0; i < n; i++ {
		base := int64(i*sizeLeaf + 24) // firstleafbrush/numleafbrush trail the leaf's bounds/fog fields
		flb, _ := sub.U16At(base)
		nlb, _ := sub.U16At(base + 2)
		out[i] = DLeaf{FirstLeafBrush: flb, NumLeafBrushes: nlb}
	}
	return out, nil
}

func parseLeafBrushes(dir *lump.Directory, r bspio.Reader) ([]uint16, error) {
	sub, n, err := fixedReader(dir, r, lump.LeafBrushes, sizeLeafBrush)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		v, _ := sub.U16At(int64(i * sizeLeafBrush))
		out[i] = v
	}
	return out, nil
}

func parseModelHeads(dir *lump.Directory, r bspio.Reader) ([]ModelHead, error) {
	sub, n, err := fixedReader(dir, r, lump.Models, sizeModel)
	if err != nil {
		return nil, err
	}
	out := make([]ModelHead, n)
	for i := 0; i < n; i++ {
		base := int64(i * sizeModel)
		ox, _ := readF32At(sub, base+24)
		oy, _ := readF32At(sub, base+28)
		oz, _ := readF32At(sub, base+32)
		headnode, _ := sub.I32At(base + 36)
		out[i] = ModelHead{Origin: geom.Vec3{X: ox, Y: oy, Z: oz}, HeadNode: headnode}
	}
	return out, nil
}
