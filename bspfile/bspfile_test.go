package bspfile

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/lump"
)

func putF32(buf []byte, off int, v float32) {
	binary.BigEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
}

func putI32(buf []byte, off int, v int32) {
	binary.BigEndian.PutUint32(buf[off:off+4], uint32(v))
}

// buildMinimalGenericFile assembles a directory with one vertex, one
// plane, one (side-less) brush, and one model head, then serializes it
// through lump.Directory.Save the same way a writer would.
func buildMinimalGenericFile(t *testing.T) []byte {
	t.Helper()

	lumps := make([]lump.Lump, lump.NumGeneric)
	for i := range lumps {
		lumps[i] = lump.Lump{Index: i, Type: lump.Type(i)}
	}

	vertex := make([]byte, 12)
	putF32(vertex, 0, 1)
	putF32(vertex, 4, 2)
	putF32(vertex, 8, 3)
	lumps[lump.Vertexes] = lump.Lump{Data: vertex, Length: int32(len(vertex))}

	plane := make([]byte, 20)
	putF32(plane, 0, 1)
	putF32(plane, 4, 0)
	putF32(plane, 8, 0)
	putF32(plane, 12, 64)
	lumps[lump.Planes] = lump.Lump{Data: plane, Length: int32(len(plane))}

	brush := make([]byte, 12)
	putI32(brush, 0, 0) // firstside
	putI32(brush, 4, 0) // numsides
	putI32(brush, 8, 1) // contents
	lumps[lump.Brushes] = lump.Lump{Data: brush, Length: int32(len(brush))}

	model := make([]byte, 48)
	putF32(model, 24, 10)
	putF32(model, 28, 20)
	putF32(model, 32, 30)
	putI32(model, 36, -1) // headnode -> leaf 0
	lumps[lump.Models] = lump.Lump{Data: model, Length: int32(len(model))}

	dir := &lump.Directory{
		Header: lump.Header{
			Ident:   [4]byte{'P', 'S', 'B', 'V'},
			Version: 20,
			Dialect: dialect.Generic,
		},
		Lumps: lumps,
	}

	var buf bytes.Buffer
	if _, err := dir.Save(&buf, binary.BigEndian); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return buf.Bytes()
}

func TestLoadBytesEndToEnd(t *testing.T) {
	raw := buildMinimalGenericFile(t)

	f, err := LoadBytes(context.Background(), raw, "testmap", LoadOptions{})
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	defer f.Close()

	if f.Dialect != dialect.Generic {
		t.Fatalf("Dialect = %v, want Generic", f.Dialect)
	}
	if f.Version != 20 {
		t.Fatalf("Version = %d, want 20", f.Version)
	}
	if len(f.Data.Vertexes) != 1 {
		t.Fatalf("len(Vertexes) = %d, want 1", len(f.Data.Vertexes))
	}
	if f.Data.Vertexes[0].X != 1 || f.Data.Vertexes[0].Y != 2 || f.Data.Vertexes[0].Z != 3 {
		t.Fatalf("Vertexes[0] = %+v", f.Data.Vertexes[0])
	}
	if len(f.Data.Planes) != 1 {
		t.Fatalf("len(Planes) = %d, want 1", len(f.Data.Planes))
	}
	if len(f.Data.Brushes) != 1 || f.Data.Brushes[0].Contents != 1 {
		t.Fatalf("Brushes = %+v", f.Data.Brushes)
	}
	if len(f.Data.Models) != 1 {
		t.Fatalf("len(Models) = %d, want 1", len(f.Data.Models))
	}
	if f.Data.ModelHeads[0].Origin.X != 10 {
		t.Fatalf("ModelHeads[0].Origin = %+v", f.Data.ModelHeads[0].Origin)
	}
	// No leaf table in this fixture, so bsptree.BrushRange short-circuits
	// to the empty range rather than walking into an out-of-bounds leaf.
	if f.Data.Models[0].FirstBrush != 0 || f.Data.Models[0].NumBrush != 0 {
		t.Fatalf("Models[0] = %+v, want zero range", f.Data.Models[0])
	}
}

func TestLoadBytesRejectsShortBuffer(t *testing.T) {
	_, err := LoadBytes(context.Background(), []byte{1, 2, 3}, "testmap", LoadOptions{})
	if err == nil {
		t.Fatal("expected error for short buffer")
	}
}
