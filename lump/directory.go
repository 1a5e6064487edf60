// Package lump implements the outer lump directory (component D): parsing
// and writing the header plus 64 (or 128, for Titanfall) lump descriptors,
// in whichever of the dialect-specific field layouts the file uses.
package lump

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/AlleyKatPr0/bspsrc/bspio"
	"github.com/AlleyKatPr0/bspsrc/bsperr"
	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/observability"
	"github.com/AlleyKatPr0/bspsrc/recovery"
)

// descriptorSize is the byte size of one lump descriptor in every dialect.
const descriptorSize = 16

// GenericHeaderSize is the fixed size of the outer header before payload
// data, for every dialect except Titanfall: 4 (ident) + 4 (version) +
// 64*16 (descriptors) + 4 (mapRevision) = 1036.
const GenericHeaderSize = 4 + 4 + 64*descriptorSize + 4

// Header carries the outer file header fields.
type Header struct {
	Ident             [4]byte
	Version           int32
	MapRevision       int32
	Dialect           dialect.ID
	TitanfallReserved uint32 // undocumented trailing u32 (observed 0x7F), round-tripped verbatim
}

// Lump is one entry of the outer directory.
type Lump struct {
	Index   int
	Type    Type
	Data    []byte
	Offset  int32
	Length  int32
	Version int32
	FourCC  int32

	// ParentPath records the sibling file a lump-file overlay replaced
	// this lump's data from, if any.
	ParentPath string
}

// Directory is the parsed outer lump table of a BSP file.
type Directory struct {
	Header Header
	Lumps  []Lump
}

func headerSizeFor(d dialect.ID) int64 {
	switch d {
	case dialect.Titanfall:
		// ident, version, mapRevision, reserved u32, then 128 descriptors.
		return 4 + 4 + 4 + 4 + int64(d.NumLumps())*descriptorSize
	case dialect.Contagion:
		return 4 + 4 + 4 + int64(d.NumLumps())*descriptorSize + 4
	default:
		return int64(GenericHeaderSize)
	}
}

func defaults(strat recovery.Strategy, logger observability.Logger) (recovery.Strategy, observability.Logger) {
	if strat == nil {
		strat = recovery.NewLenientStrategy()
	}
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return strat, logger
}

// ParseDirectory reads the outer header and descriptor table from r, which
// must already be in the correct byte order and (if XOR-ciphered)
// decrypted. d selects the descriptor field layout and header shape;
// version is the already-normalized BSP version (DarkMessiah's low byte,
// etc., resolved by the caller/detector).
func ParseDirectory(ctx context.Context, r bspio.Reader, d dialect.ID, version int32, strat recovery.Strategy, logger observability.Logger) (*Directory, error) {
	strat, logger = defaults(strat, logger)
	capacity := r.Len()
	if capacity < 8 {
		return nil, fmt.Errorf("%w: file shorter than ident+version fields", bsperr.ErrInvalidHeader)
	}

	var ident [4]byte
	identBytes, err := r.BytesAt(0, 4)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bsperr.ErrInvalidHeader, err)
	}
	copy(ident[:], identBytes)

	var mapRevision int32
	var titanfallReserved uint32
	var descriptorBase int64

	switch d {
	case dialect.Titanfall:
		mr, err := r.I32At(8)
		if err != nil {
			return nil, fmt.Errorf("%w: titanfall map revision field out of bounds", bsperr.ErrInvalidHeader)
		}
		mapRevision = mr
		tr, err := r.U32At(12)
		if err != nil {
			return nil, fmt.Errorf("%w: titanfall reserved field out of bounds", bsperr.ErrInvalidHeader)
		}
		titanfallReserved = tr
		descriptorBase = 16
	case dialect.Contagion:
		descriptorBase = 12
	default:
		descriptorBase = 8
	}

	numLumps := d.NumLumps()
	descTableEnd := descriptorBase + int64(numLumps)*descriptorSize
	if d != dialect.Titanfall {
		mr, err := r.I32At(descTableEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: map revision field out of bounds", bsperr.ErrInvalidHeader)
		}
		mapRevision = mr
	}

	lumps := make([]Lump, numLumps)
	clamped := 0
	for i := 0; i < numLumps; i++ {
		descOff := descriptorBase + int64(i)*descriptorSize
		offset, length, lversion, fourCC, err := readDescriptor(r, descOff, d)
		if err != nil {
			return nil, fmt.Errorf("%w: descriptor %d out of bounds", bsperr.ErrInvalidHeader, i)
		}

		offset, length = clampDescriptor(ctx, i, offset, length, capacity, strat, logger, &clamped)

		var data []byte
		if length > 0 {
			data, err = r.BytesAt(int64(offset), int64(length))
			if err != nil {
				data = nil
			}
		}

		lumps[i] = Lump{
			Index:   i,
			Type:    Type(i),
			Data:    data,
			Offset:  offset,
			Length:  length,
			Version: lversion,
			FourCC:  fourCC,
		}
	}

	if clamped > 0 {
		logger.Warn("lump.directory.clamped", observability.Int(observability.MetricLumpsClamped, clamped))
	}

	return &Directory{
		Header: Header{
			Ident:             ident,
			Version:           version,
			MapRevision:       mapRevision,
			Dialect:           d,
			TitanfallReserved: titanfallReserved,
		},
		Lumps: lumps,
	}, nil
}

func readDescriptor(r bspio.Reader, off int64, d dialect.ID) (offset, length, version, fourCC int32, err error) {
	if d == dialect.LeftForDead2 {
		v, e1 := r.I32At(off)
		o, e2 := r.I32At(off + 4)
		l, e3 := r.I32At(off + 8)
		f, e4 := r.I32At(off + 12)
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			return 0, 0, 0, 0, firstErr(e1, e2, e3, e4)
		}
		return o, l, v, f, nil
	}
	o, e1 := r.I32At(off)
	l, e2 := r.I32At(off + 4)
	v, e3 := r.I32At(off + 8)
	f, e4 := r.I32At(off + 12)
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		return 0, 0, 0, 0, firstErr(e1, e2, e3, e4)
	}
	return o, l, v, f, nil
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// clampDescriptor applies the §4.D clamping rules and routes a warning
// through both the logger and the recovery strategy for every clamp.
func clampDescriptor(ctx context.Context, index int, offset, length int32, capacity int64, strat recovery.Strategy, logger observability.Logger, clamped *int) (int32, int32) {
	warn := func(reason string) {
		*clamped++
		w := bsperr.NewWarning("lump", reason, fmt.Sprintf("lump %d", index))
		logger.Warn("lump.directory.clamp", observability.Int("lump_index", index), observability.String("reason", reason))
		strat.OnError(ctx, w, recovery.Location{Component: "lump", LumpIndex: index})
	}

	if int64(offset) > capacity {
		warn("offset clamped to capacity")
		return int32(capacity), 0
	}
	if offset < 0 {
		warn("negative offset reset to zero")
		offset, length = 0, 0
	}
	if int64(offset)+int64(length) > capacity {
		warn("length clamped to fit capacity")
		length = int32(capacity - int64(offset))
	}
	if length < 0 {
		warn("negative length reset to zero")
		length = 0
	}
	return offset, length
}

// Save reassigns offsets greedily (in list order, empty lumps at offset 0)
// starting just past the header, then writes the header, descriptor table,
// and payloads. Returns the total file size written.
func (dir *Directory) Save(w io.Writer, order binary.ByteOrder) (int64, error) {
	if order == nil {
		order = binary.LittleEndian
	}
	d := dir.Header.Dialect
	headerSize := headerSizeFor(d)

	cursor := headerSize
	assigned := make([]int32, len(dir.Lumps))
	for i, l := range dir.Lumps {
		if len(l.Data) == 0 {
			assigned[i] = 0
			continue
		}
		assigned[i] = int32(cursor)
		cursor += int64(len(l.Data))
	}

	buf := make([]byte, headerSize, cursor)
	copy(buf[0:4], dir.Header.Ident[:])
	order.PutUint32(buf[4:8], uint32(dir.Header.Version))

	switch d {
	case dialect.Titanfall:
		order.PutUint32(buf[8:12], uint32(dir.Header.MapRevision))
		order.PutUint32(buf[12:16], dir.Header.TitanfallReserved)
		for i, l := range dir.Lumps {
			writeDescriptor(buf, 16+int64(i)*descriptorSize, d, order, assigned[i], l.Length, l.Version, l.FourCC)
		}
	case dialect.Contagion:
		// the extra u32 after the version header is left zeroed; no
		// semantic content has been observed for it.
		for i, l := range dir.Lumps {
			writeDescriptor(buf, 12+int64(i)*descriptorSize, d, order, assigned[i], l.Length, l.Version, l.FourCC)
		}
		order.PutUint32(buf[12+int64(len(dir.Lumps))*descriptorSize:], uint32(dir.Header.MapRevision))
	default:
		for i, l := range dir.Lumps {
			writeDescriptor(buf, 8+int64(i)*descriptorSize, d, order, assigned[i], l.Length, l.Version, l.FourCC)
		}
		order.PutUint32(buf[8+int64(len(dir.Lumps))*descriptorSize:], uint32(dir.Header.MapRevision))
	}

	n, err := w.Write(buf)
	if err != nil {
		return 0, fmt.Errorf("%w: write header: %v", bsperr.ErrIoFailure, err)
	}
	total := int64(n)

	for i, l := range dir.Lumps {
		if len(l.Data) == 0 {
			continue
		}
		nn, err := w.Write(l.Data)
		if err != nil {
			return total, fmt.Errorf("%w: write lump %d payload: %v", bsperr.ErrIoFailure, i, err)
		}
		total += int64(nn)
	}
	return total, nil
}

func writeDescriptor(buf []byte, off int64, d dialect.ID, order binary.ByteOrder, offset, length, version, fourCC int32) {
	put := func(at int64, v int32) {
		order.PutUint32(buf[at:at+4], uint32(v))
	}
	if d == dialect.LeftForDead2 {
		put(off, version)
		put(off+4, offset)
		put(off+8, length)
		put(off+12, fourCC)
		return
	}
	put(off, offset)
	put(off+4, length)
	put(off+8, version)
	put(off+12, fourCC)
}
