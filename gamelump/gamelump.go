// Package gamelump implements the secondary lump directory nested inside
// the outer LUMP_GAME_LUMP entry: its own count-prefixed descriptor table,
// the Vindictus-vs-generic layout heuristic, and the compressed-length
// derivation from adjacent descriptor offsets.
package gamelump

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/AlleyKatPr0/bspsrc/bsperr"
	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/lzmacodec"
	"github.com/AlleyKatPr0/bspsrc/observability"
	"github.com/AlleyKatPr0/bspsrc/recovery"
)

// Layout selects the descriptor field widths.
type Layout int

const (
	LayoutGeneric Layout = iota
	LayoutVindictus
)

// Descriptor is one entry of the game-lump sub-directory.
type Descriptor struct {
	FourCC     int32
	Flags      uint16
	Version    uint16
	Offset     int32 // rebased, relative to the containing lump's start
	Length     int32 // uncompressed size when Compressed is set
	Compressed bool
	Data       []byte // decompressed payload
}

// Directory is the parsed game-lump sub-directory.
type Directory struct {
	Layout Layout
	Lumps  []Descriptor

	// FromCompressed records whether any descriptor was compressed at
	// parse time, so Emit can reproduce the reference compiler's dummy
	// trailing descriptor on save.
	FromCompressed bool
}

func isAlnum4(b []byte) bool {
	if len(b) != 4 {
		return false
	}
	for _, c := range b {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

func tryParse(buf []byte, strideAfterFourCC int) bool {
	if len(buf) < 4 {
		return false
	}
	count := int32(binary.LittleEndian.Uint32(buf[0:4]))
	if count < 0 {
		return false
	}
	pos := 4
	for i := 0; i < int(count); i++ {
		if pos+4 > len(buf) {
			return false
		}
		if !isAlnum4(buf[pos : pos+4]) {
			return false
		}
		pos += 4 + strideAfterFourCC
	}
	return true
}

// DetectLayout implements the Vindictus-vs-generic heuristic: parse once
// assuming each stride and see which one keeps every fourCC alphanumeric.
// Ambiguous or doubly-invalid inputs default to generic.
func DetectLayout(buf []byte) Layout {
	genericOK := tryParse(buf, 12)
	vindictusOK := tryParse(buf, 16)
	if !genericOK && vindictusOK {
		return LayoutVindictus
	}
	return LayoutGeneric
}

func strideFor(layout Layout, d dialect.ID) (prefix, afterFourCC int) {
	prefix = 0
	if d == dialect.DarkMessiah {
		prefix = 4
	}
	if layout == LayoutVindictus {
		return prefix, 16
	}
	return prefix, 12
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

// Parse reads the game-lump sub-directory out of buf, the raw payload of
// the containing LUMP_GAME_LUMP entry, whose outer offset/length are
// containingOffset/containingLength (used to rebase absolute offsets and
// to bound the last descriptor's compressed length).
func Parse(ctx context.Context, buf []byte, layout Layout, d dialect.ID, containingOffset, containingLength int64, strat recovery.Strategy, logger observability.Logger) (*Directory, error) {
	strat, logger = defaults(strat, logger)
	if len(buf) < 4 {
		return nil, fmt.Errorf("%w: game lump shorter than count field", bsperr.ErrInvalidHeader)
	}
	count := int32(binary.LittleEndian.Uint32(buf[0:4]))
	if count < 0 {
		return nil, fmt.Errorf("%w: negative game lump count", bsperr.ErrInvalidHeader)
	}

	prefix, afterFourCC := strideFor(layout, d)
	descSize := prefix + 4 + afterFourCC

	type raw struct {
		fourCC          int32
		flags, version  uint32
		rebasedOffset   int64
		length          int32
	}
	raws := make([]raw, count)

	pos := 4
	for i := 0; i < int(count); i++ {
		if pos+descSize > len(buf) {
			return nil, fmt.Errorf("%w: game lump descriptor %d out of bounds", bsperr.ErrInvalidHeader, i)
		}
		p := pos + prefix
		fourCC := int32(binary.LittleEndian.Uint32(buf[p:]))
		p += 4

		var flags, version uint32
		var offset, length int32
		if layout == LayoutVindictus {
			flags = binary.LittleEndian.Uint32(buf[p:])
			version = binary.LittleEndian.Uint32(buf[p+4:])
			offset = int32(binary.LittleEndian.Uint32(buf[p+8:]))
			length = int32(binary.LittleEndian.Uint32(buf[p+12:]))
		} else {
			flags = uint32(binary.LittleEndian.Uint16(buf[p:]))
			version = uint32(binary.LittleEndian.Uint16(buf[p+2:]))
			offset = int32(binary.LittleEndian.Uint32(buf[p+4:]))
			length = int32(binary.LittleEndian.Uint32(buf[p+8:]))
		}

		rebased := int64(offset)
		if diff := int64(offset) - containingOffset; diff > 0 {
			rebased = diff
		} else if diff == 0 {
			w := bsperr.NewWarning("gamelump", "ambiguous rebase: offset equals containing lump offset", fmt.Sprintf("descriptor %d", i))
			logger.Warn("gamelump.rebase.ambiguous", observability.Int("descriptor_index", i))
			strat.OnError(ctx, w, recovery.Location{Component: "gamelump", LumpIndex: i})
		}

		raws[i] = raw{fourCC: fourCC, flags: flags, version: version, rebasedOffset: rebased, length: length}
		pos += descSize
	}

	lumps := make([]Descriptor, count)
	var fromCompressed bool
	for i, rw := range raws {
		next := containingLength
		if i+1 < len(raws) {
			next = raws[i+1].rebasedOffset
		}
		compressed := rw.flags&1 != 0
		if compressed {
			fromCompressed = true
		}
		byteLen := next - rw.rebasedOffset
		if byteLen < 0 {
			byteLen = 0
		}

		var data []byte
		if rw.rebasedOffset >= 0 && rw.rebasedOffset+byteLen <= int64(len(buf)) {
			data = buf[rw.rebasedOffset : rw.rebasedOffset+byteLen]
		}

		if compressed && len(data) > 0 {
			decoded, err := lzmacodec.Decompress(data)
			if err == nil {
				data = decoded
			} else {
				w := bsperr.NewWarning("gamelump", "lzma decompress failed, keeping raw bytes", fmt.Sprintf("descriptor %d: %v", i, err))
				logger.Warn("gamelump.decompress.failed", observability.Int("descriptor_index", i), observability.Error("err", err))
				strat.OnError(ctx, w, recovery.Location{Component: "gamelump", LumpIndex: i})
			}
		}

		lumps[i] = Descriptor{
			FourCC:     rw.fourCC,
			Flags:      uint16(rw.flags),
			Version:    uint16(rw.version),
			Offset:     int32(rw.rebasedOffset),
			Length:     rw.length,
			Compressed: compressed,
			Data:       data,
		}
	}

	return &Directory{Layout: layout, Lumps: lumps, FromCompressed: fromCompressed}, nil
}

// Emit serializes the sub-directory back into a single buffer, relative
// offsets only. The caller (the outer lump writer) is responsible for
// translating these to absolute file offsets.
func Emit(dir *Directory, d dialect.ID) ([]byte, error) {
	prefix, afterFourCC := strideFor(dir.Layout, d)
	descSize := prefix + 4 + afterFourCC

	// The reference compiler appends one empty trailing descriptor
	// whenever the source game lump was compressed, a write-side quirk
	// this preserves for round-trip fidelity.
	descCount := len(dir.Lumps)
	if dir.FromCompressed {
		descCount++
	}
	headerSize := 4 + descCount*descSize

	cursor := int64(headerSize)
	payload := make([][]byte, len(dir.Lumps))
	for i, l := range dir.Lumps {
		p := l.Data
		if l.Compressed {
			compressed, err := lzmacodec.Compress(l.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: compress game lump %d: %v", bsperr.ErrCompressionFailure, i, err)
			}
			p = compressed
		}
		payload[i] = p
	}

	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(descCount))

	pos := 4
	for i, l := range dir.Lumps {
		p := pos + prefix
		binary.LittleEndian.PutUint32(buf[p:], uint32(l.FourCC))
		p += 4
		offset := int32(cursor)
		length := l.Length
		if dir.Layout == LayoutVindictus {
			binary.LittleEndian.PutUint32(buf[p:], uint32(l.Flags))
			binary.LittleEndian.PutUint32(buf[p+4:], uint32(l.Version))
			binary.LittleEndian.PutUint32(buf[p+8:], uint32(offset))
			binary.LittleEndian.PutUint32(buf[p+12:], uint32(length))
		} else {
			binary.LittleEndian.PutUint16(buf[p:], l.Flags)
			binary.LittleEndian.PutUint16(buf[p+2:], l.Version)
			binary.LittleEndian.PutUint32(buf[p+4:], uint32(offset))
			binary.LittleEndian.PutUint32(buf[p+8:], uint32(length))
		}
		cursor += int64(len(payload[i]))
		pos += descSize
	}
	if dir.FromCompressed {
		// Dummy descriptor: zero fourCC/flags/version, offset at the end
		// of the payload, zero length. pos is already positioned at it.
		p := pos + prefix
		offset := int32(cursor)
		if dir.Layout == LayoutVindictus {
			binary.LittleEndian.PutUint32(buf[p+8:], uint32(offset))
		} else {
			binary.LittleEndian.PutUint32(buf[p+4:], uint32(offset))
		}
	}

	for _, p := range payload {
		buf = append(buf, p...)
	}
	return buf, nil
}
