// Package detect implements the format detector (component G): the exact
// check order over a file's first bytes that establishes byte order,
// dialect, and, for the XOR-ciphered Tactical Intervention variant, the
// key the caller must decrypt the owned buffer with before continuing.
package detect

import (
	"encoding/binary"
	"fmt"

	"github.com/AlleyKatPr0/bspsrc/bsperr"
	"github.com/AlleyKatPr0/bspsrc/bspio"
	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/lump"
	"github.com/AlleyKatPr0/bspsrc/xorcipher"
)

// Result is everything the rest of the loader needs to continue parsing
// after Detect: the byte order and dialect of the file, its normalized
// version, and (for the XOR-ciphered variant) the key to decrypt with.
type Result struct {
	Order   binary.ByteOrder
	Dialect dialect.ID
	Version int32

	// NeedsXOR is true when the caller must transition the source to an
	// owned buffer (bspio.MappedSource.Own) and XOR-decrypt it in place
	// with XORKey before parsing anything past the ident.
	NeedsXOR bool
	XORKey   [xorcipher.KeySize]byte
}

const xorKeyOffset = 384

var vbspBytes = [4]byte{'V', 'B', 'S', 'P'}
var rbspBytes = [4]byte{'r', 'B', 'S', 'P'}

func beWord(b [4]byte) uint32 { return binary.BigEndian.Uint32(b[:]) }

// leWord is the ident value as a little-endian file stores it: the ASCII
// bytes in reading order. A big-endian file stores the same value with its
// bytes reversed.
func leWord(b [4]byte) uint32 { return binary.LittleEndian.Uint32(b[:]) }

// Open memory-maps path for zero-copy reading; the caller must Close it
// (directly, or via MappedSource.Own's ownership transition followed by
// its own buffer lifetime).
func Open(path string) (*bspio.MappedSource, error) {
	return bspio.OpenMapped(path)
}

// Detect implements the check order against r's first bytes. r must be
// constructed with an arbitrary placeholder byte order; Detect determines
// and returns the real one.
func Detect(r bspio.Reader) (Result, error) {
	buf := r.Bytes()

	if len(buf) >= 4 {
		first4 := [4]byte{buf[0], buf[1], buf[2], buf[3]}
		if isZipMagic(first4) {
			return Result{}, fmt.Errorf("%w: looks like a zip archive, not a BSP file", bsperr.ErrUnsupportedFormat)
		}
	}

	if int64(len(buf)) < int64(lump.GenericHeaderSize) {
		return Result{}, fmt.Errorf("%w: file shorter than the fixed outer header", bsperr.ErrInvalidHeader)
	}

	var ident [4]byte
	copy(ident[:], buf[0:4])

	if beWord(ident) == leWord(vbspBytes) {
		return finish(r, binary.BigEndian, dialect.Generic)
	}

	swapped := [4]byte{ident[3], ident[2], ident[1], ident[0]}
	if beWord(swapped) == leWord(vbspBytes) {
		return finish(r, binary.LittleEndian, dialect.Generic)
	}
	if beWord(swapped) == leWord(rbspBytes) {
		return finish(r, binary.LittleEndian, dialect.Titanfall)
	}

	if ident[0] == 0x1E {
		return Result{}, fmt.Errorf("%w: GoldSrc BSP is not supported", bsperr.ErrUnsupportedFormat)
	}

	if len(buf) >= xorKeyOffset+xorcipher.KeySize {
		var key [xorcipher.KeySize]byte
		copy(key[:], buf[xorKeyOffset:xorKeyOffset+xorcipher.KeySize])

		candidate := ident
		xorcipher.Apply(candidate[:], key)
		if binary.LittleEndian.Uint32(candidate[:]) == binary.LittleEndian.Uint32(vbspBytes[:]) {
			var rawVersion [4]byte
			copy(rawVersion[:], buf[4:8])
			for i := range rawVersion {
				rawVersion[i] ^= key[4+i]
			}
			return Result{
				Order:    binary.LittleEndian,
				Dialect:  dialect.TacticalIntervention,
				Version:  int32(binary.LittleEndian.Uint32(rawVersion[:])),
				NeedsXOR: true,
				XORKey:   key,
			}, nil
		}
	}

	return Result{}, fmt.Errorf("%w: unrecognized ident", bsperr.ErrUnsupportedFormat)
}

func isZipMagic(b [4]byte) bool {
	v := binary.LittleEndian.Uint32(b[:])
	switch v {
	case 0x04034B50, 0x06054B50, 0x08074B50:
		return true
	}
	return false
}

// finish resolves the post-ident dialect flags (DarkMessiah, Contagion,
// L4D2) once byte order is known, then reports the normalized version.
func finish(r bspio.Reader, order binary.ByteOrder, d dialect.ID) (Result, error) {
	rr := r.WithOrder(order)
	rawVersion, err := rr.I32At(4)
	if err != nil {
		return Result{}, fmt.Errorf("%w: version field out of bounds", bsperr.ErrInvalidHeader)
	}

	version := rawVersion
	switch {
	case rawVersion == 0x00040014:
		d = dialect.DarkMessiah
		version = rawVersion & 0xFF
	case rawVersion == 27:
		d = dialect.Contagion
	case rawVersion == 21:
		if probe, err := rr.I32At(8); err == nil && probe == 0 {
			d = dialect.LeftForDead2
		}
	}

	return Result{Order: order, Dialect: d, Version: version}, nil
}
