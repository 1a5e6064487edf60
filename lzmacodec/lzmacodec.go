// Package lzmacodec implements Valve's lump compression envelope: a
// 17-byte header (magic, actual size, compressed stream size, 5-byte LZMA
// properties) wrapping a raw LZMA stream. The stream itself is handled by
// github.com/ulikunitz/xz/lzma; only the envelope and the classic 13-byte
// LZMA SDK header it expects are assembled by hand, the way the pack's CHD
// LZMA codec builds a synthetic header before delegating to the same
// library.
package lzmacodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"

	"github.com/AlleyKatPr0/bspsrc/bsperr"
)

// HeaderSize is the fixed length of the envelope preamble.
const HeaderSize = 17

var magic = [4]byte{'L', 'Z', 'M', 'A'}

// IsCompressed reports whether buf begins with the envelope magic. A lump
// is "compressed" iff this is true.
func IsCompressed(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == magic[0] && buf[1] == magic[1] && buf[2] == magic[2] && buf[3] == magic[3]
}

// Decompress validates and strips the envelope, returning the original
// uncompressed payload. If buf does not start with the magic, the lump is
// considered uncompressed and is returned unchanged.
func Decompress(buf []byte) ([]byte, error) {
	if !IsCompressed(buf) {
		return buf, nil
	}
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: lzma envelope shorter than header (%d bytes)", bsperr.ErrCompressionFailure, len(buf))
	}
	actualSize := binary.LittleEndian.Uint32(buf[4:8])
	lzmaSize := binary.LittleEndian.Uint32(buf[8:12])
	props := buf[12:17]
	if int(lzmaSize) > len(buf)-HeaderSize {
		return nil, fmt.Errorf("%w: lzma stream size %d exceeds available payload %d", bsperr.ErrCompressionFailure, lzmaSize, len(buf)-HeaderSize)
	}
	payload := buf[HeaderSize : HeaderSize+int(lzmaSize)]

	classic := make([]byte, 13+len(payload))
	copy(classic[0:5], props)
	binary.LittleEndian.PutUint64(classic[5:13], uint64(actualSize))
	copy(classic[13:], payload)

	r, err := lzma.NewReader(bytes.NewReader(classic))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma header: %v", bsperr.ErrCompressionFailure, err)
	}
	out := make([]byte, actualSize)
	n, err := io.ReadFull(r, out)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: lzma decode: %v", bsperr.ErrCompressionFailure, err)
	}
	return out[:n], nil
}

// Compress wraps original in the Valve envelope. Per spec, a payload at or
// under HeaderSize is a net loss and is returned unwrapped (the caller
// should keep the lump uncompressed in that case; Compress still returns
// it so callers can treat the result uniformly).
func Compress(original []byte) ([]byte, error) {
	if len(original) <= HeaderSize {
		return original, nil
	}

	props := &lzma.Properties{LC: 3, LP: 0, PB: 2}
	dictCap := dictSizeFor(len(original))

	var streamBuf bytes.Buffer
	wc := lzma.WriterConfig{
		Properties:   props,
		DictCap:      dictCap,
		Size:         int64(len(original)),
		SizeInHeader: false,
		EOSMarker:    true,
	}
	w, err := wc.NewWriter(&streamBuf)
	if err != nil {
		return nil, fmt.Errorf("%w: lzma writer init: %v", bsperr.ErrCompressionFailure, err)
	}
	if _, err := w.Write(original); err != nil {
		return nil, fmt.Errorf("%w: lzma write: %v", bsperr.ErrCompressionFailure, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: lzma close: %v", bsperr.ErrCompressionFailure, err)
	}

	// streamBuf now holds the 13-byte classic header (properties byte, LE
	// dict size, LE uncompressed size) followed by the raw compressed
	// stream; split them apart since Valve's envelope carries the 5
	// properties bytes separately and records the sizes itself.
	full := streamBuf.Bytes()
	if len(full) < 13 {
		return nil, fmt.Errorf("%w: lzma writer produced a stream shorter than its own header", bsperr.ErrCompressionFailure)
	}
	propsBytes := full[:5]
	payload := full[13:]

	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(out, magic[:]...)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(original)))
	out = append(out, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(payload)))
	out = append(out, tmp[:]...)
	out = append(out, propsBytes...)
	out = append(out, payload...)

	if len(out) >= len(original) {
		// Compression was a net loss; still return a well-formed envelope,
		// the caller decides whether to keep it based on size.
		return out, nil
	}
	return out, nil
}

// dictSizeFor mirrors the reference compiler's dictionary-size
// normalization: the smallest 2<<i or 3<<i at least as large as the
// payload, matching the class of sizes Valve's own LZMA SDK picks.
func dictSizeFor(payloadLen int) int {
	n := uint32(payloadLen)
	for i := uint32(11); i <= 30; i++ {
		if n <= (2 << i) {
			return int(2 << i)
		}
		if n <= (3 << i) {
			return int(3 << i)
		}
	}
	return 1 << 26
}
