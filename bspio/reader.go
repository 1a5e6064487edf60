// Package bspio provides the positioned/sequential byte reader the rest of
// the loader is built on: a thin, endian-aware view over either an
// in-memory buffer or a memory-mapped file. Slicing is zero-copy when the
// backing array allows it; Clone forces an owned copy. XOR decryption of a
// mapped file goes through MappedSource.Own instead.
package bspio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader is a cheap value type: copying it copies the view (offset +
// endianness), not the backing array.
type Reader struct {
	buf   []byte
	order binary.ByteOrder
	pos   int64
}

// New wraps buf (shared, not copied) with the given byte order.
func New(buf []byte, order binary.ByteOrder) Reader {
	if order == nil {
		order = binary.LittleEndian
	}
	return Reader{buf: buf, order: order}
}

func (r Reader) Len() int64        { return int64(len(r.buf)) }
func (r Reader) Bytes() []byte     { return r.buf }
func (r Reader) Order() binary.ByteOrder { return r.order }
func (r Reader) Position() int64   { return r.pos }

// WithOrder returns a copy of r with a different endianness, same view.
func (r Reader) WithOrder(order binary.ByteOrder) Reader {
	r.order = order
	return r
}

// Clone returns a Reader over an owned copy of the current view, severing
// any relationship with a memory-mapped backing array. One-way: once
// cloned there is no path back to zero-copy for this view.
func (r Reader) Clone() Reader {
	owned := make([]byte, len(r.buf))
	copy(owned, r.buf)
	return Reader{buf: owned, order: r.order}
}

// Sub returns a zero-copy view of buf[off : off+length] carrying the same
// endianness. The returned Reader's cursor starts at 0.
func (r Reader) Sub(off, length int64) (Reader, error) {
	if off < 0 || length < 0 || off+length > int64(len(r.buf)) {
		return Reader{}, fmt.Errorf("bspio: sub-slice [%d:%d] out of bounds (cap %d)", off, off+length, len(r.buf))
	}
	return Reader{buf: r.buf[off : off+length], order: r.order}, nil
}

// Concat returns a new Reader whose backing array is the byte-wise
// concatenation of r and other. Always a copy (the two views are not
// necessarily adjacent in memory).
func (r Reader) Concat(other Reader) Reader {
	out := make([]byte, 0, len(r.buf)+len(other.buf))
	out = append(out, r.buf...)
	out = append(out, other.buf...)
	return Reader{buf: out, order: r.order}
}

// Seek repositions the sequential cursor.
func (r *Reader) Seek(off int64) error {
	if off < 0 || off > int64(len(r.buf)) {
		return fmt.Errorf("bspio: seek %d out of bounds (cap %d)", off, len(r.buf))
	}
	r.pos = off
	return nil
}

func (r *Reader) need(n int64) error {
	if r.pos+n > int64(len(r.buf)) {
		return fmt.Errorf("bspio: read past end at %d (need %d, cap %d)", r.pos, n, len(r.buf))
	}
	return nil
}

func (r *Reader) ReadI16() (int16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := int16(r.order.Uint16(r.buf[r.pos:]))
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := r.order.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadI32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(r.order.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := r.order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadF32() (float32, error) {
	bits, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(int64(n)); err != nil {
		return nil, err
	}
	out := r.buf[r.pos : r.pos+int64(n)]
	r.pos += int64(n)
	return out, nil
}

// Positional (random-access) reads, none of which move the cursor.

func (r Reader) I32At(off int64) (int32, error) {
	if off < 0 || off+4 > int64(len(r.buf)) {
		return 0, fmt.Errorf("bspio: I32At(%d) out of bounds (cap %d)", off, len(r.buf))
	}
	return int32(r.order.Uint32(r.buf[off:])), nil
}

func (r Reader) U32At(off int64) (uint32, error) {
	if off < 0 || off+4 > int64(len(r.buf)) {
		return 0, fmt.Errorf("bspio: U32At(%d) out of bounds (cap %d)", off, len(r.buf))
	}
	return r.order.Uint32(r.buf[off:]), nil
}

func (r Reader) U16At(off int64) (uint16, error) {
	if off < 0 || off+2 > int64(len(r.buf)) {
		return 0, fmt.Errorf("bspio: U16At(%d) out of bounds (cap %d)", off, len(r.buf))
	}
	return r.order.Uint16(r.buf[off:]), nil
}

func (r Reader) BytesAt(off, length int64) ([]byte, error) {
	if off < 0 || length < 0 || off+length > int64(len(r.buf)) {
		return nil, fmt.Errorf("bspio: BytesAt(%d,%d) out of bounds (cap %d)", off, length, len(r.buf))
	}
	return r.buf[off : off+length], nil
}
