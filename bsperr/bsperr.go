// Package bsperr holds the typed error taxonomy shared by every stage of
// the loader: header/ident parsing, lump I/O, compression, and brush
// reconstruction. Sentinel errors are meant to be wrapped with fmt.Errorf's
// %w and unwrapped with errors.Is at call sites, never compared by message.
package bsperr

import "errors"

var (
	// ErrInvalidHeader: file shorter than the 1036-byte outer header, or no
	// valid ident found even after the XOR probe.
	ErrInvalidHeader = errors.New("bsp: invalid header")

	// ErrUnsupportedFormat: a recognized-but-unsupported container (a zip
	// archive, GoldSrc, or an unrecognized ident).
	ErrUnsupportedFormat = errors.New("bsp: unsupported format")

	// ErrIoFailure: the underlying read/write/map operation failed.
	ErrIoFailure = errors.New("bsp: i/o failure")

	// ErrCompressionFailure: a malformed LZMA envelope on decode, or a
	// compressor failure on encode.
	ErrCompressionFailure = errors.New("bsp: compression failure")

	// ErrMalformedBrush: a brush reference that cannot be resolved: a brush
	// index outside the brush table, a side in the brush's [fstside,
	// fstside+numside) range that lies outside the brush-side table, or a
	// side whose plane index lies outside the plane table.
	ErrMalformedBrush = errors.New("bsp: malformed brush")
)

// Warning is the recoverable class from the error handling design: clamped
// lump offsets/lengths, skipped brush sides, skipped brushes, and invalid
// model indices on write. Warnings are logged and/or routed through a
// recovery.Strategy; they are never returned as the error from a load.
type Warning struct {
	Component string
	Reason    string
	Detail    string
}

func (w Warning) Error() string {
	if w.Detail == "" {
		return w.Component + ": " + w.Reason
	}
	return w.Component + ": " + w.Reason + ": " + w.Detail
}

func NewWarning(component, reason, detail string) Warning {
	return Warning{Component: component, Reason: reason, Detail: detail}
}
