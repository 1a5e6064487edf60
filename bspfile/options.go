package bspfile

import (
	"github.com/AlleyKatPr0/bspsrc/observability"
	"github.com/AlleyKatPr0/bspsrc/overlay"
	"github.com/AlleyKatPr0/bspsrc/recovery"
)

// LoadOptions configures a Load/LoadBytes call. The zero value is usable:
// lenient recovery, no logging, no overlay lookup.
type LoadOptions struct {
	// Strategy receives every recoverable anomaly (clamped offsets,
	// ambiguous game-lump rebases, decompression failures). Defaults to
	// recovery.NewLenientStrategy().
	Strategy recovery.Strategy

	// Logger receives structured diagnostics from every stage. Defaults
	// to observability.NopLogger.
	Logger observability.Logger

	// FileSystem, if non-nil, enables sibling-file overlay lookup
	// (numbered .lmp files, and for Titanfall, .bsp_lump/.ent files).
	// Pass overlay.OSFileSystem{Dir: filepath.Dir(path)} to read from the
	// same directory as the BSP file.
	FileSystem overlay.FileSystem

	baseNameOverride string
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.Strategy == nil {
		o.Strategy = recovery.NewLenientStrategy()
	}
	if o.Logger == nil {
		o.Logger = observability.NopLogger{}
	}
	return o
}

// WithOSOverlays returns a copy of o with FileSystem set to read sibling
// overlay files from dir.
func (o LoadOptions) WithOSOverlays(dir string) LoadOptions {
	o.FileSystem = overlay.OSFileSystem{Dir: dir}
	return o
}
