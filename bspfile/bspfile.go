// Package bspfile ties the whole pipeline together: detect the container
// variant, parse the outer lump directory, apply sibling-file overlays,
// decode the nested game-lump directory, derive the read-only tables, and
// recover model brush ranges, producing the single BspFile a caller loads
// a map from and reconstructs brushes against.
package bspfile

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AlleyKatPr0/bspsrc/bspdata"
	"github.com/AlleyKatPr0/bspsrc/bsperr"
	"github.com/AlleyKatPr0/bspsrc/bspio"
	"github.com/AlleyKatPr0/bspsrc/bsptree"
	"github.com/AlleyKatPr0/bspsrc/detect"
	"github.com/AlleyKatPr0/bspsrc/dialect"
	"github.com/AlleyKatPr0/bspsrc/gamelump"
	"github.com/AlleyKatPr0/bspsrc/lump"
	"github.com/AlleyKatPr0/bspsrc/overlay"
	"github.com/AlleyKatPr0/bspsrc/xorcipher"
)

// BspFile is a fully loaded map: the outer directory, the nested game-lump
// directory (nil if the file carries none), the derived tables, and the
// detection result that produced them.
type BspFile struct {
	Path      string
	Order     binary.ByteOrder
	Dialect   dialect.ID
	Version   int32
	Directory *lump.Directory
	GameLumps *gamelump.Directory
	Data      *bspdata.Data

	source *bspio.MappedSource
}

// Close releases the memory map (or owned buffer) backing the file. Safe
// to call on a BspFile obtained from LoadBytes, where it is a no-op.
func (f *BspFile) Close() error {
	if f.source == nil {
		return nil
	}
	return f.source.Close()
}

// Load opens path, detects its dialect, parses its directory, applies
// sibling-file overlays (when opts.FileSystem is set), decodes its game lump,
// and derives bspdata.Data plus model brush ranges.
func Load(ctx context.Context, path string, opts LoadOptions) (*BspFile, error) {
	src, err := detect.Open(path)
	if err != nil {
		return nil, err
	}
	f, err := loadFromSource(ctx, src, path, opts)
	if err != nil {
		src.Close()
		return nil, err
	}
	return f, nil
}

// LoadBytes parses buf as if it were a BSP file already read into memory.
// baseName is used to resolve sibling overlay files through
// opts.FileSystem; with a nil FileSystem no overlays are applied.
func LoadBytes(ctx context.Context, buf []byte, baseName string, opts LoadOptions) (*BspFile, error) {
	opts.baseNameOverride = baseName
	return loadFromSource(ctx, &memSource{buf: buf}, "", opts)
}

// sourceBuf abstracts the two ways Load/LoadBytes obtain a byte view:
// a real mmap (which may need to transition to an owned buffer for XOR
// decryption) or an in-memory buffer handed in directly.
type sourceBuf interface {
	Bytes() []byte
	Own() ([]byte, error)
}

type memSource struct{ buf []byte }

func (m *memSource) Bytes() []byte      { return m.buf }
func (m *memSource) Own() ([]byte, error) { return m.buf, nil }

func loadFromSource(ctx context.Context, src sourceBuf, path string, opts LoadOptions) (*BspFile, error) {
	opts = opts.withDefaults()

	r := bspio.New(src.Bytes(), binary.LittleEndian)
	res, err := detect.Detect(r)
	if err != nil {
		return nil, err
	}

	if res.NeedsXOR {
		buf, err := src.Own()
		if err != nil {
			return nil, err
		}
		xorcipher.Apply(buf, res.XORKey)
		r = bspio.New(buf, res.Order)
	} else {
		r = r.WithOrder(res.Order)
	}

	dir, err := lump.ParseDirectory(ctx, r, res.Dialect, res.Version, opts.Strategy, opts.Logger)
	if err != nil {
		return nil, err
	}

	if opts.FileSystem != nil {
		baseName := opts.baseNameOverride
		if baseName == "" {
			baseName = baseNameFor(path)
		}
		if _, err := overlay.ApplyLumpFiles(ctx, dir, baseName, opts.FileSystem, opts.Logger); err != nil {
			return nil, err
		}
		if res.Dialect == dialect.Titanfall {
			if _, err := overlay.ApplyTitanfallOverlays(ctx, dir, baseName, opts.FileSystem, opts.Logger); err != nil {
				return nil, err
			}
		}
	}

	var gl *gamelump.Directory
	if int(lump.GameLump) < len(dir.Lumps) {
		gameLump := dir.Lumps[lump.GameLump]
		if len(gameLump.Data) > 0 {
			// The Vindictus-vs-generic heuristic only applies to a
			// generic version-20, little-endian file; every other
			// dialect/version already knows its own layout.
			layout := gamelump.LayoutGeneric
			if res.Version == 20 && res.Order == binary.LittleEndian {
				layout = gamelump.DetectLayout(gameLump.Data)
			}
			gl, err = gamelump.Parse(ctx, gameLump.Data, layout, res.Dialect, int64(gameLump.Offset), int64(gameLump.Length), opts.Strategy, opts.Logger)
			if err != nil {
				return nil, fmt.Errorf("%w: game lump: %v", bsperr.ErrInvalidHeader, err)
			}
		}
	}

	data, err := bspdata.Parse(dir, r)
	if err != nil {
		return nil, err
	}
	bsptree.AssignModels(data)

	f := &BspFile{
		Path:      path,
		Order:     res.Order,
		Dialect:   res.Dialect,
		Version:   res.Version,
		Directory: dir,
		GameLumps: gl,
		Data:      data,
	}
	if ms, ok := src.(*bspio.MappedSource); ok {
		f.source = ms
	}
	return f, nil
}

func baseNameFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
