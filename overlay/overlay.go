// Package overlay applies the two sibling-file mechanisms that can replace
// lump payloads after the primary container parse: numbered lump files
// (name_l_N.lmp) and the Titanfall per-lump/entity overlay files.
package overlay

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/AlleyKatPr0/bspsrc/bsperr"
	"github.com/AlleyKatPr0/bspsrc/lump"
	"github.com/AlleyKatPr0/bspsrc/observability"
)

// FileSystem abstracts sibling-file lookup so tests can inject an
// in-memory filesystem instead of touching disk.
type FileSystem interface {
	Open(name string) (io.ReadCloser, error)
}

// Result summarizes what ApplyLumpFiles / ApplyTitanfallOverlays changed.
type Result struct {
	AppliedCount     int
	GameLumpReplaced bool
}

func defaultLogger(logger observability.Logger) observability.Logger {
	if logger == nil {
		return observability.NopLogger{}
	}
	return logger
}

// ApplyLumpFiles scans baseName_l_0.lmp, baseName_l_1.lmp, … stopping at
// the first missing index, and replaces each named lump's data in dir.
func ApplyLumpFiles(ctx context.Context, dir *lump.Directory, baseName string, fs FileSystem, logger observability.Logger) (Result, error) {
	logger = defaultLogger(logger)
	var res Result

	for idx := 0; idx < 128; idx++ {
		name := fmt.Sprintf("%s_l_%d.lmp", baseName, idx)
		rc, err := fs.Open(name)
		if err != nil {
			break
		}
		data, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr != nil {
			return res, fmt.Errorf("%w: reading %s: %v", bsperr.ErrIoFailure, name, readErr)
		}
		if len(data) < 16 {
			return res, fmt.Errorf("%w: %s shorter than its 16-byte mini-header", bsperr.ErrInvalidHeader, name)
		}

		ofs := int32(binary.LittleEndian.Uint32(data[0:4]))
		lumpIdx := int32(binary.LittleEndian.Uint32(data[4:8]))
		version := int32(binary.LittleEndian.Uint32(data[8:12]))
		mapRev := int32(binary.LittleEndian.Uint32(data[12:16]))
		payload := data[16:]

		if lumpIdx < 0 || int(lumpIdx) >= len(dir.Lumps) {
			logger.Warn("overlay.lumpfile.bad_index", observability.String("file", name), observability.Int("lump_index", int(lumpIdx)))
			continue
		}

		dir.Lumps[lumpIdx].Data = payload
		dir.Lumps[lumpIdx].Offset = ofs
		dir.Lumps[lumpIdx].Length = int32(len(payload))
		dir.Lumps[lumpIdx].Version = version
		dir.Lumps[lumpIdx].ParentPath = name
		dir.Header.MapRevision = mapRev

		if lump.Type(lumpIdx) == lump.GameLump {
			res.GameLumpReplaced = true
		}
		res.AppliedCount++
	}

	return res, nil
}

// titanfallEntitySuffixes names the five Titanfall entity overlay files, in
// concatenation order.
var titanfallEntitySuffixes = []string{"env", "fx", "script", "snd", "spawn"}

const titanfallEntityPreambleSize = 11

// ApplyTitanfallOverlays applies the two Titanfall sibling-file mechanisms:
// per-lump .bsp_lump files (whole-buffer replacement) and the five .ent
// entity overlay files (concatenated onto the entity lump).
func ApplyTitanfallOverlays(ctx context.Context, dir *lump.Directory, baseName string, fs FileSystem, logger observability.Logger) (Result, error) {
	logger = defaultLogger(logger)
	var res Result

	for idx := range dir.Lumps {
		name := fmt.Sprintf("%s.bsp.%04x.bsp_lump", baseName, idx)
		rc, err := fs.Open(name)
		if err != nil {
			continue
		}
		data, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr != nil {
			return res, fmt.Errorf("%w: reading %s: %v", bsperr.ErrIoFailure, name, readErr)
		}
		dir.Lumps[idx].Data = data
		dir.Lumps[idx].Length = int32(len(data))
		dir.Lumps[idx].ParentPath = name
		res.AppliedCount++
	}

	if int(lump.Entities) >= len(dir.Lumps) {
		return res, nil
	}
	entityData := trimTrailingNUL(dir.Lumps[lump.Entities].Data)
	changed := false

	for _, suffix := range titanfallEntitySuffixes {
		name := fmt.Sprintf("%s_%s.ent", baseName, suffix)
		rc, err := fs.Open(name)
		if err != nil {
			continue
		}
		raw, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr != nil {
			return res, fmt.Errorf("%w: reading %s: %v", bsperr.ErrIoFailure, name, readErr)
		}
		if len(raw) < titanfallEntityPreambleSize {
			logger.Warn("overlay.entfile.too_short", observability.String("file", name))
			continue
		}
		payload := trimTrailingNUL(raw[titanfallEntityPreambleSize:])
		entityData = append(entityData, payload...)
		changed = true
		res.AppliedCount++
	}

	if changed {
		entityData = append(entityData, 0)
		dir.Lumps[lump.Entities].Data = entityData
		dir.Lumps[lump.Entities].Length = int32(len(entityData))
	}

	return res, nil
}

func trimTrailingNUL(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] != 0 {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	out := make([]byte, len(b)-1)
	copy(out, b[:len(b)-1])
	return out
}
