package bspio

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedSource owns the file handle and memory map backing a BspFile until
// it is released or forced into an owned buffer. The transition from mapped
// to owned is one-way per session, per the resource model.
type MappedSource struct {
	file  *os.File
	m     mmap.MMap
	owned []byte
}

// OpenMapped memory-maps path read-only. The caller must Close it.
func OpenMapped(path string) (*MappedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bspio: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bspio: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		// mmap-go rejects zero-length mappings; fall back to an owned
		// empty buffer so short/empty files still produce a clean
		// InvalidHeader error downstream instead of an I/O error here.
		f.Close()
		return &MappedSource{owned: []byte{}}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("bspio: mmap %s: %w", path, err)
	}
	return &MappedSource{file: f, m: m}, nil
}

// Bytes returns the current view: the owned buffer if Own has been called,
// otherwise the live memory map.
func (s *MappedSource) Bytes() []byte {
	if s.owned != nil {
		return s.owned
	}
	return []byte(s.m)
}

// Mapped reports whether the source is still a zero-copy memory map.
func (s *MappedSource) Mapped() bool { return s.owned == nil && s.m != nil }

// Own copies the current view into a freshly allocated buffer and releases
// the underlying memory map and file handle. Required before XOR-decrypting
// in place or before any write. Idempotent.
func (s *MappedSource) Own() ([]byte, error) {
	if s.owned != nil {
		return s.owned, nil
	}
	buf := make([]byte, len(s.m))
	copy(buf, s.m)
	if err := s.m.Unmap(); err != nil {
		return nil, fmt.Errorf("bspio: unmap during ownership transition: %w", err)
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			return nil, fmt.Errorf("bspio: close during ownership transition: %w", err)
		}
		s.file = nil
	}
	s.m = nil
	s.owned = buf
	return s.owned, nil
}

// Close releases the memory map and/or file handle. Safe to call after Own.
func (s *MappedSource) Close() error {
	var err error
	if s.m != nil {
		err = s.m.Unmap()
		s.m = nil
	}
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
		s.file = nil
	}
	return err
}
