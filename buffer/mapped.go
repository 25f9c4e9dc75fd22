package buffer

import (
	"errors"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedBuffer is a read-only Buffer backed by a memory-mapped file,
// suitable for opening large archival frame files without copying their
// full contents into process memory (spec.md §4.6 "Buffer backends":
// "random-access reads over files too large to buffer wholesale").
//
// WriteAt always fails; a stream.Stream opened over a MappedBuffer is
// read-only, and the engine refuses to install a filter.Rewriting plug-in
// against it.
type MappedBuffer struct {
	f    *os.File
	data mmap.MMap
}

var _ Buffer = (*MappedBuffer)(nil)

// OpenMapped memory-maps path read-only.
func OpenMapped(path string) (*MappedBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &MappedBuffer{f: f, data: data}, nil
}

// ReadAt implements Buffer.
func (m *MappedBuffer) ReadAt(dst []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, errors.New("buffer: offset out of range")
	}

	n := copy(dst, m.data[off:])
	if n < len(dst) {
		return n, errors.New("buffer: short read")
	}

	return n, nil
}

// WriteAt implements Buffer; MappedBuffer never accepts writes.
func (m *MappedBuffer) WriteAt(_ []byte, _ int64) (int, error) {
	return 0, ErrReadOnly
}

// Len implements Buffer.
func (m *MappedBuffer) Len() int64 {
	return int64(len(m.data))
}

// Truncate implements Buffer; always fails for a read-only mapping.
func (m *MappedBuffer) Truncate(_ int64) error {
	return ErrReadOnly
}

// ReadOnly implements Buffer.
func (m *MappedBuffer) ReadOnly() bool {
	return true
}

// Close unmaps the file and closes the descriptor.
func (m *MappedBuffer) Close() error {
	if m.data != nil {
		if err := m.data.Unmap(); err != nil {
			m.f.Close()
			return err
		}
	}

	return m.f.Close()
}
