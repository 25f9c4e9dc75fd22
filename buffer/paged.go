package buffer

import (
	"errors"

	"github.com/gwframe/frame/internal/pool"
)

// ErrReadOnly is returned by WriteAt on a read-only Buffer backend.
var ErrReadOnly = errors.New("buffer: read-only backend")

// PagedBuffer is the default Buffer backend: a single growable
// pool.ByteBuffer, suitable for files being written from scratch or read
// sequentially. Grows on demand via internal/pool's buffer-growth
// strategy.
type PagedBuffer struct {
	bb *pool.ByteBuffer
}

var _ Buffer = (*PagedBuffer)(nil)

// NewPagedBuffer creates an empty, writable PagedBuffer.
func NewPagedBuffer() *PagedBuffer {
	return &PagedBuffer{bb: pool.GetFrameBuffer()}
}

// NewPagedBufferFromBytes creates a PagedBuffer seeded with existing
// content, e.g. a file already read fully into memory.
func NewPagedBufferFromBytes(data []byte) *PagedBuffer {
	bb := pool.GetFrameBuffer()
	bb.MustWrite(data)

	return &PagedBuffer{bb: bb}
}

// ReadAt implements Buffer.
func (p *PagedBuffer) ReadAt(dst []byte, off int64) (int, error) {
	if off < 0 || off > int64(p.bb.Len()) {
		return 0, errors.New("buffer: offset out of range")
	}

	n := copy(dst, p.bb.Bytes()[off:])
	if n < len(dst) {
		return n, errors.New("buffer: short read")
	}

	return n, nil
}

// WriteAt implements Buffer, growing the underlying buffer as needed.
func (p *PagedBuffer) WriteAt(src []byte, off int64) (int, error) {
	end := off + int64(len(src))
	if end > int64(p.bb.Len()) {
		p.bb.ExtendOrGrow(int(end - int64(p.bb.Len())))
	}

	copy(p.bb.Slice(int(off), int(end)), src)

	return len(src), nil
}

// Len implements Buffer.
func (p *PagedBuffer) Len() int64 {
	return int64(p.bb.Len())
}

// Truncate implements Buffer.
func (p *PagedBuffer) Truncate(n int64) error {
	if n < 0 {
		return errors.New("buffer: negative truncate length")
	}

	if n <= int64(p.bb.Len()) {
		p.bb.SetLength(int(n))
		return nil
	}

	p.bb.ExtendOrGrow(int(n - int64(p.bb.Len())))

	return nil
}

// ReadOnly implements Buffer; PagedBuffer always accepts writes.
func (p *PagedBuffer) ReadOnly() bool {
	return false
}

// Bytes exposes the current contents, e.g. for handing a completed file to
// os.WriteFile. The returned slice is only valid until the next WriteAt or
// Truncate call that reallocates.
func (p *PagedBuffer) Bytes() []byte {
	return p.bb.Bytes()
}

// Close returns the backing buffer to its pool.
func (p *PagedBuffer) Close() error {
	pool.PutFrameBuffer(p.bb)
	p.bb = nil

	return nil
}
