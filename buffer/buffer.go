// Package buffer provides the stream engine's byte-addressable backends
// (spec.md §4.6 "Buffer backends"): a growable, pool-backed buffer for
// normal read/write access, and a read-only memory-mapped buffer for
// large archival files opened for random-access reads.
package buffer

// Buffer is the byte-addressable storage a stream.Stream reads from and
// writes through. Implementations are not safe for concurrent use; the
// engine serializes access per stream (spec.md §5 "Per-stream
// single-threaded").
//
// A Buffer whose ReadOnly() reports true (as a memory-mapped file's does)
// makes the stream engine reject installing a filter.Rewriting filter
// (e.g. compression) over it.
type Buffer interface {
	// ReadAt reads len(p) bytes starting at offset off, the same contract
	// as io.ReaderAt.
	ReadAt(p []byte, off int64) (int, error)

	// WriteAt writes p at offset off, growing the buffer if needed.
	// Returns ErrReadOnly if the backend does not support mutation.
	WriteAt(p []byte, off int64) (int, error)

	// Len returns the current extent of the buffer in bytes.
	Len() int64

	// Truncate shrinks or grows the buffer's extent to n bytes.
	Truncate(n int64) error

	// ReadOnly reports whether WriteAt always fails. The stream engine
	// consults this before installing a filter.Rewriting plug-in — see
	// filter.Rewriting.
	ReadOnly() bool

	// Close releases any underlying resources (file descriptors, mmap
	// regions).
	Close() error
}
