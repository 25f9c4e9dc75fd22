// Package stream implements the stream engine (spec.md §4.1): the
// translation layer between a byte buffer and a sequence of frame-object
// structures — header handshake, length-prefixed structure framing,
// pointer-reference staging, and filter application.
package stream

import (
	"fmt"
	"os"

	"github.com/gwframe/frame/buffer"
	"github.com/gwframe/frame/checksum"
	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/filter"
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/internal/fixup"
	"github.com/gwframe/frame/internal/options"
	"github.com/gwframe/frame/registry"
	"github.com/gwframe/frame/wire"
)

// Mode selects how a Stream is opened (spec.md §4.1 "open(path, mode, ...)").
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeReadWrite
)

// Whence selects Seek's reference point, mirroring io.Seeker.
type Whence int

const (
	SeekStart Whence = iota
	SeekCurrent
	SeekEnd
)

// Stream is one open frame file: a buffer.Buffer backend, the parsed or
// chosen file header, the pending filter chain, and the reference-tracking
// state the registry's codecs consult (spec.md §4.1, §4.2).
type Stream struct {
	path string
	mode Mode
	buf  buffer.Buffer
	file *os.File // nil for read streams backed by an in-memory copy

	header wire.FileHeader
	pos    int64

	chain   filter.Chain
	fileCRC *checksum.FileCRC

	tracker *fixup.Tracker

	// nextInstanceID and instanceIDs implement the write-side instance-id
	// assignment described in DESIGN.md's stream entry: ids are opaque
	// writer-chosen counters, not byte offsets, so a reference can be
	// assigned an id before its target is physically written.
	nextInstanceID map[format.ClassID]uint32
	instanceIDs    map[frameobj.Object]uint32
	written        map[frameobj.Object]bool

	wroteAnyStructure bool
	errored           bool
}

// Open opens path in the given mode (spec.md §4.1 "open(path, mode,
// [bufsize], [mmap])"). Read and read-write streams parse the file header
// immediately; write streams emit a fresh header for the host's natural
// word sizes.
func Open(path string, mode Mode, opts ...Option) (*Stream, error) {
	cfg := defaultConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	s := &Stream{
		path:           path,
		mode:           mode,
		tracker:        fixup.NewTracker(path),
		fileCRC:        checksum.NewFileCRC(),
		nextInstanceID: make(map[format.ClassID]uint32),
		instanceIDs:    make(map[frameobj.Object]uint32),
		written:        make(map[frameobj.Object]bool),
	}
	s.chain.Add(s.fileCRC)

	switch mode {
	case ModeWrite:
		if err := s.openForWrite(path, cfg); err != nil {
			return nil, err
		}
	case ModeRead:
		if err := s.openForRead(path, cfg); err != nil {
			return nil, err
		}
	case ModeReadWrite:
		if err := s.openForReadWrite(path); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("stream: invalid mode %d", mode)
	}

	return s, nil
}

func (s *Stream) openForWrite(path string, cfg *config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}
	s.file = f
	s.buf = buffer.NewPagedBuffer()

	engine := endian.GetLittleEndianEngine()
	if !endian.IsNativeLittleEndian() {
		engine = endian.GetBigEndianEngine()
	}

	s.header = wire.NewFileHeader(format.Current, cfg.libraryName, engine)
	hdrBytes, err := s.header.Bytes()
	if err != nil {
		return err
	}

	if _, err := s.buf.WriteAt(hdrBytes, 0); err != nil {
		return err
	}
	s.feedFileCRC(hdrBytes, 0)
	s.pos = int64(len(hdrBytes))

	return nil
}

// openForRead prefers a memory-mapped backend (spec.md §4.1 "Memory-mapped
// I/O is a hint"), falling back to a buffered read of the whole file when
// mmap is declined or the path isn't a regular file.
func (s *Stream) openForRead(path string, cfg *config) error {
	if cfg.useMMap {
		if mb, err := buffer.OpenMapped(path); err == nil {
			s.buf = mb
		}
	}

	if s.buf == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
		}
		s.buf = buffer.NewPagedBufferFromBytes(data)
	}

	return s.parseHeader()
}

func (s *Stream) openForReadWrite(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}
	s.file = f

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}
	s.buf = buffer.NewPagedBufferFromBytes(data)

	return s.parseHeader()
}

func (s *Stream) parseHeader() error {
	probe := make([]byte, wire.FileHeaderMinSize+32)
	n, err := s.buf.ReadAt(probe, 0)
	if err != nil && n == 0 {
		return fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}

	h, consumed, err := wire.ParseFileHeader(probe[:n])
	if err != nil {
		return err
	}

	s.header = h
	s.pos = int64(consumed)

	return nil
}

func (s *Stream) feedFileCRC(data []byte, windowStart int64) {
	_, _ = s.fileCRC.PubFilter(data, windowStart)
}

// Endianness returns the byte-order engine in effect for this stream.
func (s *Stream) Endianness() endian.EndianEngine {
	return s.header.Engine
}

// WordSizes returns the header's declared integer/float widths.
func (s *Stream) WordSizes() (int2, int4, int8, float4, float8 uint8) {
	return s.header.Int2Size, s.header.Int4Size, s.header.Int8Size, s.header.Float4Size, s.header.Float8Size
}

// Tell returns the stream's current byte position.
func (s *Stream) Tell() int64 {
	return s.pos
}

// Seek repositions the stream (spec.md §4.1 "tell()/seek(offset,
// whence)"). Write streams refuse a seek that lands before the current
// position once any structure has been emitted (spec.md's monotone
// framing invariant for writers).
func (s *Stream) Seek(offset int64, whence Whence) (int64, error) {
	var target int64
	switch whence {
	case SeekStart:
		target = offset
	case SeekCurrent:
		target = s.pos + offset
	case SeekEnd:
		target = s.buf.Len() + offset
	default:
		return 0, fmt.Errorf("stream: invalid whence %d", whence)
	}

	if target < 0 {
		return 0, fmt.Errorf("stream: negative seek target %d", target)
	}

	if s.mode != ModeRead && s.wroteAnyStructure && target < s.pos {
		return 0, errs.ErrSeekBackward
	}

	s.pos = target

	return s.pos, nil
}

// ReadRawAt reads len(p) bytes directly from the backing buffer at offset
// off, bypassing structure framing. Used by the toc package's position-cache
// lookup (spec.md §4.3 "Position cache"), which seeks straight to a byte
// region recorded relative to end-of-file rather than walking structures.
func (s *Stream) ReadRawAt(p []byte, off int64) (int, error) {
	return s.buf.ReadAt(p, off)
}

// WriteRawAt writes p directly to the backing buffer at offset off,
// bypassing structure framing. Used when emitting the TOC's position-cache
// block, which is not itself framed as a structure.
func (s *Stream) WriteRawAt(p []byte, off int64) (int, error) {
	return s.buf.WriteAt(p, off)
}

// Len returns the backing buffer's current extent in bytes.
func (s *Stream) Len() int64 {
	return s.buf.Len()
}

// WriteRaw writes p at the stream's current position, bypassing structure
// framing but still feeding the installed filter chain — so the whole-file
// checksum and any other installed filter see these bytes — and advances
// the position. Used for on-disk blocks that are not themselves framed as
// structures, such as the TOC's positions-cache block.
func (s *Stream) WriteRaw(p []byte) error {
	if s.mode == ModeRead {
		return fmt.Errorf("stream: %w: cannot write on a read-only stream", errs.ErrDomain)
	}

	start := s.pos
	if _, err := s.buf.WriteAt(p, start); err != nil {
		s.errored = true
		return fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}
	if err := s.chain.Walk(p, start); err != nil {
		s.errored = true
		return err
	}

	s.pos = start + int64(len(p))
	s.wroteAnyStructure = true

	return nil
}

// FileChecksum returns the whole-file CRC-32 accumulated so far over every
// byte fed through the stream's filter chain (spec.md §4.4 "File
// checksum"). Read just before the end-of-file record is written, this
// excludes the record's own checksum slot, matching the spec's "every byte
// of the file except the file-checksum slot in the end-of-file record
// itself."
func (s *Stream) FileChecksum() uint32 {
	return s.fileCRC.Sum()
}

// AddFilter installs f, pointed at the stream's current position (spec.md
// §4.1 "on install, a filter is pointed at the current read/write
// position"). Rejects rewriting filters over a read-only (memory-mapped)
// buffer (spec.md §9 Open Question (b)).
func (s *Stream) AddFilter(f filter.Filter) error {
	if r, ok := f.(filter.Rewriting); ok && r.Rewrites() && s.buf.ReadOnly() {
		return fmt.Errorf("stream: %w: cannot install rewriting filter over read-only buffer", errs.ErrDomain)
	}

	s.chain.Add(f)

	return nil
}

// RemoveFilter uninstalls f (spec.md §4.1 "on removal it is flushed with
// the pending tail window"). Every structure read or written has already
// been walked through the chain, so no bytes are pending: the final flush
// is an empty window at the current position.
func (s *Stream) RemoveFilter(f filter.Filter) error {
	return s.chain.Remove(f, nil, s.pos)
}

// Tracker exposes the stream's instance-id/fixup table for the registry's
// decode/encode closures (spec.md §4.2's "stream's instance-id table").
func (s *Stream) Tracker() *fixup.Tracker {
	return s.tracker
}

// Context returns a registry.Context bound to this stream's engine,
// tracker, and write-side instance-id resolver.
func (s *Stream) Context() *registry.Context {
	return &registry.Context{
		Engine:       s.header.Engine,
		Tracker:      s.tracker,
		Path:         s.path,
		InstanceIDOf: s.instanceIDOf,
	}
}

func (s *Stream) instanceIDOf(obj frameobj.Object) (uint32, error) {
	if id, ok := s.instanceIDs[obj]; ok {
		return id, nil
	}

	return s.AssignInstanceID(obj), nil
}

// AssignInstanceID reserves an instance-id for obj if it doesn't already
// have one. Because references are (class-id, instance-id) pairs rather
// than byte offsets, an id may be reserved before obj itself is written
// (spec.md §4.1 "Write-side pointer emission"; see DESIGN.md for the
// offset-vs-instance-id simplification this stream makes).
func (s *Stream) AssignInstanceID(obj frameobj.Object) uint32 {
	if id, ok := s.instanceIDs[obj]; ok {
		return id
	}

	class := obj.ClassID()
	s.nextInstanceID[class]++
	id := s.nextInstanceID[class]
	s.instanceIDs[obj] = id

	return id
}

// Close finalizes the stream: write streams flush their buffer to disk;
// all modes release the underlying resources. Returns ErrDanglingReference
// if any object assigned an instance-id was never written (spec.md §4.1
// "every reference target must have been written").
func (s *Stream) Close() error {
	defer func() {
		if s.file != nil {
			_ = s.file.Close()
		}
		if s.buf != nil {
			_ = s.buf.Close()
		}
	}()

	if s.mode != ModeRead {
		for obj := range s.instanceIDs {
			if !s.written[obj] {
				return errs.NewReferenceError(errs.ErrDanglingReference, s.path, int16(obj.ClassID()), s.instanceIDs[obj])
			}
		}

		if pb, ok := s.buf.(*buffer.PagedBuffer); ok && s.file != nil {
			if _, err := s.file.WriteAt(pb.Bytes(), 0); err != nil {
				return fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
			}
		}
	}

	return nil
}
