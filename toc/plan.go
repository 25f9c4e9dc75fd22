package toc

import (
	"github.com/gwframe/frame/checksum"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/stream"
	"github.com/gwframe/frame/wire"
)

// Plan wraps a TOC plus its lazily-materialized position caches, reusable
// across files that share the same frame layout (spec.md §4.3 "Plan
// reuse"). A Plan is bound to the TOC's dictionary (names, rows, per-frame
// blocks) but not to any particular stream; callers pass the stream each
// query touches.
type Plan struct {
	toc *TOC
	eof wire.EOFRecord
}

// TOC returns the plan's underlying table of contents.
func (p *Plan) TOC() *TOC {
	return p.toc
}

// FrameCount returns the plan's frame count, from the end-of-file record.
func (p *Plan) FrameCount() int {
	return int(p.eof.NFrames)
}

// Load builds a Plan for s. If seed is non-nil and s's end-of-file record
// reports the same frame count as seed's, the new TOC is parsed (to
// compare run identifiers) and, if those also match, seed's TOC is reused
// wholesale with its position caches marked for refresh against s (spec.md
// §4.3 "Plan reuse": "the engine reads only the end-of-file record (cheap)
// and compares: frame count and the list of run identifiers ... If equal,
// the engine reuses the seed plan's TOC entirely and skips the TOC parse;
// otherwise it parses the new TOC and discards the seed").
//
// The one unavoidable departure from "skips the TOC parse": confirming run
// identifiers requires decoding the new file's TOC eager body (never its
// positions cache) regardless of outcome, since the end-of-file record
// alone carries only the frame count, not per-frame run numbers.
func Load(s *stream.Stream, seed *Plan) (*Plan, error) {
	eof, err := readEOFRecord(s)
	if err != nil {
		return nil, err
	}

	if seed == nil || seed.toc.FrameCount() != int(eof.NFrames) {
		newTOC, err := decodeTOCAt(s, eof)
		if err != nil {
			return nil, err
		}

		return &Plan{toc: newTOC, eof: eof}, nil
	}

	newTOC, err := decodeTOCAt(s, eof)
	if err != nil {
		return nil, err
	}

	if !runNumbersEqual(seed.toc.RunNumbers(), newTOC.RunNumbers()) {
		return &Plan{toc: newTOC, eof: eof}, nil
	}

	reused := seed.toc
	reused.resetPositionCaches()

	return &Plan{toc: reused, eof: eof}, nil
}

func runNumbersEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// resetPositionCaches marks every channel table's lazily-materialized
// position cache as stale, keeping the name→row dictionary intact (spec.md
// §4.3 "After reuse, the per-channel position caches are marked 'needs
// reset' and are refreshed on first use against the new file's positions
// array").
func (t *TOC) resetPositionCaches() {
	for _, ct := range t.channels {
		ct.flat = nil
		ct.flatLoaded = false
		ct.positions = make([][]int64, ct.rowCount())
	}
}

// readEOFRecord reads the fixed-size end-of-file record directly from the
// last bytes of the stream's backing buffer, without disturbing the
// stream's sequential read position (spec.md §4.3 "the engine reads only
// the end-of-file record (cheap)").
func readEOFRecord(s *stream.Stream) (wire.EOFRecord, error) {
	const size = wire.StructureHeaderSize + wire.EOFRecordBodySize + wire.StructureChecksumSize

	start := s.Len() - int64(size)
	if start < 0 {
		return wire.EOFRecord{}, errs.ErrFormat
	}

	buf := make([]byte, size)
	if _, err := s.ReadRawAt(buf, start); err != nil {
		return wire.EOFRecord{}, err
	}

	hdr, err := wire.ParseStructureHeader(buf[:wire.StructureHeaderSize], s.Endianness())
	if err != nil {
		return wire.EOFRecord{}, err
	}
	if hdr.ClassID != format.ClassFrEndOfFile {
		return wire.EOFRecord{}, errs.ErrFormat
	}

	body := buf[wire.StructureHeaderSize : wire.StructureHeaderSize+wire.EOFRecordBodySize]

	return wire.ParseEOFRecord(body, s.Endianness())
}

// decodeTOCAt reads and verifies the TOC structure located at eof.SeekTOC,
// bypassing the stream's sequential position and filter chain the way
// readEOFRecord does, then decodes its eager body.
func decodeTOCAt(s *stream.Stream, eof wire.EOFRecord) (*TOC, error) {
	engine := s.Endianness()
	start := int64(eof.SeekTOC)

	hdrBuf := make([]byte, wire.StructureHeaderSize)
	if _, err := s.ReadRawAt(hdrBuf, start); err != nil {
		return nil, err
	}

	hdr, err := wire.ParseStructureHeader(hdrBuf, engine)
	if err != nil {
		return nil, err
	}
	if hdr.ClassID != format.ClassFrTOC {
		return nil, errs.ErrFormat
	}
	if hdr.Length < uint64(wire.StructureHeaderSize+wire.StructureChecksumSize) {
		return nil, errs.ErrUnderrun
	}

	bodyLen := int(hdr.Length) - wire.StructureHeaderSize - wire.StructureChecksumSize
	span := make([]byte, wire.StructureHeaderSize+bodyLen)
	if _, err := s.ReadRawAt(span, start); err != nil {
		return nil, err
	}

	trailer := make([]byte, wire.StructureChecksumSize)
	if _, err := s.ReadRawAt(trailer, start+int64(len(span))); err != nil {
		return nil, err
	}
	stored := engine.Uint32(trailer)

	sCRC := checksum.NewStructureCRC(start)
	if _, err := sCRC.PubFilter(span, start); err != nil {
		return nil, err
	}
	if sCRC.Sum() != stored {
		return nil, errs.NewOffsetError(errs.ErrChecksumMismatch, "", start).WithExpected(sCRC.Sum(), stored)
	}

	return Decode(span[wire.StructureHeaderSize:], engine)
}
