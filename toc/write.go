package toc

import (
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/stream"
	"github.com/gwframe/frame/wire"
)

// WriteTrailer writes this TOC's positions-cache block, the TOC structure
// itself, and the end-of-file record to s, in the on-disk order spec.md §4.3
// names: positions cache, then the FrTOC structure whose
// positions_cache_offset field points back to it ("from end-of-file"),
// then the end-of-file record whose seek_toc field points at the FrTOC
// structure. Call exactly once, after every frame has been written, with s
// positioned at the stream's current end.
func (t *TOC) WriteTrailer(s *stream.Stream) error {
	engine := s.Endianness()

	cacheBytes := t.EncodePositionsCache(engine)
	cacheStart := s.Tell()
	if err := s.WriteRaw(cacheBytes); err != nil {
		return err
	}

	// The offset field is fixed-width, so the eager body's length does not
	// depend on its value — encode once with a placeholder to learn the
	// structure's size, then again with the real value once every
	// downstream size is known.
	t.SetPositionsCacheOffset(0)
	body := t.Encode(engine)

	tocStart := s.Tell()
	tocStructSize := int64(wire.StructureHeaderSize + len(body) + wire.StructureChecksumSize)
	eofStart := tocStart + tocStructSize
	eofStructSize := int64(wire.StructureHeaderSize + wire.EOFRecordBodySize + wire.StructureChecksumSize)
	finalLen := eofStart + eofStructSize

	t.SetPositionsCacheOffset(uint64(finalLen - cacheStart))
	body = t.Encode(engine)

	if err := s.WriteStructure(format.ClassFrTOC, 1, func(buf []byte) ([]byte, error) {
		return append(buf, body...), nil
	}); err != nil {
		return err
	}

	eof := wire.EOFRecord{
		NFrames:      uint32(t.FrameCount()),
		NTotalBytes:  uint64(finalLen),
		SeekTOC:      uint64(tocStart),
		ChecksumSeed: s.FileChecksum(),
	}

	return s.WriteStructure(format.ClassFrEndOfFile, 1, func(buf []byte) ([]byte, error) {
		return append(buf, eof.Bytes(engine)...), nil
	})
}
