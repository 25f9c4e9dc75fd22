package wire

import (
	"math"

	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
)

// FileHeader is the fixed-plus-one-string header at the start of every
// Frame file (spec.md §6 "File header").
type FileHeader struct {
	Version        format.Version // data-format version (3-8)
	LibraryMinor   uint8
	Int2Size       uint8
	Int4Size       uint8
	Int8Size       uint8
	Float4Size     uint8
	Float8Size     uint8
	LibraryName    string
	Engine         endian.EndianEngine // detected (read) or chosen (write) byte order
}

// NewFileHeader creates a header describing the host's natural word sizes
// and the given data-format version, ready to be written.
func NewFileHeader(version format.Version, libraryName string, engine endian.EndianEngine) FileHeader {
	return FileHeader{
		Version:      version,
		LibraryMinor: 0,
		Int2Size:     Int2Size,
		Int4Size:     Int4Size,
		Int8Size:     Int8Size,
		Float4Size:   Float4Size,
		Float8Size:   Float8Size,
		LibraryName:  libraryName,
		Engine:       engine,
	}
}

// Bytes serializes the header, including the variable-length library-name
// string, in h.Engine's byte order.
func (h FileHeader) Bytes() ([]byte, error) {
	if len(h.LibraryName) > MaxLibraryNameLen {
		return nil, errs.NewOffsetError(errs.ErrFormat, "", 0).
			WithExpected(MaxLibraryNameLen, len(h.LibraryName))
	}

	buf := make([]byte, 0, FileHeaderMinSize+2+len(h.LibraryName)+1)
	buf = append(buf, Magic[:]...)
	buf = h.Engine.AppendUint16(buf, endian.HeaderSentinel)
	buf = append(buf, byte(h.Version), h.LibraryMinor,
		h.Int2Size, h.Int4Size, h.Int8Size, h.Float4Size, h.Float8Size)
	buf = h.Engine.AppendUint16(buf, SentinelInt2)
	buf = h.Engine.AppendUint32(buf, SentinelInt4)
	buf = h.Engine.AppendUint64(buf, SentinelInt8)
	buf = h.Engine.AppendUint32(buf, math.Float32bits(SentinelFloat4))
	buf = h.Engine.AppendUint64(buf, math.Float64bits(SentinelFloat8))
	buf = AppendString(buf, h.Engine, h.LibraryName)

	return buf, nil
}

// ParseFileHeader decodes a FileHeader from raw bytes, detecting byte order
// from the sentinel field and cross-checking it against the integer and
// float order-probe sentinels. Returns a Format error if the magic is wrong,
// the probes disagree, or a declared word size isn't the one this library
// supports (spec.md §7 "Format").
func ParseFileHeader(data []byte) (FileHeader, int, error) {
	if len(data) < FileHeaderMinSize {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrFormat, "", 0).
			WithExpected(FileHeaderMinSize, len(data))
	}

	if [5]byte(data[0:5]) != Magic {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrBadMagic, "", 0).
			WithExpected(Magic, data[0:5])
	}

	engine, ok := endian.ProbeOrder([2]byte(data[5:7]))
	if !ok {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrBadMagic, "", 5).
			WithExpected(endian.HeaderSentinel, data[5:7])
	}

	h := FileHeader{
		Engine:       engine,
		Version:      format.Version(data[7]),
		LibraryMinor: data[8],
		Int2Size:     data[9],
		Int4Size:     data[10],
		Int8Size:     data[11],
		Float4Size:   data[12],
		Float8Size:   data[13],
	}

	if h.Int2Size != Int2Size || h.Int4Size != Int4Size || h.Int8Size != Int8Size ||
		h.Float4Size != Float4Size || h.Float8Size != Float8Size {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrUnknownWordSize, "", 9)
	}

	off := 14
	if engine.Uint16(data[off:off+2]) != SentinelInt2 {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrFormat, "", int64(off))
	}
	off += 2
	if engine.Uint32(data[off:off+4]) != SentinelInt4 {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrFormat, "", int64(off))
	}
	off += 4
	if engine.Uint64(data[off:off+8]) != SentinelInt8 {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrFormat, "", int64(off))
	}
	off += 8
	if math.Float32frombits(engine.Uint32(data[off:off+4])) != SentinelFloat4 {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrFormat, "", int64(off))
	}
	off += 4
	if math.Float64frombits(engine.Uint64(data[off:off+8])) != SentinelFloat8 {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrFormat, "", int64(off))
	}
	off += 8

	name, nameLen, err := ParseString(data[off:], engine)
	if err != nil {
		return FileHeader{}, 0, err
	}
	h.LibraryName = name
	off += nameLen

	if !h.Version.Valid() {
		return FileHeader{}, 0, errs.NewOffsetError(errs.ErrUnimplemented, "", 7).
			WithExpected("3..8", h.Version)
	}

	return h, off, nil
}
