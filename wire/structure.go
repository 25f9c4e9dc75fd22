package wire

import (
	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
)

// StructureHeader is the fixed prefix of every on-disk structure: total
// length (including this prefix and the trailing checksum), class-id, and
// instance-id (spec.md §3 "Structure").
type StructureHeader struct {
	Length     uint64
	ClassID    format.ClassID
	InstanceID uint32
}

// Bytes serializes the header in engine's byte order.
func (h StructureHeader) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, StructureHeaderSize)
	engine.PutUint64(buf[0:8], h.Length)
	engine.PutUint16(buf[8:10], uint16(h.ClassID))
	engine.PutUint32(buf[10:14], h.InstanceID)

	return buf
}

// ParseStructureHeader decodes a StructureHeader from exactly
// StructureHeaderSize bytes.
func ParseStructureHeader(data []byte, engine endian.EndianEngine) (StructureHeader, error) {
	if len(data) < StructureHeaderSize {
		return StructureHeader{}, errs.NewOffsetError(errs.ErrUnderrun, "", 0).
			WithExpected(StructureHeaderSize, len(data))
	}

	return StructureHeader{
		Length:     engine.Uint64(data[0:8]),
		ClassID:    format.ClassID(engine.Uint16(data[8:10])),
		InstanceID: engine.Uint32(data[10:14]),
	}, nil
}

// RefSlot is the on-disk encoding of one outgoing reference: a (class-id,
// instance-id) pair. An all-zero slot is the designated null reference
// (spec.md §3 "Reference closure").
type RefSlot struct {
	ClassID    format.ClassID
	InstanceID uint32
}

// NullRef is the null reference slot.
var NullRef = RefSlot{}

// IsNull reports whether the slot is the null reference.
func (r RefSlot) IsNull() bool {
	return r.ClassID == 0 && r.InstanceID == 0
}

// Bytes serializes the slot in engine's byte order.
func (r RefSlot) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, RefSlotSize)
	engine.PutUint16(buf[0:2], uint16(r.ClassID))
	engine.PutUint32(buf[2:6], r.InstanceID)

	return buf
}

// ParseRefSlot decodes a RefSlot from exactly RefSlotSize bytes.
func ParseRefSlot(data []byte, engine endian.EndianEngine) (RefSlot, error) {
	if len(data) < RefSlotSize {
		return RefSlot{}, errs.NewOffsetError(errs.ErrUnderrun, "", 0).
			WithExpected(RefSlotSize, len(data))
	}

	return RefSlot{
		ClassID:    format.ClassID(engine.Uint16(data[0:2])),
		InstanceID: engine.Uint32(data[2:6]),
	}, nil
}

// EOFRecord carries the total frame/byte counts, the TOC's seek offset, and
// the whole-file checksum seed (spec.md §3 "End-of-file record").
type EOFRecord struct {
	NFrames      uint32
	NTotalBytes  uint64
	SeekTOC      uint64
	ChecksumSeed uint32
}

// Bytes serializes the record body (the structure framing itself is handled
// by the stream engine, not here).
func (r EOFRecord) Bytes(engine endian.EndianEngine) []byte {
	buf := make([]byte, EOFRecordBodySize)
	engine.PutUint32(buf[0:4], r.NFrames)
	engine.PutUint64(buf[4:12], r.NTotalBytes)
	engine.PutUint64(buf[12:20], r.SeekTOC)
	engine.PutUint32(buf[20:24], r.ChecksumSeed)

	return buf
}

// ParseEOFRecord decodes an EOFRecord body.
func ParseEOFRecord(data []byte, engine endian.EndianEngine) (EOFRecord, error) {
	if len(data) < EOFRecordBodySize {
		return EOFRecord{}, errs.NewOffsetError(errs.ErrUnderrun, "", 0).
			WithExpected(EOFRecordBodySize, len(data))
	}

	return EOFRecord{
		NFrames:      engine.Uint32(data[0:4]),
		NTotalBytes:  engine.Uint64(data[4:12]),
		SeekTOC:      engine.Uint64(data[12:20]),
		ChecksumSeed: engine.Uint32(data[20:24]),
	}, nil
}
