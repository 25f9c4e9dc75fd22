// Package checksum implements the two CRC-32 checks named in spec.md §4.4
// "Checksum Subsystem" as filter.Filter values: a per-structure checksum
// covering one structure's body, and a whole-file checksum accumulated
// across every byte written or read.
//
// Both deliberately use the standard library's hash/crc32 (IEEE polynomial)
// rather than a third-party checksum library: the 4-byte trailing CRC field
// is the literal bit-exact wire format named in spec.md §6, not a pluggable
// algorithm choice, so there is no "swap the implementation" axis for a
// library to serve (see DESIGN.md).
package checksum

import (
	"hash/crc32"
)

// StructureCRC accumulates a CRC-32 over one structure's bytes, from the
// length field through the last field before the trailing checksum slot
// (spec.md §4.4 "Structure checksum").
type StructureCRC struct {
	hash   uint32
	offset int64
	start  bool
}

// NewStructureCRC creates a filter seeded at the given structure-start
// offset.
func NewStructureCRC(startOffset int64) *StructureCRC {
	return &StructureCRC{offset: startOffset}
}

// Offset implements filter.Filter.
func (c *StructureCRC) Offset() int64 {
	return c.offset
}

// PubFilter implements filter.Filter: it folds data into the running CRC
// and advances the tracked offset. It never mutates data.
func (c *StructureCRC) PubFilter(data []byte, windowStart int64) (int, error) {
	if windowStart != c.offset {
		// Non-contiguous window: the engine is re-delivering bytes already
		// seen, or skipped ahead. Resynchronize the tracked offset; data is
		// still folded into the running CRC, so re-delivered bytes count
		// again.
		c.offset = windowStart
	}

	c.hash = crc32.Update(c.hash, crc32.IEEETable, data)
	c.offset += int64(len(data))

	return len(data), nil
}

// Sum returns the accumulated CRC-32.
func (c *StructureCRC) Sum() uint32 {
	return c.hash
}

// Reset clears the accumulated CRC so the filter can be reused for the next
// structure, reseeding its offset.
func (c *StructureCRC) Reset(startOffset int64) {
	c.hash = 0
	c.offset = startOffset
}

// FileCRC accumulates a CRC-32 over every byte of the file except the
// file-checksum slot in the end-of-file record itself (spec.md §4.4 "File
// checksum").
type FileCRC struct {
	hash   uint32
	offset int64
}

// NewFileCRC creates a file-wide checksum filter starting at offset 0.
func NewFileCRC() *FileCRC {
	return &FileCRC{}
}

// Offset implements filter.Filter.
func (c *FileCRC) Offset() int64 {
	return c.offset
}

// PubFilter implements filter.Filter.
func (c *FileCRC) PubFilter(data []byte, windowStart int64) (int, error) {
	if windowStart != c.offset {
		c.offset = windowStart
	}

	c.hash = crc32.Update(c.hash, crc32.IEEETable, data)
	c.offset += int64(len(data))

	return len(data), nil
}

// Sum returns the accumulated whole-file CRC-32.
func (c *FileCRC) Sum() uint32 {
	return c.hash
}
