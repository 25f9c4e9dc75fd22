// Package wire defines the bit-exact on-disk layout named in spec.md §6
// "External interfaces": the file header, structure framing, reference
// slots, and TOC/end-of-file record shapes. It has no knowledge of class
// semantics — that belongs to registry and frameobj — only of byte layout.
package wire

// Magic is the fixed 5-byte file-header magic string.
var Magic = [5]byte{'I', 'G', 'W', 'D', 0}

const (
	// FileHeaderMinSize is the fixed portion of the file header before the
	// variable-length library-name string.
	FileHeaderMinSize = 5 /*magic*/ + 2 /*sentinel*/ + 1 /*version*/ + 1 /*minor*/ +
		5 /*word sizes*/ + 2 + 4 + 8 + 4 + 8 /*order-probe sentinels*/

	// MaxLibraryNameLen bounds the library-name string per spec.md §6.
	MaxLibraryNameLen = 160

	// StructureHeaderSize is the fixed prefix of every structure: 8-byte
	// length, 2-byte class-id, 4-byte instance-id.
	StructureHeaderSize = 8 + 2 + 4

	// StructureChecksumSize is the trailing per-structure CRC-32.
	StructureChecksumSize = 4

	// RefSlotSize is the size of one (class-id, instance-id) reference slot.
	RefSlotSize = 2 + 4

	// EOFRecordBodySize is the fixed body of the end-of-file record:
	// n_frames(4) + n_total_bytes(8) + seek_toc(8) + checksum_seed(4).
	EOFRecordBodySize = 4 + 8 + 8 + 4
)

// Integer and float word sizes declared in the file header. The spec fixes
// these at 2/4/8 for integers and 4/8 for floats; the header still encodes
// them explicitly so a reader can detect an incompatible future revision.
const (
	Int2Size   = 2
	Int4Size   = 4
	Int8Size   = 8
	Float4Size = 4
	Float8Size = 8
)

// Order-probe sentinel values used to cross-check the header's declared
// byte order against independently-encoded integer and float sentinels
// (spec.md §4.1 "Header handshake": "Implementations must support
// heterogeneous hosts").
const (
	SentinelInt2   uint16  = 0x1234
	SentinelInt4   uint32  = 0x12345678
	SentinelInt8   uint64  = 0x123456789ABCDEF0
	SentinelFloat4 float32 = 1.0
	SentinelFloat8 float64 = 1.0
)
