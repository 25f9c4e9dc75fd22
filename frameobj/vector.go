package frameobj

import (
	"fmt"
	"math"

	"github.com/gwframe/frame/compress"
	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
)

// Dim is one axis of a Vector's dimension list: the number of samples along
// that axis and its sampling interval, e.g. seconds-per-sample for a
// time-domain channel (spec.md §3 "Typed vector").
type Dim struct {
	Length uint32
	Step   float64 // sampling interval
	Start  float64 // axis start offset
	Unit   string
}

// Vector is the primitive numeric array container used by most payloads
// (spec.md §3 "Typed vector"): an element type tag, a dimension list, a
// compression scheme, and a flat byte payload which is stored filtered
// (compressed) on disk and decompressed on decode.
type Vector struct {
	Name        string
	ElementType format.ElementType
	Dims        []Dim
	Compression format.CompressionType

	// Payload is the decompressed, host-order flat byte payload. Element
	// values are packed contiguously in row-major dimension order.
	Payload []byte
}

var _ Object = (*Vector)(nil)

// ClassID implements Object.
func (v *Vector) ClassID() format.ClassID {
	return format.ClassFrVect
}

// Description implements Object.
func (v *Vector) Description() *Description {
	return vectorDescription
}

var vectorDescription = CacheDescription(NewDescription("FrVect", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "compress", Type: format.ElemInt1U},
	{Name: "type", Type: format.ElemInt1U},
	{Name: "data", Type: format.ElemInt1U},
}))

// ElementCount returns the total number of elements across all dimensions.
func (v *Vector) ElementCount() int {
	n := 1
	for _, d := range v.Dims {
		n *= int(d.Length)
	}

	return n
}

// Validate checks that the payload's decompressed size is consistent with
// the declared element type and dimension list (spec.md §4.5 "Verify":
// "dimension/payload-size consistency for vectors"). The ElemString type is
// variable-length and is not checked here.
func (v *Vector) Validate() error {
	if v.ElementType == format.ElemString {
		return nil
	}

	elemSize := v.ElementType.Size()
	want := v.ElementCount() * elemSize
	if len(v.Payload) != want {
		return errs.NewOffsetError(errs.ErrFormat, "", 0).
			WithExpected(want, len(v.Payload))
	}

	return nil
}

// EncodeBody compresses the payload per v.Compression and appends the
// on-disk body (length-prefixed name with a trailing NUL, element type,
// compression, dimension count, dims, length-prefixed compressed data) to
// buf in engine's byte order.
func (v *Vector) EncodeBody(buf []byte, eng endian.EndianEngine) ([]byte, error) {
	codec, err := compress.CreateCodec(v.Compression, "vector payload")
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(v.Payload)
	if err != nil {
		return nil, fmt.Errorf("frameobj: compressing vector %q: %w", v.Name, err)
	}

	buf = eng.AppendUint16(buf, uint16(len(v.Name)))
	buf = append(buf, v.Name...)
	buf = append(buf, 0)
	buf = append(buf, byte(v.ElementType), byte(v.Compression), byte(len(v.Dims)))
	for _, d := range v.Dims {
		buf = eng.AppendUint32(buf, d.Length)
		buf = eng.AppendUint64(buf, math.Float64bits(d.Step))
		buf = eng.AppendUint64(buf, math.Float64bits(d.Start))
		buf = eng.AppendUint16(buf, uint16(len(d.Unit)))
		buf = append(buf, d.Unit...)
	}
	buf = eng.AppendUint64(buf, uint64(len(compressed)))
	buf = append(buf, compressed...)

	return buf, nil
}

// DecodeVectorBody parses a Vector's on-disk body from data, which must
// hold at least the encoded body (the caller has already stripped the
// structure header and trailing checksum).
func DecodeVectorBody(data []byte, eng endian.EndianEngine) (*Vector, int, error) {
	if len(data) < 2 {
		return nil, 0, errs.NewOffsetError(errs.ErrUnderrun, "", 0)
	}

	nameLen := int(eng.Uint16(data[0:2]))
	off := 2 + nameLen + 1
	if len(data) < off+3 {
		return nil, 0, errs.NewOffsetError(errs.ErrUnderrun, "", int64(off))
	}

	v := &Vector{
		Name:        string(data[2 : 2+nameLen]),
		ElementType: format.ElementType(data[off]),
		Compression: format.CompressionType(data[off+1]),
	}
	ndim := int(data[off+2])
	off += 3

	v.Dims = make([]Dim, ndim)
	for i := range v.Dims {
		if len(data) < off+4+8+8+2 {
			return nil, 0, errs.NewOffsetError(errs.ErrUnderrun, "", int64(off))
		}

		length := eng.Uint32(data[off : off+4])
		off += 4
		step := math.Float64frombits(eng.Uint64(data[off : off+8]))
		off += 8
		start := math.Float64frombits(eng.Uint64(data[off : off+8]))
		off += 8
		unitLen := int(eng.Uint16(data[off : off+2]))
		off += 2
		if len(data) < off+unitLen {
			return nil, 0, errs.NewOffsetError(errs.ErrUnderrun, "", int64(off))
		}
		unit := string(data[off : off+unitLen])
		off += unitLen

		v.Dims[i] = Dim{Length: length, Step: step, Start: start, Unit: unit}
	}

	if len(data) < off+8 {
		return nil, 0, errs.NewOffsetError(errs.ErrUnderrun, "", int64(off))
	}
	compLen := int(eng.Uint64(data[off : off+8]))
	off += 8
	if len(data) < off+compLen {
		return nil, 0, errs.NewOffsetError(errs.ErrUnderrun, "", int64(off))
	}

	codec, err := compress.GetCodec(v.Compression)
	if err != nil {
		return nil, 0, fmt.Errorf("frameobj: decoding vector %q: %w", v.Name, err)
	}

	payload, err := codec.Decompress(data[off : off+compLen])
	if err != nil {
		return nil, 0, fmt.Errorf("frameobj: decompressing vector %q: %w", v.Name, err)
	}
	v.Payload = payload
	off += compLen

	if err := v.Validate(); err != nil {
		return nil, 0, err
	}

	return v, off, nil
}

// Equal implements Object.
func (v *Vector) Equal(other Object) bool {
	o, ok := other.(*Vector)
	if !ok {
		return false
	}

	if v.Name != o.Name || v.ElementType != o.ElementType || v.Compression != o.Compression {
		return false
	}
	if len(v.Dims) != len(o.Dims) {
		return false
	}
	for i := range v.Dims {
		if v.Dims[i] != o.Dims[i] {
			return false
		}
	}

	return string(v.Payload) == string(o.Payload)
}
