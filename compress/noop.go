package compress

// NoOpCodec bypasses a vector's payload without compression.
//
// Selected by format.CompressionNone — the default for vectors whose
// payload is already small or incompressible (raw ADC samples, short
// string arrays).
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a codec that passes data through unchanged, without
// copying.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns data unchanged, without copying.
//
// The returned slice shares the input's underlying memory; callers must not
// mutate data afterward if they retain the result.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data unchanged, without copying.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
