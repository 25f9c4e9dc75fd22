package compress

// ZstdCodec selects format.CompressionZstd: the best compression ratio of
// the supported schemes, at the cost of CPU time. Appropriate for archival
// copies and for vectors whose sample values are slowly varying (strain
// channels, auxiliary monitors) where the ratio gain is largest.
//
// Two build-tagged implementations back this type: zstd_cgo.go links the
// cgo-based libzstd binding when built with cgo enabled and a matching
// build tag; zstd_pure.go is the default, cgo-free path used otherwise.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstd codec using default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
