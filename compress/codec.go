// Package compress implements the codecs a typed vector's compression-scheme
// field (spec.md §3 "Typed vector") may select. The stream engine's filter
// plug-in contract (filter.Filter) is deliberately algorithm-agnostic; this
// package supplies concrete plug-ins so that contract has real
// implementations to exercise (spec.md §1 names only "the compression
// algorithms themselves" as out of scope, not the plug-in slots they fill).
package compress

import (
	"fmt"

	"github.com/gwframe/frame/format"
)

// Compressor compresses a vector's flat byte payload before it is written.
//
// The input is a complete vector payload, already laid out per its element
// type and dimension list. Compression runs over the whole payload in one
// call; vectors are bounded in size and never streamed incrementally.
type Compressor interface {
	// Compress compresses data and returns the result. The input slice is
	// left unmodified; NoOpCodec returns data itself rather than a copy.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a vector's original flat byte payload.
type Decompressor interface {
	// Decompress decompresses data and returns the original payload.
	// Returns an error if data is truncated or was produced by a
	// different codec.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of one compression scheme.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec is a factory function that creates a Codec for the given
// compression scheme.
//
// target names the calling field for error messages (e.g. "vector payload").
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves the built-in Codec for the given compression scheme.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
