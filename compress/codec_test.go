package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/gwframe/frame/format"
	"github.com/stretchr/testify/require"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCodec(),
		"LZ4":  NewLZ4Codec(),
		"S2":   NewS2Codec(),
		"Zstd": NewZstdCodec(),
	}
}

func TestGetCodec(t *testing.T) {
	codec, err := GetCodec(format.CompressionLZ4)
	require.NoError(t, err)
	require.NotNil(t, codec)

	_, err = GetCodec(format.CompressionType(0xFF))
	require.Error(t, err)
}

func TestCreateCodec(t *testing.T) {
	codec, err := CreateCodec(format.CompressionZstd, "vector payload")
	require.NoError(t, err)
	require.NotNil(t, codec)

	_, err = CreateCodec(format.CompressionType(0xFF), "vector payload")
	require.ErrorContains(t, err, "vector payload")
}

func TestNoOpCodec_RoundTrip(t *testing.T) {
	codec := NewNoOpCodec()

	data := []byte("FrVect payload bytes")
	compressed, err := codec.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Same(t, &compressed[0], &decompressed[0])
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"small_text", []byte("Hello, detector!")},
		{"repeated_pattern", bytes.Repeat([]byte("ABCD"), 100)},
		{"binary_data", []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{"single_byte", []byte{0x42}},
		{"medium_payload", bytes.Repeat([]byte("sample 1234567890 amplitude 3.14159"), 256)},
		{"highly_compressible", make([]byte, 1<<20)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_LargeExpansionRatio(t *testing.T) {
	original := make([]byte, 1<<20)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(original)
			require.NoError(t, err)

			if codecName == "NoOp" {
				require.Equal(t, len(original), len(compressed))
			} else {
				require.Less(t, len(compressed), len(original)/10)
			}

			decompressed, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, original, decompressed)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalid := [][]byte{
		{0xFF, 0xFF, 0xFF, 0xFF},
		[]byte("this is not compressed data"),
	}

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue
		}

		t.Run(codecName, func(t *testing.T) {
			for i, data := range invalid {
				t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
					_, err := codec.Decompress(data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const n = 20
	data := []byte("concurrent compression test data with some content to compress")

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			done := make(chan error, n)
			for range n {
				go func() {
					compressed, err := codec.Compress(data)
					if err != nil {
						done <- err
						return
					}
					_, err = codec.Decompress(compressed)
					done <- err
				}()
			}
			for range n {
				require.NoError(t, <-done)
			}
		})
	}
}
