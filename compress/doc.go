// Package compress provides the compression codecs a typed vector may
// select via its compression-scheme field (spec.md §3 "Typed vector").
//
// Four schemes are supported:
//
//	None  — passes the payload through unchanged, without copying
//	Zstd  — best ratio, moderate speed; good for archival vectors
//	S2    — balanced ratio and speed; good for bulk acquisition writes
//	LZ4   — fastest decompression; good for repeated low-latency reads
//
// All four implement Codec and are reachable through GetCodec/CreateCodec
// keyed on format.CompressionType, so a vector decoder never needs a type
// switch of its own.
package compress
