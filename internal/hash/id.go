// Package hash provides the content-addressing hash used to cache frame
// class descriptions (spec.md §4.2 "Description cache": "a cacheable,
// content-addressable aggregate of one FrSH plus one FrSE per field").
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a byte string. Used both for description
// cache keys (class name + field name/type/comment list, concatenated) and
// for the TOC's channel-name row-index map.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Bytes computes the xxHash64 of a raw byte slice, avoiding a string copy
// when the caller already holds an encoded field list.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
