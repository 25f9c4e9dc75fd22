package toc

import (
	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
)

// appendString appends a length-prefixed (uint16) string, the same wire
// shape the registry package's codecs use for every frame-object's string
// fields (spec.md §6 "String").
func appendString(buf []byte, engine endian.EndianEngine, s string) []byte {
	buf = engine.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// readString parses a length-prefixed string from the front of data,
// returning the remaining bytes.
func readString(data []byte, engine endian.EndianEngine) (string, []byte, error) {
	if len(data) < 2 {
		return "", nil, errs.ErrUnderrun
	}

	n := int(engine.Uint16(data[0:2]))
	if len(data) < 2+n {
		return "", nil, errs.ErrUnderrun
	}

	return string(data[2 : 2+n]), data[2+n:], nil
}
