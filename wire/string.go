package wire

import (
	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
)

// AppendString appends a Frame-format string to buf: a 2-byte unsigned
// length N, N bytes, then a trailing NUL (spec.md §6 "String").
func AppendString(buf []byte, engine endian.EndianEngine, s string) []byte {
	buf = engine.AppendUint16(buf, uint16(len(s)))
	buf = append(buf, s...)
	buf = append(buf, 0)

	return buf
}

// StringSize returns the on-disk byte size of s when encoded with AppendString.
func StringSize(s string) int {
	return 2 + len(s) + 1
}

// ParseString decodes a Frame-format string from the head of data, returning
// the string (without its trailing NUL) and the number of bytes consumed.
func ParseString(data []byte, engine endian.EndianEngine) (string, int, error) {
	if len(data) < 2 {
		return "", 0, errs.NewOffsetError(errs.ErrUnderrun, "", 0)
	}

	n := int(engine.Uint16(data[0:2]))
	total := 2 + n + 1
	if len(data) < total {
		return "", 0, errs.NewOffsetError(errs.ErrUnderrun, "", 0).
			WithExpected(total, len(data))
	}

	return string(data[2 : 2+n]), total, nil
}
