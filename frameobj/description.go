package frameobj

import (
	"strings"

	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/internal/hash"
)

// FieldDesc is one FrSE (structure element) record: one field's name, wire
// type, and comment (spec.md §3 "Description").
type FieldDesc struct {
	Name    string
	Type    format.ElementType
	Comment string
}

// Description is the content-addressable aggregate of one FrSH plus one
// FrSE per field (spec.md §3 "Description", §4.2 "Description cache"). It
// is computed once per (class-id, version) and shared across streams.
type Description struct {
	ClassName string
	Version   format.Version
	Fields    []FieldDesc
	key       uint64
}

// NewDescription builds a Description and computes its content-addressed
// cache key by hashing the class name, version, and field list together, so
// two identical schemas (even across otherwise-unrelated registrations)
// collapse to the same cached entry.
func NewDescription(className string, version format.Version, fields []FieldDesc) *Description {
	var b strings.Builder
	b.WriteString(className)
	b.WriteByte(0)
	b.WriteByte(byte(version))
	for _, f := range fields {
		b.WriteString(f.Name)
		b.WriteByte(0)
		b.WriteByte(byte(f.Type))
		b.WriteString(f.Comment)
		b.WriteByte(0)
	}

	return &Description{
		ClassName: className,
		Version:   version,
		Fields:    fields,
		key:       hash.ID(b.String()),
	}
}

// Key returns the description's content-addressed cache key.
func (d *Description) Key() uint64 {
	return d.key
}

// Matches reports whether an inbound FrSH/FrSE field list matches this
// description exactly, used by the verifier to check inbound schema
// records against the registered description (spec.md §4.2).
func (d *Description) Matches(className string, version format.Version, fields []FieldDesc) bool {
	if d.ClassName != className || d.Version != version || len(d.Fields) != len(fields) {
		return false
	}

	for i, f := range d.Fields {
		if f != fields[i] {
			return false
		}
	}

	return true
}

// descriptionCache is the process-wide, read-only-after-init cache of
// computed descriptions (spec.md §5 "Process-wide shared state").
var descriptionCache = make(map[uint64]*Description)

// CacheDescription registers d in the process-wide description cache,
// returning the canonical (possibly pre-existing) instance for its key.
func CacheDescription(d *Description) *Description {
	if cached, ok := descriptionCache[d.key]; ok {
		return cached
	}

	descriptionCache[d.key] = d

	return d
}

// LookupDescription retrieves a previously cached description by key.
func LookupDescription(key uint64) (*Description, bool) {
	d, ok := descriptionCache[key]
	return d, ok
}
