// Package frameobj implements the frame-object data model (spec.md §4.5):
// the concrete frame-object variants, their reference containers, and the
// shared capability set {schema-describable, equality, verify} every
// variant satisfies. Byte-level decode/encode for each variant is driven by
// the registry package's per-version dispatch table, not by virtual methods
// on these types — per spec.md §9 "Deep virtual hierarchy → tagged
// variants," the discriminant is the format.ClassID carried by every
// Object, not a type hierarchy.
package frameobj

import "github.com/gwframe/frame/format"

// Object is the capability set every frame-object variant satisfies
// (spec.md §4.5): a class-id, a shared description, and element-wise
// equality. Concrete variants (FrameH, AdcData, Vector, ...) additionally
// expose their own fields and reference containers; callers type-switch or
// use the registry's dispatch to reach them.
type Object interface {
	// ClassID returns the object's immutable class-id.
	ClassID() format.ClassID

	// Description returns the shared, immutable schema description for
	// this object's class and version.
	Description() *Description

	// Equal reports whether two objects are equal per spec.md §4.5
	// "Equality": same class-id, equal non-reference fields, and
	// element-wise equal reference containers.
	Equal(other Object) bool
}

// Ref is a single outgoing reference slot: either empty (Target == nil) or
// pointing at another frame-object (spec.md §3 "Reference closure").
type Ref struct {
	Target Object
}

// IsNull reports whether the reference is the designated null reference.
func (r Ref) IsNull() bool {
	return r.Target == nil
}

// Equal compares two references by target identity under Object.Equal,
// treating two null references as equal and a null/non-null pair as unequal.
func (r Ref) Equal(other Ref) bool {
	if r.IsNull() || other.IsNull() {
		return r.IsNull() == other.IsNull()
	}

	return r.Target.ClassID() == other.Target.ClassID() && r.Target.Equal(other.Target)
}

// SearchContainer is an ordered sequence of named references with unique
// names, supporting lookup by name (spec.md §4.5 "reference container ...
// a search container"). Used for channel lists (ADC, proc, ser, sim, event)
// hung off a RawData bundle or a FrameH.
type SearchContainer struct {
	names []string
	refs  []Ref
	index map[string]int
}

// NewSearchContainer creates an empty search container.
func NewSearchContainer() *SearchContainer {
	return &SearchContainer{index: make(map[string]int)}
}

// Add appends a named reference. Returns false without modifying the
// container if name is already present, since names are unique within a
// search container.
func (s *SearchContainer) Add(name string, ref Ref) bool {
	if _, exists := s.index[name]; exists {
		return false
	}

	s.index[name] = len(s.names)
	s.names = append(s.names, name)
	s.refs = append(s.refs, ref)

	return true
}

// Len returns the number of entries.
func (s *SearchContainer) Len() int {
	return len(s.names)
}

// At returns the name and reference at position i.
func (s *SearchContainer) At(i int) (string, Ref) {
	return s.names[i], s.refs[i]
}

// ByName looks up a reference by name.
func (s *SearchContainer) ByName(name string) (Ref, bool) {
	i, ok := s.index[name]
	if !ok {
		return Ref{}, false
	}

	return s.refs[i], true
}

// SetTarget rewrites the reference already reserved under name, used by
// the registry's decode path to bind a forward reference once its target
// resolves (spec.md §4.1 "Pointer model"). Reports false if name was never
// reserved via Add.
func (s *SearchContainer) SetTarget(name string, target Object) bool {
	i, ok := s.index[name]
	if !ok {
		return false
	}

	s.refs[i] = Ref{Target: target}

	return true
}

// Equal reports whether two search containers hold the same names in the
// same order with element-wise equal references.
func (s *SearchContainer) Equal(other *SearchContainer) bool {
	if s.Len() != other.Len() {
		return false
	}

	for i := range s.names {
		if s.names[i] != other.names[i] {
			return false
		}
		if !s.refs[i].Equal(other.refs[i]) {
			return false
		}
	}

	return true
}
