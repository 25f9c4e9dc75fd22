package frameobj

import "github.com/gwframe/frame/format"

// FrSH is the structure-header meta-record: it names a class and the spec
// version its schema belongs to (spec.md §3 "FrSH / FrSE").
type FrSH struct {
	Name    string
	Version format.Version
}

var _ Object = (*FrSH)(nil)

func (s *FrSH) ClassID() format.ClassID  { return format.ClassFrSH }
func (s *FrSH) Description() *Description { return frshDescription }
func (s *FrSH) Equal(other Object) bool {
	o, ok := other.(*FrSH)
	return ok && s.Name == o.Name && s.Version == o.Version
}

var frshDescription = CacheDescription(NewDescription("FrSH", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "version", Type: format.ElemInt1U},
}))

// FrSE is one structure-element meta-record: one field's name, wire type,
// and comment, belonging to a given FrSH (spec.md §3 "FrSH / FrSE").
type FrSE struct {
	Name    string
	Type    format.ElementType
	Comment string
}

var _ Object = (*FrSE)(nil)

func (s *FrSE) ClassID() format.ClassID  { return format.ClassFrSE }
func (s *FrSE) Description() *Description { return frseDescription }
func (s *FrSE) Equal(other Object) bool {
	o, ok := other.(*FrSE)
	return ok && s.Name == o.Name && s.Type == o.Type && s.Comment == o.Comment
}

var frseDescription = CacheDescription(NewDescription("FrSE", format.Current, []FieldDesc{
	{Name: "name", Type: format.ElemString},
	{Name: "type", Type: format.ElemInt1U},
	{Name: "comment", Type: format.ElemString},
}))
