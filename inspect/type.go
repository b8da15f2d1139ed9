// ABOUTME: Normalized type descriptors for values in the inspected process
// ABOUTME: Defines TypeKind, Type, Field and basic-type resolution

package inspect

// TypeKind classifies the structural shape of a type.
type TypeKind uint8

const (
	KindOther TypeKind = iota
	KindPointer
	KindReference
	KindArray
	KindStruct
	KindUnion
	KindTypedef
	KindPrimitive
)

func (k TypeKind) String() string {
	return [...]string{
		"Other",
		"Pointer",
		"Reference",
		"Array",
		"Struct",
		"Union",
		"Typedef",
		"Primitive",
	}[k]
}

// Type is a normalized view of a static type in the inspected process.
// Types are produced by the host introspection layer and are read-only.
type Type struct {
	Name string
	Kind TypeKind
	Size uint64 // size in bytes; for Typedef/Reference this equals the underlying type's size

	// Target is the pointee for Pointer/Reference, the element type for
	// Array, and the underlying type for Typedef. Nil otherwise.
	Target *Type

	// Fields is the ordered field list for Struct/Union, base-class
	// subobjects included.
	Fields []Field
}

func (t *Type) String() string {
	if t == nil {
		return "<unknown>"
	}
	return t.Name
}

// Field is a single member of a Struct or Union type. Name may be empty for
// anonymous subobjects. IsBaseClass marks an inherited subobject rather than
// a declared member.
type Field struct {
	Name        string
	Offset      uint64
	Type        *Type
	IsBaseClass bool
}

// BasicType strips Typedef and Reference wrappers, exposing the underlying
// structural kind. Returns nil for a nil type or a wrapper with no target.
func BasicType(t *Type) *Type {
	for t != nil && (t.Kind == KindTypedef || t.Kind == KindReference) {
		t = t.Target
	}
	return t
}
