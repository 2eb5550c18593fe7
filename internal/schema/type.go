// Package schema implements the type descriptor, registry, and fluent
// builder that drive the reflection engine's generic chunk (de)serialization
// (§3.3, §4.F, §4.G).
package schema

import (
	"nmoscene/internal/chunk"
)

// Kind is the tag of a type descriptor's variant.
type Kind int

const (
	KindScalar Kind = iota
	KindStruct
	KindArray
	KindFixedArray
	KindBinary
	KindObjectRef
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindFixedArray:
		return "fixed_array"
	case KindBinary:
		return "binary"
	case KindObjectRef:
		return "object_ref"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ScalarKind enumerates the primitive wire scalars.
type ScalarKind int

const (
	U8 ScalarKind = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Bool
	StringScalar
)

// Annotation marks semantic intent on a struct field beyond its wire type.
type Annotation int

const (
	AnnColor Annotation = iota
	AnnNormal
	AnnPosition
	AnnRotation
	AnnScale
	AnnSeconds
	AnnDegrees
	AnnMeters
	AnnDeprecated
	AnnSince
	AnnEditorOnly
	AnnReference
	AnnIDField
)

// EnumValue is one (name, value) pair of an Enum type.
type EnumValue struct {
	Name  string
	Value int64
}

// Field is one member of a Struct type.
type Field struct {
	Name              string
	Offset            int
	Type              *Type
	Annotations       []Annotation
	SinceVersion      int
	DeprecatedVersion int // 0 means never deprecated
}

// VTable overrides reflection for a type with custom read/write/validate
// callables. Read/Write take `any` parser/writer handles (the concrete
// *reader.Reader / *writer.Writer from the sibling packages) so this package
// does not need to import them; the engine package passes the concrete
// types in and each VTable implementation asserts them back.
type VTable struct {
	Read     func(r any, dst any) error
	Write    func(w any, src any) error
	Validate func(v any) error
}

// ParamMeta carries parameter-type metadata for types that categorize
// parameter-carrying values (CKPGUID-indexed types).
type ParamMeta struct {
	GUID        chunk.GUID
	Kind        string
	DerivedFrom *Type
	Flags       uint32
	DefaultSize int
	UIHints     map[string]string
}

// Type is a tagged-variant type descriptor.
type Type struct {
	Name string
	Kind Kind

	// KindScalar / KindEnum's underlying representation.
	Scalar ScalarKind

	// KindStruct.
	Fields []Field
	Size   int
	Align  int

	// KindArray / KindFixedArray.
	Element       *Type
	CountPrefixed bool
	Length        int

	// KindEnum.
	EnumValues []EnumValue

	VTable *VTable
	Param  *ParamMeta
}

// EnumValueName returns the name registered for value, if any.
func (t *Type) EnumValueName(value int64) (string, bool) {
	for _, v := range t.EnumValues {
		if v.Value == value {
			return v.Name, true
		}
	}
	return "", false
}

// EnumValueOf returns the value registered for name, if any.
func (t *Type) EnumValueOf(name string) (int64, bool) {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}
