package schema

// NewScalar returns a named scalar type descriptor.
func NewScalar(name string, kind ScalarKind) *Type {
	return &Type{Name: name, Kind: KindScalar, Scalar: kind}
}

// NewBinary returns the opaque-bytes type descriptor.
func NewBinary(name string) *Type {
	return &Type{Name: name, Kind: KindBinary}
}

// NewObjectRef returns the object-id reference type descriptor.
func NewObjectRef(name string) *Type {
	return &Type{Name: name, Kind: KindObjectRef}
}

// NewArray returns a count-prefixed array type descriptor over element.
func NewArray(name string, element *Type) *Type {
	return &Type{Name: name, Kind: KindArray, Element: element, CountPrefixed: true}
}

// NewFixedArray returns a compile-time-length array type descriptor.
func NewFixedArray(name string, element *Type, length int) *Type {
	return &Type{Name: name, Kind: KindFixedArray, Element: element, Length: length}
}

// StructBuilder fluently accumulates fields into a Struct type descriptor.
type StructBuilder struct {
	t *Type
}

// NewStruct starts building a Struct type of the given wire size/alignment.
func NewStruct(name string, size, align int) *StructBuilder {
	return &StructBuilder{t: &Type{Name: name, Kind: KindStruct, Size: size, Align: align}}
}

// Field appends a field that is present in every version; chain Since and
// Deprecated to give it a version range (0 means "always present"/"never
// deprecated").
func (b *StructBuilder) Field(name string, offset int, typ *Type, anns ...Annotation) *StructBuilder {
	b.t.Fields = append(b.t.Fields, Field{Name: name, Offset: offset, Type: typ, Annotations: anns})
	return b
}

// Since sets since_version on the most recently added field.
func (b *StructBuilder) Since(version int) *StructBuilder {
	if n := len(b.t.Fields); n > 0 {
		b.t.Fields[n-1].SinceVersion = version
	}
	return b
}

// Deprecated sets deprecated_version on the most recently added field.
func (b *StructBuilder) Deprecated(version int) *StructBuilder {
	if n := len(b.t.Fields); n > 0 {
		b.t.Fields[n-1].DeprecatedVersion = version
	}
	return b
}

// VTable attaches a reflection override.
func (b *StructBuilder) VTable(vt *VTable) *StructBuilder {
	b.t.VTable = vt
	return b
}

// Param attaches parameter-type metadata.
func (b *StructBuilder) Param(meta ParamMeta) *StructBuilder {
	b.t.Param = &meta
	return b
}

// Build finalizes and returns the type descriptor.
func (b *StructBuilder) Build() *Type { return b.t }

// EnumBuilder fluently accumulates named values into an Enum type descriptor.
type EnumBuilder struct {
	t *Type
}

// NewEnum starts building an Enum type over the given underlying scalar kind.
func NewEnum(name string, base ScalarKind) *EnumBuilder {
	return &EnumBuilder{t: &Type{Name: name, Kind: KindEnum, Scalar: base}}
}

// Value appends a (name, value) pair.
func (b *EnumBuilder) Value(name string, value int64) *EnumBuilder {
	b.t.EnumValues = append(b.t.EnumValues, EnumValue{Name: name, Value: value})
	return b
}

// Build finalizes and returns the type descriptor.
func (b *EnumBuilder) Build() *Type { return b.t }
