package schema

// RegisterScalars idempotently adds the twelve primitive scalar descriptors
// under their canonical names. Safe to call more than once against the same
// registry (a name that is already registered is skipped).
func RegisterScalars(r *Registry) {
	for _, s := range []struct {
		name string
		kind ScalarKind
	}{
		{"u8", U8}, {"u16", U16}, {"u32", U32}, {"u64", U64},
		{"i8", I8}, {"i16", I16}, {"i32", I32}, {"i64", I64},
		{"f32", F32}, {"f64", F64}, {"bool", Bool}, {"string", StringScalar},
	} {
		if _, ok := r.FindByName(s.name); ok {
			continue
		}
		r.Add(scalarPseudoClassID(s.name), NewScalar(s.name, s.kind))
	}
}

// RegisterMathTypes idempotently adds the Virtools math struct descriptors
// (vector2/3/4, matrix, quaternion, color) built from f32 fields, and the
// 2-DWORD guid type. These are the generic struct descriptors the reflection
// engine (internal/engine) drives directly, as opposed to the class schemas
// in internal/classes which override reflection entirely via a vtable.
func RegisterMathTypes(r *Registry) {
	RegisterScalars(r)
	f32, _ := r.FindByName("f32")
	u32, _ := r.FindByName("u32")

	add := func(name string, t *Type) {
		if _, ok := r.FindByName(name); ok {
			return
		}
		r.Add(scalarPseudoClassID(name), t)
	}

	add("vector2", NewStruct("vector2", 8, 4).
		Field("x", 0, f32).Field("y", 4, f32).Build())
	add("vector3", NewStruct("vector3", 12, 4).
		Field("x", 0, f32).Field("y", 4, f32).Field("z", 8, f32).Build())
	add("vector4", NewStruct("vector4", 16, 4).
		Field("x", 0, f32).Field("y", 4, f32).Field("z", 8, f32).Field("w", 12, f32).Build())
	add("quaternion", NewStruct("quaternion", 16, 4).
		Field("x", 0, f32).Field("y", 4, f32).Field("z", 8, f32).Field("w", 12, f32).Build())
	add("color", NewStruct("color", 16, 4).
		Field("r", 0, f32).Field("g", 4, f32).Field("b", 8, f32).Field("a", 12, f32).Build())
	add("guid", NewStruct("guid", 8, 4).
		Field("d1", 0, u32).Field("d2", 4, u32).Build())

	matrixRow, _ := r.FindByName("vector4")
	add("matrix", NewFixedArray("matrix", matrixRow, 4))
}

// scalarPseudoClassID derives a stable, collision-free synthetic class id for
// base types that have no wire class id of their own (they are never
// top-level objects, only field types). Negative-space of the real 32-bit
// class-id range: base types are identified by name, this id only exists so
// they can share the same class-id-indexed map as real classes.
func scalarPseudoClassID(name string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return 0x80000000 | (h & 0x7FFFFFFF)
}
