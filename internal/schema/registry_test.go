package schema

import (
	"testing"

	"nmoscene/internal/chunk"
)

func guid(d1, d2 uint32) chunk.GUID { return chunk.GUID{D1: d1, D2: d2} }

func TestRegistryAddFindByIDAndName(t *testing.T) {
	r := NewRegistry(nil)
	u32 := NewScalar("u32", U32)
	r.Add(100, u32)

	if got, ok := r.FindByID(100); !ok || got != u32 {
		t.Fatalf("FindByID(100) = %v, %v", got, ok)
	}
	if got, ok := r.FindByName("u32"); !ok || got != u32 {
		t.Fatalf("FindByName(u32) = %v, %v", got, ok)
	}
	if _, ok := r.FindByID(999); ok {
		t.Fatalf("FindByID(999) should not be found")
	}
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}
}

func TestRegisterMathTypesIdempotent(t *testing.T) {
	r := NewRegistry(nil)
	RegisterMathTypes(r)
	firstCount := r.Count()
	RegisterMathTypes(r)
	if r.Count() != firstCount {
		t.Fatalf("RegisterMathTypes should be idempotent: count went from %d to %d", firstCount, r.Count())
	}

	v3, ok := r.FindByName("vector3")
	if !ok {
		t.Fatalf("vector3 not registered")
	}
	if v3.Kind != KindStruct || len(v3.Fields) != 3 {
		t.Fatalf("vector3: kind=%v fields=%d, want struct with 3 fields", v3.Kind, len(v3.Fields))
	}

	mat, ok := r.FindByName("matrix")
	if !ok {
		t.Fatalf("matrix not registered")
	}
	if mat.Kind != KindFixedArray || mat.Length != 4 {
		t.Fatalf("matrix: kind=%v length=%d, want fixed array of length 4", mat.Kind, mat.Length)
	}
}

func TestVerifyConsistencyCatchesNilType(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(1, nil)
	if err := r.VerifyConsistency(); err == nil {
		t.Fatalf("VerifyConsistency: want error for nil type descriptor")
	}
}

func TestVerifyConsistencyAcceptsWellFormedTypes(t *testing.T) {
	r := NewRegistry(nil)
	RegisterMathTypes(r)
	if err := r.VerifyConsistency(); err != nil {
		t.Fatalf("VerifyConsistency: %v", err)
	}
}

func TestParamTableCompatibility(t *testing.T) {
	r := NewRegistry(nil)
	base := NewScalar("base_param", U32)
	base.Param = &ParamMeta{GUID: guid(1, 1), Kind: "base"}
	derived := NewScalar("derived_param", U32)
	derived.Param = &ParamMeta{GUID: guid(2, 2), Kind: "derived", DerivedFrom: base}
	r.Add(200, base)
	r.Add(201, derived)
	r.BuildParamTable()

	if !r.CompatibleWith(guid(2, 2), guid(1, 1)) {
		t.Fatalf("derived_param should be compatible with base_param")
	}
	if r.CompatibleWith(guid(1, 1), guid(2, 2)) {
		t.Fatalf("base_param should not be compatible with derived_param")
	}
	if got, ok := r.FindByGUID(guid(2, 2)); !ok || got != derived {
		t.Fatalf("FindByGUID(derived): got %v, %v", got, ok)
	}
}
