package hierarchy

import "testing"

func TestSpecPinnedClassIDs(t *testing.T) {
	for _, tc := range []struct {
		name string
		id   uint32
	}{
		{"CKSpriteText", 29},
		{"CKMaterial", 30},
		{"CKLight", 38},
	} {
		e, ok := ByName(tc.name)
		if !ok {
			t.Fatalf("ByName(%q): not found", tc.name)
		}
		if e.ClassID != tc.id {
			t.Fatalf("%s: class id = %d, want %d", tc.name, e.ClassID, tc.id)
		}
		byID, ok := ByID(tc.id)
		if !ok || byID.Name != tc.name {
			t.Fatalf("ByID(%d) = %+v, %v; want %s", tc.id, byID, ok, tc.name)
		}
	}
}

func TestIsDerivedFrom(t *testing.T) {
	if !IsDerivedFrom(mustID(t, "CKLight"), BeObjectClassID) {
		t.Fatalf("CKLight should derive from CKBeObject")
	}
	if !IsDerivedFrom(mustID(t, "CKLight"), RootClassID) {
		t.Fatalf("CKLight should derive from CKObject")
	}
	if IsDerivedFrom(mustID(t, "CKMaterial"), mustID(t, "CKLight")) {
		t.Fatalf("CKMaterial should not derive from CKLight")
	}
	if !IsDerivedFrom(RootClassID, RootClassID) {
		t.Fatalf("a class should be considered derived from itself")
	}
}

func TestUsesBeObjectDeserializer(t *testing.T) {
	if !UsesBeObjectDeserializer(mustID(t, "CKMesh")) {
		t.Fatalf("CKMesh derives from CKBeObject")
	}
	if UsesBeObjectDeserializer(mustID(t, "CKMaterial")) {
		t.Fatalf("CKMaterial derives directly from CKObject, not CKBeObject")
	}
}

func TestCommonAncestor(t *testing.T) {
	anc, ok := CommonAncestor(mustID(t, "CKLight"), mustID(t, "CKSpriteText"))
	if !ok {
		t.Fatalf("CommonAncestor: not found")
	}
	want, _ := ByName("CKRenderObject")
	if anc != want.ClassID {
		t.Fatalf("CommonAncestor(CKLight, CKSpriteText) = %d, want %d (CKRenderObject)", anc, want.ClassID)
	}
}

func TestDerivationLevel(t *testing.T) {
	if lvl := DerivationLevel(RootClassID); lvl != 0 {
		t.Fatalf("CKObject derivation level = %d, want 0", lvl)
	}
	if lvl := DerivationLevel(mustID(t, "CKLight")); lvl <= DerivationLevel(BeObjectClassID) {
		t.Fatalf("CKLight should be deeper than CKBeObject")
	}
}

func mustID(t *testing.T, name string) uint32 {
	t.Helper()
	e, ok := ByName(name)
	if !ok {
		t.Fatalf("ByName(%q): not found", name)
	}
	return e.ClassID
}
