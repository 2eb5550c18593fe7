package classes

import (
	"testing"

	"nmoscene/internal/chunk"
	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
)

func roundTrip(t *testing.T, classID uint32, dataVersion uint8, state any) any {
	t.Helper()
	w := writer.New(classID, dataVersion, 0, chunk.CurrentVersion)
	if err := Save(classID, w, state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	c.DataVersion = dataVersion

	r := reader.New(c)
	got, err := Load(classID, r, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return got
}

func TestMaterialRoundTrip(t *testing.T) {
	classID := mustEntryID("CKMaterial")
	in := &Material{
		Ambient:       Color4{0.1, 0.2, 0.3, 1},
		Diffuse:       Color4{0.4, 0.5, 0.6, 1},
		Specular:      Color4{0.7, 0.8, 0.9, 1},
		Emissive:      Color4{0, 0, 0, 1},
		SpecularPower: 16,
		TextureIDs:    []uint32{1, 2},
		BlendMode:     3,
		ZWrite:        true,
		ZTest:         true,
		TwoSided:      true,
	}
	out, ok := roundTrip(t, classID, 0, in).(*Material)
	if !ok {
		t.Fatalf("round trip did not return *Material")
	}
	if out.Ambient != in.Ambient || out.Diffuse != in.Diffuse {
		t.Fatalf("colors: got %+v, want %+v", out, in)
	}
	if out.SpecularPower != in.SpecularPower {
		t.Fatalf("specular power: got %v, want %v", out.SpecularPower, in.SpecularPower)
	}
	if len(out.TextureIDs) != 2 || out.TextureIDs[0] != 1 || out.TextureIDs[1] != 2 {
		t.Fatalf("texture ids: got %v", out.TextureIDs)
	}
	if !out.TwoSided {
		t.Fatalf("two-sided flag lost in round trip")
	}
}

func TestLightRoundTripModern(t *testing.T) {
	classID := mustEntryID("CKLight")
	in := &Light{
		Type: LightSpot, Flags: 3, Diffuse: 0x112233,
		Attenuation0: 1, Attenuation1: 0.5, Attenuation2: 0.25, Range: 100,
		SpotOuterCone: 1.2, SpotInnerCone: 0.6, SpotFalloff: 1, Power: 2.5,
	}
	out, ok := roundTrip(t, classID, 5, in).(*Light)
	if !ok {
		t.Fatalf("round trip did not return *Light")
	}
	if out.Type != in.Type || out.Diffuse != in.Diffuse || out.Power != in.Power {
		t.Fatalf("got %+v, want %+v", out, in)
	}
	if out.SpotOuterCone != in.SpotOuterCone || out.SpotFalloff != in.SpotFalloff {
		t.Fatalf("spot cone fields lost: got %+v", out)
	}
}

func TestLightDefaultPowerOmitsIdentifier(t *testing.T) {
	classID := mustEntryID("CKLight")
	in := &Light{Type: LightPoint, Power: 1.0, Range: 50}
	out, ok := roundTrip(t, classID, 5, in).(*Light)
	if !ok {
		t.Fatalf("round trip did not return *Light")
	}
	if out.Power != 1.0 {
		t.Fatalf("power: got %v, want 1.0 (default)", out.Power)
	}

	w := writer.New(classID, 5, 0, chunk.CurrentVersion)
	if err := Save(classID, w, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := reader.New(c).SeekIdentifier(idLightPower); err == nil {
		t.Fatalf("power identifier %#x written for default power 1.0", idLightPower)
	}
}

func TestSpriteTextFinishLoadingClamps(t *testing.T) {
	classID := mustEntryID("CKSpriteText")
	in := &SpriteText{
		Text: "hello",
		Font: Font{Name: "", Size: 999, Weight: 50, Italic: 5},
	}
	out, ok := roundTrip(t, classID, 5, in).(*SpriteText)
	if !ok {
		t.Fatalf("round trip did not return *SpriteText")
	}
	if out.Font.Size != 128 {
		t.Fatalf("size clamp: got %d, want 128", out.Font.Size)
	}
	if out.Font.Weight != 100 {
		t.Fatalf("weight clamp: got %d, want 100", out.Font.Weight)
	}
	if out.Font.Italic != 1 {
		t.Fatalf("italic normalize: got %d, want 1", out.Font.Italic)
	}
	if out.Font.Name != "Arial" {
		t.Fatalf("name default: got %q, want Arial", out.Font.Name)
	}
	if out.Text != "hello" {
		t.Fatalf("text: got %q, want hello", out.Text)
	}
}

func TestSpriteTextBeforeVersion5IsEmpty(t *testing.T) {
	classID := mustEntryID("CKSpriteText")
	in := &SpriteText{Text: "ignored", Font: Font{Name: "Arial", Size: 12, Weight: 400}}
	out, ok := roundTrip(t, classID, 4, in).(*SpriteText)
	if !ok {
		t.Fatalf("round trip did not return *SpriteText")
	}
	if out.Text != "" {
		t.Fatalf("data_version<5 should carry no sprite-text identifiers, got text %q", out.Text)
	}
}

func TestMeshRoundTrip(t *testing.T) {
	classID := mustEntryID("CKMesh")
	in := &Mesh{
		Flags:          0x1A,
		MaterialGroups: []MaterialGroup{{MaterialID: 7}},
		Vertices: VertexBlock{
			Count:     2,
			SaveFlags: vbHasPositions,
			Positions: [][3]float32{{0, 0, 0}, {1, 1, 1}},
		},
		Faces: []Face{{I0: 0, I1: 1, I2: 1, MaterialGroup: 0}},
	}
	out, ok := roundTrip(t, classID, 9, in).(*Mesh)
	if !ok {
		t.Fatalf("round trip did not return *Mesh")
	}
	if out.Flags != in.Flags&meshFlagsMask {
		t.Fatalf("flags: got %#x, want %#x", out.Flags, in.Flags&meshFlagsMask)
	}
	if len(out.MaterialGroups) != 1 || out.MaterialGroups[0].MaterialID != 7 {
		t.Fatalf("material groups: got %v", out.MaterialGroups)
	}
	if len(out.Faces) != 1 || out.Faces[0].I1 != 1 {
		t.Fatalf("faces: got %v", out.Faces)
	}
	if len(out.Vertices.Positions) != 2 {
		t.Fatalf("vertex positions: got %v", out.Vertices.Positions)
	}
}

func TestMeshBeforeVersion9IsEmpty(t *testing.T) {
	classID := mustEntryID("CKMesh")
	in := &Mesh{Flags: 0xFF, Faces: []Face{{I0: 1}}}
	out, ok := roundTrip(t, classID, 8, in).(*Mesh)
	if !ok {
		t.Fatalf("round trip did not return *Mesh")
	}
	if out.Flags != 0 || len(out.Faces) != 0 {
		t.Fatalf("data_version<9 mesh should decode empty, got %+v", out)
	}
}
