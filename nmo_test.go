package nmo

import (
	"testing"

	"nmoscene/internal/classes"
	"nmoscene/internal/envelope"
)

func TestSaveBytesLoadBytesRoundTrip(t *testing.T) {
	materialClassID := uint32(30) // CKMaterial, pinned by spec.md's worked examples

	scene := &Scene{
		FileVersion: envelope.CurrentVersion,
		Header1: envelope.Header1{
			Objects: []envelope.ObjectDescriptor{
				{FileID: 1, ClassID: materialClassID, Name: "mat0"},
			},
		},
		Objects: []Object{
			{
				ObjectDescriptor: envelope.ObjectDescriptor{FileID: 1, ClassID: materialClassID, Name: "mat0"},
				DataVersion:      1,
				State: &classes.Material{
					Ambient:       classes.Color4{R: 0.2, G: 0.2, B: 0.2, A: 1},
					Diffuse:       classes.Color4{R: 0.8, G: 0.8, B: 0.8, A: 1},
					Specular:      classes.Color4{R: 0, G: 0, B: 0, A: 1},
					Emissive:      classes.Color4{R: 0, G: 0, B: 0, A: 1},
					SpecularPower: 8,
					ZWrite:        true,
					ZTest:         true,
				},
			},
		},
	}

	data, err := SaveBytes(scene, Options{})
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}

	loaded, err := LoadBytes(data, Options{})
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if loaded.FileVersion != scene.FileVersion {
		t.Fatalf("file_version: got %d, want %d", loaded.FileVersion, scene.FileVersion)
	}
	if len(loaded.Objects) != 1 {
		t.Fatalf("objects: got %d, want 1", len(loaded.Objects))
	}
	got, ok := loaded.Objects[0].State.(*classes.Material)
	if !ok {
		t.Fatalf("decoded state is not *classes.Material: %T", loaded.Objects[0].State)
	}
	if got.SpecularPower != 8 {
		t.Fatalf("specular power: got %v, want 8", got.SpecularPower)
	}
	if got.Ambient != (classes.Color4{R: 0.2, G: 0.2, B: 0.2, A: 1}) {
		t.Fatalf("ambient: got %+v", got.Ambient)
	}
}

func TestLoadBytesRejectsTruncatedFile(t *testing.T) {
	if _, err := LoadBytes([]byte{1, 2, 3}, Options{}); err == nil {
		t.Fatalf("LoadBytes: want error for truncated input")
	}
}
