package envelope

import (
	"testing"

	"nmoscene/internal/chunk"
)

func TestParsePackRoundTripNoObjects(t *testing.T) {
	in := &File{
		FileVersion: CurrentVersion,
		Header1:     Header1{},
		Managers:    nil,
		Objects:     nil,
	}
	buf, err := in.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	out, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if out.FileVersion != in.FileVersion {
		t.Fatalf("file_version: got %d, want %d", out.FileVersion, in.FileVersion)
	}
	if len(out.Header1.Objects) != 0 || len(out.Managers) != 0 || len(out.Objects) != 0 {
		t.Fatalf("expected empty sections, got %+v", out)
	}
}

func TestParsePackRoundTripWithObjectsAndManagers(t *testing.T) {
	in := &File{
		FileVersion: 6,
		Header1: Header1{
			Objects: []ObjectDescriptor{
				{FileID: 1, ClassID: 30, FileIndex: 0, Name: "mat"},
				{FileID: 2, ReferenceOnly: true, ClassID: 30, Name: "ref"},
			},
			PluginDeps: []PluginDependency{
				{Category: 1, GUIDs: []chunk.GUID{{D1: 1, D2: 2}}},
			},
		},
		Managers: []ManagerRecord{
			{GUID: chunk.GUID{D1: 9, D2: 9}, Chunk: chunk.New()},
		},
		Objects: []ObjectRecord{
			{ObjectID: 1, Chunk: chunk.New()},
		},
	}

	buf, err := in.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	out, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(out.Header1.Objects) != 2 {
		t.Fatalf("object directory: got %d entries, want 2", len(out.Header1.Objects))
	}
	if out.Header1.Objects[0].FileID != 1 || out.Header1.Objects[0].Name != "mat" {
		t.Fatalf("descriptor 0: got %+v", out.Header1.Objects[0])
	}
	if !out.Header1.Objects[1].ReferenceOnly || out.Header1.Objects[1].FileID != 2 {
		t.Fatalf("descriptor 1 (reference-only): got %+v", out.Header1.Objects[1])
	}
	if len(out.Header1.PluginDeps) != 1 || len(out.Header1.PluginDeps[0].GUIDs) != 1 {
		t.Fatalf("plugin deps: got %+v", out.Header1.PluginDeps)
	}
	if len(out.Managers) != 1 || out.Managers[0].GUID.D1 != 9 {
		t.Fatalf("managers: got %+v", out.Managers)
	}
	if len(out.Objects) != 1 || out.Objects[0].ObjectID != 1 {
		t.Fatalf("objects: got %+v", out.Objects)
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, "BADSIGNAT")
	if _, err := Parse(buf); err == nil {
		t.Fatalf("Parse: want error for bad signature")
	}
}

func TestParseRejectsOutOfRangeVersion(t *testing.T) {
	in := &File{FileVersion: MaxVersion + 1}
	if _, err := in.Pack(); err == nil {
		t.Fatalf("Pack: want error for out-of-range file_version")
	}
}
