package engine

import (
	"testing"

	"nmoscene/internal/chunk"
	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
	"nmoscene/internal/schema"
)

type vec3 struct {
	X, Y, Z float32
}

func vec3Type() *schema.Type {
	f32 := schema.NewScalar("f32", schema.F32)
	return schema.NewStruct("vector3", 12, 4).
		Field("X", 0, f32).
		Field("Y", 4, f32).
		Field("Z", 8, f32).
		Build()
}

func TestStructRoundTrip(t *testing.T) {
	ty := vec3Type()
	w := writer.New(0, 0, 0, chunk.CurrentVersion)
	src := vec3{X: 1.5, Y: -2.25, Z: 3}
	if err := Write(w, ty, &src, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	c, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var dst vec3
	r := reader.New(c)
	if err := Read(r, ty, &dst, 0); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if dst != src {
		t.Fatalf("round trip: got %+v, want %+v", dst, src)
	}
}

type withOptional struct {
	Base  uint32
	Added uint32
}

func optionalFieldType() *schema.Type {
	u32 := schema.NewScalar("u32", schema.U32)
	return schema.NewStruct("with_optional", 8, 4).
		Field("Base", 0, u32).
		Field("Added", 4, u32).Since(5).
		Build()
}

func TestFieldVersionGating(t *testing.T) {
	ty := optionalFieldType()

	w := writer.New(0, 0, 0, chunk.CurrentVersion)
	src := withOptional{Base: 1, Added: 2}
	if err := Write(w, ty, &src, 3); err != nil {
		t.Fatalf("Write (version 3): %v", err)
	}
	c, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var dst withOptional
	r := reader.New(c)
	if err := Read(r, ty, &dst, 3); err != nil {
		t.Fatalf("Read (version 3): %v", err)
	}
	if dst.Base != 1 || dst.Added != 0 {
		t.Fatalf("version-gated field should have been skipped: got %+v", dst)
	}
}

func TestVTableFastPathTakesPrecedence(t *testing.T) {
	var readCalled, writeCalled bool
	ty := &schema.Type{
		Name: "custom",
		Kind: schema.KindStruct,
		VTable: &schema.VTable{
			Read: func(r any, dst any) error {
				readCalled = true
				ptr := dst.(*uint32)
				*ptr = 42
				return nil
			},
			Write: func(w any, src any) error {
				writeCalled = true
				return nil
			},
		},
	}

	w := writer.New(0, 0, 0, chunk.CurrentVersion)
	var v uint32 = 7
	if err := Write(w, ty, &v, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !writeCalled {
		t.Fatalf("VTable.Write was not invoked")
	}
	c, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var out uint32
	r := reader.New(c)
	if err := Read(r, ty, &out, 0); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !readCalled || out != 42 {
		t.Fatalf("VTable.Read not honored: called=%v out=%d", readCalled, out)
	}
}
