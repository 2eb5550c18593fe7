// Package engine implements the generic reflection engine that drives chunk
// I/O from a schema.Type descriptor (§4.H). Structs recurse into fields by
// index (standing in for the field table's offset — Go does not expose
// portable byte-offset field access the way the original C++ layout does),
// arrays read a length prefix then iterate, fixed-arrays iterate a
// compile-time length, strings/binaries are length-prefixed, and scalars map
// to the matching typed reader/writer call.
//
// If a type's VTable.Read/Write is non-nil it is invoked instead of
// reflection — the "vtable fast path" of §4.H. This package hands the
// concrete *reader.Reader/*writer.Writer to the VTable as an `any`; the
// VTable implementation asserts it back to the concrete type, so the schema
// package itself stays free of a dependency on either.
package engine

import (
	"fmt"
	"math"
	"reflect"

	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
	"nmoscene/internal/nmoerr"
	"nmoscene/internal/schema"
)

// Read drives r according to t, storing into dst (which must be a non-nil
// pointer). version gates fields whose SinceVersion/DeprecatedVersion falls
// outside [0, version].
func Read(r *reader.Reader, t *schema.Type, dst any, version int) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return nmoerr.NewCause("engine.Read: dst must be a non-nil pointer", -1, nmoerr.ErrInvalidArgument)
	}
	return readValue(r, t, v.Elem(), version)
}

// Write drives w according to t, reading from src (a value or pointer to
// one). src is passed through untouched to a type's VTable.Write (a class's
// custom Serialize typically expects the same pointer-or-value shape its
// Deserialize produced); only the generic reflection path dereferences
// pointers down to the concrete value.
func Write(w *writer.Writer, t *schema.Type, src any, version int) error {
	return writeValue(w, t, reflect.ValueOf(src), version)
}

// Validate runs t's custom validator if present, otherwise the built-in
// structural check (currently: enum values must match a declared pair).
func Validate(t *schema.Type, v any) error {
	if t.VTable != nil && t.VTable.Validate != nil {
		return t.VTable.Validate(v)
	}
	if t.Kind == schema.KindEnum {
		rv := reflect.ValueOf(v)
		for rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if _, ok := t.EnumValueName(rv.Int()); !ok {
			return nmoerr.NewCause(fmt.Sprintf("enum %q: value %d not declared", t.Name, rv.Int()), -1, nmoerr.ErrValidationFailed)
		}
	}
	return nil
}

func fieldActive(f schema.Field, version int) bool {
	if f.SinceVersion != 0 && version < f.SinceVersion {
		return false
	}
	if f.DeprecatedVersion != 0 && version >= f.DeprecatedVersion {
		return false
	}
	return true
}

func readValue(r *reader.Reader, t *schema.Type, v reflect.Value, version int) error {
	if t.VTable != nil && t.VTable.Read != nil {
		return t.VTable.Read(r, v.Addr().Interface())
	}

	switch t.Kind {
	case schema.KindScalar:
		return readScalar(r, t.Scalar, v)
	case schema.KindEnum:
		return readScalar(r, t.Scalar, v)
	case schema.KindObjectRef:
		id, err := r.ObjectID()
		if err != nil {
			return err
		}
		v.SetUint(uint64(id))
		return nil
	case schema.KindBinary:
		b, err := r.Buffer()
		if err != nil {
			return err
		}
		v.SetBytes(b)
		return nil
	case schema.KindStruct:
		for i, f := range t.Fields {
			if !fieldActive(f, version) || i >= v.NumField() {
				continue
			}
			if err := readValue(r, f.Type, v.Field(i), version); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		return nil
	case schema.KindFixedArray:
		n := t.Length
		if v.Kind() == reflect.Slice {
			v.Set(reflect.MakeSlice(v.Type(), n, n))
		}
		for i := 0; i < n; i++ {
			if err := readValue(r, t.Element, v.Index(i), version); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case schema.KindArray:
		count, err := r.Dword()
		if err != nil {
			return err
		}
		slice := reflect.MakeSlice(v.Type(), int(count), int(count))
		for i := 0; i < int(count); i++ {
			if err := readValue(r, t.Element, slice.Index(i), version); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		v.Set(slice)
		return nil
	default:
		return nmoerr.NewCause(fmt.Sprintf("engine: unhandled type kind %s", t.Kind), -1, nmoerr.ErrNotImplemented)
	}
}

func writeValue(w *writer.Writer, t *schema.Type, v reflect.Value, version int) error {
	if t.VTable != nil && t.VTable.Write != nil {
		return t.VTable.Write(w, v.Interface())
	}
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	switch t.Kind {
	case schema.KindScalar:
		return writeScalar(w, t.Scalar, v)
	case schema.KindEnum:
		return writeScalar(w, t.Scalar, v)
	case schema.KindObjectRef:
		return w.ObjectID(uint32(v.Uint()))
	case schema.KindBinary:
		return w.Buffer(v.Bytes())
	case schema.KindStruct:
		for i, f := range t.Fields {
			if !fieldActive(f, version) || i >= v.NumField() {
				continue
			}
			if err := writeValue(w, f.Type, v.Field(i), version); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		return nil
	case schema.KindFixedArray:
		for i := 0; i < t.Length; i++ {
			if err := writeValue(w, t.Element, v.Index(i), version); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case schema.KindArray:
		n := v.Len()
		if err := w.Dword(uint32(n)); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := writeValue(w, t.Element, v.Index(i), version); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	default:
		return nmoerr.NewCause(fmt.Sprintf("engine: unhandled type kind %s", t.Kind), -1, nmoerr.ErrNotImplemented)
	}
}

func readScalar(r *reader.Reader, kind schema.ScalarKind, v reflect.Value) error {
	switch kind {
	case schema.U8:
		b, err := r.Byte()
		if err != nil {
			return err
		}
		v.SetUint(uint64(b))
	case schema.U16:
		w, err := r.Word()
		if err != nil {
			return err
		}
		v.SetUint(uint64(w))
	case schema.U32:
		d, err := r.Dword()
		if err != nil {
			return err
		}
		v.SetUint(uint64(d))
	case schema.U64:
		lo, err := r.Dword()
		if err != nil {
			return err
		}
		hi, err := r.Dword()
		if err != nil {
			return err
		}
		v.SetUint(uint64(lo) | uint64(hi)<<32)
	case schema.I8:
		i, err := r.Int()
		if err != nil {
			return err
		}
		v.SetInt(int64(int8(i)))
	case schema.I16:
		i, err := r.Int()
		if err != nil {
			return err
		}
		v.SetInt(int64(int16(i)))
	case schema.I32:
		i, err := r.Int()
		if err != nil {
			return err
		}
		v.SetInt(int64(i))
	case schema.I64:
		lo, err := r.Int()
		if err != nil {
			return err
		}
		hi, err := r.Int()
		if err != nil {
			return err
		}
		v.SetInt(int64(uint64(uint32(lo)) | uint64(uint32(hi))<<32))
	case schema.F32:
		f, err := r.Float()
		if err != nil {
			return err
		}
		v.SetFloat(float64(f))
	case schema.F64:
		lo, err := r.Dword()
		if err != nil {
			return err
		}
		hi, err := r.Dword()
		if err != nil {
			return err
		}
		bits := uint64(lo) | uint64(hi)<<32
		v.SetFloat(math.Float64frombits(bits))
	case schema.Bool:
		b, err := r.Bool()
		if err != nil {
			return err
		}
		v.SetBool(b)
	case schema.StringScalar:
		s, err := r.String()
		if err != nil {
			return err
		}
		v.SetString(s)
	default:
		return nmoerr.NewCause("engine: unhandled scalar kind", -1, nmoerr.ErrNotImplemented)
	}
	return nil
}

func writeScalar(w *writer.Writer, kind schema.ScalarKind, v reflect.Value) error {
	switch kind {
	case schema.U8:
		return w.Byte(byte(v.Uint()))
	case schema.U16:
		return w.Word(uint16(v.Uint()))
	case schema.U32:
		return w.Dword(uint32(v.Uint()))
	case schema.U64:
		u := v.Uint()
		if err := w.Dword(uint32(u)); err != nil {
			return err
		}
		return w.Dword(uint32(u >> 32))
	case schema.I8, schema.I16, schema.I32:
		return w.Int(int32(v.Int()))
	case schema.I64:
		i := v.Int()
		if err := w.Int(int32(uint32(i))); err != nil {
			return err
		}
		return w.Int(int32(uint32(i >> 32)))
	case schema.F32:
		return w.Float(float32(v.Float()))
	case schema.F64:
		bits := math.Float64bits(v.Float())
		if err := w.Dword(uint32(bits)); err != nil {
			return err
		}
		return w.Dword(uint32(bits >> 32))
	case schema.Bool:
		return w.Bool(v.Bool())
	case schema.StringScalar:
		return w.String(v.String())
	default:
		return nmoerr.NewCause("engine: unhandled scalar kind", -1, nmoerr.ErrNotImplemented)
	}
}
