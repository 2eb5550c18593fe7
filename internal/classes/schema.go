package classes

import (
	"fmt"

	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
	"nmoscene/internal/schema"
)

// RegisterInto adds every class registered in this package as a schema.Type
// in reg, wiring the reflection engine's vtable fast path (internal/engine,
// §4.H) straight through to the class's own Deserialize/Serialize. This is
// what ties the schema registry, the reflection engine, and the per-class
// schemas into one path: the root nmo package looks a class id up in reg and drives
// it with engine.Read/engine.Write instead of calling classes.Load directly,
// so a class with no registered schema.Type is silently left undecoded the
// same way a struct field with an unknown type would be.
func RegisterInto(reg *schema.Registry) {
	for classID, c := range registry {
		c := c
		reg.Add(classID, &schema.Type{
			Name: c.Entry.Name,
			Kind: schema.KindStruct,
			VTable: &schema.VTable{
				Read: func(r any, dst any) error {
					rd, ok := r.(*reader.Reader)
					if !ok {
						return fmt.Errorf("classes: RegisterInto read vtable: expected *reader.Reader, got %T", r)
					}
					state, err := c.Deserialize(rd)
					if err != nil {
						return err
					}
					state, err = c.FinishLoading(state)
					if err != nil {
						return err
					}
					ptr, ok := dst.(*any)
					if !ok {
						return fmt.Errorf("classes: RegisterInto read vtable: expected *any, got %T", dst)
					}
					*ptr = state
					return nil
				},
				Write: func(w any, src any) error {
					wr, ok := w.(*writer.Writer)
					if !ok {
						return fmt.Errorf("classes: RegisterInto write vtable: expected *writer.Writer, got %T", w)
					}
					return c.Serialize(wr, src)
				},
			},
		})
	}
}
