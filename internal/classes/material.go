package classes

import (
	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
	"nmoscene/internal/hierarchy"
)

// Material identifier catalog (§4.J, bit-compatibility requirement).
const (
	idMaterialColors     uint32 = 0x00001000
	idMaterialTextures   uint32 = 0x00002000
	idMaterialRendering  uint32 = 0x00004000
)

// Color4 is an RGBA color stored as four floats (not the packed-ARGB form
// CKLight's diffuse uses).
type Color4 struct {
	R, G, B, A float32
}

// Material is CKMaterial's (class id 30) deserialized state.
type Material struct {
	Ambient, Diffuse, Specular, Emissive Color4
	SpecularPower                        float32

	TextureIDs  []uint32 // up to 4 object-ids
	BlendMode   uint32
	MinFilter   uint32
	MagFilter   uint32
	AddressMode uint32
	BorderColor uint32

	Shade            uint32
	Fill             uint32
	AlphaTestEnabled bool
	AlphaFunc        uint32
	AlphaRef         uint8
	BlendEnabled     bool
	SrcBlend         uint32
	DestBlend        uint32
	ZWrite           bool
	ZTest            bool
	TwoSided         bool
}

// RegisterMaterial registers CKMaterial's deserialize/serialize/finish-load
// triple.
func RegisterMaterial() {
	Register(&Class{
		Entry:         mustEntry("CKMaterial"),
		Deserialize:   deserializeMaterial,
		Serialize:     serializeMaterial,
		FinishLoading: finishLoadingMaterial,
		Identifiers:   []uint32{idMaterialColors, idMaterialTextures, idMaterialRendering},
	})
}

func deserializeMaterial(r *reader.Reader) (any, error) {
	if _, err := callParentDeserialize("CKObject", r); err != nil {
		return nil, err
	}
	m := &Material{
		Ambient: Color4{0.2, 0.2, 0.2, 1}, Diffuse: Color4{0.8, 0.8, 0.8, 1},
		Specular: Color4{0, 0, 0, 1}, Emissive: Color4{0, 0, 0, 1},
		SpecularPower: 0,
		ZWrite:        true, ZTest: true,
	}

	if err := r.SeekIdentifier(idMaterialColors); err == nil {
		if err := readColor4(r, &m.Ambient); err != nil {
			return nil, err
		}
		if err := readColor4(r, &m.Diffuse); err != nil {
			return nil, err
		}
		if err := readColor4(r, &m.Specular); err != nil {
			return nil, err
		}
		if err := readColor4(r, &m.Emissive); err != nil {
			return nil, err
		}
		power, err := r.Float()
		if err != nil {
			return nil, err
		}
		m.SpecularPower = power
	}

	if err := r.SeekIdentifier(idMaterialTextures); err == nil {
		count, err := r.Dword()
		if err != nil {
			return nil, err
		}
		if count > 4 {
			count = 4
		}
		m.TextureIDs = make([]uint32, count)
		for i := range m.TextureIDs {
			id, err := r.ObjectID()
			if err != nil {
				return nil, err
			}
			m.TextureIDs[i] = id
		}
		var err2 error
		if m.BlendMode, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		if m.MinFilter, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		if m.MagFilter, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		if m.AddressMode, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		if m.BorderColor, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
	}

	if err := r.SeekIdentifier(idMaterialRendering); err == nil {
		var err2 error
		if m.Shade, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		if m.Fill, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		if m.AlphaTestEnabled, err2 = r.Bool(); err2 != nil {
			return nil, err2
		}
		if m.AlphaFunc, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		alphaRef, err3 := r.Dword()
		if err3 != nil {
			return nil, err3
		}
		m.AlphaRef = uint8(alphaRef)
		if m.BlendEnabled, err2 = r.Bool(); err2 != nil {
			return nil, err2
		}
		if m.SrcBlend, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		if m.DestBlend, err2 = r.Dword(); err2 != nil {
			return nil, err2
		}
		if m.ZWrite, err2 = r.Bool(); err2 != nil {
			return nil, err2
		}
		if m.ZTest, err2 = r.Bool(); err2 != nil {
			return nil, err2
		}
		if m.TwoSided, err2 = r.Bool(); err2 != nil {
			return nil, err2
		}
	}

	return m, nil
}

func readColor4(r *reader.Reader, c *Color4) error {
	v, err := r.Vector4()
	if err != nil {
		return err
	}
	c.R, c.G, c.B, c.A = v[0], v[1], v[2], v[3]
	return nil
}

func writeColor4(w *writer.Writer, c Color4) error {
	return w.Vector4([4]float32{c.R, c.G, c.B, c.A})
}

func serializeMaterial(w *writer.Writer, state any) error {
	m, ok := state.(*Material)
	if !ok {
		return nil
	}

	if err := w.WriteIdentifier(idMaterialColors); err != nil {
		return err
	}
	for _, c := range []Color4{m.Ambient, m.Diffuse, m.Specular, m.Emissive} {
		if err := writeColor4(w, c); err != nil {
			return err
		}
	}
	if err := w.Float(m.SpecularPower); err != nil {
		return err
	}

	if err := w.WriteIdentifier(idMaterialTextures); err != nil {
		return err
	}
	if err := w.Dword(uint32(len(m.TextureIDs))); err != nil {
		return err
	}
	for _, id := range m.TextureIDs {
		if err := w.ObjectID(id); err != nil {
			return err
		}
	}
	for _, v := range []uint32{m.BlendMode, m.MinFilter, m.MagFilter, m.AddressMode, m.BorderColor} {
		if err := w.Dword(v); err != nil {
			return err
		}
	}

	if err := w.WriteIdentifier(idMaterialRendering); err != nil {
		return err
	}
	if err := w.Dword(m.Shade); err != nil {
		return err
	}
	if err := w.Dword(m.Fill); err != nil {
		return err
	}
	if err := w.Bool(m.AlphaTestEnabled); err != nil {
		return err
	}
	if err := w.Dword(m.AlphaFunc); err != nil {
		return err
	}
	if err := w.Dword(uint32(m.AlphaRef)); err != nil {
		return err
	}
	if err := w.Bool(m.BlendEnabled); err != nil {
		return err
	}
	if err := w.Dword(m.SrcBlend); err != nil {
		return err
	}
	if err := w.Dword(m.DestBlend); err != nil {
		return err
	}
	if err := w.Bool(m.ZWrite); err != nil {
		return err
	}
	if err := w.Bool(m.ZTest); err != nil {
		return err
	}
	return w.Bool(m.TwoSided)
}

func finishLoadingMaterial(state any) (any, error) {
	return state, nil
}

// callParentDeserialize looks up a stub/concrete parent class by name and
// invokes its Deserialize, per the canonical "parent first" shape.
func callParentDeserialize(name string, r *reader.Reader) (any, error) {
	c, ok := Lookup(mustEntryID(name))
	if !ok {
		return struct{}{}, nil
	}
	return c.Deserialize(r)
}

func mustEntryID(name string) uint32 {
	e, ok := hierarchy.ByName(name)
	if !ok {
		panic("classes: unknown hierarchy entry " + name)
	}
	return e.ClassID
}
