package classes

import (
	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
)

// Light type tags (packed into the low byte of the modern type|flags DWORD).
const (
	LightPoint = iota
	LightSpot
	LightDirectional
)

const (
	idLightMain  uint32 = 0x400000
	idLightPower uint32 = 0x800000
)

// Light is CKLight's (class id 38) deserialized state.
type Light struct {
	Type          uint32
	Flags         uint32 // upper 3 bytes of the modern packed DWORD
	Diffuse       uint32 // ARGB, packed
	Attenuation0  float32
	Attenuation1  float32
	Attenuation2  float32
	Range         float32
	SpotOuterCone float32
	SpotInnerCone float32
	SpotFalloff   float32
	Power         float32 // default 1.0

	// Legacy-only fields (data_version < 5).
	Active   bool
	Specular bool
}

// RegisterLight registers CKLight's deserialize/serialize/finish-load triple.
func RegisterLight() {
	Register(&Class{
		Entry:         mustEntry("CKLight"),
		Deserialize:   deserializeLight,
		Serialize:     serializeLight,
		FinishLoading: finishLoadingLight,
		Identifiers:   []uint32{idLightMain, idLightPower},
	})
}

func deserializeLight(r *reader.Reader) (any, error) {
	if _, err := callParentDeserialize("CK3dEntity", r); err != nil {
		return nil, err
	}
	l := &Light{Range: 0, Power: 1.0}

	dataVersion := r.Chunk().DataVersion
	if err := r.SeekIdentifier(idLightMain); err != nil {
		// Absent identifier: documented defaults apply, nothing more to read.
		return l, nil
	}

	if dataVersion >= 5 {
		packed, err := r.Dword()
		if err != nil {
			return nil, err
		}
		l.Type = packed & 0xFF
		l.Flags = packed >> 8

		diffuse, err := r.Dword()
		if err != nil {
			return nil, err
		}
		l.Diffuse = diffuse

		if err := readLightAttenAndRange(r, l); err != nil {
			return nil, err
		}

		if l.Type == LightSpot {
			if err := readSpotTriple(r, l); err != nil {
				return nil, err
			}
		}

		if err := r.SeekIdentifier(idLightPower); err == nil {
			power, err := r.Float()
			if err != nil {
				return nil, err
			}
			l.Power = power
		}
		return l, nil
	}

	// Legacy (data_version < 5): unpacked type, explicit RGB + skipped
	// alpha, active/specular as i32 flags, always-present spot triple,
	// implicit power = 1.0.
	typ, err := r.Dword()
	if err != nil {
		return nil, err
	}
	l.Type = typ

	rgb, err := r.Vector3()
	if err != nil {
		return nil, err
	}
	if _, err := r.Float(); err != nil { // alpha, discarded
		return nil, err
	}
	l.Diffuse = packARGB(1, rgb[0], rgb[1], rgb[2])

	if err := readLightAttenAndRange(r, l); err != nil {
		return nil, err
	}

	active, err := r.Int()
	if err != nil {
		return nil, err
	}
	l.Active = active != 0
	specular, err := r.Int()
	if err != nil {
		return nil, err
	}
	l.Specular = specular != 0

	if err := readSpotTriple(r, l); err != nil {
		return nil, err
	}
	l.Power = 1.0
	return l, nil
}

func readLightAttenAndRange(r *reader.Reader, l *Light) error {
	var err error
	if l.Attenuation0, err = r.Float(); err != nil {
		return err
	}
	if l.Attenuation1, err = r.Float(); err != nil {
		return err
	}
	if l.Attenuation2, err = r.Float(); err != nil {
		return err
	}
	l.Range, err = r.Float()
	return err
}

func readSpotTriple(r *reader.Reader, l *Light) error {
	var err error
	if l.SpotOuterCone, err = r.Float(); err != nil {
		return err
	}
	if l.SpotInnerCone, err = r.Float(); err != nil {
		return err
	}
	l.SpotFalloff, err = r.Float()
	return err
}

func packARGB(a, r, g, b float32) uint32 {
	clamp := func(f float32) uint32 {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		return uint32(f*255 + 0.5)
	}
	return clamp(a)<<24 | clamp(r)<<16 | clamp(g)<<8 | clamp(b)
}

func serializeLight(w *writer.Writer, state any) error {
	l, ok := state.(*Light)
	if !ok {
		return nil
	}

	if err := w.WriteIdentifier(idLightMain); err != nil {
		return err
	}
	packed := (l.Type & 0xFF) | (l.Flags << 8)
	if err := w.Dword(packed); err != nil {
		return err
	}
	if err := w.Dword(l.Diffuse); err != nil {
		return err
	}
	if err := w.Float(l.Attenuation0); err != nil {
		return err
	}
	if err := w.Float(l.Attenuation1); err != nil {
		return err
	}
	if err := w.Float(l.Attenuation2); err != nil {
		return err
	}
	if err := w.Float(l.Range); err != nil {
		return err
	}
	if l.Type == LightSpot {
		if err := w.Float(l.SpotOuterCone); err != nil {
			return err
		}
		if err := w.Float(l.SpotInnerCone); err != nil {
			return err
		}
		if err := w.Float(l.SpotFalloff); err != nil {
			return err
		}
	}

	if l.Power != 1.0 {
		if err := w.WriteIdentifier(idLightPower); err != nil {
			return err
		}
		if err := w.Float(l.Power); err != nil {
			return err
		}
	}
	return nil
}

func finishLoadingLight(state any) (any, error) {
	return state, nil
}
