package classes

import (
	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
)

const (
	idSpriteTextText  uint32 = 0x01000000
	idSpriteTextFont  uint32 = 0x02000000
	idSpriteTextColor uint32 = 0x04000000
)

// Font is the font description embedded in a sprite-text's font identifier.
type Font struct {
	Name    string
	Size    int32
	Weight  int32
	Italic  int32
	Charset int32
}

// SpriteText is CKSpriteText's (class id 29, data_version >= 5) deserialized
// state.
type SpriteText struct {
	Text            string
	Font            Font
	FontColor       uint32
	BackgroundColor uint32
}

// RegisterSpriteText registers CKSpriteText's deserialize/serialize/
// finish-load triple.
func RegisterSpriteText() {
	Register(&Class{
		Entry:         mustEntry("CKSpriteText"),
		Deserialize:   deserializeSpriteText,
		Serialize:     serializeSpriteText,
		FinishLoading: finishLoadingSpriteText,
		Identifiers:   []uint32{idSpriteTextText, idSpriteTextFont, idSpriteTextColor},
	})
}

func deserializeSpriteText(r *reader.Reader) (any, error) {
	if _, err := callParentDeserialize("CK2dEntity", r); err != nil {
		return nil, err
	}
	st := &SpriteText{Font: Font{Name: "Arial", Size: 12, Weight: 400}}

	// Only defined for data_version >= 5; older chunks carry no sprite-text
	// identifiers and rely entirely on finish-load normalization.
	if r.Chunk().DataVersion < 5 {
		return st, nil
	}

	if err := r.SeekIdentifier(idSpriteTextText); err == nil {
		text, err := r.String()
		if err != nil {
			return nil, err
		}
		st.Text = text
	}

	if err := r.SeekIdentifier(idSpriteTextFont); err == nil {
		name, err := r.String()
		if err != nil {
			return nil, err
		}
		size, err := r.Int()
		if err != nil {
			return nil, err
		}
		weight, err := r.Int()
		if err != nil {
			return nil, err
		}
		italic, err := r.Int()
		if err != nil {
			return nil, err
		}
		charset, err := r.Int()
		if err != nil {
			return nil, err
		}
		st.Font = Font{Name: name, Size: size, Weight: weight, Italic: italic, Charset: charset}
	}

	if err := r.SeekIdentifier(idSpriteTextColor); err == nil {
		fc, err := r.Dword()
		if err != nil {
			return nil, err
		}
		bc, err := r.Dword()
		if err != nil {
			return nil, err
		}
		st.FontColor, st.BackgroundColor = fc, bc
	}

	return st, nil
}

func serializeSpriteText(w *writer.Writer, state any) error {
	st, ok := state.(*SpriteText)
	if !ok {
		return nil
	}

	if err := w.WriteIdentifier(idSpriteTextText); err != nil {
		return err
	}
	if err := w.String(st.Text); err != nil {
		return err
	}

	if err := w.WriteIdentifier(idSpriteTextFont); err != nil {
		return err
	}
	if err := w.String(st.Font.Name); err != nil {
		return err
	}
	if err := w.Int(st.Font.Size); err != nil {
		return err
	}
	if err := w.Int(st.Font.Weight); err != nil {
		return err
	}
	if err := w.Int(st.Font.Italic); err != nil {
		return err
	}
	if err := w.Int(st.Font.Charset); err != nil {
		return err
	}

	if err := w.WriteIdentifier(idSpriteTextColor); err != nil {
		return err
	}
	if err := w.Dword(st.FontColor); err != nil {
		return err
	}
	return w.Dword(st.BackgroundColor)
}

// finishLoadingSpriteText clamps font.size to [6,128], font.weight to
// [100,900], normalizes italic to {0,1}, and ensures a non-empty font name.
func finishLoadingSpriteText(state any) (any, error) {
	st, ok := state.(*SpriteText)
	if !ok {
		return state, nil
	}
	if st.Font.Size < 6 {
		st.Font.Size = 6
	} else if st.Font.Size > 128 {
		st.Font.Size = 128
	}
	if st.Font.Weight < 100 {
		st.Font.Weight = 100
	} else if st.Font.Weight > 900 {
		st.Font.Weight = 900
	}
	if st.Font.Italic != 0 {
		st.Font.Italic = 1
	}
	if st.Font.Name == "" {
		st.Font.Name = "Arial"
	}
	return st, nil
}
