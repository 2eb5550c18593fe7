package writer

import "nmoscene/internal/dword"

// WriteIdentifier writes [id, 0] and, if a prior identifier is live,
// back-patches its next_pos slot with the current position — building the
// chain SeekIdentifier walks.
func (w *Writer) WriteIdentifier(id uint32) error {
	if err := w.checkState(); err != nil {
		return err
	}
	pos := w.Position()
	if w.prevIdentifierPos >= 0 && w.prevIdentifierPos < pos {
		dword.PutU32(w.data[(w.prevIdentifierPos+1)*dword.Size:], uint32(pos))
	}
	w.writeDwordRaw(id)
	w.writeDwordRaw(0)
	w.prevIdentifierPos = pos
	return nil
}
