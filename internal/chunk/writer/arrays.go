package writer

import "nmoscene/internal/dword"

// ArrayLendian writes [total_bytes:u32][elem_count:u32][bytes padded to
// DWORD].
func (w *Writer) ArrayLendian(elemCount int, data []byte) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(uint32(len(data)))
	w.writeDwordRaw(uint32(elemCount))
	w.writeRawBytes(data)
	return nil
}

// ArrayLendian16 is ArrayLendian but 16-bit-swaps each halfword of a copy of
// data before writing, the dual of reader.ArrayLendian16's post-read swap.
func (w *Writer) ArrayLendian16(elemCount int, data []byte) error {
	swapped := append([]byte(nil), data...)
	dword.SwapWords16(swapped)
	return w.ArrayLendian(elemCount, swapped)
}

// BufferNoSize writes raw bytes (padded to a DWORD boundary) with no length
// prefix.
func (w *Writer) BufferNoSize(data []byte) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeRawBytes(data)
	return nil
}

// BufferNoSizeLendian16 is BufferNoSize but 16-bit-swaps each halfword of a
// copy of data before writing.
func (w *Writer) BufferNoSizeLendian16(data []byte) error {
	swapped := append([]byte(nil), data...)
	dword.SwapWords16(swapped)
	return w.BufferNoSize(swapped)
}
