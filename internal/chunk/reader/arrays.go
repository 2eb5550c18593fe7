package reader

import "nmoscene/internal/dword"

// ArrayLendian reads [total_bytes:u32][elem_count:u32][bytes padded to
// DWORD] and returns the element count and a fresh copy of the raw bytes.
func (r *Reader) ArrayLendian() (elemCount int, data []byte, err error) {
	totalBytes, err := r.readDwordRaw()
	if err != nil {
		return 0, nil, err
	}
	count, err := r.readDwordRaw()
	if err != nil {
		return 0, nil, err
	}
	b, err := r.readBytesRaw(int(totalBytes))
	if err != nil {
		return 0, nil, err
	}
	return int(count), b, nil
}

// ArrayLendian16 is ArrayLendian but 16-bit-swaps each halfword of the copy
// after reading, for arrays authored little-endian but stored byte-swapped.
func (r *Reader) ArrayLendian16() (elemCount int, data []byte, err error) {
	count, b, err := r.ArrayLendian()
	if err != nil {
		return 0, nil, err
	}
	dword.SwapWords16(b)
	return count, b, nil
}

// BufferNoSize reads count raw bytes (padded to a DWORD boundary) with no
// length prefix: the caller already knows the byte count.
func (r *Reader) BufferNoSize(count int) ([]byte, error) {
	return r.readBytesRaw(count)
}

// BufferNoSizeLendian16 is BufferNoSize but 16-bit-swaps each halfword of the
// result after reading.
func (r *Reader) BufferNoSizeLendian16(count int) ([]byte, error) {
	b, err := r.readBytesRaw(count)
	if err != nil {
		return nil, err
	}
	dword.SwapWords16(b)
	return b, nil
}
