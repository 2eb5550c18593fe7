// Package format provides the tiny packed-byte-field codec the chunk layer
// uses for version_info: four related byte-sized fields packed low-to-high
// into a single little-endian DWORD. The file envelope does not use it.
//
// This generalizes the teacher's 4-byte {signature,type,version,flags}
// header (kluzzebass-gastrolog/internal/format) from "four bytes at the
// front of a file" to "four bytes packed into one DWORD anywhere in a
// chunk", which is how spec.md's version_info field works.
package format

// PackedFields is four byte-sized fields packed into one little-endian
// DWORD, low byte first: B0 | (B1<<8) | (B2<<16) | (B3<<24).
type PackedFields struct {
	B0, B1, B2, B3 byte
}

// Pack returns the DWORD encoding of f.
func (f PackedFields) Pack() uint32 {
	return uint32(f.B0) | uint32(f.B1)<<8 | uint32(f.B2)<<16 | uint32(f.B3)<<24
}

// Unpack decodes a DWORD into its four byte fields.
func Unpack(v uint32) PackedFields {
	return PackedFields{
		B0: byte(v),
		B1: byte(v >> 8),
		B2: byte(v >> 16),
		B3: byte(v >> 24),
	}
}
