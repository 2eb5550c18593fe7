// Package reader implements the chunk parser: a typed, cursor-based reader
// over a Chunk's DWORD-indexed payload (§4.C). All reads advance the cursor
// by exactly the DWORDs consumed. A single-DWORD or single byte-run read that
// fails leaves the cursor where it was; a multi-part read (a length prefix
// and its bytes, a GUID, a vector, an array header and its data) that fails
// part-way leaves the cursor after the parts it already consumed.
package reader

import (
	"math"

	"nmoscene/internal/chunk"
	"nmoscene/internal/dword"
	"nmoscene/internal/nmoerr"
	"nmoscene/internal/remap"
)

// Reader is the parser's public surface: a typed reader API over one chunk's
// payload.
type Reader struct {
	c                 *chunk.Chunk
	cursor            int // in DWORDs
	prevIdentifierPos int // -1 = no identifier visited yet this parse
	remap             *remap.Table
	seenIDs           map[uint32]bool
}

// New returns a parser positioned at the start of c's payload.
func New(c *chunk.Chunk) *Reader {
	return &Reader{c: c, prevIdentifierPos: -1, seenIDs: make(map[uint32]bool)}
}

// WithRemap attaches a file->runtime id table, consulted by ObjectID when the
// chunk's FILE option is set.
func (r *Reader) WithRemap(t *remap.Table) *Reader {
	r.remap = t
	return r
}

// Cursor returns the current position in DWORDs.
func (r *Reader) Cursor() int { return r.cursor }

// Chunk returns the chunk being read.
func (r *Reader) Chunk() *chunk.Chunk { return r.c }

func (r *Reader) dataSizeDwords() int { return r.c.DataSizeDwords() }

func (r *Reader) dwordAt(i int) uint32 {
	return dword.GetU32(r.c.Data[i*dword.Size:])
}

func (r *Reader) readDwordRaw() (uint32, error) {
	if r.cursor >= r.dataSizeDwords() {
		return 0, nmoerr.NewCause("read past end of chunk payload", r.cursor*dword.Size, nmoerr.ErrEOF)
	}
	v := r.dwordAt(r.cursor)
	r.cursor++
	return v, nil
}

func (r *Reader) readBytesRaw(n int) ([]byte, error) {
	padded := dword.AlignUp(n, dword.Size)
	need := padded / dword.Size
	if r.cursor+need > r.dataSizeDwords() {
		return nil, nmoerr.NewCause("read past end of chunk payload", r.cursor*dword.Size, nmoerr.ErrEOF)
	}
	start := r.cursor * dword.Size
	out := append([]byte(nil), r.c.Data[start:start+n]...)
	r.cursor += need
	return out, nil
}

// --- Scalar typed readers ---

// Byte reads one DWORD, returning its low byte.
func (r *Reader) Byte() (byte, error) {
	v, err := r.readDwordRaw()
	return byte(v), err
}

// Word reads one DWORD, returning its low 16 bits.
func (r *Reader) Word() (uint16, error) {
	v, err := r.readDwordRaw()
	return uint16(v), err
}

// Dword reads a raw DWORD.
func (r *Reader) Dword() (uint32, error) { return r.readDwordRaw() }

// Int reads a DWORD bit-reinterpreted as a signed 32-bit integer.
func (r *Reader) Int() (int32, error) {
	v, err := r.readDwordRaw()
	return int32(v), err
}

// Float reads a DWORD bit-reinterpreted as an IEEE-754 float32.
func (r *Reader) Float() (float32, error) {
	v, err := r.readDwordRaw()
	return math.Float32frombits(v), err
}

// Bool reads a DWORD as a bool-as-u32 (nonzero is true).
func (r *Reader) Bool() (bool, error) {
	v, err := r.readDwordRaw()
	return v != 0, err
}

// GUID reads a 2-DWORD GUID.
func (r *Reader) GUID() (chunk.GUID, error) {
	d1, err := r.readDwordRaw()
	if err != nil {
		return chunk.GUID{}, err
	}
	d2, err := r.readDwordRaw()
	if err != nil {
		return chunk.GUID{}, err
	}
	return chunk.GUID{D1: d1, D2: d2}, nil
}

// ObjectID reads one DWORD as an object-id. When the chunk's FILE option is
// set and a remap table is attached, it is translated file->runtime; the
// runtime id is recorded in the chunk's IDs list exactly once.
func (r *Reader) ObjectID() (uint32, error) {
	raw, err := r.readDwordRaw()
	if err != nil {
		return 0, err
	}
	id := raw
	if r.c.Options.Has(chunk.OptFILE) && r.remap != nil {
		id, err = r.remap.ToRuntime(raw)
		if err != nil {
			return 0, err
		}
	}
	if id != 0 && !r.seenIDs[id] {
		r.seenIDs[id] = true
		r.c.IDs = append(r.c.IDs, id)
	}
	return id, nil
}

// String reads a length-prefixed, DWORD-padded string: [length:u32][bytes
// padded to DWORD]. The returned string holds exactly length bytes.
func (r *Reader) String() (string, error) {
	length, err := r.readDwordRaw()
	if err != nil {
		return "", err
	}
	b, err := r.readBytesRaw(int(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Buffer reads a length-prefixed, DWORD-padded byte buffer: [length:u32]
// [bytes padded to DWORD].
func (r *Reader) Buffer() ([]byte, error) {
	length, err := r.readDwordRaw()
	if err != nil {
		return nil, err
	}
	return r.readBytesRaw(int(length))
}

// Bytes reads count raw bytes, padded to a DWORD boundary, with no
// size-prefix: the caller already knows count.
func (r *Reader) Bytes(count int) ([]byte, error) {
	return r.readBytesRaw(count)
}

func (r *Reader) floats(n int) ([]float32, error) {
	out := make([]float32, n)
	for i := range out {
		v, err := r.Float()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Vector2 reads 2 floats.
func (r *Reader) Vector2() ([2]float32, error) {
	f, err := r.floats(2)
	if err != nil {
		return [2]float32{}, err
	}
	return [2]float32{f[0], f[1]}, nil
}

// Vector3 reads 3 floats.
func (r *Reader) Vector3() ([3]float32, error) {
	f, err := r.floats(3)
	if err != nil {
		return [3]float32{}, err
	}
	return [3]float32{f[0], f[1], f[2]}, nil
}

// Vector4 reads 4 floats.
func (r *Reader) Vector4() ([4]float32, error) {
	f, err := r.floats(4)
	if err != nil {
		return [4]float32{}, err
	}
	return [4]float32{f[0], f[1], f[2], f[3]}, nil
}

// Matrix reads a 4x4 matrix of floats (16 DWORDs), row-major.
func (r *Reader) Matrix() ([16]float32, error) {
	f, err := r.floats(16)
	if err != nil {
		return [16]float32{}, err
	}
	var m [16]float32
	copy(m[:], f)
	return m, nil
}

// Quaternion reads 4 floats (x,y,z,w).
func (r *Reader) Quaternion() ([4]float32, error) {
	return r.Vector4()
}

// Color reads an RGBA color as 4 floats. Integer-packed ARGB colors (e.g.
// CKLight's diffuse field) are read directly as a DWORD by the class layer,
// not through this reader.
func (r *Reader) Color() ([4]float32, error) {
	return r.Vector4()
}

// StartReadSequence reads the leading element count of an object-id,
// manager-int, or sub-chunk sequence.
func (r *Reader) StartReadSequence() (int, error) {
	n, err := r.readDwordRaw()
	return int(n), err
}

// ManagerInt reads a standalone manager-int record: {guid, value:i32}.
func (r *Reader) ManagerInt() (chunk.GUID, int32, error) {
	g, err := r.GUID()
	if err != nil {
		return chunk.GUID{}, 0, err
	}
	v, err := r.Int()
	if err != nil {
		return chunk.GUID{}, 0, err
	}
	return g, v, nil
}

// ManagerIntSequence reads one value within an open manager-int sequence
// (no per-item guid).
func (r *Reader) ManagerIntSequence() (int32, error) {
	return r.Int()
}
