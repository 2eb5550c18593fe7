// Package writer implements the chunk writer: the dual of reader, building a
// DWORD-indexed payload and its side lists, then freezing into a chunk.Chunk
// via Finalize (§4.D).
package writer

import (
	"math"

	"nmoscene/internal/chunk"
	"nmoscene/internal/dword"
	"nmoscene/internal/nmoerr"
	"nmoscene/internal/remap"
)

// initialDwords/growthStepDwords document the teacher-era growth increments
// (§4.D); Go's slice append already amortizes growth, so only initialDwords
// is used, to seed the initial capacity, and growthStepDwords gates nothing
// (§9).
const (
	initialDwords    = 100
	growthStepDwords = 500
)

// sentinelWord marks the start of a sequence in a side list, followed by the
// DWORD position where the sequence's count was written (§3.2, §4.D).
const sentinelWord uint32 = 0xFFFFFFFF

// Writer is the writer's public surface: a typed writer API that mirrors
// reader.Reader one-to-one, with identical per-value DWORD footprint.
type Writer struct {
	classID      uint32
	dataVersion  uint8
	chunkClassID uint8
	chunkVersion uint8
	options      chunk.Options

	data []byte

	ids       []uint32
	managers  []uint32
	chunkRefs []uint32

	prevIdentifierPos int // -1 = no identifier written yet
	finalized         bool

	remap   *remap.Table
	seenIDs map[uint32]bool
}

// New returns a writer for a chunk with the given identity fields.
func New(classID uint32, dataVersion, chunkClassID, chunkVersion uint8) *Writer {
	return &Writer{
		classID:           classID,
		dataVersion:       dataVersion,
		chunkClassID:      chunkClassID,
		chunkVersion:      chunkVersion,
		data:              make([]byte, 0, initialDwords*dword.Size),
		prevIdentifierPos: -1,
		seenIDs:           make(map[uint32]bool),
	}
}

// WithRemap attaches a runtime->file id table, consulted by ObjectID.
func (w *Writer) WithRemap(t *remap.Table) *Writer {
	w.remap = t
	return w
}

func (w *Writer) checkState() error {
	if w.finalized {
		return nmoerr.NewCause("write after finalize", -1, nmoerr.ErrInvalidState)
	}
	return nil
}

func (w *Writer) writeDwordRaw(v uint32) {
	var b [4]byte
	dword.PutU32(b[:], v)
	w.data = append(w.data, b[:]...)
}

func (w *Writer) writeRawBytes(b []byte) {
	w.data = append(w.data, b...)
	if pad := dword.PadLen(len(b)); pad > 0 {
		w.data = append(w.data, make([]byte, pad)...)
	}
}

// Position returns the current write position in DWORDs.
func (w *Writer) Position() int { return len(w.data) / dword.Size }

// --- Scalar typed writers ---

func (w *Writer) Byte(v byte) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(uint32(v))
	return nil
}

func (w *Writer) Word(v uint16) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(uint32(v))
	return nil
}

func (w *Writer) Dword(v uint32) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(v)
	return nil
}

func (w *Writer) Int(v int32) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(uint32(v))
	return nil
}

func (w *Writer) Float(v float32) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(math.Float32bits(v))
	return nil
}

func (w *Writer) Bool(v bool) error {
	if err := w.checkState(); err != nil {
		return err
	}
	if v {
		w.writeDwordRaw(1)
	} else {
		w.writeDwordRaw(0)
	}
	return nil
}

func (w *Writer) GUID(g chunk.GUID) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(g.D1)
	w.writeDwordRaw(g.D2)
	return nil
}

// ObjectID writes a non-zero id translated runtime->file when a remap table
// is attached (a missing entry fails with NotFound); zero passes through
// unchanged. Writing any object-id raises the IDS option. When no remap table
// is attached, the runtime id is recorded (deduplicated) for a later save
// pass to resolve.
func (w *Writer) ObjectID(id uint32) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.options.Set(chunk.OptIDS)

	toWrite := id
	if id != 0 {
		if w.remap != nil {
			f, err := w.remap.ToFile(id)
			if err != nil {
				return err
			}
			toWrite = f
		} else if !w.seenIDs[id] {
			w.seenIDs[id] = true
			w.ids = append(w.ids, id)
		}
	}
	w.writeDwordRaw(toWrite)
	return nil
}

// String writes a length-prefixed, DWORD-padded string: [length:u32][bytes
// padded to DWORD].
func (w *Writer) String(s string) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(uint32(len(s)))
	w.writeRawBytes([]byte(s))
	return nil
}

// Buffer writes a length-prefixed, DWORD-padded byte buffer.
func (w *Writer) Buffer(b []byte) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeDwordRaw(uint32(len(b)))
	w.writeRawBytes(b)
	return nil
}

// Bytes writes raw bytes (padded to a DWORD boundary) with no length prefix.
func (w *Writer) Bytes(b []byte) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.writeRawBytes(b)
	return nil
}

func (w *Writer) floats(vs []float32) error {
	for _, v := range vs {
		if err := w.Float(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Vector2(v [2]float32) error { return w.floats(v[:]) }
func (w *Writer) Vector3(v [3]float32) error { return w.floats(v[:]) }
func (w *Writer) Vector4(v [4]float32) error { return w.floats(v[:]) }
func (w *Writer) Matrix(m [16]float32) error { return w.floats(m[:]) }
func (w *Writer) Quaternion(q [4]float32) error { return w.Vector4(q) }
func (w *Writer) Color(c [4]float32) error      { return w.Vector4(c) }

// StartObjectSequence writes count as a leading element count and records a
// sentinel + position pair in the ids side list; raises IDS.
func (w *Writer) StartObjectSequence(count int) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.options.Set(chunk.OptIDS)
	w.ids = append(w.ids, sentinelWord, uint32(w.Position()))
	w.writeDwordRaw(uint32(count))
	return nil
}

// StartManagerSequence writes count as a leading element count and records a
// sentinel + position pair in the managers side list; raises MAN.
func (w *Writer) StartManagerSequence(count int) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.options.Set(chunk.OptMAN)
	w.managers = append(w.managers, sentinelWord, uint32(w.Position()))
	w.writeDwordRaw(uint32(count))
	return nil
}

// StartSubchunkSequence writes count as a leading element count and records
// a sentinel + position pair in the chunk_refs side list; raises CHN.
func (w *Writer) StartSubchunkSequence(count int) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.options.Set(chunk.OptCHN)
	w.chunkRefs = append(w.chunkRefs, sentinelWord, uint32(w.Position()))
	w.writeDwordRaw(uint32(count))
	return nil
}

// ManagerInt writes a standalone manager-int record: {guid, value:i32}.
func (w *Writer) ManagerInt(g chunk.GUID, v int32) error {
	if err := w.GUID(g); err != nil {
		return err
	}
	return w.Int(v)
}

// ManagerIntSequence writes one value within an open manager-int sequence.
func (w *Writer) ManagerIntSequence(v int32) error {
	return w.Int(v)
}

// Finalize transfers the built buffer and side-lists into a new chunk.Chunk
// and freezes the writer; every subsequent write method returns InvalidState.
func (w *Writer) Finalize() (*chunk.Chunk, error) {
	if err := w.checkState(); err != nil {
		return nil, err
	}
	w.finalized = true
	return &chunk.Chunk{
		ClassID:      w.classID,
		DataVersion:  w.dataVersion,
		ChunkClassID: w.chunkClassID,
		ChunkVersion: w.chunkVersion,
		Options:      w.options,
		Data:         w.data,
		IDs:          w.ids,
		Managers:     w.managers,
		ChunkRefs:    w.chunkRefs,
	}, nil
}
