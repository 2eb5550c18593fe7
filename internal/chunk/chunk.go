// Package chunk defines the Chunk core type: the atomic serialization unit
// that every object, manager, and plugin record in a file is built from. A
// Chunk owns a DWORD-indexed byte payload plus the side lists (object ids,
// manager records, owned sub-chunks) that the parser and writer packages
// populate.
//
// This package only knows the top-level envelope layout (§4.B): the typed
// reader/writer API that interprets a Chunk's payload lives in the sibling
// reader/writer packages, one layer up.
package chunk

import (
	"fmt"

	"nmoscene/internal/dword"
	"nmoscene/internal/format"
	"nmoscene/internal/nmoerr"
)

// CurrentVersion is the chunk format version written by New.
const CurrentVersion = 7

// Chunk is the atomic serialization unit.
type Chunk struct {
	// Identity.
	ClassID      uint32 // modern 32-bit class id; not part of the wire layout, set by the caller from context (e.g. the envelope's object directory)
	DataVersion  uint8
	ChunkVersion uint8
	ChunkClassID uint8 // legacy 8-bit class tag, packed into version_info
	Options      Options

	// Payload: a DWORD-indexed byte buffer. Always a multiple of dword.Size.
	Data []byte

	// Side lists.
	IDs       []uint32
	Managers  []uint32
	Chunks    []*Chunk // owned sub-chunks (recursively packed, §4.B "if CHN")
	ChunkRefs []uint32 // DWORD positions into Data where inlined sub-chunks begin (§4.C/§4.D write_subchunk)

	// Compression counters (informational; populated only by PackCompressed
	// and ParseCompressed).
	UncompressedSize uint32
	CompressedSize   uint32

	ownsData bool
}

// New returns an empty chunk with chunk_version = 7 and owns_data = true.
func New() *Chunk {
	return &Chunk{ChunkVersion: CurrentVersion, ownsData: true}
}

// DataSizeDwords returns data_size, the payload length in DWORDs.
func (c *Chunk) DataSizeDwords() int { return len(c.Data) / dword.Size }

// packVersionInfo packs the four identity byte-fields into version_info.
// The worked byte-exact example in the testable-properties scenarios places
// chunk_options at byte 2 and chunk_version at byte 3 (dv | ccid<<8 | co<<16 |
// cv<<24); that ordering, not the shorthand prose comment naming cv<<16, is
// what this implementation follows — see DESIGN.md.
func (c *Chunk) packVersionInfo() uint32 {
	return PackVersionInfo(c.DataVersion, c.ChunkClassID, c.Options, c.ChunkVersion)
}

// PackVersionInfo packs the four identity byte-fields into version_info,
// exported for the reader/writer packages' inline sub-chunk codec
// (read_subchunk/write_subchunk), which embeds the same packed field.
func PackVersionInfo(dataVersion, chunkClassID uint8, options Options, chunkVersion uint8) uint32 {
	return format.PackedFields{
		B0: dataVersion,
		B1: chunkClassID,
		B2: uint8(options),
		B3: chunkVersion,
	}.Pack()
}

// UnpackVersionInfo is the inverse of PackVersionInfo.
func UnpackVersionInfo(v uint32) (dataVersion, chunkClassID uint8, options Options, chunkVersion uint8) {
	f := format.Unpack(v)
	return f.B0, f.B1, Options(f.B2), f.B3
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	dword.PutU32(b[:], v)
	return append(buf, b[:]...)
}

// Pack serializes c to its top-level envelope byte layout (§4.B). Sub-chunks
// in Chunks are packed recursively.
func (c *Chunk) Pack() ([]byte, error) {
	if len(c.Data)%dword.Size != 0 {
		return nil, nmoerr.NewCause(fmt.Sprintf("chunk data length %d is not DWORD-aligned", len(c.Data)), -1, nmoerr.ErrInvalidFormat)
	}

	buf := make([]byte, 0, 8+len(c.Data))
	buf = appendU32(buf, c.packVersionInfo())
	buf = appendU32(buf, uint32(c.DataSizeDwords()))
	buf = append(buf, c.Data...)

	if c.Options.Has(OptIDS) {
		buf = appendU32(buf, uint32(len(c.IDs)))
		for _, id := range c.IDs {
			buf = appendU32(buf, id)
		}
	}
	if c.Options.Has(OptCHN) {
		buf = appendU32(buf, uint32(len(c.Chunks)))
		for _, sub := range c.Chunks {
			sb, err := sub.Pack()
			if err != nil {
				return nil, err
			}
			buf = append(buf, sb...)
		}
	}
	if c.Options.Has(OptMAN) {
		buf = appendU32(buf, uint32(len(c.Managers)))
		for _, m := range c.Managers {
			buf = appendU32(buf, m)
		}
	}
	return buf, nil
}

// Parse parses a single top-level chunk envelope from buf, rejecting any
// trailing bytes left after the declared sections with InvalidFormat.
func Parse(buf []byte) (*Chunk, error) {
	c, n, err := parseOne(buf)
	if err != nil {
		return nil, err
	}
	if n != len(buf) {
		return nil, nmoerr.NewCause(fmt.Sprintf("%d trailing byte(s) after chunk envelope", len(buf)-n), n, nmoerr.ErrInvalidFormat)
	}
	return c, nil
}

// parseOne parses one chunk envelope as a prefix of buf and returns the
// number of bytes consumed, to support the recursive "if CHN" sub-chunk list.
func parseOne(buf []byte) (*Chunk, int, error) {
	pos := 0
	if !dword.CheckBounds(pos, 8, len(buf)) {
		return nil, 0, nmoerr.NewCause("chunk envelope header", pos, nmoerr.ErrEOF)
	}
	versionInfo := dword.GetU32(buf[pos:])
	pos += dword.Size
	dataSizeDwords := dword.GetU32(buf[pos:])
	pos += dword.Size

	dataVersion, chunkClassID, options, chunkVersion := UnpackVersionInfo(versionInfo)
	c := &Chunk{
		DataVersion:  dataVersion,
		ChunkClassID: chunkClassID,
		ChunkVersion: chunkVersion,
		Options:      options,
		ownsData:     true,
	}

	dataBytes := int(dataSizeDwords) * dword.Size
	if !dword.CheckBounds(pos, dataBytes, len(buf)) {
		return nil, 0, nmoerr.NewCause("chunk payload", pos, nmoerr.ErrBufferOverrun)
	}
	c.Data = append([]byte(nil), buf[pos:pos+dataBytes]...)
	pos += dataBytes

	if options.Has(OptIDS) {
		ids, n, err := readU32List(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		c.IDs = ids
		pos = n
	}
	if options.Has(OptCHN) {
		if !dword.CheckBounds(pos, dword.Size, len(buf)) {
			return nil, 0, nmoerr.NewCause("chunk_count", pos, nmoerr.ErrEOF)
		}
		count := int(dword.GetU32(buf[pos:]))
		pos += dword.Size
		c.Chunks = make([]*Chunk, count)
		for i := 0; i < count; i++ {
			sub, n, err := parseOne(buf[pos:])
			if err != nil {
				return nil, 0, err
			}
			c.Chunks[i] = sub
			pos += n
		}
	}
	if options.Has(OptMAN) {
		mgrs, n, err := readU32List(buf, pos)
		if err != nil {
			return nil, 0, err
		}
		c.Managers = mgrs
		pos = n
	}
	return c, pos, nil
}

func readU32List(buf []byte, pos int) ([]uint32, int, error) {
	if !dword.CheckBounds(pos, dword.Size, len(buf)) {
		return nil, 0, nmoerr.NewCause("list count", pos, nmoerr.ErrEOF)
	}
	count := int(dword.GetU32(buf[pos:]))
	pos += dword.Size
	need := count * dword.Size
	if !dword.CheckBounds(pos, need, len(buf)) {
		return nil, 0, nmoerr.NewCause("list elements", pos, nmoerr.ErrBufferOverrun)
	}
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		out[i] = dword.GetU32(buf[pos:])
		pos += dword.Size
	}
	return out, pos, nil
}

// AppendSubchunk records sub as an owned sub-chunk and raises the CHN option.
// This is the bookkeeping half of "append a sub-chunk" (§4.B); inlining a
// sub-chunk into the payload itself (write_subchunk) is the writer package's
// job and additionally records the emission position in ChunkRefs.
func (c *Chunk) AppendSubchunk(sub *Chunk) {
	c.Chunks = append(c.Chunks, sub)
	c.Options.Set(OptCHN)
}
