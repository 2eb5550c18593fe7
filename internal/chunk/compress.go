package chunk

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"nmoscene/internal/nmoerr"
)

// zstdDec is a package-level decoder, concurrent-safe, shared by every
// PackCompressed/ParseCompressed call.
var zstdDec *zstd.Decoder

func init() {
	var err error
	zstdDec, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic("chunk: init zstd decoder: " + err.Error())
	}
}

// encoderPool amortizes the cost of constructing a zstd encoder across calls;
// encoders are not safe for concurrent use, so each user checks one out.
var encoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			panic("chunk: init zstd encoder: " + err.Error())
		}
		return enc
	},
}

// PackCompressed packs c's envelope bytes (as Pack would) and zstd-compresses
// them, recording UncompressedSize/CompressedSize on c (§3.1's "compression
// counters"). The envelope package does not call it: its manager and object
// data records always hold the uncompressed Pack output.
func (c *Chunk) PackCompressed() ([]byte, error) {
	raw, err := c.Pack()
	if err != nil {
		return nil, err
	}
	enc := encoderPool.Get().(*zstd.Encoder)
	defer encoderPool.Put(enc)

	compressed := enc.EncodeAll(raw, nil)
	c.UncompressedSize = uint32(len(raw))
	c.CompressedSize = uint32(len(compressed))
	return compressed, nil
}

// ParseCompressed decompresses a zstd-compressed chunk envelope (as produced
// by PackCompressed) and parses it.
func ParseCompressed(compressed []byte) (*Chunk, error) {
	raw, err := zstdDec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nmoerr.NewCause(fmt.Sprintf("zstd decompress: %s", err), -1, nmoerr.ErrCorrupt)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	c.UncompressedSize = uint32(len(raw))
	c.CompressedSize = uint32(len(compressed))
	return c, nil
}
