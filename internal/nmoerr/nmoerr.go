// Package nmoerr declares the sentinel errors shared across the codec layers
// and a small Cause chain for attaching position/context to a failure without
// turning it into an exception mechanism.
package nmoerr

import (
	"errors"
	"fmt"
)

// Buffer/structural errors: raised by buffer primitives and the chunk
// parser/writer. Never recovered locally.
var (
	ErrBufferOverrun = errors.New("buffer overrun")
	ErrEOF           = errors.New("unexpected end of data")
	ErrInvalidOffset = errors.New("invalid offset")
	ErrOutOfBounds   = errors.New("out of bounds")
	ErrInvalidFormat = errors.New("invalid format")
	ErrCorrupt       = errors.New("corrupt data")
)

// Schema/semantic errors: raised by the schema layer and class handlers. A
// missing identifier is not a failure: seek_identifier reports it with
// ErrNotFound and the class handler applies a default instead of surfacing
// the error.
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrNotImplemented     = errors.New("not implemented")
)

// Resource errors: always surfaced.
var (
	ErrNoMem           = errors.New("no memory")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
)

// Envelope/IO errors: raised only by the file-envelope layer and the root
// Load/Save entry points, which are the one part of this codec that talks to
// an actual file on disk.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrCantOpen         = errors.New("cannot open file")
	ErrCantRead         = errors.New("cannot read file")
	ErrCantWrite        = errors.New("cannot write file")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrDecompression    = errors.New("decompression failed")
	ErrCompression      = errors.New("compression failed")
	ErrInternal         = errors.New("internal error")
)

// Cause is one link in a chain of causes pointing at the position where a
// failure was first observed. Position is a byte offset when known, or -1.
type Cause struct {
	Msg      string
	Position int
	Err      error
}

// NewCause builds a Cause wrapping err, with pos -1 meaning "no position".
func NewCause(msg string, pos int, err error) *Cause {
	return &Cause{Msg: msg, Position: pos, Err: err}
}

func (c *Cause) Error() string {
	msg := c.Msg
	if c.Position >= 0 {
		msg = fmt.Sprintf("%s (at %d)", msg, c.Position)
	}
	if c.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, c.Err)
	}
	return msg
}

func (c *Cause) Unwrap() error { return c.Err }
