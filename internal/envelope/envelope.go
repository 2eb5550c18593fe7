// Package envelope implements the file envelope (component K, §3.4, §4.K):
// the fixed signature/version/counts prefix, the header-1 section (object
// directory, plugin dependencies, included-file table), and the data section
// (manager and object chunk records).
package envelope

import (
	"fmt"

	"nmoscene/internal/chunk"
	"nmoscene/internal/dword"
	"nmoscene/internal/nmoerr"
)

// Signature is the fixed byte prefix every recognized file starts with.
// spec.md only requires "a fixed signature" without naming its bytes; this
// 8-byte ASCII value is this implementation's own choice (no reference
// corpus was retrievable to confirm a historical one — see DESIGN.md).
var Signature = [8]byte{'N', 'M', 'O', 'S', 'C', 'E', 'N', 'E'}

// MinVersion/MaxVersion/CurrentVersion are the recognized file_version range
// (§4.K, §6).
const (
	MinVersion     = 2
	MaxVersion     = 9
	CurrentVersion = 8
)

// File is the top-level parsed envelope.
type File struct {
	FileVersion uint32
	Header1     Header1
	Managers    []ManagerRecord
	Objects     []ObjectRecord
}

// ManagerRecord is one manager data-section record (§3.4, §4.K).
type ManagerRecord struct {
	GUID  chunk.GUID
	Chunk *chunk.Chunk
}

// ObjectRecord is one object data-section record. ObjectID is only
// meaningful (non-zero provenance) when FileVersion < 7; at version >= 7 the
// id lives in Header1's object directory instead and ObjectID is left 0.
type ObjectRecord struct {
	ObjectID uint32
	Chunk    *chunk.Chunk
}

func checkVersion(v uint32) error {
	if v < MinVersion || v > MaxVersion {
		return nmoerr.NewCause(fmt.Sprintf("file_version %d outside recognized range [%d,%d]", v, MinVersion, MaxVersion), -1, nmoerr.ErrUnsupportedVersion)
	}
	return nil
}

// Parse reads the fixed prefix (signature, file_version, object_count,
// manager_count), then header-1, then the data section, from buf. The data
// section holds one object record per header-1 descriptor that is not
// reference-only.
func Parse(buf []byte) (*File, error) {
	pos := 0
	if !dword.CheckBounds(pos, len(Signature), len(buf)) {
		return nil, nmoerr.NewCause("file envelope signature", pos, nmoerr.ErrEOF)
	}
	var sig [8]byte
	copy(sig[:], buf[pos:pos+len(Signature)])
	if sig != Signature {
		return nil, nmoerr.NewCause("file envelope signature mismatch", pos, nmoerr.ErrInvalidSignature)
	}
	pos += len(Signature)

	readU32 := func(what string) (uint32, error) {
		if !dword.CheckBounds(pos, dword.Size, len(buf)) {
			return 0, nmoerr.NewCause(what, pos, nmoerr.ErrEOF)
		}
		v := dword.GetU32(buf[pos:])
		pos += dword.Size
		return v, nil
	}

	fileVersion, err := readU32("file_version")
	if err != nil {
		return nil, err
	}
	if err := checkVersion(fileVersion); err != nil {
		return nil, err
	}
	objectCount, err := readU32("object_count")
	if err != nil {
		return nil, err
	}
	managerCount, err := readU32("manager_count")
	if err != nil {
		return nil, err
	}

	h1, n, err := parseHeader1(buf[pos:], int(objectCount))
	if err != nil {
		return nil, err
	}
	pos += n

	dataObjectCount := 0
	for _, o := range h1.Objects {
		if !o.ReferenceOnly {
			dataObjectCount++
		}
	}
	managers, objects, err := parseDataSection(buf[pos:], fileVersion, int(managerCount), dataObjectCount)
	if err != nil {
		return nil, err
	}

	return &File{FileVersion: fileVersion, Header1: h1, Managers: managers, Objects: objects}, nil
}

// Pack serializes f back to its wire layout: the reverse of Parse.
func (f *File) Pack() ([]byte, error) {
	if err := checkVersion(f.FileVersion); err != nil {
		return nil, err
	}
	buf := append([]byte(nil), Signature[:]...)
	buf = appendU32(buf, f.FileVersion)
	buf = appendU32(buf, uint32(len(f.Header1.Objects)))
	buf = appendU32(buf, uint32(len(f.Managers)))

	h1Bytes, err := f.Header1.pack(f.FileVersion)
	if err != nil {
		return nil, err
	}
	buf = append(buf, h1Bytes...)

	dataBytes, err := packDataSection(f.FileVersion, f.Managers, f.Objects)
	if err != nil {
		return nil, err
	}
	buf = append(buf, dataBytes...)
	return buf, nil
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	dword.PutU32(b[:], v)
	return append(buf, b[:]...)
}
