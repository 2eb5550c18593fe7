package envelope

import (
	"fmt"

	"nmoscene/internal/chunk"
	"nmoscene/internal/dword"
	"nmoscene/internal/nmoerr"
)

// referenceOnlyBit is bit 23 (0x00800000) of an object descriptor's file_id:
// set means "mentioned but not defined in this file" (§4.K, §6).
const referenceOnlyBit uint32 = 0x00800000

// ObjectDescriptor is one row of header-1's object directory.
type ObjectDescriptor struct {
	FileID        uint32 // masked: referenceOnlyBit already stripped
	ReferenceOnly bool
	ClassID       uint32
	FileIndex     uint32
	Name          string
}

// PluginDependency is one category's list of dependency GUIDs. spec.md names
// 5 fixed category slots without naming them; callers index PluginDeps by
// position the same way the source format does.
type PluginDependency struct {
	Category uint32
	GUIDs    []chunk.GUID
}

// IncludedFile is one entry of the included-file table. data_size's exact
// meaning (inline bytes vs external reference) is left unresolved by
// spec.md §9; this type only carries the value through unmodified.
type IncludedFile struct {
	Name     string
	DataSize uint32
}

// Header1 is the parsed header-1 section: object directory, plugin
// dependency categories, and the included-file table.
type Header1 struct {
	Objects       []ObjectDescriptor
	PluginDeps    []PluginDependency
	IncludedFiles []IncludedFile
}

func readU32At(buf []byte, pos int, what string) (uint32, int, error) {
	if !dword.CheckBounds(pos, dword.Size, len(buf)) {
		return 0, pos, nmoerr.NewCause(what, pos, nmoerr.ErrEOF)
	}
	return dword.GetU32(buf[pos:]), pos + dword.Size, nil
}

func readNameAt(buf []byte, pos int) (string, int, error) {
	nameLen, pos, err := readU32At(buf, pos, "name_len")
	if err != nil {
		return "", pos, err
	}
	if !dword.CheckBounds(pos, int(nameLen), len(buf)) {
		return "", pos, nmoerr.NewCause("name bytes", pos, nmoerr.ErrBufferOverrun)
	}
	name := string(buf[pos : pos+int(nameLen)])
	return name, pos + int(nameLen), nil
}

// parseHeader1 parses objectCount descriptors (the count is supplied by the
// caller, per spec.md's note that file_version >= 8 moved it out of the
// buffer), then plugin dependencies, then the included-file table. Returns
// the number of bytes consumed.
func parseHeader1(buf []byte, objectCount int) (Header1, int, error) {
	var h Header1
	pos := 0

	for i := 0; i < objectCount; i++ {
		rawID, p, err := readU32At(buf, pos, "object file_id")
		if err != nil {
			return h, 0, err
		}
		pos = p
		classID, p, err := readU32At(buf, pos, "object class_id")
		if err != nil {
			return h, 0, err
		}
		pos = p
		fileIndex, p, err := readU32At(buf, pos, "object file_index")
		if err != nil {
			return h, 0, err
		}
		pos = p
		name, p, err := readNameAt(buf, pos)
		if err != nil {
			return h, 0, err
		}
		pos = p

		h.Objects = append(h.Objects, ObjectDescriptor{
			FileID:        rawID &^ referenceOnlyBit,
			ReferenceOnly: rawID&referenceOnlyBit != 0,
			ClassID:       classID,
			FileIndex:     fileIndex,
			Name:          name,
		})
	}

	categoryCount, p, err := readU32At(buf, pos, "plugin dependency category_count")
	if err != nil {
		return h, 0, err
	}
	pos = p
	for i := uint32(0); i < categoryCount; i++ {
		catType, p, err := readU32At(buf, pos, "plugin dependency category_type")
		if err != nil {
			return h, 0, err
		}
		pos = p
		guidCount, p, err := readU32At(buf, pos, "plugin dependency guid_count")
		if err != nil {
			return h, 0, err
		}
		pos = p
		dep := PluginDependency{Category: catType, GUIDs: make([]chunk.GUID, guidCount)}
		for j := uint32(0); j < guidCount; j++ {
			d1, p2, err := readU32At(buf, pos, "plugin dependency guid.d1")
			if err != nil {
				return h, 0, err
			}
			pos = p2
			d2, p3, err := readU32At(buf, pos, "plugin dependency guid.d2")
			if err != nil {
				return h, 0, err
			}
			pos = p3
			dep.GUIDs[j] = chunk.GUID{D1: d1, D2: d2}
		}
		h.PluginDeps = append(h.PluginDeps, dep)
	}

	count, p, err := readU32At(buf, pos, "included-file count")
	if err != nil {
		return h, 0, err
	}
	pos = p
	tableSize, p, err := readU32At(buf, pos, "included-file table_size")
	if err != nil {
		return h, 0, err
	}
	pos = p

	if count == 0 || tableSize == 0 {
		return h, pos, nil
	}
	if !dword.CheckBounds(pos, int(tableSize), len(buf)) {
		return h, 0, nmoerr.NewCause("included-file table", pos, nmoerr.ErrBufferOverrun)
	}
	tableEnd := pos + int(tableSize)
	for i := uint32(0); i < count; i++ {
		if pos > tableEnd {
			return h, 0, nmoerr.NewCause("included-file entry crosses table_size boundary", pos, nmoerr.ErrOutOfBounds)
		}
		name, p, err := readNameAt(buf, pos)
		if err != nil {
			return h, 0, err
		}
		pos = p
		dataSize, p, err := readU32At(buf, pos, "included-file data_size")
		if err != nil {
			return h, 0, err
		}
		pos = p
		h.IncludedFiles = append(h.IncludedFiles, IncludedFile{Name: name, DataSize: dataSize})
	}
	if pos != tableEnd {
		return h, 0, nmoerr.NewCause(fmt.Sprintf("included-file table declared %d bytes, consumed %d", tableSize, pos-(tableEnd-int(tableSize))), pos, nmoerr.ErrInvalidFormat)
	}
	return h, pos, nil
}

func appendName(buf []byte, name string) []byte {
	buf = appendU32(buf, uint32(len(name)))
	return append(buf, name...)
}

func (h Header1) pack(fileVersion uint32) ([]byte, error) {
	var buf []byte
	for _, o := range h.Objects {
		id := o.FileID
		if o.ReferenceOnly {
			id |= referenceOnlyBit
		}
		buf = appendU32(buf, id)
		buf = appendU32(buf, o.ClassID)
		buf = appendU32(buf, o.FileIndex)
		buf = appendName(buf, o.Name)
	}

	buf = appendU32(buf, uint32(len(h.PluginDeps)))
	for _, dep := range h.PluginDeps {
		buf = appendU32(buf, dep.Category)
		buf = appendU32(buf, uint32(len(dep.GUIDs)))
		for _, g := range dep.GUIDs {
			buf = appendU32(buf, g.D1)
			buf = appendU32(buf, g.D2)
		}
	}

	if len(h.IncludedFiles) == 0 {
		buf = appendU32(buf, 0)
		buf = appendU32(buf, 0)
		return buf, nil
	}

	var table []byte
	for _, f := range h.IncludedFiles {
		table = appendName(table, f.Name)
		table = appendU32(table, f.DataSize)
	}
	buf = appendU32(buf, uint32(len(h.IncludedFiles)))
	buf = appendU32(buf, uint32(len(table)))
	buf = append(buf, table...)
	return buf, nil
}
