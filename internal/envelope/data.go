package envelope

import (
	"nmoscene/internal/chunk"
	"nmoscene/internal/dword"
	"nmoscene/internal/nmoerr"
)

// parseDataSection reads, per §4.K: for fileVersion >= 6, managerCount
// manager records [guid(2xu32), size:u32, chunk_bytes[size]]; then for
// fileVersion >= 4, objectCount object records [object_id:u32 (only if
// fileVersion < 7), size:u32, chunk_bytes[size]].
func parseDataSection(buf []byte, fileVersion uint32, managerCount, objectCount int) ([]ManagerRecord, []ObjectRecord, error) {
	pos := 0
	var managers []ManagerRecord
	var objects []ObjectRecord

	if fileVersion >= 6 && managerCount > 0 {
		managers = make([]ManagerRecord, managerCount)
		for i := 0; i < managerCount; i++ {
			d1, p, err := readU32At(buf, pos, "manager guid.d1")
			if err != nil {
				return nil, nil, err
			}
			pos = p
			d2, p, err := readU32At(buf, pos, "manager guid.d2")
			if err != nil {
				return nil, nil, err
			}
			pos = p
			size, p, err := readU32At(buf, pos, "manager chunk size")
			if err != nil {
				return nil, nil, err
			}
			pos = p
			if !dword.CheckBounds(pos, int(size), len(buf)) {
				return nil, nil, nmoerr.NewCause("manager chunk_bytes", pos, nmoerr.ErrBufferOverrun)
			}
			c, err := chunk.Parse(buf[pos : pos+int(size)])
			if err != nil {
				return nil, nil, err
			}
			pos += int(size)
			managers[i] = ManagerRecord{GUID: chunk.GUID{D1: d1, D2: d2}, Chunk: c}
		}
	}

	if fileVersion >= 4 && objectCount > 0 {
		objects = make([]ObjectRecord, objectCount)
		for i := 0; i < objectCount; i++ {
			var objectID uint32
			if fileVersion < 7 {
				id, p, err := readU32At(buf, pos, "object_id")
				if err != nil {
					return nil, nil, err
				}
				pos = p
				objectID = id
			}
			size, p, err := readU32At(buf, pos, "object chunk size")
			if err != nil {
				return nil, nil, err
			}
			pos = p
			if !dword.CheckBounds(pos, int(size), len(buf)) {
				return nil, nil, nmoerr.NewCause("object chunk_bytes", pos, nmoerr.ErrBufferOverrun)
			}
			c, err := chunk.Parse(buf[pos : pos+int(size)])
			if err != nil {
				return nil, nil, err
			}
			pos += int(size)
			objects[i] = ObjectRecord{ObjectID: objectID, Chunk: c}
		}
	}

	return managers, objects, nil
}

// packDataSection is the reverse of parseDataSection.
func packDataSection(fileVersion uint32, managers []ManagerRecord, objects []ObjectRecord) ([]byte, error) {
	var buf []byte

	if fileVersion >= 6 {
		for _, m := range managers {
			buf = appendU32(buf, m.GUID.D1)
			buf = appendU32(buf, m.GUID.D2)
			b, err := m.Chunk.Pack()
			if err != nil {
				return nil, err
			}
			buf = appendU32(buf, uint32(len(b)))
			buf = append(buf, b...)
		}
	}

	if fileVersion >= 4 {
		for _, o := range objects {
			if fileVersion < 7 {
				buf = appendU32(buf, o.ObjectID)
			}
			b, err := o.Chunk.Pack()
			if err != nil {
				return nil, err
			}
			buf = appendU32(buf, uint32(len(b)))
			buf = append(buf, b...)
		}
	}

	return buf, nil
}
