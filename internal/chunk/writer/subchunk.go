package writer

import "nmoscene/internal/chunk"

// WriteSubchunk inlines sub into the parent payload using the exact reverse
// of reader.ReadSubchunk's layout (§4.D). A nil sub is encoded as a null slot
// (size_dwords = 0). The parent records the emission position in chunkRefs so
// a later reader can find sub-chunk boundaries by position, and raises CHN.
func (w *Writer) WriteSubchunk(sub *chunk.Chunk) error {
	if err := w.checkState(); err != nil {
		return err
	}
	w.options.Set(chunk.OptCHN)
	w.chunkRefs = append(w.chunkRefs, uint32(w.Position()))

	if sub == nil {
		w.writeDwordRaw(0)
		return nil
	}

	chunkSizeDwords := sub.DataSizeDwords()
	hasFile := uint32(0)
	if sub.Options.Has(chunk.OptFILE) {
		hasFile = 1
	}
	versionInfo := chunk.PackVersionInfo(sub.DataVersion, sub.ChunkClassID, sub.Options, sub.ChunkVersion)
	idCount := len(sub.IDs)
	chunkCount := len(sub.ChunkRefs)
	managerCount := len(sub.Managers)
	includeManagerCount := sub.ChunkVersion > 4

	// size_dwords counts everything after itself: the 6 fixed header fields
	// (class_id, version_info, chunk_size, has_file, id_count, chunk_count),
	// the optional manager_count, then data/ids/positions/managers.
	size := 6 + chunkSizeDwords + idCount + chunkCount
	if includeManagerCount {
		size += 1 + managerCount
	}

	w.writeDwordRaw(uint32(size))
	w.writeDwordRaw(sub.ClassID)
	w.writeDwordRaw(versionInfo)
	w.writeDwordRaw(uint32(chunkSizeDwords))
	w.writeDwordRaw(hasFile)
	w.writeDwordRaw(uint32(idCount))
	w.writeDwordRaw(uint32(chunkCount))
	if includeManagerCount {
		w.writeDwordRaw(uint32(managerCount))
	}
	w.data = append(w.data, sub.Data...)
	for _, id := range sub.IDs {
		w.writeDwordRaw(id)
	}
	for _, p := range sub.ChunkRefs {
		w.writeDwordRaw(p)
	}
	for _, m := range sub.Managers {
		w.writeDwordRaw(m)
	}
	return nil
}
