package reader

import "nmoscene/internal/chunk"

// ReadSubchunk rematerializes a chunk that was inlined into the parent's
// payload via the writer's WriteSubchunk, per §4.C's distinct header layout
// (not the top-level envelope format chunk.Pack/Parse use for the owned-chunk
// "if CHN" tail section — see DESIGN.md for why the two are kept separate).
// A leading size_dwords of 0 means a null slot and returns (nil, nil).
func (r *Reader) ReadSubchunk() (*chunk.Chunk, error) {
	sizeDwords, err := r.readDwordRaw()
	if err != nil {
		return nil, err
	}
	if sizeDwords == 0 {
		return nil, nil
	}

	classID, err := r.readDwordRaw()
	if err != nil {
		return nil, err
	}
	versionInfo, err := r.readDwordRaw()
	if err != nil {
		return nil, err
	}
	chunkSize, err := r.readDwordRaw()
	if err != nil {
		return nil, err
	}
	hasFile, err := r.readDwordRaw()
	if err != nil {
		return nil, err
	}
	idCount, err := r.readDwordRaw()
	if err != nil {
		return nil, err
	}
	chunkCount, err := r.readDwordRaw()
	if err != nil {
		return nil, err
	}

	dataVersion, chunkClassID, options, chunkVersion := chunk.UnpackVersionInfo(versionInfo)

	var managerCount uint32
	if chunkVersion > 4 {
		managerCount, err = r.readDwordRaw()
		if err != nil {
			return nil, err
		}
	}

	data, err := r.readBytesRaw(int(chunkSize) * 4)
	if err != nil {
		return nil, err
	}
	ids, err := r.u32Slice(int(idCount))
	if err != nil {
		return nil, err
	}
	positions, err := r.u32Slice(int(chunkCount))
	if err != nil {
		return nil, err
	}
	managers, err := r.u32Slice(int(managerCount))
	if err != nil {
		return nil, err
	}

	if hasFile != 0 {
		options.Set(chunk.OptFILE)
	}

	sub := &chunk.Chunk{
		ClassID:      classID,
		DataVersion:  dataVersion,
		ChunkClassID: chunkClassID,
		ChunkVersion: chunkVersion,
		Options:      options,
		Data:         data,
		IDs:          ids,
		ChunkRefs:    positions,
		Managers:     managers,
	}
	return sub, nil
}

func (r *Reader) u32Slice(n int) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		v, err := r.readDwordRaw()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
