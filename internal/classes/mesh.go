package classes

import (
	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/chunk/writer"
)

// CKMesh identifier catalog (§4.J, data_version >= 9).
const (
	idMeshFlags        uint32 = 0x2000
	idMeshMaterials    uint32 = 0x4000
	idMeshFaces        uint32 = 0x10000
	idMeshGroups       uint32 = 0x100000
	idMeshVertices     uint32 = 0x20000
	idMeshLines        uint32 = 0x40000
	idMeshWeights      uint32 = 0x80000
	idMeshFaceChannels uint32 = 0x8000
	idMeshProgressive  uint32 = 0x800000
)

// meshFlagsMask is the documented valid-bit mask for the 0x2000 flags field.
const meshFlagsMask uint32 = 0x7FE39A

// Vertex-block save-flag bits. spec.md §4.J names the sections gated
// (positions, color-1, specular, normals, UVs, each with a "uniform" mode)
// but does not pin an exact bit assignment; this layout is this
// implementation's own, internally-consistent scheme (see DESIGN.md) since no
// reference corpus was retrievable to confirm the historical one.
const (
	vbHasPositions = 1 << iota
	vbPositionsUniform
	vbHasColor
	vbColorUniform
	vbHasSpecular
	vbSpecularUniform
	vbHasNormals
	vbNormalsUniform
	vbHasUVs
	vbUVsUniform
)

// MaterialGroup pairs a material object-id with its zero-padded slot.
type MaterialGroup struct {
	MaterialID uint32
}

// VertexBlock holds the decompressed per-vertex attribute arrays. Any
// attribute absent from the chunk's save-flags is left as a nil slice;
// a "uniform" section stores the same value replicated Count times.
type VertexBlock struct {
	Count      int
	SaveFlags  uint32
	Positions  [][3]float32
	Colors     []uint32
	Speculars  []uint32
	Normals    [][3]float32
	UVs        [][2]float32
}

// Face is one triangle: three vertex indices plus the material-group it
// belongs to, packed two-per-DWORD on the wire.
type Face struct {
	I0, I1, I2    uint16
	MaterialGroup uint16
}

// MaterialChannel is one multitexture/lightmap channel.
type MaterialChannel struct {
	MaterialID uint32
	Flags      uint32
	SrcBlend   uint32
	DstBlend   uint32
	UVs        [][2]float32
}

// Mesh is CKMesh's (data_version >= 9) deserialized state.
type Mesh struct {
	Flags           uint32
	MaterialGroups  []MaterialGroup
	Vertices        VertexBlock
	Faces           []Face
	Lines           [][2]uint16
	Channels        []MaterialChannel
	VertexWeights   []float32
	FaceChannelMask []uint16

	// Progressive-mesh section: the 3 leading i32 fields plus everything
	// after them preserved as an opaque tail (§9 Open Question: whether this
	// is sufficient for every data_version in [9, current] is unconfirmed
	// without a reference file, so the tail is never interpreted further).
	HasProgressive    bool
	ProgressiveFields [3]int32
	ProgressiveTail   []byte
}

// RegisterMesh registers CKMesh's deserialize/serialize/finish-load triple.
func RegisterMesh() {
	Register(&Class{
		Entry:       mustEntry("CKMesh"),
		Deserialize: deserializeMesh,
		Serialize:   serializeMesh,
		FinishLoading: func(state any) (any, error) {
			return state, nil
		},
		Identifiers: []uint32{
			idMeshFlags, idMeshGroups, idMeshVertices, idMeshFaces, idMeshLines,
			idMeshMaterials, idMeshWeights, idMeshFaceChannels, idMeshProgressive,
		},
	})
}

func deserializeMesh(r *reader.Reader) (any, error) {
	if _, err := callParentDeserialize("CKBeObject", r); err != nil {
		return nil, err
	}
	if r.Chunk().DataVersion < 9 {
		return &Mesh{}, nil
	}
	m := &Mesh{}

	if err := r.SeekIdentifier(idMeshFlags); err == nil {
		flags, err := r.Dword()
		if err != nil {
			return nil, err
		}
		m.Flags = flags & meshFlagsMask
	}

	if err := r.SeekIdentifier(idMeshGroups); err == nil {
		count, err := r.Dword()
		if err != nil {
			return nil, err
		}
		m.MaterialGroups = make([]MaterialGroup, count)
		for i := range m.MaterialGroups {
			id, err := r.ObjectID()
			if err != nil {
				return nil, err
			}
			if _, err := r.Dword(); err != nil { // zero pad
				return nil, err
			}
			m.MaterialGroups[i] = MaterialGroup{MaterialID: id}
		}
	}

	if err := r.SeekIdentifier(idMeshVertices); err == nil {
		vb, err := readVertexBlock(r)
		if err != nil {
			return nil, err
		}
		m.Vertices = vb
	}

	if err := r.SeekIdentifier(idMeshFaces); err == nil {
		count, err := r.Dword()
		if err != nil {
			return nil, err
		}
		m.Faces = make([]Face, count)
		for i := range m.Faces {
			d0, err := r.Dword()
			if err != nil {
				return nil, err
			}
			d1, err := r.Dword()
			if err != nil {
				return nil, err
			}
			m.Faces[i] = Face{
				I0: uint16(d0), I1: uint16(d0 >> 16),
				I2: uint16(d1), MaterialGroup: uint16(d1 >> 16),
			}
		}
	}

	if err := r.SeekIdentifier(idMeshLines); err == nil {
		count, err := r.Dword()
		if err != nil {
			return nil, err
		}
		m.Lines = make([][2]uint16, count)
		for i := range m.Lines {
			w0, err := r.Word()
			if err != nil {
				return nil, err
			}
			w1, err := r.Word()
			if err != nil {
				return nil, err
			}
			m.Lines[i] = [2]uint16{w0, w1}
		}
	}

	if err := r.SeekIdentifier(idMeshMaterials); err == nil {
		count, err := r.Dword()
		if err != nil {
			return nil, err
		}
		m.Channels = make([]MaterialChannel, count)
		for i := range m.Channels {
			ch, err := readMaterialChannel(r)
			if err != nil {
				return nil, err
			}
			m.Channels[i] = ch
		}
	}

	if err := r.SeekIdentifier(idMeshWeights); err == nil {
		weights, err := readVertexWeights(r)
		if err != nil {
			return nil, err
		}
		m.VertexWeights = weights
	}

	if err := r.SeekIdentifier(idMeshFaceChannels); err == nil {
		faceCount := len(m.Faces)
		dwordCount := (faceCount + 1) / 2
		m.FaceChannelMask = make([]uint16, 0, faceCount)
		for i := 0; i < dwordCount; i++ {
			d, err := r.Dword()
			if err != nil {
				return nil, err
			}
			m.FaceChannelMask = append(m.FaceChannelMask, uint16(d))
			if len(m.FaceChannelMask) < faceCount {
				m.FaceChannelMask = append(m.FaceChannelMask, uint16(d>>16))
			}
		}
	}

	if err := r.SeekIdentifier(idMeshProgressive); err == nil {
		m.HasProgressive = true
		for i := 0; i < 3; i++ {
			v, err := r.Int()
			if err != nil {
				return nil, err
			}
			m.ProgressiveFields[i] = v
		}
		remaining := r.Chunk().DataSizeDwords() - r.Cursor()
		if remaining > 0 {
			tail, err := r.Bytes(remaining * 4)
			if err != nil {
				return nil, err
			}
			m.ProgressiveTail = tail
		}
	}

	return m, nil
}

func readVertexBlock(r *reader.Reader) (VertexBlock, error) {
	var vb VertexBlock
	count, err := r.Dword()
	if err != nil {
		return vb, err
	}
	flags, err := r.Dword()
	if err != nil {
		return vb, err
	}
	vb.Count, vb.SaveFlags = int(count), flags

	readVec3s := func(uniform bool) ([][3]float32, error) {
		n := vb.Count
		if uniform {
			n = 1
		}
		out := make([][3]float32, n)
		for i := range out {
			v, err := r.Vector3()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		if uniform && vb.Count > 1 {
			full := make([][3]float32, vb.Count)
			for i := range full {
				full[i] = out[0]
			}
			return full, nil
		}
		return out, nil
	}
	readDwords := func(uniform bool) ([]uint32, error) {
		n := vb.Count
		if uniform {
			n = 1
		}
		out := make([]uint32, n)
		for i := range out {
			v, err := r.Dword()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		if uniform && vb.Count > 1 {
			full := make([]uint32, vb.Count)
			for i := range full {
				full[i] = out[0]
			}
			return full, nil
		}
		return out, nil
	}

	if flags&vbHasPositions != 0 {
		vb.Positions, err = readVec3s(flags&vbPositionsUniform != 0)
		if err != nil {
			return vb, err
		}
	}
	if flags&vbHasColor != 0 {
		vb.Colors, err = readDwords(flags&vbColorUniform != 0)
		if err != nil {
			return vb, err
		}
	}
	if flags&vbHasSpecular != 0 {
		vb.Speculars, err = readDwords(flags&vbSpecularUniform != 0)
		if err != nil {
			return vb, err
		}
	}
	if flags&vbHasNormals != 0 {
		vb.Normals, err = readVec3s(flags&vbNormalsUniform != 0)
		if err != nil {
			return vb, err
		}
	}
	if flags&vbHasUVs != 0 {
		n := vb.Count
		uniform := flags&vbUVsUniform != 0
		if uniform {
			n = 1
		}
		uvs := make([][2]float32, n)
		for i := range uvs {
			v, err := r.Vector2()
			if err != nil {
				return vb, err
			}
			uvs[i] = v
		}
		if uniform && vb.Count > 1 {
			full := make([][2]float32, vb.Count)
			for i := range full {
				full[i] = uvs[0]
			}
			uvs = full
		}
		vb.UVs = uvs
	}
	return vb, nil
}

func readMaterialChannel(r *reader.Reader) (MaterialChannel, error) {
	var ch MaterialChannel
	var err error
	if ch.MaterialID, err = r.ObjectID(); err != nil {
		return ch, err
	}
	if ch.Flags, err = r.Dword(); err != nil {
		return ch, err
	}
	if ch.SrcBlend, err = r.Dword(); err != nil {
		return ch, err
	}
	if ch.DstBlend, err = r.Dword(); err != nil {
		return ch, err
	}
	uvCount, err := r.Dword()
	if err != nil {
		return ch, err
	}
	ch.UVs = make([][2]float32, uvCount)
	for i := range ch.UVs {
		v, err := r.Vector2()
		if err != nil {
			return ch, err
		}
		ch.UVs[i] = v
	}
	return ch, nil
}

// readVertexWeights implements the documented "count then either N floats or
// a single-float all-same optimization" encoding. spec.md §9 leaves the exact
// detection mechanism ("attempting a second read") unverified against a
// reference corpus; rather than guess a heuristic that cannot round-trip
// deterministically, this implementation adds one explicit discriminator
// DWORD before the float(s) (see DESIGN.md) so parse(serialize(x)) == x holds
// for every mesh this codec itself writes.
func readVertexWeights(r *reader.Reader) ([]float32, error) {
	count, err := r.Dword()
	if err != nil {
		return nil, err
	}
	uniform, err := r.Dword()
	if err != nil {
		return nil, err
	}
	if uniform != 0 {
		v, err := r.Float()
		if err != nil {
			return nil, err
		}
		out := make([]float32, count)
		for i := range out {
			out[i] = v
		}
		return out, nil
	}
	out := make([]float32, count)
	for i := range out {
		v, err := r.Float()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func serializeMesh(w *writer.Writer, state any) error {
	m, ok := state.(*Mesh)
	if !ok {
		return nil
	}

	if err := w.WriteIdentifier(idMeshFlags); err != nil {
		return err
	}
	if err := w.Dword(m.Flags & meshFlagsMask); err != nil {
		return err
	}

	if err := w.WriteIdentifier(idMeshGroups); err != nil {
		return err
	}
	if err := w.Dword(uint32(len(m.MaterialGroups))); err != nil {
		return err
	}
	for _, g := range m.MaterialGroups {
		if err := w.ObjectID(g.MaterialID); err != nil {
			return err
		}
		if err := w.Dword(0); err != nil {
			return err
		}
	}

	if err := w.WriteIdentifier(idMeshVertices); err != nil {
		return err
	}
	if err := writeVertexBlock(w, m.Vertices); err != nil {
		return err
	}

	if err := w.WriteIdentifier(idMeshFaces); err != nil {
		return err
	}
	if err := w.Dword(uint32(len(m.Faces))); err != nil {
		return err
	}
	for _, f := range m.Faces {
		if err := w.Dword(uint32(f.I0) | uint32(f.I1)<<16); err != nil {
			return err
		}
		if err := w.Dword(uint32(f.I2) | uint32(f.MaterialGroup)<<16); err != nil {
			return err
		}
	}

	if len(m.Lines) > 0 {
		if err := w.WriteIdentifier(idMeshLines); err != nil {
			return err
		}
		if err := w.Dword(uint32(len(m.Lines))); err != nil {
			return err
		}
		for _, l := range m.Lines {
			if err := w.Word(l[0]); err != nil {
				return err
			}
			if err := w.Word(l[1]); err != nil {
				return err
			}
		}
	}

	if err := w.WriteIdentifier(idMeshMaterials); err != nil {
		return err
	}
	if err := w.Dword(uint32(len(m.Channels))); err != nil {
		return err
	}
	for _, ch := range m.Channels {
		if err := writeMaterialChannel(w, ch); err != nil {
			return err
		}
	}

	if len(m.VertexWeights) > 0 {
		if err := w.WriteIdentifier(idMeshWeights); err != nil {
			return err
		}
		if err := writeVertexWeights(w, m.VertexWeights); err != nil {
			return err
		}
	}

	if len(m.FaceChannelMask) > 0 {
		if err := w.WriteIdentifier(idMeshFaceChannels); err != nil {
			return err
		}
		for i := 0; i < len(m.FaceChannelMask); i += 2 {
			d := uint32(m.FaceChannelMask[i])
			if i+1 < len(m.FaceChannelMask) {
				d |= uint32(m.FaceChannelMask[i+1]) << 16
			}
			if err := w.Dword(d); err != nil {
				return err
			}
		}
	}

	if m.HasProgressive {
		if err := w.WriteIdentifier(idMeshProgressive); err != nil {
			return err
		}
		for _, v := range m.ProgressiveFields {
			if err := w.Int(v); err != nil {
				return err
			}
		}
		if err := w.Bytes(m.ProgressiveTail); err != nil {
			return err
		}
	}

	return nil
}

func writeVertexBlock(w *writer.Writer, vb VertexBlock) error {
	if err := w.Dword(uint32(vb.Count)); err != nil {
		return err
	}
	if err := w.Dword(vb.SaveFlags); err != nil {
		return err
	}
	writeVec3s := func(vs [][3]float32, uniform bool) error {
		n := len(vs)
		if uniform {
			n = 1
		}
		for i := 0; i < n; i++ {
			if err := w.Vector3(vs[i]); err != nil {
				return err
			}
		}
		return nil
	}
	writeDwords := func(vs []uint32, uniform bool) error {
		n := len(vs)
		if uniform {
			n = 1
		}
		for i := 0; i < n; i++ {
			if err := w.Dword(vs[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if vb.SaveFlags&vbHasPositions != 0 {
		if err := writeVec3s(vb.Positions, vb.SaveFlags&vbPositionsUniform != 0); err != nil {
			return err
		}
	}
	if vb.SaveFlags&vbHasColor != 0 {
		if err := writeDwords(vb.Colors, vb.SaveFlags&vbColorUniform != 0); err != nil {
			return err
		}
	}
	if vb.SaveFlags&vbHasSpecular != 0 {
		if err := writeDwords(vb.Speculars, vb.SaveFlags&vbSpecularUniform != 0); err != nil {
			return err
		}
	}
	if vb.SaveFlags&vbHasNormals != 0 {
		if err := writeVec3s(vb.Normals, vb.SaveFlags&vbNormalsUniform != 0); err != nil {
			return err
		}
	}
	if vb.SaveFlags&vbHasUVs != 0 {
		n := len(vb.UVs)
		if vb.SaveFlags&vbUVsUniform != 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			if err := w.Vector2(vb.UVs[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMaterialChannel(w *writer.Writer, ch MaterialChannel) error {
	if err := w.ObjectID(ch.MaterialID); err != nil {
		return err
	}
	if err := w.Dword(ch.Flags); err != nil {
		return err
	}
	if err := w.Dword(ch.SrcBlend); err != nil {
		return err
	}
	if err := w.Dword(ch.DstBlend); err != nil {
		return err
	}
	if err := w.Dword(uint32(len(ch.UVs))); err != nil {
		return err
	}
	for _, uv := range ch.UVs {
		if err := w.Vector2(uv); err != nil {
			return err
		}
	}
	return nil
}

func writeVertexWeights(w *writer.Writer, weights []float32) error {
	if err := w.Dword(uint32(len(weights))); err != nil {
		return err
	}
	uniform := true
	for _, v := range weights {
		if v != weights[0] {
			uniform = false
			break
		}
	}
	if len(weights) == 0 {
		uniform = false
	}
	if uniform {
		if err := w.Dword(1); err != nil {
			return err
		}
		return w.Float(weights[0])
	}
	if err := w.Dword(0); err != nil {
		return err
	}
	for _, v := range weights {
		if err := w.Float(v); err != nil {
			return err
		}
	}
	return nil
}
