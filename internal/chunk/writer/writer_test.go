package writer

import (
	"bytes"
	"testing"

	"nmoscene/internal/chunk"
	"nmoscene/internal/chunk/reader"
	"nmoscene/internal/remap"
)

func TestStringWritePadding(t *testing.T) {
	w := New(0, 0, 0, chunk.CurrentVersion)
	if err := w.String("hi"); err != nil {
		t.Fatalf("String: %v", err)
	}
	c, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	want := []byte{2, 0, 0, 0, 'h', 'i', 0, 0}
	if !bytes.Equal(c.Data, want) {
		t.Fatalf("payload: want % x, got % x", want, c.Data)
	}
}

func TestIdentifierChainWriterReaderRoundTrip(t *testing.T) {
	w := New(0, 0, 0, chunk.CurrentVersion)
	mustWriteIdentifier(t, w, 0xAAAA)
	mustWrite(t, w.Dword(1))
	mustWriteIdentifier(t, w, 0xBBBB)
	mustWrite(t, w.Dword(2))
	mustWriteIdentifier(t, w, 0xCCCC)
	mustWrite(t, w.Dword(3))

	c, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	r := reader.New(c)
	if err := r.SeekIdentifier(0xCCCC); err != nil {
		t.Fatalf("seek 0xCCCC: %v", err)
	}
	if v, err := r.Dword(); err != nil || v != 3 {
		t.Fatalf("read after 0xCCCC: %d, %v", v, err)
	}
	if err := r.SeekIdentifier(0xAAAA); err != nil {
		t.Fatalf("seek 0xAAAA: %v", err)
	}
	if v, err := r.Dword(); err != nil || v != 1 {
		t.Fatalf("read after 0xAAAA: %d, %v", v, err)
	}
}

func TestNestedSubchunksRoundTrip(t *testing.T) {
	childB := New(10, 0, 0, chunk.CurrentVersion)
	mustWrite(t, childB.Dword(111))
	mustWrite(t, childB.Dword(222))
	b, err := childB.Finalize()
	if err != nil {
		t.Fatalf("finalize B: %v", err)
	}

	childC := New(20, 0, 0, chunk.CurrentVersion)
	mustWrite(t, childC.Dword(333))
	mustWrite(t, childC.Dword(444))
	c, err := childC.Finalize()
	if err != nil {
		t.Fatalf("finalize C: %v", err)
	}

	parent := New(1, 0, 0, chunk.CurrentVersion)
	if err := parent.StartSubchunkSequence(2); err != nil {
		t.Fatalf("StartSubchunkSequence: %v", err)
	}
	if err := parent.WriteSubchunk(b); err != nil {
		t.Fatalf("WriteSubchunk(B): %v", err)
	}
	if err := parent.WriteSubchunk(c); err != nil {
		t.Fatalf("WriteSubchunk(C): %v", err)
	}
	parentChunk, err := parent.Finalize()
	if err != nil {
		t.Fatalf("finalize parent: %v", err)
	}
	// StartSubchunkSequence records a sentinel+position pair, then each
	// WriteSubchunk records its own emission position: 2 + 2 = 4 entries.
	if len(parentChunk.ChunkRefs) != 4 {
		t.Fatalf("expected 4 chunk_refs entries, got %v", parentChunk.ChunkRefs)
	}

	r := reader.New(parentChunk)
	count, err := r.StartReadSequence()
	if err != nil || count != 2 {
		t.Fatalf("StartReadSequence: %d, %v", count, err)
	}
	gotB, err := r.ReadSubchunk()
	if err != nil {
		t.Fatalf("ReadSubchunk(B): %v", err)
	}
	gotC, err := r.ReadSubchunk()
	if err != nil {
		t.Fatalf("ReadSubchunk(C): %v", err)
	}
	if gotB.ClassID != 10 || !bytes.Equal(gotB.Data, b.Data) {
		t.Fatalf("B mismatch: %+v", gotB)
	}
	if gotC.ClassID != 20 || !bytes.Equal(gotC.Data, c.Data) {
		t.Fatalf("C mismatch: %+v", gotC)
	}
}

func TestObjectIDRemapRoundTrip(t *testing.T) {
	tbl := remap.New()
	tbl.Set(7, 100)
	tbl.Set(8, 200)

	w := New(0, 0, 0, chunk.CurrentVersion).WithRemap(tbl)
	if err := w.ObjectID(7); err != nil {
		t.Fatalf("ObjectID(7): %v", err)
	}
	if err := w.ObjectID(0); err != nil {
		t.Fatalf("ObjectID(0): %v", err)
	}
	if err := w.ObjectID(8); err != nil {
		t.Fatalf("ObjectID(8): %v", err)
	}
	c, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	want := []byte{100, 0, 0, 0, 0, 0, 0, 0, 200, 0, 0, 0}
	if !bytes.Equal(c.Data, want) {
		t.Fatalf("payload: want % x, got % x", want, c.Data)
	}

	// The reader applies the remap only to chunks carrying the FILE option,
	// which the writer never raises on its own.
	c.Options.Set(chunk.OptFILE)
	inverse := remap.New()
	inverse.Set(7, 100)
	inverse.Set(8, 200)
	r := reader.New(c).WithRemap(inverse)
	id1, _ := r.ObjectID()
	id2, _ := r.ObjectID()
	id3, _ := r.ObjectID()
	if id1 != 7 || id2 != 0 || id3 != 8 {
		t.Fatalf("round-trip ids: got %d %d %d", id1, id2, id3)
	}
}

func TestObjectIDMissingRemapEntryFails(t *testing.T) {
	tbl := remap.New()
	w := New(0, 0, 0, chunk.CurrentVersion).WithRemap(tbl)
	if err := w.ObjectID(99); err == nil {
		t.Fatal("expected NotFound for unmapped id")
	}
}

func TestFinalizeFreezesWriter(t *testing.T) {
	w := New(0, 0, 0, chunk.CurrentVersion)
	if _, err := w.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := w.Dword(1); err == nil {
		t.Fatal("expected InvalidState after finalize")
	}
	if _, err := w.Finalize(); err == nil {
		t.Fatal("expected InvalidState on double finalize")
	}
}

func mustWriteIdentifier(t *testing.T, w *Writer, id uint32) {
	t.Helper()
	if err := w.WriteIdentifier(id); err != nil {
		t.Fatalf("WriteIdentifier(%#x): %v", id, err)
	}
}

func mustWrite(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
}
