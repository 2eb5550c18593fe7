package remap

import "testing"

func TestRoundTrip(t *testing.T) {
	tbl := New()
	tbl.Set(7, 100)
	tbl.Set(8, 200)

	if f, err := tbl.ToFile(7); err != nil || f != 100 {
		t.Fatalf("ToFile(7): got %d, %v", f, err)
	}
	if r, err := tbl.ToRuntime(200); err != nil || r != 8 {
		t.Fatalf("ToRuntime(200): got %d, %v", r, err)
	}
}

func TestZeroIsSentinel(t *testing.T) {
	tbl := New()
	if f, err := tbl.ToFile(0); err != nil || f != 0 {
		t.Fatalf("ToFile(0): want 0, nil; got %d, %v", f, err)
	}
	if r, err := tbl.ToRuntime(0); err != nil || r != 0 {
		t.Fatalf("ToRuntime(0): want 0, nil; got %d, %v", r, err)
	}
	tbl.Set(0, 5)
	if _, err := tbl.ToRuntime(5); err == nil {
		t.Fatal("Set(0, 5) should have been a no-op; 5 should not resolve")
	}
}

func TestMissingEntry(t *testing.T) {
	tbl := New()
	if _, err := tbl.ToFile(42); err == nil {
		t.Fatal("expected NotFound for unmapped runtime id")
	}
}
