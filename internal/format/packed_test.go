package format

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	f := PackedFields{B0: 0x01, B1: 0x2A, B2: 0x00, B3: 0x07}
	v := f.Pack()
	if v != 0x07002A01 {
		t.Fatalf("Pack: want 0x07002A01, got %#x", v)
	}
	got := Unpack(v)
	if got != f {
		t.Fatalf("Unpack: want %+v, got %+v", f, got)
	}
}

func TestUnpackMasksToByte(t *testing.T) {
	got := Unpack(0xFFFFFFFF)
	if got.B0 != 0xFF || got.B1 != 0xFF || got.B2 != 0xFF || got.B3 != 0xFF {
		t.Fatalf("expected all bytes 0xFF, got %+v", got)
	}
}
