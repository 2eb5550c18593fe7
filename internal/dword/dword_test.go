package dword

import "testing"

func TestAlignUp(t *testing.T) {
	cases := []struct{ n, want int }{
		{0, 0}, {1, 4}, {3, 4}, {4, 4}, {5, 8}, {8, 8},
	}
	for _, c := range cases {
		if got := AlignUp(c.n, Size); got != c.want {
			t.Fatalf("AlignUp(%d): want %d, got %d", c.n, c.want, got)
		}
	}
}

func TestPadLen(t *testing.T) {
	cases := []struct{ n, want int }{
		{0, 0}, {1, 3}, {2, 2}, {3, 1}, {4, 0},
	}
	for _, c := range cases {
		if got := PadLen(c.n); got != c.want {
			t.Fatalf("PadLen(%d): want %d, got %d", c.n, c.want, got)
		}
	}
}

func TestCheckBounds(t *testing.T) {
	if !CheckBounds(0, 4, 4) {
		t.Fatal("want true for exact fit")
	}
	if CheckBounds(0, 5, 4) {
		t.Fatal("want false for overrun")
	}
	if CheckBounds(-1, 1, 4) {
		t.Fatal("want false for negative pos")
	}
	if CheckBounds(5, 1, 4) {
		t.Fatal("want false for pos past total")
	}
}

func TestU32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutU32(buf, 0x01020304)
	if buf[0] != 0x04 || buf[3] != 0x01 {
		t.Fatalf("not little-endian: %x", buf)
	}
	if got := GetU32(buf); got != 0x01020304 {
		t.Fatalf("GetU32: want 0x01020304, got %#x", got)
	}
}

func TestU64RoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	PutU64(buf, 0x0102030405060708)
	if got := GetU64(buf); got != 0x0102030405060708 {
		t.Fatalf("GetU64: want 0x0102030405060708, got %#x", got)
	}
}

func TestSwapWords16(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04}
	SwapWords16(buf)
	want := []byte{0x02, 0x01, 0x04, 0x03}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("SwapWords16: want %x, got %x", want, buf)
		}
	}
}
