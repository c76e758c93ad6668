package camera

import "testing"

func TestFourCCRoundTrip(t *testing.T) {
	for _, code := range []string{"MJPG", "YUYV", "H264", "RGB3"} {
		if got := decodeFourCC(encodeFourCC(code)); got != code {
			t.Errorf("decodeFourCC(encodeFourCC(%q)) = %q", code, got)
		}
	}
}

func TestEncodeFourCCRejectsBadLength(t *testing.T) {
	for _, code := range []string{"", "MJP", "MJPEG"} {
		if got := encodeFourCC(code); got != 0 {
			t.Errorf("encodeFourCC(%q) = %v, want 0", code, got)
		}
	}
}

func TestEncodeFourCCByteOrder(t *testing.T) {
	// Little-endian packing: first character in the low byte.
	if got := encodeFourCC("MJPG"); uint32(got)&0xFF != 'M' {
		t.Errorf("encodeFourCC low byte = %c, want M", byte(uint32(got)))
	}
}
