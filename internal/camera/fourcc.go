package camera

// encodeFourCC packs a 4-character codec string into the numeric form
// V4L2 and OpenCV use. Returns 0 for anything that is not 4 characters.
func encodeFourCC(code string) float64 {
	if len(code) != 4 {
		return 0
	}
	return float64(uint32(code[0]) | uint32(code[1])<<8 | uint32(code[2])<<16 | uint32(code[3])<<24)
}

// decodeFourCC unpacks the numeric codec value back into its 4-character
// form for logging.
func decodeFourCC(v float64) string {
	u := uint32(v)
	return string([]byte{
		byte(u),
		byte(u >> 8),
		byte(u >> 16),
		byte(u >> 24),
	})
}
