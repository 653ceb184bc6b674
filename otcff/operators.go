package otcff

// CFF2 DICT and charstring operators, as far as variation handling needs
// them. See Adobe Technical Note #5176/#5177 and the OpenType CFF2 spec.
const (
	// Top DICT operators
	dictCharStrings = 17
	dictVStore      = 24
	dictFDArray     = 12<<8 | 36
	dictFDSelect    = 12<<8 | 37

	// Font DICT and Private DICT operators
	dictPrivate = 18
	dictSubrs   = 19
	dictVSIndex = 22
	dictBlend   = 23
)

// CharString Type 2 / CFF2 operators
const (
	csVSIndex   = 15
	csBlend     = 16
	csCallsubr  = 10
	csCallgsubr = 29
	csShortint  = 28 // 16-bit integer follows
	csEscape    = 12 // two-byte operator prefix
)

// calcSubrBias returns the subroutine bias for the given subroutine count.
// CFF biases subroutine numbers to make small (frequent) indices cheap to
// encode.
func calcSubrBias(count int) int {
	if count < 1240 {
		return 107
	}
	if count < 33900 {
		return 1131
	}
	return 32768
}

// encodeCSInt encodes an integer operand in charstring format.
func encodeCSInt(v int) []byte {
	if v >= -107 && v <= 107 {
		return []byte{byte(v + 139)}
	}
	if v >= 108 && v <= 1131 {
		v -= 108
		return []byte{byte(v/256 + 247), byte(v % 256)}
	}
	if v >= -1131 && v <= -108 {
		v = -v - 108
		return []byte{byte(v/256 + 251), byte(v % 256)}
	}
	// 16-bit encoding
	return []byte{csShortint, byte(v >> 8), byte(v)}
}
