package dsd

// EncodeNativeU32BE packs stereo DSD byte-pairs into DSD_U32_BE frames: one
// 32-bit big-endian word per channel, 4 DSD bytes per word, most-significant
// byte first, bit order unreversed (unlike DoP, native framing carries the
// bitstream exactly as read). left/right must hold a multiple of 4 bytes;
// frames = len(left)/4.
func EncodeNativeU32BE(left, right []byte) []byte {
	frames := len(left) / 4
	out := make([]byte, frames*2*4)

	woff := 0

	for i := range frames {
		copy(out[woff:woff+4], left[4*i:4*i+4])
		copy(out[woff+4:woff+8], right[4*i:4*i+4])
		woff += 8
	}

	return out
}
