// Package dsd encodes raw 1-bit DSD sample streams into the two wire
// formats a PCM-only sink can carry: DSD-over-PCM (DoP) and native
// DSD_U32_BE framing, plus the fade/pad shaping used at stream boundaries.
package dsd

import "math/bits"

// Marker alternation for DoP frames, per the DoP Open Standard.
const (
	markerLSBFirst = 0x05
	markerMSBFirst = 0xFA
)

// MarkerInit is the marker byte a caller must seed its first CenterPad or
// EncodeDoPPairs call with, so the alternation starts 0x05/0xFA rather than
// silently omitting the first frame's marker.
const MarkerInit uint8 = markerLSBFirst

const bytesPerDoPFrame = 4 // one 32-bit word per channel

// PrefillFrames returns the number of silent DoP frames to write before
// real audio, per the sample-rate-dependent priming window.
func PrefillFrames(sampleRate int) int {
	if sampleRate >= 11289600 {
		return 4096
	}

	return 2048
}

func bitrev8(x uint8) uint8 {
	return bits.Reverse8(x)
}

// EncodeDoPPairs packs stereo DSD byte-pairs (two consecutive source bytes
// per channel per DoP frame, matching the reference player's per-frame
// granularity) into interleaved 32-bit DoP words. left/right each hold an
// even number of bytes; frames = len(left)/2.
func EncodeDoPPairs(left, right []byte, marker *uint8) []byte {
	frames := len(left) / 2
	out := make([]byte, frames*2*bytesPerDoPFrame)

	m := *marker
	woff := 0

	for i := range frames {
		l0, l1 := bitrev8(left[2*i]), bitrev8(left[2*i+1])
		r0, r1 := bitrev8(right[2*i]), bitrev8(right[2*i+1])

		l0, l1 = l1, l0
		r0, r1 = r1, r0

		out[woff+0] = 0x00
		out[woff+1] = l0
		out[woff+2] = l1
		out[woff+3] = m

		out[woff+4] = 0x00
		out[woff+5] = r0
		out[woff+6] = r1
		out[woff+7] = m

		woff += 8

		if m == markerLSBFirst {
			m = markerMSBFirst
		} else {
			m = markerLSBFirst
		}
	}

	*marker = m

	return out
}
