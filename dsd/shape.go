package dsd

// FadeoutMS and PostRollMS are the fixed shaping windows written around a
// DSD stream's playback, matching the reference player's boundary padding.
const (
	FadeoutMS  = 20
	PostRollMS = 60
)

// FramesFromMS converts a millisecond duration to a frame count at the
// given output PCM frame rate (the wire rate after DoP/native division).
func FramesFromMS(pcmRate int, ms int) int {
	if pcmRate <= 0 {
		return 0
	}

	return pcmRate * ms / 1000
}

// CenterPad synthesizes frames of the DSD "center" pattern (alternating
// 0xAA/0x55 bytes, the all-idle DSD signal) as silent native or DoP frames,
// continuing the DoP marker alternation across calls when dop is true.
func CenterPad(frames int, dop bool, marker *uint8) []byte {
	if frames <= 0 {
		return nil
	}

	const channels = 2

	out := make([]byte, frames*channels*bytesPerDoPFrame)

	m := byte(markerLSBFirst)
	if marker != nil {
		m = *marker
	}

	for i := range frames {
		a := byte(0xAA)
		if i&1 != 0 {
			a = 0x55
		}

		b := ^a

		woff := i * channels * bytesPerDoPFrame

		if dop {
			for c := range channels {
				off := woff + c*bytesPerDoPFrame
				out[off+0] = 0x00
				out[off+1] = a
				out[off+2] = b
				out[off+3] = m
			}

			if m == markerLSBFirst {
				m = markerMSBFirst
			} else {
				m = markerLSBFirst
			}
		} else {
			for c := range channels {
				off := woff + c*bytesPerDoPFrame
				out[off+0] = a
				out[off+1] = b
				out[off+2] = a
				out[off+3] = b
			}
		}
	}

	if marker != nil {
		*marker = m
	}

	return out
}

// Fadeout synthesizes FadeoutMS worth of center-pad frames, the fixed
// boundary shaping written before a stream's final flush.
func Fadeout(pcmRate int, dop bool, marker *uint8) []byte {
	return CenterPad(FramesFromMS(pcmRate, FadeoutMS), dop, marker)
}

// PostRoll synthesizes PostRollMS worth of center-pad frames, matching the
// trailing silence the reference player appends after the last real frame.
func PostRoll(pcmRate int, dop bool, marker *uint8) []byte {
	return CenterPad(FramesFromMS(pcmRate, PostRollMS), dop, marker)
}
