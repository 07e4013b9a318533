package sink

import (
	"fmt"

	"github.com/mycophonic/hrmp"
)

const (
	maxBufferFrames  = 131072
	periodFrameTarget = 4096
)

// Configure picks the best supported wire format for the given bit depth
// and DSD mode, per spec.md §4.3's priority table, and returns the
// FormatCode plus the container byte width per sample (used by PcmConverter
// and DsdEncoder to size their output).
func Configure(caps Capabilities, bitDepth hrmp.BitDepth, dsdMode hrmp.DSDMode, dop bool) (FormatCode, int, error) {
	if dsdMode != hrmp.DSDNone {
		if dop {
			if caps.Has(CapS32LE) {
				return FormatS32LE, 4, nil
			}

			return FormatUnknown, 0, fmt.Errorf("sink: no DoP-capable format available")
		}

		if caps.Has(CapDSDU32BE) {
			return FormatDSDU32BE, 4, nil
		}

		if caps.Has(CapS32LE) {
			return FormatS32LE, 4, nil
		}

		return FormatUnknown, 0, fmt.Errorf("sink: no native or DoP DSD format available")
	}

	switch bitDepth {
	case hrmp.Depth16:
		if caps.Has(CapS16LE) {
			return FormatS16LE, 2, nil
		}

		return FormatUnknown, 0, fmt.Errorf("sink: S16_LE not supported by device")

	case hrmp.Depth24:
		if caps.Has(CapS24_3LE) {
			return FormatS24_3LE, 3, nil
		}

		if caps.Has(CapS32LE) {
			return FormatS32LE, 4, nil
		}

		return FormatUnknown, 0, fmt.Errorf("sink: neither S24_3LE nor S32_LE supported by device")

	case hrmp.Depth32:
		if caps.Has(CapS32LE) {
			return FormatS32LE, 4, nil
		}

		return FormatUnknown, 0, fmt.Errorf("sink: S32_LE not supported by device")

	default:
		return FormatUnknown, 0, fmt.Errorf("sink: unsupported bit depth %d", bitDepth)
	}
}

// OpenParams computes the negotiated period/buffer frame counts for an
// Open call, clamping to spec.md §4.3's bounds.
func OpenParams(rate int) (periodFrames, bufferFrames int) {
	periodFrames = periodFrameTarget
	bufferFrames = periodFrames * 4

	if bufferFrames > maxBufferFrames {
		bufferFrames = maxBufferFrames
		periodFrames = bufferFrames / 4
	}

	return periodFrames, bufferFrames
}
