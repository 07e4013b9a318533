package mkv

import (
	"testing"

	"github.com/mycophonic/hrmp"
)

func TestBitDepthForCompressedCodecsAreSixteenBit(t *testing.T) {
	t.Parallel()

	for _, codec := range []CodecID{CodecOpus, CodecAAC} {
		if got := bitDepthFor(AudioInfo{Codec: codec}); got != hrmp.Depth16 {
			t.Errorf("bitDepthFor(%v) = %v, want Depth16", codec, got)
		}
	}
}

func TestBitDepthForPCMFollowsTrackBitDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth uint8
		want     hrmp.BitDepth
	}{
		{16, hrmp.Depth16},
		{24, hrmp.Depth24},
		{32, hrmp.Depth32},
	}

	for _, tt := range tests {
		ai := AudioInfo{Codec: CodecPCMInt, BitDepth: tt.bitDepth}
		if got := bitDepthFor(ai); got != tt.want {
			t.Errorf("bitDepthFor(BitDepth=%d) = %v, want %v", tt.bitDepth, got, tt.want)
		}
	}
}
