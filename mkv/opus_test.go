package mkv

import (
	"encoding/binary"
	"testing"
)

func buildOpusHead(channels, mappingFamily uint8, preSkip uint16, streamCount, coupledCount uint8, mapping []uint8) []byte {
	b := make([]byte, 19)
	copy(b[:8], "OpusHead")
	b[8] = 1 // version
	b[9] = channels
	binary.LittleEndian.PutUint16(b[10:12], preSkip)
	binary.LittleEndian.PutUint32(b[12:16], 48000)
	binary.LittleEndian.PutUint16(b[16:18], 0)
	b[18] = mappingFamily

	if mappingFamily == 0 {
		return b
	}

	b = append(b, streamCount, coupledCount)
	b = append(b, mapping...)

	return b
}

func TestParseOpusHeadMappingFamilyZero(t *testing.T) {
	t.Parallel()

	b := buildOpusHead(2, 0, 312, 0, 0, nil)

	h, err := parseOpusHead(b)
	if err != nil {
		t.Fatalf("parseOpusHead: %v", err)
	}

	if h.channels != 2 {
		t.Fatalf("channels = %d, want 2", h.channels)
	}

	if h.preSkip != 312 {
		t.Fatalf("preSkip = %d, want 312", h.preSkip)
	}

	if h.mappingFamily != 0 {
		t.Fatalf("mappingFamily = %d, want 0", h.mappingFamily)
	}
}

func TestParseOpusHeadWithMappingTable(t *testing.T) {
	t.Parallel()

	mapping := []uint8{0, 1, 2, 3}
	b := buildOpusHead(4, 1, 0, 2, 2, mapping)

	h, err := parseOpusHead(b)
	if err != nil {
		t.Fatalf("parseOpusHead: %v", err)
	}

	if h.streamCount != 2 || h.coupledCount != 2 {
		t.Fatalf("got streamCount=%d coupledCount=%d, want 2/2", h.streamCount, h.coupledCount)
	}

	if len(h.channelMapping) != 4 {
		t.Fatalf("channelMapping length = %d, want 4", len(h.channelMapping))
	}
}

func TestParseOpusHeadRejectsBadMagic(t *testing.T) {
	t.Parallel()

	b := buildOpusHead(2, 0, 0, 0, 0, nil)
	b[0] = 'X'

	if _, err := parseOpusHead(b); err == nil {
		t.Fatal("expected an error for a non-OpusHead block")
	}
}

func TestParseOpusHeadRejectsTruncatedMappingTable(t *testing.T) {
	t.Parallel()

	b := buildOpusHead(4, 1, 0, 2, 2, []uint8{0, 1, 2, 3})
	b = b[:len(b)-2] // drop the last two mapping-table bytes

	if _, err := parseOpusHead(b); err == nil {
		t.Fatal("expected an error for a truncated mapping table")
	}
}

func TestNewOpusDecoderRejectsBadMappingFamilyZeroChannelCount(t *testing.T) {
	t.Parallel()

	b := buildOpusHead(3, 0, 0, 0, 0, nil)

	if _, err := newOpusDecoder(b); err == nil {
		t.Fatal("expected an error: mapping family 0 only supports mono/stereo")
	}
}
