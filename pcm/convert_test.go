package pcm_test

import (
	"testing"

	"github.com/mycophonic/hrmp/pcm"
)

func le16(v int16) []byte { return []byte{byte(v), byte(v >> 8)} }

func TestDownmix16AveragesChannels(t *testing.T) {
	t.Parallel()

	// One frame, 4 channels: 100, 200, 300, 400 -> average 250.
	var in []byte
	for _, v := range []int16{100, 200, 300, 400} {
		in = append(in, le16(v)...)
	}

	out := pcm.Downmix16(in, 4)

	if len(out) != 4 {
		t.Fatalf("expected 4 output bytes (1 stereo frame), got %d", len(out))
	}

	left := int16(uint16(out[0]) | uint16(out[1])<<8)
	right := int16(uint16(out[2]) | uint16(out[3])<<8)

	if left != 250 || right != 250 {
		t.Fatalf("got left=%d right=%d, want 250/250", left, right)
	}
}

func TestDownmix16StereoPassesThroughUnchanged(t *testing.T) {
	t.Parallel()

	var in []byte
	in = append(in, le16(1234)...)
	in = append(in, le16(-5678)...)

	out := pcm.Downmix16(in, 2)

	left := int16(uint16(out[0]) | uint16(out[1])<<8)
	right := int16(uint16(out[2]) | uint16(out[3])<<8)

	if left != 1234 || right != -5678 {
		t.Fatalf("got left=%d right=%d, want 1234/-5678", left, right)
	}
}

func TestDownmix24SignExtendsBeforeAveraging(t *testing.T) {
	t.Parallel()

	// Two channels: one max-negative 24-bit sample (0x800000) and 0.
	// Average should stay negative, not wrap to a large positive value.
	in := []byte{0x00, 0x00, 0x80, 0x00, 0x00, 0x00}

	out := pcm.Downmix24(in, 2)

	s := int32(out[0]) | int32(out[1])<<8 | int32(out[2])<<16
	if s&0x800000 != 0 {
		s |= -1 << 24
	}

	if s >= 0 {
		t.Fatalf("expected negative average, got %d", s)
	}
}

func TestDownmix32FrameCount(t *testing.T) {
	t.Parallel()

	in := make([]byte, 4*4*10) // 10 frames, 4 channels, 4 bytes each
	out := pcm.Downmix32(in, 4)

	if len(out) != 8*10 {
		t.Fatalf("got %d bytes, want %d (10 stereo frames)", len(out), 8*10)
	}
}

// TestExtractSamePassesThrough covers the no-op width-match case.
func TestExtractSamePassesThrough(t *testing.T) {
	t.Parallel()

	in := []byte{0x01, 0x02, 0x03, 0x04}
	out := pcm.Extract(in, 2, 2)

	if string(out) != string(in) {
		t.Fatalf("got %v, want %v unchanged", out, in)
	}
}

// TestExtract24On32OnlySink covers spec.md's 24-bit-FLAC-on-an-S32LE-only
// sink scenario: each 3-byte 24-bit LE sample must land in the upper three
// bytes of an 8-byte stereo frame's 4-byte words, with the low byte zeroed.
func TestExtract24On32OnlySink(t *testing.T) {
	t.Parallel()

	// One stereo frame: left = 0x123456, right = 0x800000 (most negative).
	in := []byte{0x56, 0x34, 0x12, 0x00, 0x00, 0x80}

	out := pcm.Extract(in, 3, 4)

	if len(out) != 8 {
		t.Fatalf("got %d bytes, want 8 (one stereo S32LE frame)", len(out))
	}

	if out[0] != 0x00 {
		t.Fatalf("left low byte = 0x%02X, want 0x00", out[0])
	}

	if out[1] != 0x56 || out[2] != 0x34 || out[3] != 0x12 {
		t.Fatalf("left upper 3 bytes = [%02X %02X %02X], want [56 34 12]", out[1], out[2], out[3])
	}

	if out[4] != 0x00 {
		t.Fatalf("right low byte = 0x%02X, want 0x00", out[4])
	}

	if out[5] != 0x00 || out[6] != 0x00 || out[7] != 0x80 {
		t.Fatalf("right upper 3 bytes = [%02X %02X %02X], want [00 00 80]", out[5], out[6], out[7])
	}
}

// TestExtractNarrowingTruncates covers the narrowing direction (e.g. a
// 32-bit decode buffer repacked onto a 16-bit-only sink).
func TestExtractNarrowingTruncates(t *testing.T) {
	t.Parallel()

	// int32 sample 0x12345678, narrowed to 16 bits keeps the top 16 bits.
	in := []byte{0x78, 0x56, 0x34, 0x12}

	out := pcm.Extract(in, 4, 2)

	if len(out) != 2 {
		t.Fatalf("got %d bytes, want 2", len(out))
	}

	got := uint16(out[0]) | uint16(out[1])<<8
	if got != 0x1234 {
		t.Fatalf("got 0x%04X, want 0x1234", got)
	}
}
