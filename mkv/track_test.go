package mkv

import (
	"bytes"
	"testing"
)

func TestCodecFromID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want CodecID
	}{
		{"A_OPUS", CodecOpus},
		{"A_AAC", CodecAAC},
		{"A_AAC/MPEG4/LC", CodecAAC},
		{"A_PCM/INT/LIT", CodecPCMInt},
		{"A_PCM/FLOAT/IEEE", CodecPCMFloat},
		{"A_VORBIS", CodecVorbis},
		{"A_FLAC", CodecFLAC},
		{"A_MS/ACM", CodecUnknown},
	}

	for _, tt := range tests {
		if got := codecFromID(tt.id); got != tt.want {
			t.Errorf("codecFromID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestClampU8(t *testing.T) {
	t.Parallel()

	if got := clampU8(2); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}

	if got := clampU8(500); got != 255 {
		t.Fatalf("got %d, want 255", got)
	}
}

func TestNewAACDecoderRejectsEmptyCodecPrivate(t *testing.T) {
	t.Parallel()

	if _, err := newAACDecoder(nil); err == nil {
		t.Fatal("expected an error for a track with no AudioSpecificConfig")
	}
}

func TestParseInfoDefaultTimecodeScale(t *testing.T) {
	t.Parallel()

	// An empty Info body (no TimecodeScale child) keeps the 1ms default.
	e, err := newEBMLReader(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	scale, err := parseInfo(e, 0, true)
	if err != nil {
		t.Fatalf("parseInfo: %v", err)
	}

	if scale != 1000000 {
		t.Fatalf("got %d, want 1000000", scale)
	}
}

func TestParseInfoReadsTimecodeScale(t *testing.T) {
	t.Parallel()

	// idTimecodeScale (0x2AD7B1, 3-byte element ID) + size vint 1 + value 5.
	data := []byte{0x2A, 0xD7, 0xB1, 0x81, 0x05}
	e, err := newEBMLReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	scale, err := parseInfo(e, int64(len(data)), true)
	if err != nil {
		t.Fatalf("parseInfo: %v", err)
	}

	if scale != 5 {
		t.Fatalf("got %d, want 5", scale)
	}
}
