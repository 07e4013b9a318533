package mkv

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadVintLengths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want uint64
	}{
		{"1-byte", []byte{0x82}, 2},
		{"2-byte", []byte{0x40, 0x7B}, 123},
		{"3-byte", []byte{0x20, 0x00, 0x01}, 1},
		{"8-byte max", []byte{0x01, 0, 0, 0, 0, 0, 0, 0x05}, 5},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, err := newEBMLReader(bytes.NewReader(tt.in))
			if err != nil {
				t.Fatalf("newEBMLReader: %v", err)
			}

			got, err := e.readVint(false)
			if err != nil {
				t.Fatalf("readVint: %v", err)
			}

			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadVintUnknownSize(t *testing.T) {
	t.Parallel()

	// A 1-byte-length vint whose payload bits are all ones is the reserved
	// "unknown size" marker.
	e, err := newEBMLReader(bytes.NewReader([]byte{0xFF}))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	_, err = e.readVint(true)
	if !errors.Is(err, ErrUnknownSize) {
		t.Fatalf("got %v, want ErrUnknownSize", err)
	}
}

func TestReadVintInvalidLengthMarker(t *testing.T) {
	t.Parallel()

	e, err := newEBMLReader(bytes.NewReader([]byte{0x00}))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	if _, err := e.readVint(false); err == nil {
		t.Fatal("expected an error for a zero length-marker byte")
	}
}

func TestReadElementHeaderIDAndSize(t *testing.T) {
	t.Parallel()

	// idTrackEntry (0xAE, a 1-byte element ID) followed by a size vint of 5.
	e, err := newEBMLReader(bytes.NewReader([]byte{0xAE, 0x85}))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	id, size, unknown, err := e.readElementHeader()
	if err != nil {
		t.Fatalf("readElementHeader: %v", err)
	}

	if unknown {
		t.Fatal("expected a known size")
	}

	if id != idTrackEntry {
		t.Fatalf("id = 0x%X, want 0x%X", id, idTrackEntry)
	}

	if size != 5 {
		t.Fatalf("size = %d, want 5", size)
	}
}

func TestReadElementHeaderUnknownSize(t *testing.T) {
	t.Parallel()

	// idCluster (4-byte element ID) followed by the reserved unknown-size
	// vint, as streamed Matroska files commonly use for Cluster/Segment.
	e, err := newEBMLReader(bytes.NewReader([]byte{0x1F, 0x43, 0xB6, 0x75, 0xFF}))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	id, _, unknown, err := e.readElementHeader()
	if err != nil {
		t.Fatalf("readElementHeader: %v", err)
	}

	if !unknown {
		t.Fatal("expected an unknown size")
	}

	if id != idCluster {
		t.Fatalf("id = 0x%X, want 0x%X", id, idCluster)
	}
}

func TestReadUintBigEndian(t *testing.T) {
	t.Parallel()

	e, err := newEBMLReader(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	v, err := e.readUint(3)
	if err != nil {
		t.Fatalf("readUint: %v", err)
	}

	if v != 0x010203 {
		t.Fatalf("got 0x%X, want 0x010203", v)
	}
}

func TestSkipAdvancesPosition(t *testing.T) {
	t.Parallel()

	e, err := newEBMLReader(bytes.NewReader([]byte{0, 1, 2, 3, 4, 5}))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	if err := e.skip(3); err != nil {
		t.Fatalf("skip: %v", err)
	}

	b, err := e.readU8()
	if err != nil {
		t.Fatalf("readU8: %v", err)
	}

	if b != 3 {
		t.Fatalf("got %d, want 3", b)
	}
}
