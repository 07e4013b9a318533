package mkv

import (
	"bytes"
	"testing"
)

func newWalker(t *testing.T, data []byte) *clusterWalker {
	t.Helper()

	e, err := newEBMLReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("newEBMLReader: %v", err)
	}

	return &clusterWalker{e: e, trackNumber: 1, timecodeScale: 1000000}
}

func TestReadLacedFramesNone(t *testing.T) {
	t.Parallel()

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	w := newWalker(t, payload)

	frames, err := w.readLacedFrames(laceNone, len(payload))
	if err != nil {
		t.Fatalf("readLacedFrames: %v", err)
	}

	if len(frames) != 1 || !bytes.Equal(frames[0], payload) {
		t.Fatalf("got %v, want one frame equal to payload", frames)
	}
}

// TestReadLacedFramesXiphTwoFrames exercises spec.md §8's testable
// property: a block whose lace_count+1 frames' sizes sum exactly to the
// remaining bytes after the size-byte run must decode without error, for
// exactly two frames (a case a past regression silently dropped).
func TestReadLacedFramesXiphTwoFrames(t *testing.T) {
	t.Parallel()

	// lace_count byte = 1 (2 frames), one size byte for the first frame
	// (3), then 3+2=5 bytes of frame data.
	data := []byte{0x01, 0x03, 'a', 'b', 'c', 'd', 'e'}
	w := newWalker(t, data)

	frames, err := w.readLacedFrames(laceXiph, len(data))
	if err != nil {
		t.Fatalf("readLacedFrames: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}

	if !bytes.Equal(frames[0], []byte("abc")) {
		t.Fatalf("frame 0 = %q, want %q", frames[0], "abc")
	}

	if !bytes.Equal(frames[1], []byte("de")) {
		t.Fatalf("frame 1 = %q, want %q", frames[1], "de")
	}
}

func TestReadLacedFramesXiphThreeFrames(t *testing.T) {
	t.Parallel()

	// lace_count byte = 2 (3 frames), size bytes for the first two frames
	// (2, 2), then 2+2+2=6 bytes of frame data for the implicit third.
	data := []byte{0x02, 0x02, 0x02, 'a', 'a', 'b', 'b', 'c', 'c'}
	w := newWalker(t, data)

	frames, err := w.readLacedFrames(laceXiph, len(data))
	if err != nil {
		t.Fatalf("readLacedFrames: %v", err)
	}

	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}

	for i, want := range [][]byte{[]byte("aa"), []byte("bb"), []byte("cc")} {
		if !bytes.Equal(frames[i], want) {
			t.Fatalf("frame %d = %q, want %q", i, frames[i], want)
		}
	}
}

func TestReadLacedFramesXiphSizeByteRun(t *testing.T) {
	t.Parallel()

	// A first-frame size of 256 is encoded as a run of 0xFF continuation
	// bytes followed by a terminating byte: 255 + 1 = 256.
	frame0 := bytes.Repeat([]byte{'x'}, 256)
	frame1 := []byte{'y', 'y'}

	data := append([]byte{0x01, 0xFF, 0x01}, append(append([]byte{}, frame0...), frame1...)...)
	w := newWalker(t, data)

	frames, err := w.readLacedFrames(laceXiph, len(data))
	if err != nil {
		t.Fatalf("readLacedFrames: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}

	if len(frames[0]) != 256 {
		t.Fatalf("frame 0 length = %d, want 256", len(frames[0]))
	}

	if !bytes.Equal(frames[1], frame1) {
		t.Fatalf("frame 1 = %q, want %q", frames[1], frame1)
	}
}

// TestReadLacedFramesFixedSkipsWithoutDecoding covers lacing value 2
// (Fixed): the lace-count and remaining payload bytes are consumed to keep
// the reader aligned, but no frames are produced.
func TestReadLacedFramesFixedSkipsWithoutDecoding(t *testing.T) {
	t.Parallel()

	data := []byte{0x01, 'a', 'b', 'c', 'd'}
	w := newWalker(t, data)

	frames, err := w.readLacedFrames(laceFixed, len(data))
	if err != nil {
		t.Fatalf("readLacedFrames: %v", err)
	}

	if frames != nil {
		t.Fatalf("got %v, want no frames for Fixed lacing", frames)
	}

	if got := w.e.tell(); got != int64(len(data)) {
		t.Fatalf("reader position = %d, want %d (fully consumed)", got, len(data))
	}
}

// TestReadLacedFramesEBMLSkipsWithoutDecoding covers lacing value 3 (EBML):
// same consume-but-skip behavior as Fixed.
func TestReadLacedFramesEBMLSkipsWithoutDecoding(t *testing.T) {
	t.Parallel()

	data := []byte{0x02, 'a', 'b', 'c', 'd', 'e'}
	w := newWalker(t, data)

	frames, err := w.readLacedFrames(laceEBML, len(data))
	if err != nil {
		t.Fatalf("readLacedFrames: %v", err)
	}

	if frames != nil {
		t.Fatalf("got %v, want no frames for EBML lacing", frames)
	}

	if got := w.e.tell(); got != int64(len(data)) {
		t.Fatalf("reader position = %d, want %d (fully consumed)", got, len(data))
	}
}
