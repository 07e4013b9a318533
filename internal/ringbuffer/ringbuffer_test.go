package ringbuffer

import (
	"bytes"
	"math/rand/v2"
	"testing"
)

func TestCreateRejectsInvalidSizes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		min, ini, max int
	}{
		{"zero min", 0, 10, 100},
		{"zero max", 10, 10, 0},
		{"min greater than max", 100, 10, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, err := New(tc.min, tc.ini, tc.max); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestCreateClampsInitial(t *testing.T) {
	t.Parallel()

	rb, err := New(16, 4, 64)
	if err != nil {
		t.Fatal(err)
	}

	if rb.Cap() != 16 {
		t.Fatalf("expected initial clamped to min 16, got %d", rb.Cap())
	}

	rb, err = New(16, 1000, 64)
	if err != nil {
		t.Fatal(err)
	}

	if rb.Cap() != 64 {
		t.Fatalf("expected initial clamped to max 64, got %d", rb.Cap())
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rb, err := New(8, 8, 1<<20)
	if err != nil {
		t.Fatal(err)
	}

	data := make([]byte, 50000)
	rng := rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic test fixture
	for i := range data {
		data[i] = byte(rng.Uint32())
	}

	if err := rb.EnsureWrite(len(data)); err != nil {
		t.Fatal(err)
	}

	written := 0
	for written < len(data) {
		span := rb.WriteSpan()
		if len(span) == 0 {
			t.Fatal("write span unexpectedly empty before all data written")
		}

		n := copy(span, data[written:])
		if err := rb.Produce(n); err != nil {
			t.Fatal(err)
		}

		written += n
	}

	var out bytes.Buffer
	for out.Len() < len(data) {
		chunk := rb.Peek()
		if len(chunk) == 0 {
			t.Fatal("peek unexpectedly empty before all data read")
		}

		out.Write(chunk)
		rb.Consume(len(chunk))
	}

	if !bytes.Equal(out.Bytes(), data) {
		t.Fatal("round-tripped bytes differ from input")
	}
}

func TestEnsureWriteBoundary(t *testing.T) {
	t.Parallel()

	rb, err := New(8, 8, 16)
	if err != nil {
		t.Fatal(err)
	}

	if err := rb.EnsureWrite(16); err != nil {
		t.Fatalf("live(0)+16 == max(16) should succeed: %v", err)
	}

	rb2, err := New(8, 8, 16)
	if err != nil {
		t.Fatal(err)
	}

	if err := rb2.EnsureWrite(17); err == nil {
		t.Fatal("live(0)+17 > max(16) should fail")
	}
}

func TestInvariantsAfterProduceConsume(t *testing.T) {
	t.Parallel()

	rb, err := New(8, 8, 256)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 100; i++ {
		n := 1 + i%30
		if err := rb.EnsureWrite(n); err != nil {
			continue
		}

		span := rb.WriteSpan()
		if len(span) < n {
			continue
		}

		if err := rb.Produce(n); err != nil {
			t.Fatal(err)
		}

		if rb.Len() > rb.Cap() || rb.Cap() > rb.Max() {
			t.Fatalf("invariant violated: len=%d cap=%d max=%d", rb.Len(), rb.Cap(), rb.Max())
		}

		rb.Consume(n / 2)
	}
}

func TestResetShrinksToMin(t *testing.T) {
	t.Parallel()

	rb, err := New(8, 8, 1024)
	if err != nil {
		t.Fatal(err)
	}

	if err := rb.EnsureWrite(500); err != nil {
		t.Fatal(err)
	}

	if err := rb.Produce(500); err != nil {
		t.Fatal(err)
	}

	rb.Reset()

	if rb.Cap() != rb.Min() {
		t.Fatalf("expected cap to shrink to min %d, got %d", rb.Min(), rb.Cap())
	}

	if rb.Len() != 0 {
		t.Fatalf("expected size 0 after reset, got %d", rb.Len())
	}
}
