// Package ringbuffer implements a byte-level, single-producer/single-consumer
// ring buffer used as a read-ahead buffer between a synchronous file read
// and a decoder. It grows on demand (doubling, clamped to a max) and shrinks
// back to its minimum on reset.
package ringbuffer

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned by New when min/max are zero or min > max.
var ErrInvalidSize = errors.New("ringbuffer: invalid size")

// ErrWouldExceedMax is returned by EnsureWrite when growing to fit n bytes
// would exceed the buffer's max capacity.
var ErrWouldExceedMax = errors.New("ringbuffer: would exceed max")

// RingBuffer is a resizable byte ring with min/initial/max bounds.
//
// Invariants: min <= cap <= max; size <= cap; when size == 0 both cursors
// reset to 0. It is not safe for concurrent use — the engine is
// single-threaded (see spec §5) and each instance is owned by exactly one
// PlaybackController.
type RingBuffer struct {
	buf  []byte
	min  int
	max  int
	r, w int
	size int
}

// New creates a ring buffer with the given min/initial/max bounds. initial
// is clamped into [min, max].
func New(minSize, initial, maxSize int) (*RingBuffer, error) {
	if minSize == 0 || maxSize == 0 || minSize > maxSize {
		return nil, ErrInvalidSize
	}

	initialCap := clamp(initial, minSize, maxSize)
	if initial <= minSize {
		initialCap = minSize
	}

	return &RingBuffer{
		buf: make([]byte, initialCap),
		min: minSize,
		max: maxSize,
	}, nil
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// Cap returns the current allocated capacity.
func (rb *RingBuffer) Cap() int { return len(rb.buf) }

// Len returns the number of live (unconsumed) bytes.
func (rb *RingBuffer) Len() int { return rb.size }

// Min returns the configured minimum capacity.
func (rb *RingBuffer) Min() int { return rb.min }

// Max returns the configured maximum capacity.
func (rb *RingBuffer) Max() int { return rb.max }

// Peek returns the longest contiguous readable slice (up to the wrap
// point). A zero-length result means the buffer is empty. The returned
// slice aliases the buffer's storage and is invalidated by the next
// Consume/Produce/EnsureWrite/Reset call.
func (rb *RingBuffer) Peek() []byte {
	if rb.size == 0 {
		return nil
	}

	n := len(rb.buf) - rb.r
	if n > rb.size {
		n = rb.size
	}

	return rb.buf[rb.r : rb.r+n]
}

// Consume advances the read cursor by n bytes (clamped to the live size).
// When the buffer empties, both cursors reset to 0.
func (rb *RingBuffer) Consume(n int) {
	if rb.size == 0 {
		return
	}

	if n > rb.size {
		n = rb.size
	}

	rb.r = (rb.r + n) % len(rb.buf)
	rb.size -= n

	if rb.size == 0 {
		rb.r, rb.w = 0, 0
	}
}

// WriteSpan returns the longest contiguous writable slice without wrap. A
// zero-length result means the buffer is full. The returned slice aliases
// the buffer's storage and is invalidated by the next mutating call.
func (rb *RingBuffer) WriteSpan() []byte {
	free := len(rb.buf) - rb.size
	if free == 0 {
		return nil
	}

	n := len(rb.buf) - rb.w
	if n > free {
		n = free
	}

	return rb.buf[rb.w : rb.w+n]
}

// Produce advances the write cursor by n bytes. It fails if n exceeds the
// buffer's free space.
func (rb *RingBuffer) Produce(n int) error {
	free := len(rb.buf) - rb.size
	if n > free {
		return fmt.Errorf("ringbuffer: produce %d exceeds free space %d: %w", n, free, ErrInvalidSize)
	}

	rb.w = (rb.w + n) % len(rb.buf)
	rb.size += n

	return nil
}

// EnsureWrite guarantees at least n bytes of free space, growing the
// capacity (doubling, clamped at max) if necessary. It fails with
// ErrWouldExceedMax when size+n would exceed max.
func (rb *RingBuffer) EnsureWrite(n int) error {
	if n > rb.max {
		return fmt.Errorf("ringbuffer: %d exceeds max %d: %w", n, rb.max, ErrWouldExceedMax)
	}

	free := len(rb.buf) - rb.size
	if free >= n {
		return nil
	}

	need := rb.size + n
	if need > rb.max {
		return fmt.Errorf("ringbuffer: live %d + %d exceeds max %d: %w", rb.size, n, rb.max, ErrWouldExceedMax)
	}

	newCap := len(rb.buf)
	for newCap < need {
		if newCap >= rb.max {
			newCap = rb.max
			break
		}

		doubled := newCap * 2
		if doubled < newCap || doubled > rb.max {
			doubled = rb.max
		}

		newCap = doubled
	}

	return rb.resizeTo(newCap)
}

// Reset zeroes both cursors and the live size, and shrinks the capacity
// back to min if it currently exceeds it.
func (rb *RingBuffer) Reset() {
	rb.r, rb.w, rb.size = 0, 0, 0

	if len(rb.buf) > rb.min {
		// size is already 0, so resizeTo's "can't shrink below live data"
		// guard never trips here.
		_ = rb.resizeTo(rb.min)
	}
}

// resizeTo reallocates the backing array to newCap (clamped to [min, max]),
// linearizing the live window into the new buffer starting at offset 0.
func (rb *RingBuffer) resizeTo(newCap int) error {
	newCap = clamp(newCap, rb.min, rb.max)
	if newCap == len(rb.buf) {
		return nil
	}

	if rb.size > newCap {
		return fmt.Errorf("ringbuffer: live size %d exceeds new capacity %d: %w", rb.size, newCap, ErrInvalidSize)
	}

	nb := make([]byte, newCap)

	if rb.size > 0 {
		first := len(rb.buf) - rb.r
		if first > rb.size {
			first = rb.size
		}

		copy(nb, rb.buf[rb.r:rb.r+first])

		if first < rb.size {
			copy(nb[first:], rb.buf[:rb.size-first])
		}
	}

	rb.buf = nb
	rb.r = 0
	rb.w = rb.size

	if rb.w >= len(rb.buf) {
		rb.w = 0
	}

	return nil
}
