// Package sinktest provides an in-memory sink.Sink fake that records every
// write, for the byte-exact end-to-end playback scenarios tests assert
// against.
package sinktest

import "github.com/mycophonic/hrmp/sink"

// Fake is an in-memory sink.Sink that accepts a configurable set of
// formats and records every WriteInterleaved call's bytes, in order.
type Fake struct {
	Accepted  map[sink.FormatCode]bool
	Written   []byte
	Opens     int
	Prepares  int
	Drops     int
	Drains    int
	Closes    int
	underrunAt int // if > 0, the Nth write call returns ErrUnderrun once
	writeCount int
}

type fakeHandle struct {
	format sink.FormatCode
	rate   int
}

// NewFake returns a Fake accepting exactly the given formats.
func NewFake(accepted ...sink.FormatCode) *Fake {
	m := make(map[sink.FormatCode]bool, len(accepted))
	for _, f := range accepted {
		m[f] = true
	}

	return &Fake{Accepted: m}
}

// FailNextWriteWithUnderrun makes the Nth WriteInterleaved call (1-indexed)
// return sink.ErrUnderrun instead of succeeding, for exercising the
// recoverable-underrun retry path.
func (f *Fake) FailNextWriteWithUnderrun(n int) { f.underrunAt = n }

func (f *Fake) Open(_ string, format sink.FormatCode, rate, _ int) (sink.Handle, error) {
	f.Opens++

	if !f.Accepted[format] {
		return nil, sink.ErrUnderrun
	}

	return &fakeHandle{format: format, rate: rate}, nil
}

func (f *Fake) WriteInterleaved(_ sink.Handle, data []byte, frames int) (int, error) {
	f.writeCount++

	if f.underrunAt > 0 && f.writeCount == f.underrunAt {
		return 0, sink.ErrUnderrun
	}

	f.Written = append(f.Written, data...)

	return frames, nil
}

func (f *Fake) Prepare(sink.Handle) error { f.Prepares++; return nil }
func (f *Fake) Drop(sink.Handle) error    { f.Drops++; return nil }
func (f *Fake) Drain(sink.Handle) error   { f.Drains++; return nil }
func (f *Fake) Close(sink.Handle) error   { f.Closes++; return nil }

func (f *Fake) Probe(_ string, format sink.FormatCode, _ int) bool {
	return f.Accepted[format]
}

func (f *Fake) OpenMixer(sink.Handle) (sink.Mixer, bool) { return nil, false }
