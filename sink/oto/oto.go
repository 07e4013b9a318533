// Package oto implements sink.Sink on top of github.com/hajimehoshi/oto/v2,
// the portable default output backend when no ALSA-class device is
// available. oto/v2 only supports 16-bit signed little-endian PCM and
// exposes no hardware mixer, so Backend rejects every other FormatCode and
// OpenMixer always reports that no mixer is available.
package oto

import (
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/mycophonic/hrmp/sink"
)

// Backend is the oto/v2-backed sink.Sink.
type Backend struct {
	mu  sync.Mutex
	ctx *oto.Context
}

type handle struct {
	player oto.Player
	pw     *io.PipeWriter
}

// Open configures an oto context for the given rate/channel count. Only
// sink.FormatS16LE is supported.
func (b *Backend) Open(_ string, format sink.FormatCode, rate, channels int) (sink.Handle, error) {
	if format != sink.FormatS16LE {
		return nil, fmt.Errorf("oto sink: unsupported format %s (16-bit only)", format)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx == nil {
		ctx, ready, err := oto.NewContext(rate, channels, 2)
		if err != nil {
			return nil, fmt.Errorf("oto sink: creating context: %w", err)
		}

		<-ready

		b.ctx = ctx
	}

	pr, pw := io.Pipe()
	player := b.ctx.NewPlayer(pr)
	player.Play()

	return &handle{player: player, pw: pw}, nil
}

// WriteInterleaved pushes data into the player's backing pipe. oto has no
// notion of a recoverable underrun at this layer, so errors are reported as
// sink.ErrUnderrun only when the pipe write itself fails (the player was
// closed out from under us).
func (b *Backend) WriteInterleaved(h sink.Handle, data []byte, frames int) (int, error) {
	hd := h.(*handle)

	n, err := hd.pw.Write(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", sink.ErrUnderrun, err)
	}

	bytesPerFrame := len(data) / max(frames, 1)
	if bytesPerFrame == 0 {
		return 0, nil
	}

	return n / bytesPerFrame, nil
}

func (b *Backend) Prepare(sink.Handle) error { return nil }
func (b *Backend) Drop(h sink.Handle) error {
	return h.(*handle).player.Close() //nolint:wrapcheck
}

func (b *Backend) Drain(sink.Handle) error { return nil }

func (b *Backend) Close(h sink.Handle) error {
	hd := h.(*handle)

	_ = hd.pw.Close()

	return hd.player.Close() //nolint:wrapcheck
}

// Probe reports whether format is supported at all by this backend,
// independent of any particular device (oto has no device enumeration).
func (b *Backend) Probe(_ string, format sink.FormatCode, _ int) bool {
	return format == sink.FormatS16LE
}

// OpenMixer always returns false: oto exposes no hardware volume control.
func (b *Backend) OpenMixer(sink.Handle) (sink.Mixer, bool) { return nil, false }
