// Package playback drives one queued file end to end: opening the sink,
// reading/decoding/converting its samples, pacing them to the device, and
// reacting to keyboard commands along the way.
package playback

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mycophonic/hrmp"
	"github.com/mycophonic/hrmp/dsd"
	"github.com/mycophonic/hrmp/flac"
	"github.com/mycophonic/hrmp/internal/log"
	"github.com/mycophonic/hrmp/internal/ringbuffer"
	"github.com/mycophonic/hrmp/keyboard"
	"github.com/mycophonic/hrmp/mkv"
	"github.com/mycophonic/hrmp/mp3"
	"github.com/mycophonic/hrmp/pcm"
	"github.com/mycophonic/hrmp/sink"
	"github.com/mycophonic/hrmp/wav"
)

const (
	ringMin = 4 * 1024 * 1024
	ringMax = 256 * 1024 * 1024
)

// Advance is the outer-queue instruction a Controller returns when it ends
// a file, per spec.md §4's next/previous/quit contract.
type Advance int

const (
	AdvanceNext Advance = iota
	AdvancePrevious
	AdvanceQuit
)

// Controller plays one FileMetadata end to end.
type Controller struct {
	Device       *Device
	DoP          bool
	Template     string
	Number       int
	Total        int
	VolumePct    int

	kb *keyboard.Keyboard
}

// Options bundles the per-run configuration a Controller needs beyond the
// file itself, mirroring spec.md §6's enumerated configuration inputs.
type Options struct {
	DoP       bool
	Template  string
	VolumePct int
}

// NewController builds a Controller bound to dev for the run's lifetime;
// kb is optional (nil disables keyboard polling, e.g. in tests).
func NewController(dev *Device, kb *keyboard.Keyboard, opts Options) *Controller {
	tmpl := opts.Template
	if tmpl == "" {
		tmpl = DefaultTemplate
	}

	return &Controller{Device: dev, DoP: opts.DoP, Template: tmpl, VolumePct: opts.VolumePct, kb: kb}
}

// Play runs fm to completion (or until a keyboard command ends it early),
// writing progress ticks to out, and returns the next queue action.
func (c *Controller) Play(fm *hrmp.FileMetadata, number, total int, out io.Writer) (Advance, error) {
	c.Number, c.Total = number, total

	if err := c.Device.Open(fm, c.DoP); err != nil {
		return AdvanceNext, err
	}
	defer c.Device.Close()

	if err := c.Device.UpdateVolume(c.VolumePct); err != nil {
		log.Default().Warn().Err(err).Msg("failed to set device volume")
	}

	pacer := &Pacer{Device: c.Device}

	switch fm.Kind {
	case hrmp.KindDSF, hrmp.KindDFF:
		return c.playDSD(fm, pacer, out)
	case hrmp.KindMKV:
		return c.playMKV(fm, pacer, out)
	default:
		return c.playPCM(fm, pacer, out)
	}
}

// playPCM handles WAV/FLAC/MP3: the bitstream decoder materializes the
// whole file's PCM, which is then paced through the ring buffer in
// WriteSpan-sized chunks by pump.
func (c *Controller) playPCM(fm *hrmp.FileMetadata, pacer *Pacer, out io.Writer) (Advance, error) {
	f, err := os.Open(fm.Path)
	if err != nil {
		return AdvanceNext, fmt.Errorf("playback: opening %s: %w", fm.Path, err)
	}
	defer f.Close()

	var pcmBytes []byte

	switch fm.Kind {
	case hrmp.KindWAV:
		pcmBytes, _, err = wav.Decode(f)
	case hrmp.KindFLAC:
		pcmBytes, _, err = flac.Decode(f)
	case hrmp.KindMP3:
		pcmBytes, _, err = mp3.Decode(f)
	default:
		return AdvanceNext, fmt.Errorf("playback: unreachable kind %s", fm.Kind)
	}

	if err != nil {
		return AdvanceNext, hrmp.NewError(hrmp.KindUnsupportedFormat, fm.Path, err)
	}

	_, sinkWidth := c.Device.Format()
	srcWidth := fm.BitDepth.BytesPerSample()

	if sinkWidth != srcWidth {
		pcmBytes = pcm.Extract(pcmBytes, srcWidth, sinkWidth)
	}

	bytesPerFrame := int(fm.Channels) * sinkWidth

	rb, err := ringbuffer.New(ringMin, clampRing(fm.TotalSamples*int64(bytesPerFrame)), ringMax)
	if err != nil {
		return AdvanceNext, fmt.Errorf("playback: ring buffer: %w", err)
	}

	return c.pump(fm, pacer, rb, bytesPerFrame, pcmBytes, 0, out)
}

// pump feeds data through rb in WriteSpan-sized chunks and paces it to the
// device, polling the keyboard and emitting progress between chunks.
func (c *Controller) pump(fm *hrmp.FileMetadata, pacer *Pacer, rb *ringbuffer.RingBuffer, bytesPerFrame int, data []byte, startOffset int64, out io.Writer) (Advance, error) {
	offset := 0
	currentSamples := startOffset

	for offset < len(data) {
		span := rb.WriteSpan()
		if len(span) == 0 {
			if consumed := c.drainOnce(rb, pacer, bytesPerFrame); consumed == 0 {
				break
			}

			continue
		}

		n := copy(span, data[offset:])
		_ = rb.Produce(n)
		offset += n

		frames := rb.Len() / bytesPerFrame
		if frames == 0 {
			continue
		}

		chunk := rb.Peek()
		chunkFrames := min(len(chunk)/bytesPerFrame, frames)
		chunk = chunk[:chunkFrames*bytesPerFrame]

		if err := pacer.WriteAll(chunk, chunkFrames); err != nil {
			return AdvanceNext, err
		}

		rb.Consume(len(chunk))
		currentSamples += int64(chunkFrames)

		if adv, done := c.tick(fm, currentSamples, rb, out); done {
			return adv, nil
		}
	}

	for rb.Len() >= bytesPerFrame {
		chunk := rb.Peek()
		chunkFrames := len(chunk) / bytesPerFrame
		chunk = chunk[:chunkFrames*bytesPerFrame]

		if err := pacer.WriteAll(chunk, chunkFrames); err != nil {
			return AdvanceNext, err
		}

		rb.Consume(len(chunk))
		currentSamples += int64(chunkFrames)
	}

	_ = c.Device.Backend.Drain(c.Device.handle)
	c.finalTick(fm, currentSamples, rb, out)

	return AdvanceNext, nil
}

func (c *Controller) drainOnce(rb *ringbuffer.RingBuffer, pacer *Pacer, bytesPerFrame int) int {
	frames := rb.Len() / bytesPerFrame
	if frames == 0 {
		return 0
	}

	chunk := rb.Peek()
	chunkFrames := min(len(chunk)/bytesPerFrame, frames)
	chunk = chunk[:chunkFrames*bytesPerFrame]

	if err := pacer.WriteAll(chunk, chunkFrames); err != nil {
		return 0
	}

	rb.Consume(len(chunk))

	return chunkFrames
}

// tick polls the keyboard once and, if no command ends the file, writes one
// progress line. The returned bool reports whether the file ended early.
func (c *Controller) tick(fm *hrmp.FileMetadata, currentSamples int64, rb *ringbuffer.RingBuffer, out io.Writer) (Advance, bool) {
	if c.kb != nil {
		if key, ok := c.kb.Poll(); ok {
			switch key {
			case keyboard.KeyQ:
				return AdvanceQuit, true
			case keyboard.KeyEnter:
				return AdvanceNext, true
			case keyboard.KeyBackslash:
				return AdvancePrevious, true
			}
		}
	}

	fmt.Fprint(out, Render(c.Template, c.tickValues(fm, currentSamples, rb))+"\r") //nolint:errcheck

	return AdvanceNext, false
}

func (c *Controller) finalTick(fm *hrmp.FileMetadata, currentSamples int64, rb *ringbuffer.RingBuffer, out io.Writer) {
	fmt.Fprint(out, RenderFinal(c.Template, c.tickValues(fm, currentSamples, rb))) //nolint:errcheck
}

func (c *Controller) tickValues(fm *hrmp.FileMetadata, currentSamples int64, rb *ringbuffer.RingBuffer) Tick {
	percent := 0
	if fm.TotalSamples > 0 {
		percent = int(currentSamples * 100 / fm.TotalSamples)
	}

	return Tick{
		Number:     c.Number,
		Total:      c.Total,
		Basename:   filepath.Base(fm.Path),
		FullPath:   fm.Path,
		Device:     c.Device.Name,
		PercentInt: percent,
		CurrentSec: float64(currentSamples) / float64(max(fm.PCMRate, 1)),
		TotalSec:   fm.Duration,
		Identifier: fmt.Sprintf("%s/%dHz/%dbit", fm.Kind, fm.SampleRate, fm.BitDepth),
		BufferMiB:  float64(rb.Len()) / (1024 * 1024),
		TargetMiB:  float64(rb.Max()) / (1024 * 1024),
	}
}

func clampRing(n int64) int {
	if n < ringMin {
		return ringMin
	}

	if n > ringMax {
		return ringMax
	}

	return int(n)
}

// playDSD reads raw per-channel DSD blocks directly from the file (no
// bitstream decode needed — DSF/DFF payload is already 1-bit DSD) and
// feeds dsd.EncodeDoPPairs/EncodeNativeU32BE.
func (c *Controller) playDSD(fm *hrmp.FileMetadata, pacer *Pacer, out io.Writer) (Advance, error) {
	f, err := os.Open(fm.Path)
	if err != nil {
		return AdvanceNext, fmt.Errorf("playback: opening %s: %w", fm.Path, err)
	}
	defer f.Close()

	if _, err := f.Seek(fm.DSFDataOffset, io.SeekStart); err != nil {
		return AdvanceNext, fmt.Errorf("playback: seeking to DSD payload: %w", err)
	}

	blockSize := int(fm.DSFBlockSize)
	if blockSize <= 0 {
		blockSize = 4096
	}

	format, _ := c.Device.Format()
	dop := format != sink.FormatDSDU32BE

	marker := dsd.MarkerInit

	if dop {
		prefill := dsd.CenterPad(dsd.PrefillFrames(fm.SampleRate), true, &marker)
		if err := pacer.WriteAll(prefill, len(prefill)/8); err != nil {
			return AdvanceNext, err
		}
	}

	remaining := fm.DSFDataBytes
	leftBuf := make([]byte, blockSize)
	rightBuf := make([]byte, blockSize)
	var currentSamples int64

	for remaining >= uint64(2*blockSize) {
		if _, err := io.ReadFull(f, leftBuf); err != nil {
			return AdvanceNext, hrmp.NewError(hrmp.KindIOShortRead, fm.Path, err)
		}

		if _, err := io.ReadFull(f, rightBuf); err != nil {
			return AdvanceNext, hrmp.NewError(hrmp.KindIOShortRead, fm.Path, err)
		}

		remaining -= uint64(2 * blockSize)

		var wire []byte
		if dop {
			wire = dsd.EncodeDoPPairs(leftBuf, rightBuf, &marker)
		} else {
			wire = dsd.EncodeNativeU32BE(leftBuf, rightBuf)
		}

		frames := len(wire) / 8
		if err := pacer.WriteAll(wire, frames); err != nil {
			return AdvanceNext, err
		}

		currentSamples += int64(blockSize) * 8

		rb := mustDummyRB()

		if adv, done := c.tick(fm, currentSamples/(8), rb, out); done {
			return adv, nil
		}
	}

	fadeout := dsd.Fadeout(fm.PCMRate, dop, &marker)
	if len(fadeout) > 0 {
		_ = pacer.WriteAll(fadeout, len(fadeout)/8)
	}

	periodFrames, _ := sink.OpenParams(fm.PCMRate)
	centerPad := dsd.CenterPad(periodFrames, dop, &marker)
	_ = pacer.WriteAll(centerPad, periodFrames)

	postroll := dsd.PostRoll(fm.PCMRate, dop, &marker)
	if len(postroll) > 0 {
		_ = pacer.WriteAll(postroll, len(postroll)/8)
	}

	_ = c.Device.Backend.Drain(c.Device.handle)
	rb := mustDummyRB()
	c.finalTick(fm, currentSamples/8, rb, out)

	return AdvanceNext, nil
}

// playMKV pulls decoded packets from an mkv.Demuxer and paces them
// straight through (Opus/AAC already decode to PCM; raw PCM tracks pass
// through unchanged).
func (c *Controller) playMKV(fm *hrmp.FileMetadata, pacer *Pacer, out io.Writer) (Advance, error) {
	f, err := os.Open(fm.Path)
	if err != nil {
		return AdvanceNext, fmt.Errorf("playback: opening %s: %w", fm.Path, err)
	}
	defer f.Close()

	dem, err := mkv.Open(f)
	if err != nil {
		return AdvanceNext, hrmp.NewError(hrmp.KindDemuxMalformed, fm.Path, err)
	}

	var currentSamples int64

	_, sinkWidth := c.Device.Format()
	srcWidth := fm.BitDepth.BytesPerSample()

	for {
		data, pts, err := dem.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return AdvanceNext, hrmp.NewError(hrmp.KindDemuxMalformed, fm.Path, err)
		}

		if sinkWidth != srcWidth {
			data = pcm.Extract(data, srcWidth, sinkWidth)
		}

		bytesPerFrame := int(fm.Channels) * sinkWidth
		if bytesPerFrame == 0 {
			bytesPerFrame = 4
		}

		frames := len(data) / bytesPerFrame
		if frames == 0 {
			continue
		}

		if err := pacer.WriteAll(data[:frames*bytesPerFrame], frames); err != nil {
			return AdvanceNext, err
		}

		currentSamples = pts * int64(fm.SampleRate) / 1_000_000_000

		rb := mustDummyRB()
		if adv, done := c.tick(fm, currentSamples, rb, out); done {
			return adv, nil
		}
	}

	_ = c.Device.Backend.Drain(c.Device.handle)
	rb := mustDummyRB()
	c.finalTick(fm, currentSamples, rb, out)

	return AdvanceNext, nil
}

// mustDummyRB returns a minimal ring buffer purely to satisfy tickValues'
// Len()/Max() calls for sources (DSD, MKV) that don't route through one;
// %b/%B read as 0.0/min-MiB for those kinds.
func mustDummyRB() *ringbuffer.RingBuffer {
	rb, _ := ringbuffer.New(ringMin, ringMin, ringMin)

	return rb
}
