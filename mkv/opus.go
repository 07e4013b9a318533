package mkv

import (
	"encoding/binary"
	"fmt"

	"github.com/thesyncim/gopus"
	"github.com/thesyncim/gopus/multistream"
)

// opusHead is the parsed content of an OpusHead codec-private block, per
// RFC 7845 §5.1.
type opusHead struct {
	version        uint8
	channels       uint8
	preSkip        uint16
	inputSampleHz  uint32
	outputGain     int16
	mappingFamily  uint8
	streamCount    uint8
	coupledCount   uint8
	channelMapping []uint8
}

func parseOpusHead(b []byte) (opusHead, error) {
	var h opusHead

	if len(b) < 19 || string(b[:8]) != "OpusHead" {
		return h, fmt.Errorf("mkv: codec private is not an OpusHead block")
	}

	h.version = b[8]
	h.channels = b[9]
	h.preSkip = binary.LittleEndian.Uint16(b[10:12])
	h.inputSampleHz = binary.LittleEndian.Uint32(b[12:16])
	h.outputGain = int16(binary.LittleEndian.Uint16(b[16:18]))
	h.mappingFamily = b[18]

	if h.mappingFamily == 0 {
		return h, nil
	}

	if len(b) < 21+int(h.channels) {
		return h, fmt.Errorf("mkv: truncated OpusHead mapping table")
	}

	h.streamCount = b[19]
	h.coupledCount = b[20]
	h.channelMapping = append([]byte(nil), b[21:21+int(h.channels)]...)

	return h, nil
}

// opusDecoder wraps either gopus's simple single-stream decoder (mapping
// family 0) or its multistream counterpart (mapping family > 0), dropping
// the codec's pre-skip priming samples from the first decoded packets.
type opusDecoder struct {
	head     opusHead
	simple   *gopus.Decoder
	ms       *multistream.Decoder
	skipLeft int
}

const opusFrameSizeMax = 5760 // 120ms at 48kHz, the largest Opus frame.

func newOpusDecoder(codecPrivate []byte) (*opusDecoder, error) {
	head, err := parseOpusHead(codecPrivate)
	if err != nil {
		return nil, err
	}

	d := &opusDecoder{head: head, skipLeft: int(head.preSkip)}

	if head.mappingFamily == 0 {
		channels := int(head.channels)
		if channels != 1 && channels != 2 {
			return nil, fmt.Errorf("mkv: mapping family 0 requires mono or stereo, got %d channels", channels)
		}

		d.simple = gopus.NewDecoder(48000, channels)

		return d, nil
	}

	dec, err := multistream.NewDecoder(48000, int(head.channels), int(head.streamCount), int(head.coupledCount), head.channelMapping)
	if err != nil {
		return nil, fmt.Errorf("mkv: creating multistream opus decoder: %w", err)
	}

	d.ms = dec

	return d, nil
}

// decode returns interleaved signed 16-bit little-endian PCM at 48kHz,
// matching bitDepthFor's Depth16 declaration for Opus tracks, with any
// remaining pre-skip samples trimmed from the front of the stream.
func (d *opusDecoder) decode(packet []byte) ([]byte, error) {
	var pcm []int16

	if d.simple != nil {
		buf := make([]int16, opusFrameSizeMax*int(d.head.channels))

		n, err := d.simple.DecodeInt16(packet, buf)
		if err != nil {
			return nil, fmt.Errorf("mkv: decoding opus packet: %w", err)
		}

		pcm = buf[:n*int(d.head.channels)]
	} else {
		out, err := d.ms.DecodeToInt16(packet, opusFrameSizeMax)
		if err != nil {
			return nil, fmt.Errorf("mkv: decoding multistream opus packet: %w", err)
		}

		pcm = out
	}

	channels := int(d.head.channels)

	if d.skipLeft > 0 {
		frames := len(pcm) / channels
		drop := min(d.skipLeft, frames)
		d.skipLeft -= drop
		pcm = pcm[drop*channels:]
	}

	out := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}

	return out, nil
}
