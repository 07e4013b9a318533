package mkv

import (
	"fmt"

	aac "github.com/llehouerou/go-aac"
)

// aacDecoder wraps the AudioSpecificConfig-driven AAC decoder. The track's
// CodecPrivate bytes are exactly an AudioSpecificConfig (ISO 14496-3), the
// same blob the decoder's Init2 method expects.
type aacDecoder struct {
	dec      *aac.Decoder
	channels int
}

func newAACDecoder(codecPrivate []byte) (*aacDecoder, error) {
	if len(codecPrivate) == 0 {
		return nil, fmt.Errorf("mkv: AAC track has no CodecPrivate (AudioSpecificConfig)")
	}

	dec := aac.NewDecoder()

	if err := dec.Init2(codecPrivate); err != nil {
		return nil, fmt.Errorf("mkv: initializing AAC decoder from AudioSpecificConfig: %w", err)
	}

	return &aacDecoder{dec: dec, channels: dec.Channels()}, nil
}

// decode returns interleaved little-endian signed 16-bit PCM for one AAC
// access unit (one MKV block's payload after de-lacing).
func (d *aacDecoder) decode(packet []byte) ([]byte, error) {
	pcm, err := d.dec.Decode(packet)
	if err != nil {
		return nil, fmt.Errorf("mkv: decoding AAC frame: %w", err)
	}

	return pcm, nil
}

func (d *aacDecoder) sampleRate() int   { return d.dec.SampleRate() }
func (d *aacDecoder) channelCount() int { return d.channels }
