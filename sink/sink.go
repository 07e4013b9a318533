package sink

import "errors"

// ErrUnderrun marks a recoverable write failure: the caller should Prepare
// the device and retry the remaining frames of the current block.
var ErrUnderrun = errors.New("sink: underrun")

// Handle identifies an opened device instance.
type Handle any

// Mixer abstracts the device's hardware volume control, when present.
type Mixer interface {
	GetVolume() (value, min, max int, err error)
	SetVolumeAll(value int) error
	HasVolume() bool
	Close() error
}

// Sink is the abstract PCM output device the playback engine drives. A
// concrete backend (sink/oto is the default) implements this against a
// real audio API.
type Sink interface {
	// Open configures the device for the given format/rate/channel count,
	// negotiating period/buffer sizes per spec.md §4.3's bounds.
	Open(deviceName string, format FormatCode, rate, channels int) (Handle, error)

	// WriteInterleaved writes frames of already-packed interleaved bytes.
	// It returns ErrUnderrun (wrapped) on a recoverable failure; the caller
	// calls Prepare and retries the remaining bytes.
	WriteInterleaved(h Handle, data []byte, frames int) (framesWritten int, err error)

	Prepare(h Handle) error
	Drop(h Handle) error
	Drain(h Handle) error
	Close(h Handle) error

	// Probe trial-opens the device for format/rate without committing to
	// playback, used to populate Capabilities.
	Probe(deviceName string, format FormatCode, rate int) bool

	// OpenMixer returns nil, false when the device has no volume control.
	OpenMixer(h Handle) (Mixer, bool)
}
