// Package hrmp implements the playback engine of a high-resolution audio
// player: per-file decoding/format-conversion, DSD-over-PCM framing, the
// read-ahead ring buffer, and the interactive playback controller. Bitstream
// decoding for FLAC/WAV/MP3 and the PCM output device itself are external
// collaborators whose interfaces this package consumes.
package hrmp

import (
	"errors"
	"fmt"
)

// BitDepth represents the bit depth of PCM audio samples. 1 denotes DSD.
type BitDepth uint

// Standard PCM bit depths, plus the 1-bit DSD "depth".
const (
	DepthDSD BitDepth = 1
	Depth16  BitDepth = 16
	Depth24  BitDepth = 24
	Depth32  BitDepth = 32
)

// BytesPerSample returns the number of bytes needed to store one sample.
func (d BitDepth) BytesPerSample() int {
	switch d {
	case Depth16:
		return 2
	case Depth24:
		return 3
	case Depth32:
		return 4
	case DepthDSD:
		return 1
	default:
		panic(fmt.Sprintf("hrmp: BytesPerSample called with unsupported bit depth %d", d))
	}
}

var errUnsupportedBitDepth = errors.New("unsupported bit depth")

// ToBitDepth converts a numeric bit depth to the BitDepth type.
func ToBitDepth(bps uint8) (BitDepth, error) {
	switch BitDepth(bps) {
	case Depth16, Depth24, Depth32, DepthDSD:
		return BitDepth(bps), nil
	default:
		return 0, fmt.Errorf("%d-bit: %w", bps, errUnsupportedBitDepth)
	}
}

// PCMFormat describes the format of raw PCM audio data as produced by a
// bitstream decoder, prior to sink-side containerization.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// FileKind identifies the container/codec family of a queued file.
type FileKind uint8

// Supported file kinds.
const (
	KindUnknown FileKind = iota
	KindWAV
	KindFLAC
	KindMP3
	KindDSF
	KindDFF
	KindMKV
)

// String returns the human-readable name of the file kind.
func (k FileKind) String() string {
	switch k {
	case KindWAV:
		return "WAV"
	case KindFLAC:
		return "FLAC"
	case KindMP3:
		return "MP3"
	case KindDSF:
		return "DSF"
	case KindDFF:
		return "DFF"
	case KindMKV:
		return "MKV"
	default:
		return "unknown"
	}
}

// DSDMode selects how 1-bit DSD samples are encapsulated on the wire.
type DSDMode uint8

const (
	// DSDNone means the file is not DSD.
	DSDNone DSDMode = iota
	// DSDNative carries DSD bits packed straight into DSD_U32_BE frames.
	DSDNative
	// DSDOverPCM (DoP) carries DSD bits inside 24-of-32-bit PCM frames.
	DSDOverPCM
)

// Tags holds the canonical metadata fields extracted from a file.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Genre  string
	Date   string
	Track  string
	Disc   string
}

// FileMetadata is the immutable (post-probe) description of one queued file.
// It is created once by the format prober; for DSD files playback.Device.Open
// sets DSDMode and PCMRate once more after the sink's wire format is chosen.
type FileMetadata struct {
	Kind FileKind
	Path string

	SampleRate int // Hz; for DSD this is the raw 1-bit rate.
	PCMRate    int // wire rate after DoP/native DSD division, or == SampleRate for PCM.
	Channels   uint
	BitDepth   BitDepth // 1 for DSD.

	TotalSamples int64 // per channel.
	Duration     float64

	DSDMode DSDMode

	// DSF-specific.
	DSFBlockSize  uint32
	DSFDataBytes  uint64
	DSFDataOffset int64
	DSFMetaOffset uint64

	// MKV-specific.
	MKVCodecID       string
	MKVCodecPrivate  []byte
	MKVTimecodeScale uint64

	Tags Tags
}

// NormalizePCMRate sets PCMRate from SampleRate and DSDMode, per §4.3: native
// DSD divides by 32, DoP divides by 16; plain PCM is unchanged.
func (fm *FileMetadata) NormalizePCMRate() {
	switch fm.DSDMode {
	case DSDNative:
		fm.PCMRate = fm.SampleRate / 32
	case DSDOverPCM:
		fm.PCMRate = fm.SampleRate / 16
	default:
		fm.PCMRate = fm.SampleRate
	}
}
