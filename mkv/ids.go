package mkv

// EBML/Matroska element IDs used by the demuxer. Only the elements needed
// to reach the first audio track and its clusters are listed.
const (
	idEBML            = 0x1A45DFA3
	idSegment         = 0x18538067
	idInfo            = 0x1549A966
	idTimecodeScale   = 0x2AD7B1
	idDuration        = 0x4489
	idTracks          = 0x1654AE6B
	idTrackEntry      = 0xAE
	idTrackNumber     = 0xD7
	idTrackType       = 0x83
	idCodecID         = 0x86
	idCodecPrivate    = 0x63A2
	idAudio           = 0xE1
	idSamplingFreq    = 0xB5
	idChannels        = 0x9F
	idBitDepth        = 0x6264
	idCluster         = 0x1F43B675
	idClusterTimecode = 0xE7
	idSimpleBlock     = 0xA3
	idBlockGroup      = 0xA0
	idBlock           = 0xA1
)

const trackTypeAudio = 2

// CodecID identifies the audio codec carried by the selected track.
type CodecID uint8

// Supported/recognized codecs. Vorbis and FLAC are recognized (so probing
// can report a clear UnsupportedFormat) but not decoded.
const (
	CodecUnknown CodecID = iota
	CodecOpus
	CodecAAC
	CodecPCMInt
	CodecPCMFloat
	CodecVorbis
	CodecFLAC
)

func codecFromID(id string) CodecID {
	switch {
	case id == "A_OPUS":
		return CodecOpus
	case len(id) >= 5 && id[:5] == "A_AAC":
		return CodecAAC
	case id == "A_PCM/INT/LIT":
		return CodecPCMInt
	case id == "A_PCM/FLOAT/IEEE":
		return CodecPCMFloat
	case id == "A_VORBIS":
		return CodecVorbis
	case id == "A_FLAC":
		return CodecFLAC
	default:
		return CodecUnknown
	}
}

// String names the codec, used in UnsupportedFormat error reasons.
func (c CodecID) String() string {
	switch c {
	case CodecOpus:
		return "A_OPUS"
	case CodecAAC:
		return "A_AAC"
	case CodecPCMInt:
		return "A_PCM/INT/LIT"
	case CodecPCMFloat:
		return "A_PCM/FLOAT/IEEE"
	case CodecVorbis:
		return "A_VORBIS"
	case CodecFLAC:
		return "A_FLAC"
	default:
		return "unknown"
	}
}
