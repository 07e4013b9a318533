package mkv

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mycophonic/hrmp"
)

// ProbedInfo is the subset of a selected audio track's properties the
// format prober needs, without opening a decoder.
type ProbedInfo struct {
	SampleRate    int
	Channels      uint
	BitDepth      hrmp.BitDepth
	Duration      float64
	CodecID       string
	CodecPrivate  []byte
	TimecodeScale uint64
}

// Demuxer walks one Matroska/WebM file's Segment, delivering decoded PCM
// packets for its first audio track.
type Demuxer struct {
	f             *os.File
	audio         AudioInfo
	clusterStart  int64
	walker        *clusterWalker
	pending       packetQueue
	opus          *opusDecoder
	aac           *aacDecoder
	samplesPerSec int
}

// ProbeFile reads just enough of f to identify and describe its first
// audio track, without constructing a decoder.
func ProbeFile(f *os.File, size int64) (ProbedInfo, error) {
	ai, _, err := probeAudioTrack(f)
	if err != nil {
		return ProbedInfo{}, err
	}

	duration, err := estimateDuration(f, ai, size)
	if err != nil {
		duration = 0
	}

	return ProbedInfo{
		SampleRate:    int(ai.SampleRate),
		Channels:      uint(ai.Channels),
		BitDepth:      bitDepthFor(ai),
		Duration:      duration,
		CodecID:       ai.CodecIDStr,
		CodecPrivate:  ai.CodecPrivate,
		TimecodeScale: ai.TimecodeScale,
	}, nil
}

func bitDepthFor(ai AudioInfo) hrmp.BitDepth {
	switch ai.Codec {
	case CodecPCMInt, CodecPCMFloat:
		if ai.BitDepth == 24 {
			return hrmp.Depth24
		}

		if ai.BitDepth == 32 {
			return hrmp.Depth32
		}

		return hrmp.Depth16
	default:
		// Compressed codecs decode to 16-bit PCM for the ring buffer.
		return hrmp.Depth16
	}
}

func probeAudioTrack(f *os.File) (AudioInfo, int64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return AudioInfo{}, 0, fmt.Errorf("mkv: seeking to start: %w", err)
	}

	e, err := newEBMLReader(f)
	if err != nil {
		return AudioInfo{}, 0, err
	}

	segEnd, hasEnd, err := readHeaderAndSegment(e)
	if err != nil {
		return AudioInfo{}, 0, err
	}

	ai, firstCluster, err := parseSegmentMeta(e, segEnd, hasEnd)
	if err != nil {
		return AudioInfo{}, 0, err
	}

	switch ai.Codec {
	case CodecOpus, CodecAAC, CodecPCMInt, CodecPCMFloat:
	default:
		return AudioInfo{}, 0, hrmp.NewError(hrmp.KindUnsupportedFormat,
			fmt.Sprintf("unsupported MKV audio codec %q", ai.CodecIDStr), nil)
	}

	return ai, firstCluster, nil
}

// estimateDuration scans clusters to the end of the file accumulating the
// last seen packet PTS for the selected track; this is a linear scan but
// MKV carries no reliable total-duration field for streamed content.
func estimateDuration(f *os.File, ai AudioInfo, _ int64) (float64, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	e, err := newEBMLReader(f)
	if err != nil {
		return 0, err
	}

	segEnd, hasEnd, err := readHeaderAndSegment(e)
	if err != nil {
		return 0, err
	}

	_, firstCluster, err := parseSegmentMeta(e, segEnd, hasEnd)
	if err != nil {
		return 0, err
	}

	if err := e.seek(firstCluster); err != nil {
		return 0, err
	}

	w := &clusterWalker{e: e, trackNumber: ai.TrackNumber, timecodeScale: ai.TimecodeScale}

	var lastPTS int64

	for {
		pkts, err := w.nextClusterPackets()
		if len(pkts) > 0 {
			lastPTS = pkts[len(pkts)-1].PTS
		}

		if err != nil {
			break
		}

		if hasEnd && e.tell() >= segEnd {
			break
		}
	}

	return float64(lastPTS) / 1e9, nil
}

// Open prepares a Demuxer positioned at the selected audio track's first
// cluster, with a codec decoder constructed from its CodecPrivate.
func Open(f *os.File) (*Demuxer, error) {
	ai, firstCluster, err := probeAudioTrack(f)
	if err != nil {
		return nil, err
	}

	d := &Demuxer{f: f, audio: ai, clusterStart: firstCluster}

	if err := d.resetReaderAt(firstCluster); err != nil {
		return nil, err
	}

	switch ai.Codec {
	case CodecOpus:
		dec, err := newOpusDecoder(ai.CodecPrivate)
		if err != nil {
			return nil, err
		}

		d.opus = dec
		d.samplesPerSec = 48000

	case CodecAAC:
		dec, err := newAACDecoder(ai.CodecPrivate)
		if err != nil {
			return nil, err
		}

		d.aac = dec
		d.samplesPerSec = dec.sampleRate()

	case CodecPCMInt, CodecPCMFloat:
		d.samplesPerSec = int(ai.SampleRate)

	default:
		return nil, hrmp.NewError(hrmp.KindUnsupportedFormat,
			fmt.Sprintf("unsupported MKV audio codec %q", ai.CodecIDStr), nil)
	}

	return d, nil
}

func (d *Demuxer) resetReaderAt(pos int64) error {
	if _, err := d.f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	e, err := newEBMLReader(d.f)
	if err != nil {
		return err
	}

	if err := e.seek(pos); err != nil {
		return err
	}

	d.walker = &clusterWalker{e: e, trackNumber: d.audio.TrackNumber, timecodeScale: d.audio.TimecodeScale}

	return nil
}

// Info returns the selected track's audio properties.
func (d *Demuxer) Info() AudioInfo { return d.audio }

// ReadPacket returns the next decoded PCM chunk, already interleaved
// 16-bit little-endian for Opus and AAC, container-native for raw PCM,
// along with its presentation timestamp in nanoseconds.
func (d *Demuxer) ReadPacket() ([]byte, int64, error) {
	for d.pending.empty() {
		pkts, err := d.walker.nextClusterPackets()
		for _, p := range pkts {
			d.pending.push(p)
		}

		if len(pkts) == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, 0, err
			}

			return nil, 0, io.EOF
		}
	}

	pkt, _ := d.pending.pop()

	switch d.audio.Codec {
	case CodecOpus:
		pcm, err := d.opus.decode(pkt.Data)
		if err != nil {
			return nil, 0, err
		}

		return pcm, pkt.PTS, nil

	case CodecAAC:
		pcm, err := d.aac.decode(pkt.Data)
		if err != nil {
			return nil, 0, err
		}

		return pcm, pkt.PTS, nil

	default:
		return pkt.Data, pkt.PTS, nil
	}
}

// Seek rewinds to the first cluster and discards packets until one whose
// PTS is at or after targetNanos, matching the reopen-and-discard seek
// semantics used for the other container formats.
func (d *Demuxer) Seek(targetNanos int64) error {
	if err := d.resetReaderAt(d.clusterStart); err != nil {
		return err
	}

	d.pending = packetQueue{}

	if d.opus != nil {
		dec, err := newOpusDecoder(d.audio.CodecPrivate)
		if err != nil {
			return err
		}

		d.opus = dec
	}

	for {
		pkts, err := d.walker.nextClusterPackets()
		for _, p := range pkts {
			if p.PTS >= targetNanos {
				d.pending.push(p)
			}
		}

		if err != nil || len(pkts) == 0 {
			break
		}

		if !d.pending.empty() {
			break
		}
	}

	return nil
}
