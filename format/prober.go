// Package format implements the FormatProber: given a queued file path, it
// identifies the container/codec kind and returns an immutable
// hrmp.FileMetadata describing it, without decoding audio frames.
package format

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mycophonic/hrmp"
	"github.com/mycophonic/hrmp/flac"
	"github.com/mycophonic/hrmp/internal/log"
	"github.com/mycophonic/hrmp/mkv"
	"github.com/mycophonic/hrmp/mp3"
	"github.com/mycophonic/hrmp/wav"
)

// standardRates are always accepted for PCM content.
var standardRates = map[int]bool{
	44100: true, 48000: true, 88200: true, 96000: true,
	176400: true, 192000: true, 352800: true, 384000: true,
}

// experimentalRates are only accepted when Prober.Experimental is set,
// per spec §6's experimental flag.
var experimentalRates = map[int]bool{
	705600: true, 768000: true,
}

// Prober identifies a file's kind and extracts its FileMetadata.
type Prober struct {
	// Experimental widens the accepted PCM sample-rate set, per spec §6.
	// It does NOT admit non-stereo files — see Probe.
	Experimental bool
}

// identifyByExtension maps a lowercased file extension to a FileKind.
func identifyByExtension(path string) hrmp.FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return hrmp.KindWAV
	case ".flac":
		return hrmp.KindFLAC
	case ".mp3":
		return hrmp.KindMP3
	case ".dsf":
		return hrmp.KindDSF
	case ".dff":
		return hrmp.KindDFF
	case ".mkv", ".webm":
		return hrmp.KindMKV
	default:
		return hrmp.KindUnknown
	}
}

// Probe opens path, identifies its kind by extension, and extracts metadata.
// Non-stereo files are always rejected — even with Experimental set, which
// only widens the accepted sample-rate set (spec §9's carry-over: the log
// message differs, the rejection does not).
func (p *Prober) Probe(path string) (*hrmp.FileMetadata, error) {
	kind := identifyByExtension(path)
	if kind == hrmp.KindUnknown {
		return nil, hrmp.NewError(hrmp.KindUnsupportedFormat, fmt.Sprintf("unrecognized extension: %s", path), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("format: opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("format: stat %s: %w", path, err)
	}

	fm, err := p.probeByKind(f, path, kind, info.Size())
	if err != nil {
		return nil, err
	}

	if err := p.validate(fm); err != nil {
		return nil, err
	}

	fm.NormalizePCMRate()

	return fm, nil
}

func (p *Prober) probeByKind(f *os.File, path string, kind hrmp.FileKind, size int64) (*hrmp.FileMetadata, error) {
	switch kind {
	case hrmp.KindWAV:
		return probeWAV(f, path)
	case hrmp.KindFLAC:
		return probeFLAC(f, path)
	case hrmp.KindMP3:
		return probeMP3(f, path)
	case hrmp.KindDSF:
		return probeDSF(f, path, size)
	case hrmp.KindDFF:
		return probeDFF(f, path)
	case hrmp.KindMKV:
		return probeMKV(f, path, size)
	default:
		return nil, hrmp.NewError(hrmp.KindUnsupportedFormat, "unreachable kind", nil)
	}
}

func probeWAV(f *os.File, path string) (*hrmp.FileMetadata, error) {
	pcm, dataSize, err := wav.ProbeFmt(f)
	if err != nil {
		return nil, hrmp.NewError(hrmp.KindUnsupportedFormat, fmt.Sprintf("WAV: %s", path), err)
	}

	bytesPerFrame := int64(pcm.Channels) * int64(pcm.BitDepth.BytesPerSample())

	fm := &hrmp.FileMetadata{
		Kind:       hrmp.KindWAV,
		Path:       path,
		SampleRate: pcm.SampleRate,
		Channels:   pcm.Channels,
		BitDepth:   pcm.BitDepth,
	}

	if bytesPerFrame > 0 {
		fm.TotalSamples = dataSize / bytesPerFrame
	}

	if pcm.SampleRate > 0 {
		fm.Duration = float64(fm.TotalSamples) / float64(pcm.SampleRate)
	}

	return fm, nil
}

func probeFLAC(f *os.File, path string) (*hrmp.FileMetadata, error) {
	pcm, totalSamples, err := flac.ProbeInfo(f)
	if err != nil {
		return nil, hrmp.NewError(hrmp.KindUnsupportedFormat, fmt.Sprintf("FLAC: %s", path), err)
	}

	fm := &hrmp.FileMetadata{
		Kind:         hrmp.KindFLAC,
		Path:         path,
		SampleRate:   pcm.SampleRate,
		Channels:     pcm.Channels,
		BitDepth:     pcm.BitDepth,
		TotalSamples: totalSamples,
	}

	if pcm.SampleRate > 0 {
		fm.Duration = float64(totalSamples) / float64(pcm.SampleRate)
	}

	return fm, nil
}

func probeMP3(f *os.File, path string) (*hrmp.FileMetadata, error) {
	pcm, totalSamples, err := mp3.ProbeInfo(f)
	if err != nil {
		return nil, hrmp.NewError(hrmp.KindUnsupportedFormat, fmt.Sprintf("MP3: %s", path), err)
	}

	fm := &hrmp.FileMetadata{
		Kind:         hrmp.KindMP3,
		Path:         path,
		SampleRate:   pcm.SampleRate,
		Channels:     pcm.Channels,
		BitDepth:     pcm.BitDepth,
		TotalSamples: totalSamples,
	}

	if pcm.SampleRate > 0 {
		fm.Duration = float64(totalSamples) / float64(pcm.SampleRate)
	}

	if _, err := f.Seek(0, 0); err == nil {
		if tags, err := readID3v2(f); err == nil {
			fm.Tags = tagsFromID3(tags)
		}
	}

	return fm, nil
}

func probeMKV(f *os.File, path string, size int64) (*hrmp.FileMetadata, error) {
	info, err := mkv.ProbeFile(f, size)
	if err != nil {
		return nil, hrmp.NewError(hrmp.KindUnsupportedFormat, fmt.Sprintf("MKV: %s", path), err)
	}

	fm := &hrmp.FileMetadata{
		Kind:             hrmp.KindMKV,
		Path:             path,
		SampleRate:       info.SampleRate,
		Channels:         info.Channels,
		BitDepth:         info.BitDepth,
		Duration:         info.Duration,
		MKVCodecID:       info.CodecID,
		MKVCodecPrivate:  info.CodecPrivate,
		MKVTimecodeScale: info.TimecodeScale,
	}

	if fm.SampleRate > 0 {
		fm.TotalSamples = int64(fm.Duration * float64(fm.SampleRate))
	}

	return fm, nil
}

// validate enforces the mandatory stereo-only rule and the sample-rate
// allowlist (spec §4.2, §6, §9).
func (p *Prober) validate(fm *hrmp.FileMetadata) error {
	if fm.Channels != 2 {
		if p.Experimental {
			log.Default().Warn().
				Str("path", fm.Path).
				Uint("channels", fm.Channels).
				Msg("non-stereo file rejected despite experimental mode")
		}

		return hrmp.NewError(hrmp.KindUnsupportedFormat,
			fmt.Sprintf("non-stereo file (%d channels): %s", fm.Channels, fm.Path), nil)
	}

	if fm.DSDMode != hrmp.DSDNone {
		return nil
	}

	if standardRates[fm.SampleRate] {
		return nil
	}

	if p.Experimental && experimentalRates[fm.SampleRate] {
		return nil
	}

	return hrmp.NewError(hrmp.KindUnsupportedFormat,
		fmt.Sprintf("unsupported sample rate %d Hz: %s", fm.SampleRate, fm.Path), nil)
}
