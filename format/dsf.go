package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mycophonic/hrmp"
)

// ErrNotDSF is returned when a file lacks the "DSD " magic.
var ErrNotDSF = errors.New("format: not a DSF file")

// dsfDataOffset is fixed: 28-byte DSD chunk + 52-byte fmt chunk + 12-byte
// data chunk header, per spec §4.2's layout.
const dsfDataOffset = 92

// probeDSF reads a DSF header (magic, size fields, fmt chunk) and the ID3v2
// tag at the file's metadata offset, grounded on the original implementation's
// parse_dsf_tags_into_metadata / fmt-chunk reader.
func probeDSF(f *os.File, path string, size int64) (*hrmp.FileMetadata, error) {
	var dsdChunk [28]byte
	if _, err := io.ReadFull(f, dsdChunk[:]); err != nil {
		return nil, fmt.Errorf("format: reading DSF header: %w", err)
	}

	if string(dsdChunk[0:4]) != "DSD " {
		return nil, ErrNotDSF
	}

	metadataOffset := binary.LittleEndian.Uint64(dsdChunk[20:28])

	var fmtChunk [52]byte
	if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
		return nil, fmt.Errorf("format: reading DSF fmt chunk: %w", err)
	}

	if string(fmtChunk[0:4]) != "fmt " {
		return nil, fmt.Errorf("format: DSF missing fmt chunk")
	}

	// Layout after the 12-byte "fmt "+size header: version, format id,
	// channel type, channel num, sample rate, bits/sample, sample count,
	// block size per channel, reserved.
	channelNum := binary.LittleEndian.Uint32(fmtChunk[24:28])
	sampleRate := binary.LittleEndian.Uint32(fmtChunk[28:32])
	sampleCount := binary.LittleEndian.Uint64(fmtChunk[36:44])
	blockSize := binary.LittleEndian.Uint32(fmtChunk[44:48])

	var dataChunk [12]byte
	if _, err := io.ReadFull(f, dataChunk[:]); err != nil {
		return nil, fmt.Errorf("format: reading DSF data chunk: %w", err)
	}

	if string(dataChunk[0:4]) != "data" {
		return nil, fmt.Errorf("format: DSF missing data chunk")
	}

	dataSize := binary.LittleEndian.Uint64(dataChunk[4:12])

	fm := &hrmp.FileMetadata{
		Kind:          hrmp.KindDSF,
		Path:          path,
		SampleRate:    int(sampleRate),
		Channels:      uint(channelNum),
		BitDepth:      hrmp.DepthDSD,
		TotalSamples:  int64(sampleCount), //nolint:gosec // sample counts fit int64 for any real file.
		DSDMode:       hrmp.DSDNative,
		DSFBlockSize:  blockSize,
		DSFDataBytes:  dataSize,
		DSFDataOffset: dsfDataOffset,
		DSFMetaOffset: metadataOffset,
	}

	if sampleRate > 0 {
		fm.Duration = float64(sampleCount) / float64(sampleRate)
	}

	if metadataOffset != 0 && int64(metadataOffset) < size {
		if _, err := f.Seek(int64(metadataOffset), io.SeekStart); err == nil {
			if tags, err := readID3v2(f); err == nil {
				fm.Tags = tagsFromID3(tags)
			}
		}
	}

	return fm, nil
}

func tagsFromID3(t id3Tags) hrmp.Tags {
	return hrmp.Tags{
		Title:  t.title,
		Artist: t.artist,
		Album:  t.album,
		Genre:  t.genre,
		Date:   t.date,
		Track:  t.track,
		Disc:   t.disc,
	}
}
