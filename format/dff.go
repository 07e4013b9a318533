package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mycophonic/hrmp"
)

// ErrNotDFF is returned when a file lacks the FRM8/DSD form signature.
var ErrNotDFF = errors.New("format: not a DFF file")

// ErrDSTUnsupported is returned when a DFF's audio is DST-compressed.
var ErrDSTUnsupported = errors.New("format: DST-compressed DFF is not supported")

// probeDFF walks the DFF's FRM8 sub-chunks looking for PROP (sample rate/
// channel count) and DSD (audio byte length), rejecting DST-compressed
// payloads, grounded on the original implementation's playback_dff chunk walk.
func probeDFF(f *os.File, path string) (*hrmp.FileMetadata, error) {
	var frm8 [12]byte
	if _, err := io.ReadFull(f, frm8[:]); err != nil {
		return nil, fmt.Errorf("format: reading DFF header: %w", err)
	}

	if string(frm8[0:4]) != "FRM8" || string(frm8[8:12]) != "DSD " {
		return nil, ErrNotDFF
	}

	fm := &hrmp.FileMetadata{
		Kind:     hrmp.KindDFF,
		Path:     path,
		BitDepth: hrmp.DepthDSD,
		DSDMode:  hrmp.DSDNative,
		Channels: 2,
	}

	for {
		var idSize [12]byte
		if _, err := io.ReadFull(f, idSize[:]); err != nil {
			break
		}

		id := string(idSize[0:4])
		chunkSize := int64(binary.BigEndian.Uint64(idSize[4:12]))

		switch id {
		case "PROP":
			if err := parseDFFProp(f, chunkSize, fm); err != nil {
				return nil, err
			}

		case "DSD ":
			fm.DSFDataBytes = uint64(chunkSize) //nolint:gosec // chunk sizes are non-negative on disk.

			pos, err := f.Seek(0, io.SeekCurrent)
			if err == nil {
				fm.DSFDataOffset = pos
			}

			if fm.SampleRate > 0 && fm.Channels > 0 {
				bytesPerChannelPerSec := float64(fm.SampleRate) / 8
				if bytesPerChannelPerSec > 0 {
					fm.Duration = float64(chunkSize) / (bytesPerChannelPerSec * float64(fm.Channels))
					fm.TotalSamples = int64(fm.Duration * float64(fm.SampleRate))
				}
			}

			return fm, nil

		case "DST ":
			return nil, fmt.Errorf("%w (CMPR='DST ')", ErrDSTUnsupported)

		default:
			if _, err := f.Seek(chunkSize+chunkSize%2, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("format: skipping DFF chunk %q: %w", id, err)
			}
		}
	}

	return nil, fmt.Errorf("format: DFF file has no DSD audio chunk")
}

// parseDFFProp reads the PROP chunk's nested sub-chunks for FS (sample
// rate) and CHNL (channel count), skipping everything else.
func parseDFFProp(f *os.File, size int64, fm *hrmp.FileMetadata) error {
	var propType [4]byte
	if _, err := io.ReadFull(f, propType[:]); err != nil {
		return fmt.Errorf("format: reading PROP type: %w", err)
	}

	remaining := size - 4

	for remaining >= 12 {
		var idSize [12]byte
		if _, err := io.ReadFull(f, idSize[:]); err != nil {
			break
		}

		remaining -= 12

		id := string(idSize[0:4])
		chunkSize := int64(binary.BigEndian.Uint64(idSize[4:12]))

		switch id {
		case "FS  ":
			var rate [4]byte
			if _, err := io.ReadFull(f, rate[:]); err != nil {
				return fmt.Errorf("format: reading DFF sample rate: %w", err)
			}

			fm.SampleRate = int(binary.BigEndian.Uint32(rate[:]))

			if err := skipRemainder(f, chunkSize-4); err != nil {
				return err
			}

		case "CHNL":
			var numCh [2]byte
			if _, err := io.ReadFull(f, numCh[:]); err != nil {
				return fmt.Errorf("format: reading DFF channel count: %w", err)
			}

			fm.Channels = uint(binary.BigEndian.Uint16(numCh[:]))

			if err := skipRemainder(f, chunkSize-2); err != nil {
				return err
			}

		default:
			if err := skipRemainder(f, chunkSize); err != nil {
				return err
			}
		}

		if chunkSize%2 == 1 {
			if _, err := f.Seek(1, io.SeekCurrent); err != nil {
				return fmt.Errorf("format: skipping DFF PROP pad byte: %w", err)
			}
		}

		remaining -= chunkSize
	}

	if remaining > 0 {
		if _, err := f.Seek(remaining, io.SeekCurrent); err != nil {
			return fmt.Errorf("format: skipping DFF PROP tail: %w", err)
		}
	}

	return nil
}

func skipRemainder(f *os.File, n int64) error {
	if n <= 0 {
		return nil
	}

	if _, err := f.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("format: skipping chunk remainder: %w", err)
	}

	return nil
}
