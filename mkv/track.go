package mkv

import (
	"errors"
	"fmt"
)

// AudioInfo describes the selected audio track, gathered while walking the
// Segment's Info and Tracks elements.
type AudioInfo struct {
	TrackNumber   uint64
	Codec         CodecID
	CodecIDStr    string
	CodecPrivate  []byte
	SampleRate    float64
	Channels      uint8
	BitDepth      uint8
	TimecodeScale uint64
}

var errNoAudioTrack = errors.New("mkv: no audio track found")

// readHeaderAndSegment consumes the EBML header and locates the Segment
// element, leaving the reader positioned at the Segment's first child.
func readHeaderAndSegment(e *ebmlReader) (segmentEnd int64, hasEnd bool, err error) {
	id, size, unknown, err := e.readElementHeader()
	if err != nil {
		return 0, false, err
	}

	if id != idEBML {
		return 0, false, fmt.Errorf("mkv: expected EBML header, got id 0x%X", id)
	}

	if unknown {
		return 0, false, fmt.Errorf("mkv: EBML header has unknown size")
	}

	if err := e.skip(int64(size)); err != nil {
		return 0, false, err
	}

	id, size, unknown, err = e.readElementHeader()
	if err != nil {
		return 0, false, err
	}

	if id != idSegment {
		return 0, false, fmt.Errorf("mkv: expected Segment, got id 0x%X", id)
	}

	if unknown {
		return 0, false, nil
	}

	return e.tell() + int64(size), true, nil
}

// parseSegmentMeta walks Segment children until Info and Tracks have both
// been seen (or the segment ends), selecting the first audio track.
func parseSegmentMeta(e *ebmlReader, segmentEnd int64, hasSegmentEnd bool) (AudioInfo, int64, error) {
	var (
		ai                   AudioInfo
		timecodeScale        = uint64(1000000) // default 1ms, per spec §4.2's MKV notes.
		gotInfo, gotTracks   bool
		firstClusterOffset   int64
		sawFirstClusterEntry bool
	)

	for !(gotInfo && gotTracks) {
		if hasSegmentEnd && e.tell() >= segmentEnd {
			break
		}

		hdrStart := e.tell()

		id, size, unknown, err := e.readElementHeader()
		if err != nil {
			return ai, 0, err
		}

		elemStart := e.tell()

		elemEnd := int64(0)
		hasElemEnd := !unknown

		if hasElemEnd {
			elemEnd = elemStart + int64(size)
		}

		switch id {
		case idInfo:
			scale, err := parseInfo(e, elemEnd, hasElemEnd)
			if err != nil {
				return ai, 0, err
			}

			timecodeScale = scale
			gotInfo = true

		case idTracks:
			found, err := parseTracks(e, elemEnd, hasElemEnd)
			if err != nil {
				return ai, 0, err
			}

			if found != nil {
				ai = *found
			}

			gotTracks = true

		case idCluster:
			// Clusters before Tracks happen in streamed files; remember
			// the first one so the caller can rewind to it.
			if !sawFirstClusterEntry {
				firstClusterOffset = hdrStart
				sawFirstClusterEntry = true
			}

			if !hasElemEnd {
				break
			}

			if err := e.skip(elemEnd - e.tell()); err != nil {
				return ai, 0, err
			}

		default:
			if !hasElemEnd {
				break
			}

			if err := e.skip(elemEnd - e.tell()); err != nil {
				return ai, 0, err
			}
		}
	}

	if ai.TrackNumber == 0 {
		return ai, 0, errNoAudioTrack
	}

	ai.TimecodeScale = timecodeScale

	if !sawFirstClusterEntry {
		firstClusterOffset = e.tell()
	}

	return ai, firstClusterOffset, nil
}

func parseInfo(e *ebmlReader, elemEnd int64, hasElemEnd bool) (uint64, error) {
	scale := uint64(1000000)

	for {
		if hasElemEnd && e.tell() >= elemEnd {
			break
		}

		id, size, unknown, err := e.readElementHeader()
		if err != nil {
			return scale, err
		}

		if id == idTimecodeScale {
			v, err := e.readUint(size)
			if err != nil {
				return scale, err
			}

			scale = v

			continue
		}

		if unknown {
			break
		}

		if err := e.skip(int64(size)); err != nil {
			return scale, err
		}
	}

	return scale, nil
}

//nolint:gocyclo,cyclop // direct translation of a flat element-dispatch loop.
func parseTracks(e *ebmlReader, elemEnd int64, hasElemEnd bool) (*AudioInfo, error) {
	var selected *AudioInfo

	for {
		if hasElemEnd && e.tell() >= elemEnd {
			break
		}

		id, size, unknown, err := e.readElementHeader()
		if err != nil {
			return selected, err
		}

		if id != idTrackEntry {
			if unknown {
				break
			}

			if err := e.skip(int64(size)); err != nil {
				return selected, err
			}

			continue
		}

		entryEnd := e.tell() + int64(size)

		entry, err := parseTrackEntry(e, entryEnd, !unknown)
		if err != nil {
			return selected, err
		}

		if entry.TrackNumber != 0 && selected == nil {
			selected = &entry
		}
	}

	return selected, nil
}

type rawTrackEntry struct {
	AudioInfo

	trackType  int
	sampling   float64
	channels   uint64
	bitdepth   uint64
}

func parseTrackEntry(e *ebmlReader, entryEnd int64, hasEntryEnd bool) (AudioInfo, error) {
	var raw rawTrackEntry

	for {
		if hasEntryEnd && e.tell() >= entryEnd {
			break
		}

		cid, csz, unknown, err := e.readElementHeader()
		if err != nil {
			return AudioInfo{}, err
		}

		switch cid {
		case idTrackNumber:
			v, err := e.readUint(csz)
			if err != nil {
				return AudioInfo{}, err
			}

			raw.TrackNumber = v

		case idTrackType:
			v, err := e.readUint(csz)
			if err != nil {
				return AudioInfo{}, err
			}

			raw.trackType = int(v)

		case idCodecID:
			s, err := e.readString(csz)
			if err != nil {
				return AudioInfo{}, err
			}

			raw.CodecIDStr = s

		case idCodecPrivate:
			b, err := e.readBinary(csz)
			if err != nil {
				return AudioInfo{}, err
			}

			raw.CodecPrivate = b

		case idAudio:
			if err := parseTrackAudio(e, &raw, csz, unknown); err != nil {
				return AudioInfo{}, err
			}

		default:
			if unknown {
				return AudioInfo{}, nil
			}

			if err := e.skip(int64(csz)); err != nil {
				return AudioInfo{}, err
			}
		}
	}

	if raw.trackType != trackTypeAudio || raw.TrackNumber == 0 {
		return AudioInfo{}, nil
	}

	raw.Codec = codecFromID(raw.CodecIDStr)

	switch raw.Codec {
	case CodecPCMInt, CodecPCMFloat:
		raw.SampleRate = raw.sampling
		raw.Channels = clampU8(raw.channels)
		raw.BitDepth = clampU8(raw.bitdepth)
	case CodecOpus, CodecAAC:
		raw.SampleRate = raw.sampling
		raw.Channels = clampU8(raw.channels)
	default:
		raw.SampleRate = raw.sampling
		raw.Channels = clampU8(raw.channels)
	}

	return raw.AudioInfo, nil
}

func parseTrackAudio(e *ebmlReader, raw *rawTrackEntry, size uint64, unknown bool) error {
	audioEnd := int64(0)
	hasEnd := !unknown

	if hasEnd {
		audioEnd = e.tell() + int64(size)
	}

	for {
		if hasEnd && e.tell() >= audioEnd {
			break
		}

		aid, asz, aunknown, err := e.readElementHeader()
		if err != nil {
			return err
		}

		switch aid {
		case idSamplingFreq:
			f, err := e.readFloat(asz)
			if err != nil {
				return err
			}

			raw.sampling = f

		case idChannels:
			v, err := e.readUint(asz)
			if err != nil {
				return err
			}

			raw.channels = v

		case idBitDepth:
			v, err := e.readUint(asz)
			if err != nil {
				return err
			}

			raw.bitdepth = v

		default:
			if aunknown {
				return nil
			}

			if err := e.skip(int64(asz)); err != nil {
				return err
			}
		}
	}

	return nil
}

func clampU8(v uint64) uint8 {
	if v > 255 {
		return 255
	}

	return uint8(v)
}
