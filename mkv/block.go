package mkv

import (
	"encoding/binary"
	"fmt"
	"math"
)

// clusterWalker extracts packets for a single track from successive
// Cluster elements, tracking the running cluster timecode needed to turn a
// block's relative timecode into an absolute one.
type clusterWalker struct {
	e             *ebmlReader
	trackNumber   uint64
	timecodeScale uint64
}

// nextClusterPackets reads one Cluster element (the reader must be
// positioned at its header) and returns the packets it holds for the
// walker's track, in timeline order.
func (w *clusterWalker) nextClusterPackets() ([]Packet, error) {
	id, size, unknown, err := w.e.readElementHeader()
	if err != nil {
		return nil, err
	}

	if id != idCluster {
		return nil, fmt.Errorf("mkv: expected Cluster, got id 0x%X", id)
	}

	clusterEnd := int64(0)
	hasEnd := !unknown

	if hasEnd {
		clusterEnd = w.e.tell() + int64(size)
	}

	var (
		clusterTC uint64
		packets   []Packet
	)

	for {
		if hasEnd && w.e.tell() >= clusterEnd {
			break
		}

		cid, csz, cunknown, err := w.e.readElementHeader()
		if err != nil {
			return packets, err
		}

		switch cid {
		case idClusterTimecode:
			v, err := w.e.readUint(csz)
			if err != nil {
				return packets, err
			}

			clusterTC = v

		case idSimpleBlock:
			pkts, err := w.readSimpleBlock(csz, clusterTC)
			if err != nil {
				return packets, err
			}

			packets = append(packets, pkts...)

		case idBlockGroup:
			pkts, err := w.readBlockGroup(csz, clusterTC)
			if err != nil {
				return packets, err
			}

			packets = append(packets, pkts...)

		default:
			if cunknown {
				return packets, nil
			}

			if err := w.e.skip(int64(csz)); err != nil {
				return packets, err
			}
		}
	}

	return packets, nil
}

func (w *clusterWalker) readBlockGroup(size uint64, clusterTC uint64) ([]Packet, error) {
	end := w.e.tell() + int64(size)

	var packets []Packet

	for w.e.tell() < end {
		id, csz, unknown, err := w.e.readElementHeader()
		if err != nil {
			return packets, err
		}

		if id == idBlock {
			pkts, err := w.readSimpleBlock(csz, clusterTC)
			if err != nil {
				return packets, err
			}

			packets = append(packets, pkts...)

			continue
		}

		if unknown {
			break
		}

		if err := w.e.skip(int64(csz)); err != nil {
			return packets, err
		}
	}

	return packets, nil
}

// readSimpleBlock parses a SimpleBlock/Block payload: track number VINT,
// a signed 16-bit relative timecode, a flags byte, then one or more laced
// frames.
func (w *clusterWalker) readSimpleBlock(size uint64, clusterTC uint64) ([]Packet, error) {
	blockEnd := w.e.tell() + int64(size)

	track, err := w.e.readVint(false)
	if err != nil {
		return nil, err
	}

	var tcBuf [2]byte
	if err := w.e.readFull(tcBuf[:]); err != nil {
		return nil, err
	}

	relTC := int16(binary.BigEndian.Uint16(tcBuf[:]))

	flags, err := w.e.readU8()
	if err != nil {
		return nil, err
	}

	keyframe := flags&0x80 != 0
	lacing := (flags >> 1) & 0x03

	remaining := int(blockEnd - w.e.tell())

	frames, err := w.readLacedFrames(lacing, remaining)
	if err != nil {
		return nil, err
	}

	if track != w.trackNumber {
		return nil, nil
	}

	absTicks := int64(clusterTC) + int64(relTC)
	scale := int64(w.timecodeScale)

	var pts int64

	switch {
	case scale != 0 && absTicks > math.MaxInt64/scale:
		pts = math.MaxInt64
	case scale != 0 && absTicks < math.MinInt64/scale:
		pts = math.MinInt64
	default:
		pts = absTicks * scale
	}

	packets := make([]Packet, 0, len(frames))
	for _, f := range frames {
		packets = append(packets, Packet{Data: f, PTS: pts, Keyframe: keyframe})
	}

	return packets, nil
}

const (
	laceNone  = 0
	laceXiph  = 1
	laceFixed = 2
	laceEBML  = 3
)

// readLacedFrames decodes lacing 0 (none) and 1 (Xiph); lacing 2 (Fixed)
// and 3 (EBML) are not decoded by this core, per spec.md §4.4 and §9's
// design notes — the lace-count/size bytes are consumed so the reader
// stays aligned for the next block, but no frames are produced.
func (w *clusterWalker) readLacedFrames(lacing byte, remaining int) ([][]byte, error) {
	if lacing == laceNone {
		buf := make([]byte, remaining)
		if err := w.e.readFull(buf); err != nil {
			return nil, err
		}

		return [][]byte{buf}, nil
	}

	countByte, err := w.e.readU8()
	if err != nil {
		return nil, err
	}

	remaining--

	if lacing != laceXiph {
		if err := w.e.skip(int64(remaining)); err != nil {
			return nil, err
		}

		return nil, nil
	}

	frameCount := int(countByte) + 1
	sizes := make([]int, frameCount)
	total := 0

	for i := range frameCount - 1 {
		size := 0

		for {
			b, err := w.e.readU8()
			if err != nil {
				return nil, err
			}

			remaining--
			size += int(b)

			if b != 0xFF {
				break
			}
		}

		sizes[i] = size
		total += size
	}

	sizes[frameCount-1] = remaining - total

	frames := make([][]byte, frameCount)

	for i, sz := range sizes {
		if sz < 0 {
			return nil, fmt.Errorf("mkv: negative laced frame size")
		}

		buf := make([]byte, sz)
		if err := w.e.readFull(buf); err != nil {
			return nil, err
		}

		frames[i] = buf
	}

	return frames, nil
}
