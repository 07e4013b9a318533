package playback

import (
	"errors"
	"fmt"

	"github.com/mycophonic/hrmp"
	"github.com/mycophonic/hrmp/sink"
)

// Pacer writes interleaved PCM/DoP/DSD bytes to a Device, recovering from
// recoverable sink underruns by preparing the device and retrying the
// remaining bytes of the current block, per spec.md §7.
type Pacer struct {
	Device *Device
}

// WriteAll writes data (frames worth of already-packed bytes) to the
// device, retrying once after an underrun. A second consecutive underrun
// is reported as KindSinkFatal: the caller ends the file with no drain.
func (p *Pacer) WriteAll(data []byte, frames int) error {
	bytesPerFrame := 0
	if frames > 0 {
		bytesPerFrame = len(data) / frames
	}

	remaining := data
	remainingFrames := frames
	retried := false

	for remainingFrames > 0 {
		n, err := p.Device.Backend.WriteInterleaved(p.Device.handle, remaining, remainingFrames)
		if err != nil {
			if errors.Is(err, sink.ErrUnderrun) {
				if retried {
					return hrmp.NewError(hrmp.KindSinkFatal, "repeated underrun", err)
				}

				retried = true

				if perr := p.Device.Backend.Prepare(p.Device.handle); perr != nil {
					return hrmp.NewError(hrmp.KindSinkFatal, "prepare after underrun failed", perr)
				}

				continue
			}

			return hrmp.NewError(hrmp.KindSinkFatal, "write failed", err)
		}

		retried = false

		if n <= 0 {
			return hrmp.NewError(hrmp.KindSinkFatal, fmt.Sprintf("write returned %d frames", n), nil)
		}

		consumed := n * bytesPerFrame
		remaining = remaining[consumed:]
		remainingFrames -= n
	}

	return nil
}
