package playback

import (
	"fmt"

	"github.com/mycophonic/hrmp"
	"github.com/mycophonic/hrmp/sink"
)

// Device owns one opened sink handle plus its negotiated format, embedded
// in Controller rather than kept as a process-wide singleton (per the
// Open-Question redesign: each Controller instance owns its own device
// lifecycle, so two controllers never fight over global mixer state).
type Device struct {
	Backend sink.Sink
	Name    string

	handle       sink.Handle
	format       sink.FormatCode
	bytesPerUnit int
	rate         int
	caps         sink.Capabilities
	mixer        sink.Mixer
	hasMixer     bool
}

// Open probes the backend's capabilities on every call and configures it for
// fm's bit depth/DSD mode, per spec.md §4.3. For DSD files it then sets
// fm.DSDMode to DoP or native to match the chosen wire format and
// renormalizes fm.PCMRate.
func (d *Device) Open(fm *hrmp.FileMetadata, dop bool) error {
	d.caps = sink.Probe(d.Backend, d.Name, fm.PCMRate)

	format, bytesPerUnit, err := sink.Configure(d.caps, fm.BitDepth, fm.DSDMode, dop)
	if err != nil {
		return hrmp.NewError(hrmp.KindSinkOpenFailed, fmt.Sprintf("%s: %s", d.Name, fm.Path), err)
	}

	if fm.DSDMode != hrmp.DSDNone {
		fm.DSDMode = hrmp.DSDNative
		if format == sink.FormatS32LE {
			fm.DSDMode = hrmp.DSDOverPCM
		}

		fm.NormalizePCMRate()
	}

	handle, err := d.Backend.Open(d.Name, format, fm.PCMRate, 2)
	if err != nil {
		return hrmp.NewError(hrmp.KindSinkOpenFailed, fmt.Sprintf("%s: %s", d.Name, fm.Path), err)
	}

	d.handle = handle
	d.format = format
	d.bytesPerUnit = bytesPerUnit
	d.rate = fm.PCMRate

	if mx, ok := d.Backend.OpenMixer(handle); ok {
		d.mixer = mx
		d.hasMixer = true
	}

	return nil
}

// Format returns the negotiated wire format and container byte width.
func (d *Device) Format() (sink.FormatCode, int) { return d.format, d.bytesPerUnit }

// UpdateVolume sets the device's hardware volume (0-100) if it has one,
// through the mixer handle Open opened. It does not open or close a mixer
// itself; that handle stays open until Close.
func (d *Device) UpdateVolume(percent int) error {
	if !d.hasMixer || d.mixer == nil {
		return nil
	}

	_, lo, hi, err := d.mixer.GetVolume()
	if err != nil {
		return fmt.Errorf("device: reading volume range: %w", err)
	}

	value := lo + (hi-lo)*percent/100

	return d.mixer.SetVolumeAll(value) //nolint:wrapcheck
}

// Close closes the mixer if any, then closes the device handle. It does not
// drain; the controller drains on a normal end of file before Close runs.
func (d *Device) Close() error {
	if d.hasMixer && d.mixer != nil {
		_ = d.mixer.Close()
	}

	if d.handle == nil {
		return nil
	}

	return d.Backend.Close(d.handle) //nolint:wrapcheck
}
