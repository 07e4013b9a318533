// Package sink defines the abstract PCM output device interface the
// playback engine drives, the device capability bitmap, and the format
// selection logic that picks the best supported wire format for a file.
package sink

// FormatCode names one hardware PCM sample format, mirroring the sink
// library's own format enumeration.
type FormatCode uint8

// Supported sink formats. Only the ones the priority table in Configure can
// select are named, and Capabilities has exactly one bit for each of them.
const (
	FormatUnknown FormatCode = iota
	FormatS16LE
	FormatS24_3LE //nolint:stylecheck // matches the sink's own format name
	FormatS32LE
	FormatDSDU32BE
)

// String names the format, used in SinkOpenFailed error reasons.
func (f FormatCode) String() string {
	switch f {
	case FormatS16LE:
		return "S16_LE"
	case FormatS24_3LE:
		return "S24_3LE"
	case FormatS32LE:
		return "S32_LE"
	case FormatDSDU32BE:
		return "DSD_U32_BE"
	default:
		return "unknown"
	}
}

// Capabilities is a bitmap over the PCM/DSD sample formats a device has
// accepted during trial-open probing. Probe tries only the formats
// Configure's priority table consults, so no other format is recorded.
type Capabilities uint32

const (
	CapS16LE Capabilities = 1 << iota
	CapS24_3LE
	CapS32LE
	CapDSDU32BE
)

// Has reports whether cap is present in the bitmap.
func (c Capabilities) Has(cap Capabilities) bool { return c&cap != 0 }

// Probe trial-opens dev with each candidate format and records which ones
// succeed, per spec.md §4.1's "populated once per device activation"
// contract.
func Probe(dev Sink, deviceName string, rate int) Capabilities {
	var caps Capabilities

	trials := []struct {
		code FormatCode
		bit  Capabilities
	}{
		{FormatS16LE, CapS16LE},
		{FormatS24_3LE, CapS24_3LE},
		{FormatS32LE, CapS32LE},
		{FormatDSDU32BE, CapDSDU32BE},
	}

	for _, t := range trials {
		if dev.Probe(deviceName, t.code, rate) {
			caps |= t.bit
		}
	}

	return caps
}
