package sink_test

import (
	"testing"

	"github.com/mycophonic/hrmp"
	"github.com/mycophonic/hrmp/sink"
)

func TestConfigurePCMPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		caps     sink.Capabilities
		depth    hrmp.BitDepth
		wantCode sink.FormatCode
		wantErr  bool
	}{
		{"16-bit only S16", sink.CapS16LE, hrmp.Depth16, sink.FormatS16LE, false},
		{"16-bit no support", sink.CapS32LE, hrmp.Depth16, sink.FormatUnknown, true},
		{"24-bit prefers S24_3LE", sink.CapS24_3LE | sink.CapS32LE, hrmp.Depth24, sink.FormatS24_3LE, false},
		{"24-bit falls back to S32LE", sink.CapS32LE, hrmp.Depth24, sink.FormatS32LE, false},
		{"24-bit no support", sink.CapS16LE, hrmp.Depth24, sink.FormatUnknown, true},
		{"32-bit only S32", sink.CapS32LE, hrmp.Depth32, sink.FormatS32LE, false},
		{"32-bit no support", sink.CapS16LE, hrmp.Depth32, sink.FormatUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			code, _, err := sink.Configure(tc.caps, tc.depth, hrmp.DSDNone, false)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got code %v", code)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if code != tc.wantCode {
				t.Fatalf("got %v, want %v", code, tc.wantCode)
			}
		})
	}
}

func TestConfigureDSDNativePrefersU32BE(t *testing.T) {
	t.Parallel()

	caps := sink.CapDSDU32BE | sink.CapS32LE

	code, width, err := sink.Configure(caps, hrmp.DepthDSD, hrmp.DSDNative, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if code != sink.FormatDSDU32BE {
		t.Fatalf("got %v, want FormatDSDU32BE", code)
	}

	if width != 4 {
		t.Fatalf("got width %d, want 4", width)
	}
}

func TestConfigureDSDNativeFallsBackToS32LE(t *testing.T) {
	t.Parallel()

	code, _, err := sink.Configure(sink.CapS32LE, hrmp.DepthDSD, hrmp.DSDNative, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if code != sink.FormatS32LE {
		t.Fatalf("got %v, want FormatS32LE", code)
	}
}

func TestConfigureDoPRequiresS32LE(t *testing.T) {
	t.Parallel()

	if _, _, err := sink.Configure(sink.CapDSDU32BE, hrmp.DepthDSD, hrmp.DSDOverPCM, true); err == nil {
		t.Fatal("expected error when only CapDSDU32BE is advertised for a DoP request")
	}

	code, _, err := sink.Configure(sink.CapS32LE, hrmp.DepthDSD, hrmp.DSDOverPCM, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if code != sink.FormatS32LE {
		t.Fatalf("got %v, want FormatS32LE", code)
	}
}

func TestOpenParamsClampsToMaxBuffer(t *testing.T) {
	t.Parallel()

	period, buffer := sink.OpenParams(44100)
	if buffer != period*4 {
		t.Fatalf("buffer %d should be 4x period %d", buffer, period)
	}

	if buffer > 131072 {
		t.Fatalf("buffer %d exceeds documented max", buffer)
	}
}
