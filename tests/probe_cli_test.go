package tests_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"

	"github.com/mycophonic/hrmp"
	"github.com/mycophonic/hrmp/tests/testutils"
	"github.com/mycophonic/hrmp/wav"
)

// writeSyntheticWAV encodes durationSec worth of silent PCM as a WAV file
// under dir and returns its path.
func writeSyntheticWAV(t *testing.T, dir string, sampleRate, bitDepth, channels, durationSec int) string {
	t.Helper()

	frameBytes := hrmp.BitDepth(bitDepth).BytesPerSample() * channels
	pcm := make([]byte, sampleRate*durationSec*frameBytes)

	var buf bytes.Buffer

	format := hrmp.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   hrmp.BitDepth(bitDepth),
		Channels:   uint(channels),
	}

	if err := wav.Encode(&buf, pcm, format); err != nil {
		t.Fatalf("encoding synthetic WAV: %v", err)
	}

	path := filepath.Join(dir, "silence.wav")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("writing synthetic WAV: %v", err)
	}

	return path
}

func mustContainAll(want ...string) test.Comparator {
	return func(stdout string, t tig.T) {
		t.Helper()

		for _, w := range want {
			if !strings.Contains(stdout, w) {
				t.Errorf("expected output to contain %q, got: %s", w, stdout) //nolint:govet
			}
		}
	}
}

// TestProbeReportsWAVMetadata runs the probe subcommand against a
// synthetically-generated WAV file and checks that its reported kind, rate,
// depth and channel count match what was encoded.
func TestProbeReportsWAVMetadata(t *testing.T) {
	t.Parallel()

	testCase := testutils.Setup()
	testCase.Description = "probe reports WAV metadata"

	testCase.Command = func(data test.Data, helpers test.Helpers) test.TestableCommand {
		path := writeSyntheticWAV(t, data.Temp().Path(), 44100, 16, 2, 1)

		return helpers.Command("probe", path)
	}

	testCase.Expected = func(_ test.Data, _ test.Helpers) *test.Expected {
		return &test.Expected{
			ExitCode: expect.ExitCodeSuccess,
			Output:   mustContainAll("WAV", "44100Hz", "16-bit", "2ch"),
		}
	}

	testCase.Run(t)
}

// TestProbeReportsErrorForUnplayableFile feeds probe a file that is not any
// supported container and expects a per-file error line, not a crash.
func TestProbeReportsErrorForUnplayableFile(t *testing.T) {
	t.Parallel()

	testCase := testutils.Setup()
	testCase.Description = "probe reports an error for an unrecognized file"

	testCase.Command = func(data test.Data, helpers test.Helpers) test.TestableCommand {
		path := data.Temp().Path("garbage.bin")
		if err := os.WriteFile(path, []byte("not an audio file"), 0o600); err != nil {
			t.Fatalf("writing garbage file: %v", err)
		}

		return helpers.Command("probe", path)
	}

	testCase.Expected = func(_ test.Data, _ test.Helpers) *test.Expected {
		return &test.Expected{
			ExitCode: expect.ExitCodeSuccess,
			Output:   mustContainAll("error"),
		}
	}

	testCase.Run(t)
}

// TestProbeRequiresAnArgument checks the CLI's argument-count validation
// without touching any audio file at all.
func TestProbeRequiresAnArgument(t *testing.T) {
	t.Parallel()

	testCase := testutils.Setup()
	testCase.Description = "probe rejects zero arguments"

	testCase.Command = func(_ test.Data, helpers test.Helpers) test.TestableCommand {
		return helpers.Command("probe")
	}

	testCase.Expected = func(_ test.Data, _ test.Helpers) *test.Expected {
		return &test.Expected{
			ExitCode: 1,
		}
	}

	testCase.Run(t)
}
