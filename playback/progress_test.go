package playback_test

import (
	"strings"
	"testing"

	"github.com/mycophonic/hrmp/playback"
)

func TestRenderDefaultTemplate(t *testing.T) {
	t.Parallel()

	tick := playback.Tick{
		Number:     2,
		Total:      5,
		Basename:   "track.flac",
		Device:     "hw:0",
		PercentInt: 42,
		CurrentSec: 61,
		TotalSec:   125,
		Identifier: "96kHz/24bit",
	}

	got := playback.Render(playback.DefaultTemplate, tick)
	want := "[2/5] hw:0: track.flac [96kHz/24bit] (01:01/02:05) (42%)"

	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderDurationRollsToHours(t *testing.T) {
	t.Parallel()

	got := playback.Render("%t", playback.Tick{CurrentSec: 3661})
	if got != "1:01:01" {
		t.Fatalf("got %q, want 1:01:01", got)
	}
}

func TestRenderBackslashEscapes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`\033[1m`: "\x1b[1m",
		`\x1b[1m`: "\x1b[1m",
		`\x1B[1m`: "\x1b[1m",
		`\e[1m`:   "\x1b[1m",
		`a\nb`:    "a\nb",
		`a\tb`:    "a\tb",
		`a\\b`:    `a\b`,
	}

	for in, want := range cases {
		if got := playback.Render(in, playback.Tick{}); got != want {
			t.Fatalf("Render(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderFinalPrefixesClearToEOL(t *testing.T) {
	t.Parallel()

	got := playback.RenderFinal("%f", playback.Tick{Basename: "x"})

	if !strings.HasPrefix(got, "\x1b[2K") {
		t.Fatalf("expected clear-to-EOL prefix, got %q", got)
	}

	if !strings.HasSuffix(got, "x\n") {
		t.Fatalf("expected trailing newline, got %q", got)
	}
}

func TestRenderLiteralPercent(t *testing.T) {
	t.Parallel()

	if got := playback.Render("100%%", playback.Tick{}); got != "100%" {
		t.Fatalf("got %q, want 100%%", got)
	}
}
