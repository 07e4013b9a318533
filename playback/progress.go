package playback

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTemplate matches spec.md §6's default progress template.
const DefaultTemplate = `[%n/%N] %d: %f [%i] (%t/%T) (%p)`

const clearToEOL = "\x1b[2K"

// Tick is the set of values one progress line substitutes into a template.
type Tick struct {
	Number       int
	Total        int
	Basename     string
	FullPath     string
	Device       string
	PercentInt   int
	CurrentSec   float64
	TotalSec     float64
	Identifier   string
	BufferMiB    float64
	TargetMiB    float64
}

// Render expands every %-escape in tmpl against t, then every backslash
// escape, matching spec.md §6 exactly.
func Render(tmpl string, t Tick) string {
	return expandBackslashes(expandPercent(tmpl, t))
}

// RenderFinal renders the last tick of a file, prefixed with a
// clear-to-EOL control sequence and suffixed with a newline, per spec.md
// §6's final-tick contract.
func RenderFinal(tmpl string, t Tick) string {
	return clearToEOL + Render(tmpl, t) + "\n"
}

func expandPercent(tmpl string, t Tick) string {
	var b strings.Builder

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' || i+1 >= len(tmpl) {
			b.WriteByte(c)

			continue
		}

		i++

		switch tmpl[i] {
		case 'n':
			b.WriteString(strconv.Itoa(t.Number))
		case 'N':
			b.WriteString(strconv.Itoa(t.Total))
		case 'f':
			b.WriteString(t.Basename)
		case 'F':
			b.WriteString(t.FullPath)
		case 'd':
			b.WriteString(t.Device)
		case 'p':
			b.WriteString(strconv.Itoa(t.PercentInt))
			b.WriteByte('%')
		case 't':
			b.WriteString(formatDuration(t.CurrentSec))
		case 'T':
			b.WriteString(formatDuration(t.TotalSec))
		case 'i':
			b.WriteString(t.Identifier)
		case 'b':
			b.WriteString(fmt.Sprintf("%.1f", t.BufferMiB))
		case 'B':
			b.WriteString(fmt.Sprintf("%.1f", t.TargetMiB))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(tmpl[i])
		}
	}

	return b.String()
}

func expandBackslashes(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)

			continue
		}

		i++

		if s[i] == '0' && i+2 < len(s) && s[i+1] == '3' && s[i+2] == '3' {
			b.WriteByte(0x1b)
			i += 2

			continue
		}

		switch s[i] {
		case 'x':
			if i+2 < len(s) && strings.EqualFold(s[i+1:i+3], "1b") {
				b.WriteByte(0x1b)
				i += 2

				continue
			}

			b.WriteByte('\\')
			b.WriteByte(s[i])
		case 'e':
			b.WriteByte(0x1b)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}

	return b.String()
}

// formatDuration renders seconds as mm:ss, or h:mm:ss once an hour is
// reached, per spec.md §6's %t/%T contract.
func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}

	return fmt.Sprintf("%02d:%02d", m, s)
}
