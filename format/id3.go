package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"
)

// id3Tags is the subset of ID3v2 text frames the engine cares about.
type id3Tags struct {
	title, artist, album, genre, date string
	track, disc                       string
}

// readID3v2 parses an ID3v2 tag starting at the current position of r and
// fills t. It tolerates a missing tag (returns nil, t left zeroed) but
// reports malformed tag structure once the "ID3" signature has matched,
// mirroring the original parser's walk over 10-byte frame headers.
func readID3v2(r io.Reader) (id3Tags, error) {
	var t id3Tags

	var hdr [10]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return t, nil //nolint:nilerr // no tag at this offset is not an error.
	}

	if string(hdr[0:3]) != "ID3" {
		return t, nil
	}

	major := hdr[3]
	flags := hdr[5]
	tagSize := synchsafeToU32(hdr[6:10])

	if flags&0x40 != 0 {
		var extHdr [4]byte
		if _, err := io.ReadFull(r, extHdr[:]); err != nil {
			return t, fmt.Errorf("format: id3 extended header: %w", err)
		}

		extSize := beToU32(extHdr[:])
		if major == 4 {
			extSize = synchsafeToU32(extHdr[:])
		}

		if extSize < 4 {
			return t, fmt.Errorf("format: id3 extended header size %d too small", extSize)
		}

		if _, err := io.CopyN(io.Discard, r, int64(extSize-4)); err != nil {
			return t, fmt.Errorf("format: skipping id3 extended header: %w", err)
		}
	}

	remaining := int64(tagSize)

	for remaining >= 10 {
		var fh [10]byte
		if _, err := io.ReadFull(r, fh[:]); err != nil {
			break
		}

		remaining -= 10

		id := string(fh[0:4])
		if !isAlphaNum4(id) {
			break
		}

		size := beToU32(fh[4:8])
		if major == 4 {
			size = synchsafeToU32(fh[4:8])
		}

		if size == 0 || int64(size) > remaining {
			break
		}

		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			break
		}

		remaining -= int64(size)

		applyID3Frame(&t, id, body)
	}

	return t, nil
}

func applyID3Frame(t *id3Tags, id string, body []byte) {
	if len(id) == 0 {
		return
	}

	if id[0] == 'T' && id != "TXXX" {
		val := id3TextToUTF8(body)
		if val == "" {
			return
		}

		switch id {
		case "TIT2":
			setOnce(&t.title, val)
		case "TPE1":
			setOnce(&t.artist, val)
		case "TALB":
			setOnce(&t.album, val)
		case "TCON":
			setOnce(&t.genre, val)
		case "TDRC", "TYER":
			setOnce(&t.date, val)
		case "TRCK":
			setOnce(&t.track, firstOfXofY(val))
		case "TPOS":
			setOnce(&t.disc, firstOfXofY(val))
		}
	}
}

func setOnce(dst *string, val string) {
	if *dst == "" {
		*dst = val
	}
}

func firstOfXofY(s string) string {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}

	s = strings.TrimSpace(s)
	if _, err := strconv.Atoi(s); err != nil {
		return ""
	}

	return s
}

func isAlphaNum4(id string) bool {
	if len(id) != 4 {
		return false
	}

	for i := range 4 {
		c := id[i]
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}

	return true
}

func synchsafeToU32(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 | uint32(b[1]&0x7F)<<14 | uint32(b[2]&0x7F)<<7 | uint32(b[3]&0x7F)
}

func beToU32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// id3TextToUTF8 decodes an ID3v2 text frame body (encoding byte + payload)
// per the four ID3v2 text encodings: ISO-8859-1, UTF-16 with BOM, UTF-16BE
// without BOM, and UTF-8.
func id3TextToUTF8(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	enc := data[0]
	body := data[1:]

	switch enc {
	case 0x00:
		return iso8859ToUTF8(body)
	case 0x03:
		return strings.TrimRight(string(body), "\x00")
	case 0x01:
		return utf16BOMToUTF8(body)
	case 0x02:
		return utf16ToUTF8(body, true)
	default:
		return ""
	}
}

func iso8859ToUTF8(b []byte) string {
	var sb strings.Builder

	for _, c := range b {
		if c == 0 {
			break
		}

		sb.WriteRune(rune(c))
	}

	return sb.String()
}

// utf16BOMToUTF8 handles the ID3v2 0x01 encoding: a leading BOM selects
// byte order, defaulting to big-endian when the BOM is absent or malformed.
func utf16BOMToUTF8(b []byte) string {
	bigEndian := true
	off := 0

	if len(b) >= 2 {
		switch {
		case b[0] == 0xFE && b[1] == 0xFF:
			bigEndian = true
			off = 2
		case b[0] == 0xFF && b[1] == 0xFE:
			bigEndian = false
			off = 2
		}
	}

	return utf16ToUTF8(b[off:], bigEndian)
}

func utf16ToUTF8(b []byte, bigEndian bool) string {
	if len(b)%2 != 0 && len(b) > 0 {
		b = b[:len(b)-1]
	}

	units := make([]uint16, 0, len(b)/2)

	for i := 0; i+1 < len(b); i += 2 {
		if bigEndian {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		} else {
			units = append(units, uint16(b[i])|uint16(b[i+1])<<8)
		}
	}

	runes := utf16.Decode(units)

	return strings.TrimRight(string(runes), "\x00")
}
