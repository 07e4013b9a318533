// Package keyboard implements non-blocking, raw single-byte terminal input
// for the interactive playback controller.
package keyboard

import (
	"os"
	"syscall"

	"golang.org/x/term"
)

// KeyCode identifies one recognized key, per spec.md §6's byte map.
type KeyCode uint8

// Recognized keys. Any other byte read is ignored (KeyNone is never
// produced by Poll for a successfully read byte; it denotes "nothing
// available").
const (
	KeyNone KeyCode = iota
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyQ
	KeyM
	KeyComma
	KeyPeriod
	KeySlash
	KeyBackslash
)

var byteToKey = map[byte]KeyCode{
	10:  KeyEnter,
	32:  KeySpace,
	65:  KeyUp,
	66:  KeyDown,
	67:  KeyRight,
	68:  KeyLeft,
	113: KeyQ,
	109: KeyM,
	44:  KeyComma,
	46:  KeyPeriod,
	47:  KeySlash,
	92:  KeyBackslash,
}

// Keyboard owns the raw-mode terminal state restored on Close.
type Keyboard struct {
	fd       int
	oldState *term.State
}

// Open puts stdin into raw, no-echo mode. The returned Keyboard must be
// closed to restore the terminal, even on an early playback-loop exit.
func Open() (*Keyboard, error) {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err := syscall.SetNonblock(fd, true); err != nil {
		_ = term.Restore(fd, oldState)

		return nil, err //nolint:wrapcheck
	}

	return &Keyboard{fd: fd, oldState: oldState}, nil
}

// Close restores the terminal to its pre-Open state.
func (k *Keyboard) Close() error {
	_ = syscall.SetNonblock(k.fd, false)

	return term.Restore(k.fd, k.oldState) //nolint:wrapcheck
}

// Poll performs one non-blocking read of stdin. It returns (KeyNone, false)
// when no byte is currently available or the byte read doesn't map to a
// recognized key; the read does not block because Open puts the terminal in
// raw mode and sets the fd non-blocking.
func (k *Keyboard) Poll() (KeyCode, bool) {
	buf := make([]byte, 1)

	n, err := os.Stdin.Read(buf)
	if err != nil || n == 0 {
		return KeyNone, false
	}

	code, ok := byteToKey[buf[0]]

	return code, ok
}
