// Package log provides the engine's single-producer structured logger.
//
// The original C implementation serialized log output with a compare-and-set
// spin lock (STATE_FREE -> STATE_IN_USE, sleep ~1ms on contention) because
// logging could be reached from the progress loop and from recoverable-error
// paths on what was, in principle, more than one caller. The engine is
// single-threaded end to end (spec §5), so no lock is needed here — there is
// only ever one goroutine calling into the logger. We keep the single-writer
// framing (one zerolog.Logger per process, built once at startup) rather than
// the spin-lock mechanics it replaces.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once    sync.Once //nolint:gochecknoglobals // lazy default logger, see Default().
	logger  zerolog.Logger
)

// New builds a console logger writing to w, with debug enabled when
// developer is true. The "debug" level folds together what the original
// configuration's overlapping DEBUG1..DEBUG5 keys all mapped to in
// practice (spec §9).
func New(w io.Writer, developer bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if developer {
		level = zerolog.DebugLevel
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}

	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Default returns a process-wide logger writing to stderr at info level,
// initialized lazily so packages can log before cmd/hrmp wires a real one.
func Default() zerolog.Logger {
	once.Do(func() {
		logger = New(os.Stderr, false)
	})

	return logger
}

// SetDefault replaces the process-wide default logger, e.g. once cmd/hrmp
// has parsed the "developer" configuration flag.
func SetDefault(l zerolog.Logger) {
	once.Do(func() {}) // ensure once fires so Default() never overwrites us.
	logger = l
}
