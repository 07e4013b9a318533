// Package queue holds the ordered list of files to play and the cursor
// driving cmd/hrmp play's outer loop.
package queue

import (
	"math/rand/v2"

	"github.com/mycophonic/hrmp"
)

// Queue is an ordered list of file metadata with a current-position
// cursor, supporting forward/backward navigation and reshuffling.
type Queue struct {
	entries []*hrmp.FileMetadata
	pos     int
}

// New builds a Queue from already-probed metadata, in the given order.
func New(entries []*hrmp.FileMetadata) *Queue {
	return &Queue{entries: entries}
}

// Len returns the number of entries.
func (q *Queue) Len() int { return len(q.entries) }

// Pos returns the cursor's current 0-based position.
func (q *Queue) Pos() int { return q.pos }

// Current returns the entry at the cursor, or nil if the queue is empty or
// the cursor has advanced past the end.
func (q *Queue) Current() *hrmp.FileMetadata {
	if q.pos < 0 || q.pos >= len(q.entries) {
		return nil
	}

	return q.entries[q.pos]
}

// Advance moves the cursor to the next entry. It returns false (and leaves
// the cursor past the end) when there is no next entry.
func (q *Queue) Advance() bool {
	q.pos++

	return q.pos < len(q.entries)
}

// Retreat moves the cursor to the previous entry, clamping at the first.
// It returns false when already at the first entry.
func (q *Queue) Retreat() bool {
	if q.pos <= 0 {
		q.pos = 0

		return false
	}

	q.pos--

	return true
}

// RepeatFromStart resets the cursor to the first entry.
func (q *Queue) RepeatFromStart() { q.pos = 0 }

// Reshuffle randomizes entry order in place via Fisher-Yates, resetting the
// cursor to the first entry. A nil rng uses the default top-level source;
// tests inject a seeded *rand.Rand for determinism.
func (q *Queue) Reshuffle(rng *rand.Rand) {
	n := len(q.entries)

	for i := n - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}

		q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	}

	q.pos = 0
}
