package queue_test

import (
	"math/rand/v2"
	"testing"

	"github.com/mycophonic/hrmp"
	"github.com/mycophonic/hrmp/queue"
)

func entries(paths ...string) []*hrmp.FileMetadata {
	out := make([]*hrmp.FileMetadata, len(paths))
	for i, p := range paths {
		out[i] = &hrmp.FileMetadata{Path: p}
	}

	return out
}

func TestAdvanceAndRetreat(t *testing.T) {
	t.Parallel()

	q := queue.New(entries("a", "b", "c"))

	if q.Current().Path != "a" {
		t.Fatalf("expected cursor to start at a, got %s", q.Current().Path)
	}

	if !q.Advance() {
		t.Fatal("expected Advance to succeed")
	}

	if q.Current().Path != "b" {
		t.Fatalf("expected b, got %s", q.Current().Path)
	}

	if !q.Advance() {
		t.Fatal("expected Advance to succeed")
	}

	if q.Advance() {
		t.Fatal("expected Advance past the end to return false")
	}

	if q.Current() != nil {
		t.Fatal("expected Current to be nil past the end")
	}
}

func TestRetreatClampsAtFirst(t *testing.T) {
	t.Parallel()

	q := queue.New(entries("a", "b"))

	if q.Retreat() {
		t.Fatal("expected Retreat at position 0 to return false")
	}

	if q.Pos() != 0 {
		t.Fatalf("expected pos 0, got %d", q.Pos())
	}

	q.Advance()

	if !q.Retreat() {
		t.Fatal("expected Retreat from position 1 to succeed")
	}

	if q.Current().Path != "a" {
		t.Fatalf("expected a, got %s", q.Current().Path)
	}
}

func TestRepeatFromStart(t *testing.T) {
	t.Parallel()

	q := queue.New(entries("a", "b", "c"))
	q.Advance()
	q.Advance()
	q.RepeatFromStart()

	if q.Pos() != 0 {
		t.Fatalf("expected pos 0 after RepeatFromStart, got %d", q.Pos())
	}
}

func TestReshufflePreservesSetAndResetsCursor(t *testing.T) {
	t.Parallel()

	q := queue.New(entries("a", "b", "c", "d", "e"))
	q.Advance()
	q.Advance()

	q.Reshuffle(rand.New(rand.NewPCG(1, 2)))

	if q.Pos() != 0 {
		t.Fatalf("expected pos reset to 0, got %d", q.Pos())
	}

	seen := make(map[string]bool)

	for q.Current() != nil {
		seen[q.Current().Path] = true
		q.Advance()
	}

	for _, p := range []string{"a", "b", "c", "d", "e"} {
		if !seen[p] {
			t.Fatalf("entry %s missing after reshuffle", p)
		}
	}

	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct entries, got %d", len(seen))
	}
}
