package mapping

import (
	"testing"

	"github.com/masarunakajima/abismal/internal/fourbit"
	"github.com/masarunakajima/abismal/internal/genome"
)

func TestProcessSeedsFindsExactMatch(t *testing.T) {
	ref := []byte("ACGTACGTACGTTTGGACGTACGTGGGGCCCCACGTACGTAAAACCCCGGGGTTTTACGT")
	idx, err := genome.Build([]string{"chr1"}, [][]byte{ref}, 10, 4)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	readSeq := ref[20:36]
	read := fourbit.Encode(readSeq, false)

	heap := NewPeCandidates()
	opts := DefaultDriverOptions
	opts.SeedLen = 10
	ProcessSeeds(idx, read, false, false, opts, heap)

	found := false
	for _, e := range heap.items {
		if e.Pos == 20 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a candidate at pos 20, got %+v", heap.items)
	}
}

func TestInvalidDiffsCutoffFloorsAtZero(t *testing.T) {
	if got := invalidDiffsCutoff(5, 0.0); got != 0 {
		t.Fatalf("invalidDiffsCutoff(5,0) = %d, want 0", got)
	}
	if got := invalidDiffsCutoff(100, 0.1); got != 10 {
		t.Fatalf("invalidDiffsCutoff(100,0.1) = %d, want 10", got)
	}
}

func TestSeedOffsetsSpreadAcrossRead(t *testing.T) {
	offs := seedOffsets(50, 10, 5)
	if offs[0] != 0 {
		t.Fatalf("first offset = %d, want 0", offs[0])
	}
	for _, o := range offs {
		if o+10 > 50 {
			t.Fatalf("offset %d puts seed past read end", o)
		}
	}
}
