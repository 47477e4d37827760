package align

import (
	"testing"

	"github.com/masarunakajima/abismal/internal/fourbit"
)

// genomeCodes encodes an ASCII reference sequence into canonical fourbit
// codes, the representation Align expects for ref.
func genomeCodes(seq string) []uint8 {
	out := make([]uint8, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i] = fourbit.EncodeGenomeBase(seq[i])
	}
	return out
}

// readCodes encodes an ASCII read sequence into richness-aware fourbit
// codes, the representation Align expects for query.
func readCodes(seq string, aRich bool) []uint8 {
	out := make([]uint8, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i] = fourbit.EncodeReadBase(seq[i], aRich)
	}
	return out
}

func cigarQueryLen(units []CigarUnit) int {
	n := 0
	for _, u := range units {
		switch u.Op {
		case OpMatch, OpInsert, OpSoftClip:
			n += u.Len
		}
	}
	return n
}

func TestAlignExactMatchScoresAllMatches(t *testing.T) {
	a := NewAligner(DefaultOptions)
	query := readCodes("ACGTACGTAC", false)
	ref := genomeCodes("ACGTACGTAC")
	res := a.Align(query, ref, 100)
	want := len(query) * DefaultOptions.MatchScore
	if res.Score != want {
		t.Fatalf("score = %d, want %d", res.Score, want)
	}
	if res.RefStart != 100 {
		t.Fatalf("RefStart = %d, want 100", res.RefStart)
	}
	if res.EditDistance != 0 {
		t.Fatalf("EditDistance = %d, want 0", res.EditDistance)
	}
	if len(res.Cigar) != 1 || res.Cigar[0].Op != OpMatch || res.Cigar[0].Len != 10 {
		t.Fatalf("Cigar = %+v, want a single 10M", res.Cigar)
	}
}

func TestAlignSingleMismatchStillScoresPositive(t *testing.T) {
	a := NewAligner(DefaultOptions)
	query := readCodes("ACGTTCGTAC", false)
	ref := genomeCodes("ACGTACGTAC")
	res := a.Align(query, ref, 0)
	if res.Score <= 0 {
		t.Fatalf("score = %d, want positive", res.Score)
	}
	if len(res.Cigar) == 0 {
		t.Fatal("expected a non-empty CIGAR")
	}
	if res.EditDistance != 1 {
		t.Fatalf("EditDistance = %d, want 1", res.EditDistance)
	}
	if n := cigarQueryLen(res.Cigar); n != len(query) {
		t.Fatalf("cigar covers %d query bases, want %d", n, len(query))
	}
}

// TestAlignSoftClipsUnalignedFlanks checks invariant 6: every query base is
// accounted for by either an aligned op or a soft clip, even when only the
// middle of the query actually aligns.
func TestAlignSoftClipsUnalignedFlanks(t *testing.T) {
	a := NewAligner(DefaultOptions)
	query := readCodes("NNNNNACGTACGTACNNNNN", false)
	ref := genomeCodes("AAAAAACGTACGTACAAAAA")
	res := a.Align(query, ref, 0)

	if n := cigarQueryLen(res.Cigar); n != len(query) {
		t.Fatalf("cigar covers %d query bases, want %d", n, len(query))
	}
	if res.Cigar[0].Op != OpSoftClip {
		t.Fatalf("Cigar = %+v, want leading soft clip", res.Cigar)
	}
	if last := res.Cigar[len(res.Cigar)-1]; last.Op != OpSoftClip {
		t.Fatalf("Cigar = %+v, want trailing soft clip", res.Cigar)
	}

	var matched int
	for _, u := range res.Cigar {
		if u.Op == OpMatch {
			matched += u.Len
		}
	}
	if matched != 10 {
		t.Fatalf("matched = %d, want 10", matched)
	}
	if res.Score != 10*DefaultOptions.MatchScore {
		t.Fatalf("score = %d, want %d", res.Score, 10*DefaultOptions.MatchScore)
	}
}

// TestAlignTRichToleratesBisulfiteConversion checks that a T-rich read
// comparing a converted C->T base against a genomic C scores as a match,
// not a mismatch, the bisulfite tolerance spec section 4.6 requires.
func TestAlignTRichToleratesBisulfiteConversion(t *testing.T) {
	a := NewAligner(DefaultOptions)
	query := readCodes("TTTTTTTTTT", false) // T-rich richness
	ref := genomeCodes("CCCCCCCCCC")
	res := a.Align(query, ref, 0)

	want := len(query) * DefaultOptions.MatchScore
	if res.Score != want {
		t.Fatalf("score = %d, want %d (bisulfite-tolerant match)", res.Score, want)
	}
	if res.EditDistance != 0 {
		t.Fatalf("EditDistance = %d, want 0", res.EditDistance)
	}
}

// TestAlignARichToleratesBisulfiteConversion mirrors the T-rich case for
// the opposite-strand A-rich conversion (G->A).
func TestAlignARichToleratesBisulfiteConversion(t *testing.T) {
	a := NewAligner(DefaultOptions)
	query := readCodes("AAAAAAAAAA", true) // A-rich richness
	ref := genomeCodes("GGGGGGGGGG")
	res := a.Align(query, ref, 0)

	want := len(query) * DefaultOptions.MatchScore
	if res.Score != want {
		t.Fatalf("score = %d, want %d (bisulfite-tolerant match)", res.Score, want)
	}
	if res.EditDistance != 0 {
		t.Fatalf("EditDistance = %d, want 0", res.EditDistance)
	}
}

func TestCigarStringFormat(t *testing.T) {
	units := []CigarUnit{{Op: OpSoftClip, Len: 3}, {Op: OpMatch, Len: 10}}
	got := String(units)
	if got != "3S10M" {
		t.Fatalf("String() = %q, want 3S10M", got)
	}
}

func TestCigarStringEmpty(t *testing.T) {
	if got := String(nil); got != "*" {
		t.Fatalf("String(nil) = %q, want *", got)
	}
}
