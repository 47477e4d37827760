package hamming

import (
	"testing"

	"github.com/masarunakajima/abismal/internal/fourbit"
)

func TestCompareExactMatch(t *testing.T) {
	genome := fourbit.PackGenome([]byte("ACGTACGTACGT"))
	read := fourbit.Encode([]byte("ACGTACGT"), false)
	got := Compare(read.Layout(0), genome.Bytes(0), 100)
	if got != 0 {
		t.Fatalf("exact match reported %d mismatches", got)
	}
}

func TestCompareCountsMismatches(t *testing.T) {
	genome := fourbit.PackGenome([]byte("AAAAAAAA"))
	read := fourbit.Encode([]byte("CCCCCCCC"), false)
	got := Compare(read.Layout(0), genome.Bytes(0), 100)
	if got != 8 {
		t.Fatalf("got %d mismatches, want 8", got)
	}
}

func TestCompareCutoffShortCircuits(t *testing.T) {
	genome := fourbit.PackGenome([]byte("AAAAAAAA"))
	read := fourbit.Encode([]byte("CCCCCCCC"), false)
	got := Compare(read.Layout(0), genome.Bytes(0), 3)
	if got < 3 {
		t.Fatalf("got %d, want >= cutoff 3", got)
	}
}

func TestCompareBisulfiteTolerance(t *testing.T) {
	genome := fourbit.PackGenome([]byte("CCCCCCCC"))
	read := fourbit.Encode([]byte("TTTTTTTT"), false) // T-rich: T tolerates genomic C
	got := Compare(read.Layout(0), genome.Bytes(0), 100)
	if got != 0 {
		t.Fatalf("T-rich T vs genomic C reported %d mismatches, want 0", got)
	}
}

func TestCompareOddOffset(t *testing.T) {
	genome := fourbit.PackGenome([]byte("TACGTACGTACG"))
	read := fourbit.Encode([]byte("ACGTACGT"), false)
	got := Compare(read.Layout(1), genome.Bytes(1), 100)
	if got != 0 {
		t.Fatalf("odd-offset exact match reported %d mismatches", got)
	}
}
