package samrecord

import (
	"strings"
	"testing"

	"github.com/masarunakajima/abismal/internal/align"
)

func TestFormatSEFields(t *testing.T) {
	cigar := []align.CigarUnit{{Op: align.OpMatch, Len: 36}}
	rec := FormatSE("read1", "chr1", 99, cigar, 1, false, false, "ACGT", "IIII")
	if rec.Pos != 100 {
		t.Fatalf("Pos = %d, want 100 (1-based)", rec.Pos)
	}
	if rec.MAPQ != MAPQPlaceholder {
		t.Fatalf("MAPQ = %d, want placeholder %d", rec.MAPQ, MAPQPlaceholder)
	}
	line := rec.String()
	if !strings.Contains(line, "NM:i:1") || !strings.Contains(line, "CV:A:T") {
		t.Fatalf("line missing expected tags: %s", line)
	}
}

func TestFormatSEReverseFlag(t *testing.T) {
	rec := FormatSE("r", "chr1", 0, nil, 0, true, true, "A", "I")
	if rec.Flag&FlagReverse == 0 {
		t.Fatal("expected FlagReverse set")
	}
	if rec.CV != 'A' {
		t.Fatalf("CV = %c, want A", rec.CV)
	}
}

func TestFormatPEFlagsAndMateFields(t *testing.T) {
	cigar := []align.CigarUnit{{Op: align.OpMatch, Len: 36}}
	r1, r2 := FormatPE("p1", "chr1", 99, 199, cigar, cigar, 0, 0, false, false, true, true, 136, "A", "I", "C", "I")
	if r1.Flag&FlagFirstInPair == 0 || r2.Flag&FlagSecondInPair == 0 {
		t.Fatal("missing first/second-in-pair flags")
	}
	if r1.TLen != 136 || r2.TLen != -136 {
		t.Fatalf("tlen mismatch: %d, %d", r1.TLen, r2.TLen)
	}
	if r1.RNext != "=" || r1.PNext != 200 {
		t.Fatalf("mate fields wrong: %+v", r1)
	}
}

func TestClassifyFragmentCases(t *testing.T) {
	if Classify(200, 100, 100) != FragLong {
		t.Fatal("expected FragLong")
	}
	if Classify(80, 100, 50) != FragOverlapHead {
		t.Fatal("expected FragOverlapHead")
	}
	if Classify(30, 100, 100) != FragDovetail {
		t.Fatal("expected FragDovetail")
	}
}

func TestTruncateToFragmentClipsOverhang(t *testing.T) {
	cigar := []align.CigarUnit{{Op: align.OpMatch, Len: 36}}
	out := TruncateToFragment(cigar, 20)
	if len(out) != 2 || out[0].Len != 20 || out[1].Op != align.OpSoftClip || out[1].Len != 16 {
		t.Fatalf("unexpected truncated cigar: %+v", out)
	}
}
