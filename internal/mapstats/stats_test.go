package mapstats

import (
	"strings"
	"testing"
)

func TestSEUpdateAndString(t *testing.T) {
	var s SE
	s.Update(true, false, false)
	s.Update(false, true, false)
	s.Update(false, false, false)
	s.Update(false, false, true)
	if s.TotalReads != 4 {
		t.Fatalf("TotalReads = %d, want 4", s.TotalReads)
	}
	out := s.String()
	if !strings.Contains(out, "total_reads: 4") {
		t.Fatalf("missing total_reads line: %s", out)
	}
	if !strings.Contains(out, "unique: 1") {
		t.Fatalf("missing unique count: %s", out)
	}
}

func TestPEIncludesMateFallback(t *testing.T) {
	var p PE
	p.Update(true, false, false)
	p.UpdateMateFallback()
	out := p.String()
	if !strings.Contains(out, "mate_fallback:") {
		t.Fatalf("missing mate_fallback section: %s", out)
	}
}
