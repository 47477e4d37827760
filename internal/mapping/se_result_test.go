package mapping

import "testing"

func TestUpdateByMismatchTracksBestAndSecondBest(t *testing.T) {
	r := NewSeResult()
	r.UpdateByMismatch(SeElement{Pos: 10, Diffs: 3})
	r.UpdateByMismatch(SeElement{Pos: 20, Diffs: 1})
	r.UpdateByMismatch(SeElement{Pos: 30, Diffs: 5})

	if r.Best.Pos != 20 || r.Best.Diffs != 1 {
		t.Fatalf("best = %+v, want pos 20 diffs 1", r.Best)
	}
	if r.SecondBest.Pos != 10 || r.SecondBest.Diffs != 3 {
		t.Fatalf("second best = %+v, want pos 10 diffs 3", r.SecondBest)
	}
}

func TestUpdateByMismatchIgnoresSameLocus(t *testing.T) {
	r := NewSeResult()
	r.UpdateByMismatch(SeElement{Pos: 10, Diffs: 1})
	r.UpdateByMismatch(SeElement{Pos: 10, Diffs: 0})
	if r.SecondBest.Valid() {
		t.Fatalf("second best should stay empty, got %+v", r.SecondBest)
	}
}

func TestAmbigDiffs(t *testing.T) {
	r := NewSeResult()
	r.UpdateByMismatch(SeElement{Pos: 10, Diffs: 2})
	r.UpdateByMismatch(SeElement{Pos: 20, Diffs: 2})
	if !r.AmbigDiffs() {
		t.Fatal("expected ambiguity when best and second-best share mismatch count")
	}
}

func TestShouldReport(t *testing.T) {
	r := NewSeResult()
	if r.ShouldReport(false) {
		t.Fatal("empty result should never be reportable")
	}
	r.UpdateByMismatch(SeElement{Pos: 10, Diffs: 1})
	r.UpdateByMismatch(SeElement{Pos: 20, Diffs: 1})
	if r.ShouldReport(false) {
		t.Fatal("ambiguous result should not be reportable when ambig is disallowed")
	}
	if !r.ShouldReport(true) {
		t.Fatal("ambiguous result should be reportable when ambig is allowed")
	}
}

func TestGetCutoff(t *testing.T) {
	r := NewSeResult()
	if r.GetCutoff() != InvalidDiffs {
		t.Fatal("empty result should have no cutoff")
	}
	r.UpdateByMismatch(SeElement{Pos: 10, Diffs: 1})
	r.UpdateByMismatch(SeElement{Pos: 20, Diffs: 3})
	if r.GetCutoff() != 3 {
		t.Fatalf("GetCutoff() = %d, want 3", r.GetCutoff())
	}
}
