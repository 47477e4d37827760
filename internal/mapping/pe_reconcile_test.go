package mapping

import "testing"

func TestReconcileWithinBounds(t *testing.T) {
	mate1 := []SeElement{{Pos: 100}, {Pos: 500}}
	mate2 := []SeElement{{Pos: 250}, {Pos: 900}}
	pairs := Reconcile(mate1, mate2, 50, 300, 50, false)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1: %+v", len(pairs), pairs)
	}
	if pairs[0].Mate1.Pos != 100 || pairs[0].Mate2.Pos != 250 {
		t.Fatalf("unexpected pair %+v", pairs[0])
	}
}

func TestReconcileNoneWithinBounds(t *testing.T) {
	mate1 := []SeElement{{Pos: 0}}
	mate2 := []SeElement{{Pos: 10000}}
	pairs := Reconcile(mate1, mate2, 50, 300, 50, false)
	if len(pairs) != 0 {
		t.Fatalf("got %d pairs, want 0", len(pairs))
	}
}

func TestBestPairPicksHighestScore(t *testing.T) {
	pairs := []PeElement{
		{Mate1: SeElement{AlnScore: 10}, Mate2: SeElement{AlnScore: 10}},
		{Mate1: SeElement{AlnScore: 20}, Mate2: SeElement{AlnScore: 20}},
	}
	r := BestPair(pairs)
	if r.Best.Score() != 40 {
		t.Fatalf("best score = %d, want 40", r.Best.Score())
	}
}
