package mapping

// Reconcile pairs mate1 and mate2 candidate hits into fragments whose
// outer span falls within [minFragLen, maxFragLen]. Both slices must
// already be sorted ascending by Pos (PeCandidates.PrepareForMating does
// this). It runs as a two-pointer sweep: for each mate1 candidate, advance
// a window over mate2 candidates that could possibly pair with it, rather
// than a full cross product, since a repetitive read can carry many
// candidates per mate.
//
// swapEnds handles the orientation where mate2 maps upstream of mate1 (the
// library's other valid orientation): when true, the roles of "upstream"
// and "downstream" in the fragment-length check are swapped, but the
// returned PeElement always reports Mate1/Mate2 in their original roles.
func Reconcile(mate1, mate2 []SeElement, minFragLen, maxFragLen, readLen2 int, swapEnds bool) []PeElement {
	var out []PeElement
	lo := 0
	for _, m1 := range mate1 {
		for lo < len(mate2) && mate2[lo].Pos < m1.Pos && fragmentLen(m1, mate2[lo], readLen2, swapEnds) > maxFragLen {
			lo++
		}
		for j := lo; j < len(mate2); j++ {
			m2 := mate2[j]
			fl := fragmentLen(m1, m2, readLen2, swapEnds)
			if fl > maxFragLen {
				break
			}
			if fl < minFragLen {
				continue
			}
			out = append(out, PeElement{Mate1: m1, Mate2: m2})
		}
	}
	return out
}

// fragmentLen computes the outer-coordinate span for a candidate pairing
// under the given orientation, or a sentinel larger than any real fragment
// if the pairing is geometrically impossible (mate2 upstream of mate1 in
// the non-swapped orientation, or vice versa).
func fragmentLen(m1, m2 SeElement, readLen2 int, swapEnds bool) int {
	upstream, downstream := m1, m2
	if swapEnds {
		upstream, downstream = m2, m1
	}
	if downstream.Pos < upstream.Pos {
		return 1 << 30
	}
	return int(downstream.Pos) + readLen2 - int(upstream.Pos)
}

// BestPair reduces the reconciled pairings down to a PeResult, folding
// each by alignment score. Callers are expected to have already run each
// pairing through the banded aligner and set AlnScore on both mates before
// calling this; pairings are otherwise indistinguishable from one another.
func BestPair(pairs []PeElement) PeResult {
	var r PeResult
	for _, p := range pairs {
		r.UpdateByScore(p)
	}
	return r
}
