package mapping

import "math"

// SeResult tracks the best and second-best single-end hit seen across all
// seeds and strand/richness combinations tried for one read. Mirrors the
// best/second-best bookkeeping a seed-and-extend mapper needs to decide
// both "where did this read map" and "how sure are we".
type SeResult struct {
	Best       SeElement
	SecondBest SeElement
}

// NewSeResult returns a bookkeeper with no hits recorded yet.
func NewSeResult() SeResult {
	r := SeResult{}
	r.Best.Reset()
	r.SecondBest.Reset()
	return r
}

// UpdateByMismatch folds a freshly Hamming-scored candidate into the
// best/second-best slots. A candidate at the same locus as the current
// best is never counted twice — it would otherwise look like ambiguity
// between a hit and itself.
func (r *SeResult) UpdateByMismatch(cand SeElement) {
	if !cand.Valid() {
		return
	}
	if cand.SameLocus(r.Best) {
		return
	}
	if cand.BetterHitThan(r.Best) {
		r.SecondBest = r.Best
		r.Best = cand
		return
	}
	if cand.SameLocus(r.SecondBest) {
		return
	}
	if cand.BetterHitThan(r.SecondBest) {
		r.SecondBest = cand
	}
}

// UpdateByScore folds a freshly aligned candidate in by alignment score
// instead of mismatch count, used once candidates have gone through the
// banded aligner.
func (r *SeResult) UpdateByScore(cand SeElement) {
	if !cand.Valid() {
		return
	}
	if cand.SameLocus(r.Best) {
		if cand.BetterAlnThan(r.Best) {
			r.Best = cand
		}
		return
	}
	if cand.BetterAlnThan(r.Best) {
		r.SecondBest = r.Best
		r.Best = cand
		return
	}
	if cand.SameLocus(r.SecondBest) {
		if cand.BetterAlnThan(r.SecondBest) {
			r.SecondBest = cand
		}
		return
	}
	if cand.BetterAlnThan(r.SecondBest) {
		r.SecondBest = cand
	}
}

// GetCutoff returns the mismatch count that made the current second-best a
// contender; the seed driver never needs to keep a candidate worse than
// this, since it can no longer become best or second-best.
func (r SeResult) GetCutoff() int16 {
	if !r.SecondBest.Valid() {
		return InvalidDiffs
	}
	return r.SecondBest.Diffs
}

// AmbigDiffs reports ambiguity the way the mismatch-count bookkeeping does:
// true when a second-best hit exists with the same mismatch count as best.
func (r SeResult) AmbigDiffs() bool {
	return r.SecondBest.Valid() && r.SecondBest.Diffs == r.Best.Diffs
}

// Ambig reports ambiguity from the alignment-score gap between best and
// second-best, a finer-grained signal than AmbigDiffs once both candidates
// have been aligned. Exposed for callers that want it; the standard output
// path gates on AmbigDiffs per read-mapping convention.
func (r SeResult) Ambig() bool {
	if !r.SecondBest.Valid() {
		return false
	}
	return r.Best.AlnScore-r.SecondBest.AlnScore < ambigScoreGap
}

// ambigScoreGap is the minimum alignment-score lead the best hit needs over
// the second-best to be considered unambiguous.
const ambigScoreGap = 1

// MAPQ computes a MAPQ-like confidence score from the best/second-best
// alignment-score gap, exposed for callers other than the mandated output
// record (which always reports the literal placeholder value instead).
func (r SeResult) MAPQ() int {
	if !r.Best.Valid() {
		return 0
	}
	if !r.SecondBest.Valid() {
		return 255
	}
	gap := float64(r.Best.AlnScore - r.SecondBest.AlnScore)
	if gap <= 0 {
		return 0
	}
	q := int(math.Round(gap * 10))
	if q > 255 {
		q = 255
	}
	return q
}

// ShouldReport reports whether Best is usable as the read's final
// placement: a valid hit, optionally excluding ambiguous ones.
func (r SeResult) ShouldReport(allowAmbig bool) bool {
	if !r.Best.Valid() {
		return false
	}
	if !allowAmbig && r.AmbigDiffs() {
		return false
	}
	return true
}
