package samrecord

import "github.com/masarunakajima/abismal/internal/align"

// FragmentCase classifies how two mates' aligned spans relate to each
// other, mirroring the original's three-way split of PE fragment
// geometries (long fragment with a gap, truncated-head merge, dovetailed
// overlap) so TLEN and CIGARs stay correct for short-insert libraries
// where the mates overlap or one reads into the other's adapter.
type FragmentCase int

const (
	// FragLong: the fragment is at least as long as either mate; the
	// mates don't overlap (there may be an unsequenced gap between them).
	FragLong FragmentCase = iota
	// FragOverlapHead: the fragment is shorter than one mate but at least
	// as long as the other; the mates overlap partway.
	FragOverlapHead
	// FragDovetail: the fragment is shorter than both mates; the mates
	// read past each other's start (dovetail) and must be truncated to
	// the actual fragment span.
	FragDovetail
)

// Classify determines the fragment geometry from the two mates' read
// lengths and the outer fragment length.
func Classify(fragLen, readLen1, readLen2 int) FragmentCase {
	longer := readLen1
	if readLen2 > longer {
		longer = readLen2
	}
	shorter := readLen1
	if readLen2 < shorter {
		shorter = readLen2
	}
	switch {
	case fragLen >= longer:
		return FragLong
	case fragLen >= shorter:
		return FragOverlapHead
	default:
		return FragDovetail
	}
}

// TLEN returns the signed template length for mate1 given the fragment
// span, matching SAM convention: positive for the leftmost mate, negative
// for its partner.
func TLEN(fragLen int, mate1IsUpstream bool) (tlen1, tlen2 int) {
	if mate1IsUpstream {
		return fragLen, -fragLen
	}
	return -fragLen, fragLen
}

// TruncateToFragment clips a mate's CIGAR (already soft-clipped by
// alignment) so it never extends past the fragment's outer boundary,
// converting any bases beyond that boundary to soft clips. This is the
// FragOverlapHead / FragDovetail adjustment: a short insert means part of
// the read sequenced into the adapter or into its mate, and those trailing
// bases should be clipped rather than reported as if they aligned.
func TruncateToFragment(cigar []align.CigarUnit, maxRefConsumed int) []align.CigarUnit {
	var out []align.CigarUnit
	consumed := 0
	for _, u := range cigar {
		if consumed >= maxRefConsumed {
			out = appendClip(out, u.Len)
			continue
		}
		refLen := refConsumingLen(u)
		if refLen == 0 {
			out = append(out, u)
			continue
		}
		remaining := maxRefConsumed - consumed
		if refLen <= remaining {
			out = append(out, u)
			consumed += refLen
			continue
		}
		// u straddles the boundary: keep the in-bounds prefix, clip rest.
		kept := u
		kept.Len = remaining
		out = append(out, kept)
		out = appendClip(out, u.Len-remaining)
		consumed = maxRefConsumed
	}
	return out
}

func refConsumingLen(u align.CigarUnit) int {
	switch u.Op {
	case align.OpMatch, align.OpDelete:
		return u.Len
	default:
		return 0
	}
}

func appendClip(units []align.CigarUnit, n int) []align.CigarUnit {
	if n <= 0 {
		return units
	}
	if len(units) > 0 && units[len(units)-1].Op == align.OpSoftClip {
		units[len(units)-1].Len += n
		return units
	}
	return append(units, align.CigarUnit{Op: align.OpSoftClip, Len: n})
}
