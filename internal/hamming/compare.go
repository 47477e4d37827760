// Package hamming implements the bounded mismatch comparator that screens
// seed candidates before they reach the banded aligner: a byte-wise AND
// between a read's packed layout and the genome's packed bytes, counted
// through a precomputed lookup table and abandoned as soon as a caller-
// supplied cutoff is reached.
package hamming

// mismatchLookup[x] is the number of nibble-pairs in x (the AND of a read
// byte and a genome byte) that are zero, i.e. the number of base mismatches
// that byte represents. Built once at package init instead of by hand,
// which is the idiomatic way to get a "compile-time" table in Go.
var mismatchLookup [256]uint8

func init() {
	for x := 0; x < 256; x++ {
		var d uint8
		if x&0x0f == 0 {
			d++
		}
		if x&0xf0 == 0 {
			d++
		}
		mismatchLookup[x] = d
	}
}

// Compare counts mismatches between a read's packed layout and the aligned
// genome bytes, stopping early once the running count reaches cutoff. Once
// stopped, the returned count is cutoff or cutoff+1 (a byte holds two bases):
// callers only care whether a candidate clears the threshold, not the exact
// excess.
//
// genomeBytes must have at least len(readLayout) bytes; callers are
// responsible for bounds (a candidate whose seed runs off either end of the
// reference is filtered out before reaching here).
func Compare(readLayout, genomeBytes []byte, cutoff int16) int16 {
	var mismatches int16
	for i, rb := range readLayout {
		mismatches += int16(mismatchLookup[rb&genomeBytes[i]])
		if mismatches >= cutoff {
			return mismatches
		}
	}
	return mismatches
}
