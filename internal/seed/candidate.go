package seed

// Index is the two-stage hashed-seed index: Counter[h] and Counter[h+1]
// bound the slice of Positions carrying hash class h over a K-base window,
// and within that bucket positions are ordered ascending by the 1-bit class
// of each of the following S bases, so FindCandidates can binary-search
// each additional offset instead of scanning the whole bucket.
type Index struct {
	K, S      int
	Counter   []uint32 // length 2^K + 1
	Positions []uint32
}

// GenomeClassifier reads the 1-bit class of the genome base at an absolute
// position; it is the seam between this package and the packed genome
// representation (internal/fourbit.Genome plus GenomeClassAt).
type GenomeClassifier func(pos int) uint8

// Bucket returns the position-index range [lo, hi) for hash class h.
func (idx *Index) Bucket(h uint32) (lo, hi int) {
	return int(idx.Counter[h]), int(idx.Counter[h+1])
}

// classAt returns the genome class at offset j past position p, or 0 if
// that offset runs past the end of the reference — positions that run off
// the end sort before any in-bounds class and so get excluded by a later
// narrowing pass, never spuriously retained.
func classAt(positions []uint32, i, j, genomeLen int, genomeClass GenomeClassifier) (cls uint8, inBounds bool) {
	p := int(positions[i]) + j
	if p >= genomeLen {
		return 0, false
	}
	return genomeClass(p), true
}

// lowerBound returns the first index in [lo, hi) whose class at offset j is
// >= want (out-of-bounds positions sort as if class -1, always < want).
func lowerBound(positions []uint32, lo, hi, j, genomeLen int, want uint8, genomeClass GenomeClassifier) int {
	for lo < hi {
		m := (lo + hi) / 2
		cls, ok := classAt(positions, m, j, genomeLen, genomeClass)
		if !ok || cls < want {
			lo = m + 1
		} else {
			hi = m
		}
	}
	return lo
}

// upperBound returns the first index in [lo, hi) whose class at offset j is
// > want.
func upperBound(positions []uint32, lo, hi, j, genomeLen int, want uint8, genomeClass GenomeClassifier) int {
	for lo < hi {
		m := (lo + hi) / 2
		cls, ok := classAt(positions, m, j, genomeLen, genomeClass)
		if !ok || cls <= want {
			lo = m + 1
		} else {
			hi = m
		}
	}
	return lo
}

// FindCandidates narrows [lo, hi) within a hash bucket by binary-searching
// the genome class of each of the next S bases past the seed, using the
// read's own class at that offset as the search key. readClassAt(j) must
// return the 1-bit class of the read base at offset j from the seed start
// (positions are seed start offsets, so j counts from the same origin).
func FindCandidates(positions []uint32, lo, hi, genomeLen, seedLen, s int, readClassAt func(j int) uint8, genomeClass GenomeClassifier) (int, int) {
	for j := seedLen; j < seedLen+s && hi-lo > 1; j++ {
		want := readClassAt(j)
		newLo := lowerBound(positions, lo, hi, j, genomeLen, want, genomeClass)
		newHi := upperBound(positions, newLo, hi, j, genomeLen, want, genomeClass)
		lo, hi = newLo, newHi
	}
	return lo, hi
}
