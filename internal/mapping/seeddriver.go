package mapping

import (
	"github.com/masarunakajima/abismal/internal/fourbit"
	"github.com/masarunakajima/abismal/internal/genome"
	"github.com/masarunakajima/abismal/internal/hamming"
	"github.com/masarunakajima/abismal/internal/seed"
)

// DriverOptions configures the two-stage seed search.
type DriverOptions struct {
	SeedLen        int     // K, the hashed-seed window length
	NumShifts      int     // how many seed offsets the specific stage tries
	MaxCandidates  int     // a bucket wider than this is skipped as unseedable
	InvalidHitFrac float64 // fraction of read length allowed as mismatches
}

// DefaultDriverOptions are reasonable defaults for short Illumina-style
// reads; callers building a real index pick SeedLen to match it.
var DefaultDriverOptions = DriverOptions{
	SeedLen:        12,
	NumShifts:      5,
	MaxCandidates:  2000,
	InvalidHitFrac: 0.1,
}

// invalidDiffsCutoff returns the mismatch budget for a read of readLen
// bases: floor(readLen * frac), never negative. For very short reads this
// can legitimately floor to zero, meaning no hit is ever valid.
func invalidDiffsCutoff(readLen int, frac float64) int16 {
	d := int16(float64(readLen) * frac)
	if d < 0 {
		d = 0
	}
	return d
}

// seedOffsets returns the specific stage's seed start offsets, from 0 up to
// the last seedable start at a stride of span/(numShifts-1) (at least 1).
// That is exactly numShifts offsets when the span divides evenly; otherwise
// the count can be higher or lower (e.g. 6 offsets for a span of 10 and
// numShifts 5).
func seedOffsets(readLen, seedLen, numShifts int) []int {
	limit := readLen - seedLen
	if limit <= 0 {
		return []int{0}
	}
	if numShifts <= 1 {
		return []int{0}
	}
	step := limit / (numShifts - 1)
	if step < 1 {
		step = 1
	}
	offsets := make([]int, 0, numShifts)
	for off := 0; off <= limit; off += step {
		offsets = append(offsets, off)
	}
	return offsets
}

// ProcessSeeds runs the two-stage seed search for one encoded read against
// one strand/richness combination, feeding every candidate that clears the
// Hamming pre-filter into heap. It mirrors the specific-then-sensitive
// staging: the specific stage tries NumShifts offsets spread across the
// read; if none of them turn up a usable seed (every bucket was too wide
// to search), the sensitive stage falls back to a single seed anchored at
// the read's start. Candidates collected in the specific stage are never
// discarded before the sensitive stage runs, so a sensitive-stage bucket
// overflow still leaves the specific stage's survivors in heap.
func ProcessSeeds(idx *genome.Index, read fourbit.Read, aRich, rc bool, opts DriverOptions, heap *PeCandidates) {
	readLen := read.Len
	budget := invalidDiffsCutoff(readLen, opts.InvalidHitFrac)

	foundGoodSeed := false
	for _, off := range seedOffsets(readLen, opts.SeedLen, opts.NumShifts) {
		if off+opts.SeedLen > readLen {
			continue
		}
		if trySeed(idx, read, off, readLen, budget, opts, aRich, rc, heap) {
			foundGoodSeed = true
		}
	}

	if !foundGoodSeed {
		trySeed(idx, read, 0, readLen, budget, opts, aRich, rc, heap)
	}
}

// trySeed hashes the K-mer at offset off, narrows the bucket with
// FindCandidates, and Hamming-screens every surviving candidate into heap.
// It returns whether the bucket was usable at all (narrow enough to
// search), which the caller uses to decide whether the sensitive stage
// needs to run.
func trySeed(idx *genome.Index, read fourbit.Read, off, readLen int, budget int16, opts DriverOptions, aRich, rc bool, heap *PeCandidates) bool {
	k := opts.SeedLen
	if off+k > readLen {
		return false
	}
	window := make([]byte, k)
	for i := 0; i < k; i++ {
		window[i] = classLetter(read.Seed[off+i])
	}
	h := seed.Hash(window, k)
	lo, hi := idx.Seed.Bucket(h)
	if hi <= lo {
		return false
	}

	s := idx.Seed.S
	readClassAt := func(j int) uint8 {
		p := off + j
		if p >= readLen {
			return 0
		}
		return classOfCode(read.Seed[p])
	}
	lo, hi = seed.FindCandidates(idx.Seed.Positions, lo, hi, idx.Genome.Len, k, s, readClassAt, idx.GenomeClassAt)
	if hi-lo > opts.MaxCandidates {
		return false
	}

	for i := lo; i < hi; i++ {
		seedPos := int(idx.Seed.Positions[i])
		genomePos := seedPos - off
		if genomePos < 0 || genomePos+readLen > idx.Genome.Len {
			continue
		}
		layout := read.Layout(genomePos)
		d := hamming.Compare(layout, idx.Genome.Bytes(genomePos), budget)
		if d >= budget {
			continue
		}
		heap.UpdateByMismatch(SeElement{
			Pos:   uint32(genomePos),
			Diffs: d,
			ARich: aRich,
			RC:    rc,
		})
	}
	return true
}

// classLetter and classOfCode bridge fourbit's per-mode nibble codes back
// to the mode-independent base classification internal/seed works in: a
// code with its C or T bit set belongs to the {C,T} class regardless of
// which richness produced it.
func classLetter(code uint8) byte {
	if code&fourbit.C != 0 || code&fourbit.T != 0 {
		return 'C'
	}
	return 'A'
}

func classOfCode(code uint8) uint8 {
	if classLetter(code) == 'C' {
		return 1
	}
	return 0
}
