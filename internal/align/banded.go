// Package align implements the banded local aligner used to score and
// produce a CIGAR for each surviving seed candidate. It follows the same
// score/pointer-matrix-with-traceback shape as a full Needleman-Wunsch
// aligner, narrowed to a fixed-width band around the seed diagonal and
// clipped to a local (Smith-Waterman-style) alignment: negative-scoring
// prefixes and suffixes are soft-clipped rather than forced into the
// alignment.
package align

import "fmt"

// Op is a single CIGAR operation kind.
type Op byte

const (
	OpMatch    Op = 'M' // match or mismatch, consumes one base of each
	OpInsert   Op = 'I' // base present in the read, absent from the genome
	OpDelete   Op = 'D' // base present in the genome, absent from the read
	OpSoftClip Op = 'S' // query base outside the aligned span
)

// CigarUnit is one run-length-encoded CIGAR element.
type CigarUnit struct {
	Op  Op
	Len int
}

// Options holds the scoring scheme and band width. Defaults mirror the
// bisulfite aligner's scoring: a generous match bonus, a steep mismatch
// penalty (mismatches are rare once a candidate clears the Hamming
// pre-filter, so paying for them is cheap), and a symmetric gap penalty.
type Options struct {
	MatchScore    int
	MismatchScore int
	GapScore      int
	MaxOffDiag    int // band half-width, excluding the diagonal itself
}

// DefaultOptions matches the scoring used by the reference implementation
// this package's semantics are drawn from.
var DefaultOptions = Options{
	MatchScore:    2,
	MismatchScore: -6,
	GapScore:      -5,
	MaxOffDiag:    2,
}

// Result is the outcome of a single banded alignment.
type Result struct {
	Score        int
	RefStart     int // genome offset of the first aligned (non-clipped) base
	Cigar        []CigarUnit
	EditDistance int // mismatches + inserted bases + deleted bases, i.e. NM
}

// Aligner holds reusable scratch matrices so a worker goroutine can align
// many candidates without reallocating per call.
type Aligner struct {
	Opts Options

	scores    []int
	pointer   []pointer
	bandWidth int
}

type pointer uint8

const (
	ptrNone pointer = iota
	ptrDiag
	ptrUp
	ptrLeft
)

// NewAligner constructs an Aligner with the given options.
func NewAligner(opts Options) *Aligner {
	return &Aligner{Opts: opts, bandWidth: 2*opts.MaxOffDiag + 1}
}

// idx maps a (row, column-within-band) pair to a flat matrix index.
func (a *Aligner) idx(row, col int) int {
	return row*a.bandWidth + col
}

// baseMatch reports whether a read code and a genome code are compatible,
// the same bit-AND comparator internal/hamming uses: a read code carries
// two set bits under the bisulfite-tolerant richness (e.g. T also accepts
// C), a genome code carries exactly one, and they're compatible whenever
// the AND is non-zero.
func baseMatch(readCode, genomeCode uint8) bool {
	return readCode&genomeCode != 0
}

// Align computes a banded local alignment of query against the genome
// window ref, both given as fourbit codes (query the read's richness-aware
// codes, ref the genome's canonical codes) so the match test stays
// bisulfite-tolerant instead of comparing raw bases. refStart is ref's
// absolute genome offset, added to the result's RefStart so callers get an
// absolute coordinate.
//
// The band tracks the seed diagonal: column col of row (query base) row
// corresponds to genome offset row-1-half+col, where half is the band's
// half-width. Under that mapping the move (row-1,col)->(row,col) advances
// both the query base and the genome offset by one — a match or mismatch —
// while (row,col-1)->(row,col) advances only the genome offset — a
// deletion — and (row-1,col+1)->(row,col) advances only the query base — an
// insertion.
func (a *Aligner) Align(query, ref []uint8, refStart int) Result {
	bw := a.bandWidth
	qn := len(query)
	nCells := (qn + 1) * bw
	if cap(a.scores) < nCells {
		a.scores = make([]int, nCells)
		a.pointer = make([]pointer, nCells)
	}
	scores := a.scores[:nCells]
	ptrs := a.pointer[:nCells]
	for i := range scores {
		scores[i] = 0
		ptrs[i] = ptrNone
	}

	half := (bw - 1) / 2
	bestScore := 0
	bestRow, bestCol := 0, half

	for row := 1; row <= qn; row++ {
		// Column 0 of the band corresponds to ref offset (row-1-half).
		for col := 0; col < bw; col++ {
			refPos := row - 1 - half + col
			if refPos < 0 || refPos >= len(ref) {
				continue
			}
			var diag, up, left int
			// diag: (row-1,col) is the predecessor that consumed one query
			// base and one ref base to reach this cell.
			diag = scores[a.idx(row-1, col)]
			// up: (row-1,col+1) consumed one query base and no ref base
			// (insertion); only valid if col+1 stays inside the band.
			if col+1 < bw {
				up = scores[a.idx(row-1, col+1)] + a.Opts.GapScore
			}
			// left: (row,col-1) consumed one ref base and no query base
			// (deletion).
			if col > 0 {
				left = scores[a.idx(row, col-1)] + a.Opts.GapScore
			}
			match := a.Opts.MismatchScore
			if baseMatch(query[row-1], ref[refPos]) {
				match = a.Opts.MatchScore
			}
			diagScore := diag + match

			best := 0
			bp := ptrNone
			if diagScore > best {
				best, bp = diagScore, ptrDiag
			}
			if up > best {
				best, bp = up, ptrUp
			}
			if left > best {
				best, bp = left, ptrLeft
			}
			scores[a.idx(row, col)] = best
			ptrs[a.idx(row, col)] = bp

			if best > bestScore {
				bestScore = best
				bestRow, bestCol = row, col
			}
		}
	}

	cigar, refStartRow, editDistance := a.traceback(scores, ptrs, query, ref, bw, half, qn, bestRow, bestCol)
	return Result{
		Score:        bestScore,
		RefStart:     refStart + refStartRow,
		Cigar:        cigar,
		EditDistance: editDistance,
	}
}

// traceback walks back from (row,col) while the score is positive,
// recording ops, then reverses and compresses them into run-length units.
// The query bases before the traceback's stopping row and after the
// starting row are soft-clipped, so the returned CIGAR always accounts for
// every query base. It also returns the ref-relative row at which the
// traced alignment starts (used to compute the absolute RefStart) and the
// edit distance (mismatches plus inserted and deleted bases) along the
// traced path.
func (a *Aligner) traceback(scores []int, ptrs []pointer, query, ref []uint8, bw, half, qn, row, col int) ([]CigarUnit, int, int) {
	var ops []Op
	if tailClip := qn - row; tailClip > 0 {
		for i := 0; i < tailClip; i++ {
			ops = append(ops, OpSoftClip)
		}
	}

	var editDistance int
	for row > 0 && scores[a.idx(row, col)] > 0 {
		switch ptrs[a.idx(row, col)] {
		case ptrDiag:
			refPos := row - 1 - half + col
			if !baseMatch(query[row-1], ref[refPos]) {
				editDistance++
			}
			ops = append(ops, OpMatch)
			row--
		case ptrUp:
			editDistance++
			ops = append(ops, OpInsert)
			row--
			col++
		case ptrLeft:
			editDistance++
			ops = append(ops, OpDelete)
			col--
		default:
			row = 0
		}
	}

	if row > 0 {
		for i := 0; i < row; i++ {
			ops = append(ops, OpSoftClip)
		}
	}

	refStartRow := row - half + col
	if refStartRow < 0 {
		refStartRow = 0
	}
	reverse(ops)
	return compress(ops), refStartRow, editDistance
}

func reverse(ops []Op) {
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
}

func compress(ops []Op) []CigarUnit {
	if len(ops) == 0 {
		return nil
	}
	units := make([]CigarUnit, 0, len(ops))
	cur := CigarUnit{Op: ops[0], Len: 1}
	for _, op := range ops[1:] {
		if op == cur.Op {
			cur.Len++
			continue
		}
		units = append(units, cur)
		cur = CigarUnit{Op: op, Len: 1}
	}
	return append(units, cur)
}

// String renders a CIGAR the way a SAM record expects it, e.g. "5S36M2I".
func String(units []CigarUnit) string {
	if len(units) == 0 {
		return "*"
	}
	s := ""
	for _, u := range units {
		s += fmt.Sprintf("%d%c", u.Len, u.Op)
	}
	return s
}
