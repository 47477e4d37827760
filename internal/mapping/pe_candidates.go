package mapping

import (
	"container/heap"
	"sort"

	"github.com/twotwotwo/sorts"
)

// byPos sorts SeElements by ascending genome position; a plain sort.Interface
// so it can go through either sort.Sort or sorts.Quicksort.
type byPos []SeElement

func (s byPos) Len() int           { return len(s) }
func (s byPos) Less(i, j int) bool { return s[i].Pos < s[j].Pos }
func (s byPos) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// parallelSortThreshold is the candidate-count above which the parallel
// quicksort's goroutine overhead pays for itself; below it, a single-
// threaded sort.Sort wins. The default MaxPeCandidates (20) never reaches
// this, but a heap widened with NewPeCandidatesWithCapacity (--max-mates)
// can.
const parallelSortThreshold = 512

// MaxPeCandidates bounds how many seed hits are kept per mate before the
// worst one starts getting evicted; keeps PE mate search memory and time
// bounded even for repetitive reads.
const MaxPeCandidates = 20

// PeCandidates is a bounded max-heap of SeElement hits for one mate of a
// pair, ordered so the worst (highest mismatch count) surfaces at the root
// and is the first one evicted when a better candidate arrives and the
// heap is already full.
type PeCandidates struct {
	items    []SeElement
	capacity int
}

// NewPeCandidates returns an empty candidate heap bounded at MaxPeCandidates.
func NewPeCandidates() *PeCandidates {
	return NewPeCandidatesWithCapacity(MaxPeCandidates)
}

// NewPeCandidatesWithCapacity returns an empty candidate heap bounded at
// capacity, for callers (e.g. --max-mates) that widen the bound for highly
// repetitive genomes where a 20-candidate cap discards real pairings too
// eagerly.
func NewPeCandidatesWithCapacity(capacity int) *PeCandidates {
	if capacity < 1 {
		capacity = MaxPeCandidates
	}
	return &PeCandidates{items: make([]SeElement, 0, capacity), capacity: capacity}
}

func (h *PeCandidates) Len() int { return len(h.items) }
func (h *PeCandidates) Less(i, j int) bool {
	// Max-heap by mismatch count: a strictly worse (higher-diffs) element
	// sorts "less" so it floats to the root.
	return h.items[i].Diffs > h.items[j].Diffs
}
func (h *PeCandidates) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *PeCandidates) Push(x any)    { h.items = append(h.items, x.(SeElement)) }
func (h *PeCandidates) Pop() any {
	old := h.items
	n := len(old)
	last := old[n-1]
	h.items = old[:n-1]
	return last
}

// UpdateByMismatch offers a candidate to the heap: it is kept outright if
// there is room, or it replaces the current worst entry if it beats it and
// the heap is already at capacity.
func (h *PeCandidates) UpdateByMismatch(cand SeElement) {
	if !cand.Valid() {
		return
	}
	for _, e := range h.items {
		if e.SameLocus(cand) {
			return
		}
	}
	if h.Len() < h.capacity {
		heap.Push(h, cand)
		return
	}
	if cand.BetterHitThan(h.items[0]) {
		h.items[0] = cand
		heap.Fix(h, 0)
	}
}

// SureAmbig reports whether, given how many seed attempts remain, the
// heap already holds enough equally-good candidates that the read cannot
// possibly resolve to a single best locus. A cheap short-circuit so the
// seed driver can stop early on hopelessly repetitive reads.
func (h *PeCandidates) SureAmbig(seedsRemaining int) bool {
	if h.Len() < 2 {
		return false
	}
	best := h.items[0].Diffs
	for _, e := range h.items {
		if e.Diffs < best {
			best = e.Diffs
		}
	}
	count := 0
	for _, e := range h.items {
		if e.Diffs == best {
			count++
		}
	}
	return count >= 2 && seedsRemaining <= 0
}

// PrepareForMating sorts the collected candidates by genome position and
// removes exact duplicates, the ordering Reconcile's two-pointer sweep
// over both mates' candidate lists requires.
func (h *PeCandidates) PrepareForMating() []SeElement {
	items := make([]SeElement, len(h.items))
	copy(items, h.items)
	if len(items) >= parallelSortThreshold {
		sorts.Quicksort(byPos(items))
	} else {
		sort.Sort(byPos(items))
	}
	return dedupByPos(items)
}

func dedupByPos(items []SeElement) []SeElement {
	if len(items) == 0 {
		return items
	}
	out := items[:1]
	for _, e := range items[1:] {
		last := out[len(out)-1]
		if e.Pos == last.Pos && e.ARich == last.ARich && e.RC == last.RC {
			continue
		}
		out = append(out, e)
	}
	return out
}
