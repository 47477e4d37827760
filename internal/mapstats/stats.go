// Package mapstats accumulates run-level mapping statistics and renders
// the .mapstats sidecar written next to the output file, reproducing the
// nested, indented text layout the original reference aligner's
// se_map_stats/pe_map_stats::tostring() produce.
package mapstats

import "fmt"

// SE accumulates single-end run statistics.
type SE struct {
	TotalReads int64
	Unique     int64
	Ambiguous  int64
	Unmapped   int64
	Skipped    int64
}

// Update folds one read's outcome into the running totals.
func (s *SE) Update(unique, ambiguous, skipped bool) {
	s.TotalReads++
	switch {
	case skipped:
		s.Skipped++
	case ambiguous:
		s.Ambiguous++
	case unique:
		s.Unique++
	default:
		s.Unmapped++
	}
}

func pct(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

// String renders the sidecar text for a single-end run.
func (s SE) String() string {
	mapped := s.Unique + s.Ambiguous
	return fmt.Sprintf(
		"total_reads: %d\n"+
			"mapped:\n"+
			"  total: %d\n"+
			"  percent_mapped: %.2f\n"+
			"  unique: %d\n"+
			"  percent_unique: %.2f\n"+
			"  ambiguous: %d\n"+
			"  percent_ambiguous: %.2f\n"+
			"unmapped: %d\n"+
			"percent_unmapped: %.2f\n"+
			"skipped: %d\n"+
			"percent_skipped: %.2f\n",
		s.TotalReads,
		mapped, pct(mapped, s.TotalReads),
		s.Unique, pct(s.Unique, s.TotalReads),
		s.Ambiguous, pct(s.Ambiguous, s.TotalReads),
		s.Unmapped, pct(s.Unmapped, s.TotalReads),
		s.Skipped, pct(s.Skipped, s.TotalReads),
	)
}

// PE accumulates paired-end run statistics; each "read" here is a
// fragment (a mate pair), matching the original's pair-counted
// percentages rather than per-mate ones.
type PE struct {
	SE
	MatesUnique int64 // fragments resolved via single-mate fallback
}

// UpdateMateFallback records a fragment resolved by falling back to one
// mate's best single-end hit rather than a reconciled pair.
func (p *PE) UpdateMateFallback() {
	p.MatesUnique++
}

// String renders the sidecar text for a paired-end run.
func (p PE) String() string {
	return p.SE.String() + fmt.Sprintf(
		"mate_fallback:\n"+
			"  total: %d\n"+
			"  percent_of_mapped: %.2f\n",
		p.MatesUnique, pct(p.MatesUnique, p.Unique+p.Ambiguous),
	)
}
