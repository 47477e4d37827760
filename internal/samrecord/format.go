package samrecord

import (
	"fmt"
	"strings"

	"github.com/masarunakajima/abismal/internal/align"
)

// Record is one output line's fields, kept structured until the caller
// joins them — makes both testing and the eventual tab-join trivial.
type Record struct {
	QName string
	Flag  int
	RName string
	Pos   int // 1-based leftmost mapped position
	MAPQ  int
	CIGAR string
	RNext string
	PNext int
	TLen  int
	Seq   string
	Qual  string
	NM    int16
	CV    byte // 'T' or 'A', the richness the read mapped under
}

// String joins the record into a tab-separated output line.
func (r Record) String() string {
	fields := []string{
		r.QName,
		fmt.Sprintf("%d", r.Flag),
		r.RName,
		fmt.Sprintf("%d", r.Pos),
		fmt.Sprintf("%d", r.MAPQ),
		r.CIGAR,
		r.RNext,
		fmt.Sprintf("%d", r.PNext),
		fmt.Sprintf("%d", r.TLen),
		r.Seq,
		r.Qual,
		fmt.Sprintf("NM:i:%d", r.NM),
		fmt.Sprintf("CV:A:%c", r.CV),
	}
	return strings.Join(fields, "\t")
}

// richnessTag returns the CV tag value for a read's richness.
func richnessTag(aRich bool) byte {
	if aRich {
		return 'A'
	}
	return 'T'
}

// FormatSE builds the output record for a single-end hit. pos is the
// 0-based chromosome-local genome position; reverse sets FlagReverse for a
// hit on the reverse strand.
func FormatSE(qname, rname string, pos int, cigar []align.CigarUnit, nm int16, aRich, reverse bool, seq, qual string) Record {
	flag := 0
	if reverse {
		flag |= FlagReverse
	}
	return Record{
		QName: qname,
		Flag:  flag,
		RName: rname,
		Pos:   pos + 1,
		MAPQ:  MAPQPlaceholder,
		CIGAR: align.String(cigar),
		RNext: "*",
		PNext: 0,
		TLen:  0,
		Seq:   seq,
		Qual:  qual,
		NM:    nm,
		CV:    richnessTag(aRich),
	}
}

// FormatPE builds the pair of output records for a PE fragment. pos1/pos2
// are 0-based chromosome-local positions; reverse1/reverse2 are each
// mate's own strand. mate1IsUpstream orients the TLEN sign.
func FormatPE(qname, rname string, pos1, pos2 int, cigar1, cigar2 []align.CigarUnit, nm1, nm2 int16, aRich, reverse1, reverse2, mate1IsUpstream bool, fragLen int, seq1, qual1, seq2, qual2 string) (Record, Record) {
	tlen1, tlen2 := TLEN(fragLen, mate1IsUpstream)

	flag1 := FlagPaired | FlagProperPair | FlagFirstInPair
	flag2 := FlagPaired | FlagProperPair | FlagSecondInPair
	if reverse1 {
		flag1 |= FlagReverse
		flag2 |= FlagMateReverse
	}
	if reverse2 {
		flag2 |= FlagReverse
		flag1 |= FlagMateReverse
	}

	r1 := Record{
		QName: qname, Flag: flag1, RName: rname, Pos: pos1 + 1, MAPQ: MAPQPlaceholder,
		CIGAR: align.String(cigar1), RNext: "=", PNext: pos2 + 1, TLen: tlen1,
		Seq: seq1, Qual: qual1, NM: nm1, CV: richnessTag(aRich),
	}
	r2 := Record{
		QName: qname, Flag: flag2, RName: rname, Pos: pos2 + 1, MAPQ: MAPQPlaceholder,
		CIGAR: align.String(cigar2), RNext: "=", PNext: pos1 + 1, TLen: tlen2,
		Seq: seq2, Qual: qual2, NM: nm2, CV: richnessTag(aRich),
	}
	return r1, r2
}
