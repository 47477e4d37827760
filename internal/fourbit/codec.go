// Package fourbit implements the active-bit four-base encoding used
// throughout the mapper: one bit per base (A=0001, C=0010, G=0100, T=1000),
// packed two bases per byte, so that a byte-wise AND between a read byte and
// a genome byte is zero exactly on a mismatch. Read bytes additionally carry
// a bisulfite-tolerant code (T-rich or A-rich) that sets two bits instead of
// one, letting the same AND comparator absorb a C->T or G->A conversion.
package fourbit

// Genome base codes. N and any other byte encode to 0, which mismatches
// every base (0 & anything == 0).
const (
	A uint8 = 1 << iota
	C
	G
	T
)

// encodeGenome maps an ASCII base to its canonical genome code.
var encodeGenome [256]uint8

// encodeTRich maps an ASCII base to its T-rich read code. T accepts T or C
// in the genome (the bisulfite C->T tolerance); A, C, G are exact.
var encodeTRich [256]uint8

// encodeARich maps an ASCII base to its A-rich read code. A accepts A or G
// in the genome (the bisulfite G->A tolerance on the opposite strand).
var encodeARich [256]uint8

func init() {
	set := func(table *[256]uint8, upper, lower byte, code uint8) {
		table[upper] = code
		table[lower] = code
	}
	set(&encodeGenome, 'A', 'a', A)
	set(&encodeGenome, 'C', 'c', C)
	set(&encodeGenome, 'G', 'g', G)
	set(&encodeGenome, 'T', 't', T)

	set(&encodeTRich, 'A', 'a', A)
	set(&encodeTRich, 'C', 'c', C)
	set(&encodeTRich, 'G', 'g', G)
	set(&encodeTRich, 'T', 't', T|C) // T tolerates C

	set(&encodeARich, 'A', 'a', A|G) // A tolerates G
	set(&encodeARich, 'C', 'c', C)
	set(&encodeARich, 'G', 'g', G)
	set(&encodeARich, 'T', 't', T)
}

// EncodeGenomeBase returns the canonical 4-bit code for a reference base.
func EncodeGenomeBase(b byte) uint8 { return encodeGenome[b] }

// EncodeTRichBase returns the T-rich 4-bit code for a read base.
func EncodeTRichBase(b byte) uint8 { return encodeTRich[b] }

// EncodeARichBase returns the A-rich 4-bit code for a read base.
func EncodeARichBase(b byte) uint8 { return encodeARich[b] }

// EncodeReadBase dispatches on richness, a small convenience for call sites
// that decide richness dynamically (e.g. the seed driver's strand loop).
func EncodeReadBase(b byte, aRich bool) uint8 {
	if aRich {
		return encodeARich[b]
	}
	return encodeTRich[b]
}

// padNibble fills an unused nibble slot so it matches any genomic base.
const padNibble uint8 = 0x0f
