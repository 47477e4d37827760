package fourbit

// PackNibbles packs a sequence of 4-bit codes two per byte: the low nibble
// of byte i holds codes[2i], the high nibble holds codes[2i+1]. An odd
// number of codes gets a trailing pad nibble (matches everything) in the
// final byte's high position.
func PackNibbles(codes []uint8) []byte {
	n := (len(codes) + 1) / 2
	packed := make([]byte, n)
	for i := range packed {
		lo := codes[2*i]
		hi := padNibble
		if 2*i+1 < len(codes) {
			hi = codes[2*i+1]
		}
		packed[i] = lo | hi<<4
	}
	return packed
}

// Genome holds a reference sequence packed two bases per byte in the
// canonical (non-bisulfite) code.
type Genome struct {
	Packed []byte
	Len    int
}

// PackGenome encodes and packs a raw ASCII reference sequence.
func PackGenome(seq []byte) Genome {
	codes := make([]uint8, len(seq))
	for i, b := range seq {
		codes[i] = EncodeGenomeBase(b)
	}
	return Genome{Packed: PackNibbles(codes), Len: len(seq)}
}

// Base returns the canonical 4-bit code at genome position pos.
func (g Genome) Base(pos int) uint8 {
	b := g.Packed[pos>>1]
	if pos&1 == 0 {
		return b & 0x0f
	}
	return b >> 4
}

// Bytes returns the packed byte slice starting at the byte covering pos,
// the layout hamming.Compare expects when scanning forward from pos.
func (g Genome) Bytes(pos int) []byte {
	return g.Packed[pos>>1:]
}
