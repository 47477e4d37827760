// Package genome holds the read-only index artifact the mapper loads at
// startup: the packed reference sequence, the hashed-seed position index
// (internal/seed), and the chromosome offset table used to translate a
// flat genome coordinate back into a chromosome name and local position.
// Build and WriteTo (builder.go) produce small in-memory or on-disk indexes
// sequentially, as used for test fixtures; Load reads an index back.
package genome

import (
	"sort"

	"github.com/masarunakajima/abismal/internal/fourbit"
	"github.com/masarunakajima/abismal/internal/seed"
)

// Chrom describes one reference sequence's placement in the flat,
// concatenated genome coordinate space.
type Chrom struct {
	Name  string
	Start uint32 // offset of the first base in the flat coordinate space
	Len   uint32
}

// Index is the complete loaded artifact: packed bases, the seed index, and
// chromosome boundaries.
type Index struct {
	Genome fourbit.Genome
	Seed   *seed.Index
	Chroms []Chrom
}

// GenomeClassAt returns the 1-bit bisulfite-equivalence class of the
// genome base at an absolute flat position, the function seed.Index's
// candidate narrowing needs.
func (idx *Index) GenomeClassAt(pos int) uint8 {
	return seed.GenomeClassAt(idx.Genome.Base(pos))
}

// Resolve maps a flat genome position to its chromosome and local
// (0-based) offset. It fails (ok=false) if the position falls outside all
// chromosomes, or if a hit of length hitLen would straddle a chromosome
// boundary — a hit can never legitimately span two reference sequences.
func (idx *Index) Resolve(pos uint32, hitLen int) (chromIdx int, local uint32, ok bool) {
	i := sort.Search(len(idx.Chroms), func(i int) bool {
		return idx.Chroms[i].Start+idx.Chroms[i].Len > pos
	})
	if i == len(idx.Chroms) || pos < idx.Chroms[i].Start {
		return 0, 0, false
	}
	c := idx.Chroms[i]
	local = pos - c.Start
	if local+uint32(hitLen) > c.Len {
		return 0, 0, false
	}
	return i, local, true
}
