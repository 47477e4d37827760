package genome

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/masarunakajima/abismal/internal/fourbit"
	"github.com/masarunakajima/abismal/internal/seed"
)

// Build constructs an in-memory Index from named reference sequences, in
// the given order. Building a production-scale index (parallel insertion,
// incremental updates) is out of scope for this mapper, which only ever
// reads a prebuilt artifact; Build exists to produce small fixtures for
// tests and for a future index-building command to start from.
func Build(names []string, seqs [][]byte, k, s int) (*Index, error) {
	if len(names) != len(seqs) {
		return nil, errors.New("genome: names and seqs must be the same length")
	}
	var flat []byte
	var chroms []Chrom
	var offset uint32
	for i, seq := range seqs {
		chroms = append(chroms, Chrom{Name: names[i], Start: offset, Len: uint32(len(seq))})
		flat = append(flat, seq...)
		offset += uint32(len(seq))
	}

	packedGenome := fourbit.PackGenome(flat)
	classes := make([]uint8, len(flat))
	for i := range flat {
		classes[i] = seed.GenomeClassAt(fourbit.EncodeGenomeBase(flat[i]))
	}

	n := len(flat) - k + 1
	if n < 0 {
		n = 0
	}
	buckets := make([][]uint32, 1<<uint(k))
	for p := 0; p < n; p++ {
		h := seed.Hash(flat[p:p+k], k)
		buckets[h] = append(buckets[h], uint32(p))
	}
	counter := make([]uint32, 1<<uint(k)+1)
	var positions []uint32
	for h := range buckets {
		counter[h] = uint32(len(positions))
		bucket := buckets[h]
		sort.Slice(bucket, func(i, j int) bool {
			return lessByFollowingClass(bucket[i], bucket[j], classes, k)
		})
		positions = append(positions, bucket...)
	}
	counter[len(buckets)] = uint32(len(positions))

	return &Index{
		Genome: packedGenome,
		Seed:   &seed.Index{K: k, S: s, Counter: counter, Positions: positions},
		Chroms: chroms,
	}, nil
}

func lessByFollowingClass(a, b uint32, classes []uint8, k int) bool {
	for off := k; ; off++ {
		ai, bi := int(a)+off, int(b)+off
		aIn, bIn := ai < len(classes), bi < len(classes)
		if !aIn && !bIn {
			return false
		}
		if !aIn {
			return true
		}
		if !bIn {
			return false
		}
		if classes[ai] != classes[bi] {
			return classes[ai] < classes[bi]
		}
	}
}

// WriteTo persists idx to dir in the on-disk format Load reads back.
func (idx *Index) WriteTo(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating index dir %s", dir)
	}
	if err := writeChroms(filepath.Join(dir, ChromsFile), idx.Chroms); err != nil {
		return err
	}
	if err := writeGenome(filepath.Join(dir, GenomeFile), idx.Genome); err != nil {
		return err
	}
	if err := writeUint32s(filepath.Join(dir, CounterFile), idx.Seed.Counter); err != nil {
		return err
	}
	if err := writeUint32s(filepath.Join(dir, PositionsFile), idx.Seed.Positions); err != nil {
		return err
	}
	return writeSeedMeta(filepath.Join(dir, SeedMetaFile), idx.Seed.K, idx.Seed.S)
}

func writeSeedMeta(path string, k, s int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := writeMagic(w); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, [2]uint32{uint32(k), uint32(s)}); err != nil {
		return err
	}
	return w.Flush()
}

func writeChroms(path string, chroms []Chrom) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, c := range chroms {
		fmt.Fprintf(w, "%s\t%d\t%d\n", c.Name, c.Start, c.Len)
	}
	return w.Flush()
}

func writeGenome(path string, g fourbit.Genome) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := writeMagic(w); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint64(g.Len)); err != nil {
		return err
	}
	if _, err := w.Write(g.Packed); err != nil {
		return err
	}
	return w.Flush()
}

func writeUint32s(path string, vals []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := writeMagic(w); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint64(len(vals))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, vals); err != nil {
		return err
	}
	return w.Flush()
}
