package main

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/masarunakajima/abismal/internal/align"
	"github.com/masarunakajima/abismal/internal/batch"
	"github.com/masarunakajima/abismal/internal/fourbit"
	"github.com/masarunakajima/abismal/internal/genome"
	"github.com/masarunakajima/abismal/internal/mapping"
	"github.com/masarunakajima/abismal/internal/mapstats"
	"github.com/masarunakajima/abismal/internal/samrecord"
)

// mapOptions holds the mapping subcommand's flags, on top of the shared
// Options every subcommand gets from getOptions.
type mapOptions struct {
	*Options

	IndexDir   string
	OutFile    string
	AllowAmbig bool
	PBAT       bool
	RandomPBAT bool
	ARich      bool
	Sensitive  bool
	Batch      int
	Candidates int
	MaxMates   int
	MinFrag    int
	MaxFrag    int
}

func getMapOptions(cmd *cobra.Command) *mapOptions {
	opt := &mapOptions{
		Options:    getOptions(cmd),
		IndexDir:   mustIndexDir(getFlagString(cmd, "index")),
		OutFile:    getFlagString(cmd, "out-file"),
		AllowAmbig: getFlagBool(cmd, "allow-ambig"),
		PBAT:       getFlagBool(cmd, "pbat"),
		RandomPBAT: getFlagBool(cmd, "random-pbat"),
		ARich:      getFlagBool(cmd, "a-rich"),
		Sensitive:  getFlagBool(cmd, "sensitive"),
		Batch:      getFlagNonNegativeInt(cmd, "batch"),
		Candidates: getFlagNonNegativeInt(cmd, "candidates"),
		MaxMates:   getFlagNonNegativeInt(cmd, "max-mates"),
		MinFrag:    getFlagNonNegativeInt(cmd, "min-frag"),
		MaxFrag:    getFlagNonNegativeInt(cmd, "max-frag"),
	}
	if opt.Batch == 0 {
		opt.Batch = 1000000
	}
	return opt
}

// strandConversion is one of the (reverse-complement x richness)
// combinations tried per read: two for a directional library, all four
// for --random-pbat, grounded on the original's explicit enumeration of
// t-rich/a-rich x forward/reverse in its PBAT-random code path.
type strandConversion struct {
	RC    bool
	ARich bool
}

func strandConversions(opt *mapOptions) []strandConversion {
	switch {
	case opt.RandomPBAT:
		return []strandConversion{
			{RC: false, ARich: false}, {RC: true, ARich: false},
			{RC: false, ARich: true}, {RC: true, ARich: true},
		}
	case opt.PBAT:
		return []strandConversion{{RC: false, ARich: true}, {RC: true, ARich: true}}
	case opt.ARich:
		return []strandConversion{{RC: false, ARich: true}, {RC: true, ARich: true}}
	default:
		return []strandConversion{{RC: false, ARich: false}, {RC: true, ARich: false}}
	}
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "map single-end or paired-end bisulfite reads against an index",
	Run: func(cmd *cobra.Command, args []string) {
		opt := getMapOptions(cmd)
		if len(args) == 0 {
			checkError(fmt.Errorf("at least one FASTQ file is required"))
		}

		idx, err := genome.Load(opt.IndexDir)
		checkError(err)

		w, err := outStream(opt.OutFile)
		checkError(err)
		defer w.Close()
		bw := bufio.NewWriter(w)
		defer bw.Flush()

		var stats mapstats.SE

		driverOpts := mapping.DefaultDriverOptions
		driverOpts.SeedLen = idx.Seed.K
		driverOpts.InvalidHitFrac = getFlagFloat64(cmd, "max-frag-edit")
		if opt.Candidates > 0 {
			driverOpts.MaxCandidates = opt.Candidates
		}
		if opt.Sensitive {
			driverOpts.MaxCandidates = 1000000
		}

		var bar *mpb.Bar
		var progress *mpb.Progress
		if opt.Verbose {
			progress = mpb.New()
			bar = progress.AddBar(0, mpb.PrependDecorators(decor.Name("mapping reads")))
		}

		if len(args) == 2 {
			mapPairedEnd(idx, args[0], args[1], opt, driverOpts, bw, &stats, bar)
		} else {
			for _, f := range args {
				mapSingleEnd(idx, f, opt, driverOpts, bw, &stats, bar)
			}
		}

		if progress != nil {
			progress.Wait()
		}

		statsPath := opt.OutFile + ".mapstats"
		sw, err := outStream(statsPath)
		checkError(err)
		defer sw.Close()
		fmt.Fprint(sw, stats.String())

		if opt.Verbose {
			addLogFooter()
		}
	},
}

func init() {
	RootCmd.AddCommand(mapCmd)

	mapCmd.Flags().StringP("index", "i", "", "index directory (required)")
	mapCmd.Flags().StringP("out-file", "o", "-", "output file (- for stdout), gzip-compressed if it ends in .gz")
	mapCmd.Flags().Bool("allow-ambig", false, "report ambiguous hits instead of discarding them")
	mapCmd.Flags().Bool("pbat", false, "the library is PBAT (A-rich) rather than directional")
	mapCmd.Flags().Bool("random-pbat", false, "the library's strand/richness is unknown; try all four combinations")
	mapCmd.Flags().Bool("a-rich", false, "reads are A-rich (equivalent to --pbat for single-end libraries)")
	mapCmd.Flags().Bool("sensitive", false, "raise the seed-bucket size ceiling to 1000000 (overrides --candidates)")
	mapCmd.Flags().Int("batch", 1000000, "number of reads mapped per batch")
	mapCmd.Flags().Int("candidates", 2000, "max seed-bucket size to search; wider buckets are skipped")
	mapCmd.Flags().Int("max-mates", mapping.MaxPeCandidates, "max candidates kept per mate before eviction")
	mapCmd.Flags().Int("min-frag", 32, "minimum paired-end fragment length")
	mapCmd.Flags().Int("max-frag", 3000, "maximum paired-end fragment length")
	mapCmd.Flags().Float64("max-frag-edit", 0.1, "fraction of read length allowed as mismatches")

	mapCmd.MarkFlagRequired("index")
}

// alignerPool hands out reusable *align.Aligner instances: Aligner keeps
// mutable scratch matrices across calls for reuse within one goroutine, so
// concurrent batch workers each need their own rather than sharing one.
func newAlignerPool() *sync.Pool {
	return &sync.Pool{New: func() any { return align.NewAligner(align.DefaultOptions) }}
}

type seRead struct {
	name       string
	seq, qual  []byte
}

type seOutcome struct {
	unique, ambig, report bool
	line                  string
}

// mapSingleEnd streams one FASTQ file through the seed-and-extend pipeline
// in fixed-size batches, mapping each batch's reads across NumCPUs workers
// via internal/batch and writing each result as its worker finishes, so
// output order within a batch need not match input order.
func mapSingleEnd(idx *genome.Index, file string, opt *mapOptions, driverOpts mapping.DriverOptions, w io.Writer, stats *mapstats.SE, bar *mpb.Bar) {
	reader, err := fastx.NewReader(nil, file, "")
	checkError(err)
	defer reader.Close()

	combos := strandConversions(opt)
	pool := newAlignerPool()

	sched := batch.Scheduler[seRead, seOutcome]{
		NumWorkers: opt.NumCPUs,
		Process: func(r seRead) seOutcome {
			aligner := pool.Get().(*align.Aligner)
			defer pool.Put(aligner)

			result := mapRead(idx, r.seq, combos, driverOpts, aligner, opt.MaxMates)
			out := seOutcome{
				unique: result.ShouldReport(false),
				ambig:  result.AmbigDiffs(),
			}
			if result.ShouldReport(opt.AllowAmbig) {
				if line, ok := formatSE(r.name, idx, result, r.seq, r.qual, aligner); ok {
					out.report = true
					out.line = line
				}
			}
			return out
		},
		Write: func(_ int, out seOutcome) {
			stats.Update(out.unique, out.ambig, false)
			if bar != nil {
				bar.Increment()
			}
			if out.report {
				fmt.Fprintln(w, out.line)
			}
		},
	}

	for {
		reads, eof := readBatch(reader, opt.Batch)
		if len(reads) > 0 {
			i := 0
			sched.Run(func() (seRead, int, bool) {
				if i >= len(reads) {
					return seRead{}, 0, false
				}
				r := reads[i]
				j := i
				i++
				return r, j, true
			})
		}
		if eof {
			break
		}
	}
}

// readBatch pulls up to n records off reader, reporting eof once the file
// is exhausted (which may coincide with a short final batch).
func readBatch(reader *fastx.Reader, n int) ([]seRead, bool) {
	reads := make([]seRead, 0, n)
	for len(reads) < n {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return reads, true
			}
			checkError(err)
			return reads, true
		}
		reads = append(reads, seRead{
			name: string(record.Name),
			seq:  append([]byte(nil), record.Seq.Seq...),
			qual: append([]byte(nil), record.Seq.Qual...),
		})
	}
	return reads, false
}

// mapRead runs the seed-and-extend search across every strand/richness
// combination for one read and returns the folded SE bookkeeping. Each
// combo's richness-aware codes are kept around so the winning candidates
// can be re-aligned without re-encoding.
func mapRead(idx *genome.Index, seq []byte, combos []strandConversion, driverOpts mapping.DriverOptions, aligner *align.Aligner, maxMates int) mapping.SeResult {
	result := mapping.NewSeResult()
	heap := mapping.NewPeCandidatesWithCapacity(maxMates)

	codes := make(map[strandConversion][]uint8, len(combos))
	for _, c := range combos {
		read := fourbit.Encode(orient(seq, c.RC), c.ARich)
		codes[c] = read.Seed
		mapping.ProcessSeeds(idx, read, c.ARich, c.RC, driverOpts, heap)
	}

	for _, cand := range heap.PrepareForMating() {
		query := codes[strandConversion{RC: cand.RC, ARich: cand.ARich}]
		aligned := alignCandidate(aligner, idx, cand, query)
		result.UpdateByScore(aligned)
	}
	return result
}

// alignCandidate runs the banded aligner over the genome window around a
// surviving candidate and folds the alignment's score, position, and
// post-alignment edit distance into a SeElement. queryCodes are the read's
// richness-aware fourbit codes (bisulfite-tolerant), matched against the
// genome's canonical codes so a converted base scores as a match rather
// than a mismatch.
func alignCandidate(aligner *align.Aligner, idx *genome.Index, cand mapping.SeElement, queryCodes []uint8) mapping.SeElement {
	start := int(cand.Pos)
	res := aligner.Align(queryCodes, refCodeWindow(idx, start, len(queryCodes)), start)
	cand.AlnScore = int16(res.Score)
	cand.Pos = uint32(res.RefStart)
	cand.Diffs = int16(res.EditDistance)
	return cand
}

func revComp(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complementBase(b)
	}
	return out
}

func complementBase(b byte) byte {
	switch b {
	case 'A', 'a':
		return 'T'
	case 'C', 'c':
		return 'G'
	case 'G', 'g':
		return 'C'
	case 'T', 't':
		return 'A'
	default:
		return 'N'
	}
}

func orient(seq []byte, rc bool) []byte {
	if rc {
		return revComp(seq)
	}
	return seq
}

// refCodeWindow returns the genome window of length n starting at pos as
// canonical fourbit codes, clamped to the genome's end, the representation
// Align's bisulfite-tolerant comparator expects.
func refCodeWindow(idx *genome.Index, pos, n int) []uint8 {
	end := pos + n
	if end > idx.Genome.Len {
		end = idx.Genome.Len
	}
	out := make([]uint8, end-pos)
	for i := range out {
		out[i] = idx.Genome.Base(pos + i)
	}
	return out
}

// formatSE resolves the best hit's chromosome and produces its SAM line,
// re-running the aligner (now that a locus is fixed) to get its CIGAR. The
// NM value comes from best.Diffs, already the post-alignment edit distance
// alignCandidate computed for the winning candidate.
func formatSE(name string, idx *genome.Index, result mapping.SeResult, seq, qual []byte, aligner *align.Aligner) (string, bool) {
	best := result.Best
	chromIdx, local, ok := idx.Resolve(best.Pos, len(seq))
	if !ok {
		return "", false
	}
	query := fourbit.Encode(orient(seq, best.RC), best.ARich).Seed
	res := aligner.Align(query, refCodeWindow(idx, int(best.Pos), len(query)), int(best.Pos))
	rec := samrecord.FormatSE(name, idx.Chroms[chromIdx].Name, int(local), res.Cigar, best.Diffs, best.ARich, best.RC, string(seq), string(qual))
	return rec.String(), true
}

type peRead struct {
	name               string
	seq1, qual1        []byte
	seq2, qual2        []byte
}

type peOutcome struct {
	unique, ambig, report bool
	line1, line2          string
}

// mapPairedEnd streams two mate FASTQ files in lockstep, in fixed-size
// batches mapped across NumCPUs workers, reconciling each pair's candidates
// into fragments before aligning and writing.
func mapPairedEnd(idx *genome.Index, file1, file2 string, opt *mapOptions, driverOpts mapping.DriverOptions, w io.Writer, stats *mapstats.SE, bar *mpb.Bar) {
	r1, err := fastx.NewReader(nil, file1, "")
	checkError(err)
	defer r1.Close()
	r2, err := fastx.NewReader(nil, file2, "")
	checkError(err)
	defer r2.Close()

	combos := strandConversions(opt)
	pool := newAlignerPool()

	sched := batch.Scheduler[peRead, peOutcome]{
		NumWorkers: opt.NumCPUs,
		Process: func(r peRead) peOutcome {
			aligner := pool.Get().(*align.Aligner)
			defer pool.Put(aligner)

			heap1 := mapping.NewPeCandidatesWithCapacity(opt.MaxMates)
			heap2 := mapping.NewPeCandidatesWithCapacity(opt.MaxMates)
			codes1 := make(map[strandConversion][]uint8, len(combos))
			codes2 := make(map[strandConversion][]uint8, len(combos))
			for _, c := range combos {
				read1 := fourbit.Encode(orient(r.seq1, c.RC), c.ARich)
				read2 := fourbit.Encode(orient(r.seq2, !c.RC), c.ARich)
				codes1[strandConversion{RC: c.RC, ARich: c.ARich}] = read1.Seed
				codes2[strandConversion{RC: !c.RC, ARich: c.ARich}] = read2.Seed
				mapping.ProcessSeeds(idx, read1, c.ARich, c.RC, driverOpts, heap1)
				mapping.ProcessSeeds(idx, read2, c.ARich, !c.RC, driverOpts, heap2)
			}

			mate1 := heap1.PrepareForMating()
			mate2 := heap2.PrepareForMating()
			pairs := mapping.Reconcile(mate1, mate2, opt.MinFrag, opt.MaxFrag, len(r.seq2), false)
			for i, p := range pairs {
				q1 := codes1[strandConversion{RC: p.Mate1.RC, ARich: p.Mate1.ARich}]
				q2 := codes2[strandConversion{RC: p.Mate2.RC, ARich: p.Mate2.ARich}]
				pairs[i].Mate1 = alignCandidate(aligner, idx, p.Mate1, q1)
				pairs[i].Mate2 = alignCandidate(aligner, idx, p.Mate2, q2)
			}
			pe := mapping.BestPair(pairs)

			out := peOutcome{
				unique: pe.Best.Valid() && !pe.Ambig(),
				ambig:  pe.Ambig(),
			}
			if pe.Best.Valid() && (!pe.Ambig() || opt.AllowAmbig) {
				if l1, l2, ok := formatPE(r.name, idx, pe.Best, r.seq1, r.qual1, r.seq2, r.qual2, aligner); ok {
					out.report = true
					out.line1, out.line2 = l1, l2
				}
			}
			return out
		},
		Write: func(_ int, out peOutcome) {
			stats.Update(out.unique, out.ambig, false)
			if bar != nil {
				bar.Increment()
			}
			if out.report {
				fmt.Fprintln(w, out.line1)
				fmt.Fprintln(w, out.line2)
			}
		},
	}

	for {
		reads, eof := readPeBatch(r1, r2, opt.Batch)
		if len(reads) > 0 {
			i := 0
			sched.Run(func() (peRead, int, bool) {
				if i >= len(reads) {
					return peRead{}, 0, false
				}
				r := reads[i]
				j := i
				i++
				return r, j, true
			})
		}
		if eof {
			break
		}
	}
}

func readPeBatch(r1, r2 *fastx.Reader, n int) ([]peRead, bool) {
	reads := make([]peRead, 0, n)
	for len(reads) < n {
		rec1, err1 := r1.Read()
		rec2, err2 := r2.Read()
		if err1 == io.EOF || err2 == io.EOF {
			return reads, true
		}
		checkError(err1)
		checkError(err2)
		reads = append(reads, peRead{
			name:  string(rec1.Name),
			seq1:  append([]byte(nil), rec1.Seq.Seq...),
			qual1: append([]byte(nil), rec1.Seq.Qual...),
			seq2:  append([]byte(nil), rec2.Seq.Seq...),
			qual2: append([]byte(nil), rec2.Seq.Qual...),
		})
	}
	return reads, false
}

// formatPE resolves both mates' chromosome (rejecting the pair if they
// land on different ones) and produces both SAM lines, re-aligning each
// mate now that its locus is fixed to get a real CIGAR.
func formatPE(name string, idx *genome.Index, best mapping.PeElement, seq1, qual1, seq2, qual2 []byte, aligner *align.Aligner) (string, string, bool) {
	c1, local1, ok1 := idx.Resolve(best.Mate1.Pos, len(seq1))
	c2, local2, ok2 := idx.Resolve(best.Mate2.Pos, len(seq2))
	if !ok1 || !ok2 || c1 != c2 {
		return "", "", false
	}
	upstream := best.Mate1.Pos <= best.Mate2.Pos
	fragLen := best.FragmentLen(len(seq2))
	if !upstream {
		fragLen = int(best.Mate1.Pos) + len(seq1) - int(best.Mate2.Pos)
	}

	query1 := fourbit.Encode(orient(seq1, best.Mate1.RC), best.Mate1.ARich).Seed
	query2 := fourbit.Encode(orient(seq2, best.Mate2.RC), best.Mate2.ARich).Seed
	res1 := aligner.Align(query1, refCodeWindow(idx, int(best.Mate1.Pos), len(query1)), int(best.Mate1.Pos))
	res2 := aligner.Align(query2, refCodeWindow(idx, int(best.Mate2.Pos), len(query2)), int(best.Mate2.Pos))

	// A short insert means one or both mates read past the fragment's outer
	// boundary (overlap or dovetail); clip the overhang to soft clips rather
	// than reporting it as if it aligned.
	cigar1, cigar2 := res1.Cigar, res2.Cigar
	if samrecord.Classify(fragLen, len(seq1), len(seq2)) != samrecord.FragLong {
		cigar1 = samrecord.TruncateToFragment(cigar1, fragLen)
		cigar2 = samrecord.TruncateToFragment(cigar2, fragLen)
	}

	r1, r2 := samrecord.FormatPE(
		name, idx.Chroms[c1].Name, int(local1), int(local2),
		cigar1, cigar2, best.Mate1.Diffs, best.Mate2.Diffs,
		best.Mate1.ARich, best.Mate1.RC, best.Mate2.RC, upstream, fragLen,
		string(seq1), string(qual1), string(seq2), string(qual2),
	)
	return r1.String(), r2.String(), true
}
