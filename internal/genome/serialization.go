package genome

import (
	"bufio"
	"encoding/binary"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"

	"github.com/masarunakajima/abismal/internal/fourbit"
	"github.com/masarunakajima/abismal/internal/seed"
)

// File layout within an index directory, mirroring the teacher's
// one-file-per-concern index directory convention.
const (
	ChromsFile    = "chroms.tsv"
	GenomeFile    = "genome.4bit"
	CounterFile   = "seed_counter.bin"
	PositionsFile = "seed_positions.bin"
	SeedMetaFile  = "seed_meta.bin"
)

// Magic and version header written at the start of each binary file, so a
// reader can fail fast on a foreign or stale index rather than
// misinterpreting bytes.
var magic = [8]byte{'a', 'b', 'i', 's', 'm', 'a', 'l', '\n'}

const (
	mainVersion  uint8 = 1
	minorVersion uint8 = 0
)

// Sentinel errors, the teacher's style of naming every expected failure
// mode instead of returning ad hoc fmt.Errorf strings.
var (
	ErrInvalidIndexDir   = errors.New("genome: invalid or missing index directory")
	ErrInvalidFileFormat = errors.New("genome: invalid file format (bad magic)")
	ErrVersionMismatch   = errors.New("genome: index version mismatch")
	ErrBrokenIndexFile   = errors.New("genome: truncated or corrupt index file")
)

// Load reads a complete index artifact from dir.
func Load(dir string) (*Index, error) {
	ok, err := pathutil.DirExists(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "checking index dir %s", dir)
	}
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndexDir, "%s", dir)
	}

	chroms, err := loadChroms(filepath.Join(dir, ChromsFile))
	if err != nil {
		return nil, err
	}
	packed, genomeLen, err := loadGenome(filepath.Join(dir, GenomeFile))
	if err != nil {
		return nil, err
	}
	counter, err := loadUint32s(filepath.Join(dir, CounterFile))
	if err != nil {
		return nil, err
	}
	positions, err := loadUint32s(filepath.Join(dir, PositionsFile))
	if err != nil {
		return nil, err
	}
	k, s, err := loadSeedMeta(filepath.Join(dir, SeedMetaFile))
	if err != nil {
		return nil, err
	}

	return &Index{
		Genome: fourbit.Genome{Packed: packed, Len: genomeLen},
		Seed:   &seed.Index{K: k, S: s, Counter: counter, Positions: positions},
		Chroms: chroms,
	}, nil
}

func openMagic(r io.Reader) error {
	var got [8]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return errors.Wrap(ErrBrokenIndexFile, err.Error())
	}
	if got != magic {
		return ErrInvalidFileFormat
	}
	var versions [2]uint8
	if _, err := io.ReadFull(r, versions[:]); err != nil {
		return errors.Wrap(ErrBrokenIndexFile, err.Error())
	}
	if versions[0] != mainVersion {
		return ErrVersionMismatch
	}
	return nil
}

func writeMagic(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	_, err := w.Write([]byte{mainVersion, minorVersion})
	return err
}

func loadGenome(path string) ([]byte, int, error) {
	f, err := xopen.Ropen(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	if err := openMagic(r); err != nil {
		return nil, 0, err
	}
	var length uint64
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, 0, errors.Wrap(ErrBrokenIndexFile, err.Error())
	}
	packed := make([]byte, (length+1)/2)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, 0, errors.Wrap(ErrBrokenIndexFile, err.Error())
	}
	return packed, int(length), nil
}

func loadUint32s(path string) ([]uint32, error) {
	f, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	if err := openMagic(r); err != nil {
		return nil, err
	}
	var n uint64
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, errors.Wrap(ErrBrokenIndexFile, err.Error())
	}
	vals := make([]uint32, n)
	if err := binary.Read(r, binary.BigEndian, &vals); err != nil {
		return nil, errors.Wrap(ErrBrokenIndexFile, err.Error())
	}
	return vals, nil
}

// loadSeedMeta reads the seed index's K (seed length in bases) and S
// (number of bases past the seed used for candidate narrowing), the two
// parameters FindCandidates needs that aren't recoverable from the
// counter/positions arrays alone.
func loadSeedMeta(path string) (k, s int, err error) {
	f, err := xopen.Ropen(path)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	if err := openMagic(r); err != nil {
		return 0, 0, err
	}
	var vals [2]uint32
	if err := binary.Read(r, binary.BigEndian, &vals); err != nil {
		return 0, 0, errors.Wrap(ErrBrokenIndexFile, err.Error())
	}
	return int(vals[0]), int(vals[1]), nil
}

func loadChroms(path string) ([]Chrom, error) {
	f, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var chroms []Chrom
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, errors.Wrapf(ErrBrokenIndexFile, "bad chroms.tsv line: %q", line)
		}
		start, err1 := strconv.ParseUint(fields[1], 10, 32)
		length, err2 := strconv.ParseUint(fields[2], 10, 32)
		if err1 != nil || err2 != nil {
			return nil, errors.Wrapf(ErrBrokenIndexFile, "bad chroms.tsv line: %q", line)
		}
		chroms = append(chroms, Chrom{Name: fields[0], Start: uint32(start), Len: uint32(length)})
	}
	return chroms, scanner.Err()
}
