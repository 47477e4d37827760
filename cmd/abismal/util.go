package main

import (
	"os"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/twotwotwo/sorts"
)

// Options holds the global flags shared by every subcommand, exactly the
// teacher's cmd.Options shape (thread count, verbosity, log file).
type Options struct {
	NumCPUs int
	Verbose bool
	LogFile string
}

func getOptions(cmd *cobra.Command) *Options {
	threads := getFlagNonNegativeInt(cmd, "threads")
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	sorts.MaxProcs = threads
	runtime.GOMAXPROCS(threads)

	return &Options{
		NumCPUs: threads,
		Verbose: !getFlagBool(cmd, "quiet"),
		LogFile: getFlagString(cmd, "log"),
	}
}

func getFlagString(cmd *cobra.Command, name string) string {
	s, err := cmd.Flags().GetString(name)
	checkError(err)
	return s
}

func getFlagBool(cmd *cobra.Command, name string) bool {
	b, err := cmd.Flags().GetBool(name)
	checkError(err)
	return b
}

func getFlagInt(cmd *cobra.Command, name string) int {
	i, err := cmd.Flags().GetInt(name)
	checkError(err)
	return i
}

func getFlagNonNegativeInt(cmd *cobra.Command, name string) int {
	i := getFlagInt(cmd, name)
	if i < 0 {
		checkError(errors.Errorf("flag --%s must not be negative", name))
	}
	return i
}

func getFlagFloat64(cmd *cobra.Command, name string) float64 {
	f, err := cmd.Flags().GetFloat64(name)
	checkError(err)
	return f
}

// expandPath resolves a leading ~ in a user-supplied path, the same CLI
// ergonomics the teacher wires go-homedir for.
func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// mustIndexDir validates --index points at a readable directory before
// the subcommand tries to load it, so a bad path fails fast with a clear
// message instead of a deep stack-trace from the genome package.
func mustIndexDir(path string) string {
	path = expandPath(path)
	ok, err := pathutil.DirExists(path)
	checkError(errors.Wrapf(err, "checking index directory %s", path))
	if !ok {
		checkError(errors.Errorf("index directory does not exist: %s", path))
	}
	return path
}

type compressedWriter struct {
	f  *os.File
	gz *pgzip.Writer
}

func (w *compressedWriter) Write(p []byte) (int, error) { return w.gz.Write(p) }
func (w *compressedWriter) Close() error {
	if err := w.gz.Close(); err != nil {
		return err
	}
	return w.f.Close()
}

func newCompressedWriter(path string) (*compressedWriter, error) {
	f, err := os.Create(expandPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	return &compressedWriter{f: f, gz: pgzip.NewWriter(f)}, nil
}
