// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	logging "github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("abismal")

var logFormat = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05}] %{level:.4s}%{color:reset} %{message}`,
)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logFormat)
	logging.SetBackend(formatted)
}

// checkError is the fatal-error idiom shared by every subcommand: log the
// error with context and exit nonzero. Systemic failures (a missing index,
// an unreadable FASTQ file, a malformed index artifact) all funnel here
// rather than returning up through cobra's RunE chain, since there is
// nothing a caller one level up the CLI can usefully recover from.
func checkError(err error) {
	if err == nil {
		return
	}
	log.Error(err)
	os.Exit(1)
}

// RootCmd is the abismal CLI's entry point.
var RootCmd = &cobra.Command{
	Use:   "abismal",
	Short: "bisulfite-aware short-read aligner",
	Long:  "abismal maps bisulfite-converted short reads against a reference genome, single-end or paired-end.",
}

var startTime time.Time

func init() {
	RootCmd.PersistentFlags().IntP("threads", "t", 0, "number of worker threads (0 = all CPUs)")
	RootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log warnings and errors")
	RootCmd.PersistentFlags().StringP("log", "L", "", "write log messages to this file instead of stderr")

	cobra.OnInitialize(func() {
		startTime = time.Now()
		if path, _ := RootCmd.PersistentFlags().GetString("log"); path != "" {
			f, err := os.Create(expandPath(path))
			checkError(errors.Wrapf(err, "creating log file %s", path))
			logging.SetBackend(logging.NewBackendFormatter(logging.NewLogBackend(f, "", 0), logFormat))
		}
	})
}

func addLogFooter() {
	log.Infof("elapsed time: %s", time.Since(startTime))
}

// outStream opens path for writing, transparently gzip-compressing when it
// ends in .gz, matching the teacher's xopen-based stream helpers.
func outStream(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if strings.HasSuffix(path, ".gz") {
		return newCompressedWriter(path)
	}
	f, err := os.Create(expandPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
