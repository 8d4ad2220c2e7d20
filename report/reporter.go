// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package report

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/thediveo/lxkns/log"
)

// Reporter emits the final report lines somewhere.
type Reporter interface {
	Report(ctx context.Context, lines []string) error
}

// WriterReporter writes the report lines to an io.Writer, one per line.
type WriterReporter struct {
	w io.Writer
}

// NewWriterReporter returns a new WriterReporter writing to w.
func NewWriterReporter(w io.Writer) *WriterReporter {
	return &WriterReporter{w: w}
}

func (r *WriterReporter) Report(_ context.Context, lines []string) error {
	bw := bufio.NewWriter(r.w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("cannot write report: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}
	return nil
}

// FileReporter writes the report lines into a file, creating or truncating
// the file only when reporting.
type FileReporter struct {
	path string
}

// NewFileReporter returns a new FileReporter writing to the file at path.
func NewFileReporter(path string) *FileReporter {
	return &FileReporter{path: path}
}

func (r *FileReporter) Report(ctx context.Context, lines []string) (err error) {
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("cannot create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cannot close report file: %w", cerr)
		}
	}()
	return NewWriterReporter(f).Report(ctx, lines)
}

// LogReporter logs a summary of the report.
type LogReporter struct{}

// NewLogReporter returns a new LogReporter.
func NewLogReporter() *LogReporter {
	return &LogReporter{}
}

func (r *LogReporter) Report(_ context.Context, lines []string) error {
	switch len(lines) {
	case 0:
		log.Infof("no names inside the perimeter")
	case 1:
		log.Infof("1 name[address] inside the perimeter")
	default:
		log.Infof("%d name[address]s inside the perimeter", len(lines))
	}
	return nil
}

// MultiReporter reports to all its reporters, even if some of them fail.
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter returns a new MultiReporter for the specified reporters.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{
		reporters: reporters,
	}
}

func (r *MultiReporter) Report(ctx context.Context, lines []string) error {
	var result error

	for _, reporter := range r.reporters {
		if err := reporter.Report(ctx, lines); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result
}
