// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package report_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/siemens/perimdig/report"
	"github.com/siemens/perimdig/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

type failingReporter struct{ err error }

func (r failingReporter) Report(context.Context, []string) error { return r.err }

var _ = Describe("reporting", func() {

	DescribeTable("normalizes names",
		func(name, expected string) {
			Expect(report.Normalize(name)).To(Equal(expected))
		},
		Entry(nil, "www.example.com.", "www.example.com"),
		Entry(nil, "www.example.com", "www.example.com"),
		Entry(nil, "www.example.com..", "www.example.com."),
		Entry(nil, "", ""),
	)

	It("renders match lines", func() {
		Expect(report.Line(types.Match{Name: "b.example.", Addr: "10.0.0.5"})).To(Equal("b.example[10.0.0.5]"))
	})

	It("deduplicates and sorts lines", func() {
		Expect(report.Lines([]types.Match{
			{Name: "www.example.com", Addr: "10.0.0.5"},
			{Name: "cdn.example.net.", Addr: "10.0.0.5"},
			{Name: "www.example.com.", Addr: "10.0.0.5"},
			{Name: "cdn.example.net", Addr: "10.0.0.5"},
			{Name: "a.example", Addr: "2001:db8::1"},
			{Name: "a.example", Addr: "10.0.0.1"},
		})).To(Equal([]string{
			"a.example[10.0.0.1]",
			"a.example[2001:db8::1]",
			"cdn.example.net[10.0.0.5]",
			"www.example.com[10.0.0.5]",
		}))
		Expect(report.Lines(nil)).To(BeEmpty())
	})

	It("writes lines", func(ctx context.Context) {
		var out strings.Builder
		Expect(report.NewWriterReporter(&out).Report(ctx, []string{"a[1.2.3.4]", "b[1.2.3.4]"})).To(Succeed())
		Expect(out.String()).To(Equal("a[1.2.3.4]\nb[1.2.3.4]\n"))

		out.Reset()
		Expect(report.NewWriterReporter(&out).Report(ctx, nil)).To(Succeed())
		Expect(out.String()).To(BeEmpty())
	})

	It("writes lines into files", func(ctx context.Context) {
		tmpdir := Successful(os.MkdirTemp("", "perimdig-report-*"))
		DeferCleanup(os.RemoveAll, tmpdir)
		path := filepath.Join(tmpdir, "report.txt")

		Expect(report.NewFileReporter(path).Report(ctx, []string{"a[1.2.3.4]"})).To(Succeed())
		Expect(string(Successful(os.ReadFile(path)))).To(Equal("a[1.2.3.4]\n"))

		Expect(report.NewFileReporter(filepath.Join(tmpdir, "nope", "report.txt")).Report(ctx, nil)).
			To(MatchError(ContainSubstring("cannot create report file")))
	})

	It("logs a summary", func(ctx context.Context) {
		Expect(report.NewLogReporter().Report(ctx, []string{"a[1.2.3.4]"})).To(Succeed())
	})

	It("reports to all reporters and collects their errors", func(ctx context.Context) {
		var out strings.Builder
		err1 := errors.New("foo")
		err2 := errors.New("bar")
		r := report.NewMultiReporter(failingReporter{err1}, report.NewWriterReporter(&out), failingReporter{err2})
		err := r.Report(ctx, []string{"a[1.2.3.4]"})
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, err1)).To(BeTrue())
		Expect(errors.Is(err, err2)).To(BeTrue())
		Expect(out.String()).To(Equal("a[1.2.3.4]\n"))

		Expect(report.NewMultiReporter(report.NewWriterReporter(&out)).Report(ctx, nil)).To(Succeed())
	})

})
