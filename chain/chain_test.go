// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package chain

import (
	"context"
	"fmt"

	"github.com/siemens/perimdig/perimeter"
	"github.com/siemens/perimdig/resolver"
	"github.com/siemens/perimdig/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("chain walker", func() {

	perim := perimeter.New([]string{"10.0.0.0/24"})

	It("attributes addresses to every name on the chain", func(ctx context.Context) {
		w := New(resolver.Static{
			"a": {"b"},
			"b": {"10.0.0.5"},
		}, perim)
		Expect(w.Walk(ctx, "a")).To(ConsistOf(
			types.Match{Name: "a", Addr: "10.0.0.5"},
			types.Match{Name: "b", Addr: "10.0.0.5"},
		))
	})

	It("attributes along longer chains", func(ctx context.Context) {
		w := New(resolver.Static{
			"a.example.com": {"b.example.com."},
			"b.example.com": {"c.example.com."},
			"c.example.com": {"10.0.0.7", "192.0.2.1"},
		}, perim)
		Expect(w.Walk(ctx, "a.example.com")).To(ConsistOf(
			types.Match{Name: "a.example.com", Addr: "10.0.0.7"},
			types.Match{Name: "b.example.com.", Addr: "10.0.0.7"},
			types.Match{Name: "c.example.com.", Addr: "10.0.0.7"},
		))
	})

	It("follows single-label aliases", func(ctx context.Context) {
		w := New(resolver.Static{
			"a.example.com": {"intranet."},
			"intranet":      {"10.0.0.5"},
		}, perim)
		Expect(w.Walk(ctx, "a.example.com")).To(ConsistOf(
			types.Match{Name: "a.example.com", Addr: "10.0.0.5"},
			types.Match{Name: "intranet.", Addr: "10.0.0.5"},
		))
	})

	It("doesn't chase dotted numbers", func(ctx context.Context) {
		var asked []string
		w := New(recordingResolver{
			Resolver: resolver.Static{"a.example.com": {"10.0.0.256", "10.0.0.6"}},
			asked:    &asked,
		}, perim)
		Expect(w.Walk(ctx, "a.example.com")).To(ConsistOf(
			types.Match{Name: "a.example.com", Addr: "10.0.0.6"}))
		Expect(asked).To(ConsistOf("a.example.com"))
	})

	It("reports nothing outside the perimeter", func(ctx context.Context) {
		w := New(resolver.Static{"a": {"9.9.9.9"}}, perim)
		Expect(w.Walk(ctx, "a")).To(BeEmpty())
	})

	It("checks multiple addresses independently", func(ctx context.Context) {
		w := New(resolver.Static{
			"www.example.com": {"10.0.0.1", "9.9.9.9", "10.0.0.2"},
		}, perim)
		Expect(w.Walk(ctx, "www.example.com")).To(ConsistOf(
			types.Match{Name: "www.example.com", Addr: "10.0.0.1"},
			types.Match{Name: "www.example.com", Addr: "10.0.0.2"},
		))
	})

	It("survives alias cycles", func(ctx context.Context) {
		w := New(resolver.Static{
			"a": {"b"},
			"b": {"a"},
		}, perim)
		Expect(w.Walk(ctx, "a")).To(BeEmpty())
	})

	It("survives alias cycles with addresses", func(ctx context.Context) {
		w := New(resolver.Static{
			"a.example": {"b.example.", "10.0.0.1"},
			"b.example": {"A.example.", "10.0.0.2"},
		}, perim)
		Expect(w.Walk(ctx, "a.example")).To(ConsistOf(
			types.Match{Name: "a.example", Addr: "10.0.0.1"},
			types.Match{Name: "b.example.", Addr: "10.0.0.2"},
			types.Match{Name: "a.example", Addr: "10.0.0.2"},
		))
	})

	It("survives self-referencing aliases", func(ctx context.Context) {
		w := New(resolver.Static{"a": {"a.", "10.0.0.3"}}, perim)
		Expect(w.Walk(ctx, "a")).To(ConsistOf(types.Match{Name: "a", Addr: "10.0.0.3"}))
	})

	It("follows diamonds only once", func(ctx context.Context) {
		w := New(resolver.Static{
			"top":   {"left", "right"},
			"left":  {"cdn"},
			"right": {"cdn"},
			"cdn":   {"10.0.0.9"},
		}, perim)
		Expect(w.Walk(ctx, "top")).To(ConsistOf(
			types.Match{Name: "cdn", Addr: "10.0.0.9"},
			types.Match{Name: "top", Addr: "10.0.0.9"},
			types.Match{Name: "left", Addr: "10.0.0.9"},
		))
	})

	It("ends branches at resolution failures", func(ctx context.Context) {
		w := New(resolver.Static{
			"a": {"gone", "b"},
			"b": {"10.0.0.4"},
		}, perim)
		Expect(w.Walk(ctx, "a")).To(ConsistOf(
			types.Match{Name: "a", Addr: "10.0.0.4"},
			types.Match{Name: "b", Addr: "10.0.0.4"},
		))
		Expect(w.Walk(ctx, "gone")).To(BeEmpty())
	})

	It("ignores garbage answers", func(ctx context.Context) {
		w := New(resolver.Static{
			"a": {";; connection timed out; no servers could be reached", "10.0.0.4"},
		}, perim)
		Expect(w.Walk(ctx, "a")).To(ConsistOf(types.Match{Name: "a", Addr: "10.0.0.4"}))
	})

	It("truncates overly long chains", func(ctx context.Context) {
		static := resolver.Static{}
		const length = 30
		for i := 0; i < length; i++ {
			static[fmt.Sprintf("n%d", i)] = []string{fmt.Sprintf("n%d", i+1)}
		}
		static[fmt.Sprintf("n%d", length)] = []string{"10.0.0.1"}

		Expect(New(static, perim).Walk(ctx, "n0")).To(BeEmpty())
		Expect(New(static, perim, WithMaxDepth(length)).Walk(ctx, "n0")).To(HaveLen(length + 1))
		Expect(New(static, perim, WithMaxDepth(length-1)).Walk(ctx, "n0")).To(BeEmpty())
	})

	It("stops on cancelled contexts", func(ctx context.Context) {
		w := New(resolver.Static{"a": {"10.0.0.1"}}, perim)
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		Expect(w.Walk(ctx, "a")).To(BeEmpty())
	})

})

type recordingResolver struct {
	resolver.Resolver
	asked *[]string
}

func (r recordingResolver) Resolve(ctx context.Context, name string) ([]string, error) {
	*r.asked = append(*r.asked, name)
	return r.Resolver.Resolve(ctx, name)
}
