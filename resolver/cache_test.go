// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// countingResolver counts the resolutions per name and optionally delays
// them.
type countingResolver struct {
	Static
	delay time.Duration
	mu    sync.Mutex
	count map[string]int
	total atomic.Int32
}

func (c *countingResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	c.mu.Lock()
	if c.count == nil {
		c.count = map[string]int{}
	}
	c.count[hostname]++
	c.mu.Unlock()
	c.total.Add(1)
	time.Sleep(c.delay)
	return c.Static.Resolve(ctx, hostname)
}

// stallingResolver stalls the first resolution until its context is done.
type stallingResolver struct {
	Static
	calls   atomic.Int32
	stalled chan struct{}
}

func (s *stallingResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	if s.calls.Add(1) == 1 {
		close(s.stalled)
		<-ctx.Done()
		return nil, newResolutionError(hostname, ctx.Err())
	}
	return s.Static.Resolve(ctx, hostname)
}

var _ = Describe("caching resolver", func() {

	It("resolves each name only once", func(ctx context.Context) {
		upstream := &countingResolver{Static: Static{
			"cdn.example": {"10.0.0.5"},
		}}
		r := NewCachingResolver(upstream)

		for i := 0; i < 3; i++ {
			Expect(r.Resolve(ctx, "cdn.example")).To(Equal([]string{"10.0.0.5"}))
			Expect(r.Resolve(ctx, "CDN.example.")).To(Equal([]string{"10.0.0.5"}))
		}
		Expect(upstream.total.Load()).To(BeEquivalentTo(1))
		hits, misses := r.Stats()
		Expect(hits).To(BeEquivalentTo(5))
		Expect(misses).To(BeEquivalentTo(1))
	})

	It("caches failures", func(ctx context.Context) {
		upstream := &countingResolver{}
		r := NewCachingResolver(upstream)
		for i := 0; i < 2; i++ {
			_, err := r.Resolve(ctx, "nowhere.example")
			Expect(err).To(MatchError(ErrNoSuchHost))
		}
		Expect(upstream.total.Load()).To(BeEquivalentTo(1))
	})

	It("doesn't cache cancelled resolutions", func(ctx context.Context) {
		upstream := &countingResolver{Static: Static{"a.example": {"10.0.0.1"}}}
		r := NewCachingResolver(upstream)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := r.Resolve(cctx, "a.example")
		Expect(err).To(MatchError(context.Canceled))
		Expect(r.Resolve(ctx, "a.example")).To(Equal([]string{"10.0.0.1"}))
		Expect(upstream.total.Load()).To(BeEquivalentTo(2))
	})

	It("collapses concurrent resolutions", func(ctx context.Context) {
		upstream := &countingResolver{
			Static: Static{"cdn.example": {"10.0.0.5"}},
			delay:  200 * time.Millisecond,
		}
		r := NewCachingResolver(upstream)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				Expect(r.Resolve(ctx, "cdn.example")).To(Equal([]string{"10.0.0.5"}))
			}()
		}
		wg.Wait()
		Expect(upstream.total.Load()).To(BeEquivalentTo(1))
	})

	It("doesn't pass on the cancellation of another caller", func(ctx context.Context) {
		upstream := &stallingResolver{
			Static:  Static{"cdn.example": {"10.0.0.5"}},
			stalled: make(chan struct{}),
		}
		r := NewCachingResolver(upstream)

		lctx, cancel := context.WithCancel(ctx)
		leaderErr := make(chan error)
		go func() {
			defer GinkgoRecover()
			_, err := r.Resolve(lctx, "cdn.example")
			leaderErr <- err
		}()
		Eventually(upstream.stalled).Should(BeClosed())

		answers := make(chan []string)
		go func() {
			defer GinkgoRecover()
			a, err := r.Resolve(ctx, "cdn.example")
			Expect(err).NotTo(HaveOccurred())
			answers <- a
		}()
		time.Sleep(100 * time.Millisecond)
		cancel()

		Eventually(leaderErr).Should(Receive(MatchError(context.Canceled)))
		Eventually(answers).Should(Receive(Equal([]string{"10.0.0.5"})))
		Expect(r.Resolve(ctx, "cdn.example")).To(Equal([]string{"10.0.0.5"}))
		Expect(upstream.calls.Load()).To(BeEquivalentTo(2))
	})

	It("hands out answers owned by the caller", func(ctx context.Context) {
		r := NewCachingResolver(Static{"a.example": {"10.0.0.1"}})
		answers, _ := r.Resolve(ctx, "a.example")
		answers[0] = "mangled"
		Expect(r.Resolve(ctx, "a.example")).To(Equal([]string{"10.0.0.1"}))
	})

})

var _ = Describe("static resolver", func() {

	It("serves canned answers", func(ctx context.Context) {
		s := Static{"a.example": {"b.example.", "10.0.0.1"}}
		Expect(s.Resolve(ctx, "A.Example.")).To(Equal([]string{"b.example.", "10.0.0.1"}))
		_, err := s.Resolve(ctx, "b.example")
		Expect(IsTimeout(err)).To(BeFalse())
		Expect(err).To(MatchError(ErrNoSuchHost))
	})

	It("classifies errors", func() {
		Expect(newResolutionError("a", context.DeadlineExceeded).Kind).To(Equal(KindTimeout))
		Expect(KindServer.String()).To(Equal("server failure"))
		Expect(Kind(42).String()).To(Equal("Kind(42)"))
		err := &ResolutionError{Name: "a.example", Kind: KindNXDomain, Err: ErrNoSuchHost}
		Expect(err.Error()).To(Equal("resolving a.example: non-existent domain: no such host"))
		Expect(newResolutionError("b", err)).To(BeIdenticalTo(err))
	})

})
