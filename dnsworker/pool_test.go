// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dnsworker

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

var _ = Describe("worker pool", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("runs a goroutine-limited set of tasks", func() {
		const poolsize = 3

		pool := New(poolsize)
		Expect(pool.Size()).To(Equal(poolsize))

		var running, maxrunning atomic.Int32
		var mu sync.Mutex
		executed := 0
		taskfn := func() {
			now := running.Add(1)
			defer running.Add(-1)
			for {
				max := maxrunning.Load()
				if now <= max || maxrunning.CompareAndSwap(max, now) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			mu.Lock()
			executed++
			mu.Unlock()
		}

		numtasks := poolsize * 4
		for i := 0; i < numtasks; i++ {
			pool.Submit(taskfn)
		}
		pool.StopWait()

		Expect(executed).To(Equal(numtasks), "number of submitted and executed tasks mismatch")
		Expect(maxrunning.Load()).To(BeNumerically("<=", poolsize))
		submitted, done, panicked := pool.Stats()
		Expect(submitted).To(BeEquivalentTo(numtasks))
		Expect(done).To(BeEquivalentTo(numtasks))
		Expect(panicked).To(BeZero())
	})

	It("isolates panicking tasks", func() {
		pool := New(1)
		var siblings atomic.Int32
		pool.Submit(func() { panic("D'oh!") })
		pool.Submit(func() { siblings.Add(1) })
		pool.Submit(func() { siblings.Add(1) })
		pool.StopWait()
		Expect(siblings.Load()).To(BeEquivalentTo(2))
		_, done, panicked := pool.Stats()
		Expect(done).To(BeEquivalentTo(3))
		Expect(panicked).To(BeEquivalentTo(1))
	})

	It("enforces a minimum pool size", func() {
		pool := New(0)
		defer pool.StopWait()
		Expect(pool.Size()).To(Equal(1))
	})

})
