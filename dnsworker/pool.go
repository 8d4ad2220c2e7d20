// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dnsworker

import (
	"sync/atomic"

	"github.com/gammazero/workerpool"
	"github.com/thediveo/lxkns/log"
)

// Pool is a size-limited pool of workers, each running one submitted task at
// a time until completion. Tasks are isolated from each other: a panicking
// task is logged and doesn't take down its worker, its siblings, or the
// program.
type Pool struct {
	workers   *workerpool.WorkerPool
	submitted atomic.Int64
	done      atomic.Int64
	panicked  atomic.Int64
}

// New returns a new worker pool with the specified maximum number of
// concurrently running tasks.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		workers: workerpool.New(size),
	}
}

// Size returns the maximum number of concurrently running tasks.
func (p *Pool) Size() int {
	return p.workers.Size()
}

// Submit a task to the pool, where it gets enqueued to be executed by the next
// available worker. Submit never blocks.
func (p *Pool) Submit(task func()) {
	p.submitted.Add(1)
	p.workers.Submit(func() {
		defer p.done.Add(1)
		defer func() {
			if r := recover(); r != nil {
				p.panicked.Add(1)
				log.Errorf("worker task panicked: %v", r)
			}
		}()
		task()
	})
}

// Stats returns the number of submitted, completed, and panicked tasks so
// far.
func (p *Pool) Stats() (submitted, done, panicked int64) {
	return p.submitted.Load(), p.done.Load(), p.panicked.Load()
}

// StopWait waits for all enqueued tasks to finish, and then shuts down the
// pool. No more tasks must be submitted after StopWait.
func (p *Pool) StopWait() {
	p.workers.StopWait()
}
