// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dig

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/siemens/perimdig/dnsworker"
	"github.com/siemens/perimdig/types"
	"github.com/thediveo/lxkns/log"
)

// Walker walks the resolution chain of a single candidate hostname and returns
// the in-perimeter matches found along it.
type Walker interface {
	Walk(ctx context.Context, hostname string) []types.Match
}

// Digger digs the resolution chains of candidate hostnames using a limited
// number of concurrent chain walks, and then streams its findings over its
// “news” channel.
type Digger struct {
	workers  *dnsworker.Pool
	walker   Walker
	news     chan types.Match
	matched  atomic.Int64
	stopOnce sync.Once
}

// Progress counts the chain walks submitted and done so far, as well as the
// number of (not necessarily unique) matches found.
type Progress struct {
	Submitted int64
	Done      int64
	Matched   int64
}

// New returns a new Digger with a maximum worker pool of the specified size
// as well as a “news stream”. This news channel sends the matches as the
// chain walks find them. The news channel gets closed only by StopWait.
func New(size int, walker Walker) (*Digger, <-chan types.Match) {
	news := make(chan types.Match, size)
	return &Digger{
		workers: dnsworker.New(size),
		walker:  walker,
		news:    news,
	}, news
}

// DigHostnames submits a chain walk for each of the given hostnames, skipping
// duplicates. DigHostnames doesn't wait for the walks to finish. Matches are
// getting sent to the channel returned beforehand by New.
func (d *Digger) DigHostnames(ctx context.Context, names []string) {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := types.ChainKey(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if ctx.Err() != nil {
			return
		}
		name := name
		d.workers.Submit(func() {
			for _, match := range d.walker.Walk(ctx, name) {
				// Don't block endlessly on a consumer that has gone away
				// after the context got cancelled.
				select {
				case d.news <- match:
					d.matched.Add(1)
				case <-ctx.Done():
					return
				}
			}
		})
	}
	log.Debugf("submitted %d unique hostnames out of %d", len(seen), len(names))
}

// Progress returns the current digging progress.
func (d *Digger) Progress() Progress {
	submitted, done, _ := d.workers.Stats()
	return Progress{
		Submitted: submitted,
		Done:      done,
		Matched:   d.matched.Load(),
	}
}

// StopWait waits for all queued chain walks to get processed and then finally
// closes the news channel. StopWait can be called multiple times.
func (d *Digger) StopWait() {
	d.stopOnce.Do(func() {
		d.workers.StopWait()
		close(d.news)
	})
}

// DigInto digs the given hostnames, adding all matches found to set. DigInto
// returns only after all chain walks have finished and the news channel has
// been closed, or early when the context gets cancelled.
func (d *Digger) DigInto(ctx context.Context, names []string, set *MatchSet) {
	d.DigHostnames(ctx, names)
	stopped := make(chan struct{})
	go func() {
		d.StopWait()
		close(stopped)
	}()
	_ = set.Track(ctx, d.news)
	<-stopped
}

// Run digs the given hostnames using a pool of the specified size and
// returns all matches found, sorted by name and then address. Run returns
// only after all chain walks have finished, or early when the context gets
// cancelled.
func Run(ctx context.Context, size int, walker Walker, names []string) []types.Match {
	digger, _ := New(size, walker)
	set := NewMatchSet()
	digger.DigInto(ctx, names, set)
	return set.Get()
}
