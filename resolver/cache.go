// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/siemens/perimdig/types"
	"golang.org/x/sync/singleflight"
)

// CachingResolver caches the resolutions of an upstream Resolver for its
// lifetime, which is a single run. Concurrent resolutions of the same name are
// collapsed into a single upstream resolution. This pays off as many
// hostnames tend to share the same few CDN aliases.
//
// Failed resolutions are cached too, except for those caused by cancelled
// contexts.
type CachingResolver struct {
	upstream Resolver
	inflight singleflight.Group
	mu       sync.RWMutex
	cache    map[uint64][]cacheEntry
	hits     atomic.Int64
	misses   atomic.Int64
}

type cacheEntry struct {
	name    string
	answers []string
	err     error
}

// NewCachingResolver returns a new CachingResolver in front of the specified
// upstream resolver.
func NewCachingResolver(upstream Resolver) *CachingResolver {
	return &CachingResolver{
		upstream: upstream,
		cache:    map[uint64][]cacheEntry{},
	}
}

// cacheKey returns the hash of the case-insensitive, root-dot-less form of a
// hostname.
func cacheKey(name string) (string, uint64) {
	name = types.ChainKey(name)
	return name, xxhash.Sum64String(name)
}

// Resolve the specified hostname, either from cache or otherwise using the
// upstream resolver. The answers returned are owned by the caller.
//
// Concurrent callers share the upstream resolution of the first caller, which
// runs with that caller's context. If this context gets cancelled, the other
// callers still having live contexts start a new upstream resolution instead
// of failing with the first caller's cancellation.
func (c *CachingResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	name, key := cacheKey(hostname)
	if entry, ok := c.lookup(name, key); ok {
		c.hits.Add(1)
		return clone(entry.answers), entry.err
	}
	for {
		v, _, shared := c.inflight.Do(strconv.FormatUint(key, 16)+name, func() (interface{}, error) {
			// Another flight might have finished between our lookup and
			// starting this flight.
			if entry, ok := c.lookup(name, key); ok {
				c.hits.Add(1)
				return flight{entry: entry}, nil
			}
			c.misses.Add(1)
			answers, err := c.upstream.Resolve(ctx, hostname)
			entry := cacheEntry{name: name, answers: answers, err: err}
			if ctx.Err() != nil {
				return flight{entry: entry, cancelled: true}, nil
			}
			c.store(entry, key)
			return flight{entry: entry}, nil
		})
		f := v.(flight)
		if shared {
			if f.cancelled && ctx.Err() == nil {
				continue
			}
			c.hits.Add(1)
		}
		return clone(f.entry.answers), f.entry.err
	}
}

// flight is the outcome of a single upstream resolution shared by all
// concurrent callers resolving the same name.
type flight struct {
	entry     cacheEntry
	cancelled bool // the context of the resolving caller got cancelled.
}

func (c *CachingResolver) lookup(name string, key uint64) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.cache[key] {
		if entry.name == name {
			return entry, true
		}
	}
	return cacheEntry{}, false
}

func (c *CachingResolver) store(entry cacheEntry, key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = append(c.cache[key], entry)
}

// Stats returns the number of cache hits (including joined in-flight
// resolutions) and misses so far.
func (c *CachingResolver) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func clone(answers []string) []string {
	if answers == nil {
		return nil
	}
	return append(make([]string, 0, len(answers)), answers...)
}
