// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package dig

import (
	"context"
	"sort"
	"sync"

	"github.com/siemens/perimdig/types"
)

// MatchSet collects unique matches. A typical use case for a MatchSet is to
// consume matches from a Digger's news stream as the chain walks find them.
type MatchSet struct {
	m  map[types.Match]struct{}
	mu sync.Mutex
}

// NewMatchSet returns a new and properly initialized MatchSet.
func NewMatchSet() *MatchSet {
	return &MatchSet{
		m: map[types.Match]struct{}{},
	}
}

// Add a match to the set, returning true if it wasn't known before.
func (s *MatchSet) Add(match types.Match) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[match]; ok {
		return false
	}
	s.m[match] = struct{}{}
	return true
}

// Len returns the number of unique matches in the set.
func (s *MatchSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Get returns all matches from the set, sorted by name and then address.
func (s *MatchSet) Get() []types.Match {
	s.mu.Lock()
	matches := make([]types.Match, 0, len(s.m))
	for match := range s.m {
		matches = append(matches, match)
	}
	s.mu.Unlock()
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].Addr < matches[j].Addr
	})
	return matches
}

// Track matches received from the specified news channel until the channel is
// closed or the context done. Track only returns after processing all news or
// when the context is done.
func (s *MatchSet) Track(ctx context.Context, news <-chan types.Match) error {
	for {
		select {
		case match, ok := <-news:
			if !ok {
				return nil
			}
			s.Add(match)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
