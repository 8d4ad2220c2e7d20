// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package chain

import (
	"context"

	"github.com/siemens/perimdig/resolver"
	"github.com/siemens/perimdig/types"
	"github.com/thediveo/lxkns/log"
)

// DefaultMaxDepth is the default maximum number of aliases followed from a
// candidate hostname.
const DefaultMaxDepth = 20

// Matcher decides whether an IP address in textual form lies inside the
// perimeter. Matchers must be safe for concurrent use.
type Matcher interface {
	Contains(ip string) bool
}

// Walker walks the resolution chains of hostnames, following CNAME aliases
// until reaching IP addresses (or failures), and reports all names on a chain
// that lead to an in-perimeter address.
//
// A Walker is safe for concurrent use; all state of a chain walk is private to
// that walk.
type Walker struct {
	resolver resolver.Resolver
	matcher  Matcher
	maxDepth int
}

// Option can be passed to New when creating new [Walker] objects.
type Option func(*Walker)

// WithMaxDepth sets the maximum number of aliases followed from a candidate
// hostname. Longer chains get truncated.
func WithMaxDepth(depth int) Option {
	return func(w *Walker) {
		w.maxDepth = depth
	}
}

// New returns a new Walker using the specified resolver and perimeter
// matcher.
func New(r resolver.Resolver, m Matcher, options ...Option) *Walker {
	w := &Walker{
		resolver: r,
		matcher:  m,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// Walk the resolution chain of the specified hostname and return the matches
// found. Each in-perimeter address is reported for the name that resolved
// into it, as well as for every name on the chain leading to that name.
// Duplicate matches are possible when multiple branches lead to the same
// address.
//
// Resolution failures are not errors of the walk; they just end the affected
// branch without matches.
func (w *Walker) Walk(ctx context.Context, hostname string) []types.Match {
	visited := map[string]struct{}{
		types.ChainKey(hostname): {},
	}
	return w.walk(ctx, hostname, nil, visited, 0)
}

// walk resolves name, reached by following the aliases in path (starting with
// the candidate hostname), and recurses into yet unvisited aliases. path is
// never modified in place.
func (w *Walker) walk(ctx context.Context, name string, path []string, visited map[string]struct{}, depth int) []types.Match {
	if ctx.Err() != nil {
		return nil
	}
	answers, err := w.resolver.Resolve(ctx, name)
	if err != nil {
		log.Debugf("chain %s: %s", chainHead(path, name), err)
		return nil
	}
	var matches []types.Match
	for _, line := range answers {
		answer := types.ClassifyAnswer(line)
		switch answer.Kind {
		case types.AnswerIP:
			if !w.matcher.Contains(answer.Value) {
				log.Debugf("%s resolves to %s, which is outside the perimeter", name, answer.Value)
				continue
			}
			log.Debugf("MATCH: %s resolves to %s", name, answer.Value)
			matches = append(matches, types.Match{Name: name, Addr: answer.Value})
			for _, alias := range path {
				matches = append(matches, types.Match{Name: alias, Addr: answer.Value})
			}
		case types.AnswerAlias:
			key := types.ChainKey(answer.Value)
			if _, ok := visited[key]; ok {
				log.Debugf("%s: alias %s already followed", name, answer.Value)
				continue
			}
			if depth+1 > w.maxDepth {
				log.Debugf("chain %s: maximum depth %d reached at %s, not following %s",
					chainHead(path, name), w.maxDepth, name, answer.Value)
				continue
			}
			visited[key] = struct{}{}
			log.Debugf("CNAME found for %s: %s", name, answer.Value)
			matches = append(matches,
				w.walk(ctx, answer.Value, extend(path, name), visited, depth+1)...)
		default:
			log.Debugf("%s: ignoring answer %q", name, line)
		}
	}
	return matches
}

// extend returns a new path with name appended, leaving the original path
// untouched.
func extend(path []string, name string) []string {
	return append(append(make([]string, 0, len(path)+1), path...), name)
}

// chainHead returns the candidate hostname of a chain.
func chainHead(path []string, name string) string {
	if len(path) > 0 {
		return path[0]
	}
	return name
}
