// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"context"
	"fmt"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/siemens/perimdig/types"
	"github.com/thediveo/lxkns/log"
	"github.com/thediveo/lxkns/ops"
	"github.com/thediveo/lxkns/ops/relations"
	"github.com/thediveo/lxkns/species"
)

// Verifier verifies the liveness of the IP addresses of matches by pinging
// them, caching verification results as to avoiding unnecessary duplicate
// verification attempts. Verifiers use a goroutine-limited worker pool.
type Verifier struct {
	size                int           // maximum number of concurrent pings.
	count               int           // number of pings to send.
	interval            time.Duration // distance between pings.
	thresholdPercentage uint          // percentage of successful pings for valid IP address.
	unprivileged        bool          // if true, uses UDP-based pings instead of privileged ICMPs.

	netns relations.Relation                           // network namespace to ping from, or nil.
	ping  func(ctx context.Context, addr string) error // pings an address.
}

// Option can be passed to New when creating new Verifier objects.
type Option func(*Verifier)

// New returns a new [Verifier] with a maximum worker pool of the specified
// size.
//
// The new verifier defaults to pinging 3 times at intervals of 1s between each
// ping. The validity threshold defaults to 50(%).
//
// The verifier can be configured during creation using several options:
//   - [WithCount]
//   - [WithInterval]
//   - [WithThresholdPercentage]
//   - [AsUnprivileged]
//   - [InNetworkNamespace]
func New(size int, options ...Option) *Verifier {
	if size < 1 {
		size = 1
	}
	v := &Verifier{
		size:                size,
		count:               3,
		interval:            time.Second,
		thresholdPercentage: 50,
	}
	v.ping = v.pingAddr
	for _, opt := range options {
		opt(v)
	}
	return v
}

// InNetworkNamespace optionally runs the pings inside the network namespace
// referenced by the specified filesystem path, such as "/proc/666/ns/net". An
// empty path keeps the current network namespace.
func InNetworkNamespace(netnsref string) Option {
	return func(v *Verifier) {
		if netnsref == "" {
			v.netns = nil
			return
		}
		v.netns = ops.NewTypedNamespacePath(netnsref, species.CLONE_NEWNET)
	}
}

// WithCount sets the number of pings for testing reachability of an IP address.
func WithCount(count uint) Option {
	return func(v *Verifier) {
		v.count = int(count)
	}
}

// WithInterval sets the interval between consecutive pings.
func WithInterval(interval time.Duration) Option {
	return func(v *Verifier) {
		v.interval = interval
	}
}

// AsUnprivileged tells the Verifier to carry out unprivileged pings using UDP
// instead of ICMP packets.
func AsUnprivileged() Option {
	return func(v *Verifier) {
		v.unprivileged = true
	}
}

// WithThresholdPercentage takes a percentage between 0 and 100 that specifies
// the percentage of successful ping responses required in order to validate the
// pinged IP address.
func WithThresholdPercentage(threshold uint) Option {
	if threshold > 100 {
		panic(fmt.Errorf("Verifier: threshold must be a percentage between 0 <= threshold <= 100, got: %d",
			threshold))
	}
	return func(v *Verifier) {
		v.thresholdPercentage = threshold
	}
}

// Verify pings each distinct address exactly once and returns the final
// verdicts as either [types.Verified] or [types.Invalid]. Addresses left
// unverified due to the context getting cancelled are [types.Invalid].
func (v *Verifier) Verify(ctx context.Context, addrs []string) map[string]types.Quality {
	cache := NewAddressCache()
	workers := workerpool.New(v.size)
	for _, addr := range addrs {
		if !cache.Claim(addr) {
			continue
		}
		addr := addr
		workers.Submit(func() {
			if err := v.ping(ctx, addr); err != nil {
				log.Debugf("address %s is invalid: %s", addr, err)
				cache.Settle(addr, types.Invalid)
				return
			}
			log.Debugf("address %s verified", addr)
			cache.Settle(addr, types.Verified)
		})
	}
	workers.StopWait()
	verdicts := make(map[string]types.Quality, len(addrs))
	for _, addr := range addrs {
		q := cache.Quality(addr)
		if q.IsPending() {
			q = types.Invalid
		}
		verdicts[addr] = q
	}
	return verdicts
}

// Filter returns only those matches with verified addresses, keeping their
// order. Each distinct address gets pinged only once, regardless of how many
// names share it.
func (v *Verifier) Filter(ctx context.Context, matches []types.Match) []types.Match {
	addrs := make([]string, 0, len(matches))
	for _, match := range matches {
		addrs = append(addrs, match.Addr)
	}
	verdicts := v.Verify(ctx, addrs)
	verified := make([]types.Match, 0, len(matches))
	for _, match := range matches {
		if verdicts[match.Addr] == types.Verified {
			verified = append(verified, match)
			continue
		}
		log.Infof("dropping unreachable %s", match)
	}
	return verified
}
