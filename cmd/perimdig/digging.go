// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/siemens/perimdig/chain"
	"github.com/siemens/perimdig/config"
	"github.com/siemens/perimdig/dig"
	"github.com/siemens/perimdig/extract"
	"github.com/siemens/perimdig/mobynet"
	"github.com/siemens/perimdig/perimeter"
	"github.com/siemens/perimdig/report"
	"github.com/siemens/perimdig/resolver"
	"github.com/siemens/perimdig/types"
	"github.com/siemens/perimdig/verifier"

	"github.com/gosuri/uilive"
	"github.com/hashicorp/go-multierror"
	"github.com/thediveo/lxkns/log"
)

// DigAndReport loads the perimeter and extracts the candidate hostnames from
// source, before any DNS resolution takes place. Next, the resolution chains
// of all hostnames are dug, optionally verifying the matches by pinging them.
// Finally, the findings are reported to out and optionally into an output
// file.
//
// If res is nil, then a (caching) DNS resolver is created according to the
// configuration.
func DigAndReport(ctx context.Context, cfg config.Config, source string, perimeterPath string,
	out io.Writer, res resolver.Resolver) error {
	perim, err := perimeter.Load(perimeterPath)
	if perim == nil {
		return err
	}
	var skipped *multierror.Error
	if errors.As(err, &skipped) {
		for _, entryErr := range skipped.Errors {
			log.Warnf("skipping %s", entryErr)
		}
	}
	names, err := extract.FromPaths(source)
	if err != nil {
		return err
	}
	log.Infof("checking %d hostnames against %d perimeter entries using %d workers",
		len(names), perim.Len(), cfg.Workers)

	if cfg.Container != "" {
		if cfg.NetNS, err = mobynet.ContainerNetNSRef(ctx, cfg.Container); err != nil {
			return err
		}
	}

	if res == nil {
		dnsres, err := resolver.NewDNSResolver(ctx, cfg.Server,
			resolver.WithNet(cfg.Net),
			resolver.WithTimeout(cfg.Timeout.Duration),
			resolver.WithRetries(cfg.Retries),
			resolver.WithIPv6(cfg.IPv6),
			resolver.WithRateLimit(cfg.Rate),
			resolver.WithPoolSize(cfg.Workers),
			resolver.InNetworkNamespace(cfg.NetNS))
		if err != nil {
			return err
		}
		defer dnsres.Close()
		cache := resolver.NewCachingResolver(dnsres)
		defer func() {
			hits, misses := cache.Stats()
			log.Debugf("resolver cache: %d hits, %d misses", hits, misses)
		}()
		res = cache
	}

	// Now lets put the required processing elements and their plumbing in
	// place.
	//
	//   - Digger walking the resolution chains of the hostnames.
	//   - MatchSet consuming the matches found.
	//
	// Progress rendering is done on the information collected by the
	// MatchSet.
	digger, _ := dig.New(cfg.Workers, chain.New(res, perim, chain.WithMaxDepth(cfg.MaxDepth)))
	matchset := dig.NewMatchSet()
	var phase atomic.Value
	phase.Store("digging")
	if cfg.Progress {
		d := startDisplay(os.Stderr, func() (string, dig.Progress, []types.Match) {
			return phase.Load().(string), digger.Progress(), matchset.Get()
		})
		defer d.Stop()
	}

	digger.DigInto(ctx, names, matchset)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("digging interrupted: %w", err)
	}
	matches := matchset.Get()

	if cfg.Ping {
		phase.Store("verifying")
		matches = verifier.New(cfg.Workers, verifier.InNetworkNamespace(cfg.NetNS)).Filter(ctx, matches)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("verification interrupted: %w", err)
		}
	}

	phase.Store("reporting")
	reporters := []report.Reporter{report.NewWriterReporter(out), report.NewLogReporter()}
	if cfg.Output != "" {
		reporters = append(reporters, report.NewFileReporter(cfg.Output))
	}
	return report.NewMultiReporter(reporters...).Report(ctx, report.Lines(matches))
}

// display renders the progress to a terminal until stopped.
type display struct {
	done    chan struct{}
	stopped chan struct{}
}

// startDisplay starts rendering the data returned by source to w at regular
// intervals.
func startDisplay(w io.Writer, source func() (string, dig.Progress, []types.Match)) *display {
	d := &display{
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go func() {
		// Dunno what uilive's background updating mode using Start() is good
		// for? It may trigger anytime with the rendering into the buffer not
		// yet complete, thus making the terminal output very flickery. So we
		// avoid Start() and instead trigger an explicit flush to the terminal
		// after having completed the rendering.
		term := uilive.New()
		term.Out = w
		renderer := newRenderer(term, spinnerInterval)
		render := func() {
			renderer.Render(source())
			_ = term.Flush()
		}
		defer func() {
			render()
			close(d.stopped)
		}()
		render()
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				render()
			case <-d.done:
				return
			}
		}
	}()
	return d
}

// Stop rendering, after rendering one last time.
func (d *display) Stop() {
	close(d.done)
	<-d.stopped
}
