// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/siemens/perimdig/dnsworker"
	"github.com/thediveo/lxkns/log"
	"golang.org/x/time/rate"
)

// Defaults for DNSResolver objects.
const (
	DefaultServer  = "8.8.8.8"
	DefaultTimeout = 5 * time.Second
)

// DNSResolver resolves hostnames by querying a single (recursive) DNS server
// for A and optionally AAAA records. It keeps a pool of DNS client
// connections, so the number of concurrent queries is limited to the pool
// size.
type DNSResolver struct {
	server  string
	net     string
	size    int
	timeout time.Duration
	retries int
	ipv6    bool
	limiter *rate.Limiter
	netns   string
	conns   *dnsworker.ConnPool
}

// Option can be passed to NewDNSResolver when creating new [DNSResolver]
// objects.
type Option func(*DNSResolver)

// WithTimeout sets the timeout of each individual query.
func WithTimeout(timeout time.Duration) Option {
	return func(r *DNSResolver) {
		r.timeout = timeout
	}
}

// WithRetries sets the number of retries for timed out queries; other
// failures are never retried. Defaults to no retries.
func WithRetries(retries int) Option {
	return func(r *DNSResolver) {
		r.retries = retries
	}
}

// WithIPv6 additionally queries AAAA records.
func WithIPv6(ipv6 bool) Option {
	return func(r *DNSResolver) {
		r.ipv6 = ipv6
	}
}

// WithRateLimit limits the overall number of queries per second sent by the
// DNSResolver. Zero or negative rates disable rate limiting (the default).
func WithRateLimit(qps float64) Option {
	return func(r *DNSResolver) {
		if qps <= 0 {
			r.limiter = nil
			return
		}
		burst := int(qps)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}

// WithNet sets the transport, "udp" (default) or "tcp".
func WithNet(network string) Option {
	return func(r *DNSResolver) {
		r.net = network
	}
}

// WithPoolSize sets the number of pooled DNS client connections and thus the
// maximum number of concurrent queries.
func WithPoolSize(size int) Option {
	return func(r *DNSResolver) {
		r.size = size
	}
}

// InNetworkNamespace optionally talks to the DNS server from inside the
// network namespace referenced by the specified filesystem path (such as
// "/proc/666/ns/net").
func InNetworkNamespace(netnsref string) Option {
	return func(r *DNSResolver) {
		r.netns = netnsref
	}
}

// ServerAddress returns the server address in "host:port" form, adding the
// default DNS port 53 if necessary.
func ServerAddress(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}

// NewDNSResolver returns a new DNSResolver querying the specified DNS server,
// given as "host" or "host:port". The context is only used for dialing the
// pooled DNS client connections.
func NewDNSResolver(ctx context.Context, server string, options ...Option) (*DNSResolver, error) {
	if server == "" {
		server = DefaultServer
	}
	r := &DNSResolver{
		server:  ServerAddress(server),
		net:     "udp",
		size:    1,
		timeout: DefaultTimeout,
	}
	for _, opt := range options {
		opt(r)
	}
	switch r.net {
	case "udp", "tcp":
	default:
		return nil, fmt.Errorf("unsupported DNS transport %q", r.net)
	}
	dnsclnt := &dns.Client{
		Net:     r.net,
		Timeout: r.timeout,
	}
	conns, err := dnsworker.NewConnPool(ctx, r.size, dnsclnt, r.server,
		dnsworker.InNetworkNamespace(r.netns))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DNS server %s: %w", r.server, err)
	}
	r.conns = conns
	return r, nil
}

// Server returns the address of the DNS server queried.
func (r *DNSResolver) Server() string { return r.server }

// Resolve the specified hostname into its answer lines: the CNAME targets and
// A (and AAAA) addresses in the order they appear in the answer sections.
// Duplicate CNAME targets from the A and AAAA answers are returned only once.
func (r *DNSResolver) Resolve(ctx context.Context, hostname string) ([]string, error) {
	fqdn := dns.Fqdn(hostname)
	qtypes := []uint16{dns.TypeA}
	if r.ipv6 {
		qtypes = append(qtypes, dns.TypeAAAA)
	}
	var lines []string
	aliases := map[string]struct{}{}
	for _, qtype := range qtypes {
		resp, err := r.query(ctx, fqdn, qtype)
		if err != nil {
			return nil, newResolutionError(hostname, err)
		}
		switch resp.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			return nil, &ResolutionError{Name: hostname, Kind: KindNXDomain, Err: ErrNoSuchHost}
		default:
			return nil, &ResolutionError{
				Name: hostname,
				Kind: KindServer,
				Err:  fmt.Errorf("server answered %s", dns.RcodeToString[resp.Rcode]),
			}
		}
		for _, rr := range resp.Answer {
			switch rr := rr.(type) {
			case *dns.CNAME:
				if _, ok := aliases[rr.Target]; ok {
					continue
				}
				aliases[rr.Target] = struct{}{}
				lines = append(lines, rr.Target)
			case *dns.A:
				lines = append(lines, rr.A.String())
			case *dns.AAAA:
				lines = append(lines, rr.AAAA.String())
			}
		}
	}
	return lines, nil
}

// query sends a single query, retrying it when it times out and as long as
// retries are left.
func (r *DNSResolver) query(ctx context.Context, fqdn string, qtype uint16) (*dns.Msg, error) {
	for attempt := 0; ; attempt++ {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		msg := new(dns.Msg)
		msg.SetQuestion(fqdn, qtype)
		qctx, cancel := context.WithTimeout(ctx, r.timeout)
		resp, err := r.conns.Exchange(qctx, msg)
		cancel()
		if err == nil {
			if resp.Id != msg.Id || !resp.Response {
				return nil, &ResolutionError{Name: fqdn, Kind: KindMalformed,
					Err: fmt.Errorf("unexpected response")}
			}
			return resp, nil
		}
		if attempt >= r.retries || ctx.Err() != nil || !newResolutionError(fqdn, err).Timeout() {
			return nil, err
		}
		log.Debugf("query %s %s timed out, retrying (%d/%d)",
			fqdn, dns.TypeToString[qtype], attempt+1, r.retries)
	}
}

// Close releases the pooled DNS client connections. Callers must ensure that
// no resolutions are in flight anymore.
func (r *DNSResolver) Close() {
	r.conns.Close()
}
