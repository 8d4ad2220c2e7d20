// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package test

import (
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/miekg/dns"
)

// Zone maps (lower case, fully qualified) owner names to their resource
// records in zone file presentation format, such as "a.example. 60 IN CNAME
// b.example.". Names missing from a Zone are answered with NXDOMAIN.
type Zone map[string][]string

// DNSServer is an in-process UDP DNS server for testing, answering queries
// from a static [Zone].
type DNSServer struct {
	Addr    string // "127.0.0.1:port" the server listens on
	srv     *dns.Server
	zone    map[string][]dns.RR
	mu      sync.Mutex
	queries map[string]int
	mute    atomic.Bool
}

// StartDNSServer starts a new DNS test server on a random loopback UDP port,
// serving the specified zone.
func StartDNSServer(zone Zone) (*DNSServer, error) {
	rrs := map[string][]dns.RR{}
	for owner, records := range zone {
		for _, record := range records {
			rr, err := dns.NewRR(record)
			if err != nil {
				return nil, err
			}
			rrs[strings.ToLower(dns.Fqdn(owner))] = append(rrs[strings.ToLower(dns.Fqdn(owner))], rr)
		}
	}
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &DNSServer{
		Addr:    pc.LocalAddr().String(),
		zone:    rrs,
		queries: map[string]int{},
	}
	started := make(chan struct{})
	s.srv = &dns.Server{
		PacketConn:        pc,
		Handler:           dns.HandlerFunc(s.serveDNS),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = s.srv.ActivateAndServe() }()
	<-started
	return s, nil
}

// Mute makes the server silently drop all further queries (or answer them
// again), so that clients run into timeouts.
func (s *DNSServer) Mute(mute bool) {
	s.mute.Store(mute)
}

// Queries returns how often the specified name has been queried so far,
// regardless of the query type.
func (s *DNSServer) Queries(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[strings.ToLower(dns.Fqdn(name))]
}

// Stop the server.
func (s *DNSServer) Stop() {
	_ = s.srv.Shutdown()
}

func (s *DNSServer) serveDNS(w dns.ResponseWriter, req *dns.Msg) {
	if len(req.Question) != 1 {
		resp := new(dns.Msg)
		resp.SetRcode(req, dns.RcodeFormatError)
		_ = w.WriteMsg(resp)
		return
	}
	q := req.Question[0]
	name := strings.ToLower(q.Name)
	s.mu.Lock()
	s.queries[name]++
	s.mu.Unlock()
	if s.mute.Load() {
		return
	}
	resp := new(dns.Msg)
	resp.SetReply(req)
	resp.RecursionAvailable = true
	// Play recursive resolver: follow CNAMEs inside our zone and add the
	// records found on the way to the answer section, just like public
	// resolvers do.
	seen := map[string]bool{}
	for name != "" && !seen[name] {
		seen[name] = true
		rrs, ok := s.zone[name]
		if !ok {
			if len(resp.Answer) == 0 {
				resp.SetRcode(req, dns.RcodeNameError)
			}
			break
		}
		next := ""
		for _, rr := range rrs {
			switch rr := rr.(type) {
			case *dns.CNAME:
				resp.Answer = append(resp.Answer, rr)
				next = strings.ToLower(rr.Target)
			default:
				if rr.Header().Rrtype == q.Qtype {
					resp.Answer = append(resp.Answer, rr)
				}
			}
		}
		name = next
	}
	_ = w.WriteMsg(resp)
}
