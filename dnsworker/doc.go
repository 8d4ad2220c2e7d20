/*
Package dnsworker implements a simple limiting task execution pool, as well as
a limiting DNS client connection pool. Perimdig uses [Pool] with a pool of
“DNS workers” for walking the resolution chains of many hostnames
concurrently, while [ConnPool] hands out the DNS client connections for the
individual queries.

Please note that the queries of a single resolution chain are not concurrent.

Usage

	workers := dnsworker.New(10)
	workers.Submit(func() {
	    // walk a resolution chain...
	})
	workers.StopWait()

	conns, err := dnsworker.NewConnPool(
	    context.Background(),
	    10,                   // number of parallel DNS connections
	    &dns.Client{},        // DNS client
	    "8.8.8.8:53",         // address of server/resolver
	)
	resp, err := conns.Exchange(ctx, msg)

# Acknowledgements

Under its hood, [Pool] leverages [gammazero/workerpool] as the limiting
goroutine pool, and [ConnPool] uses [miekg/dns] for the DNS wire protocol.

[gammazero/workerpool]: https://github.com/gammazero/workerpool
[miekg/dns]: https://github.com/miekg/dns
*/
package dnsworker
