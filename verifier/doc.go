/*
Package verifier implements an optional ICMP(v4/v6)-based liveness check of
matched IP addresses, with caching in order to avoid expensive duplicate IP
address verification.

Each distinct address gets pinged only once, regardless of how many names map
to it. The pings run concurrently, limited by a worker pool, and optionally
from inside a different network namespace.

# Acknowledgements

Under its hood, [Verifier] leverages [go-ping/ping] for pinging and
[gammazero/workerpool] as the limiting goroutine pool.

[go-ping/ping]: https://github.com/go-ping/ping
[gammazero/workerpool]: https://github.com/gammazero/workerpool
*/
package verifier
