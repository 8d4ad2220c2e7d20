/*
Package resolver resolves hostnames into raw answer lines, that is, IP address
literals and CNAME alias names, similar to "dig +short".

[DNSResolver] talks to a single DNS server using [miekg/dns], with a per-query
timeout, optional retries on timeouts, and an optional overall query rate
limit. [CachingResolver] sits in front of another Resolver and resolves each
name only once per run, collapsing concurrent resolutions of the same name.
[Static] serves canned answers.

All resolution failures are reported as [ResolutionError]s, which are scoped
to the hostname that failed.

[miekg/dns]: https://github.com/miekg/dns
*/
package resolver
