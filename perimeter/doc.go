/*
Package perimeter implements the address space (“perimeter”) hostnames get
checked against, consisting of individual IP addresses and IP networks.

Perimeter files list one entry per line: a bare address, an address with a /32
mask, or a network in CIDR notation.

	10.0.0.5
	192.0.2.17/32
	10.1.0.0/16
	2001:db8::/32

Single addresses must be unicast addresses. Unusable entries never match and
get skipped with a warning when loading a perimeter file; a file without any
usable entry is rejected as a whole.

Networks are kept in a path-compressed trie courtesy of [yl2chen/cidranger].

[yl2chen/cidranger]: https://github.com/yl2chen/cidranger
*/
package perimeter
