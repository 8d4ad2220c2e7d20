/*
Package chain walks DNS resolution chains: starting from a candidate
hostname, it follows CNAME aliases until reaching IP addresses, and checks
these addresses against a perimeter.

Every name on a chain leading to an in-perimeter address gets reported with
that address. For instance, when a.example is an alias for b.example, which in
turn resolves to 10.0.0.5 inside the perimeter 10.0.0.0/24, then walking
a.example reports both a.example[10.0.0.5] and b.example[10.0.0.5].

Chains are safe against alias cycles, as each name is followed only once per
walk, and against overly long chains, as walks stop following aliases beyond
a maximum depth.
*/
package chain
