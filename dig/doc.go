/*
Package dig digs the resolution chains of many candidate hostnames
concurrently, streaming the in-perimeter matches found.

A [Digger] runs one chain walk per unique hostname on a worker pool of limited
size, so the number of concurrent DNS lookups stays bounded. Each chain walk
itself follows its aliases sequentially. The matches are sent over the
Digger's news channel, usually consumed by a [MatchSet] using
[MatchSet.Track].

The order in which matches arrive depends on the scheduling of the chain
walks; only the set of matches is deterministic. [Run] wraps it all up: it
submits all hostnames, waits for all walks to finish, and returns the sorted
match set.
*/
package dig
