/*
Package types defines perimdig's information model, which is rather small: a
[Match] pairs a hostname (or alias) with an in-perimeter IP address, an
[Answer] is a single classified line of a DNS resolution, and [Quality] tells
the liveness verification state of a matched address.

Hostname helpers [IsHostname] and [NormalizeHostname] define what perimdig
considers to be a syntactically plausible DNS name, and how such names are
brought into their lookup form.
*/
package types
