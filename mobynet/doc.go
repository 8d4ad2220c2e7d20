/*
Package mobynet locates the network namespace of a Docker container, so that
hostnames can be dug (and their addresses pinged) from the perspective of that
container instead of the host.
*/
package mobynet
