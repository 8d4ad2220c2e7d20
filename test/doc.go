/*
Package test provides test helpers, most notably an in-process [DNSServer]
serving canned zone data so that tests don't need to talk to real DNS
resolvers.
*/
package test
