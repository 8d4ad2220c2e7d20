// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package perimeter

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/yl2chen/cidranger"
)

// Perimeter is an immutable set of individual IP addresses and IP networks
// defining the address space hostnames are checked against. A Perimeter is
// safe for concurrent use, as it never changes after creation.
type Perimeter struct {
	hosts   map[netip.Addr]struct{} // bare and /32 (/128) entries.
	ranger  cidranger.Ranger        // all other network entries.
	nets    int                     // number of networks in ranger.
	invalid []*EntryError           // entries that will never match.
}

// EntryError tells which perimeter entry is unusable and why.
type EntryError struct {
	Entry string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("invalid perimeter entry %q: %s", e.Entry, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// New returns a new Perimeter for the specified entries. Each entry is either
// a bare IP address, an IP address with a /32 (IPv6: /128) mask, or an IP
// network in CIDR notation. Bare and /32 addresses must be unicast addresses,
// otherwise they are ignored. Entries that cannot be parsed at all are
// ignored too; use [Perimeter.Err] to learn about them.
func New(entries []string) *Perimeter {
	p := &Perimeter{
		hosts:  map[netip.Addr]struct{}{},
		ranger: cidranger.NewPCTrieRanger(),
	}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if err := p.add(entry); err != nil {
			p.invalid = append(p.invalid, &EntryError{Entry: entry, Err: err})
		}
	}
	return p
}

// add a single perimeter entry.
func (p *Perimeter) add(entry string) error {
	addrpart, maskpart, hasmask := strings.Cut(entry, "/")
	if !hasmask || maskpart == "32" || maskpart == "128" {
		addr, err := netip.ParseAddr(addrpart)
		if err != nil {
			return err
		}
		if hasmask && addr.BitLen() == 32 && maskpart != "32" {
			return fmt.Errorf("mask /%s too long for an IPv4 address", maskpart)
		}
		if hasmask && addr.BitLen() == 128 && maskpart != "128" {
			// an IPv6 "/32" is a proper network, not a single address.
			return p.addNetwork(entry)
		}
		if !IsUnicast(addr) {
			return fmt.Errorf("not a unicast address")
		}
		p.hosts[addr.Unmap()] = struct{}{}
		return nil
	}
	return p.addNetwork(entry)
}

// addNetwork adds an entry in CIDR notation to the network trie. As usual, any
// host bits set are masked off.
func (p *Perimeter) addNetwork(entry string) error {
	_, ipnet, err := net.ParseCIDR(entry)
	if err != nil {
		return err
	}
	if err := p.ranger.Insert(cidranger.NewBasicRangerEntry(*ipnet)); err != nil {
		return err
	}
	p.nets++
	return nil
}

// IsUnicast returns true if addr is a valid address that is neither the
// unspecified address, a multicast address, nor the IPv4 limited broadcast
// address.
func IsUnicast(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() || addr.IsUnspecified() || addr.IsMulticast() {
		return false
	}
	return addr != netip.AddrFrom4([4]byte{255, 255, 255, 255})
}

// Contains returns true if the IP address in textual form is inside the
// perimeter, that is, if it equals one of the bare (/32) addresses or lies
// inside one of the networks. An unparsable address is never contained.
func (p *Perimeter) Contains(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	return p.ContainsAddr(addr)
}

// ContainsAddr returns true if addr is inside the perimeter.
func (p *Perimeter) ContainsAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	if _, ok := p.hosts[addr]; ok {
		return true
	}
	if p.nets == 0 {
		return false
	}
	ok, err := p.ranger.Contains(net.IP(addr.AsSlice()))
	return err == nil && ok
}

// Len returns the number of usable perimeter entries.
func (p *Perimeter) Len() int {
	return len(p.hosts) + p.nets
}

// Err returns all entry errors combined into a [multierror.Error], or nil if
// all entries were usable.
func (p *Perimeter) Err() error {
	var errs error
	for _, e := range p.invalid {
		errs = multierror.Append(errs, e)
	}
	return errs
}
