// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verifier

import (
	"sync"

	"github.com/siemens/perimdig/types"
)

// AddressCache caches the verification qualities of IP addresses so that
// unnecessary duplicate address verifications can be avoided when multiple
// names share the same address.
type AddressCache struct {
	mu sync.Mutex
	m  map[string]types.Quality // IP address -> quality
}

// NewAddressCache returns a new AddressCache object.
func NewAddressCache() *AddressCache {
	return &AddressCache{
		m: map[string]types.Quality{},
	}
}

// Claim checks whether the specified address is yet unknown to the cache. In
// this case it marks the address as being verified and returns true to signal
// the caller to go ahead with verifying it. Claim returns false if the
// address has already been claimed before.
func (c *AddressCache) Claim(addr string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[addr]; ok {
		return false
	}
	c.m[addr] = types.Verifying
	return true
}

// Settle records the final verdict for the specified address.
func (c *AddressCache) Settle(addr string, q types.Quality) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[addr] = q
}

// Quality returns the quality of the specified address, which is
// [types.Unverified] for addresses not known to the cache.
func (c *AddressCache) Quality(addr string) types.Quality {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q, ok := c.m[addr]; ok {
		return q
	}
	return types.Unverified
}
