// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import "fmt"

// Quality tells how far the liveness check of a matched perimeter address got.
type Quality int

const (
	Unverified Quality = iota // not yet handed to a pinger.
	Verifying                 // pings in flight.
	Invalid                   // too few echo replies.
	Verified                  // answered enough pings.
)

var qualityNames = [...]string{
	Unverified: "unverified",
	Verifying:  "verifying",
	Invalid:    "invalid",
	Verified:   "verified",
}

func (q Quality) String() string {
	if q >= 0 && int(q) < len(qualityNames) {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", q)
}

// IsPending reports whether the liveness check of an address has not reached
// a final verdict yet.
func (q Quality) IsPending() bool {
	return q < Invalid
}
