// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"

	"github.com/siemens/perimdig/types"
)

// Static is a Resolver serving canned answers from a map of hostnames to
// answer lines. Hostnames are matched case-insensitively and regardless of a
// trailing root dot, so the keys are best given in lower case without
// trailing dots. Names not in the map fail with a [KindNXDomain] resolution
// error.
type Static map[string][]string

// Resolve returns the canned answers for the specified hostname.
func (s Static) Resolve(ctx context.Context, hostname string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, newResolutionError(hostname, err)
	}
	answers, ok := s[types.ChainKey(hostname)]
	if !ok {
		return nil, &ResolutionError{Name: hostname, Kind: KindNXDomain, Err: ErrNoSuchHost}
	}
	return clone(answers), nil
}
