// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Resolver resolves a hostname into its raw answer lines, in answer order.
// Answer lines are either IP address literals or (CNAME) hostnames, akin to
// the output of "dig +short".
//
// An empty answer without error means that the name exists, but has no
// records of the queried types.
type Resolver interface {
	Resolve(ctx context.Context, hostname string) ([]string, error)
}

// Kind classifies resolution failures.
type Kind int

// The kinds of resolution failures.
const (
	KindOther     Kind = iota // any other failure
	KindTimeout               // query timed out
	KindNXDomain              // name does not exist
	KindServer                // server failure or refusal
	KindMalformed             // malformed or unexpected response
)

// String returns the clear-text representation of a Kind value.
func (k Kind) String() string {
	switch k {
	case KindOther:
		return "failure"
	case KindTimeout:
		return "timeout"
	case KindNXDomain:
		return "non-existent domain"
	case KindServer:
		return "server failure"
	case KindMalformed:
		return "malformed response"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ErrNoSuchHost is the cause of [KindNXDomain] resolution errors.
var ErrNoSuchHost = errors.New("no such host")

// ResolutionError is returned by resolvers when a hostname cannot be resolved.
// Resolution errors are scoped to a single hostname and never affect the
// resolution of other names.
type ResolutionError struct {
	Name string // hostname that failed to resolve.
	Kind Kind
	Err  error // underlying cause.
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %s: %s", e.Name, e.Kind, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Timeout returns true if the resolution failed due to a timeout.
func (e *ResolutionError) Timeout() bool { return e.Kind == KindTimeout }

// newResolutionError wraps err into a ResolutionError, deriving the failure
// kind from err unless err already is a ResolutionError.
func newResolutionError(name string, err error) *ResolutionError {
	var rerr *ResolutionError
	if errors.As(err, &rerr) {
		return rerr
	}
	kind := KindOther
	var neterr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &neterr) && neterr.Timeout():
		kind = KindTimeout
	}
	return &ResolutionError{Name: name, Kind: kind, Err: err}
}

// IsTimeout returns true if err is a resolution timeout.
func IsTimeout(err error) bool {
	var rerr *ResolutionError
	return errors.As(err, &rerr) && rerr.Timeout()
}
