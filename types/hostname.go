// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

const (
	maxLabelLen = 63
	maxNameLen  = 253
)

// IsHostname returns true if s is syntactically a DNS hostname with at least
// two labels: labels consist of letters, digits, hyphens and underscores,
// neither start nor end in a hyphen, and are at most 63 octets long. A single
// trailing root dot is accepted.
func IsHostname(s string) bool {
	labels, ok := splitLabels(s)
	return ok && len(labels) >= 2
}

// IsAliasName returns true if s is acceptable as an alias target in an answer
// line. In contrast to [IsHostname] single labels such as "intranet." are
// fine, as resolvers might well hand them out. Dotted numbers such as
// "10.0.0.256" are not names, so the last label must not be all digits.
func IsAliasName(s string) bool {
	labels, ok := splitLabels(s)
	return ok && !isNumeric(labels[len(labels)-1])
}

// splitLabels returns the labels of s without any trailing root dot, and
// whether s is well-formed.
func splitLabels(s string) ([]string, bool) {
	s = strings.TrimSuffix(s, ".")
	if s == "" || len(s) > maxNameLen {
		return nil, false
	}
	labels := strings.Split(s, ".")
	for _, label := range labels {
		if !isLabel(label) {
			return nil, false
		}
	}
	return labels, true
}

func isNumeric(label string) bool {
	for i := 0; i < len(label); i++ {
		if label[i] < '0' || label[i] > '9' {
			return false
		}
	}
	return true
}

func isLabel(label string) bool {
	if label == "" || len(label) > maxLabelLen {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// NormalizeHostname returns the lookup form of a hostname: lower case, in
// ASCII (punycode) form for internationalized names, and without a trailing
// root dot. It returns an error if the name isn't a valid hostname after
// conversion.
func NormalizeHostname(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		// The lookup profile rejects underscores which are common enough in
		// the wild (SRV-style and service labels), so fall back to the plain
		// name if it already is ASCII.
		ascii = name
	}
	ascii = strings.ToLower(ascii)
	if !IsHostname(ascii) {
		return "", fmt.Errorf("invalid hostname %q", name)
	}
	return ascii, nil
}

// ChainKey returns the key under which a name is tracked while walking a
// resolution chain, so that "Foo.example." and "foo.example" are considered
// to be the same.
func ChainKey(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}
