// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import (
	"fmt"
	"net/netip"
	"strings"
)

// AnswerKind classifies a single raw answer line of a resolution.
type AnswerKind int

// The kinds of answer lines a resolver might hand out.
const (
	AnswerOther AnswerKind = iota // neither an address nor a name; ignored.
	AnswerIP                      // IPv4 or IPv6 address literal.
	AnswerAlias                   // (CNAME) hostname to be resolved next.
)

// String returns the clear-text representation of an AnswerKind value.
func (k AnswerKind) String() string {
	switch k {
	case AnswerOther:
		return "other"
	case AnswerIP:
		return "ip"
	case AnswerAlias:
		return "alias"
	}
	return fmt.Sprintf("AnswerKind(%d)", k)
}

// Answer is a classified raw answer line. For addresses, Value is the
// canonical textual form of the address; for aliases, Value is the alias name
// exactly as answered, including any trailing root dot.
type Answer struct {
	Value string
	Kind  AnswerKind
}

// ClassifyAnswer classifies a raw answer line as either an IP address literal,
// an alias name (see [IsAliasName]), or something else.
func ClassifyAnswer(line string) Answer {
	line = strings.TrimSpace(line)
	if addr, err := netip.ParseAddr(line); err == nil {
		if addr.Zone() != "" {
			return Answer{Value: line, Kind: AnswerOther}
		}
		return Answer{Value: addr.Unmap().String(), Kind: AnswerIP}
	}
	if IsAliasName(line) {
		return Answer{Value: line, Kind: AnswerAlias}
	}
	return Answer{Value: line, Kind: AnswerOther}
}
