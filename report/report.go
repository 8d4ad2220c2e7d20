// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package report

import (
	"sort"
	"strings"

	"github.com/siemens/perimdig/types"
)

// Normalize returns the name with a single trailing root dot removed, if
// present.
func Normalize(name string) string {
	return strings.TrimSuffix(name, ".")
}

// Line renders a match in its “name[addr]” report form, with the name
// normalized.
func Line(m types.Match) string {
	return Normalize(m.Name) + "[" + m.Addr + "]"
}

// Lines renders the specified matches into report lines, removing duplicate
// lines and sorting the remaining lines lexicographically.
func Lines(matches []types.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		line := Line(m)
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}
