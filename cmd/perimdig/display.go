// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"net/netip"
	"sort"
	"strings"
	"time"

	"github.com/siemens/perimdig/dig"
	"github.com/siemens/perimdig/types"
)

const (
	spinnerInterval = 100 * time.Millisecond
	maxListedNames  = 10 // most recent names shown in the progress display
)

// renderer renders the terminal progress display, based on the progress and
// match information passed to its Render method.
type renderer struct {
	Indentation int
	w           io.Writer
	spinner     *spinner
}

// newRenderer returns a Render object rendering to the specified io.Writer.
func newRenderer(w io.Writer, interval time.Duration) *renderer {
	return &renderer{
		Indentation: 3,
		w:           w,
		spinner:     newSpinner(interval),
	}
}

// Render the current phase, digging progress, and matches found so far.
func (r *renderer) Render(phase string, progress dig.Progress, matches []types.Match) {
	fmt.Fprintf(r.w, "%s%s: %d/%d hostnames dug, %s\n",
		r.spinner.Spinner(), phaseStyle.Styled(phase),
		progress.Done, progress.Submitted,
		countStyle.Styled(fmt.Sprintf("%d matches", len(matches))))
	groups := groupByName(matches)
	if len(groups) == 0 {
		return
	}
	// For neat display, determine the length of the longest name to display,
	// so that the addresses column doesn't zig-zag around.
	listed := groups
	if len(listed) > maxListedNames {
		listed = listed[:maxListedNames]
	}
	maxlen := 0
	for _, group := range listed {
		if l := len(group.name); l > maxlen {
			maxlen = l
		}
	}
	for _, group := range listed {
		r.renderGroup(maxlen, group)
	}
	if more := len(groups) - len(listed); more > 0 {
		fmt.Fprintf(r.w, "%-*s... and %d more\n", r.Indentation, "", more)
	}
}

// renderGroup renders a name and its matched addresses.
func (r *renderer) renderGroup(labelwidth int, group nameGroup) {
	fmt.Fprintf(r.w, "%-*s%s", r.Indentation, "",
		nameStyle.Styled(fmt.Sprintf("%-*s", labelwidth, group.name)))
	for _, addr := range group.addrs {
		fmt.Fprint(r.w, " ", addressStyle.Styled(addr))
	}
	fmt.Fprintln(r.w)
}

// nameGroup is a (normalized) name with its matched addresses.
type nameGroup struct {
	name  string
	addrs []string
}

// groupByName groups the matches by their normalized names, with the names
// as well as each name's addresses sorted.
func groupByName(matches []types.Match) []nameGroup {
	byName := map[string][]string{}
	for _, m := range matches {
		name := strings.TrimSuffix(m.Name, ".")
		byName[name] = append(byName[name], m.Addr)
	}
	groups := make([]nameGroup, 0, len(byName))
	for name, addrs := range byName {
		sortAddresses(addrs)
		groups = append(groups, nameGroup{name: name, addrs: addrs})
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].name < groups[b].name })
	return groups
}

// sortAddresses sorts a slice of address literals in place.
// - IPv4 first, IPv6 ... (embarrassed slience) ... second.
// - sorts by address value.
func sortAddresses(addrs []string) {
	sort.Slice(addrs, func(a, b int) bool {
		ipA, errA := netip.ParseAddr(addrs[a])
		ipB, errB := netip.ParseAddr(addrs[b])
		if errA != nil || errB != nil {
			return addrs[a] < addrs[b]
		}
		return ipA.Less(ipB)
	})
}
