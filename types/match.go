// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

// Match is a (host)name together with an IP address found at the end of its
// resolution chain that lies inside the perimeter. The name is either the
// candidate hostname a chain walk started from, or any alias (CNAME) passed
// on the way to the address.
type Match struct {
	Name string `json:"name"` // candidate hostname or intermediate alias
	Addr string `json:"addr"` // IP address literal inside the perimeter
}

// String returns the match in its "name[addr]" report form, but without any
// name normalization applied.
func (m Match) String() string {
	return m.Name + "[" + m.Addr + "]"
}
