// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import "github.com/muesli/termenv"

var (
	phaseStyle   = termenv.Style{}.Foreground(termenv.ANSIYellow)
	countStyle   = termenv.Style{}.Bold()
	addressStyle = termenv.Style{}.Foreground(termenv.ANSIGreen)
)

var nameStyle = termenv.Style{}.Bold()
