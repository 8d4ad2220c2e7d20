// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Yet another (braille) spinner, driven by the wall clock.

package main

import "time"

// spinner derives its phase from the time elapsed since its creation, so it
// needs no background ticker.
type spinner struct {
	phases   []string
	interval time.Duration
	start    time.Time
	now      func() time.Time
}

// newSpinner returns a new spinner advancing one phase every interval.
func newSpinner(interval time.Duration) *spinner {
	phases := []string{}
	for _, r := range "⠉⠘⠰⠤⠆⠃" {
		phases = append(phases, string(r)+" ")
	}
	if interval <= 0 {
		interval = spinnerInterval
	}
	return &spinner{
		phases:   phases,
		interval: interval,
		start:    time.Now(),
		now:      time.Now,
	}
}

// Spinner returns the spinner string for the current phase.
func (s *spinner) Spinner() string {
	return s.phases[int(s.now().Sub(s.start)/s.interval)%len(s.phases)]
}
