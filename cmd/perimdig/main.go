// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"
	"os/signal"
)

// osExit gets replaced in CLI tests.
var osExit = os.Exit

func main() {
	// Ctrl-C cancels digging and verification without any report.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	// cobra already printed the error, so only the exit code is left to set.
	if err != nil {
		osExit(1)
	}
}
