// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/thediveo/lxkns/log"
	_ "github.com/thediveo/lxkns/log/logrus" // plug logrus into lxkns' log facade
)

// levelFormatter formats log entries as "LEVEL > message".
type levelFormatter struct{}

func (levelFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return []byte(strings.ToUpper(entry.Level.String()) + " > " + entry.Message + "\n"), nil
}

// setupLogging directs all logging to w, enabling debug logging only if
// asked for.
func setupLogging(w io.Writer, debug bool) {
	logrus.SetOutput(w)
	logrus.SetFormatter(levelFormatter{})
	if debug {
		log.SetLevel(log.DebugLevel)
		log.Debugf("debug logging enabled")
	}
}
