// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package perimeter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thediveo/lxkns/log"
)

// ErrInput signals a perimeter that cannot be used at all, such as an
// unreadable perimeter file or a perimeter without any usable entry.
var ErrInput = errors.New("unusable perimeter")

// Parse reads newline-delimited perimeter entries from r. Blank lines as well
// as lines starting with "#" are skipped.
//
// Unusable entries are skipped too; in this case Parse returns the perimeter
// of the usable entries together with a non-nil error listing the skipped
// entries (see [Perimeter.Err]). Only when there's no perimeter at all, Parse
// returns a nil perimeter and an error wrapping [ErrInput].
func Parse(r io.Reader) (*Perimeter, error) {
	var entries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInput, err)
	}
	p := New(entries)
	if p.Len() == 0 {
		return nil, fmt.Errorf("%w: no usable entries", ErrInput)
	}
	return p, p.Err()
}

// Load reads the perimeter from the file at path, with the same result
// semantics as [Parse].
func Load(path string) (*Perimeter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInput, err)
	}
	defer f.Close()
	p, err := Parse(f)
	if p == nil {
		return nil, fmt.Errorf("perimeter file %s: %w", path, err)
	}
	log.Debugf("perimeter %s: %d usable entries", path, p.Len())
	return p, err
}
