// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/siemens/perimdig/types"
	"github.com/thediveo/lxkns/log"
)

// ErrInput signals that the hostname source cannot be read at all.
var ErrInput = errors.New("invalid hostname source")

// maxLineLength limits the length of a single line scanned for hostnames.
const maxLineLength = 16 * 1024 * 1024

// hostnameRe matches hostname-like strings with at least a second-level label
// and an alphabetic top-level label. Labels may carry a punycode prefix.
var hostnameRe = regexp.MustCompile(
	`(?i)\b(?:(?:xn--)?[a-z0-9]+(?:-[a-z0-9]+)*\.)+[a-z]{2,63}\b`)

// filenameSuffixes lists the final labels of strings that look like
// hostnames, but are more likely file names.
var filenameSuffixes = map[string]struct{}{}

func init() {
	for _, ext := range []string{
		"html", "php", "avi", "mp3", "jsp", "asp", "aspx", "php3", "php4",
		"php5", "nasl", "xml", "crl", "crt", "nbin", "src", "js", "css", "png",
		"jpeg", "gif", "swf", "jpg", "pdf", "doc", "txt", "form", "html5", "htm",
	} {
		filenameSuffixes[ext] = struct{}{}
	}
}

// IsFilename returns true if the specified hostname-like string rather looks
// like a file name, judging from its final label. Names in craigslist.org are
// treated as file names too.
func IsFilename(name string) bool {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	if name == "craigslist.org" || strings.HasSuffix(name, ".craigslist.org") {
		return true
	}
	last := name[strings.LastIndexByte(name, '.')+1:]
	_, ok := filenameSuffixes[last]
	return ok
}

// Hostnames returns all hostname-like strings found in r, in order of
// appearance and including duplicates. The returned names are normalized,
// that is, lower case and without trailing dot. File names are not filtered.
func Hostnames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		for _, match := range hostnameRe.FindAllString(scanner.Text(), -1) {
			name, ok := trimLongLabels(match)
			if !ok {
				continue
			}
			name, err := types.NormalizeHostname(name)
			if err != nil {
				continue
			}
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return names, err
	}
	return names, nil
}

// trimLongLabels drops all labels up to and including the last label that is
// longer than 63 characters. It returns false if fewer than two labels remain.
func trimLongLabels(name string) (string, bool) {
	labels := strings.Split(name, ".")
	for idx := len(labels) - 1; idx >= 0; idx-- {
		if len(labels[idx]) > 63 {
			labels = labels[idx+1:]
			break
		}
	}
	if len(labels) < 2 {
		return "", false
	}
	return strings.Join(labels, "."), true
}

// Files returns the specified path if it is a file, otherwise all regular
// files found recursively below the specified path. Unreadable
// subdirectories get skipped with a warning.
func Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInput, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			log.Warnf("skipping %s: %s", p, err)
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInput, err)
	}
	return files, nil
}

// FromPaths returns the deduplicated and sorted set of hostnames found in the
// files at or below the specified paths, without file names. Individual files
// that cannot be read get skipped with a warning, but paths that cannot be
// read at all are an error.
func FromPaths(paths ...string) ([]string, error) {
	set := map[string]struct{}{}
	for _, path := range paths {
		files, err := Files(path)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			log.Debugf("searching hostnames in %s", file)
			names, err := fromFile(file)
			if err != nil {
				log.Warnf("skipping %s: %s", file, err)
			}
			for _, name := range names {
				if IsFilename(name) {
					continue
				}
				set[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func fromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Hostnames(f)
}
