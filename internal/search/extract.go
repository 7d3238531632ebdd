// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrStatTimeout is reported for a matched file whose metadata call did not
// return within the engine's stat timeout.
var ErrStatTimeout = errors.New("search: stat timed out")

// =============================================================================
// MATCHER
// =============================================================================

// matcher tests file names against a lower-cased keyword.
// A cases.Caser is stateful, so every search builds its own matcher.
type matcher struct {
	needle string
	caser  cases.Caser
}

func newMatcher(keyword string) *matcher {
	caser := cases.Lower(language.Und)
	return &matcher{
		needle: caser.String(keyword),
		caser:  caser,
	}
}

// Match reports whether name contains the keyword, ignoring case.
func (m *matcher) Match(name string) bool {
	return strings.Contains(m.caser.String(name), m.needle)
}

// =============================================================================
// EXTRACTOR
// =============================================================================

// extractor turns matching file names into Records.
type extractor struct {
	fs      afero.Fs
	match   *matcher
	timeout time.Duration
}

// tryExtract returns the record for dir/name when name matches.
// matched is false for non-matching names, which are never stat'ed.
// A non-nil error means the file matched but its metadata was unavailable.
func (x *extractor) tryExtract(name, dir string) (rec Record, matched bool, err error) {
	if !x.match.Match(name) {
		return Record{}, false, nil
	}

	path := filepath.Join(dir, name)
	info, err := x.stat(path)
	if err != nil {
		return Record{}, true, err
	}

	t, birth := fileTime(path, info)
	return Record{
		Name:      name,
		Path:      path,
		Size:      info.Size(),
		Time:      t,
		BirthTime: birth,
		Timestamp: t.Local().Format(TimestampLayout),
	}, true, nil
}

// stat follows symlinks, so a link to a file reports the target's metadata.
func (x *extractor) stat(path string) (os.FileInfo, error) {
	if x.timeout <= 0 {
		return x.fs.Stat(path)
	}

	type statResult struct {
		info os.FileInfo
		err  error
	}
	// Buffered so an abandoned stat can still complete and exit.
	ch := make(chan statResult, 1)
	go func() {
		info, err := x.fs.Stat(path)
		ch <- statResult{info: info, err: err}
	}()

	timer := time.NewTimer(x.timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.info, r.err
	case <-timer.C:
		return nil, fmt.Errorf("stat %s: %w", path, ErrStatTimeout)
	}
}

// fileTime prefers the platform creation time and falls back to mtime.
func fileTime(path string, info os.FileInfo) (time.Time, bool) {
	if t, ok := birthTime(path, info); ok && !t.IsZero() {
		return t, true
	}
	return info.ModTime(), false
}
