// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"path/filepath"
	"strings"
)

// =============================================================================
// DEFAULT EXCLUSIONS
// =============================================================================

// DefaultExcludedNames are directory basenames pruned by DefaultPolicy:
// version control metadata, trash, macOS system caches and dependency trees.
var DefaultExcludedNames = []string{
	".git",
	".Trash",
	".Spotlight-V100",
	".fseventsd",
	".DS_Store",
	"node_modules",
}

// DefaultExcludedPrefixes are home-relative path prefixes pruned by
// DefaultPolicy. They are joined onto the home directory.
var DefaultExcludedPrefixes = []string{
	"Library/Caches",
	"Library/Containers/com.apple.Safari/Data",
}

// =============================================================================
// POLICY
// =============================================================================

// Policy decides which directories are pruned during a walk.
// A Policy is an immutable value; build one with NewPolicy or DefaultPolicy.
// The zero value excludes nothing.
type Policy struct {
	names    map[string]struct{}
	prefixes []string
}

// NewPolicy builds a Policy from directory basenames and absolute path
// prefixes. Prefixes are kept byte-for-byte and in order, so a trailing
// separator still takes part in the comparison. Empty entries are ignored.
// The inputs are copied.
func NewPolicy(names, prefixes []string) Policy {
	p := Policy{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		p.names[n] = struct{}{}
	}
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		p.prefixes = append(p.prefixes, prefix)
	}
	return p
}

// DefaultPolicy returns the built-in exclusions with prefixes rooted at home.
func DefaultPolicy(home string) Policy {
	prefixes := make([]string, 0, len(DefaultExcludedPrefixes))
	for _, rel := range DefaultExcludedPrefixes {
		prefixes = append(prefixes, filepath.Join(home, filepath.FromSlash(rel)))
	}
	return NewPolicy(DefaultExcludedNames, prefixes)
}

// Excluded reports whether dir (a cleaned absolute path) and everything
// beneath it must be skipped.
//
// Prefix matching is a plain string comparison with no separator boundary,
// so the prefix "/a/b" also excludes "/a/bc" while "/a/b/" does not.
func (p Policy) Excluded(dir string) bool {
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(dir, prefix) {
			return true
		}
	}
	_, ok := p.names[filepath.Base(dir)]
	return ok
}

// Names returns the excluded basenames in no particular order.
func (p Policy) Names() []string {
	out := make([]string, 0, len(p.names))
	for n := range p.names {
		out = append(out, n)
	}
	return out
}

// Prefixes returns a copy of the excluded path prefixes in order.
func (p Policy) Prefixes() []string {
	return append([]string(nil), p.prefixes...)
}
