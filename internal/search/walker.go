// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// walker performs one depth-first, top-down traversal.
//
// Each directory's files are offered before any of its subdirectories are
// entered. onFile returns true to stop the whole walk; the stop propagates
// straight up the recursion and no further directory is opened.
type walker struct {
	fs     afero.Fs
	policy Policy
	logger *slog.Logger

	onFile func(dir, name string) (stop bool)

	// skipped counts directories that could not be listed.
	skipped int
}

// walk visits dir and everything beneath it. It returns true if onFile
// asked to stop.
func (w *walker) walk(dir string) bool {
	if w.policy.Excluded(dir) {
		w.logger.Debug("pruned directory", "dir", dir)
		return false
	}

	entries, err := w.readDir(dir)
	if err != nil {
		w.skipped++
		w.logger.Warn("cannot list directory", "dir", dir, "error", err)
		return false
	}

	var subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir():
			subdirs = append(subdirs, filepath.Join(dir, name))
		case entry.Mode()&os.ModeSymlink != 0:
			// Links are never descended. A link to a directory is not a
			// file either; a broken link is.
			if w.linksToDir(filepath.Join(dir, name)) {
				continue
			}
			if w.onFile(dir, name) {
				return true
			}
		default:
			if w.onFile(dir, name) {
				return true
			}
		}
	}

	for _, sub := range subdirs {
		if w.walk(sub) {
			return true
		}
	}
	return false
}

// readDir lists dir in the order the filesystem yields entries.
// Entries describe the links themselves, not their targets.
func (w *walker) readDir(dir string) ([]os.FileInfo, error) {
	f, err := w.fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdir(-1)
}

func (w *walker) linksToDir(path string) bool {
	info, err := w.fs.Stat(path)
	return err == nil && info.IsDir()
}
