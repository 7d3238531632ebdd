// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memFile creates a file (and its parents) on an afero filesystem.
func memFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

// osFile creates a file (and its parents) on disk.
func osFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

// countingFs records every directory open and file stat.
type countingFs struct {
	afero.Fs

	mu    sync.Mutex
	opens []string
	stats []string
}

func (c *countingFs) Open(name string) (afero.File, error) {
	c.mu.Lock()
	c.opens = append(c.opens, name)
	c.mu.Unlock()
	return c.Fs.Open(name)
}

func (c *countingFs) Stat(name string) (os.FileInfo, error) {
	c.mu.Lock()
	c.stats = append(c.stats, name)
	c.mu.Unlock()
	return c.Fs.Stat(name)
}

// faultyFs fails or blocks Stat for selected paths.
type faultyFs struct {
	afero.Fs

	fail  map[string]error
	block map[string]chan struct{}
}

func (f *faultyFs) Stat(name string) (os.FileInfo, error) {
	if err, ok := f.fail[name]; ok {
		return nil, err
	}
	if ch, ok := f.block[name]; ok {
		<-ch
	}
	return f.Fs.Stat(name)
}
