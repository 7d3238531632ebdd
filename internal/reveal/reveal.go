// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal asks the desktop file manager to show a path: a file is
// highlighted inside its folder, a folder is opened.
//
// The launch commands are:
//
//	darwin:   open -R <file>        open <dir>
//	windows:  explorer /select,<file>  explorer <dir>
//	others:   xdg-open <parent dir>    xdg-open <dir>
package reveal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"

	"github.com/jeranaias/explorer-mcp/internal/search"
)

// ErrNotExist is returned (wrapped) when the path to reveal does not exist.
var ErrNotExist = errors.New("path does not exist")

// =============================================================================
// COMMAND RUNNER
// =============================================================================

// Runner launches an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run starts name and waits for it, folding its output into the error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// =============================================================================
// REVEALER
// =============================================================================

// Revealer shows paths in the platform file manager.
type Revealer struct {
	fs     afero.Fs
	runner Runner
	goos   string
}

// Option configures a Revealer.
type Option func(*Revealer)

// WithFs sets the filesystem used to check the path.
func WithFs(fs afero.Fs) Option {
	return func(r *Revealer) { r.fs = fs }
}

// WithRunner replaces the command runner.
func WithRunner(runner Runner) Option {
	return func(r *Revealer) { r.runner = runner }
}

// WithGOOS selects the command set of another platform.
func WithGOOS(goos string) Option {
	return func(r *Revealer) { r.goos = goos }
}

// New creates a Revealer for the running platform.
func New(opts ...Option) *Revealer {
	r := &Revealer{
		fs:     afero.NewOsFs(),
		runner: ExecRunner{},
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reveal resolves path ("~" expanded, made absolute) and shows it. It returns
// the resolved path. A missing path yields an error wrapping ErrNotExist.
func (r *Revealer) Reveal(ctx context.Context, path string) (string, error) {
	target, err := search.ResolveRoot(path)
	if err != nil {
		return path, fmt.Errorf("resolve %q: %w", path, err)
	}

	info, err := r.fs.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return target, fmt.Errorf("%w: %s", ErrNotExist, target)
		}
		return target, fmt.Errorf("stat %s: %w", target, err)
	}

	name, args := Command(r.goos, target, info.IsDir())
	err = r.runner.Run(ctx, name, args...)

	// explorer.exe exits 1 even when it succeeds.
	var exitErr *exec.ExitError
	if err != nil && r.goos == "windows" && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		err = nil
	}
	if err != nil {
		return target, fmt.Errorf("open file manager: %w", err)
	}
	return target, nil
}

// Command returns the program and arguments that reveal target on goos.
func Command(goos, target string, isDir bool) (string, []string) {
	switch goos {
	case "darwin":
		if isDir {
			return "open", []string{target}
		}
		return "open", []string{"-R", target}
	case "windows":
		if isDir {
			return "explorer", []string{target}
		}
		return "explorer", []string{"/select," + target}
	default:
		if isDir {
			return "xdg-open", []string{target}
		}
		return "xdg-open", []string{filepath.Dir(target)}
	}
}
