// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs searches. Its fields are set once by New and never modified,
// so a single Engine may serve concurrent Search calls.
type Engine struct {
	fs          afero.Fs
	policy      Policy
	logger      *slog.Logger
	statTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithFs sets the filesystem to search. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithPolicy sets the default exclusion policy. Defaults to an empty policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger sets the logger used for pruning and failure messages.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStatTimeout bounds each metadata call on a matched file. A timed-out
// stat is treated like any other per-file failure. Zero disables the bound.
func WithStatTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.statTimeout = d
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine's default exclusion policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// =============================================================================
// SEARCH
// =============================================================================

// Search walks req.Root for files whose names contain req.Keyword.
//
// The returned error is non-nil only for an invalid request. Filesystem
// problems never surface as errors: a missing root yields StateRootNotFound
// and unreadable entries are logged and counted in Result.Skipped.
func (e *Engine) Search(req Request) (Result, error) {
	if req.Keyword == "" {
		return Result{}, ErrEmptyKeyword
	}
	if strings.TrimSpace(req.Root) == "" {
		return Result{}, ErrEmptyRoot
	}

	root, err := ResolveRoot(req.Root)
	if err != nil {
		return Result{}, fmt.Errorf("resolve root %q: %w", req.Root, err)
	}

	res := Result{
		Keyword: req.Keyword,
		Root:    root,
		State:   StateIdle,
	}

	info, err := e.fs.Stat(root)
	if err != nil || !info.IsDir() {
		res.State = StateRootNotFound
		e.logger.Debug("search root unavailable", "root", root, "error", err)
		return res, nil
	}

	policy := e.policy
	if req.Policy != nil {
		policy = *req.Policy
	}

	start := time.Now()
	acc := newCollector(req.MaxResults)
	x := &extractor{
		fs:      e.fs,
		match:   newMatcher(req.Keyword),
		timeout: e.statTimeout,
	}

	skipped := 0
	w := &walker{
		fs:     e.fs,
		policy: policy,
		logger: e.logger,
		onFile: func(dir, name string) bool {
			rec, matched, err := x.tryExtract(name, dir)
			if !matched {
				return false
			}
			if err != nil {
				skipped++
				e.logger.Warn("cannot read file metadata", "path", filepath.Join(dir, name), "error", err)
				return false
			}
			_, capReached := acc.offer(rec)
			return capReached
		},
	}

	acc.start()
	w.walk(root)

	res.Matches = acc.finish()
	res.State = acc.state
	res.Skipped = skipped + w.skipped
	res.Duration = time.Since(start)

	e.logger.Debug("search finished",
		"keyword", req.Keyword,
		"root", root,
		"matches", len(res.Matches),
		"state", res.State.String(),
		"skipped", res.Skipped,
		"duration", res.Duration,
	)
	return res, nil
}
