// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/explorer-mcp/internal/reveal"
	"github.com/jeranaias/explorer-mcp/internal/search"
)

// =============================================================================
// FIND FILE
// =============================================================================

// FindFileExecutor searches file names under a root with a search.Engine.
type FindFileExecutor struct {
	// Engine runs the traversal.
	Engine *search.Engine

	// DefaultRoot is searched when base_path is omitted.
	DefaultRoot string

	// DefaultMaxResults is used when max_results is omitted (default: 20).
	DefaultMaxResults int
}

// Execute runs one search and renders it as text.
func (e *FindFileExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	if e.Engine == nil {
		return Result{}, errors.New("find_file: no search engine configured")
	}

	defaultMax := e.DefaultMaxResults
	if defaultMax <= 0 {
		defaultMax = search.DefaultMaxResults
	}

	keyword := getStringParam(params, "keyword", "")
	root := getStringParam(params, "base_path", e.DefaultRoot)
	maxResults := getIntParam(params, "max_results", defaultMax)

	if keyword == "" {
		return Result{Error: "keyword parameter is required"}, nil
	}
	if root == "" {
		root = "~"
	}

	res, err := e.Engine.Search(search.Request{
		Keyword:    keyword,
		Root:       root,
		MaxResults: maxResults,
	})
	if err != nil {
		return Result{Error: err.Error()}, nil
	}

	if res.RootMissing() {
		return Result{Error: fmt.Sprintf("Search root not found: %s", res.Root)}, nil
	}

	return Result{
		Success:    true,
		Output:     FormatResult(res),
		MatchCount: len(res.Matches),
	}, nil
}

// FormatRecord renders one match as a single line.
func FormatRecord(rec search.Record) string {
	return fmt.Sprintf("📄 %s (%d Bytes) - %s - created %s", rec.Name, rec.Size, rec.Path, rec.Timestamp)
}

// FormatResult renders a finished search: one line per match, or a
// not-found sentence naming the effective root.
func FormatResult(res search.Result) string {
	if len(res.Matches) == 0 {
		return fmt.Sprintf("No files matching '%s' were found (search root: %s)", res.Keyword, res.Root)
	}
	lines := make([]string, len(res.Matches))
	for i, rec := range res.Matches {
		lines[i] = FormatRecord(rec)
	}
	return strings.Join(lines, "\n")
}

// FindFileTool finds files by name.
var FindFileTool = &Tool{
	Name:  "find_file",
	Title: "Find File",
	Description: `Find files whose name contains a keyword (case-insensitive).

The search walks the directory tree under base_path (default: the configured
search root, usually the home directory). Version-control metadata, trash,
system caches and dependency directories are skipped. Symbolic links to
directories are never followed. The walk stops as soon as max_results files
have been found, so a capped result may not be exhaustive.

Each result line gives the file name, size in bytes, absolute path and
creation time (modification time where creation time is unavailable).`,
	Schema: Schema{
		Parameters: []Parameter{
			{
				Name:        "keyword",
				Type:        "string",
				Required:    true,
				Description: "Substring to look for in file names, matched case-insensitively. Example: 'report'",
			},
			{
				Name:        "base_path",
				Type:        "string",
				Required:    false,
				Description: "Directory to search. '~' is expanded. Defaults to the configured search root.",
			},
			{
				Name:        "max_results",
				Type:        "integer",
				Required:    false,
				Description: "Maximum number of files to return. Default: 20",
				Default:     search.DefaultMaxResults,
			},
		},
	},
	RiskLevel: RiskLow,
	ReadOnly:  true,
}

// =============================================================================
// REVEAL IN FILE MANAGER
// =============================================================================

// RevealExecutor shows a path in the desktop file manager.
type RevealExecutor struct {
	Revealer *reveal.Revealer
}

// Execute reveals the path parameter.
func (e *RevealExecutor) Execute(ctx context.Context, params map[string]interface{}) (Result, error) {
	if e.Revealer == nil {
		return Result{}, errors.New("reveal_in_finder: no revealer configured")
	}

	path := getStringParam(params, "path", "")
	if path == "" {
		return Result{Error: "path parameter is required"}, nil
	}

	target, err := e.Revealer.Reveal(ctx, path)
	switch {
	case errors.Is(err, reveal.ErrNotExist):
		// A missing path is an answer, not a tool failure.
		return Result{Success: true, Output: "Path does not exist: " + target}, nil
	case err != nil:
		return Result{Error: "Failed to open file manager: " + err.Error()}, nil
	}

	return Result{
		Success:    true,
		Output:     "Revealed in file manager: " + target,
		MatchCount: 1,
	}, nil
}

// RevealTool highlights a file or opens a folder in the desktop file manager.
var RevealTool = &Tool{
	Name:  "reveal_in_finder",
	Title: "Reveal in File Manager",
	Description: `Show a file or folder in the desktop file manager.

A file is shown selected in its folder; a folder is opened. Uses Finder on
macOS, Explorer on Windows and xdg-open elsewhere. Pass a path returned by
find_file.`,
	Schema: Schema{
		Parameters: []Parameter{
			{
				Name:        "path",
				Type:        "string",
				Required:    true,
				Description: "File or folder to show. '~' is expanded.",
			},
		},
	},
	RiskLevel: RiskMedium,
}
