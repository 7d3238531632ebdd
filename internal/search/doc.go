// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search implements the bounded, exclusion-aware filename search
// behind the find_file tool.
//
// A search walks a directory tree depth-first and top-down, never following
// symbolic links. Before a directory is listed the exclusion Policy is
// consulted; an excluded directory is pruned together with its whole subtree.
// Every file whose name contains the keyword (case-insensitively) is stat'ed
// and turned into a Record. The walk stops the moment MaxResults records have
// been collected.
//
// # Key Types
//
//   - Engine: immutable search configuration (filesystem, default policy, logger)
//   - Policy: excluded directory basenames and excluded path prefixes
//   - Request: keyword, root and result cap for one call
//   - Result: matches in traversal order plus the terminal State
//   - Record: one matched file (name, absolute path, size, timestamp)
//
// # Failure Isolation
//
// A file that matches but cannot be stat'ed is logged at WARN and skipped.
// A directory that cannot be listed is logged and skipped. Neither aborts the
// search. A missing root is reported as StateRootNotFound, never as an error.
//
// # Usage
//
//	engine := search.New(search.WithLogger(logger))
//	res, err := engine.Search(search.Request{
//	    Keyword:    "report",
//	    Root:       "~/Documents",
//	    MaxResults: 20,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, rec := range res.Matches {
//	    fmt.Println(rec.Path, rec.Size, rec.Timestamp)
//	}
//
// Engines hold no mutable state, so one Engine may serve concurrent searches.
package search
