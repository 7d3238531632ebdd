// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"errors"
	"time"
)

// DefaultMaxResults is the result cap applied when a Request leaves
// MaxResults unset or non-positive.
const DefaultMaxResults = 20

// TimestampLayout is the local date+minute layout of Record.Timestamp.
const TimestampLayout = "2006-01-02 15:04"

// Request validation errors.
var (
	ErrEmptyKeyword = errors.New("search: keyword must not be empty")
	ErrEmptyRoot    = errors.New("search: root must not be empty")
)

// =============================================================================
// REQUEST
// =============================================================================

// Request holds the inputs of one search. It is not modified by Search.
type Request struct {
	// Keyword is matched case-insensitively as a substring of file names.
	Keyword string

	// Root is the directory to search. A leading "~" is expanded.
	Root string

	// MaxResults caps the number of records; values <= 0 mean DefaultMaxResults.
	MaxResults int

	// Policy overrides the engine's exclusion policy for this call when non-nil.
	Policy *Policy
}

// =============================================================================
// RECORD
// =============================================================================

// Record describes one matching file.
type Record struct {
	// Name is the file's base name.
	Name string

	// Path is the absolute path of the file.
	Path string

	// Size is the file size in bytes.
	Size int64

	// Time is the creation time when the platform exposes it, otherwise the
	// last modification time.
	Time time.Time

	// BirthTime reports whether Time is a creation time.
	BirthTime bool

	// Timestamp is Time in local time, formatted with TimestampLayout.
	Timestamp string
}

// =============================================================================
// RESULT
// =============================================================================

// State is the lifecycle position of a search.
type State int

const (
	// StateIdle - the search has not run
	StateIdle State = iota

	// StateTraversing - the walk is in progress
	StateTraversing

	// StateCapped - the walk stopped early because MaxResults was reached
	StateCapped

	// StateExhausted - the whole tree was walked
	StateExhausted

	// StateRootNotFound - the root is missing or not a directory; nothing was walked
	StateRootNotFound
)

// String returns the string representation of a state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTraversing:
		return "traversing"
	case StateCapped:
		return "capped"
	case StateExhausted:
		return "exhausted"
	case StateRootNotFound:
		return "root-not-found"
	default:
		return "unknown"
	}
}

// Result is the outcome of one search.
type Result struct {
	// Keyword echoes the request keyword.
	Keyword string

	// Root is the effective absolute search root.
	Root string

	// Matches are in traversal order, never more than the request's cap.
	Matches []Record

	// State is StateCapped, StateExhausted or StateRootNotFound once Search returns.
	State State

	// Skipped counts matched files and directories that could not be read.
	Skipped int

	// Duration is the wall time of the walk.
	Duration time.Duration
}

// NotFound reports whether a full walk completed without any match.
func (r Result) NotFound() bool {
	return r.State == StateExhausted && len(r.Matches) == 0
}

// RootMissing reports whether the root could not be searched at all.
func (r Result) RootMissing() bool {
	return r.State == StateRootNotFound
}
